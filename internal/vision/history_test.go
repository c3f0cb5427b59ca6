package vision

import "testing"

func TestHistory_KeepsNewestFirst(t *testing.T) {
	h := NewHistory(0)

	for i := 1; i <= 60; i++ {
		h.Push(Insight{Timestamp: int64(i)})
	}

	items := h.Items()
	if len(items) != HistoryLimit {
		t.Fatalf("expected %d items, got %d", HistoryLimit, len(items))
	}
	if items[0].Timestamp != 60 {
		t.Errorf("expected newest first, got %d", items[0].Timestamp)
	}
	if items[len(items)-1].Timestamp != 11 {
		t.Errorf("expected oldest kept to be 11, got %d", items[len(items)-1].Timestamp)
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Timestamp <= items[i].Timestamp {
			t.Fatalf("history out of order at %d", i)
		}
	}
}

func TestHistory_ItemsIsCopy(t *testing.T) {
	h := NewHistory(3)
	h.Push(Insight{Timestamp: 1})

	items := h.Items()
	items[0].Timestamp = 99

	if h.Items()[0].Timestamp != 1 {
		t.Error("mutating the returned slice should not affect history")
	}
}

func TestHistory_Reset(t *testing.T) {
	h := NewHistory(3)
	h.Push(Insight{Timestamp: 1})
	h.Push(Insight{Timestamp: 2})
	h.Reset()

	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d", h.Len())
	}

	h.Push(Insight{Timestamp: 3})
	if h.Len() != 1 || h.Items()[0].Timestamp != 3 {
		t.Errorf("unexpected history after reset: %+v", h.Items())
	}
}
