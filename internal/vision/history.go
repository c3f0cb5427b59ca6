package vision

import "sync"

// History keeps accepted insights newest first, dropping the oldest once
// the limit is reached.
type History struct {
	mu    sync.RWMutex
	limit int
	items []Insight
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = HistoryLimit
	}
	return &History{
		limit: limit,
		items: make([]Insight, 0, limit),
	}
}

func (h *History) Push(ins Insight) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.items) < h.limit {
		h.items = append(h.items, Insight{})
	}
	copy(h.items[1:], h.items[:len(h.items)-1])
	h.items[0] = ins
}

func (h *History) Items() []Insight {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Insight, len(h.items))
	copy(out, h.items)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.items)
}

func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items = h.items[:0]
}
