package agent

import (
	"strings"
	"testing"

	"github.com/eleven-am/auteur/internal/lens"
)

func TestListener_AppliesVisionUpdate(t *testing.T) {
	l := NewListener(nil)

	var hookCtx VisualContext
	var hookInstructions string
	l.OnUpdate(func(vc VisualContext, instructions string) {
		hookCtx = vc
		hookInstructions = instructions
	})

	l.HandleData([]byte(`{"type":"vision_update","mode":"story","data":{"analysis":"Two strangers share an umbrella","score":9,"overlays":[{"type":"story_subject","label":"umbrella","narrative_role":"secondary"}]},"timestamp":1000}`), "camera")

	vc := l.Context()
	if vc.Mode != lens.Story || vc.Score != 9 || vc.Timestamp != 1000 {
		t.Errorf("unexpected context %+v", vc)
	}
	if len(vc.Overlays) != 1 || vc.Overlays[0].Label != "umbrella" {
		t.Errorf("unexpected overlays %+v", vc.Overlays)
	}
	if !strings.Contains(l.Instructions(), "umbrella (secondary)") {
		t.Errorf("instructions not rebuilt: %q", l.Instructions())
	}
	if hookCtx.Analysis != "Two strangers share an umbrella" || hookInstructions != l.Instructions() {
		t.Error("expected hook to receive the new context")
	}
	if s := l.Stats(); s.Applied != 1 || s.Ignored != 0 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestListener_IgnoresOtherMessages(t *testing.T) {
	l := NewListener(nil)
	before := l.Instructions()

	for _, msg := range []string{
		`not json`,
		`{"type":"chat","data":{"analysis":"hi"}}`,
		`{"type":"vision_update","data":{"score":"high"}}`,
	} {
		l.HandleData([]byte(msg), "camera")
	}

	if l.Instructions() != before {
		t.Error("instructions should not change")
	}
	if l.Stats().Applied != 0 {
		t.Errorf("expected nothing applied, got %+v", l.Stats())
	}
}

func TestListener_IgnoresOlderTimestamps(t *testing.T) {
	l := NewListener(nil)

	l.HandleData([]byte(`{"type":"vision_update","mode":"light","data":{"analysis":"newer","score":6},"timestamp":2000}`), "camera")
	l.HandleData([]byte(`{"type":"vision_update","mode":"light","data":{"analysis":"older","score":2},"timestamp":1500}`), "camera")

	if got := l.Context().Analysis; got != "newer" {
		t.Errorf("expected newer analysis to stay, got %q", got)
	}
	if s := l.Stats(); s.Applied != 1 || s.Ignored != 1 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestListener_DefaultsMode(t *testing.T) {
	l := NewListener(nil)
	l.HandleData([]byte(`{"type":"vision_update","data":{"analysis":"centered"},"timestamp":1}`), "camera")

	vc := l.Context()
	if vc.Mode != lens.Geometry {
		t.Errorf("expected geometry default, got %q", vc.Mode)
	}
	if vc.Score != 0 {
		t.Errorf("expected zero score when absent, got %d", vc.Score)
	}
}

func TestListener_EmptyAnalysisKeepsObserving(t *testing.T) {
	l := NewListener(nil)
	l.HandleData([]byte(`{"type":"vision_update","mode":"geometry","data":{"analysis":"","score":5},"timestamp":5}`), "camera")

	if !strings.Contains(l.Instructions(), "Still observing") {
		t.Error("empty analysis should keep the observing fallback")
	}
}
