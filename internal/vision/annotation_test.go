package vision

import "testing"

func TestAnnotate_KeepsOrderAndLength(t *testing.T) {
	conn := 0
	overlays := []Overlay{
		{Type: OverlayRuleOfThirds, Status: StatusMismatch},
		{Type: OverlaySubjectHighlight, Coordinates: []float64{0.1, 0.2, 0.3, 0.4}, Label: "face"},
		{Type: OverlayFocusPoint, Coordinates: []float64{0.5, 0.6, 0, 0}},
		{Type: OverlayDirection, Status: StatusLeft},
		{Type: OverlayLeadingLine, Coordinates: []float64{0, 0, 1, 1}},
		{Type: OverlayStorySubject, Connection: &conn, NarrativeRole: RoleSecondary},
		{Type: "sparkle", Label: "?"},
	}

	got := Annotate(overlays)
	if len(got) != len(overlays) {
		t.Fatalf("expected %d annotations, got %d", len(overlays), len(got))
	}
	for i, a := range got {
		if a.Kind() != overlays[i].Type {
			t.Errorf("index %d: expected kind %s, got %s", i, overlays[i].Type, a.Kind())
		}
	}

	if r, ok := got[0].(RuleOfThirds); !ok || r.Status != StatusMismatch {
		t.Errorf("unexpected rule of thirds %#v", got[0])
	}

	sh, ok := got[1].(SubjectHighlight)
	if !ok || sh.Box == nil || *sh.Box != (Box{X: 0.1, Y: 0.2, W: 0.3, H: 0.4}) || sh.Label != "face" {
		t.Errorf("unexpected subject highlight %#v", got[1])
	}

	fp, ok := got[2].(FocusPoint)
	if !ok || fp.At == nil || *fp.At != (Point{X: 0.5, Y: 0.6}) {
		t.Errorf("unexpected focus point %#v", got[2])
	}

	if d, ok := got[3].(Direction); !ok || d.Heading != StatusLeft || d.Box != nil {
		t.Errorf("unexpected direction %#v", got[3])
	}

	ss, ok := got[5].(StorySubject)
	if !ok || ss.Connection == nil || *ss.Connection != 0 || ss.Role != RoleSecondary {
		t.Errorf("unexpected story subject %#v", got[5])
	}
	conn = 4
	if *ss.Connection != 0 {
		t.Error("annotation should not alias the overlay's connection")
	}

	if u, ok := got[6].(Unrecognized); !ok || u.Label != "?" {
		t.Errorf("unexpected unrecognized %#v", got[6])
	}
}

func TestAnnotate_Empty(t *testing.T) {
	if got := Annotate(nil); len(got) != 0 {
		t.Errorf("expected no annotations, got %d", len(got))
	}
}
