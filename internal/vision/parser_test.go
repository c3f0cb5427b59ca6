package vision

import (
	"errors"
	"strings"
	"testing"
)

func TestParseResponse_FencedJSON(t *testing.T) {
	raw := "```json\n{\"analysis\":\"Subject centered\",\"score\":7,\"overlays\":[{\"type\":\"rule_of_thirds\",\"status\":\"match\"}]}\n```"

	data, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Analysis != "Subject centered" {
		t.Errorf("expected analysis 'Subject centered', got %q", data.Analysis)
	}
	if data.Score != 7 {
		t.Errorf("expected score 7, got %d", data.Score)
	}
	if len(data.Overlays) != 1 {
		t.Fatalf("expected 1 overlay, got %d", len(data.Overlays))
	}
	o := data.Overlays[0]
	if o.Type != OverlayRuleOfThirds || o.Status != StatusMatch {
		t.Errorf("unexpected overlay %+v", o)
	}
	if o.Coordinates != nil || o.Connection != nil || o.Label != "" || o.NarrativeRole != "" {
		t.Errorf("absent fields should stay absent, got %+v", o)
	}
}

func TestParseResponse_NoJSON(t *testing.T) {
	for _, raw := range []string{"not json at all", "", "} backwards {", "```\n```"} {
		data, err := ParseResponse(raw)
		if data != nil {
			t.Errorf("%q: expected no data", raw)
		}
		if !errors.Is(err, ErrParse) || !errors.Is(err, ErrNoJSON) {
			t.Errorf("%q: expected ErrNoJSON, got %v", raw, err)
		}
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	_, err := ParseResponse(`here you go: {"analysis": "x", "score": }`)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestParseResponse_SurroundingProse(t *testing.T) {
	data, err := ParseResponse(`Sure! {"analysis":"Tilt down","score":4,"overlays":[]} Hope that helps.`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Analysis != "Tilt down" || data.Score != 4 {
		t.Errorf("unexpected data %+v", data)
	}
	if data.Overlays == nil || len(data.Overlays) != 0 {
		t.Errorf("expected empty, non-nil overlays, got %#v", data.Overlays)
	}
}

func TestParseResponse_Score(t *testing.T) {
	tests := []struct {
		name string
		json string
		want int
	}{
		{"missing", `{}`, 5},
		{"string", `{"score":"high"}`, 5},
		{"null", `{"score":null}`, 5},
		{"negative", `{"score":-3}`, 1},
		{"zero", `{"score":0}`, 1},
		{"too high", `{"score":42}`, 10},
		{"huge", `{"score":1e20}`, 10},
		{"huge negative", `{"score":-1e20}`, 1},
		{"fractional", `{"score":6.6}`, 7},
		{"in range", `{"score":9}`, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ParseResponse(tt.json)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if data.Score != tt.want {
				t.Errorf("expected %d, got %d", tt.want, data.Score)
			}
			if data.Score < MinScore || data.Score > MaxScore {
				t.Errorf("score %d out of bounds", data.Score)
			}
		})
	}
}

func TestParseResponse_AnalysisNonString(t *testing.T) {
	data, err := ParseResponse(`{"analysis": 12}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Analysis != "" {
		t.Errorf("expected empty analysis, got %q", data.Analysis)
	}
}

func TestParseResponse_CoordinatesClamped(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []float64
	}{
		{"in range", `[0.1, 0.2, 0.3, 0.4]`, []float64{0.1, 0.2, 0.3, 0.4}},
		{"out of range", `[-1, 2.5, 1e9, -0.0001]`, []float64{0, 1, 1, 0}},
		{"short", `[0.5]`, []float64{0.5, 0, 0, 0}},
		{"long", `[0.1, 0.2, 0.3, 0.4, 0.9]`, []float64{0.1, 0.2, 0.3, 0.4}},
		{"non numeric", `["a", null, 0.7, {}]`, []float64{0, 0, 0.7, 0}},
		{"empty", `[]`, []float64{0, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ParseResponse(`{"overlays":[{"type":"subject_highlight","coordinates":` + tt.in + `}]}`)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := data.Overlays[0].Coordinates
			if len(got) != 4 {
				t.Fatalf("expected 4 components, got %v", got)
			}
			for i := range got {
				if got[i] < 0 || got[i] > 1 {
					t.Errorf("component %d = %v out of [0,1]", i, got[i])
				}
				if got[i] != tt.want[i] {
					t.Errorf("component %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestParseResponse_OverlayFiltering(t *testing.T) {
	raw := `{"overlays":[
		{"type":"story_subject","label":"dog","connection":1,"narrative_role":"primary"},
		{"status":"match"},
		{"type":7},
		"loose string",
		{"type":"story_subject","connection":-1,"narrative_role":"hero"},
		{"type":"sparkle","label":"unknown kinds survive"},
		{"type":"story_subject","connection":1e20}
	]}`

	data, err := ParseResponse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data.Overlays) != 4 {
		t.Fatalf("expected 4 overlays, got %d: %+v", len(data.Overlays), data.Overlays)
	}

	first := data.Overlays[0]
	if first.Connection == nil || *first.Connection != 1 {
		t.Errorf("expected connection 1, got %v", first.Connection)
	}
	if first.NarrativeRole != RolePrimary {
		t.Errorf("expected primary role, got %q", first.NarrativeRole)
	}

	second := data.Overlays[1]
	if second.Connection != nil {
		t.Errorf("negative connection should be dropped, got %d", *second.Connection)
	}
	if second.NarrativeRole != "" {
		t.Errorf("unknown role should be dropped, got %q", second.NarrativeRole)
	}

	if data.Overlays[2].Type != OverlayType("sparkle") {
		t.Errorf("expected unknown type to be kept, got %q", data.Overlays[2].Type)
	}

	if c := data.Overlays[3].Connection; c != nil {
		t.Errorf("out of range connection should be dropped, got %d", *c)
	}
}

func TestParseResponse_LabelTruncated(t *testing.T) {
	long := strings.Repeat("é", 80)
	data, err := ParseResponse(`{"overlays":[{"type":"focus_point","label":"` + long + `"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label := data.Overlays[0].Label
	if n := len([]rune(label)); n != MaxLabelLength {
		t.Errorf("expected %d runes, got %d", MaxLabelLength, n)
	}
}
