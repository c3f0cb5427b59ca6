package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrParse     = errors.New("parse model output")
	ErrNoJSON    = errors.New("no json object found")
	ErrMalformed = errors.New("malformed json object")
)

const codeFence = "```"

// ParseResponse turns raw model output into normalized Data. Any error means
// there is no insight this cycle; it is never fatal to the session.
func ParseResponse(raw string) (*Data, error) {
	body, ok := extractObject(stripFence(raw))
	if !ok {
		return nil, fmt.Errorf("%w: %w", ErrParse, ErrNoJSON)
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrParse, ErrMalformed, err)
	}

	data := &Data{
		Analysis: stringField(fields["analysis"]),
		Score:    normalizeScore(fields["score"]),
		Overlays: normalizeOverlays(fields["overlays"]),
	}
	return data, nil
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, codeFence) {
		s = strings.TrimPrefix(s, codeFence)
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{}") {
			s = s[nl+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), codeFence)
	return strings.TrimSpace(s)
}

func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

func normalizeScore(v any) int {
	n, ok := v.(float64)
	if !ok || math.IsNaN(n) {
		return DefaultScore
	}
	return int(math.Max(MinScore, math.Min(MaxScore, math.Round(n))))
}

func normalizeOverlays(v any) []Overlay {
	items, ok := v.([]any)
	if !ok {
		return []Overlay{}
	}

	overlays := make([]Overlay, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		typ, ok := entry["type"].(string)
		if !ok {
			continue
		}
		overlays = append(overlays, normalizeOverlay(OverlayType(typ), entry))
	}
	return overlays
}

func normalizeOverlay(typ OverlayType, entry map[string]any) Overlay {
	o := Overlay{Type: typ}

	if s, ok := entry["status"].(string); ok {
		o.Status = Status(s)
	}

	if coords, ok := entry["coordinates"].([]any); ok {
		o.Coordinates = normalizeCoordinates(coords)
	}

	if label, ok := entry["label"].(string); ok {
		o.Label = truncate(label, MaxLabelLength)
	}

	if n, ok := entry["connection"].(float64); ok && n >= 0 && n <= math.MaxInt32 {
		c := int(n)
		o.Connection = &c
	}

	if role, ok := entry["narrative_role"].(string); ok && NarrativeRole(role).Valid() {
		o.NarrativeRole = NarrativeRole(role)
	}

	return o
}

func normalizeCoordinates(values []any) []float64 {
	coords := make([]float64, 4)
	for i := 0; i < 4 && i < len(values); i++ {
		if n, ok := values[i].(float64); ok {
			coords[i] = clampUnit(n)
		}
	}
	return coords
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
