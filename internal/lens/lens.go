package lens

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMode = errors.New("unknown lens mode")

type Mode string

const (
	Geometry Mode = "geometry"
	Light    Mode = "light"
	Story    Mode = "story"
)

func (m Mode) String() string {
	return string(m)
}

func (m Mode) Valid() bool {
	switch m {
	case Geometry, Light, Story:
		return true
	}
	return false
}

func Modes() []Mode {
	return []Mode{Geometry, Light, Story}
}

func Parse(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// Prompt returns the analysis prompt for the mode. Unknown modes fall back to
// the geometry prompt.
func Prompt(m Mode) string {
	switch m {
	case Light:
		return lightPrompt
	case Story:
		return storyPrompt
	default:
		return geometryPrompt
	}
}

const responseShape = `Respond with JSON only, no prose and no markdown, using exactly this shape:
{"analysis": string, "score": integer 1-10, "overlays": [ ... ]}
Coordinates are [x, y, width, height] normalized to 0-1 relative to the frame.`

const geometryPrompt = `You are a cinematographer reviewing a live camera frame for composition.
Evaluate framing, balance and the placement of the main subject.
` + responseShape + `
Overlay entries may be:
- {"type": "rule_of_thirds", "status": "match" | "mismatch"}
- {"type": "subject_highlight", "coordinates": [x, y, w, h], "label": string}
- {"type": "focus_point", "coordinates": [x, y, 0, 0], "label": string}
- {"type": "direction", "status": "left" | "right" | "up" | "down", "label": string}
- {"type": "leading_line", "coordinates": [x, y, w, h]}
Keep "analysis" to one or two short sentences with a concrete camera adjustment.`

const lightPrompt = `You are a gaffer reviewing a live camera frame for lighting.
Evaluate key light direction, exposure, contrast and color temperature.
` + responseShape + `
Overlay entries may be:
- {"type": "subject_highlight", "coordinates": [x, y, w, h], "status": "match" | "mismatch", "label": string}
- {"type": "focus_point", "coordinates": [x, y, 0, 0], "label": "key light" | "hotspot" | "shadow"}
- {"type": "direction", "status": "left" | "right" | "up" | "down", "label": "light direction"}
Keep "analysis" to one or two short sentences with a concrete lighting adjustment.`

const storyPrompt = `You are a visual storyteller looking at a live camera frame.
Find two to four subjects that together suggest a story: contrast, juxtaposition, scale or causality.
` + responseShape + `
Overlay entries must be story subjects:
- {"type": "story_subject", "coordinates": [x, y, w, h], "label": string, "narrative_role": "primary" | "secondary" | "context", "connection": index of the related subject in this overlays array}
Use "analysis" to describe the connection between the subjects in one evocative sentence.
"score" rates the narrative strength of the frame.`
