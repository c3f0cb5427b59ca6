package agent

import (
	"fmt"
	"strings"

	"github.com/eleven-am/auteur/internal/lens"
	"github.com/eleven-am/auteur/internal/vision"
)

const BaseInstructions = `You are a terse professional cinematographer.

RULES:
- Keep answers under 2 sentences.
- Focus on physical adjustments: pan left, tilt down, step back, zoom in.
- Never explain theory unless explicitly asked.
- Be direct. No filler words.

When visual context is provided, use it to give specific, actionable feedback.
If no visual context is available, say you're still observing.

STORY MODE:
When in story mode, you are a visual storyteller. The analysis will describe interesting
subjects that create a narrative together. Your role is to:
- Describe the story connection between subjects (what makes them compelling together)
- Suggest framing adjustments to strengthen the visual narrative
- Point out non-obvious relationships (contrast, juxtaposition, scale, causality)
- Be poetic but brief - one evocative observation is better than a paragraph`

// VisualContext is the agent's copy of the latest vision update.
type VisualContext struct {
	Mode      lens.Mode        `json:"mode"`
	Analysis  string           `json:"analysis"`
	Score     int              `json:"score"`
	Overlays  []vision.Overlay `json:"overlays"`
	Timestamp int64            `json:"timestamp"`
}

func NewVisualContext() VisualContext {
	return VisualContext{Mode: lens.Geometry}
}

// BuildInstructions renders the system instructions for the conversational
// model with the visual context appended.
func BuildInstructions(vc VisualContext) string {
	if vc.Analysis == "" {
		return BaseInstructions + "\n\n[Visual Context: Still observing - no data yet]"
	}

	if vc.Mode == lens.Story {
		if subjects := describeStorySubjects(vc.Overlays); subjects != "" {
			return fmt.Sprintf("%s\n\n[Visual Context - STORY Mode, Narrative Score: %d/10]:\nStory Elements: %s\nConnection: %s\n\nDescribe what makes these subjects tell a story together. Be evocative.",
				BaseInstructions, vc.Score, subjects, vc.Analysis)
		}
	}

	mode := string(vc.Mode)
	if mode == "" {
		mode = string(lens.Geometry)
	}
	return fmt.Sprintf("%s\n\n[Visual Context - %s Lens, Score: %d/10]:\n%s",
		BaseInstructions, strings.ToUpper(mode), vc.Score, vc.Analysis)
}

func describeStorySubjects(overlays []vision.Overlay) string {
	var parts []string
	for _, o := range overlays {
		if o.Type != vision.OverlayStorySubject {
			continue
		}
		label := o.Label
		if label == "" {
			label = "unknown"
		}
		role := string(o.NarrativeRole)
		if role == "" {
			role = "element"
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", label, role))
	}
	return strings.Join(parts, ", ")
}
