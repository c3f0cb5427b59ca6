package vision

import (
	"github.com/eleven-am/auteur/internal/lens"
)

type OverlayType string

const (
	OverlayRuleOfThirds     OverlayType = "rule_of_thirds"
	OverlaySubjectHighlight OverlayType = "subject_highlight"
	OverlayFocusPoint       OverlayType = "focus_point"
	OverlayDirection        OverlayType = "direction"
	OverlayLeadingLine      OverlayType = "leading_line"
	OverlayStorySubject     OverlayType = "story_subject"
)

type Status string

const (
	StatusMatch    Status = "match"
	StatusMismatch Status = "mismatch"
	StatusLeft     Status = "left"
	StatusRight    Status = "right"
	StatusUp       Status = "up"
	StatusDown     Status = "down"
)

type NarrativeRole string

const (
	RolePrimary   NarrativeRole = "primary"
	RoleSecondary NarrativeRole = "secondary"
	RoleContext   NarrativeRole = "context"
)

func (r NarrativeRole) Valid() bool {
	switch r {
	case RolePrimary, RoleSecondary, RoleContext:
		return true
	}
	return false
}

const (
	MaxLabelLength = 50
	MinScore       = 1
	MaxScore       = 10
	DefaultScore   = 5
	HistoryLimit   = 50
)

// Overlay is the permissive wire form of one annotation. Coordinates, when
// present, always hold four components in [0,1].
type Overlay struct {
	Type          OverlayType   `json:"type"`
	Status        Status        `json:"status,omitempty"`
	Coordinates   []float64     `json:"coordinates,omitempty"`
	Label         string        `json:"label,omitempty"`
	Connection    *int          `json:"connection,omitempty"`
	NarrativeRole NarrativeRole `json:"narrative_role,omitempty"`
}

type Data struct {
	Analysis string    `json:"analysis"`
	Score    int       `json:"score"`
	Overlays []Overlay `json:"overlays"`
}

// Insight is an accepted, deduplicated analysis. It is never mutated after
// the controller builds it.
type Insight struct {
	Data        Data         `json:"data"`
	Annotations []Annotation `json:"-"`
	Lens        lens.Mode    `json:"lens"`
	Timestamp   int64        `json:"timestamp"`
}

type Frame struct {
	Source    string
	Timestamp int64
	Data      []byte
	Width     int
	Height    int
}

type State string

const (
	StateIdle      State = "idle"
	StateStarting  State = "starting"
	StateStreaming State = "streaming"
	StateStopping  State = "stopping"
)

type Freshness string

const (
	FreshnessIdle  Freshness = "idle"
	FreshnessFresh Freshness = "fresh"
	FreshnessStale Freshness = "stale"
)
