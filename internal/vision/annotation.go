package vision

// Box is a frame-normalized rectangle; every component is in [0,1].
type Box struct {
	X float64
	Y float64
	W float64
	H float64
}

type Point struct {
	X float64
	Y float64
}

// Annotation is the tagged form of an Overlay. Implementations are closed to
// this package.
type Annotation interface {
	Kind() OverlayType
	annotation()
}

type RuleOfThirds struct {
	Status Status
}

type SubjectHighlight struct {
	Box    *Box
	Status Status
	Label  string
}

type FocusPoint struct {
	At    *Point
	Label string
}

type Direction struct {
	Heading Status
	Box     *Box
	Label   string
}

type LeadingLine struct {
	Box   *Box
	Label string
}

type StorySubject struct {
	Box        *Box
	Label      string
	Connection *int
	Role       NarrativeRole
}

// Unrecognized keeps batch positions aligned when the model emits a type we
// do not draw.
type Unrecognized struct {
	Type  OverlayType
	Box   *Box
	Label string
}

func (RuleOfThirds) Kind() OverlayType     { return OverlayRuleOfThirds }
func (SubjectHighlight) Kind() OverlayType { return OverlaySubjectHighlight }
func (FocusPoint) Kind() OverlayType       { return OverlayFocusPoint }
func (Direction) Kind() OverlayType        { return OverlayDirection }
func (LeadingLine) Kind() OverlayType      { return OverlayLeadingLine }
func (StorySubject) Kind() OverlayType     { return OverlayStorySubject }
func (u Unrecognized) Kind() OverlayType   { return u.Type }

func (RuleOfThirds) annotation()     {}
func (SubjectHighlight) annotation() {}
func (FocusPoint) annotation()       {}
func (Direction) annotation()        {}
func (LeadingLine) annotation()      {}
func (StorySubject) annotation()     {}
func (Unrecognized) annotation()     {}

// Annotate converts a parsed overlay batch into tagged annotations. The
// result has the same length and order as the input so connection indices
// keep pointing at the same subjects.
func Annotate(overlays []Overlay) []Annotation {
	out := make([]Annotation, 0, len(overlays))
	for _, o := range overlays {
		out = append(out, annotate(o))
	}
	return out
}

func annotate(o Overlay) Annotation {
	box := boxOf(o.Coordinates)

	switch o.Type {
	case OverlayRuleOfThirds:
		return RuleOfThirds{Status: o.Status}
	case OverlaySubjectHighlight:
		return SubjectHighlight{Box: box, Status: o.Status, Label: o.Label}
	case OverlayFocusPoint:
		var at *Point
		if box != nil {
			at = &Point{X: box.X, Y: box.Y}
		}
		return FocusPoint{At: at, Label: o.Label}
	case OverlayDirection:
		return Direction{Heading: o.Status, Box: box, Label: o.Label}
	case OverlayLeadingLine:
		return LeadingLine{Box: box, Label: o.Label}
	case OverlayStorySubject:
		var conn *int
		if o.Connection != nil {
			c := *o.Connection
			conn = &c
		}
		return StorySubject{Box: box, Label: o.Label, Connection: conn, Role: o.NarrativeRole}
	default:
		return Unrecognized{Type: o.Type, Box: box, Label: o.Label}
	}
}

func boxOf(coords []float64) *Box {
	if len(coords) < 4 {
		return nil
	}
	return &Box{X: coords[0], Y: coords[1], W: coords[2], H: coords[3]}
}
