package geometry

import "github.com/eleven-am/auteur/internal/vision"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

type Line struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Shape is one drawable annotation. Index is the annotation's position in
// the batch, which is what story subject connections refer to.
type Shape struct {
	Index  int                  `json:"index"`
	Kind   vision.OverlayType   `json:"kind"`
	Rect   *Rect                `json:"rect,omitempty"`
	Point  *Point               `json:"point,omitempty"`
	Guides []Line               `json:"guides,omitempty"`
	Status vision.Status        `json:"status,omitempty"`
	Label  string               `json:"label,omitempty"`
	Role   vision.NarrativeRole `json:"role,omitempty"`
}

// Link joins two story subjects. From is always the lower index.
type Link struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	A    *Point `json:"a,omitempty"`
	B    *Point `json:"b,omitempty"`
}

type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Shapes []Shape `json:"shapes"`
	Links  []Link  `json:"links"`
}

func (l Layout) Empty() bool {
	return len(l.Shapes) == 0 && len(l.Links) == 0
}

// Project maps a batch of frame-normalized annotations onto a width x height
// container. A zero dimension or an empty batch yields an empty layout.
func Project(annotations []vision.Annotation, width, height float64) Layout {
	if width <= 0 || height <= 0 || len(annotations) == 0 {
		return Layout{}
	}

	layout := Layout{
		Width:  width,
		Height: height,
		Shapes: make([]Shape, 0, len(annotations)),
	}

	scale := func(b *vision.Box) *Rect {
		if b == nil {
			return nil
		}
		return &Rect{X: b.X * width, Y: b.Y * height, W: b.W * width, H: b.H * height}
	}

	rects := make([]*Rect, len(annotations))
	for i, a := range annotations {
		s := Shape{Index: i, Kind: a.Kind()}

		switch v := a.(type) {
		case vision.RuleOfThirds:
			s.Rect = &Rect{W: width, H: height}
			s.Guides = thirds(width, height)
			s.Status = v.Status
		case vision.SubjectHighlight:
			s.Rect = scale(v.Box)
			s.Status = v.Status
			s.Label = v.Label
		case vision.FocusPoint:
			if v.At != nil {
				s.Point = &Point{X: v.At.X * width, Y: v.At.Y * height}
			}
			s.Label = v.Label
		case vision.Direction:
			s.Rect = scale(v.Box)
			s.Status = v.Heading
			s.Label = v.Label
		case vision.LeadingLine:
			s.Rect = scale(v.Box)
			s.Label = v.Label
		case vision.StorySubject:
			s.Rect = scale(v.Box)
			s.Label = v.Label
			s.Role = v.Role
		case vision.Unrecognized:
			s.Rect = scale(v.Box)
			s.Label = v.Label
		}

		rects[i] = s.Rect
		layout.Shapes = append(layout.Shapes, s)
	}

	layout.Links = links(annotations, rects)
	return layout
}

func links(annotations []vision.Annotation, rects []*Rect) []Link {
	type pair struct{ a, b int }
	seen := make(map[pair]struct{})
	var out []Link

	for i, a := range annotations {
		subject, ok := a.(vision.StorySubject)
		if !ok || subject.Connection == nil {
			continue
		}
		j := *subject.Connection
		if j < 0 || j >= len(annotations) || j == i {
			continue
		}

		p := pair{a: min(i, j), b: max(i, j)}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}

		link := Link{From: p.a, To: p.b}
		if r := rects[p.a]; r != nil {
			c := r.Center()
			link.A = &c
		}
		if r := rects[p.b]; r != nil {
			c := r.Center()
			link.B = &c
		}
		out = append(out, link)
	}
	return out
}

func thirds(width, height float64) []Line {
	return []Line{
		{From: Point{X: width / 3}, To: Point{X: width / 3, Y: height}},
		{From: Point{X: 2 * width / 3}, To: Point{X: 2 * width / 3, Y: height}},
		{From: Point{Y: height / 3}, To: Point{X: width, Y: height / 3}},
		{From: Point{Y: 2 * height / 3}, To: Point{X: width, Y: 2 * height / 3}},
	}
}
