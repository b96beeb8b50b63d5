package selection

import (
	"fmt"
	"math"

	"github.com/ironsheep/mask-tools-mcp/internal/geometry"
)

// Kind identifies the concrete type of a Primitive.
type Kind string

const (
	KindRectangle Kind = "rectangle"
	KindStroke    Kind = "stroke"
)

// Primitive is a user-drawn selection shape in display coordinates.
//
// Implementations are Rectangle and FreehandStroke. Primitives are values:
// once built they are never mutated, and the model hands out copies.
type Primitive interface {
	Kind() Kind

	// Bounds returns the display-space bounding box of the primitive's
	// control geometry, ignoring stroke width.
	Bounds() geometry.Rect

	// Validate reports why the primitive cannot be rasterized, or nil.
	Validate() error

	clone() Primitive
}

// Rectangle is an axis-aligned rectangular selection.
//
// RegionID is an optional caller-assigned tag used to correlate the
// rectangle with external state such as per-region instructions. It is
// stored and returned but never interpreted.
type Rectangle struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	RegionID *int    `json:"region_id,omitempty"`
}

// Kind implements Primitive.
func (r Rectangle) Kind() Kind { return KindRectangle }

// Bounds implements Primitive.
func (r Rectangle) Bounds() geometry.Rect {
	return geometry.RectFromXYWH(r.X, r.Y, r.Width, r.Height)
}

// Validate implements Primitive. A rectangle must have finite coordinates
// and a non-zero area.
func (r Rectangle) Validate() error {
	b := r.Bounds()
	if !b.IsFinite() {
		return fmt.Errorf("rectangle has non-finite coordinates")
	}
	if b.Empty() {
		return fmt.Errorf("rectangle %vx%v has no area", r.Width, r.Height)
	}
	return nil
}

func (r Rectangle) clone() Primitive {
	if r.RegionID != nil {
		id := *r.RegionID
		r.RegionID = &id
	}
	return r
}

// Op is a path command operator.
type Op string

const (
	OpMove Op = "move"
	OpLine Op = "line"
	OpQuad Op = "quad"
)

// PathCommand is one step of a freehand path.
//
// Move and Line carry two coordinates (x, y). Quad carries four: the control
// point followed by the end point (cx, cy, x, y).
type PathCommand struct {
	Op     Op        `json:"type"`
	Coords []float64 `json:"coords"`
}

// Points returns the command's coordinates as points.
func (c PathCommand) Points() []geometry.Point {
	pts := make([]geometry.Point, 0, len(c.Coords)/2)
	for i := 0; i+1 < len(c.Coords); i += 2 {
		pts = append(pts, geometry.Point{X: c.Coords[i], Y: c.Coords[i+1]})
	}
	return pts
}

func (c PathCommand) validate() error {
	want := 2
	switch c.Op {
	case OpMove, OpLine:
	case OpQuad:
		want = 4
	default:
		return fmt.Errorf("unknown path command %q", c.Op)
	}
	if len(c.Coords) != want {
		return fmt.Errorf("%s command needs %d coordinates, got %d", c.Op, want, len(c.Coords))
	}
	for _, v := range c.Coords {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s command has non-finite coordinates", c.Op)
		}
	}
	return nil
}

// FreehandStroke is a brush path stroked with round caps and joins.
//
// A StrokeWidth of zero means "use the compositor's default width".
type FreehandStroke struct {
	Commands    []PathCommand `json:"commands"`
	StrokeWidth float64       `json:"stroke_width,omitempty"`
}

// Kind implements Primitive.
func (s FreehandStroke) Kind() Kind { return KindStroke }

// Bounds implements Primitive. The box covers every coordinate including
// quadratic control points.
func (s FreehandStroke) Bounds() geometry.Rect {
	first := true
	var b geometry.Rect
	for _, c := range s.Commands {
		for _, p := range c.Points() {
			if first {
				b = geometry.Rect{X1: p.X, Y1: p.Y, X2: p.X, Y2: p.Y}
				first = false
				continue
			}
			b.X1 = math.Min(b.X1, p.X)
			b.Y1 = math.Min(b.Y1, p.Y)
			b.X2 = math.Max(b.X2, p.X)
			b.Y2 = math.Max(b.Y2, p.Y)
		}
	}
	return b
}

// Validate implements Primitive. Every command must be well formed, the
// width must be non-negative and finite, and the path must start with a
// move and contain at least one drawing command.
func (s FreehandStroke) Validate() error {
	if math.IsNaN(s.StrokeWidth) || math.IsInf(s.StrokeWidth, 0) || s.StrokeWidth < 0 {
		return fmt.Errorf("invalid stroke width %v", s.StrokeWidth)
	}
	if len(s.Commands) == 0 {
		return fmt.Errorf("stroke has no path commands")
	}
	if s.Commands[0].Op != OpMove {
		return fmt.Errorf("stroke must start with a move command, got %q", s.Commands[0].Op)
	}
	drawing := 0
	for i, c := range s.Commands {
		if err := c.validate(); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
		if c.Op != OpMove {
			drawing++
		}
	}
	if drawing == 0 {
		return fmt.Errorf("stroke has no drawing commands")
	}
	return nil
}

func (s FreehandStroke) clone() Primitive {
	cmds := make([]PathCommand, len(s.Commands))
	for i, c := range s.Commands {
		cmds[i] = PathCommand{Op: c.Op, Coords: append([]float64(nil), c.Coords...)}
	}
	s.Commands = cmds
	return s
}
