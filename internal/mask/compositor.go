package mask

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"

	"github.com/anthonynsimon/bild/segment"

	"github.com/ironsheep/mask-tools-mcp/internal/geometry"
	"github.com/ironsheep/mask-tools-mcp/internal/selection"
)

// Errors reported by BuildMask. Callers should test for them with errors.Is.
var (
	// ErrNoSelectionDrawn is returned when there are no primitives to
	// composite.
	ErrNoSelectionDrawn = errors.New("no selection drawn")

	// ErrLayerGeometryMissing is returned when no usable target layer was
	// given.
	ErrLayerGeometryMissing = errors.New("layer geometry missing")

	// ErrInvalidPrimitiveGeometry marks a primitive that was skipped because
	// its coordinates are non-finite or degenerate. It is recorded in
	// Mask.Skipped and never fails a build.
	ErrInvalidPrimitiveGeometry = errors.New("invalid primitive geometry")
)

// Default compositing parameters.
const (
	DefaultExpansionRatio     = 0.01
	DefaultStrokeWidth        = 30.0
	binaryThreshold     uint8 = 128

	// maxCoordinate bounds the magnitude of image-space stroke coordinates
	// BuildMask accepts before clipping.
	maxCoordinate = 1 << 24

	// maxHalfWidth bounds the half-width of a stroke that has to be
	// rasterized. Clipped geometry then stays within a few million units,
	// inside the range of the rasterizer's fixed-point path.
	maxHalfWidth = 1 << 20
)

// Options controls BuildMask. Zero fields take the defaults.
type Options struct {
	// ExpansionRatio inflates every rectangle by this fraction of its
	// larger side on each edge (default 0.01).
	ExpansionRatio float64

	// DefaultStrokeWidth is used for strokes without their own width
	// (default 30).
	DefaultStrokeWidth float64

	// Binary thresholds the result at 50% coverage, removing anti-aliased
	// edges so only 0 and 255 remain.
	Binary bool
}

func (o Options) withDefaults() Options {
	if o.ExpansionRatio <= 0 || math.IsNaN(o.ExpansionRatio) || math.IsInf(o.ExpansionRatio, 0) {
		o.ExpansionRatio = DefaultExpansionRatio
	}
	if o.DefaultStrokeWidth <= 0 || math.IsNaN(o.DefaultStrokeWidth) || math.IsInf(o.DefaultStrokeWidth, 0) {
		o.DefaultStrokeWidth = DefaultStrokeWidth
	}
	return o
}

// SkippedPrimitive records a primitive left out of a mask.
type SkippedPrimitive struct {
	Index int   `json:"index"`
	Err   error `json:"-"`
}

// Mask is a binary selection raster in the original image's pixel space.
//
// Image is exactly OriginalWidth x OriginalHeight. A value of 0 marks a
// fixed pixel and 255 an editable one; intermediate values occur only on
// anti-aliased stroke and rectangle edges.
type Mask struct {
	Image   *image.Gray
	Skipped []SkippedPrimitive
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.Image.Bounds().Dx() }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.Image.Bounds().Dy() }

// BuildMask rasterizes selection primitives into a mask for layer.
//
// Primitives are composited in order onto an all-excluded bitmap of the
// layer's original size. Every vertex is first mapped from display space to
// image space. Rectangles are inflated by ExpansionRatio of their larger
// side, clamped to the image and filled; strokes are drawn with round caps
// and joins. The mask is the union of all primitives.
//
// BuildMask fails with ErrNoSelectionDrawn for an empty primitive list and
// with ErrLayerGeometryMissing when layer is nil or has no positive original
// size. Primitives with invalid geometry are skipped and listed in
// Mask.Skipped. The inputs are not modified.
func BuildMask(primitives []selection.Primitive, layer *geometry.Layer, opts Options) (*Mask, error) {
	return buildMask(primitives, layer, opts, func(w, h int) Surface {
		return NewVectorSurface(w, h)
	})
}

func buildMask(primitives []selection.Primitive, layer *geometry.Layer, opts Options, newSurface func(w, h int) Surface) (*Mask, error) {
	if len(primitives) == 0 {
		return nil, ErrNoSelectionDrawn
	}
	if err := layer.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayerGeometryMissing, err)
	}
	opts = opts.withDefaults()

	width, height := layer.OriginalWidth, layer.OriginalHeight
	surface := newSurface(width, height)
	m := &Mask{}

	for i, p := range primitives {
		if err := paint(surface, p, *layer, opts); err != nil {
			log.Printf("mask: skipping primitive %d: %v", i, err)
			m.Skipped = append(m.Skipped, SkippedPrimitive{Index: i, Err: err})
		}
	}

	m.Image = surface.Image()
	if opts.Binary {
		m.Image = segment.Threshold(m.Image, binaryThreshold)
	}
	return m, nil
}

// paint draws one primitive onto s.
func paint(s Surface, p selection.Primitive, layer geometry.Layer, opts Options) error {
	if p == nil {
		return fmt.Errorf("%w: nil primitive", ErrInvalidPrimitiveGeometry)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPrimitiveGeometry, err)
	}

	switch v := p.(type) {
	case selection.Rectangle:
		s.FillRect(expandRect(v, layer, opts.ExpansionRatio))
		return nil
	case selection.FreehandStroke:
		return paintStroke(s, v, layer, opts.DefaultStrokeWidth)
	default:
		return fmt.Errorf("%w: unsupported primitive kind %q", ErrInvalidPrimitiveGeometry, p.Kind())
	}
}

// expandRect maps a rectangle into image space, inflates it by ratio of its
// larger side and clamps it to the layer.
func expandRect(r selection.Rectangle, layer geometry.Layer, ratio float64) geometry.Rect {
	b := geometry.RectToImageSpace(r.Bounds(), layer)
	expansion := math.Max(b.Dx(), b.Dy()) * ratio
	return b.Inset(expansion).Clamp(float64(layer.OriginalWidth), float64(layer.OriginalHeight))
}

func paintStroke(s Surface, st selection.FreehandStroke, layer geometry.Layer, defaultWidth float64) error {
	width := st.StrokeWidth
	if width == 0 {
		width = defaultWidth
	}
	hw := width / 2

	subpaths := flattenPath(st.Commands, layer)
	for _, sp := range subpaths {
		for _, pt := range sp {
			if math.Abs(pt.X) > maxCoordinate || math.Abs(pt.Y) > maxCoordinate {
				return fmt.Errorf("%w: coordinate (%v,%v) out of range", ErrInvalidPrimitiveGeometry, pt.X, pt.Y)
			}
		}
	}

	// Only the parts of a stroke within hw of the layer can paint it, so
	// segments are clipped to the layer grown by hw (plus a pixel for
	// anti-aliasing). Strokes wholly outside leave the mask untouched.
	canvas := geometry.Rect{X2: float64(layer.OriginalWidth), Y2: float64(layer.OriginalHeight)}
	runs := clipPolylines(subpaths, canvas.Inset(hw+1))
	if len(runs) == 0 {
		return nil
	}

	for _, run := range runs {
		if coversRect(run, hw, canvas) {
			s.FillRect(canvas)
			return nil
		}
	}
	if hw > maxHalfWidth {
		return fmt.Errorf("%w: stroke width %v too large to rasterize", ErrInvalidPrimitiveGeometry, width)
	}

	for _, run := range runs {
		s.StrokePolyline(run, width)
	}
	return nil
}

// clipPolylines clips every segment of the subpaths to r. Consecutive
// segments that stay connected after clipping are kept together as one
// polyline so their joins are drawn. Subpaths of a single point are dropped.
func clipPolylines(subpaths [][]geometry.Point, r geometry.Rect) [][]geometry.Point {
	var runs [][]geometry.Point
	for _, sp := range subpaths {
		var run []geometry.Point
		for i := 1; i < len(sp); i++ {
			a, b, ok := clipSegment(sp[i-1], sp[i], r)
			if !ok {
				continue
			}
			if len(run) > 0 && run[len(run)-1] == a {
				run = append(run, b)
				continue
			}
			if len(run) > 0 {
				runs = append(runs, run)
			}
			run = []geometry.Point{a, b}
		}
		if len(run) > 0 {
			runs = append(runs, run)
		}
	}
	return runs
}

// clipSegment clips the segment a-b to r (Liang-Barsky). ok is false when
// the segment misses r. Endpoints inside r are returned unchanged.
func clipSegment(a, b geometry.Point, r geometry.Rect) (geometry.Point, geometry.Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X - r.X1},
		{dx, r.X2 - a.X},
		{-dy, a.Y - r.Y1},
		{dy, r.Y2 - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, t)
		}
	}

	ca, cb := a, b
	if t0 > 0 {
		ca = geometry.Point{X: a.X + t0*dx, Y: a.Y + t0*dy}
	}
	if t1 < 1 {
		cb = geometry.Point{X: a.X + t1*dx, Y: a.Y + t1*dy}
	}
	return ca, cb, true
}

// coversRect reports whether some segment of run passes within hw of all
// four corners of r. The stroke around a segment is convex, so it then
// covers r entirely.
func coversRect(run []geometry.Point, hw float64, r geometry.Rect) bool {
	corners := [4]geometry.Point{
		{X: r.X1, Y: r.Y1},
		{X: r.X2, Y: r.Y1},
		{X: r.X2, Y: r.Y2},
		{X: r.X1, Y: r.Y2},
	}
	for i := 1; i < len(run); i++ {
		covered := true
		for _, c := range corners {
			if distToSegment(c, run[i-1], run[i]) > hw {
				covered = false
				break
			}
		}
		if covered {
			return true
		}
	}
	return false
}

func distToSegment(p, a, b geometry.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// flattenPath maps path commands into image space and splits them into
// polylines, one per subpath. Quadratic curves are subdivided into line
// segments. A subpath consisting of a lone move yields a single point,
// which is not drawn.
func flattenPath(cmds []selection.PathCommand, layer geometry.Layer) [][]geometry.Point {
	var (
		out [][]geometry.Point
		cur []geometry.Point
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = nil
	}

	for _, c := range cmds {
		pts := c.Points()
		for i := range pts {
			pts[i] = geometry.ToImageSpace(pts[i], layer)
		}
		switch c.Op {
		case selection.OpMove:
			flush()
			cur = []geometry.Point{pts[0]}
		case selection.OpLine:
			cur = append(cur, pts[0])
		case selection.OpQuad:
			cur = appendQuad(cur, pts[0], pts[1])
		}
	}
	flush()
	return out
}

// appendQuad subdivides the quadratic Bézier from the last point of pts via
// ctrl to end and appends the resulting points, end included. The step
// count grows with the curve's deviation from a straight line.
func appendQuad(pts []geometry.Point, ctrl, end geometry.Point) []geometry.Point {
	start := pts[len(pts)-1]
	ddx := start.X - 2*ctrl.X + end.X
	ddy := start.Y - 2*ctrl.Y + end.Y
	devsq := ddx*ddx + ddy*ddy

	if devsq >= 0.333 {
		const tol = 3
		n := 1 + int(math.Sqrt(math.Sqrt(tol*devsq)))
		for i := 1; i < n; i++ {
			t := float64(i) / float64(n)
			mt := 1 - t
			pts = append(pts, geometry.Point{
				X: mt*mt*start.X + 2*mt*t*ctrl.X + t*t*end.X,
				Y: mt*mt*start.Y + 2*mt*t*ctrl.Y + t*t*end.Y,
			})
		}
	}
	return append(pts, end)
}

