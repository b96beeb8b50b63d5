package mask

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/ironsheep/mask-tools-mcp/internal/geometry"
)

// Surface is a raster target for mask shapes.
//
// Painting only ever adds coverage: a pixel that has been painted stays
// painted, whatever is drawn afterwards.
type Surface interface {
	// FillRect paints the axis-aligned rectangle r.
	FillRect(r geometry.Rect)

	// StrokePolyline paints a polyline of the given width with round caps
	// and round joins. A single point paints a disc.
	StrokePolyline(points []geometry.Point, width float64)

	// Image returns the painted coverage, 0 for untouched pixels and 255
	// for fully covered ones. The result shares memory with the surface.
	Image() *image.Gray
}

// circleKappa is the cubic Bézier handle length for a quarter circle.
const circleKappa = 0.5522847498

// VectorSurface is a Surface backed by golang.org/x/image/vector.
//
// Shapes are queued on a single anti-aliasing rasterizer and composited onto
// the coverage buffer when Image is called. Every shape is emitted with the
// same (positive) winding, so overlapping shapes accumulate coverage that
// the rasterizer clamps to full; the result is their union.
type VectorSurface struct {
	z       *vector.Rasterizer
	dst     *image.Alpha
	pending bool
}

// NewVectorSurface creates a blank surface of the given size.
func NewVectorSurface(width, height int) *VectorSurface {
	return &VectorSurface{
		z:   vector.NewRasterizer(width, height),
		dst: image.NewAlpha(image.Rect(0, 0, width, height)),
	}
}

// FillRect implements Surface.
func (s *VectorSurface) FillRect(r geometry.Rect) {
	r = r.Normalize()
	if r.Empty() {
		return
	}
	s.polygon([]geometry.Point{
		{X: r.X1, Y: r.Y1},
		{X: r.X2, Y: r.Y1},
		{X: r.X2, Y: r.Y2},
		{X: r.X1, Y: r.Y2},
	})
}

// StrokePolyline implements Surface. The stroke is built as the union of a
// disc at every vertex and a quad along every segment, which is exactly a
// round-capped, round-joined stroke.
func (s *VectorSurface) StrokePolyline(points []geometry.Point, width float64) {
	if len(points) == 0 || width <= 0 {
		return
	}
	hw := width / 2

	for _, p := range points {
		s.disc(p, hw)
	}
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		dx, dy := b.X-a.X, b.Y-a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		nx, ny := -dy/length*hw, dx/length*hw
		s.polygon([]geometry.Point{
			{X: a.X + nx, Y: a.Y + ny},
			{X: b.X + nx, Y: b.Y + ny},
			{X: b.X - nx, Y: b.Y - ny},
			{X: a.X - nx, Y: a.Y - ny},
		})
	}
}

// Image implements Surface.
func (s *VectorSurface) Image() *image.Gray {
	if s.pending {
		s.z.Draw(s.dst, s.dst.Bounds(), image.Opaque, image.Point{})
		size := s.z.Size()
		s.z.Reset(size.X, size.Y)
		s.pending = false
	}
	return &image.Gray{Pix: s.dst.Pix, Stride: s.dst.Stride, Rect: s.dst.Rect}
}

// polygon queues a closed polygon, reversing it if needed so that its
// signed area is positive.
func (s *VectorSurface) polygon(pts []geometry.Point) {
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	s.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		s.z.LineTo(float32(p.X), float32(p.Y))
	}
	s.z.ClosePath()
	s.pending = true
}

// disc queues a circle with positive winding, matching polygon.
func (s *VectorSurface) disc(c geometry.Point, radius float64) {
	cx, cy, r := float32(c.X), float32(c.Y), float32(radius)
	kr := float32(circleKappa) * r

	s.z.MoveTo(cx, cy-r)
	s.z.CubeTo(cx+kr, cy-r, cx+r, cy-kr, cx+r, cy)
	s.z.CubeTo(cx+r, cy+kr, cx+kr, cy+r, cx, cy+r)
	s.z.CubeTo(cx-kr, cy+r, cx-r, cy+kr, cx-r, cy)
	s.z.CubeTo(cx-r, cy-kr, cx-kr, cy-r, cx, cy-r)
	s.z.ClosePath()
	s.pending = true
}

// signedArea returns the shoelace area of a closed polygon.
func signedArea(pts []geometry.Point) float64 {
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}
