// Package geometry maps selection coordinates from the display overlay into
// the pixel grid of the original image.
//
// # Coordinate Spaces
//
// Display space is the coordinate system of the interactive overlay on which
// the user draws. Image space is the 0-based pixel grid of the original
// image, with (0,0) at the top-left corner, X increasing rightward and Y
// increasing downward.
//
// The two spaces share a 1:1 pixel mapping at draw time. Any zoom or scale
// factor is normalized by the canvas layer before coordinates reach this
// package, so the transform is a pure translation by the layer offset.
package geometry

import (
	"fmt"
	"math"
)

// Point is a position in either display or image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return isFinite(p.X) && isFinite(p.Y)
}

// Rect is an axis-aligned rectangle. (X1, Y1) is the top-left corner and
// (X2, Y2) the bottom-right corner; a normalized Rect has X1 <= X2 and
// Y1 <= Y2.
type Rect struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// RectFromXYWH builds a normalized Rect from an origin and a size. Negative
// sizes are accepted and flip the corresponding corner.
func RectFromXYWH(x, y, w, h float64) Rect {
	return Rect{X1: x, Y1: y, X2: x + w, Y2: y + h}.Normalize()
}

// Normalize returns r with its corners ordered so that X1 <= X2 and Y1 <= Y2.
func (r Rect) Normalize() Rect {
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Dx returns the width of r.
func (r Rect) Dx() float64 { return r.X2 - r.X1 }

// Dy returns the height of r.
func (r Rect) Dy() float64 { return r.Y2 - r.Y1 }

// Inset grows r by d on every side. Negative d shrinks it.
func (r Rect) Inset(d float64) Rect {
	return Rect{X1: r.X1 - d, Y1: r.Y1 - d, X2: r.X2 + d, Y2: r.Y2 + d}
}

// Clamp limits r to the box [0, width) x [0, height). The result may be
// empty when r lies entirely outside the box.
func (r Rect) Clamp(width, height float64) Rect {
	return Rect{
		X1: math.Max(0, math.Min(r.X1, width)),
		Y1: math.Max(0, math.Min(r.Y1, height)),
		X2: math.Max(0, math.Min(r.X2, width)),
		Y2: math.Max(0, math.Min(r.Y2, height)),
	}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return !(r.X1 < r.X2 && r.Y1 < r.Y2)
}

// IsFinite reports whether all four coordinates are finite numbers.
func (r Rect) IsFinite() bool {
	return isFinite(r.X1) && isFinite(r.Y1) && isFinite(r.X2) && isFinite(r.Y2)
}

// MaxLayerPixels bounds OriginalWidth*OriginalHeight. A mask of this size
// needs about 320 MiB of raster buffers while it is built.
const MaxLayerPixels = 1 << 26

// Layer describes where the edited image layer sits on the overlay and its
// true pixel dimensions.
//
// OriginalWidth and OriginalHeight are the authoritative dimensions of any
// mask built for the layer. DisplayWidth and DisplayHeight are informational
// only and never used for sizing.
type Layer struct {
	OffsetX        float64 `json:"offset_x"`
	OffsetY        float64 `json:"offset_y"`
	DisplayWidth   float64 `json:"display_width,omitempty"`
	DisplayHeight  float64 `json:"display_height,omitempty"`
	OriginalWidth  int     `json:"original_width"`
	OriginalHeight int     `json:"original_height"`
}

// Validate reports an error when the layer cannot be used as a mask target.
func (l *Layer) Validate() error {
	if l == nil {
		return fmt.Errorf("no layer geometry")
	}
	if l.OriginalWidth <= 0 || l.OriginalHeight <= 0 {
		return fmt.Errorf("original dimensions %dx%d must be positive", l.OriginalWidth, l.OriginalHeight)
	}
	if l.OriginalWidth > MaxLayerPixels/l.OriginalHeight {
		return fmt.Errorf("original dimensions %dx%d exceed %d pixels", l.OriginalWidth, l.OriginalHeight, MaxLayerPixels)
	}
	if !isFinite(l.OffsetX) || !isFinite(l.OffsetY) {
		return fmt.Errorf("layer offset (%v,%v) is not finite", l.OffsetX, l.OffsetY)
	}
	return nil
}

// ToImageSpace maps a display-space point into the layer's image space.
// No clamping or scaling is applied.
func ToImageSpace(p Point, l Layer) Point {
	return Point{X: p.X - l.OffsetX, Y: p.Y - l.OffsetY}
}

// RectToImageSpace maps both corners of a display-space rectangle into the
// layer's image space.
func RectToImageSpace(r Rect, l Layer) Rect {
	p1 := ToImageSpace(Point{X: r.X1, Y: r.Y1}, l)
	p2 := ToImageSpace(Point{X: r.X2, Y: r.Y2}, l)
	return Rect{X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
