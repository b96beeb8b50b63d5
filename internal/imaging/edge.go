package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/mask-tools-mcp/internal/geometry"
)

// Default edge-snap parameters.
const (
	DefaultSnapRadius    = 20
	DefaultSnapThreshold = 50.0

	// MaxSnapRadius caps SnapOptions.Radius.
	MaxSnapRadius = 256
)

// AnyGradient is a Threshold that every non-zero magnitude exceeds.
const AnyGradient = math.SmallestNonzeroFloat64

// EdgeMap is a dense grid of Sobel gradient magnitudes.
//
// Values are non-negative and stored row-major. The 1-pixel border is always
// zero because the Sobel kernels are only evaluated for interior pixels.
type EdgeMap struct {
	Width     int
	Height    int
	Magnitude []float64
}

// At returns the magnitude at (x, y), or 0 outside the map.
func (m *EdgeMap) At(x, y int) float64 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return m.Magnitude[y*m.Width+x]
}

// Max returns the largest magnitude in the map.
func (m *EdgeMap) Max() float64 {
	var max float64
	for _, v := range m.Magnitude {
		if v > max {
			max = v
		}
	}
	return max
}

// Grayscale converts an image to a luminance array using ITU-R BT.601 weights
// (0.299*R + 0.587*G + 0.114*B) on 8-bit, non-premultiplied channels.
//
// The result has one value per pixel in row-major order, ranging 0-255.
// Alpha is ignored.
func Grayscale(img *image.NRGBA) []float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	lum := make([]float64, width*height)
	for y := 0; y < height; y++ {
		off := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		row := img.Pix[off : off+width*4]
		for x := 0; x < width; x++ {
			r := float64(row[x*4])
			g := float64(row[x*4+1])
			b := float64(row[x*4+2])
			lum[y*width+x] = 0.299*r + 0.587*g + 0.114*b
		}
	}
	return lum
}

// SobelMagnitude computes the gradient magnitude of a luminance array.
//
// The two 3x3 Sobel kernels
//
//	Gx = [-1 0 1; -2 0 2; -1 0 1]
//	Gy = [-1 -2 -1; 0 0 0; 1 2 1]
//
// are convolved over interior pixels only; border pixels are left at zero.
// The magnitude is sqrt(Gx² + Gy²). lum is not modified.
func SobelMagnitude(lum []float64, width, height int) *EdgeMap {
	m := &EdgeMap{
		Width:     width,
		Height:    height,
		Magnitude: make([]float64, width*height),
	}

	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := lum[(y+ky)*width+(x+kx)]
					gx += v * sobelX[ky+1][kx+1]
					gy += v * sobelY[ky+1][kx+1]
				}
			}
			m.Magnitude[y*width+x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return m
}

// FullFrameEdgeMap computes the Sobel magnitude of the whole image.
func FullFrameEdgeMap(img image.Image) *EdgeMap {
	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	return SobelMagnitude(Grayscale(nrgba), b.Dx(), b.Dy())
}

// SnapOptions controls FindNearestEdge. Zero fields take the defaults.
type SnapOptions struct {
	// Radius is the search radius in pixels (default 20, at most
	// MaxSnapRadius).
	Radius int

	// Threshold is the magnitude a pixel must exceed to be a snap target
	// (default 50). Use AnyGradient to accept every edge.
	Threshold float64
}

func (o SnapOptions) withDefaults() SnapOptions {
	if o.Radius <= 0 {
		o.Radius = DefaultSnapRadius
	}
	if o.Radius > MaxSnapRadius {
		o.Radius = MaxSnapRadius
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultSnapThreshold
	}
	return o
}

// SnapResult is the outcome of an edge-snap query.
//
// Strength is the gradient magnitude at (X, Y). A Strength of zero means no
// edge qualified and (X, Y) is the query point unchanged.
type SnapResult struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Strength float64 `json:"strength"`
}

// Snapped reports whether an edge was found.
func (r SnapResult) Snapped() bool {
	return r.Strength > 0
}

// FindNearestEdge looks for the strongest edge near p, for magnetic-lasso
// style cursor snapping.
//
// A 2*radius x 2*radius window centred on p (clamped to the image bounds) is
// extracted and its edge map computed. Every pixel within Euclidean distance
// radius of p is then scanned, rows top to bottom and columns left to right,
// for the largest magnitude above the threshold; ties keep the first pixel
// found. Coordinates are in the image's own pixel space, which is the
// display space the query came from.
//
// FindNearestEdge never fails. If nothing exceeds the threshold, or p lies
// outside the image, it returns p unchanged with zero strength.
func FindNearestEdge(img image.Image, p geometry.Point, opts SnapOptions) SnapResult {
	opts = opts.withDefaults()
	miss := SnapResult{X: p.X, Y: p.Y}
	if !p.IsFinite() {
		return miss
	}

	bounds := img.Bounds()
	r := opts.Radius
	if p.X < float64(bounds.Min.X-r) || p.X > float64(bounds.Max.X+r) ||
		p.Y < float64(bounds.Min.Y-r) || p.Y > float64(bounds.Max.Y+r) {
		return miss
	}
	cx := int(math.Round(p.X))
	cy := int(math.Round(p.Y))

	window := image.Rect(cx-r, cy-r, cx+r, cy+r).Intersect(bounds)
	if window.Empty() {
		return miss
	}

	crop := imaging.Crop(img, window)
	edges := SobelMagnitude(Grayscale(crop), window.Dx(), window.Dy())

	best := miss
	for py := window.Min.Y; py < window.Max.Y; py++ {
		for px := window.Min.X; px < window.Max.X; px++ {
			dx, dy := px-cx, py-cy
			if dx*dx+dy*dy > r*r {
				continue
			}
			v := edges.At(px-window.Min.X, py-window.Min.Y)
			if v > opts.Threshold && v > best.Strength {
				best = SnapResult{X: float64(px), Y: float64(py), Strength: v}
			}
		}
	}
	return best
}

// EdgeMapImage renders an edge map as grayscale, scaling the strongest
// magnitude to 255. An all-zero map renders black.
func EdgeMapImage(m *EdgeMap) *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	max := m.Max()
	if max == 0 {
		return out
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			v := m.Magnitude[y*m.Width+x] / max * 255
			out.SetGray(x, y, color.Gray{Y: uint8(clamp(int(math.Round(v)), 0, 255))})
		}
	}
	return out
}

// EdgeMapResult contains a full-frame edge map encoded as base64 PNG.
type EdgeMapResult struct {
	// Width of the edge map in pixels (same as input).
	Width int `json:"width"`

	// Height of the edge map in pixels (same as input).
	Height int `json:"height"`

	// MaxMagnitude is the strongest gradient found, before normalization.
	MaxMagnitude float64 `json:"max_magnitude"`

	// ImageBase64 is the normalized edge map encoded as base64 PNG.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`
}

// RenderEdgeMap computes the full-frame edge map of img for visualization.
//
// When smooth is positive the image is first blurred with a Gaussian of
// that radius, which suppresses texture noise in photographs. The map is
// normalized with EdgeMapImage and encoded as PNG.
func RenderEdgeMap(img image.Image, smooth float64) (*EdgeMapResult, error) {
	src := img
	if smooth > 0 {
		src = blur.Gaussian(img, smooth)
	}

	m := FullFrameEdgeMap(src)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, EdgeMapImage(m), imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode edge map: %w", err)
	}

	return &EdgeMapResult{
		Width:        m.Width,
		Height:       m.Height,
		MaxMagnitude: m.Max(),
		ImageBase64:  base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:     "image/png",
	}, nil
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
