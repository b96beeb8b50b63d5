package mask

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Result contains a mask encoded for an image-editing API: a single-page
// grayscale PNG, base64 encoded.
type Result struct {
	// Width of the mask in pixels (the layer's original width).
	Width int `json:"width"`

	// Height of the mask in pixels (the layer's original height).
	Height int `json:"height"`

	// ImageBase64 is the mask encoded as base64 PNG. White (255) pixels are
	// editable, black (0) pixels are kept.
	ImageBase64 string `json:"image_base64"`

	// MimeType is always "image/png".
	MimeType string `json:"mime_type"`

	// CoveragePercent is the share of the image marked editable (0-100),
	// counting partially covered edge pixels by their coverage.
	CoveragePercent float64 `json:"coverage_percent"`

	// Skipped lists the indexes of primitives left out as invalid.
	Skipped []int `json:"skipped,omitempty"`
}

// Encode serializes m as a base64 PNG.
func Encode(m *Mask) (*Result, error) {
	b64, err := encodePNG(m.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mask: %w", err)
	}

	var skipped []int
	for _, s := range m.Skipped {
		skipped = append(skipped, s.Index)
	}

	return &Result{
		Width:           m.Width(),
		Height:          m.Height(),
		ImageBase64:     b64,
		MimeType:        "image/png",
		CoveragePercent: Coverage(m.Image) * 100,
		Skipped:         skipped,
	}, nil
}

// Coverage returns the mean value of g scaled to 0-1.
func Coverage(g *image.Gray) float64 {
	b := g.Bounds()
	if b.Empty() {
		return 0
	}
	var sum uint64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := g.PixOffset(b.Min.X, y)
		for _, v := range g.Pix[off : off+b.Dx()] {
			sum += uint64(v)
		}
	}
	return float64(sum) / (255 * float64(b.Dx()*b.Dy()))
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
