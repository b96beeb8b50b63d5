package mask

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// Default preview styling.
const (
	DefaultPreviewColor   = "#FF3B30"
	DefaultPreviewOpacity = 0.5
)

// PreviewResult contains the source image with the mask tinted over it.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Color       string `json:"color"`
}

// Preview blends a tint over the editable pixels of src so the selection can
// be checked before it is sent anywhere.
//
// Each pixel is blended towards tintHex by opacity times its mask coverage,
// so anti-aliased edges fade out. src must have the same size as the mask.
// An empty tintHex or a non-positive opacity selects the defaults.
func Preview(src image.Image, m *Mask, tintHex string, opacity float64) (*PreviewResult, error) {
	if tintHex == "" {
		tintHex = DefaultPreviewColor
	}
	if opacity <= 0 {
		opacity = DefaultPreviewOpacity
	}
	if opacity > 1 {
		opacity = 1
	}

	tint, err := colorful.Hex(tintHex)
	if err != nil {
		return nil, fmt.Errorf("invalid preview color %q: %w", tintHex, err)
	}

	sb := src.Bounds()
	if sb.Dx() != m.Width() || sb.Dy() != m.Height() {
		return nil, fmt.Errorf("image is %dx%d but mask is %dx%d",
			sb.Dx(), sb.Dy(), m.Width(), m.Height())
	}

	out := imaging.Clone(src)
	mb := m.Image.Bounds()
	for y := 0; y < mb.Dy(); y++ {
		for x := 0; x < mb.Dx(); x++ {
			v := m.Image.GrayAt(mb.Min.X+x, mb.Min.Y+y).Y
			if v == 0 {
				continue
			}
			px := out.NRGBAAt(x, y)
			base := colorful.Color{
				R: float64(px.R) / 255,
				G: float64(px.G) / 255,
				B: float64(px.B) / 255,
			}
			r, g, b := base.BlendRgb(tint, opacity*float64(v)/255).Clamped().RGB255()
			out.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: px.A})
		}
	}

	b64, err := encodePNG(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: b64,
		MimeType:    "image/png",
		Color:       tint.Hex(),
	}, nil
}
