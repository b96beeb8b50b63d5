package mask

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/ironsheep/mask-tools-mcp/internal/geometry"
	"github.com/ironsheep/mask-tools-mcp/internal/selection"
)

// recordingSurface captures the shapes handed to it.
type recordingSurface struct {
	rects   []geometry.Rect
	strokes [][]geometry.Point
	widths  []float64
	img     *image.Gray
}

func (s *recordingSurface) FillRect(r geometry.Rect) { s.rects = append(s.rects, r) }

func (s *recordingSurface) StrokePolyline(pts []geometry.Point, width float64) {
	s.strokes = append(s.strokes, append([]geometry.Point(nil), pts...))
	s.widths = append(s.widths, width)
}

func (s *recordingSurface) Image() *image.Gray { return s.img }

func buildRecorded(t *testing.T, prims []selection.Primitive, layer geometry.Layer, opts Options) *recordingSurface {
	t.Helper()
	rec := &recordingSurface{}
	_, err := buildMask(prims, &layer, opts, func(w, h int) Surface {
		rec.img = image.NewGray(image.Rect(0, 0, w, h))
		return rec
	})
	if err != nil {
		t.Fatalf("buildMask failed: %v", err)
	}
	return rec
}

func layer200() *geometry.Layer {
	return &geometry.Layer{OriginalWidth: 200, OriginalHeight: 200}
}

func horizontalStroke(x1, x2, y, width float64) selection.FreehandStroke {
	return selection.FreehandStroke{
		Commands: []selection.PathCommand{
			{Op: selection.OpMove, Coords: []float64{x1, y}},
			{Op: selection.OpLine, Coords: []float64{x2, y}},
		},
		StrokeWidth: width,
	}
}

func TestBuildMask_NoSelection(t *testing.T) {
	layers := []*geometry.Layer{nil, {}, layer200()}
	for _, l := range layers {
		_, err := BuildMask(nil, l, Options{})
		if !errors.Is(err, ErrNoSelectionDrawn) {
			t.Errorf("layer %+v: got %v, want ErrNoSelectionDrawn", l, err)
		}
		_, err = BuildMask([]selection.Primitive{}, l, Options{})
		if !errors.Is(err, ErrNoSelectionDrawn) {
			t.Errorf("layer %+v (empty slice): got %v, want ErrNoSelectionDrawn", l, err)
		}
	}
}

func TestBuildMask_LayerGeometryMissing(t *testing.T) {
	prims := []selection.Primitive{selection.Rectangle{X: 1, Y: 1, Width: 5, Height: 5}}

	tests := []struct {
		name  string
		layer *geometry.Layer
	}{
		{"nil", nil},
		{"zero size", &geometry.Layer{}},
		{"negative width", &geometry.Layer{OriginalWidth: -10, OriginalHeight: 10}},
		{"zero height", &geometry.Layer{OriginalWidth: 10, OriginalHeight: 0}},
		{"too many pixels", &geometry.Layer{OriginalWidth: 1 << 31, OriginalHeight: 1 << 31}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildMask(prims, tt.layer, Options{})
			if !errors.Is(err, ErrLayerGeometryMissing) {
				t.Errorf("got %v, want ErrLayerGeometryMissing", err)
			}
		})
	}
}

func TestBuildMask_EndToEndRectangle(t *testing.T) {
	prims := []selection.Primitive{selection.Rectangle{X: 10, Y: 10, Width: 50, Height: 50}}

	m, err := BuildMask(prims, layer200(), Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if m.Width() != 200 || m.Height() != 200 {
		t.Fatalf("dimensions: got %dx%d, want 200x200", m.Width(), m.Height())
	}

	// Expanded box is [9.5, 60.5]: pixels 10..59 are fully covered, 9 and
	// 60 are half-covered edge pixels, everything else is excluded.
	for y := 0; y < 200; y++ {
		for x := 0; x < 200; x++ {
			v := m.Image.GrayAt(x, y).Y
			inside := x >= 10 && x <= 59 && y >= 10 && y <= 59
			edge := x >= 9 && x <= 60 && y >= 9 && y <= 60 && !inside
			switch {
			case inside && v != 255:
				t.Fatalf("pixel (%d,%d): got %d, want 255", x, y, v)
			case !inside && !edge && v != 0:
				t.Fatalf("pixel (%d,%d): got %d, want 0", x, y, v)
			}
		}
	}
	if len(m.Skipped) != 0 {
		t.Errorf("Skipped: got %v, want none", m.Skipped)
	}
}

func TestBuildMask_ExpansionLaw(t *testing.T) {
	tests := []struct {
		name string
		w, h float64
	}{
		{"square", 50, 50},
		{"wide", 120, 30},
		{"tall", 20, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := selection.Rectangle{X: 20, Y: 20, Width: tt.w, Height: tt.h}
			m, err := BuildMask([]selection.Primitive{r}, layer200(), Options{})
			if err != nil {
				t.Fatalf("BuildMask failed: %v", err)
			}

			row := int(20 + tt.h/2)
			var sum float64
			for x := 0; x < 200; x++ {
				sum += float64(m.Image.GrayAt(x, row).Y) / 255
			}

			maxW := tt.w + 2*DefaultExpansionRatio*math.Max(tt.w, tt.h)
			if sum < tt.w || sum > maxW+0.05 {
				t.Errorf("filled width: got %.3f, want in [%v, %v]", sum, tt.w, maxW)
			}
		})
	}
}

func TestBuildMask_RectangleClampedToImage(t *testing.T) {
	l := &geometry.Layer{OriginalWidth: 100, OriginalHeight: 80}
	prims := []selection.Primitive{
		selection.Rectangle{X: -500, Y: -500, Width: 2000, Height: 2000},
	}

	m, err := BuildMask(prims, l, Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if m.Width() != 100 || m.Height() != 80 {
		t.Fatalf("dimensions: got %dx%d, want 100x80", m.Width(), m.Height())
	}
	for _, p := range []image.Point{{0, 0}, {99, 0}, {0, 79}, {99, 79}, {50, 40}} {
		if v := m.Image.GrayAt(p.X, p.Y).Y; v != 255 {
			t.Errorf("pixel %v: got %d, want 255", p, v)
		}
	}
}

func TestBuildMask_RectangleGeometry(t *testing.T) {
	layer := geometry.Layer{OffsetX: 100, OffsetY: 50, OriginalWidth: 200, OriginalHeight: 200}

	tests := []struct {
		name string
		rect selection.Rectangle
		want geometry.Rect
	}{
		{
			name: "offset applied",
			rect: selection.Rectangle{X: 110, Y: 60, Width: 50, Height: 50},
			want: geometry.Rect{X1: 9.5, Y1: 9.5, X2: 60.5, Y2: 60.5},
		},
		{
			name: "negative size normalized",
			rect: selection.Rectangle{X: 160, Y: 110, Width: -50, Height: -50},
			want: geometry.Rect{X1: 9.5, Y1: 9.5, X2: 60.5, Y2: 60.5},
		},
		{
			name: "clamped at origin",
			rect: selection.Rectangle{X: 90, Y: 40, Width: 50, Height: 50},
			want: geometry.Rect{X1: 0, Y1: 0, X2: 40.5, Y2: 40.5},
		},
		{
			name: "clamped at far edge",
			rect: selection.Rectangle{X: 250, Y: 200, Width: 100, Height: 100},
			want: geometry.Rect{X1: 149, Y1: 149, X2: 200, Y2: 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := buildRecorded(t, []selection.Primitive{tt.rect}, layer, Options{})
			if len(rec.rects) != 1 {
				t.Fatalf("FillRect calls: got %d, want 1", len(rec.rects))
			}
			got := rec.rects[0]
			if math.Abs(got.X1-tt.want.X1) > 1e-9 || math.Abs(got.Y1-tt.want.Y1) > 1e-9 ||
				math.Abs(got.X2-tt.want.X2) > 1e-9 || math.Abs(got.Y2-tt.want.Y2) > 1e-9 {
				t.Errorf("rect: got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildMask_CustomExpansionRatio(t *testing.T) {
	rect := selection.Rectangle{X: 50, Y: 50, Width: 100, Height: 20}
	rec := buildRecorded(t, []selection.Primitive{rect}, *layer200(), Options{ExpansionRatio: 0.1})

	want := geometry.Rect{X1: 40, Y1: 40, X2: 160, Y2: 80}
	if rec.rects[0] != want {
		t.Errorf("rect: got %+v, want %+v", rec.rects[0], want)
	}
}

func TestBuildMask_UnionLaw(t *testing.T) {
	a := selection.Rectangle{X: 30, Y: 30, Width: 60, Height: 40}
	b := selection.Rectangle{X: 40, Y: 35, Width: 20, Height: 20}
	s := horizontalStroke(20, 120, 50, 12)

	base, err := BuildMask([]selection.Primitive{a}, layer200(), Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}

	variants := [][]selection.Primitive{
		{a, a},
		{a, b},
		{b, a},
		{a, s},
		{s, a},
	}
	for i, prims := range variants {
		m, err := BuildMask(prims, layer200(), Options{})
		if err != nil {
			t.Fatalf("variant %d: BuildMask failed: %v", i, err)
		}
		for j := range base.Image.Pix {
			if m.Image.Pix[j] < base.Image.Pix[j] {
				t.Fatalf("variant %d: pixel %d shrank from %d to %d", i, j, base.Image.Pix[j], m.Image.Pix[j])
			}
		}
	}
}

func TestBuildMask_StrokeRoundCaps(t *testing.T) {
	l := &geometry.Layer{OriginalWidth: 100, OriginalHeight: 100}
	m, err := BuildMask([]selection.Primitive{horizontalStroke(20, 80, 50, 10)}, l, Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}

	tests := []struct {
		x, y int
		want uint8
	}{
		{50, 50, 255}, // on the line
		{50, 46, 255}, // inside the band
		{50, 43, 0},   // above the band
		{50, 56, 0},   // below the band
		{16, 50, 255}, // inside the round start cap
		{83, 50, 255}, // inside the round end cap
		{13, 50, 0},   // beyond the start cap
		{87, 50, 0},   // beyond the end cap
		{15, 45, 0},   // corner a square cap would have covered
	}
	for _, tt := range tests {
		if v := m.Image.GrayAt(tt.x, tt.y).Y; v != tt.want {
			t.Errorf("pixel (%d,%d): got %d, want %d", tt.x, tt.y, v, tt.want)
		}
	}
}

func TestBuildMask_StrokeDefaultWidth(t *testing.T) {
	l := &geometry.Layer{OriginalWidth: 100, OriginalHeight: 100}
	s := horizontalStroke(20, 80, 50, 0)

	m, err := BuildMask([]selection.Primitive{s}, l, Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	// Default width 30 covers y in [35, 65].
	if v := m.Image.GrayAt(50, 37).Y; v != 255 {
		t.Errorf("default width: pixel (50,37) got %d, want 255", v)
	}

	m, err = BuildMask([]selection.Primitive{s}, l, Options{DefaultStrokeWidth: 4})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if v := m.Image.GrayAt(50, 45).Y; v != 0 {
		t.Errorf("custom default width: pixel (50,45) got %d, want 0", v)
	}
}

func TestBuildMask_StrokeTransformedToImageSpace(t *testing.T) {
	layer := geometry.Layer{OffsetX: 10, OffsetY: 20, OriginalWidth: 100, OriginalHeight: 100}
	s := selection.FreehandStroke{
		Commands: []selection.PathCommand{
			{Op: selection.OpMove, Coords: []float64{30, 40}},
			{Op: selection.OpLine, Coords: []float64{60, 40}},
			{Op: selection.OpMove, Coords: []float64{30, 80}},
			{Op: selection.OpQuad, Coords: []float64{45, 100, 60, 80}},
		},
		StrokeWidth: 6,
	}

	rec := buildRecorded(t, []selection.Primitive{s}, layer, Options{})
	if len(rec.strokes) != 2 {
		t.Fatalf("StrokePolyline calls: got %d, want 2", len(rec.strokes))
	}
	if rec.widths[0] != 6 {
		t.Errorf("width: got %v, want 6", rec.widths[0])
	}

	first := rec.strokes[0]
	if first[0] != (geometry.Point{X: 20, Y: 20}) || first[1] != (geometry.Point{X: 50, Y: 20}) {
		t.Errorf("first subpath: got %v", first)
	}

	curve := rec.strokes[1]
	if len(curve) < 3 {
		t.Fatalf("curve should be subdivided, got %d points", len(curve))
	}
	if curve[0] != (geometry.Point{X: 20, Y: 60}) || curve[len(curve)-1] != (geometry.Point{X: 50, Y: 60}) {
		t.Errorf("curve endpoints: got %v .. %v", curve[0], curve[len(curve)-1])
	}
	// The curve bulges towards its control point (35, 80) in image space.
	var maxY float64
	for _, p := range curve {
		maxY = math.Max(maxY, p.Y)
	}
	if maxY <= 60 || maxY > 70 {
		t.Errorf("curve apex y: got %v, want in (60, 70]", maxY)
	}
}

func TestBuildMask_SkipsInvalidPrimitives(t *testing.T) {
	prims := []selection.Primitive{
		selection.Rectangle{X: math.NaN(), Y: 0, Width: 10, Height: 10},
		selection.Rectangle{X: 10, Y: 10, Width: 20, Height: 20},
		selection.Rectangle{X: 5, Y: 5, Width: 0, Height: 10},
		selection.FreehandStroke{Commands: []selection.PathCommand{{Op: selection.OpMove, Coords: []float64{1, 1}}}},
		horizontalStroke(0, 1e30, 5, 4),
		nil,
	}

	m, err := BuildMask(prims, layer200(), Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}

	wantSkipped := []int{0, 2, 3, 4, 5}
	if len(m.Skipped) != len(wantSkipped) {
		t.Fatalf("Skipped: got %+v, want indexes %v", m.Skipped, wantSkipped)
	}
	for i, s := range m.Skipped {
		if s.Index != wantSkipped[i] {
			t.Errorf("Skipped[%d]: got index %d, want %d", i, s.Index, wantSkipped[i])
		}
		if !errors.Is(s.Err, ErrInvalidPrimitiveGeometry) {
			t.Errorf("Skipped[%d]: got %v, want ErrInvalidPrimitiveGeometry", i, s.Err)
		}
	}
	if v := m.Image.GrayAt(20, 20).Y; v != 255 {
		t.Errorf("valid rectangle not painted: got %d", v)
	}
}

func TestBuildMask_AllInvalidStillBuilds(t *testing.T) {
	prims := []selection.Primitive{selection.Rectangle{Width: math.Inf(1), Height: 1}}

	m, err := BuildMask(prims, layer200(), Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if Coverage(m.Image) != 0 {
		t.Error("mask should be empty")
	}
}

func TestBuildMask_StrokeOutsideLayer(t *testing.T) {
	l := &geometry.Layer{OriginalWidth: 50, OriginalHeight: 50}
	rec := buildRecorded(t, []selection.Primitive{horizontalStroke(500, 600, 500, 10)}, *l, Options{})
	if len(rec.strokes) != 0 {
		t.Errorf("off-canvas stroke should be culled, got %d calls", len(rec.strokes))
	}

	m, err := BuildMask([]selection.Primitive{horizontalStroke(500, 600, 500, 10)}, l, Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if Coverage(m.Image) != 0 {
		t.Error("off-canvas stroke painted pixels")
	}
}

func TestBuildMask_VeryWideStroke(t *testing.T) {
	l := &geometry.Layer{OriginalWidth: 100, OriginalHeight: 100}

	for _, width := range []float64{1e7, 1e9} {
		s := selection.FreehandStroke{
			Commands: []selection.PathCommand{
				{Op: selection.OpMove, Coords: []float64{10, 10}},
				{Op: selection.OpLine, Coords: []float64{20, 20}},
			},
			StrokeWidth: width,
		}

		m, err := BuildMask([]selection.Primitive{s}, l, Options{})
		if err != nil {
			t.Fatalf("width %g: BuildMask failed: %v", width, err)
		}
		if len(m.Skipped) != 0 {
			t.Errorf("width %g: stroke skipped: %+v", width, m.Skipped)
		}
		for i, v := range m.Image.Pix {
			if v != 255 {
				t.Fatalf("width %g: pixel %d is %d, want the whole layer at 255", width, i, v)
			}
		}

		rec := buildRecorded(t, []selection.Primitive{s}, *l, Options{})
		if len(rec.strokes) != 0 || len(rec.rects) != 1 {
			t.Errorf("width %g: got %d strokes and %d rects, want a single fill", width, len(rec.strokes), len(rec.rects))
		}
	}
}

func TestBuildMask_FarEndpointClipped(t *testing.T) {
	l := &geometry.Layer{OriginalWidth: 100, OriginalHeight: 100}
	s := horizontalStroke(50, 8e6, 50, 10)

	m, err := BuildMask([]selection.Primitive{s}, l, Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}

	tests := []struct {
		x, y int
		want uint8
	}{
		{99, 50, 255}, // band runs off the right edge
		{60, 50, 255},
		{47, 50, 255}, // start cap
		{40, 50, 0},   // before the start cap
		{75, 42, 0},   // above the band
		{75, 58, 0},   // below the band
		{99, 20, 0},
	}
	for _, tt := range tests {
		if v := m.Image.GrayAt(tt.x, tt.y).Y; v != tt.want {
			t.Errorf("pixel (%d,%d): got %d, want %d", tt.x, tt.y, v, tt.want)
		}
	}

	// Band 50..100 x 10 plus a half-disc cap of radius 5.
	if c := Coverage(m.Image); c < 0.05 || c > 0.06 {
		t.Errorf("coverage: got %.4f, want about 0.054", c)
	}

	rec := buildRecorded(t, []selection.Primitive{s}, *l, Options{})
	if len(rec.strokes) != 1 {
		t.Fatalf("StrokePolyline calls: got %d, want 1", len(rec.strokes))
	}
	got := rec.strokes[0]
	if got[0] != (geometry.Point{X: 50, Y: 50}) {
		t.Errorf("start: got %v, want unclipped (50,50)", got[0])
	}
	if math.Abs(got[1].X-106) > 1e-6 || got[1].Y != 50 {
		t.Errorf("end: got %v, want clipped to (106,50)", got[1])
	}
}

func TestBuildMask_HugeStrokeEdgeSkipped(t *testing.T) {
	// The stroke's edge crosses the layer, so it cannot be replaced by a
	// fill, and its half-width is past what the rasterizer can take.
	hw := float64(maxHalfWidth * 2)
	s := horizontalStroke(-10, 110, 50-hw, 2*hw)

	m, err := BuildMask([]selection.Primitive{s}, &geometry.Layer{OriginalWidth: 100, OriginalHeight: 100}, Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if len(m.Skipped) != 1 || !errors.Is(m.Skipped[0].Err, ErrInvalidPrimitiveGeometry) {
		t.Errorf("Skipped: got %+v, want the stroke", m.Skipped)
	}
}

func TestClipSegment(t *testing.T) {
	r := geometry.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
	p := func(x, y float64) geometry.Point { return geometry.Point{X: x, Y: y} }

	tests := []struct {
		name   string
		a, b   geometry.Point
		wantA  geometry.Point
		wantB  geometry.Point
		wantOK bool
	}{
		{"inside", p(1, 1), p(9, 9), p(1, 1), p(9, 9), true},
		{"crosses right edge", p(5, 5), p(15, 5), p(5, 5), p(10, 5), true},
		{"crosses both sides", p(-5, 2), p(15, 2), p(0, 2), p(10, 2), true},
		{"outside", p(12, 0), p(20, 8), geometry.Point{}, geometry.Point{}, false},
		{"point inside", p(3, 3), p(3, 3), p(3, 3), p(3, 3), true},
		{"point outside", p(-1, 3), p(-1, 3), geometry.Point{}, geometry.Point{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, ok := clipSegment(tt.a, tt.b, r)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if ok && (a != tt.wantA || b != tt.wantB) {
				t.Errorf("got %v-%v, want %v-%v", a, b, tt.wantA, tt.wantB)
			}
		})
	}
}

func TestClipPolylines_KeepsJoins(t *testing.T) {
	r := geometry.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10}
	sp := []geometry.Point{{X: 1, Y: 1}, {X: 5, Y: 1}, {X: 5, Y: 5}, {X: 50, Y: 5}, {X: 50, Y: 50}, {X: 8, Y: 8}, {X: 2, Y: 8}}

	runs := clipPolylines([][]geometry.Point{sp}, r)
	if len(runs) != 2 {
		t.Fatalf("runs: got %d (%v), want 2", len(runs), runs)
	}
	near := func(a, b geometry.Point) bool {
		return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
	}
	if len(runs[0]) != 4 || !near(runs[0][3], geometry.Point{X: 10, Y: 5}) {
		t.Errorf("first run: got %v", runs[0])
	}
	if len(runs[1]) != 3 || !near(runs[1][0], geometry.Point{X: 10, Y: 10}) {
		t.Errorf("second run: got %v", runs[1])
	}
}

func TestBuildMask_Binary(t *testing.T) {
	l := &geometry.Layer{OriginalWidth: 80, OriginalHeight: 80}
	s := selection.FreehandStroke{
		Commands: []selection.PathCommand{
			{Op: selection.OpMove, Coords: []float64{10.3, 10.7}},
			{Op: selection.OpQuad, Coords: []float64{40, 70, 70.2, 15.1}},
		},
		StrokeWidth: 7.3,
	}

	m, err := BuildMask([]selection.Primitive{s}, l, Options{Binary: true})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	included := 0
	for i, v := range m.Image.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d: got %d, want 0 or 255", i, v)
		}
		if v == 255 {
			included++
		}
	}
	if included == 0 {
		t.Error("binary mask is empty")
	}
}

func TestBuildMask_DoesNotMutateInputs(t *testing.T) {
	s := horizontalStroke(10, 90, 40, 8)
	r := selection.Rectangle{X: 5, Y: 5, Width: 30, Height: 30}
	layer := &geometry.Layer{OffsetX: 3, OffsetY: 4, OriginalWidth: 100, OriginalHeight: 100}
	layerBefore := *layer

	if _, err := BuildMask([]selection.Primitive{s, r}, layer, Options{}); err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if s.Commands[0].Coords[0] != 10 || s.Commands[1].Coords[0] != 90 {
		t.Error("stroke coordinates were modified")
	}
	if *layer != layerBefore {
		t.Error("layer geometry was modified")
	}
}

func TestBuildMask_FreshMaskEachCall(t *testing.T) {
	prims := []selection.Primitive{selection.Rectangle{X: 10, Y: 10, Width: 10, Height: 10}}

	m1, err := BuildMask(prims, layer200(), Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	m2, err := BuildMask(prims, layer200(), Options{})
	if err != nil {
		t.Fatalf("BuildMask failed: %v", err)
	}
	if &m1.Image.Pix[0] == &m2.Image.Pix[0] {
		t.Error("masks share a pixel buffer")
	}
}

func TestAppendQuad_StraightLine(t *testing.T) {
	start := []geometry.Point{{X: 0, Y: 0}}
	pts := appendQuad(start, geometry.Point{X: 5, Y: 0}, geometry.Point{X: 10, Y: 0})
	if len(pts) != 2 {
		t.Errorf("collinear quad should not subdivide, got %d points", len(pts))
	}
	if pts[1] != (geometry.Point{X: 10, Y: 0}) {
		t.Errorf("end point: got %v", pts[1])
	}
}

func TestVectorSurface_DotStroke(t *testing.T) {
	s := NewVectorSurface(40, 40)
	s.StrokePolyline([]geometry.Point{{X: 20, Y: 20}, {X: 20, Y: 20}}, 10)

	img := s.Image()
	if v := img.GrayAt(20, 20).Y; v != 255 {
		t.Errorf("dot centre: got %d, want 255", v)
	}
	if v := img.GrayAt(20, 27).Y; v != 0 {
		t.Errorf("outside dot: got %d, want 0", v)
	}
}

func TestVectorSurface_OverlapClampsToFull(t *testing.T) {
	s := NewVectorSurface(20, 20)
	r := geometry.Rect{X1: 2, Y1: 2, X2: 18, Y2: 18}
	s.FillRect(r)
	s.FillRect(r)
	// Opposite vertex order must not cancel coverage.
	s.FillRect(geometry.Rect{X1: 18, Y1: 18, X2: 2, Y2: 2})

	if v := s.Image().GrayAt(10, 10).Y; v != 255 {
		t.Errorf("overlapping fills: got %d, want 255", v)
	}
}

func TestVectorSurface_ImageAccumulates(t *testing.T) {
	s := NewVectorSurface(30, 10)
	s.FillRect(geometry.Rect{X1: 0, Y1: 0, X2: 10, Y2: 10})
	first := s.Image()
	if first.GrayAt(5, 5).Y != 255 {
		t.Fatal("first fill missing")
	}

	s.FillRect(geometry.Rect{X1: 20, Y1: 0, X2: 30, Y2: 10})
	second := s.Image()
	if second.GrayAt(5, 5).Y != 255 || second.GrayAt(25, 5).Y != 255 {
		t.Error("second flush lost earlier coverage")
	}
	if second.GrayAt(15, 5).Y != 0 {
		t.Error("gap between fills was painted")
	}
}

func TestSignedArea(t *testing.T) {
	square := []geometry.Point{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	if a := signedArea(square); a != 4 {
		t.Errorf("signedArea: got %v, want 4", a)
	}
}
