package unmagic

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// drawCall is one recorded DrawImage invocation.
type drawCall struct {
	M  Affine
	Op CompositeOp
}

// recordingCanvas captures the calls the compositor makes.
type recordingCanvas struct {
	w, h    int
	clears  int
	fills   []Rect
	strokes []Rect
	texts   []string
	draws   []drawCall
}

func (r *recordingCanvas) Size() (int, int)                         { return r.w, r.h }
func (r *recordingCanvas) Clear()                                   { r.clears++ }
func (r *recordingCanvas) FillRect(rect Rect, _ color.Color)        { r.fills = append(r.fills, rect) }
func (r *recordingCanvas) StrokeRect(rect Rect, _ color.Color)      { r.strokes = append(r.strokes, rect) }
func (r *recordingCanvas) FillText(s string, _, _ float64, _ color.Color) { r.texts = append(r.texts, s) }
func (r *recordingCanvas) DrawImage(_ image.Image, m Affine, op CompositeOp) {
	r.draws = append(r.draws, drawCall{M: m, Op: op})
}

// gradientImage returns an opaque image whose pixels all differ.
func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}

// --- State selection ---

func TestDragPriority(t *testing.T) {
	img := gradientImage(4, 4)
	values := []float64{-100, -0.1, 0, 50, 100, math.NaN(), math.Inf(1)}
	for _, withImage := range []bool{false, true} {
		for _, off := range values {
			for _, slant := range values {
				for _, stretch := range values {
					var src image.Image
					if withImage {
						src = img
					}
					p := Params{OffsetMagnitude: 10, Offset: off, Slant: slant, Stretch: stretch}
					st := SelectState(true, src, p)
					if _, ok := st.(Dragging); !ok {
						t.Fatalf("SelectState(drag, image=%v, %+v) = %T, want Dragging", withImage, p, st)
					}

					rc := &recordingCanvas{w: 50, h: 40}
					NewCompositor(DefaultPalette()).Render(rc, st)
					if len(rc.texts) != 1 || rc.texts[0] != DropPrompt {
						t.Fatalf("texts = %v, want [%q]", rc.texts, DropPrompt)
					}
					if len(rc.draws) != 0 {
						t.Fatalf("dragging state drew %d images", len(rc.draws))
					}
				}
			}
		}
	}
}

func TestSelectStateWithoutImage(t *testing.T) {
	st := SelectState(false, nil, Params{OffsetMagnitude: 10, Offset: 80})
	if _, ok := st.(Empty); !ok {
		t.Errorf("SelectState(no image) = %T, want Empty", st)
	}
}

func TestSelectStateReady(t *testing.T) {
	img := gradientImage(2, 2)
	p := Params{OffsetMagnitude: 10, Offset: 3}
	st, ok := SelectState(false, img, p).(Ready)
	if !ok {
		t.Fatal("expected Ready")
	}
	if st.Params != p {
		t.Errorf("Params = %+v, want %+v", st.Params, p)
	}
}

// --- Placeholder states ---

func TestRenderDragging(t *testing.T) {
	rc := &recordingCanvas{w: 200, h: 100}
	Render(rc, Dragging{})
	want := []Rect{{5, 5, 190, 90}}
	if diff := cmp.Diff(want, rc.fills); diff != "" {
		t.Errorf("fills mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, rc.strokes); diff != "" {
		t.Errorf("strokes mismatch (-want +got):\n%s", diff)
	}
	if rc.clears != 1 {
		t.Errorf("clears = %d, want 1", rc.clears)
	}
}

func TestRenderEmpty(t *testing.T) {
	rc := &recordingCanvas{w: 200, h: 100}
	Render(rc, Empty{})
	if len(rc.fills) != 0 {
		t.Errorf("empty state filled %v", rc.fills)
	}
	if diff := cmp.Diff([]Rect{{5, 5, 190, 90}}, rc.strokes); diff != "" {
		t.Errorf("strokes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{EmptyPrompt}, rc.texts); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderReadyNilImageIsEmpty(t *testing.T) {
	rc := &recordingCanvas{w: 20, h: 20}
	Render(rc, Ready{Params: DefaultParams()})
	if len(rc.draws) != 0 {
		t.Errorf("drew %d images without an image", len(rc.draws))
	}
	if len(rc.texts) != 1 || rc.texts[0] != EmptyPrompt {
		t.Errorf("texts = %v, want empty prompt", rc.texts)
	}
}

func TestRenderZeroSizeCanvas(t *testing.T) {
	rc := &recordingCanvas{}
	Render(rc, Dragging{})
	if rc.clears != 0 || len(rc.fills) != 0 {
		t.Error("zero-size canvas should not be touched")
	}
}

// --- Ready state ---

func TestRenderReadyScenario(t *testing.T) {
	rc := &recordingCanvas{w: 200, h: 200}
	img := gradientImage(400, 300)
	Render(rc, Ready{Image: img, Params: Params{OffsetMagnitude: 10, Offset: 50, Slant: -20, Stretch: 0}})

	if len(rc.draws) != 2 {
		t.Fatalf("draws = %d, want 2", len(rc.draws))
	}
	base, ghost := rc.draws[0], rc.draws[1]
	if base.Op != CompositeSourceOver {
		t.Errorf("pass A op = %v, want source-over", base.Op)
	}
	if ghost.Op != CompositeDifference {
		t.Errorf("pass B op = %v, want difference", ghost.Op)
	}

	// Pass A stretches the image over the whole canvas.
	assertMatrix(t, "pass A", base.M, Affine{0.5, 0, 0, 2.0 / 3.0, 0, 0})

	// Pass B is the same geometry shifted by (10, -0.2).
	x0, y0 := ghost.M.Apply(0, 0)
	x1, y1 := ghost.M.Apply(400, 300)
	assertNear(t, "ghost x0", x0, 10)
	assertNear(t, "ghost y0", y0, -0.2)
	assertNear(t, "ghost x1", x1, 210)
	assertNear(t, "ghost y1", y1, 199.8)
}

func TestRenderReadyStretchScalesAboutCentre(t *testing.T) {
	rc := &recordingCanvas{w: 100, h: 100}
	img := gradientImage(10, 10)
	// n = 100*100/10000 = 1 -> scaleX = 1 + 10/10 = 2, dx = 100
	Render(rc, Ready{Image: img, Params: Params{OffsetMagnitude: 100, Offset: 100, Stretch: 10}})
	ghost := rc.draws[1].M
	want := Identity.Translate(50, 50).Scale(2, 1).Translate(100, 0).Translate(-50, -50).Scale(10, 10)
	assertMatrix(t, "ghost", ghost, want)

	// The centre of the image lands at 50 + 2*100.
	cx, cy := ghost.Apply(5, 5)
	assertNear(t, "centre x", cx, 250)
	assertNear(t, "centre y", cy, 50)
}

func TestRenderIdentityPassesCoincide(t *testing.T) {
	rc := &recordingCanvas{w: 120, h: 80}
	img := gradientImage(30, 20)
	Render(rc, Ready{Image: img, Params: Params{OffsetMagnitude: 100, Offset: 0, Slant: 100, Stretch: -100}})
	if rc.draws[0].M != rc.draws[1].M {
		t.Errorf("pass matrices differ at zero offset: %v vs %v", rc.draws[0].M, rc.draws[1].M)
	}
}

func TestRenderNonFiniteParamsKeepTransformFinite(t *testing.T) {
	img := gradientImage(8, 8)
	for _, p := range []Params{
		{OffsetMagnitude: 10, Offset: math.NaN()},
		{OffsetMagnitude: math.Inf(1), Offset: 50},
		{OffsetMagnitude: 10, Offset: 50, Slant: math.NaN(), Stretch: math.Inf(-1)},
	} {
		rc := &recordingCanvas{w: 64, h: 64}
		Render(rc, Ready{Image: img, Params: p})
		if len(rc.draws) != 2 {
			t.Fatalf("%+v: draws = %d, want 2", p, len(rc.draws))
		}
		for i, d := range rc.draws {
			if !d.M.IsFinite() {
				t.Errorf("%+v: draw %d has non-finite matrix %v", p, i, d.M)
			}
		}
	}
}

// --- Pixels ---

func TestRenderIdentityIsDark(t *testing.T) {
	cv := NewRasterCanvas(20, 20)
	Render(cv, Ready{Image: gradientImage(40, 30), Params: Params{OffsetMagnitude: 50, Slant: 30, Stretch: 80}})
	pix := cv.Image()
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			c := pix.RGBAAt(x, y)
			if c.R != 0 || c.G != 0 || c.B != 0 || c.A != 255 {
				t.Fatalf("pixel (%d,%d) = %v, want opaque black", x, y, c)
			}
		}
	}
}

func TestRenderOffsetShowsFringes(t *testing.T) {
	cv := NewRasterCanvas(40, 40)
	Render(cv, Ready{Image: gradientImage(40, 40), Params: Params{OffsetMagnitude: 100, Offset: 50}})
	lit := 0
	pix := cv.Image()
	for i := 0; i < len(pix.Pix); i += 4 {
		if pix.Pix[i] != 0 || pix.Pix[i+1] != 0 || pix.Pix[i+2] != 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("expected colour fringes for a non-zero offset")
	}
}

func TestRenderRoundTrip(t *testing.T) {
	st := Ready{Image: gradientImage(37, 23), Params: Params{OffsetMagnitude: 33, Offset: -41.7, Slant: 12, Stretch: -6}}

	cv := NewRasterCanvas(64, 48)
	Render(cv, st)
	first := append([]byte(nil), cv.Image().Pix...)
	Render(cv, st)
	if !bytes.Equal(first, cv.Image().Pix) {
		t.Error("second render on the same canvas differs from the first")
	}

	fresh := NewRasterCanvas(64, 48)
	Render(fresh, st)
	if !bytes.Equal(first, fresh.Image().Pix) {
		t.Error("render on a fresh canvas differs")
	}
}

func TestRenderStateChangeLeavesNoResidue(t *testing.T) {
	cv := NewRasterCanvas(30, 30)
	Render(cv, Ready{Image: gradientImage(30, 30), Params: Params{OffsetMagnitude: 10, Offset: 90}})
	Render(cv, Empty{})
	want := NewRasterCanvas(30, 30)
	Render(want, Empty{})
	if !bytes.Equal(cv.Image().Pix, want.Image().Pix) {
		t.Error("empty state after ready state differs from a clean empty render")
	}
}
