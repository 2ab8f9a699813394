package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/rs/zerolog"
	"golang.design/x/clipboard"

	"github.com/phanxgames/unmagic"
	"github.com/phanxgames/unmagic/ebitencanvas"
	"github.com/phanxgames/unmagic/ingest"
	"github.com/phanxgames/unmagic/telemetry"
)

// Game implements ebiten.Game. The render surface is redrawn only when the
// controller reports a change.
type Game struct {
	cfg unmagic.RunConfig
	log zerolog.Logger
	bus *telemetry.Bus

	sched *unmagic.FrameScheduler
	ctrl  *unmagic.Controller
	comp  *unmagic.Compositor

	surface *ebiten.Image
	canvas  *ebitencanvas.Canvas
	layout  surfaceLayout
	dirty   bool

	ctx     context.Context
	cancel  context.CancelFunc
	pending <-chan ingest.Result
	current image.Image

	hud          *unmagic.Fade
	hudVisible   bool
	clipboardOK  bool
	screenshots  []string
	copyNextDraw bool
}

func newGame(cfg unmagic.RunConfig, log zerolog.Logger, bus *telemetry.Bus) (*Game, error) {
	pal, err := cfg.Palette()
	if err != nil {
		return nil, err
	}
	g := &Game{
		cfg:        cfg,
		log:        log,
		bus:        bus,
		sched:      &unmagic.FrameScheduler{},
		comp:       unmagic.NewCompositor(pal),
		hud:        unmagic.FadeIn(),
		hudVisible: true,
		dirty:      true,
	}
	g.ctx, g.cancel = context.WithCancel(context.Background())
	g.comp.SetDebugMode(cfg.Debug)
	g.ctrl = unmagic.NewController(g.sched, unmagic.SystemClock{})
	cfg.Apply(g.ctrl)
	g.ctrl.Subscribe(func(unmagic.Snapshot) { g.dirty = true })

	g.clipboardOK = clipboard.Init() == nil
	if !g.clipboardOK {
		log.Warn().Msg("clipboard unavailable; copy and paste disabled")
	}

	g.relayout()
	bus.Publish(telemetry.EventInit, nil)
	return g, nil
}

// relayout sizes the surface to the image aspect within the configured area.
func (g *Game) relayout() {
	imgW, imgH := 0, 0
	if g.current != nil {
		b := g.current.Bounds()
		imgW, imgH = b.Dx(), b.Dy()
	}
	g.layout = computeLayout(imgW, imgH, g.cfg.Width, g.cfg.Height)

	if g.surface != nil {
		if b := g.surface.Bounds(); b.Dx() == g.layout.w && b.Dy() == g.layout.h {
			return
		}
		g.surface.Deallocate()
	}
	g.surface = ebiten.NewImage(g.layout.w, g.layout.h)
	if g.canvas == nil {
		g.canvas = ebitencanvas.New(g.surface)
	} else {
		g.canvas.SetTarget(g.surface)
	}
	g.dirty = true
}

// Update implements ebiten.Game. Input is handled before the scheduler
// ticks, so a manual offset change cancels the oscillator before its
// callback for this frame can run.
func (g *Game) Update() error {
	g.pollDrop()
	g.pollLoad()
	g.handleKeys()
	g.handlePointer()

	g.sched.Advance()
	g.hud.Update(float32(1 / float64(ebiten.TPS())))
	g.bus.Flush()
	return nil
}

func (g *Game) pollDrop() {
	files := ebiten.DroppedFiles()
	if files == nil {
		return
	}
	g.ctrl.SetDrag(false)
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		g.log.Warn().Err(err).Msg("read dropped files")
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		g.load(files, e.Name())
		return // only the first file is used
	}
}

func (g *Game) loadPath(path string) {
	g.load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
}

func (g *Game) load(fsys fs.FS, name string) {
	typ := ingest.TypeByName(name)
	if typ != "" && !ingest.Accepted(typ) {
		g.bus.Publish(telemetry.EventLoadFileInvalid, telemetry.LoadFile(typ))
		g.log.Warn().Str("file", name).Str("type", typ).Msg("unsupported file dropped")
		return
	}
	g.bus.Publish(telemetry.EventLoadFile, telemetry.LoadFile(typ))
	g.pending = ingest.Load(g.ctx, fsys, name)
}

func (g *Game) pollLoad() {
	if g.pending == nil {
		return
	}
	select {
	case res, ok := <-g.pending:
		g.pending = nil
		if ok {
			g.finishLoad(res)
		}
	default:
	}
}

func (g *Game) finishLoad(res ingest.Result) {
	if res.Err != nil {
		if errors.Is(res.Err, ingest.ErrUnsupportedType) {
			g.bus.Publish(telemetry.EventLoadFileInvalid, telemetry.LoadFile(ingest.TypeByName(res.Name)))
		}
		g.log.Warn().Err(res.Err).Str("file", res.Name).Msg("image not loaded")
		return
	}
	g.setImage(res.Image)
}

func (g *Game) setImage(img *ingest.Image) {
	if g.current != nil && g.canvas != nil {
		g.canvas.Forget(g.current)
	}
	g.current = img.Image
	g.relayout()
	g.ctrl.SetImage(img.Image)
	g.bus.Publish(telemetry.EventImageReady, nil)
	g.log.Info().Str("format", img.Format).Int("width", img.Width).Int("height", img.Height).Msg("image ready")
}

func (g *Game) handleKeys() {
	p := g.ctrl.Params()
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	if inpututil.IsKeyJustPressed(ebiten.KeyA) {
		g.ctrl.ToggleAuto()
	}
	if step, ok := repeatStep(ebiten.KeyRight, ebiten.KeyLeft); ok {
		if shift {
			g.ctrl.SetOffset(p.Offset + step*unmagic.OffsetStep)
		} else {
			g.ctrl.SetOffset(p.Offset + step)
		}
	}
	if step, ok := repeatStep(ebiten.KeyUp, ebiten.KeyDown); ok {
		g.ctrl.SetSlant(p.Slant + step*unmagic.SlantStep)
	}
	if step, ok := repeatStep(ebiten.KeyBracketRight, ebiten.KeyBracketLeft); ok {
		g.ctrl.SetStretch(p.Stretch + step*unmagic.StretchStep)
	}
	if step, ok := repeatStep(ebiten.KeyEqual, ebiten.KeyMinus); ok {
		g.ctrl.SetOffsetMagnitude(p.OffsetMagnitude + step)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.hudVisible = !g.hudVisible
		if g.hudVisible {
			g.hud.Reset()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.screenshots = append(g.screenshots, "frame")
	}
	if g.clipboardOK && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyNextDraw = true
	}
	if g.clipboardOK && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.paste()
	}
}

// repeatStep returns +1 or -1 while one of the keys is held, honouring key
// repeat.
func repeatStep(up, down ebiten.Key) (float64, bool) {
	switch {
	case keyRepeat(up):
		return 1, true
	case keyRepeat(down):
		return -1, true
	}
	return 0, false
}

func keyRepeat(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || (d > repeatDelay && d%repeatInterval == 0)
}

const (
	repeatDelay    = 20 // ticks
	repeatInterval = 3
)

func (g *Game) handlePointer() {
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || g.current == nil {
		return
	}
	x, y := ebiten.CursorPosition()
	if !g.layout.contains(x, y) {
		return
	}
	v := g.layout.offsetAt(x)
	if v != g.ctrl.Params().Offset || g.ctrl.Auto() {
		g.ctrl.SetOffset(v)
	}
}

func (g *Game) paste() {
	data := clipboard.Read(clipboard.FmtImage)
	if len(data) == 0 {
		return
	}
	img, err := ingest.Decode(data, "image/png")
	if err != nil {
		g.log.Warn().Err(err).Msg("paste")
		return
	}
	g.bus.Publish(telemetry.EventLoadFile, telemetry.LoadFile(img.Type))
	g.setImage(img)
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.dirty {
		g.comp.Render(g.canvas, g.ctrl.Snapshot().State())
		g.dirty = false
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(g.layout.x), float64(g.layout.y))
	screen.DrawImage(g.surface, op)

	if g.hudVisible {
		g.drawHUD(screen)
	}
	g.flushCaptures()
}

func (g *Game) flushCaptures() {
	if len(g.screenshots) == 0 && !g.copyNextDraw {
		return
	}
	frame := ebitencanvas.Snapshot(g.surface)
	for _, label := range g.screenshots {
		path, err := unmagic.SaveScreenshot(g.cfg.ScreenshotDir, label, frame)
		if err != nil {
			g.log.Error().Err(err).Msg("screenshot")
			continue
		}
		g.log.Info().Str("path", path).Msg("screenshot saved")
	}
	g.screenshots = g.screenshots[:0]

	if g.copyNextDraw {
		g.copyNextDraw = false
		var buf bytes.Buffer
		if err := png.Encode(&buf, frame); err != nil {
			g.log.Error().Err(err).Msg("copy")
			return
		}
		clipboard.Write(clipboard.FmtImage, buf.Bytes())
		g.log.Info().Msg("frame copied to clipboard")
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(_, _ int) (int, int) {
	return g.cfg.Width, g.cfg.Height + hudHeight
}

func (g *Game) dispose() {
	g.cancel()
	g.canvas.Dispose()
	g.bus.Flush()
}
