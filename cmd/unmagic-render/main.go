// Command unmagic-render renders the ghost-difference effect without a
// window. It writes numbered PNG frames and, optionally, an animated GIF of
// the oscillating offset. A JSON script can drive the controls frame by
// frame.
//
//	unmagic-render -in photo.png -frames 120 -gif wave.gif
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/image/draw"

	"github.com/phanxgames/unmagic"
	"github.com/phanxgames/unmagic/ingest"
	"github.com/phanxgames/unmagic/telemetry"
)

// errScriptDone stops the frame loop once a script has run out of steps.
var errScriptDone = errors.New("script done")

type options struct {
	cfg unmagic.RunConfig

	in       string
	out      string
	frames   int
	fps      int
	gifPath  string
	script   string
	drag     bool
	startMS  int64
	logLevel string
}

func parseFlags(args []string) (options, error) {
	o := options{cfg: unmagic.DefaultRunConfig()}
	o.cfg.Width, o.cfg.Height = 400, 400

	fs := flag.NewFlagSet("unmagic-render", flag.ContinueOnError)
	o.cfg.RegisterFlags(fs)
	fs.StringVar(&o.in, "in", "", "input image (JPEG, PNG, GIF or ICO)")
	fs.StringVar(&o.out, "out", "", "directory for numbered PNG frames and captures")
	fs.IntVar(&o.frames, "frames", 60, "number of frames to render; 0 runs a script to its end")
	fs.IntVar(&o.fps, "fps", 30, "frames per second of simulated time")
	fs.StringVar(&o.gifPath, "gif", "", "write an animated GIF to this path")
	fs.StringVar(&o.script, "script", "", "JSON script driving the controls")
	fs.BoolVar(&o.drag, "drag", false, "render the drop-target state")
	fs.Int64Var(&o.startMS, "start", 0, "simulated start time in Unix milliseconds")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	if o.in == "" && !o.drag {
		return o, errors.New("-in is required")
	}
	if o.fps <= 0 {
		return o, fmt.Errorf("invalid -fps %d", o.fps)
	}
	if o.frames < 0 || (o.frames == 0 && o.script == "") {
		return o, fmt.Errorf("invalid -frames %d", o.frames)
	}
	if o.out == "" && o.gifPath == "" {
		return o, errors.New("nothing to write: set -out or -gif")
	}
	return o, o.cfg.Validate()
}

// renderer holds the per-run state of the frame loop.
type renderer struct {
	opts   options
	log    zerolog.Logger
	bus    *telemetry.Bus
	clock  *unmagic.SteppedClock
	ctrl   *unmagic.Controller
	comp   *unmagic.Compositor
	canvas *unmagic.RasterCanvas
	script *unmagic.ScriptRunner
	anim   *gif.GIF
	count  int
}

func run(ctx context.Context, args []string, log zerolog.Logger) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	if lvl, err := zerolog.ParseLevel(opts.logLevel); err == nil {
		log = log.Level(lvl)
	}

	bus := telemetry.NewBus()
	bus.Attach(telemetry.NewLogSink(log))
	bus.Publish(telemetry.EventInit, nil)
	defer bus.Flush()

	var img *ingest.Image
	if opts.in != "" {
		bus.Publish(telemetry.EventLoadFile, telemetry.LoadFile(ingest.TypeByName(opts.in)))
		img, err = ingest.ReadFile(os.DirFS(filepath.Dir(opts.in)), filepath.Base(opts.in))
		if err != nil {
			if errors.Is(err, ingest.ErrUnsupportedType) {
				bus.Publish(telemetry.EventLoadFileInvalid, telemetry.LoadFile(ingest.TypeByName(opts.in)))
			}
			return err
		}
		bus.Publish(telemetry.EventImageReady, nil)
	}

	pal, err := opts.cfg.Palette()
	if err != nil {
		return err
	}

	r := &renderer{
		opts:  opts,
		log:   log,
		bus:   bus,
		clock: &unmagic.SteppedClock{Current: time.UnixMilli(opts.startMS), Step: time.Second / time.Duration(opts.fps)},
		comp:  unmagic.NewCompositor(pal),
	}
	r.comp.SetDebugMode(opts.cfg.Debug)

	sched := &unmagic.FrameScheduler{}
	r.ctrl = unmagic.NewController(sched, r.clock)
	opts.cfg.Apply(r.ctrl)
	r.ctrl.SetDrag(opts.drag)

	w, h := opts.cfg.Width, opts.cfg.Height
	if img != nil {
		w, h = unmagic.FitAspect(img.Width, img.Height, w, h)
		r.ctrl.SetImage(img.Image)
		log.Debug().Str("format", img.Format).Int("width", img.Width).Int("height", img.Height).Msg("image decoded")
	}
	r.canvas = unmagic.NewRasterCanvas(w, h)

	if opts.script != "" {
		data, err := os.ReadFile(opts.script)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		if r.script, err = unmagic.LoadScript(data); err != nil {
			return err
		}
	}
	if opts.out != "" {
		if err := os.MkdirAll(opts.out, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if opts.gifPath != "" {
		r.anim = &gif.GIF{}
	}

	err = unmagic.RunFrames(ctx, sched, 0, opts.frames, r.frame)
	if err != nil && !errors.Is(err, errScriptDone) {
		return err
	}
	if r.anim != nil {
		if err := writeGIF(opts.gifPath, r.anim); err != nil {
			return err
		}
	}
	log.Info().Int("frames", r.count).Str("out", opts.out).Str("gif", opts.gifPath).Msg("rendered")
	return nil
}

// frame runs after the scheduler has ticked: it applies the script, renders
// and writes the outputs, then advances simulated time.
func (r *renderer) frame(n uint64) error {
	var captures []string
	if r.script != nil {
		captures = r.script.Step(r.ctrl)
	}

	r.comp.Render(r.canvas, r.ctrl.Snapshot().State())
	frame := r.canvas.Image()
	r.count++

	if r.opts.out != "" {
		path := filepath.Join(r.opts.out, fmt.Sprintf("frame_%04d.png", n))
		if err := unmagic.WritePNG(path, frame); err != nil {
			return err
		}
		for _, label := range captures {
			path, err := unmagic.SaveScreenshot(r.opts.out, label, frame)
			if err != nil {
				return err
			}
			r.log.Info().Str("label", label).Str("path", path).Msg("captured")
		}
	}
	if r.anim != nil {
		r.anim.Image = append(r.anim.Image, quantize(frame))
		r.anim.Delay = append(r.anim.Delay, max(100/r.opts.fps, 2))
	}

	r.bus.Flush()
	r.clock.Tick()
	if r.script != nil && r.script.Done() && r.opts.frames == 0 {
		return errScriptDone
	}
	return nil
}

// quantize maps a frame onto the Plan 9 palette with error diffusion.
func quantize(src image.Image) *image.Paletted {
	b := src.Bounds()
	dst := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), src, b.Min)
	return dst
}

func writeGIF(path string, anim *gif.GIF) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := gif.EncodeAll(f, anim); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], log); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("render failed")
	}
}
