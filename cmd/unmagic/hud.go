package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/phanxgames/unmagic"
)

// hudHeight is the strip below the surface that holds the controls.
const hudHeight = 72

var (
	hudBackground = color.RGBA{0, 0, 0, 160}
	hudTrack      = color.RGBA{80, 80, 80, 255}
	hudFill       = color.RGBA{120, 170, 255, 255}
)

// drawHUD draws the control read-out with the fade-in opacity.
func (g *Game) drawHUD(screen *ebiten.Image) {
	alpha := float32(g.hud.Value)
	if alpha <= 0 {
		return
	}
	top := float32(g.cfg.Height)
	width := float32(g.cfg.Width)
	vector.DrawFilledRect(screen, 0, top, width, hudHeight, scaleAlpha(hudBackground, alpha), false)

	p := g.ctrl.Params()
	auto := "off"
	if g.ctrl.Auto() {
		auto = "on"
	}
	lines := []struct {
		label string
		value float64
		limit float64
	}{
		{fmt.Sprintf("offset  %6.1f  (auto %s)", p.Offset, auto), p.Offset, unmagic.OffsetLimit},
		{fmt.Sprintf("slant   %6.0f", p.Slant), p.Slant, unmagic.SlantLimit},
		{fmt.Sprintf("stretch %6.0f", p.Stretch), p.Stretch, unmagic.StretchLimit},
		{fmt.Sprintf("mag     %6.0f", p.OffsetMagnitude), p.OffsetMagnitude, unmagic.MaxOffsetMagnitude},
	}
	const barX, barW = 220, 160
	for i, l := range lines {
		y := int(top) + 4 + i*16
		ebitenutil.DebugPrintAt(screen, l.label, 8, y)
		vector.DrawFilledRect(screen, barX, float32(y+6), barW, 4, scaleAlpha(hudTrack, alpha), false)
		t := float32((l.value/l.limit + 1) / 2)
		if l.limit == unmagic.MaxOffsetMagnitude {
			t = float32(l.value / l.limit)
		}
		vector.DrawFilledRect(screen, barX, float32(y+6), barW*t, 4, scaleAlpha(hudFill, alpha), false)
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.0f", ebiten.ActualFPS()), int(width)-72, int(top)+4)
}

func scaleAlpha(c color.RGBA, a float32) color.RGBA {
	return color.RGBA{
		R: uint8(float32(c.R) * a),
		G: uint8(float32(c.G) * a),
		B: uint8(float32(c.B) * a),
		A: uint8(float32(c.A) * a),
	}
}
