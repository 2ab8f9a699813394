package unmagic

import (
	"fmt"
	"os"
	"time"
)

// renderStats holds per-render timing and the transform that was applied.
// Only populated when the compositor is in debug mode.
type renderStats struct {
	state         string
	width, height int
	ghost         GhostTransform
	renderTime    time.Duration
}

// debugLog prints render stats to stderr.
func (c *Compositor) debugLog(stats renderStats) {
	if !c.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[unmagic] render %s %dx%d: %v\n",
		stats.state, stats.width, stats.height, stats.renderTime)
	if stats.state == "ready" {
		_, _ = fmt.Fprintf(os.Stderr,
			"[unmagic] ghost: scale (%.4f, %.4f) | translate (%.4f, %.4f)\n",
			stats.ghost.ScaleX, stats.ghost.ScaleY, stats.ghost.DX, stats.ghost.DY)
	}
}
