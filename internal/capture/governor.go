package capture

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/headshaker/internal/config"
)

// Governor picks the capture frame rate: the active rate while there is motion
// and the idle rate once the scene has been still for the idle timeout.
type Governor struct {
	idleFPS     int
	activeFPS   int
	idleTimeout time.Duration

	active     bool
	lastMotion time.Time
}

// NewGovernor creates a governor that starts idle.
func NewGovernor(cfg config.Camera) *Governor {
	return &Governor{
		idleFPS:     cfg.IdleFPS,
		activeFPS:   cfg.ActiveFPS,
		idleTimeout: cfg.IdleTimeout,
	}
}

// Observe records whether the latest frame moved and returns the frame rate to use
// and whether it changed.
func (g *Governor) Observe(moving bool, now time.Time) (int, bool) {
	switch {
	case moving:
		g.lastMotion = now
		if !g.active {
			g.active = true
			log.Debug().Int("fps", g.activeFPS).Msg("switched to active capture")
			return g.activeFPS, true
		}
	case g.active && now.Sub(g.lastMotion) > g.idleTimeout:
		g.active = false
		log.Debug().Int("fps", g.idleFPS).Msg("switched to idle capture")
		return g.idleFPS, true
	}
	return g.FPS(), false
}

// Active reports whether the governor is in the active state.
func (g *Governor) Active() bool {
	return g.active
}

// FPS returns the current frame rate.
func (g *Governor) FPS() int {
	if g.active {
		return g.activeFPS
	}
	return g.idleFPS
}

// Interval returns the frame period for the current rate.
func (g *Governor) Interval() time.Duration {
	fps := g.FPS()
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}
