package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/headshaker/internal/detector"
	"github.com/ayusman/headshaker/internal/landmark"
)

// noCameraTick is the timer cadence when running without a camera, so the menu
// stays usable from the tray and voice.
const noCameraTick = 200 * time.Millisecond

// Run is the frame loop. It returns when ctx is cancelled.
//
// Pipeline logic:
//  1. Start in idle mode (idle fps) and run motion detection on every frame
//  2. On motion, switch to active mode (active fps) and submit frames to the analyzer
//  3. The analyzer runs pose then face inference, dropping frames while busy
//  4. Analyzed samples, recorded to the trace when one is configured, drive the
//     menu recognizer or the running game
//  5. After the idle timeout without motion, switch back to idle mode
//
// During a game the loop stays in active mode. A camera that cannot be opened is
// announced and the loop keeps running on timers only.
func (a *App) Run(ctx context.Context) error {
	cameraOK := true
	if err := a.camera.Open(); err != nil {
		log.Error().Err(err).Msg("camera unavailable")
		a.announcer.Announce(CameraUnavailable)
		cameraOK = false
	} else {
		a.camera.SetFPS(a.governor.FPS())
		defer func() {
			if err := a.camera.Close(); err != nil {
				log.Error().Err(err).Msg("error closing camera")
			}
		}()
		log.Info().Int("fps", a.governor.FPS()).Msg("detection pipeline started")
	}

	interval := a.governor.Interval()
	if !cameraOK {
		interval = noCameraTick
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	samples := pump(ctx, a.record(a.analyzer))

	for {
		select {
		case <-ctx.Done():
			log.Info().Uint64("dropped", a.analyzer.Dropped()).Msg("detection pipeline stopped")
			return nil
		case sample, ok := <-samples:
			if !ok {
				samples = nil
				continue
			}
			a.Step(sample)
		case now := <-ticker.C:
			a.Tick(now)
			if cameraOK {
				a.capture(now, ticker)
			}
		}
	}
}

// capture reads one frame, updates the frame rate governor and hands the frame
// to the analyzer when active.
func (a *App) capture(now time.Time, ticker *time.Ticker) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Debug().Err(err).Msg("error reading frame")
		return
	}

	m := a.motion.Detect(frame)
	moving := m.Moving || a.Mode() == ModeGame

	if fps, changed := a.governor.Observe(moving, now); changed {
		a.camera.SetFPS(fps)
		ticker.Reset(a.governor.Interval())
		log.Info().Int("fps", fps).Bool("active", a.governor.Active()).Msg("frame rate changed")
	}

	if !a.governor.Active() {
		frame.Close()
		return
	}

	// The analyzer owns the frame from here on, including when it drops it.
	a.analyzer.Submit(*frame, now)
}

// pump forwards samples from src until ctx is cancelled or src fails. The
// returned channel is closed when pumping stops.
func pump(ctx context.Context, src landmark.Source) <-chan landmark.Sample {
	out := make(chan landmark.Sample)
	go func() {
		defer close(out)
		for {
			sample, err := src.Next(ctx)
			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, detector.ErrClosed) {
					log.Error().Err(err).Msg("landmark source failed")
				}
				return
			}
			select {
			case out <- sample:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
