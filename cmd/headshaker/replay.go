package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/headshaker/internal/app"
	"github.com/ayusman/headshaker/internal/config"
	"github.com/ayusman/headshaker/internal/detector"
	"github.com/ayusman/headshaker/internal/menu"
	"github.com/ayusman/headshaker/internal/trace"
)

func replayCommand(path string, configs []string) error {
	cfg, err := config.Load(configs...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	player, err := trace.Open(path)
	if err != nil {
		return err
	}
	defer player.Close()

	h := player.Header()
	log.Info().
		Str("path", path).
		Float64("width", h.Width).
		Float64("height", h.Height).
		Msg("replaying trace")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	application := app.New(app.Config{
		Settings:    *cfg,
		Pose:        detector.NewMockDetector(),
		Face:        detector.NewMockDetector(),
		ImageWidth:  int(h.Width),
		ImageHeight: int(h.Height),
		Observer: app.Observer{
			OnOption: func(opt menu.Option) {
				log.Info().Str("option", string(opt)).Msg("menu")
			},
			OnStatus: func(s string) {
				log.Info().Str("status", s).Msg("game")
			},
		},
	})
	defer application.Close()

	if err := application.Replay(ctx, player); err != nil {
		return err
	}

	fmt.Printf("menu: %s, mode: %s, best: %d\n",
		application.Menu().Current(), application.Mode(), application.HighScore())
	return nil
}
