package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/headshaker/internal/app"
	"github.com/ayusman/headshaker/internal/config"
	"github.com/ayusman/headshaker/internal/menu"
	"github.com/ayusman/headshaker/internal/server"
	"github.com/ayusman/headshaker/internal/server/api"
	"github.com/ayusman/headshaker/internal/store"
	"github.com/ayusman/headshaker/internal/trace"
	"github.com/ayusman/headshaker/internal/tray"
	"github.com/ayusman/headshaker/internal/voice"
)

func serveCommand(configs []string, headless bool, record string) error {
	cfg, err := config.Load(configs...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath, err = store.DefaultPath()
		if err != nil {
			return err
		}
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()
	log.Info().Str("path", dbPath).Msg("store opened")

	var recorder *trace.Recorder
	if record != "" {
		recorder, err = trace.Create(record, float64(cfg.Camera.Width), float64(cfg.Camera.Height))
		if err != nil {
			return err
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close trace")
			}
			log.Info().Int("frames", recorder.Len()).Str("path", record).Msg("trace written")
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hub := server.NewCueHub(cfg.Server.EventRate)
	tr := tray.New()

	var announcer voice.Announcer = voice.LogAnnouncer{}
	if cfg.Voice.TTSCommand != "" {
		speaker := voice.NewSpeaker(cfg.Voice.TTSCommand, cfg.Voice.TTSArgs...)
		speaker.Timeout = cfg.Voice.TTSTimeout
		async := voice.NewAsync(speaker, cfg.Voice.Queue)
		defer async.Close()
		announcer = async
		log.Info().Str("command", cfg.Voice.TTSCommand).Msg("speaking announcements")
	}

	application := app.New(app.Config{
		Settings:  *cfg,
		Store:     st,
		Announcer: announcer,
		Renderer:  hub,
		Recorder:  recorder,
		Observer:  app.Observer{
			OnOption:    tr.SetCurrent,
			OnStatus:    tr.SetStatus,
			OnHighScore: tr.SetHighScore,
			OnMuted:     tr.SetMuted,
			OnHint:      tr.SetHint,
			OnExit:      cancel,
		},
	})
	defer application.Close()

	tr.SetHighScore(application.HighScore())
	tr.SetMuted(application.Muted())
	tr.OnChoose(func(opt menu.Option) {
		if err := application.Choose(opt); err != nil {
			log.Error().Err(err).Msg("tray selection failed")
		}
	})
	tr.OnMute(application.SetMuted)
	tr.OnQuit(cancel)

	webDir := findWebDir(cfg.Server.StaticDir)
	if webDir != "" {
		log.Info().Str("dir", webDir).Msg("serving renderer")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Hub:       hub,
		OnSettings: func(s api.Settings) {
			application.SetMuted(s.MusicMuted)
			tr.SetMuted(s.MusicMuted)
		},
		Hear: application.Hear,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx, cfg.Server.Addr)
	})
	g.Go(func() error {
		return application.Run(gctx)
	})

	if !headless {
		// The tray needs the main goroutine on some platforms.
		go func() {
			<-gctx.Done()
			tr.Quit()
		}()
		tr.Run()
		cancel()
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("bye")
	return nil
}

// findWebDir returns configured if set, else the first existing renderer directory
// among "web", "../web" and ~/.headshaker/web.
func findWebDir(configured string) string {
	if configured != "" {
		return configured
	}

	for _, p := range []string{"web", "../web"} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	homeWeb := filepath.Join(home, ".headshaker", "web")
	if info, err := os.Stat(homeWeb); err == nil && info.IsDir() {
		return homeWeb
	}
	return ""
}
