// Package app wires the camera, the landmark analyzer, the gesture driven menu and
// the falling-block game into one frame loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/ayusman/headshaker/internal/capture"
	"github.com/ayusman/headshaker/internal/config"
	"github.com/ayusman/headshaker/internal/detector"
	"github.com/ayusman/headshaker/internal/game"
	"github.com/ayusman/headshaker/internal/geom"
	"github.com/ayusman/headshaker/internal/gesture"
	"github.com/ayusman/headshaker/internal/landmark"
	"github.com/ayusman/headshaker/internal/menu"
	"github.com/ayusman/headshaker/internal/store"
	"github.com/ayusman/headshaker/internal/trace"
	"github.com/ayusman/headshaker/internal/tracker"
	"github.com/ayusman/headshaker/internal/voice"
)

// Spoken messages.
const (
	CameraUnavailable = "Camera not available"
	InfoText          = "Catch the falling blocks with your nose and avoid the red ones"
	MusicOn           = "Music on"
	MusicOff          = "Music off"
)

// Mode is what the frame loop is driving.
type Mode int

const (
	ModeMenu Mode = iota
	ModeGame
)

func (m Mode) String() string {
	if m == ModeGame {
		return "game"
	}
	return "menu"
}

// Renderer is the presentation layer: it consumes game cues, reports whether its
// scene is loaded and accepts app messages.
type Renderer interface {
	game.CueSink
	game.Readiness
	Send(v any)
}

// Message tells the renderer about app level changes.
type Message struct {
	Type   string       `json:"type" cbor:"type"`
	Option menu.Option  `json:"option,omitempty" cbor:"option,omitempty"`
	Text   string       `json:"text,omitempty" cbor:"text,omitempty"`
	Result *game.Result `json:"result,omitempty" cbor:"result,omitempty"`
}

// Message types
const (
	MsgMenu      = "menu"
	MsgListen    = "listen"
	MsgHint      = "hint"
	MsgGameStart = "game_start"
	MsgGameOver  = "game_over"
)

// Observer receives app changes for secondary surfaces like the tray. Every field
// is optional.
type Observer struct {
	OnOption    func(menu.Option)
	OnStatus    func(string)
	OnHighScore func(int)
	OnMuted     func(bool)
	OnHint      func(string)
	OnExit      func()
}

// Config holds the collaborators of the application. Settings is required;
// missing devices are created from it.
type Config struct {
	Settings  config.Config
	Store     *store.Store
	Camera    capture.Camera
	Pose      detector.Detector
	Face      detector.Detector
	Announcer voice.Announcer
	Renderer  Renderer
	Recorder  *trace.Recorder
	Observer  Observer
	// ImageWidth and ImageHeight override the landmark image size. They default
	// to the camera resolution.
	ImageWidth  int
	ImageHeight int
}

// App is the main application that turns analyzed frames into menu actions and
// game frames.
type App struct {
	cfg       config.Config
	store     *store.Store
	camera    capture.Camera
	motion    *capture.MotionDetector
	governor  *capture.Governor
	analyzer  *detector.Analyzer
	announcer voice.Announcer
	renderer  Renderer
	recorder  *trace.Recorder
	observer  Observer

	recognizer *gesture.Recognizer
	menu       *menu.Menu
	gameCam    geom.Camera
	imgW, imgH int

	mu        deadlock.Mutex
	mode      Mode
	session   *game.Session
	scheduler *game.FrameScheduler
	highScore int
	muted     bool
	now       time.Time
	menuSince time.Time
	hint      string
	lastScore int

	pendingMu deadlock.Mutex
	pending   []menu.Option
}

// New creates a new App with the given configuration.
func New(cfg Config) *App {
	s := cfg.Settings

	a := &App{
		cfg:       s,
		store:     cfg.Store,
		camera:    cfg.Camera,
		motion:    capture.NewMotionDetector(s.Camera.MotionThreshold),
		governor:  capture.NewGovernor(s.Camera),
		announcer: cfg.Announcer,
		renderer:  cfg.Renderer,
		recorder:  cfg.Recorder,
		observer:  cfg.Observer,

		recognizer: gesture.NewRecognizer(s.Gesture),
		gameCam:    geom.NewCamera(geom.Viewport{Width: s.Game.ViewWidth, Height: s.Game.ViewHeight}),
		imgW:       cfg.ImageWidth,
		imgH:       cfg.ImageHeight,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(s.Camera)
	}
	if a.imgW <= 0 || a.imgH <= 0 {
		a.imgW, a.imgH = a.camera.Size()
	}
	if a.announcer == nil {
		a.announcer = voice.LogAnnouncer{}
	}

	pose, face := cfg.Pose, cfg.Face
	dcfg := detector.Config{
		MinConfidence:   s.Detector.MinConfidence,
		MinTrackingConf: s.Detector.MinTrackingConfidence,
	}
	if pose == nil {
		pose = mediaPipeOrMock(detector.TaskPose, dcfg)
	}
	if face == nil {
		face = mediaPipeOrMock(detector.TaskFace, dcfg)
	}
	a.analyzer = detector.NewAnalyzer(pose, face)

	a.menu = menu.New(a.announcer, menu.Listener{
		OnChange: a.optionChanged,
		OnSelect: a.queue,
		OnListen: a.listen,
	})

	if a.store != nil {
		if high, err := a.store.Settings().HighScore(); err != nil {
			log.Error().Err(err).Msg("failed to load high score")
		} else {
			a.highScore = high
		}
		if muted, err := a.store.Settings().Muted(); err != nil {
			log.Error().Err(err).Msg("failed to load music setting")
		} else {
			a.muted = muted
		}
	}

	return a
}

// mediaPipeOrMock tries MediaPipe first and falls back to a detector that never
// finds anyone.
func mediaPipeOrMock(task detector.Task, cfg detector.Config) detector.Detector {
	mp, err := detector.NewMediaPipeDetector(task, cfg)
	if err == nil {
		log.Info().Str("task", string(task)).Msg("using MediaPipe landmark detection")
		return mp
	}
	log.Warn().Err(err).Str("task", string(task)).Msg("MediaPipe not available, using mock detector")
	return detector.NewMockDetector()
}

// Menu returns the main menu.
func (a *App) Menu() *menu.Menu {
	return a.menu
}

// Analyzer returns the landmark analyzer fed by the frame loop.
func (a *App) Analyzer() *detector.Analyzer {
	return a.analyzer
}

// Mode returns what the frame loop is currently driving.
func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// Session returns the running or last finished game session, or nil in the menu.
func (a *App) Session() *game.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// HighScore returns the best score known to the app.
func (a *App) HighScore() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.highScore
}

// Muted reports whether the background music is muted.
func (a *App) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// SetMuted changes the music setting from an outside surface (tray, HTTP API).
func (a *App) SetMuted(muted bool) {
	a.mu.Lock()
	a.muted = muted
	a.mu.Unlock()

	if a.store != nil {
		if err := a.store.Settings().SetMuted(muted); err != nil {
			log.Error().Err(err).Msg("failed to persist music setting")
		}
	}
}

// Hear applies a recognized voice phrase to the menu.
func (a *App) Hear(text string) voice.Command {
	return a.menu.Hear(text)
}

// Choose selects a menu option from an outside surface.
func (a *App) Choose(opt menu.Option) error {
	return a.menu.Choose(opt)
}

// Step processes one analyzed frame. It must be called from the frame loop.
func (a *App) Step(sample landmark.Sample) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.advance(sample.Captured)

	switch a.mode {
	case ModeGame:
		world := tracker.WorldFace(sample.Frame, a.gameCam, a.imgW, a.imgH, a.cfg.Game.FaceDistance)
		a.session.Frame(world, a.gameCam, a.now)
		a.reportScore()
	default:
		events := a.recognizer.Evaluate(sample.Frame, a.now)
		for _, e := range events {
			log.Debug().Str("channel", e.Channel.String()).Str("intent", e.Intent.String()).Msg("gesture")
		}
		gesture.Dispatch(events, a.menu)
	}

	a.settle()
}

// Tick advances timers without a new analysis, e.g. when no camera is available.
func (a *App) Tick(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.advance(now)
	a.settle()
}

// advance moves the app clock and runs due timers. Caller holds a.mu.
func (a *App) advance(now time.Time) {
	if now.Before(a.now) {
		now = a.now
	}
	a.now = now
	if a.menuSince.IsZero() {
		a.menuSince = now
	}
	if a.scheduler != nil {
		a.scheduler.Advance(now)
	}
}

// settle applies queued menu selections and refreshes the hint. Caller holds a.mu.
func (a *App) settle() {
	a.pendingMu.Lock()
	pending := a.pending
	a.pending = nil
	a.pendingMu.Unlock()

	for _, opt := range pending {
		a.apply(opt)
	}

	if a.mode == ModeMenu {
		a.updateHint()
	}
}

// queue defers a selection to the frame loop. Selections can come from the tray
// or the HTTP API while a frame is being processed.
func (a *App) queue(opt menu.Option) {
	a.pendingMu.Lock()
	a.pending = append(a.pending, opt)
	a.pendingMu.Unlock()
}

func (a *App) apply(opt menu.Option) {
	if a.mode == ModeGame {
		log.Debug().Str("option", string(opt)).Msg("ignoring menu selection during a game")
		return
	}

	switch opt {
	case menu.Play:
		a.startGame()
	case menu.Settings:
		a.muted = !a.muted
		if a.store != nil {
			if err := a.store.Settings().SetMuted(a.muted); err != nil {
				log.Error().Err(err).Msg("failed to persist music setting")
			}
		}
		if a.muted {
			a.announcer.Announce(MusicOff)
		} else {
			a.announcer.Announce(MusicOn)
		}
		if a.observer.OnMuted != nil {
			a.observer.OnMuted(a.muted)
		}
	case menu.Info:
		a.announcer.Announce(InfoText)
	case menu.Exit:
		log.Info().Msg("exit selected")
		if a.observer.OnExit != nil {
			a.observer.OnExit()
		}
	}
}

func (a *App) startGame() {
	a.scheduler = game.NewFrameScheduler(a.now)
	a.recognizer.Reset()
	a.lastScore = -1

	opts := game.SessionOptions{
		HighScore: a.highScore,
		Scheduler: a.scheduler,
		OnEnd:     a.finish,
		OnReturn:  a.returnToMenu,
	}
	if a.renderer != nil {
		opts.Renderer = a.renderer
		opts.Cues = a.renderer
	}

	a.session = game.NewSession(a.cfg.Game, opts)
	a.mode = ModeGame
	log.Info().Str("session", a.session.ID().String()).Msg("game started")

	a.send(Message{Type: MsgGameStart})
	a.status("Playing")
}

// finish persists the result. It runs inside Session.Frame.
func (a *App) finish(res game.Result) {
	if res.NewRecord {
		a.highScore = res.Score
		if a.observer.OnHighScore != nil {
			a.observer.OnHighScore(res.Score)
		}
	}

	if a.store != nil {
		if _, err := a.store.Settings().RecordScore(res.Score); err != nil {
			log.Error().Err(err).Msg("failed to save high score")
		}
		err := a.store.Sessions().Create(&store.Session{
			ID:        res.SessionID,
			Score:     res.Score,
			NewRecord: res.NewRecord,
			Cause:     res.Cause,
			StartedAt: res.StartedAt,
			EndedAt:   res.EndedAt,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to save game session")
		}
	}

	a.send(Message{Type: MsgGameOver, Result: &res})
	a.status(fmt.Sprintf("Game over: %d", res.Score))
}

// returnToMenu runs from the frame scheduler after the end-of-game delay.
func (a *App) returnToMenu() {
	a.mode = ModeMenu
	a.session = nil
	a.menuSince = a.now
	a.hint = ""
	a.recognizer.Reset()

	log.Info().Msg("back to menu")
	a.send(Message{Type: MsgMenu, Option: a.menu.Current()})
	a.status("Idle")
}

func (a *App) reportScore() {
	if a.session == nil || a.session.Status() == game.StatusGameOver {
		return
	}
	score := a.session.State().Score
	if score != a.lastScore {
		a.lastScore = score
		a.status(fmt.Sprintf("Score: %d", score))
	}
}

func (a *App) updateHint() {
	hint := menu.HintAt(a.now.Sub(a.menuSince))
	if hint == a.hint {
		return
	}
	a.hint = hint
	if a.observer.OnHint != nil {
		a.observer.OnHint(hint)
	}
	a.send(Message{Type: MsgHint, Text: hint})
}

func (a *App) optionChanged(opt menu.Option) {
	if a.observer.OnOption != nil {
		a.observer.OnOption(opt)
	}
	a.send(Message{Type: MsgMenu, Option: opt})
}

func (a *App) listen() {
	a.send(Message{Type: MsgListen})
}

func (a *App) status(s string) {
	if a.observer.OnStatus != nil {
		a.observer.OnStatus(s)
	}
}

func (a *App) send(m Message) {
	if a.renderer != nil {
		a.renderer.Send(m)
	}
}

// Close releases the analyzer, its detectors and the motion detector.
func (a *App) Close() error {
	a.motion.Close()
	return a.analyzer.Close()
}

// Replay feeds every sample of src through Step until src reports
// trace.ErrEndOfTrace or ctx is cancelled.
func (a *App) Replay(ctx context.Context, src landmark.Source) error {
	src = a.record(src)
	n := 0
	for {
		sample, err := src.Next(ctx)
		if errors.Is(err, trace.ErrEndOfTrace) {
			log.Info().Int("frames", n).Msg("replay finished")
			return nil
		}
		if err != nil {
			return err
		}
		a.Step(sample)
		n++
	}
}

// record tees src into the configured trace recorder, if any.
func (a *App) record(src landmark.Source) landmark.Source {
	if a.recorder == nil {
		return src
	}
	return trace.Tee(src, a.recorder)
}
