package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/headshaker/internal/config"
	"github.com/ayusman/headshaker/internal/geom"
	"github.com/ayusman/headshaker/internal/landmark"
	"github.com/ayusman/headshaker/internal/tracker"
)

// Status is the lifecycle state of a session.
type Status int

const (
	StatusActive Status = iota
	StatusPaused
	StatusGameOver
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPaused:
		return "paused"
	case StatusGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Readiness reports whether the renderer has finished loading its resources.
type Readiness interface {
	Ready() bool
}

// Result is reported once when a session ends.
type Result struct {
	SessionID         uuid.UUID     `json:"session_id"`
	Score             int           `json:"score"`
	PreviousHighScore int           `json:"previous_high_score"`
	NewRecord         bool          `json:"new_record"`
	Cause             string        `json:"cause"`
	StartedAt         time.Time     `json:"started_at"`
	EndedAt           time.Time     `json:"ended_at"`
	Duration          time.Duration `json:"duration"`
}

// SessionOptions are the collaborators of a session. Every field is optional.
type SessionOptions struct {
	// HighScore is the best score before this session.
	HighScore int
	Renderer  Readiness
	Cues      CueSink
	Scheduler Scheduler
	// OnEnd receives the final result when the game is over.
	OnEnd func(Result)
	// OnReturn runs after the end-of-game delay to hand control back to the menu.
	OnReturn func()
}

// Session runs one game from start to game over. All methods must be called from
// the frame loop.
type Session struct {
	id   uuid.UUID
	cfg  config.Game
	opts SessionOptions

	tracker   *tracker.Tracker
	simulator *Simulator
	animator  *Animator

	status        Status
	avatarVisible bool
	startedAt     time.Time
	lastFrame     time.Time
}

// NewSession creates a session with a fresh simulator and animator.
func NewSession(cfg config.Game, opts SessionOptions) *Session {
	return &Session{
		id:        uuid.New(),
		cfg:       cfg,
		opts:      opts,
		tracker:   tracker.New(cfg.Depth),
		simulator: NewSimulator(cfg),
		animator:  NewAnimator(cfg),
		status:    StatusActive,
	}
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID { return s.id }

// Status returns the current lifecycle state.
func (s *Session) Status() Status { return s.status }

// State returns a copy of the game state.
func (s *Session) State() State { return s.simulator.State() }

// Simulator exposes the simulator for placing scripted objects.
func (s *Session) Simulator() *Simulator { return s.simulator }

// Animator exposes the pop animator.
func (s *Session) Animator() *Animator { return s.animator }

// Frame advances the session by one rendered frame. face is the latest face frame
// or nil when no face is tracked. Nothing happens until the renderer is ready.
func (s *Session) Frame(face *landmark.Frame, cam geom.Camera, now time.Time) {
	if s.opts.Renderer != nil && !s.opts.Renderer.Ready() {
		// The first ready frame starts a fresh step instead of covering the gap.
		s.lastFrame = time.Time{}
		return
	}

	if s.startedAt.IsZero() {
		s.startedAt = now
		log.Info().Str("session", s.id.String()).Int("high_score", s.opts.HighScore).Msg("game started")
	}

	dt := 0.0
	if !s.lastFrame.IsZero() && now.After(s.lastFrame) {
		dt = now.Sub(s.lastFrame).Seconds()
	}
	s.lastFrame = now

	s.animate(now)

	if s.status == StatusGameOver {
		return
	}

	avatar, ok := s.tracker.Update(face, cam)
	if !ok {
		s.pause()
		return
	}
	s.resume()
	s.showAvatar(avatar)

	res := s.simulator.Tick(dt, cam, avatar.Position, now)

	for _, obj := range res.Spawned {
		kind := obj.Kind
		s.emit(Cue{Type: CueObjectSpawn, Object: obj.ID, Kind: &kind, Position: point(obj.Position)})
	}
	for _, id := range res.Removed {
		s.emit(Cue{Type: CueObjectRemove, Object: id})
	}
	for _, obj := range res.Popped {
		s.animator.Add(obj, now)
		s.emit(Cue{Type: CueSoundPop, Object: obj.ID, Score: s.simulator.State().Score})
	}
	for _, obj := range s.simulator.Objects() {
		s.emit(Cue{Type: CueObjectMove, Object: obj.ID, Position: point(obj.Position)})
	}

	if res.GameOver {
		s.end(res.Cause, now)
	}
}

func (s *Session) animate(now time.Time) {
	for _, id := range s.animator.Tick(now) {
		s.emit(Cue{Type: CueObjectRemove, Object: id})
	}
	for _, v := range s.animator.Visuals(now) {
		s.emit(Cue{Type: CueObjectDecay, Object: v.ID, Scale: v.Scale, Alpha: v.Alpha})
	}
}

func (s *Session) pause() {
	if s.avatarVisible {
		s.avatarVisible = false
		s.emit(Cue{Type: CueAvatarHide})
	}
	if s.status != StatusActive {
		return
	}
	s.status = StatusPaused
	s.emit(Cue{Type: CuePause})
	log.Info().Str("session", s.id.String()).Msg("tracking lost, game paused")
}

func (s *Session) resume() {
	if s.status != StatusPaused {
		return
	}
	s.status = StatusActive
	s.emit(Cue{Type: CueResume})
	log.Info().Str("session", s.id.String()).Msg("tracking restored, game resumed")
}

func (s *Session) showAvatar(a tracker.Avatar) {
	if !s.avatarVisible {
		s.avatarVisible = true
		s.emit(Cue{Type: CueAvatarShow})
	}
	s.emit(Cue{Type: CueAvatarMove, Position: point(a.Position), Scale: a.Scale})
}

// end enters the terminal state. It runs at most once per session.
func (s *Session) end(cause EndCause, now time.Time) {
	if s.status == StatusGameOver {
		return
	}
	s.status = StatusGameOver

	if s.avatarVisible {
		s.avatarVisible = false
		s.emit(Cue{Type: CueAvatarHide})
	}

	score := s.simulator.State().Score
	result := Result{
		SessionID:         s.id,
		Score:             score,
		PreviousHighScore: s.opts.HighScore,
		NewRecord:         score > s.opts.HighScore,
		Cause:             cause.String(),
		StartedAt:         s.startedAt,
		EndedAt:           now,
		Duration:          now.Sub(s.startedAt),
	}

	if result.NewRecord {
		s.emit(Cue{Type: CueSoundNewRecord, Score: score})
	} else {
		s.emit(Cue{Type: CueSoundGameOver, Score: score})
	}

	log.Info().
		Str("session", s.id.String()).
		Int("score", score).
		Int("high_score", s.opts.HighScore).
		Bool("new_record", result.NewRecord).
		Str("cause", result.Cause).
		Msg("session ended")

	if s.opts.OnEnd != nil {
		s.opts.OnEnd(result)
	}

	if s.opts.OnReturn != nil {
		if s.opts.Scheduler != nil {
			s.opts.Scheduler.AfterFunc(s.cfg.ReturnDelay, s.opts.OnReturn)
		} else {
			s.opts.OnReturn()
		}
	}
}

func (s *Session) emit(c Cue) {
	if s.opts.Cues != nil {
		s.opts.Cues.Emit(c)
	}
}

func point(v mgl64.Vec3) *landmark.Point3D {
	return &landmark.Point3D{X: v.X(), Y: v.Y(), Z: v.Z()}
}
