package game

import (
	"math/rand/v2"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog/log"

	"github.com/ayusman/headshaker/internal/config"
	"github.com/ayusman/headshaker/internal/geom"
)

// EndCause says why a game ended.
type EndCause int

const (
	EndNone EndCause = iota
	// EndHazardHit means the avatar touched a hazard.
	EndHazardHit
	// EndMissed means a benign object left the screen uncaught.
	EndMissed
)

func (c EndCause) String() string {
	switch c {
	case EndHazardHit:
		return "hazard_hit"
	case EndMissed:
		return "missed"
	default:
		return "none"
	}
}

// TickResult reports what changed during one simulator step.
type TickResult struct {
	ScoreDelta int
	GameOver   bool
	Cause      EndCause

	Spawned []Object
	// Popped objects were caught. They are no longer falling and belong to the
	// animator from here on.
	Popped []Object
	// Removed holds hazards that left the screen.
	Removed []ObjectID
	// Progressed is true when a milestone raised the difficulty.
	Progressed bool
}

// Simulator owns the falling objects of one session. It is driven from the frame
// loop and is not safe for concurrent use.
type Simulator struct {
	cfg   config.Game
	rng   *rand.Rand
	state State

	objects   arena
	nextID    ObjectID
	lastSpawn time.Time
}

// NewSimulator creates a simulator with a fresh state. A zero cfg.Seed seeds the
// spawn generator from the clock.
func NewSimulator(cfg config.Game) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Simulator{
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		state:   NewState(cfg),
		objects: newArena(),
	}
}

// State returns a copy of the game state.
func (s *Simulator) State() State {
	return s.state
}

// Objects returns the falling objects in spawn order.
func (s *Simulator) Objects() []Object {
	return s.objects.snapshot()
}

// Len returns the number of falling objects.
func (s *Simulator) Len() int {
	return s.objects.len()
}

// SpawnAt places an object at a world position without touching the spawn timer.
func (s *Simulator) SpawnAt(kind Kind, pos mgl64.Vec3, now time.Time) Object {
	s.nextID++
	obj := Object{ID: s.nextID, Kind: kind, Position: pos, SpawnedAt: now}
	s.objects.add(obj)
	return obj
}

// Tick advances the game by dt seconds. Once the game is over every call is a no-op
// and the remaining objects stay frozen where they are.
func (s *Simulator) Tick(dt float64, cam geom.Camera, avatar mgl64.Vec3, now time.Time) TickResult {
	var res TickResult
	if s.state.GameOver {
		return res
	}

	if s.lastSpawn.IsZero() || now.Sub(s.lastSpawn) > s.state.SpawnInterval {
		res.Spawned = append(res.Spawned, s.spawn(cam, now))
		s.lastSpawn = now
	}

	r2 := s.cfg.CollisionRadius * s.cfg.CollisionRadius

	// Removal during the walk is safe because ids are copied first.
	for _, id := range append([]ObjectID(nil), s.objects.order...) {
		obj, _ := s.objects.get(id)
		obj.Position[1] -= s.state.FallSpeed * dt

		dx := obj.Position.X() - avatar.X()
		dy := obj.Position.Y() - avatar.Y()
		if dx*dx+dy*dy < r2 {
			if obj.Kind == Hazard {
				s.end(&res, EndHazardHit, obj)
				return res
			}
			s.objects.remove(id)
			s.state.Score++
			res.ScoreDelta++
			res.Popped = append(res.Popped, *obj)
			if s.state.progress(s.cfg) {
				res.Progressed = true
				log.Info().
					Int("score", s.state.Score).
					Float64("fall_speed", s.state.FallSpeed).
					Dur("spawn_interval", s.state.SpawnInterval).
					Float64("hazard_probability", s.state.HazardProbability).
					Msg("difficulty increased")
			}
			continue
		}

		screen, inFront := cam.WorldToScreen(obj.Position)
		if !inFront || screen.Y() >= cam.Viewport.Height {
			if obj.Kind == Benign {
				s.end(&res, EndMissed, obj)
				return res
			}
			s.objects.remove(id)
			res.Removed = append(res.Removed, id)
		}
	}

	return res
}

func (s *Simulator) end(res *TickResult, cause EndCause, obj *Object) {
	s.state.GameOver = true
	res.GameOver = true
	res.Cause = cause
	log.Info().
		Str("cause", cause.String()).
		Uint64("object", uint64(obj.ID)).
		Int("score", s.state.Score).
		Msg("game over")
}

func (s *Simulator) spawn(cam geom.Camera, now time.Time) Object {
	spread := s.cfg.SpawnSpread
	x := cam.Viewport.Width/2 + (s.rng.Float64()*2-1)*spread
	pos := cam.ScreenPointToRay(x, 0).Point(s.cfg.Depth)

	kind := Benign
	if s.rng.Float64() < s.state.HazardProbability {
		kind = Hazard
	}

	obj := s.SpawnAt(kind, pos, now)
	log.Debug().
		Uint64("object", uint64(obj.ID)).
		Str("kind", kind.String()).
		Float64("screen_x", x).
		Msg("object spawned")
	return obj
}
