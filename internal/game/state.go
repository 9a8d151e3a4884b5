package game

import (
	"time"

	"github.com/ayusman/headshaker/internal/config"
)

// State is the score and difficulty of one session.
type State struct {
	Score             int           `json:"score"`
	FallSpeed         float64       `json:"fall_speed"`
	SpawnInterval     time.Duration `json:"spawn_interval"`
	HazardProbability float64       `json:"hazard_probability"`
	GameOver          bool          `json:"game_over"`
}

// NewState returns the starting state for the given tuning.
func NewState(cfg config.Game) State {
	return State{
		FallSpeed:         cfg.FallSpeed,
		SpawnInterval:     cfg.SpawnInterval,
		HazardProbability: cfg.HazardProbability,
	}
}

// progress raises the difficulty if the score just reached a milestone. It reports
// whether anything changed.
func (s *State) progress(cfg config.Game) bool {
	if cfg.Milestone <= 0 || s.Score == 0 || s.Score%cfg.Milestone != 0 {
		return false
	}

	s.FallSpeed += cfg.FallSpeedIncrement

	prev := s.SpawnInterval
	switch {
	case s.SpawnInterval > cfg.SpawnCoarseFloor:
		s.SpawnInterval -= cfg.SpawnCoarseStep
	case s.SpawnInterval > cfg.MinSpawnInterval:
		s.SpawnInterval -= cfg.SpawnFineStep
	}
	if s.SpawnInterval < cfg.MinSpawnInterval {
		s.SpawnInterval = cfg.MinSpawnInterval
	}

	// The hazard chance only climbs while the spawn rate still does.
	if s.SpawnInterval != prev {
		s.HazardProbability += cfg.HazardIncrement
		if s.HazardProbability > cfg.MaxHazardProbability {
			s.HazardProbability = cfg.MaxHazardProbability
		}
	}

	return true
}
