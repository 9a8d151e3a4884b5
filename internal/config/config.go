// Package config loads and validates the headshaker configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var Default []byte

// ErrInvalid is returned when a configuration value cannot be clamped into range.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete application configuration.
type Config struct {
	Gesture  Gesture  `yaml:"gesture"`
	Game     Game     `yaml:"game"`
	Camera   Camera   `yaml:"camera"`
	Detector Detector `yaml:"detector"`
	Server   Server   `yaml:"server"`
	Store    Store    `yaml:"store"`
	Voice    Voice    `yaml:"voice"`
}

// Gesture holds the recognizer thresholds. Distances are image pixels.
type Gesture struct {
	TiltThreshold      float64       `yaml:"tilt_threshold"`
	TiltHold           time.Duration `yaml:"tilt_hold"`
	EyebrowThreshold   float64       `yaml:"eyebrow_threshold"`
	EyebrowHold        time.Duration `yaml:"eyebrow_hold"`
	HandRaiseThreshold float64       `yaml:"hand_raise_threshold"`
	HandRaiseHold      time.Duration `yaml:"hand_raise_hold"`
	ShoulderThreshold  float64       `yaml:"shoulder_threshold"`
	ShoulderCooldown   time.Duration `yaml:"shoulder_cooldown"`
}

// Game holds the falling-block game tuning. Distances are world meters.
type Game struct {
	Depth                float64       `yaml:"depth"`
	CollisionRadius      float64       `yaml:"collision_radius"`
	FallSpeed            float64       `yaml:"fall_speed"`
	SpawnInterval        time.Duration `yaml:"spawn_interval"`
	SpawnSpread          float64       `yaml:"spawn_spread"`
	HazardProbability    float64       `yaml:"hazard_probability"`
	MaxHazardProbability float64       `yaml:"max_hazard_probability"`
	Milestone            int           `yaml:"milestone"`
	FallSpeedIncrement   float64       `yaml:"fall_speed_increment"`
	SpawnCoarseStep      time.Duration `yaml:"spawn_coarse_step"`
	SpawnCoarseFloor     time.Duration `yaml:"spawn_coarse_floor"`
	SpawnFineStep        time.Duration `yaml:"spawn_fine_step"`
	MinSpawnInterval     time.Duration `yaml:"min_spawn_interval"`
	HazardIncrement      float64       `yaml:"hazard_increment"`
	PopDuration          time.Duration `yaml:"pop_duration"`
	PopPeakScale         float64       `yaml:"pop_peak_scale"`
	ReturnDelay          time.Duration `yaml:"return_delay"`
	Seed                 uint64        `yaml:"seed"`
	ViewWidth            float64       `yaml:"view_width"`
	ViewHeight           float64       `yaml:"view_height"`
	FaceDistance         float64       `yaml:"face_distance"`
}

// Camera holds capture settings.
type Camera struct {
	DeviceID        int           `yaml:"device_id"`
	Width           int           `yaml:"width"`
	Height          int           `yaml:"height"`
	Mirror          bool          `yaml:"mirror"`
	IdleFPS         int           `yaml:"idle_fps"`
	ActiveFPS       int           `yaml:"active_fps"`
	MotionThreshold float64       `yaml:"motion_threshold"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
}

// Detector holds landmark inference settings.
type Detector struct {
	MinConfidence         float64 `yaml:"min_confidence"`
	MinTrackingConfidence float64 `yaml:"min_tracking_confidence"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr      string  `yaml:"addr"`
	StaticDir string  `yaml:"static_dir"`
	EventRate float64 `yaml:"event_rate"`
}

// Store holds database settings.
type Store struct {
	Path string `yaml:"path"`
}

// Voice holds the text-to-speech settings. An empty TTSCommand logs announcements
// instead of speaking them.
type Voice struct {
	TTSCommand string        `yaml:"tts_command"`
	TTSArgs    []string      `yaml:"tts_args"`
	TTSTimeout time.Duration `yaml:"tts_timeout"`
	Queue      int           `yaml:"queue"`
}

// Defaults returns the embedded default configuration.
func Defaults() Config {
	var cfg Config
	if err := yaml.Unmarshal(Default, &cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load reads the given configuration files in order on top of the defaults, then
// validates the result. With no paths the defaults are returned.
func Load(paths ...string) (*Config, error) {
	cfg := Defaults()

	for _, path := range paths {
		if err := overlay(&cfg, path); err != nil {
			return nil, fmt.Errorf("could not process config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func overlay(cfg *Config, path string) error {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".json":
	default:
		return fmt.Errorf("not in a valid format")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

// Validate clamps out-of-range values to their floors and rejects values that have
// no sensible clamp.
func (c *Config) Validate() error {
	g := &c.Game

	if g.Depth <= 0 {
		return fmt.Errorf("%w: game.depth must be positive", ErrInvalid)
	}
	if g.CollisionRadius <= 0 {
		return fmt.Errorf("%w: game.collision_radius must be positive", ErrInvalid)
	}
	if g.FallSpeed <= 0 {
		return fmt.Errorf("%w: game.fall_speed must be positive", ErrInvalid)
	}

	g.FallSpeedIncrement = floor(g.FallSpeedIncrement, 0)
	g.HazardIncrement = floor(g.HazardIncrement, 0)
	g.MaxHazardProbability = clamp(g.MaxHazardProbability, 0, 1)
	g.HazardProbability = clamp(g.HazardProbability, 0, g.MaxHazardProbability)
	g.SpawnSpread = floor(g.SpawnSpread, 0)

	if g.Milestone < 1 {
		g.Milestone = 1
	}
	if g.MinSpawnInterval <= 0 {
		g.MinSpawnInterval = 100 * time.Millisecond
	}
	if g.SpawnCoarseFloor < g.MinSpawnInterval {
		g.SpawnCoarseFloor = g.MinSpawnInterval
	}
	if g.SpawnInterval < g.MinSpawnInterval {
		g.SpawnInterval = g.MinSpawnInterval
	}
	if g.SpawnCoarseStep < 0 {
		g.SpawnCoarseStep = 0
	}
	if g.SpawnFineStep < 0 {
		g.SpawnFineStep = 0
	}
	if g.PopDuration <= 0 {
		g.PopDuration = 200 * time.Millisecond
	}
	if g.PopPeakScale < 1 {
		g.PopPeakScale = 1
	}
	if g.ReturnDelay < 0 {
		g.ReturnDelay = 0
	}
	if g.ViewWidth <= 0 || g.ViewHeight <= 0 {
		return fmt.Errorf("%w: game.view_width and game.view_height must be positive", ErrInvalid)
	}
	if g.FaceDistance <= 0 {
		g.FaceDistance = 0.5
	}

	gs := &c.Gesture
	gs.TiltThreshold = floor(gs.TiltThreshold, 0)
	gs.EyebrowThreshold = floor(gs.EyebrowThreshold, 0)
	gs.HandRaiseThreshold = floor(gs.HandRaiseThreshold, 0)
	gs.ShoulderThreshold = floor(gs.ShoulderThreshold, 0)

	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		c.Camera.Width, c.Camera.Height = 640, 480
	}
	c.Detector.MinConfidence = clamp(c.Detector.MinConfidence, 0, 1)
	c.Detector.MinTrackingConfidence = clamp(c.Detector.MinTrackingConfidence, 0, 1)

	if c.Camera.IdleFPS <= 0 {
		c.Camera.IdleFPS = 5
	}
	if c.Camera.ActiveFPS < c.Camera.IdleFPS {
		c.Camera.ActiveFPS = c.Camera.IdleFPS
	}
	if c.Server.EventRate <= 0 {
		c.Server.EventRate = 30
	}
	if c.Voice.TTSTimeout <= 0 {
		c.Voice.TTSTimeout = 10 * time.Second
	}
	if c.Voice.Queue < 1 {
		c.Voice.Queue = 4
	}

	return nil
}

func floor(v, min float64) float64 {
	if v < min {
		return min
	}
	return v
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
