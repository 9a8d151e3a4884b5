package capture

import (
	"errors"
	"testing"

	"github.com/ayusman/headshaker/internal/config"
)

func testCameraConfig() config.Camera {
	return config.Defaults().Camera
}

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*config.Camera)
		wantFPS    int
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "defaults",
			mutate:     func(c *config.Camera) {},
			wantFPS:    5,
			wantWidth:  640,
			wantHeight: 480,
		},
		{
			name: "custom resolution",
			mutate: func(c *config.Camera) {
				c.Width, c.Height = 1280, 720
				c.IdleFPS = 2
			},
			wantFPS:    2,
			wantWidth:  1280,
			wantHeight: 720,
		},
		{
			name: "invalid values fall back",
			mutate: func(c *config.Camera) {
				c.Width, c.Height = 0, -1
				c.IdleFPS = 0
			},
			wantFPS:    DefaultFPS,
			wantWidth:  DefaultWidth,
			wantHeight: DefaultHeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testCameraConfig()
			tt.mutate(&cfg)
			cam := NewCamera(cfg)

			if got := cam.FPS(); got != tt.wantFPS {
				t.Errorf("FPS() = %d, want %d", got, tt.wantFPS)
			}
			w, h := cam.Size()
			if w != tt.wantWidth || h != tt.wantHeight {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.wantWidth, tt.wantHeight)
			}
			if cam.IsOpen() {
				t.Error("camera should not be running initially")
			}
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(testCameraConfig())

	steps := []struct {
		fps     int
		wantFPS int
	}{
		{fps: 10, wantFPS: 10},
		{fps: 30, wantFPS: 30},
		{fps: 0, wantFPS: 30},
		{fps: -5, wantFPS: 30},
	}

	for _, s := range steps {
		cam.SetFPS(s.fps)
		if got := cam.FPS(); got != s.wantFPS {
			t.Errorf("after SetFPS(%d): FPS() = %d, want %d", s.fps, got, s.wantFPS)
		}
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	cam := NewCamera(testCameraConfig())

	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() on not opened camera should return nil, got: %v", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(testCameraConfig())

	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}

	if !cam.IsOpen() {
		t.Error("IsOpen() should return true after Open()")
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() failed: %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned empty mat")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() should return false after Close()")
	}
}
