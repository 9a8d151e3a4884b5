package tray

import (
	"testing"

	"github.com/ayusman/headshaker/internal/menu"
)

func TestNew(t *testing.T) {
	tr := New()

	if tr.Current() != menu.Play {
		t.Errorf("Current() = %s, want %s", tr.Current(), menu.Play)
	}
	if tr.Muted() {
		t.Error("music should start unmuted")
	}
	if tr.Status() != "Idle" {
		t.Errorf("Status() = %q, want Idle", tr.Status())
	}
}

// Setters work before the tray is running; the menu items do not exist yet.
func TestTray_SettersBeforeRun(t *testing.T) {
	tr := New()

	tr.SetCurrent(menu.Info)
	tr.SetHighScore(42)
	tr.SetMuted(true)
	tr.SetStatus("Score: 3")
	tr.SetHint(menu.Hints[1])

	if tr.Current() != menu.Info {
		t.Errorf("Current() = %s, want %s", tr.Current(), menu.Info)
	}
	if tr.HighScore() != 42 {
		t.Errorf("HighScore() = %d, want 42", tr.HighScore())
	}
	if !tr.Muted() {
		t.Error("Muted() should be true")
	}
	if tr.Status() != "Score: 3" {
		t.Errorf("Status() = %q", tr.Status())
	}
}

func TestTray_HandleChoose(t *testing.T) {
	tr := New()

	var chosen []menu.Option
	tr.OnChoose(func(opt menu.Option) {
		chosen = append(chosen, opt)
	})

	tr.handleChoose(menu.Settings)
	tr.handleChoose(menu.Exit)

	if len(chosen) != 2 || chosen[0] != menu.Settings || chosen[1] != menu.Exit {
		t.Errorf("chosen = %v, want [settings exit]", chosen)
	}
}

func TestTray_HandleMute(t *testing.T) {
	tr := New()

	var calls []bool
	tr.OnMute(func(muted bool) {
		calls = append(calls, muted)
	})

	tr.handleMute()
	tr.handleMute()

	if len(calls) != 2 || !calls[0] || calls[1] {
		t.Errorf("mute callbacks = %v, want [true false]", calls)
	}
	if tr.Muted() {
		t.Error("two toggles should leave the music on")
	}

	// SetMuted reflects external changes without echoing them back.
	tr.SetMuted(true)
	if len(calls) != 2 {
		t.Error("SetMuted must not call OnMute")
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{bestTitle(0), "Best: 0"},
		{bestTitle(17), "Best: 17"},
		{muteTitle(false), "● Music on"},
		{muteTitle(true), "○ Music off"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
