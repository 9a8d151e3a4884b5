// Package tray provides the system tray surface of the headshaker menu.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/headshaker/internal/menu"
)

// Tray mirrors the main menu in the system tray. Clicking an option chooses it
// exactly like a gesture or voice selection would.
type Tray struct {
	onChoose func(opt menu.Option)
	onMute   func(muted bool)
	onQuit   func()

	current   menu.Option
	highScore int
	muted     bool
	status    string
	mu        sync.RWMutex

	// Menu items stored for later updates
	menuOptions map[menu.Option]*systray.MenuItem
	menuMute    *systray.MenuItem
	menuBest    *systray.MenuItem
	menuStatus  *systray.MenuItem
}

// New creates a new Tray with the first menu option highlighted.
func New() *Tray {
	return &Tray{
		current: menu.Options[0],
		status:  "Idle",
	}
}

// OnChoose sets the callback function called when a menu option is clicked.
func (t *Tray) OnChoose(fn func(opt menu.Option)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChoose = fn
}

// OnMute sets the callback function called when the music toggle is clicked.
func (t *Tray) OnMute(fn func(muted bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMute = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit stops the tray event loop.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Headshaker")
	systray.SetTooltip(menu.Hints[0])

	t.mu.Lock()
	t.menuOptions = make(map[menu.Option]*systray.MenuItem, len(menu.Options))
	for _, opt := range menu.Options {
		item := systray.AddMenuItemCheckbox(opt.Label(), "Choose "+opt.Label(), opt == t.current)
		t.menuOptions[opt] = item
	}
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem(t.status, "Game status")
	t.menuStatus.Disable()
	t.menuBest = systray.AddMenuItem(bestTitle(t.highScore), "Best score")
	t.menuBest.Disable()
	systray.AddSeparator()

	t.menuMute = systray.AddMenuItem(muteTitle(t.muted), "Toggle background music")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Headshaker")
	options := t.menuOptions
	mute := t.menuMute
	t.mu.Unlock()

	for opt, item := range options {
		go func(opt menu.Option, item *systray.MenuItem) {
			for range item.ClickedCh {
				t.handleChoose(opt)
			}
		}(opt, item)
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-mute.ClickedCh:
				t.handleMute()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func (t *Tray) handleChoose(opt menu.Option) {
	t.mu.RLock()
	callback := t.onChoose
	t.mu.RUnlock()

	if callback != nil {
		callback(opt)
	}
}

// handleMute flips the music flag.
func (t *Tray) handleMute() {
	t.mu.Lock()
	t.muted = !t.muted
	muted := t.muted
	if t.menuMute != nil {
		t.menuMute.SetTitle(muteTitle(muted))
	}
	callback := t.onMute
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(muted)
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetCurrent moves the check mark to the highlighted option.
func (t *Tray) SetCurrent(opt menu.Option) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = opt
	for o, item := range t.menuOptions {
		if o == opt {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

// SetHighScore updates the best score line.
func (t *Tray) SetHighScore(score int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.highScore = score
	if t.menuBest != nil {
		t.menuBest.SetTitle(bestTitle(score))
	}
}

// SetMuted updates the music toggle without calling OnMute.
func (t *Tray) SetMuted(muted bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.muted = muted
	if t.menuMute != nil {
		t.menuMute.SetTitle(muteTitle(muted))
	}
}

// SetStatus updates the status line, e.g. the running score.
func (t *Tray) SetStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.status = status
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(status)
	}
}

// SetHint shows a rotating menu hint as the tray tooltip.
func (t *Tray) SetHint(hint string) {
	t.mu.RLock()
	ready := t.menuOptions != nil
	t.mu.RUnlock()

	if ready {
		systray.SetTooltip(hint)
	}
}

// Current returns the highlighted option.
func (t *Tray) Current() menu.Option {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// HighScore returns the displayed best score.
func (t *Tray) HighScore() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.highScore
}

// Muted returns the displayed music state.
func (t *Tray) Muted() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.muted
}

// Status returns the displayed status line.
func (t *Tray) Status() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

func bestTitle(score int) string {
	return fmt.Sprintf("Best: %d", score)
}

func muteTitle(muted bool) string {
	if muted {
		return "○ Music off"
	}
	return "● Music on"
}
