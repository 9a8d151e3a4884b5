// Package menu is the gesture and voice driven main menu.
package menu

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/ayusman/headshaker/internal/voice"
)

// Option is a main menu entry.
type Option string

const (
	Play     Option = "play"
	Settings Option = "settings"
	Info     Option = "info"
	Exit     Option = "exit"
)

// Options is the main menu in display order.
var Options = []Option{Play, Settings, Info, Exit}

var labels = map[Option]string{
	Play:     "Play",
	Settings: "Settings",
	Info:     "Information",
	Exit:     "Exit",
}

// aliases are extra spoken names for each option.
var aliases = map[Option][]string{
	Play:     {"play", "start", "jugar"},
	Settings: {"settings", "configuracion"},
	Info:     {"info", "information", "informacion"},
	Exit:     {"exit", "quit", "salir"},
}

// Label returns the display name of the option.
func (o Option) Label() string {
	if l, ok := labels[o]; ok {
		return l
	}
	return string(o)
}

// HintInterval is how long each hint stays on screen.
const HintInterval = 5 * time.Second

// Hints rotate under the menu.
var Hints = []string{
	"Tilt your head to navigate",
	"Raise your eyebrows to speak",
	"Say the name of an option",
}

// HintAt returns the hint shown after the menu has been open for elapsed.
func HintAt(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	return Hints[int(elapsed/HintInterval)%len(Hints)]
}

// Listener reacts to menu changes. Callbacks run on the goroutine that changed the
// menu, after the menu lock is released.
type Listener struct {
	OnChange func(Option)
	OnSelect func(Option)
	OnListen func()
}

// Menu tracks the highlighted option. It implements gesture.Intents and is safe for
// concurrent use by the frame loop, the tray and the HTTP API.
type Menu struct {
	mu       deadlock.Mutex
	index    int
	listener Listener

	announcer voice.Announcer
}

// New creates a menu with the first option highlighted.
func New(announcer voice.Announcer, listener Listener) *Menu {
	if announcer == nil {
		announcer = voice.LogAnnouncer{}
	}
	return &Menu{announcer: announcer, listener: listener}
}

// Current returns the highlighted option.
func (m *Menu) Current() Option {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Options[m.index]
}

// Move highlights the option direction steps away, wrapping around both ends.
func (m *Menu) Move(direction int) Option {
	m.mu.Lock()
	n := len(Options)
	m.index = ((m.index+direction)%n + n) % n
	opt := Options[m.index]
	m.mu.Unlock()

	log.Debug().Str("option", string(opt)).Int("direction", direction).Msg("menu moved")
	if m.listener.OnChange != nil {
		m.listener.OnChange(opt)
	}
	return opt
}

// Select chooses the highlighted option.
func (m *Menu) Select() Option {
	return m.choose(m.Current())
}

// Choose highlights and selects opt directly.
func (m *Menu) Choose(opt Option) error {
	idx := indexOf(opt)
	if idx < 0 {
		return fmt.Errorf("unknown menu option %q", opt)
	}

	m.mu.Lock()
	changed := m.index != idx
	m.index = idx
	m.mu.Unlock()

	if changed && m.listener.OnChange != nil {
		m.listener.OnChange(opt)
	}
	m.choose(opt)
	return nil
}

func (m *Menu) choose(opt Option) Option {
	m.announcer.Announce("Selected " + opt.Label())
	log.Info().Str("option", string(opt)).Msg("menu option selected")
	if m.listener.OnSelect != nil {
		m.listener.OnSelect(opt)
	}
	return opt
}

// MenuMove implements gesture.Intents.
func (m *Menu) MenuMove(direction int) { m.Move(direction) }

// MenuSelect implements gesture.Intents.
func (m *Menu) MenuSelect() { m.Select() }

// VoiceTrigger implements gesture.Intents.
func (m *Menu) VoiceTrigger() {
	log.Debug().Msg("voice input requested")
	if m.listener.OnListen != nil {
		m.listener.OnListen()
	}
}

// Hear applies a recognized phrase to the menu.
func (m *Menu) Hear(text string) voice.Command {
	names := make([]string, 0, len(aliases)*3)
	owner := make(map[string]Option)
	for _, opt := range Options {
		for _, a := range aliases[opt] {
			names = append(names, a)
			owner[a] = opt
		}
	}

	cmd := voice.Interpret(text, names...)
	switch cmd.Kind {
	case voice.CommandMove:
		m.Move(cmd.Direction)
	case voice.CommandSelect:
		m.Select()
	case voice.CommandChoose:
		// Every name comes from the alias table.
		_ = m.Choose(owner[cmd.Name])
	default:
		m.announcer.Announce(voice.NotUnderstood)
	}
	return cmd
}

func indexOf(opt Option) int {
	for i, o := range Options {
		if o == opt {
			return i
		}
	}
	return -1
}
