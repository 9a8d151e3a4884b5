// Package gesture turns streams of body and face landmarks into debounced menu intents.
package gesture

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/headshaker/internal/config"
	"github.com/ayusman/headshaker/internal/landmark"
)

// Channel is one gesture condition tracked by the recognizer.
type Channel int

const (
	HeadTiltLeft Channel = iota
	HeadTiltRight
	EyebrowRaise
	ShoulderLeftRaise
	ShoulderRightRaise
	HandRaise
	numChannels
)

var channelNames = [numChannels]string{
	HeadTiltLeft:       "head_tilt_left",
	HeadTiltRight:      "head_tilt_right",
	EyebrowRaise:       "eyebrow_raise",
	ShoulderLeftRaise:  "shoulder_left_raise",
	ShoulderRightRaise: "shoulder_right_raise",
	HandRaise:          "hand_raise",
}

func (c Channel) String() string {
	if c < 0 || c >= numChannels {
		return "unknown"
	}
	return channelNames[c]
}

// Intent is the menu action an event asks for.
type Intent int

const (
	IntentMenuMove Intent = iota + 1
	IntentMenuSelect
	IntentVoiceTrigger
)

func (i Intent) String() string {
	switch i {
	case IntentMenuMove:
		return "menu_move"
	case IntentMenuSelect:
		return "menu_select"
	case IntentVoiceTrigger:
		return "voice_trigger"
	default:
		return "unknown"
	}
}

// Event is a recognized gesture. Direction is +1 or -1 for IntentMenuMove and 0 otherwise.
type Event struct {
	Intent    Intent
	Direction int
	Channel   Channel
	Time      time.Time
}

// channelState is the debounce state of a single channel.
type channelState struct {
	holding   bool
	holdStart time.Time

	fired     bool
	lastFired time.Time

	// Baseline for frame-to-frame delta channels.
	hasPrev bool
	prev    float64
}

// Recognizer is a stateful debouncer over landmark frames. It is not safe for
// concurrent use; it is driven from the frame loop.
type Recognizer struct {
	cfg    config.Gesture
	states [numChannels]channelState
}

// NewRecognizer creates a Recognizer with the given thresholds.
func NewRecognizer(cfg config.Gesture) *Recognizer {
	return &Recognizer{cfg: cfg}
}

// Evaluate advances every channel with the given frame and returns the events that
// fired. A nil frame means tracking was lost: all channels go idle and nothing fires.
func (r *Recognizer) Evaluate(frame *landmark.Frame, now time.Time) []Event {
	if frame == nil {
		r.Reset()
		return nil
	}

	var events []Event
	events = r.evalTilt(frame, now, events)
	events = r.evalEyebrow(frame, now, events)
	events = r.evalHandRaise(frame, now, events)
	events = r.evalShoulders(frame, now, events)

	for _, e := range events {
		log.Debug().
			Str("channel", e.Channel.String()).
			Str("intent", e.Intent.String()).
			Int("direction", e.Direction).
			Msg("gesture fired")
	}

	return events
}

// Reset clears every hold timer and delta baseline. Cooldowns are kept.
func (r *Recognizer) Reset() {
	for ch := Channel(0); ch < numChannels; ch++ {
		r.clear(ch)
	}
}

// Active reports whether the channel's hold timer is running.
func (r *Recognizer) Active(ch Channel) bool {
	if ch < 0 || ch >= numChannels {
		return false
	}
	return r.states[ch].holding
}

func (r *Recognizer) clear(channels ...Channel) {
	for _, ch := range channels {
		s := &r.states[ch]
		s.holding = false
		s.holdStart = time.Time{}
		s.hasPrev = false
		s.prev = 0
	}
}

// hold advances a sustained-pose channel. It fires once the condition has held for
// holdTime and then restarts the timer at now, so a sustained pose repeats at a
// steady cadence.
func (r *Recognizer) hold(ch Channel, active bool, holdTime time.Duration, now time.Time) bool {
	s := &r.states[ch]
	if !active {
		s.holding = false
		s.holdStart = time.Time{}
		return false
	}

	if !s.holding {
		s.holding = true
		s.holdStart = now
	}

	if now.Sub(s.holdStart) >= holdTime {
		s.holdStart = now
		s.fired = true
		s.lastFired = now
		return true
	}
	return false
}

func (r *Recognizer) evalTilt(frame *landmark.Frame, now time.Time, events []Event) []Event {
	left, okL := frame.Point(landmark.LeftEye)
	right, okR := frame.Point(landmark.RightEye)
	if !okL || !okR {
		r.clear(HeadTiltLeft, HeadTiltRight)
		return events
	}

	diff := right.Y - left.Y
	threshold := r.cfg.TiltThreshold

	switch {
	case diff > threshold:
		r.clear(HeadTiltRight)
		if r.hold(HeadTiltLeft, true, r.cfg.TiltHold, now) {
			events = append(events, Event{Intent: IntentMenuMove, Direction: 1, Channel: HeadTiltLeft, Time: now})
		}
	case diff < -threshold:
		r.clear(HeadTiltLeft)
		if r.hold(HeadTiltRight, true, r.cfg.TiltHold, now) {
			events = append(events, Event{Intent: IntentMenuSelect, Channel: HeadTiltRight, Time: now})
		}
	default:
		r.clear(HeadTiltLeft, HeadTiltRight)
	}

	return events
}

func (r *Recognizer) evalEyebrow(frame *landmark.Frame, now time.Time, events []Event) []Event {
	if !frame.Has(landmark.LeftEyebrow, landmark.LeftEyeLid, landmark.RightEyebrow, landmark.RightEyeLid) {
		r.clear(EyebrowRaise)
		return events
	}

	lb, _ := frame.Point(landmark.LeftEyebrow)
	ll, _ := frame.Point(landmark.LeftEyeLid)
	rb, _ := frame.Point(landmark.RightEyebrow)
	rl, _ := frame.Point(landmark.RightEyeLid)

	// Y grows downward, so a raised eyebrow sits further above the lid.
	avg := ((ll.Y - lb.Y) + (rl.Y - rb.Y)) / 2

	if r.hold(EyebrowRaise, avg > r.cfg.EyebrowThreshold, r.cfg.EyebrowHold, now) {
		events = append(events, Event{Intent: IntentVoiceTrigger, Channel: EyebrowRaise, Time: now})
	}
	return events
}

func (r *Recognizer) evalHandRaise(frame *landmark.Frame, now time.Time, events []Event) []Event {
	wrist, okW := frame.Point(landmark.RightWrist)
	shoulder, okS := frame.Point(landmark.RightShoulder)
	if !okW || !okS {
		r.clear(HandRaise)
		return events
	}

	raised := wrist.Y-shoulder.Y < -r.cfg.HandRaiseThreshold
	if r.hold(HandRaise, raised, r.cfg.HandRaiseHold, now) {
		events = append(events, Event{Intent: IntentVoiceTrigger, Channel: HandRaise, Time: now})
	}
	return events
}

func (r *Recognizer) evalShoulders(frame *landmark.Frame, now time.Time, events []Event) []Event {
	dl, okL := r.delta(ShoulderLeftRaise, frame, landmark.LeftShoulder)
	dr, okR := r.delta(ShoulderRightRaise, frame, landmark.RightShoulder)

	threshold := r.cfg.ShoulderThreshold
	crossL := okL && dl > threshold
	crossR := okR && dr > threshold

	// A shrug moves both shoulders; the larger movement wins.
	if crossL && crossR {
		if dl >= dr {
			crossR = false
		} else {
			crossL = false
		}
	}

	if crossL && r.cooled(ShoulderLeftRaise, now) {
		events = append(events, Event{Intent: IntentMenuMove, Direction: -1, Channel: ShoulderLeftRaise, Time: now})
	}
	if crossR && r.cooled(ShoulderRightRaise, now) {
		events = append(events, Event{Intent: IntentMenuMove, Direction: 1, Channel: ShoulderRightRaise, Time: now})
	}
	return events
}

// delta returns the upward movement of a landmark since the previous frame.
func (r *Recognizer) delta(ch Channel, frame *landmark.Frame, name landmark.Name) (float64, bool) {
	s := &r.states[ch]

	p, ok := frame.Point(name)
	if !ok {
		s.hasPrev = false
		return 0, false
	}

	prev, had := s.prev, s.hasPrev
	s.prev, s.hasPrev = p.Y, true
	if !had {
		return 0, false
	}
	return prev - p.Y, true
}

// cooled reports whether a delta channel may fire and records the firing if so.
func (r *Recognizer) cooled(ch Channel, now time.Time) bool {
	s := &r.states[ch]
	if s.fired && now.Sub(s.lastFired) < r.cfg.ShoulderCooldown {
		return false
	}
	s.fired = true
	s.lastFired = now
	return true
}
