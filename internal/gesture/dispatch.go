package gesture

// Intents receives the menu intents produced by the recognizer.
type Intents interface {
	MenuMove(direction int)
	MenuSelect()
	VoiceTrigger()
}

// Dispatch forwards events to the intent handler in order.
func Dispatch(events []Event, to Intents) {
	if to == nil {
		return
	}
	for _, e := range events {
		switch e.Intent {
		case IntentMenuMove:
			to.MenuMove(e.Direction)
		case IntentMenuSelect:
			to.MenuSelect()
		case IntentVoiceTrigger:
			to.VoiceTrigger()
		}
	}
}
