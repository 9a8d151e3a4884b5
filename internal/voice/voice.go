// Package voice interprets spoken menu commands and speaks announcements.
package voice

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// NotUnderstood is announced when a phrase maps to no command.
const NotUnderstood = "Command not understood"

// CommandKind is the kind of an interpreted voice command.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandMove
	CommandSelect
	CommandChoose
)

func (k CommandKind) String() string {
	switch k {
	case CommandMove:
		return "move"
	case CommandSelect:
		return "select"
	case CommandChoose:
		return "choose"
	default:
		return "unknown"
	}
}

// Command is an interpreted phrase. Direction is set for CommandMove and Name for
// CommandChoose.
type Command struct {
	Kind      CommandKind
	Direction int
	Name      string
	Text      string
}

var (
	upWords     = []string{"up", "raise", "subir", "arriba", "sube"}
	downWords   = []string{"down", "lower", "baja", "bajar", "abajo"}
	selectWords = []string{"select", "accept", "ok", "seleccionar", "selecciona", "aceptar", "acepta"}
)

// Interpret maps a recognized phrase to a menu command. names are the menu entries
// that can be chosen directly by saying them; the first matching name wins. Move
// and select words take precedence over names.
func Interpret(text string, names ...string) Command {
	cmd := Command{Text: text}
	words := tokenize(text)

	switch {
	case containsAny(words, upWords):
		cmd.Kind = CommandMove
		cmd.Direction = -1
	case containsAny(words, downWords):
		cmd.Kind = CommandMove
		cmd.Direction = 1
	case containsAny(words, selectWords):
		cmd.Kind = CommandSelect
	default:
		for _, name := range names {
			if containsPhrase(words, tokenize(name)) {
				cmd.Kind = CommandChoose
				cmd.Name = name
				break
			}
		}
	}

	log.Debug().Str("text", text).Str("command", cmd.Kind.String()).Msg("voice command interpreted")
	return cmd
}

// tokenize lowercases text, folds common Spanish accents and splits on anything
// that is not a letter or digit.
func tokenize(text string) []string {
	folded := strings.Map(func(r rune) rune {
		switch unicode.ToLower(r) {
		case 'á':
			return 'a'
		case 'é':
			return 'e'
		case 'í':
			return 'i'
		case 'ó':
			return 'o'
		case 'ú', 'ü':
			return 'u'
		}
		return unicode.ToLower(r)
	}, text)

	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func containsAny(words, set []string) bool {
	for _, w := range words {
		for _, s := range set {
			if w == s {
				return true
			}
		}
	}
	return false
}

func containsPhrase(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	for i := 0; i+len(phrase) <= len(words); i++ {
		match := true
		for j, p := range phrase {
			if words[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
