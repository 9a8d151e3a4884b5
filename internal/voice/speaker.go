package voice

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultSpeakTimeout bounds a single text-to-speech run.
const DefaultSpeakTimeout = 10 * time.Second

// Speaker announces messages through an external text-to-speech program such as
// `say` or `espeak`. The message is passed as the last argument. Failures are
// logged and fall back to Fallback.
type Speaker struct {
	Command  string
	Args     []string
	Timeout  time.Duration
	Fallback Announcer
}

// NewSpeaker creates a Speaker running command with args, falling back to the log.
func NewSpeaker(command string, args ...string) *Speaker {
	return &Speaker{
		Command:  command,
		Args:     args,
		Timeout:  DefaultSpeakTimeout,
		Fallback: LogAnnouncer{},
	}
}

// Announce speaks message and blocks until the program exits.
func (s *Speaker) Announce(message string) {
	if err := s.Speak(message); err != nil {
		log.Warn().Err(err).Str("command", s.Command).Msg("text-to-speech failed")
		if s.Fallback != nil {
			s.Fallback.Announce(message)
		}
	}
}

// Speak runs the program once for message.
func (s *Speaker) Speak(message string) error {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultSpeakTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := append(append([]string{}, s.Args...), message)
	cmd := exec.CommandContext(ctx, s.Command, args...)

	cmd.WaitDelay = time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("speech timeout after %v", timeout)
	}
	if err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("speech failed: %w, stderr: %s", err, stderr.String())
		}
		return fmt.Errorf("speech failed: %w", err)
	}
	return nil
}
