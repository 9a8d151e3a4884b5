package voice

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Announcer speaks short messages to the user.
type Announcer interface {
	Announce(message string)
}

// LogAnnouncer writes announcements to the log. It stands in for a text-to-speech
// engine on headless hosts.
type LogAnnouncer struct{}

// Announce logs the message.
func (LogAnnouncer) Announce(message string) {
	log.Info().Str("message", message).Msg("announce")
}

// Announcement is a message recorded by a Recorder.
type Announcement struct {
	Message string
	Time    time.Time
}

// Recorder keeps every announcement and optionally forwards it.
type Recorder struct {
	// Next receives every announcement after it is recorded. May be nil.
	Next Announcer

	mu   sync.Mutex
	list []Announcement
}

// Announce records the message.
func (r *Recorder) Announce(message string) {
	r.mu.Lock()
	r.list = append(r.list, Announcement{Message: message, Time: time.Now()})
	r.mu.Unlock()

	if r.Next != nil {
		r.Next.Announce(message)
	}
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, len(r.list))
	for i, a := range r.list {
		out[i] = a.Message
	}
	return out
}

// Last returns the most recent announcement, if any.
func (r *Recorder) Last() (Announcement, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.list) == 0 {
		return Announcement{}, false
	}
	return r.list[len(r.list)-1], true
}

// Async speaks on a background goroutine so slow announcers never stall the
// frame loop. Messages beyond the buffer are dropped.
type Async struct {
	next  Announcer
	queue chan string
	done  chan struct{}
	once  sync.Once
}

// NewAsync starts the worker for next.
func NewAsync(next Announcer, buffer int) *Async {
	if buffer < 1 {
		buffer = 1
	}
	a := &Async{
		next:  next,
		queue: make(chan string, buffer),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Async) run() {
	defer close(a.done)
	for msg := range a.queue {
		a.next.Announce(msg)
	}
}

// Announce queues message.
func (a *Async) Announce(message string) {
	select {
	case a.queue <- message:
	default:
		log.Warn().Str("message", message).Msg("announcement dropped")
	}
}

// Close waits for the queued messages to be spoken.
func (a *Async) Close() {
	a.once.Do(func() {
		close(a.queue)
	})
	<-a.done
}
