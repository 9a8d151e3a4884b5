package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"

	"github.com/ayusman/headshaker/internal/game"
)

const (
	sendBuffer   = 64
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Format is the wire encoding a client asked for.
type Format int

const (
	FormatJSON Format = iota
	FormatCBOR
)

// clientMessage is what renderers send back over the socket.
type clientMessage struct {
	Type string `json:"type"`
}

type client struct {
	conn   *websocket.Conn
	format Format
	send   chan []byte
	ready  bool
}

// CueHub streams game cues to connected renderers over WebSocket. A renderer
// announces it finished loading its scene by sending {"type":"ready"}; the hub
// is Ready while at least one connected renderer has done so.
//
// Per-frame cues go through a rate limiter and are dropped when over budget.
// Every other cue is always delivered.
type CueHub struct {
	mu      deadlock.RWMutex
	clients map[*client]struct{}
	limiter *rate.Limiter
}

// NewCueHub creates a hub that forwards at most perSecond per-frame cues.
func NewCueHub(perSecond float64) *CueHub {
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return &CueHub{
		clients: make(map[*client]struct{}),
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// ServeHTTP handles WebSocket upgrade requests. ?format=cbor selects binary
// CBOR messages instead of JSON text.
func (h *CueHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if r.URL.Query().Get("format") == "cbor" {
		c.format = FormatCBOR
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	log.Info().Str("remote", r.RemoteAddr).Msg("renderer connected")

	done := make(chan struct{})
	go h.writeLoop(c, done)

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		close(c.send)
		h.mu.Unlock()
		<-done
		log.Info().Str("remote", r.RemoteAddr).Msg("renderer disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug().Err(err).Msg("ignoring malformed renderer message")
			continue
		}
		if msg.Type == "ready" {
			h.mu.Lock()
			c.ready = true
			h.mu.Unlock()
		}
	}
}

func (h *CueHub) writeLoop(c *client, done chan<- struct{}) {
	defer close(done)
	for msg := range c.send {
		kind := websocket.TextMessage
		if c.format == FormatCBOR {
			kind = websocket.BinaryMessage
		}
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(kind, msg); err != nil {
			log.Debug().Err(err).Msg("websocket write failed")
			c.conn.Close()
			// Drain so Emit never blocks on this client.
			for range c.send {
			}
			return
		}
	}
}

// Ready reports whether a connected renderer has finished loading.
func (h *CueHub) Ready() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.ready {
			return true
		}
	}
	return false
}

// Clients returns the number of connected renderers.
func (h *CueHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Emit implements game.CueSink.
func (h *CueHub) Emit(cue game.Cue) {
	if cue.Frequent() && !h.limiter.Allow() {
		return
	}
	h.Send(cue)
}

// Send broadcasts v to every client without throttling. Slow clients whose
// buffer is full miss the message.
func (h *CueHub) Send(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	var encoded [2][]byte
	for c := range h.clients {
		if encoded[c.format] == nil {
			msg, err := encode(c.format, v)
			if err != nil {
				log.Error().Err(err).Msg("failed to encode cue")
				return
			}
			encoded[c.format] = msg
		}

		select {
		case c.send <- encoded[c.format]:
		default:
			log.Debug().Msg("renderer too slow, message dropped")
		}
	}
}

func encode(format Format, v any) ([]byte, error) {
	if format == FormatCBOR {
		return cbor.Marshal(v)
	}
	return json.Marshal(v)
}
