// Package trace records landmark streams to CBOR files and plays them back as a
// landmark.Source.
package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/ayusman/headshaker/internal/landmark"
)

// Version is the trace format version written by Recorder.
const Version = 1

var (
	// ErrEndOfTrace is returned by Player.Next once every record was played.
	ErrEndOfTrace = errors.New("end of trace")
	// ErrBadHeader is returned when a trace does not start with a valid header.
	ErrBadHeader = errors.New("invalid trace header")
)

// Header opens every trace.
type Header struct {
	Version int     `cbor:"v"`
	Width   float64 `cbor:"w"`
	Height  float64 `cbor:"h"`
	Created int64   `cbor:"c"`
}

// record is one analysis cycle. Detected is false when no subject was found.
type record struct {
	Time     int64                               `cbor:"t"`
	Detected bool                                `cbor:"d"`
	Points   map[landmark.Name]landmark.Point3D `cbor:"p,omitempty"`
}

// Recorder appends frames to a trace.
type Recorder struct {
	mu  deadlock.Mutex
	enc *cbor.Encoder
	w   io.Writer
	n   int
}

// NewRecorder writes the header to w and returns a recorder for the frames.
func NewRecorder(w io.Writer, width, height float64) (*Recorder, error) {
	enc := cbor.NewEncoder(w)
	h := Header{Version: Version, Width: width, Height: height, Created: time.Now().UnixNano()}
	if err := enc.Encode(h); err != nil {
		return nil, fmt.Errorf("failed to write trace header: %w", err)
	}
	return &Recorder{enc: enc, w: w}, nil
}

// Create creates a trace file at path.
func Create(path string, width, height float64) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace: %w", err)
	}
	rec, err := NewRecorder(f, width, height)
	if err != nil {
		f.Close()
		return nil, err
	}
	return rec, nil
}

// Write appends one analysis cycle. A nil frame records "no subject" at ts.
func (r *Recorder) Write(ts time.Time, frame *landmark.Frame) error {
	rec := record{Time: ts.UnixNano()}
	if frame != nil {
		rec.Time = frame.Timestamp.UnixNano()
		rec.Detected = true
		rec.Points = frame.Points()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write trace record: %w", err)
	}
	r.n++
	return nil
}

// Len returns the number of records written.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// Close closes the underlying writer if it is an io.Closer.
func (r *Recorder) Close() error {
	if c, ok := r.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Player replays a trace. It implements landmark.Source.
type Player struct {
	dec    *cbor.Decoder
	r      io.Reader
	header Header
}

// NewPlayer reads the header from r.
func NewPlayer(r io.Reader) (*Player, error) {
	dec := cbor.NewDecoder(r)
	var h Header
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadHeader, h.Version)
	}
	return &Player{dec: dec, r: r, header: h}, nil
}

// Open opens the trace file at path.
func Open(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace: %w", err)
	}
	p, err := NewPlayer(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return p, nil
}

// Header returns the trace header.
func (p *Player) Header() Header {
	return p.header
}

// Next returns the next recorded cycle. Its Frame is nil when that cycle had no
// subject.
func (p *Player) Next(ctx context.Context) (landmark.Sample, error) {
	if err := ctx.Err(); err != nil {
		return landmark.Sample{}, err
	}

	var rec record
	if err := p.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return landmark.Sample{}, ErrEndOfTrace
		}
		return landmark.Sample{}, fmt.Errorf("failed to read trace record: %w", err)
	}

	sample := landmark.Sample{Captured: time.Unix(0, rec.Time)}
	if rec.Detected {
		sample.Frame = landmark.NewFrame(sample.Captured, rec.Points)
	}
	return sample, nil
}

// Close closes the underlying reader if it is an io.Closer.
func (p *Player) Close() error {
	if c, ok := p.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Tee wraps src so every sample it delivers is also written to rec. Closing the
// returned source closes src only; rec stays with its owner.
func Tee(src landmark.Source, rec *Recorder) landmark.Source {
	return &tee{src: src, rec: rec}
}

type tee struct {
	src landmark.Source
	rec *Recorder
}

func (t *tee) Next(ctx context.Context) (landmark.Sample, error) {
	sample, err := t.src.Next(ctx)
	if err != nil {
		return sample, err
	}
	if err := t.rec.Write(sample.Captured, sample.Frame); err != nil {
		log.Error().Err(err).Msg("failed to record landmark sample")
	}
	return sample, nil
}

func (t *tee) Close() error {
	return t.src.Close()
}
