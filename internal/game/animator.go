package game

import (
	"time"

	"github.com/ayusman/headshaker/internal/config"
)

// DecayingObject is a caught object playing its pop animation.
type DecayingObject struct {
	Object    Object
	StartedAt time.Time
}

// Visual is the render state of a decaying object at one instant.
type Visual struct {
	ID    ObjectID
	Scale float64
	Alpha float64
}

// Animator scales caught objects up while fading them out, then drops them.
type Animator struct {
	duration time.Duration
	peak     float64

	objects map[ObjectID]DecayingObject
	order   []ObjectID
}

// NewAnimator creates an animator using the pop duration and peak scale from cfg.
func NewAnimator(cfg config.Game) *Animator {
	return &Animator{
		duration: cfg.PopDuration,
		peak:     cfg.PopPeakScale,
		objects:  make(map[ObjectID]DecayingObject),
	}
}

// Add starts the pop animation of obj at now.
func (a *Animator) Add(obj Object, now time.Time) {
	if _, ok := a.objects[obj.ID]; ok {
		return
	}
	a.objects[obj.ID] = DecayingObject{Object: obj, StartedAt: now}
	a.order = append(a.order, obj.ID)
}

// Len returns the number of objects still animating.
func (a *Animator) Len() int {
	return len(a.order)
}

// Tick drops every object whose animation has finished and returns their ids.
func (a *Animator) Tick(now time.Time) []ObjectID {
	var expired []ObjectID
	kept := a.order[:0]
	for _, id := range a.order {
		if now.Sub(a.objects[id].StartedAt) >= a.duration {
			expired = append(expired, id)
			delete(a.objects, id)
			continue
		}
		kept = append(kept, id)
	}
	a.order = kept
	return expired
}

// Visuals returns the scale and alpha of every animating object at now.
func (a *Animator) Visuals(now time.Time) []Visual {
	out := make([]Visual, 0, len(a.order))
	for _, id := range a.order {
		p := a.progress(a.objects[id], now)
		out = append(out, Visual{
			ID:    id,
			Scale: 1 + (a.peak-1)*p,
			Alpha: 1 - p,
		})
	}
	return out
}

func (a *Animator) progress(d DecayingObject, now time.Time) float64 {
	if a.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(d.StartedAt)) / float64(a.duration)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
