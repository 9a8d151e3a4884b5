package game

import "github.com/ayusman/headshaker/internal/landmark"

// CueType names a rendering or audio instruction for the presentation layer.
type CueType string

// Rendering cues
const (
	CueAvatarShow   CueType = "avatar_show"
	CueAvatarHide   CueType = "avatar_hide"
	CueAvatarMove   CueType = "avatar_move"
	CueObjectSpawn  CueType = "object_spawn"
	CueObjectMove   CueType = "object_move"
	CueObjectDecay  CueType = "object_decay"
	CueObjectRemove CueType = "object_remove"
	CuePause        CueType = "pause"
	CueResume       CueType = "resume"
)

// Sound cues
const (
	CueSoundPop       CueType = "sound_pop"
	CueSoundGameOver  CueType = "sound_game_over"
	CueSoundNewRecord CueType = "sound_new_record"
)

// Cue is one instruction for the renderer. Fields unused by a cue type are zero.
// Score and Alpha are always encoded since zero is a meaningful value for them.
type Cue struct {
	Type     CueType           `json:"type" cbor:"type"`
	Object   ObjectID          `json:"object,omitempty" cbor:"object,omitempty"`
	Kind     *Kind             `json:"kind,omitempty" cbor:"kind,omitempty"`
	Position *landmark.Point3D `json:"position,omitempty" cbor:"position,omitempty"`
	Scale    float64           `json:"scale,omitempty" cbor:"scale,omitempty"`
	Alpha    float64           `json:"alpha" cbor:"alpha"`
	Score    int               `json:"score" cbor:"score"`
}

// Frequent reports whether the cue is a per-frame update that may be dropped when
// the consumer is slow.
func (c Cue) Frequent() bool {
	switch c.Type {
	case CueAvatarMove, CueObjectMove, CueObjectDecay:
		return true
	}
	return false
}

// CueSink receives cues from the session.
type CueSink interface {
	Emit(Cue)
}

// CueFunc adapts a function to a CueSink.
type CueFunc func(Cue)

// Emit calls f(c).
func (f CueFunc) Emit(c Cue) { f(c) }
