package interaction

import (
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

// NoticeType classifies dispatcher notices.
type NoticeType string

const (
	GestureStarted  NoticeType = "gesture_started"
	GestureReleased NoticeType = "gesture_released"
	EffectStarted   NoticeType = "effect_started"
	EffectStopped   NoticeType = "effect_stopped"
	EffectFailed    NoticeType = "effect_failed"
	TargetLost      NoticeType = "target_lost"
)

// Stop reasons reported in EffectStopped notices.
const (
	ReasonReleased     = "released"
	ReasonReplaced     = "replaced"
	ReasonExpired      = "expired"
	ReasonUnregistered = "unregistered"
	ReasonStopped      = "stopped"
)

// Notice describes a gesture or effect lifecycle change. Notices are
// delivered synchronously from Tick to every observer.
type Notice struct {
	Type       NoticeType `json:"type"`
	Gesture    string     `json:"gesture"`
	Effect     string     `json:"effect,omitempty"`
	Hand       string     `json:"hand"`
	Node       string     `json:"node,omitempty"`
	NodeID     uuid.UUID  `json:"node_id,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	Confidence float64    `json:"confidence"`
	Position   r3.Vec     `json:"position"`
	Time       time.Time  `json:"time"`
}
