// Package effect implements the stateful animations bound to a triggered
// gesture on a scene node. Every effect follows the same lifecycle:
// Execute captures the state it will touch, Update advances it once per
// tick and Stop restores it. Stop is safe before Execute and after a
// previous Stop.
package effect

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/scene"
)

var (
	// ErrUnknownKind is returned by New for an unrecognised effect kind.
	ErrUnknownKind = errors.New("unknown effect kind")
	// ErrNoBody is reported when a physics effect targets a node without a
	// body and is not allowed to create one.
	ErrNoBody = errors.New("target has no physics body")
)

// Kind identifies an effect.
type Kind int

const (
	FollowHandKind Kind = iota
	InfiniteRotationKind
	HighlightKind
	PushAwayKind
	HeartbeatKind
)

// Kinds lists every effect kind.
var Kinds = []Kind{FollowHandKind, InfiniteRotationKind, HighlightKind, PushAwayKind, HeartbeatKind}

var kindNames = map[Kind]string{
	FollowHandKind:       "follow_hand",
	InfiniteRotationKind: "infinite_rotation",
	HighlightKind:        "highlight",
	PushAwayKind:         "push_away",
	HeartbeatKind:        "heartbeat",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Continuous reports whether the effect keeps running independently of the
// gesture that started it.
func (k Kind) Continuous() bool {
	return k == InfiniteRotationKind || k == HeartbeatKind
}

// ParseKind parses an effect name such as "follow_hand". Hyphens and case
// are ignored.
func ParseKind(s string) (Kind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for k, name := range kindNames {
		if name == norm || strings.ReplaceAll(name, "_", "") == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Effect is a stateful animation on one target.
type Effect interface {
	Kind() Kind
	Execute(target *scene.Node, ev gesture.Event)
	Update(target *scene.Node, ev gesture.Event)
	Stop(target *scene.Node)
	Active() bool
}

// Failer is implemented by effects that can fail to start for lack of a
// resource on the target.
type Failer interface {
	Err() error
}

// Env carries the collaborators effects may need. Every field is optional.
type Env struct {
	Scene    scene.Spawner
	Animator *Animator
	Rand     *rand.Rand
	Log      *logging.Logger
}

// withRand fills a missing Rand with a generator seeded from the runtime
// source. The effect keeps it for its lifetime.
func (e Env) withRand() Env {
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// New builds an effect of kind k. intensity scales the effect's strength and
// is usually taken from the responder configuration.
func New(k Kind, p Params, intensity float64, env Env) (Effect, error) {
	if intensity <= 0 {
		intensity = 1
	}
	env.Log = env.Log.With("effect", k.String())
	env = env.withRand()
	switch k {
	case FollowHandKind:
		return NewFollowHand(p.Follow, intensity, env), nil
	case InfiniteRotationKind:
		return NewInfiniteRotation(p.Rotation, intensity, env), nil
	case HighlightKind:
		return NewHighlight(p.Highlight, intensity, env), nil
	case PushAwayKind:
		return NewPushAway(p.Push, intensity, env), nil
	case HeartbeatKind:
		return NewHeartbeat(p.Heartbeat, intensity, env), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
}

// clock tracks effect-local time from the event timestamps.
type clock struct {
	start time.Time
	last  time.Time
}

func (c *clock) reset(now time.Time) {
	c.start = now
	c.last = now
}

// tick returns the seconds since the previous tick and since reset.
// Timestamps going backwards yield a zero step.
func (c *clock) tick(now time.Time) (dt, elapsed float64) {
	if now.After(c.last) {
		dt = now.Sub(c.last).Seconds()
		c.last = now
	}
	return dt, c.last.Sub(c.start).Seconds()
}
