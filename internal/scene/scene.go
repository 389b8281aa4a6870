package scene

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/vecmath"
)

// Query finds nodes near a point.
type Query interface {
	// OverlapSphere returns the live nodes on mask whose bounding sphere
	// intersects the query sphere, nearest first.
	OverlapSphere(center r3.Vec, radius float64, mask Layer) []*Node
}

// Spawner creates and destroys proxy nodes.
type Spawner interface {
	Spawn(name string, parent *Node) *Node
	Destroy(n *Node)
}

// Physics holds the integrator constants.
type Physics struct {
	Gravity        r3.Vec  `mapstructure:"gravity"`
	LinearDamping  float64 `mapstructure:"linear_damping"`
	AngularDamping float64 `mapstructure:"angular_damping"`
}

// DefaultPhysics returns earth gravity with light damping.
func DefaultPhysics() Physics {
	return Physics{
		Gravity:        r3.Vec{Y: -9.81},
		LinearDamping:  0.05,
		AngularDamping: 0.05,
	}
}

// Scene owns a set of nodes.
type Scene struct {
	Physics Physics

	nodes []*Node
	byID  map[uuid.UUID]*Node
}

// New creates an empty scene with default physics.
func New() *Scene {
	return &Scene{
		Physics: DefaultPhysics(),
		byID:    make(map[uuid.UUID]*Node),
	}
}

// Add registers n and its descendants. Adding a node twice is a no-op.
func (s *Scene) Add(n *Node) {
	if n == nil || n.disposed {
		return
	}
	if _, ok := s.byID[n.ID]; !ok {
		s.byID[n.ID] = n
		s.nodes = append(s.nodes, n)
	}
	for _, c := range n.children {
		s.Add(c)
	}
}

// Spawn creates a node, registers it and attaches it to parent when given.
func (s *Scene) Spawn(name string, parent *Node) *Node {
	n := NewNode(name)
	if parent != nil {
		parent.AddChild(n)
	}
	s.Add(n)
	return n
}

// Destroy removes n and its descendants. Destroying a dead node is a no-op.
func (s *Scene) Destroy(n *Node) {
	if !n.Alive() {
		return
	}
	n.RemoveFromParent()
	s.destroy(n)
	s.compact()
}

func (s *Scene) destroy(n *Node) {
	for _, c := range n.children {
		s.destroy(c)
	}
	n.children = nil
	n.disposed = true
	delete(s.byID, n.ID)
}

func (s *Scene) compact() {
	live := s.nodes[:0]
	for _, n := range s.nodes {
		if !n.disposed {
			live = append(live, n)
		}
	}
	for i := len(live); i < len(s.nodes); i++ {
		s.nodes[i] = nil
	}
	s.nodes = live
}

// Node returns the live node with id, or nil.
func (s *Scene) Node(id uuid.UUID) *Node {
	return s.byID[id]
}

// Find returns the first live node named name, or nil.
func (s *Scene) Find(name string) *Node {
	for _, n := range s.nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Nodes returns the live nodes in insertion order.
func (s *Scene) Nodes() []*Node {
	out := make([]*Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Len returns the number of live nodes.
func (s *Scene) Len() int {
	return len(s.nodes)
}

// OverlapSphere implements Query.
func (s *Scene) OverlapSphere(center r3.Vec, radius float64, mask Layer) []*Node {
	type hit struct {
		n    *Node
		dist float64
	}
	var hits []hit
	for _, n := range s.nodes {
		if n.disposed || n.Layer&mask == 0 {
			continue
		}
		d := vecmath.Distance(center, n.WorldPosition())
		if d <= radius+n.BoundingRadius() {
			hits = append(hits, hit{n, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]*Node, len(hits))
	for i, h := range hits {
		out[i] = h.n
	}
	return out
}

// Step integrates every dynamic root body over dt seconds.
func (s *Scene) Step(dt float64) {
	if dt <= 0 {
		return
	}
	linear := math.Max(0, 1-s.Physics.LinearDamping*dt)
	angular := math.Max(0, 1-s.Physics.AngularDamping*dt)

	for _, n := range s.nodes {
		b := n.Body
		if b == nil || b.Kinematic || n.Parent != nil || n.disposed {
			continue
		}
		if b.UseGravity {
			b.Velocity = r3.Add(b.Velocity, r3.Scale(dt, s.Physics.Gravity))
		}
		b.Velocity = r3.Scale(linear, b.Velocity)
		b.AngularVelocity = r3.Scale(angular, b.AngularVelocity)

		n.Position = r3.Add(n.Position, r3.Scale(dt, b.Velocity))
		if w := r3.Norm(b.AngularVelocity); w > 0 {
			spin := vecmath.AxisAngle(b.AngularVelocity, w*dt)
			n.Rotation = vecmath.Normalize(quat.Mul(spin, n.Rotation))
		}
	}
}
