// Package scene is a small in-memory scene graph: nodes with transforms,
// materials and rigid bodies, a sphere overlap query and a fixed-step body
// integrator. It is single-threaded and does not render.
package scene

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/mudra/internal/vecmath"
)

// Layer is a bitmask used to filter queries.
type Layer uint32

const (
	LayerDefault      Layer = 1 << 0
	LayerInteractable Layer = 1 << 1
	// LayerEffects holds proxies spawned by effects; they are never
	// interaction targets.
	LayerEffects Layer = 1 << 2

	LayerAll Layer = ^Layer(0)
)

var layerNames = map[string]Layer{
	"default":      LayerDefault,
	"interactable": LayerInteractable,
	"effects":      LayerEffects,
	"all":          LayerAll,
}

// ParseLayers combines named layers into a mask.
func ParseLayers(names []string) (Layer, error) {
	var mask Layer
	for _, name := range names {
		l, ok := layerNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("unknown layer %q", name)
		}
		mask |= l
	}
	return mask, nil
}

// Color is a linear RGBA colour.
type Color struct {
	R, G, B, A float64
}

// White is opaque white.
var White = Color{1, 1, 1, 1}

// LerpColor blends a toward b by t.
func LerpColor(a, b Color, t float64) Color {
	return Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// Material holds surface appearance. Materials may be shared between nodes,
// so effects clone before mutating.
type Material struct {
	Name     string
	Color    Color
	Emission Color
	// Flat materials ignore lighting.
	Flat bool
}

// Clone returns a copy of m.
func (m *Material) Clone() *Material {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// Mesh identifies shared geometry.
type Mesh struct {
	Name string
}

// Body is a rigid body attached to a node.
type Body struct {
	Mass            float64
	Kinematic       bool
	UseGravity      bool
	Velocity        r3.Vec
	AngularVelocity r3.Vec
	// Temporary marks bodies created on demand by effects.
	Temporary bool
}

// NewBody returns a dynamic body with gravity.
func NewBody(mass float64) *Body {
	if mass <= 0 {
		mass = 1
	}
	return &Body{Mass: mass, UseGravity: true}
}

// AddImpulse changes velocity by impulse/mass. Kinematic bodies ignore it.
func (b *Body) AddImpulse(impulse r3.Vec) {
	if b == nil || b.Kinematic {
		return
	}
	b.Velocity = r3.Add(b.Velocity, r3.Scale(1/b.mass(), impulse))
}

// AddTorqueImpulse changes angular velocity by impulse/mass, treating the
// body as a unit-inertia solid.
func (b *Body) AddTorqueImpulse(impulse r3.Vec) {
	if b == nil || b.Kinematic {
		return
	}
	b.AngularVelocity = r3.Add(b.AngularVelocity, r3.Scale(1/b.mass(), impulse))
}

func (b *Body) mass() float64 {
	if b.Mass <= 0 {
		return 1
	}
	return b.Mass
}

// Node is a scene element. A single flat struct covers every node kind.
type Node struct {
	ID    uuid.UUID
	Name  string
	Layer Layer

	// Local transform, relative to Parent when set.
	Position r3.Vec
	Rotation quat.Number
	Scale    r3.Vec

	// Radius is the bounding sphere radius at unit scale.
	Radius float64

	Material *Material
	Mesh     *Mesh
	Body     *Body

	// UserData is free for the host application.
	UserData any

	Parent   *Node
	children []*Node
	disposed bool
	looks    *lookStack
}

// NewNode creates a node with identity transform on the default layer.
func NewNode(name string) *Node {
	return &Node{
		ID:       uuid.New(),
		Name:     name,
		Layer:    LayerDefault,
		Rotation: vecmath.Identity,
		Scale:    vecmath.One,
		Radius:   0.5,
	}
}

// Alive reports whether n is non-nil and not destroyed.
func (n *Node) Alive() bool {
	return n != nil && !n.disposed
}

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// AddChild reparents child under n.
func (n *Node) AddChild(child *Node) {
	if child == nil || child == n {
		return
	}
	child.RemoveFromParent()
	child.Parent = n
	n.children = append(n.children, child)
}

// RemoveFromParent detaches n from its parent.
func (n *Node) RemoveFromParent() {
	p := n.Parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// WorldPosition returns the node position in world space.
func (n *Node) WorldPosition() r3.Vec {
	if n.Parent == nil {
		return n.Position
	}
	p := n.Parent
	local := vecmath.Mul(p.WorldScale(), n.Position)
	return r3.Add(p.WorldPosition(), vecmath.Rotate(p.WorldRotation(), local))
}

// WorldRotation returns the node rotation in world space.
func (n *Node) WorldRotation() quat.Number {
	if n.Parent == nil {
		return n.Rotation
	}
	return vecmath.Normalize(quat.Mul(n.Parent.WorldRotation(), n.Rotation))
}

// WorldScale returns the accumulated scale, ignoring rotation shear.
func (n *Node) WorldScale() r3.Vec {
	if n.Parent == nil {
		return n.Scale
	}
	return vecmath.Mul(n.Parent.WorldScale(), n.Scale)
}

// BoundingRadius returns Radius scaled by the largest world scale axis.
func (n *Node) BoundingRadius() float64 {
	s := n.WorldScale()
	return n.Radius * math.Max(math.Abs(s.X), math.Max(math.Abs(s.Y), math.Abs(s.Z)))
}

// Root returns the topmost ancestor of n.
func (n *Node) Root() *Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return n.Name
	}
	return n.ID.String()
}
