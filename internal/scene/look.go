package scene

import "gonum.org/v1/gonum/spatial/r3"

// look is one owner's claim on a node's material and scale.
type look struct {
	owner    any
	material *Material
}

// lookStack remembers the appearance a node had before its first claim.
type lookStack struct {
	material *Material
	scale    r3.Vec
	looks    []look
}

func (s *lookStack) index(owner any) int {
	for i, l := range s.looks {
		if l.owner == owner {
			return i
		}
	}
	return -1
}

// Baseline returns the material and scale the node had before any claim was
// pushed, or its current ones when there is no claim.
func (n *Node) Baseline() (*Material, r3.Vec) {
	if n.looks == nil {
		return n.Material, n.Scale
	}
	return n.looks.material, n.looks.scale
}

// PushLook registers owner as changing the node's appearance. A non-nil m
// becomes the node's material. Pushing the same owner again replaces its
// material.
func (n *Node) PushLook(owner any, m *Material) {
	if n.looks == nil {
		n.looks = &lookStack{material: n.Material, scale: n.Scale}
	}
	s := n.looks
	if i := s.index(owner); i >= 0 {
		s.looks[i].material = m
	} else {
		s.looks = append(s.looks, look{owner: owner, material: m})
	}
	if m != nil {
		n.Material = m
	}
}

// PopLook drops owner's claim. The scale goes back to the baseline for the
// remaining owners to reapply, and the material to the newest remaining
// claim that set one. Dropping the last claim restores the baseline
// material and forgets it.
func (n *Node) PopLook(owner any) {
	s := n.looks
	if s == nil {
		return
	}
	i := s.index(owner)
	if i < 0 {
		return
	}
	s.looks = append(s.looks[:i], s.looks[i+1:]...)

	n.Scale = s.scale
	n.Material = s.material
	for j := len(s.looks) - 1; j >= 0; j-- {
		if m := s.looks[j].material; m != nil {
			n.Material = m
			break
		}
	}
	if len(s.looks) == 0 {
		n.looks = nil
	}
}

// Looks returns the number of claims held on the node's appearance.
func (n *Node) Looks() int {
	if n.looks == nil {
		return 0
	}
	return len(n.looks.looks)
}
