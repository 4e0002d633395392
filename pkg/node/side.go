package node

import "fmt"

// Side names one end of the mesh.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

func ParseSide(name string) (Side, error) {
	switch name {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return 0, fmt.Errorf("node: unknown side %q", name)
}

// End returns the index of the node at side.
func (m *Mesh) End(s Side) int {
	switch s {
	case Left:
		return 0
	case Right:
		return len(m.nodes) - 1
	}
	panic(fmt.Sprintf("node: invalid side %d", int(s)))
}
