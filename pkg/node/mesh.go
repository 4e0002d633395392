package node

import (
	"fmt"

	"github.com/SimWindows/simwin-sub002/internal/consts"
)

// Mesh is the single owner of all nodes; everything else refers to nodes by index.
type Mesh struct {
	nodes []Node
}

func NewMesh(nodes []Node) *Mesh {
	for i := range nodes {
		nodes[i].Index = i
		if i > 0 && nodes[i].Grid.Position <= nodes[i-1].Grid.Position {
			panic(fmt.Sprintf("node: positions not increasing at %d", i))
		}
	}
	return &Mesh{nodes: nodes}
}

func (m *Mesh) Len() int { return len(m.nodes) }

func (m *Mesh) At(i int) *Node {
	if i < 0 || i >= len(m.nodes) {
		panic(fmt.Sprintf("node: index %d out of range [0, %d)", i, len(m.nodes)))
	}
	return &m.nodes[i]
}

// Neighbors returns the previous and next node, nil at the ends.
func (m *Mesh) Neighbors(i int) (*Node, *Node) {
	var prev, next *Node
	if i > 0 {
		prev = m.At(i - 1)
	}
	if i < len(m.nodes)-1 {
		next = m.At(i + 1)
	}
	return prev, next
}

// Spacing returns x(i+1) - x(i).
func (m *Mesh) Spacing(i int) float64 {
	return m.At(i+1).Grid.Position - m.At(i).Grid.Position
}

// BoxLength returns the length of the control volume around node i.
func (m *Mesh) BoxLength(i int) float64 {
	var l float64
	if i > 0 {
		l += m.Spacing(i-1) / 2
	}
	if i < len(m.nodes)-1 {
		l += m.Spacing(i) / 2
	}
	return l
}

func (m *Mesh) Length() float64 {
	if len(m.nodes) == 0 {
		return 0
	}
	return m.nodes[len(m.nodes)-1].Grid.Position - m.nodes[0].Grid.Position
}

// Each calls fn for every node in r.
func (m *Mesh) Each(r Range, fn func(n *Node)) {
	lo, hi := r.Bounds(len(m.nodes))
	for i := lo; i <= hi; i++ {
		fn(&m.nodes[i])
	}
}

func (m *Mesh) Profile(r Range, f Flag) []float64 {
	lo, hi := r.Bounds(len(m.nodes))
	values := make([]float64, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		values = append(values, m.nodes[i].Value(f))
	}
	return values
}

// CompField integrates Gauss's law across r starting from a fixed field at its first node.
func (m *Mesh) CompField(r Range, startField float64) {
	lo, hi := r.Bounds(len(m.nodes))
	start := &m.nodes[lo]
	start.Grid.Field = startField

	var acc float64
	for i := lo + 1; i <= hi; i++ {
		prev, cur := &m.nodes[i-1], &m.nodes[i]
		acc += (prev.Grid.TotalCharge + cur.Grid.TotalCharge) / 2 * (cur.Grid.Position - prev.Grid.Position)
		cur.CompField(start, acc)
	}
}

// SheetCharge returns q times the integrated net charge over r in C/cm^2.
func (m *Mesh) SheetCharge(r Range) float64 {
	lo, hi := r.Bounds(len(m.nodes))
	var sum float64
	for i := lo; i <= hi; i++ {
		sum += m.nodes[i].Grid.TotalCharge * m.BoxLength(i)
	}
	return consts.CHARGE * sum
}
