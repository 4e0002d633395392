package boundary

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// Contact is an ideal ohmic contact on one end of the mesh. The contact node
// is held charge neutral at its equilibrium potential plus the applied bias.
type Contact struct {
	Side    node.Side
	Node    int
	Bias    float64 // V
	Neutral float64 // equilibrium potential of the contact node (V)

	ElectronCurrent float64 // A/cm^2
	HoleCurrent     float64
}

func NewContact(mesh *node.Mesh, side node.Side) *Contact {
	return &Contact{Side: side, Node: mesh.End(side)}
}

// CompEquilibrium finds the neutral potential of the contact node at zero bias.
func (c *Contact) CompEquilibrium(mesh *node.Mesh) {
	n := mesh.At(c.Node)
	n.Electron.Planck = 0
	n.Hole.Planck = 0
	c.Neutral = n.CompNeutralPotential()
}

// Apply fixes the contact node: potential = neutral + V and both quasi-Fermi
// levels at -V.
func (c *Contact) Apply(mesh *node.Mesh) {
	n := mesh.At(c.Node)
	n.SetValue(node.FlagPotential, c.Neutral+c.Bias)
	n.SetValue(node.FlagElectronPlanck, -c.Bias)
	n.SetValue(node.FlagHolePlanck, -c.Bias)
}

// SetCurrent records the terminal current carried by the adjacent element.
func (c *Contact) SetCurrent(electron, hole float64) {
	c.ElectronCurrent = electron
	c.HoleCurrent = hole
}

func (c *Contact) TotalCurrent() float64 {
	return c.ElectronCurrent + c.HoleCurrent
}

type contactRecord struct {
	Side            int32
	Bias            float64
	Neutral         float64
	ElectronCurrent float64
	HoleCurrent     float64
}

func (c *Contact) WriteState(w io.Writer) error {
	rec := contactRecord{
		Side:            int32(c.Side),
		Bias:            c.Bias,
		Neutral:         c.Neutral,
		ElectronCurrent: c.ElectronCurrent,
		HoleCurrent:     c.HoleCurrent,
	}
	if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
		return fmt.Errorf("writing %s contact state: %w", c.Side, err)
	}
	return nil
}

func (c *Contact) ReadState(r io.Reader) error {
	var rec contactRecord
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return fmt.Errorf("reading %s contact state: %w", c.Side, err)
	}
	if node.Side(rec.Side) != c.Side {
		return fmt.Errorf("%w: contact side %s, state has %s", ErrStateMismatch, c.Side, node.Side(rec.Side))
	}
	c.Bias = rec.Bias
	c.Neutral = rec.Neutral
	c.ElectronCurrent = rec.ElectronCurrent
	c.HoleCurrent = rec.HoleCurrent
	return nil
}
