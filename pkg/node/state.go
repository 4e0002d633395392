package node

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Record is the fixed-width state file layout of a node, in field order.
type Record struct {
	Index             int32
	Region            int32
	Position          float64
	Temperature       float64
	Potential         float64
	ElectronPlanck    float64
	HolePlanck        float64
	Field             float64
	ModeIntensity     float64
	PhotonDensity     float64
	OpticalGeneration float64
}

func (n *Node) Record() Record {
	return Record{
		Index:             int32(n.Index),
		Region:            int32(n.Grid.Region),
		Position:          n.Grid.Position,
		Temperature:       n.Grid.Temperature,
		Potential:         n.Grid.Potential,
		ElectronPlanck:    n.Electron.Planck,
		HolePlanck:        n.Hole.Planck,
		Field:             n.Grid.Field,
		ModeIntensity:     n.Grid.ModeIntensity,
		PhotonDensity:     n.Grid.PhotonDensity,
		OpticalGeneration: n.Grid.OpticalGeneration,
	}
}

// Apply restores the independent state. Derived quantities must be recomputed
// by the caller.
func (n *Node) Apply(r Record) {
	n.Index = int(r.Index)
	n.Grid.Region = Region(r.Region)
	n.Grid.Position = r.Position
	n.Grid.Temperature = r.Temperature
	n.Grid.Potential = r.Potential
	n.Electron.Planck = r.ElectronPlanck
	n.Hole.Planck = r.HolePlanck
	n.Grid.Field = r.Field
	n.Grid.ModeIntensity = r.ModeIntensity
	n.Grid.PhotonDensity = r.PhotonDensity
	n.Grid.OpticalGeneration = r.OpticalGeneration
}

func (n *Node) WriteState(w io.Writer) error {
	err := binary.Write(w, binary.LittleEndian, n.Record())
	if err != nil {
		return fmt.Errorf("writing node %d: %w", n.Index, err)
	}
	return nil
}

func (n *Node) ReadState(r io.Reader) error {
	var rec Record
	err := binary.Read(r, binary.LittleEndian, &rec)
	if err != nil {
		return fmt.Errorf("reading node %d: %w", n.Index, err)
	}
	n.Apply(rec)
	return nil
}

// Snapshot captures the independent state of every node.
func (m *Mesh) Snapshot() []Record {
	records := make([]Record, len(m.nodes))
	for i := range m.nodes {
		records[i] = m.nodes[i].Record()
	}
	return records
}

func (m *Mesh) Restore(records []Record) {
	if len(records) != len(m.nodes) {
		panic(fmt.Sprintf("node: snapshot of %d nodes restored into %d", len(records), len(m.nodes)))
	}
	for i := range records {
		m.nodes[i].Apply(records[i])
	}
}
