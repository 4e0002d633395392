package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/SimWindows/simwin-sub002/pkg/node"
)

type header struct {
	Nodes       int32
	BiasContact int32
	Cavity      int32
	State       int32
}

// WriteState writes the header, every node, both contacts, both surfaces and
// the mode when there is a cavity.
func (d *Device) WriteState(w io.Writer) error {
	var err error

	h := header{
		Nodes:       int32(d.mesh.Len()),
		BiasContact: int32(d.biasContact),
		State:       int32(d.state),
	}
	if d.cavity != nil {
		h.Cavity = 1
	}
	err = binary.Write(w, binary.LittleEndian, &h)
	if err != nil {
		return fmt.Errorf("writing device header: %w", err)
	}
	for i := range d.mesh.Len() {
		err = d.mesh.At(i).WriteState(w)
		if err != nil {
			return err
		}
	}
	for _, c := range d.contacts {
		err = c.WriteState(w)
		if err != nil {
			return err
		}
	}
	for _, s := range d.surfaces {
		err = s.WriteState(w)
		if err != nil {
			return err
		}
	}
	if d.cavity != nil {
		return d.cavity.Mode.WriteState(w)
	}
	return nil
}

// ReadState restores a state written by WriteState for the same structure.
// Nothing is changed unless the whole state could be read.
func (d *Device) ReadState(r io.Reader) error {
	var err error

	var h header
	err = binary.Read(r, binary.LittleEndian, &h)
	if err != nil {
		return fmt.Errorf("reading device header: %w", err)
	}
	if int(h.Nodes) != d.mesh.Len() || node.Side(h.BiasContact) != d.biasContact || (h.Cavity != 0) != (d.cavity != nil) {
		return fmt.Errorf("%w: state for %d nodes does not fit %d nodes", ErrStateMismatch, h.Nodes, d.mesh.Len())
	}

	s := d.snapshot()
	records := make([]node.Record, h.Nodes)
	err = binary.Read(r, binary.LittleEndian, records)
	if err != nil {
		return fmt.Errorf("reading node state: %w", err)
	}
	for i, rec := range records {
		if int(rec.Index) != i {
			return fmt.Errorf("%w: node record %d has index %d", ErrStateMismatch, i, rec.Index)
		}
	}
	s.nodes = records
	for i := range s.contacts {
		err = s.contacts[i].ReadState(r)
		if err != nil {
			return err
		}
	}
	for i := range s.surfaces {
		err = s.surfaces[i].ReadState(r)
		if err != nil {
			return err
		}
	}
	if d.cavity != nil {
		err = s.mode.ReadState(r)
		if err != nil {
			return err
		}
	}

	err = d.restore(s)
	if err != nil {
		d.state = StateFailed
		return err
	}
	d.state = State(h.State)
	return nil
}

// MarshalBinary returns the state file contents.
func (d *Device) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	err := d.WriteState(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
