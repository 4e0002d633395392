package boundary

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// Surface is the thermal boundary on one end of the mesh: a heat sink at a
// fixed temperature, or a thermal conductance to the ambient. A conductance of
// zero is adiabatic.
type Surface struct {
	Side        node.Side
	Node        int
	HeatSink    bool
	Temperature float64 // heat sink or ambient temperature (K)
	Conductance float64 // W/(cm^2 K)

	HeatFlux float64 // W/cm^2 leaving the device
}

func NewHeatSink(mesh *node.Mesh, side node.Side, temperature float64) (*Surface, error) {
	if !(temperature > 0) {
		return nil, fmt.Errorf("boundary: %s heat sink temperature %g must be positive", side, temperature)
	}
	return &Surface{Side: side, Node: mesh.End(side), HeatSink: true, Temperature: temperature}, nil
}

func NewConductance(mesh *node.Mesh, side node.Side, ambient, conductance float64) (*Surface, error) {
	if !(ambient > 0) || conductance < 0 {
		return nil, fmt.Errorf("boundary: invalid %s surface (ambient=%g, conductance=%g)", side, ambient, conductance)
	}
	return &Surface{Side: side, Node: mesh.End(side), Temperature: ambient, Conductance: conductance}, nil
}

// Apply pins the node temperature of a heat sink.
func (s *Surface) Apply(mesh *node.Mesh) {
	if s.HeatSink {
		mesh.At(s.Node).SetValue(node.FlagTemperature, s.Temperature)
	}
}

// Residual returns the boundary term of the heat balance at the surface node
// and its derivative with respect to the node temperature.
func (s *Surface) Residual(temperature float64) (float64, float64) {
	if s.HeatSink {
		return 0, 0
	}
	return -s.Conductance * (temperature - s.Temperature), -s.Conductance
}

func (s *Surface) SetHeatFlux(flux float64) {
	s.HeatFlux = flux
}

type surfaceRecord struct {
	Side        int32
	HeatSink    int32
	Temperature float64
	Conductance float64
	HeatFlux    float64
}

func (s *Surface) WriteState(w io.Writer) error {
	rec := surfaceRecord{
		Side:        int32(s.Side),
		Temperature: s.Temperature,
		Conductance: s.Conductance,
		HeatFlux:    s.HeatFlux,
	}
	if s.HeatSink {
		rec.HeatSink = 1
	}
	if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
		return fmt.Errorf("writing %s surface state: %w", s.Side, err)
	}
	return nil
}

func (s *Surface) ReadState(r io.Reader) error {
	var rec surfaceRecord
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return fmt.Errorf("reading %s surface state: %w", s.Side, err)
	}
	if node.Side(rec.Side) != s.Side {
		return fmt.Errorf("%w: surface side %s, state has %s", ErrStateMismatch, s.Side, node.Side(rec.Side))
	}
	s.HeatSink = rec.HeatSink != 0
	s.Temperature = rec.Temperature
	s.Conductance = rec.Conductance
	s.HeatFlux = rec.HeatFlux
	return nil
}
