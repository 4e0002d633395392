package boundary

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimWindows/simwin-sub002/pkg/material"
	"github.com/SimWindows/simwin-sub002/pkg/node"
	"github.com/SimWindows/simwin-sub002/pkg/physics"
)

func testMesh(t *testing.T) *node.Mesh {
	t.Helper()
	m, err := material.DefaultLibrary().Lookup("GaAs", 0)
	require.NoError(t, err)
	nodes := make([]node.Node, 4)
	for i := range nodes {
		nodes[i] = node.New(i, float64(i)*1e-5, m, node.RegionBulk)
		nodes[i].SetStatistics(physics.Boltzmann)
		nodes[i].CompIndependentParam()
	}
	nodes[0].SetDoping(1e17, 0, false)
	nodes[3].SetDoping(0, 1e17, false)
	return node.NewMesh(nodes)
}

func TestContactApply(t *testing.T) {
	mesh := testMesh(t)
	left := NewContact(mesh, node.Left)
	right := NewContact(mesh, node.Right)
	assert.Equal(t, 0, left.Node)
	assert.Equal(t, 3, right.Node)

	left.CompEquilibrium(mesh)
	right.CompEquilibrium(mesh)
	// n side sits higher in potential than p side by about the band gap
	assert.Greater(t, left.Neutral-right.Neutral, 1.2)

	right.Bias = 0.5
	right.Apply(mesh)
	n := mesh.At(3)
	assert.Equal(t, right.Neutral+0.5, n.Grid.Potential)
	assert.Equal(t, -0.5, n.Electron.Planck)
	assert.Equal(t, -0.5, n.Hole.Planck)

	// shifting potential and Fermi levels together keeps the node neutral
	n.CompDependentParam()
	assert.InDelta(t, 0, n.Grid.TotalCharge, 1e17*1e-8)

	right.SetCurrent(-1, -2)
	assert.Equal(t, -3.0, right.TotalCurrent())
}

func TestContactState(t *testing.T) {
	mesh := testMesh(t)
	c := NewContact(mesh, node.Right)
	c.Bias, c.Neutral = 1.25, -4.1
	c.SetCurrent(3.5, 0.25)

	var buf bytes.Buffer
	require.NoError(t, c.WriteState(&buf))
	assert.Equal(t, 4+4*8, buf.Len())

	got := NewContact(mesh, node.Right)
	require.NoError(t, got.ReadState(bytes.NewReader(buf.Bytes())))
	assert.Equal(t, c, got)

	other := NewContact(mesh, node.Left)
	err := other.ReadState(bytes.NewReader(buf.Bytes()))
	assert.True(t, errors.Is(err, ErrStateMismatch))
}

func TestSurface(t *testing.T) {
	mesh := testMesh(t)
	_, err := NewHeatSink(mesh, node.Left, 0)
	assert.Error(t, err)
	_, err = NewConductance(mesh, node.Left, 300, -1)
	assert.Error(t, err)

	sink, err := NewHeatSink(mesh, node.Left, 320)
	require.NoError(t, err)
	sink.Apply(mesh)
	assert.Equal(t, 320.0, mesh.At(0).Grid.Temperature)
	f, df := sink.Residual(400)
	assert.Equal(t, 0.0, f)
	assert.Equal(t, 0.0, df)

	cond, err := NewConductance(mesh, node.Right, 300, 10)
	require.NoError(t, err)
	cond.Apply(mesh)
	assert.Equal(t, 300.0, mesh.At(3).Grid.Temperature)
	f, df = cond.Residual(305)
	assert.Equal(t, -50.0, f)
	assert.Equal(t, -10.0, df)

	adiabatic, err := NewConductance(mesh, node.Right, 300, 0)
	require.NoError(t, err)
	f, _ = adiabatic.Residual(350)
	assert.Equal(t, 0.0, f)
}

func TestSurfaceState(t *testing.T) {
	mesh := testMesh(t)
	s, err := NewHeatSink(mesh, node.Left, 310)
	require.NoError(t, err)
	s.SetHeatFlux(12.5)

	var buf bytes.Buffer
	require.NoError(t, s.WriteState(&buf))
	assert.Equal(t, 2*4+3*8, buf.Len())

	got := &Surface{Side: node.Left}
	require.NoError(t, got.ReadState(&buf))
	assert.True(t, got.HeatSink)
	assert.Equal(t, 310.0, got.Temperature)
	assert.Equal(t, 12.5, got.HeatFlux)
}
