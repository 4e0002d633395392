package structure

import (
	"fmt"

	"github.com/SimWindows/simwin-sub002/pkg/formula"
	"github.com/SimWindows/simwin-sub002/pkg/material"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

// Layout is the mesh generated from a structure together with the node spans
// of its quantum wells.
type Layout struct {
	Mesh  *node.Mesh
	Wells []node.Range
}

// regionMaterial looks up the material of a region and applies its overrides.
func regionMaterial(r Region, lib *material.Library, compiler formula.Compiler) (*material.Material, error) {
	var err error

	m, err := lib.Lookup(r.Material, r.Composition)
	if err != nil {
		return nil, err
	}
	if len(r.Overrides) == 0 {
		return m, nil
	}
	if compiler == nil {
		return nil, fmt.Errorf("material %s: overrides need a formula compiler", r.Material)
	}
	for name, expr := range r.Overrides {
		p, err := material.ParseParam(name)
		if err != nil {
			return nil, err
		}
		e, err := compiler.Compile(expr, material.FreeVars)
		if err != nil {
			return nil, fmt.Errorf("material %s parameter %s: %w", r.Material, name, err)
		}
		m.Override(p, e)
	}
	return m, nil
}

// Build generates the mesh. Every region starts with a node on its left
// boundary, the last region also gets one on the right boundary. The
// initial guess is charge neutral at zero bias.
func (s *Structure) Build(lib *material.Library, compiler formula.Compiler) (*Layout, error) {
	var err error

	stats, err := s.StatisticsKind()
	if err != nil {
		return nil, invalid("%v", err)
	}

	var nodes []node.Node
	var wells []node.Range
	var position float64
	for k, r := range s.Regions {
		m, err := regionMaterial(r, lib, compiler)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", k, err)
		}
		region := node.RegionBulk
		if r.QuantumWell {
			region = node.RegionQuantumWell
		}

		count := r.Intervals()
		h := r.Length * 1e-4 / float64(count)
		if k == len(s.Regions)-1 {
			count++
		}
		first := len(nodes)
		for j := range count {
			n := node.New(len(nodes), position+float64(j)*h, m, region)
			n.SetDoping(r.Donor, r.Acceptor, r.IncompleteIonization)
			n.SetStatistics(stats)
			n.Grid.Active = r.Active
			n.Grid.Temperature = s.Temperature
			nodes = append(nodes, n)
		}
		position += r.Length * 1e-4
		if r.QuantumWell {
			wells = append(wells, node.Span(first, len(nodes)-1))
		}
	}
	if len(nodes) < 3 {
		return nil, invalid("mesh has %d nodes, at least 3 are required", len(nodes))
	}

	for i := range nodes {
		n := &nodes[i]
		n.CompIndependentParam()
		n.CompNeutralPotential()
		n.CompDependentParam()
	}
	return &Layout{Mesh: node.NewMesh(nodes), Wells: wells}, nil
}
