package main

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/SimWindows/simwin-sub002/pkg/device"
	"github.com/SimWindows/simwin-sub002/pkg/node"
)

func bandLine(d *device.Device, f node.Flag) plotter.XYs {
	x := d.Value(node.FlagPosition, node.All())
	y := d.Value(f, node.All())
	pts := make(plotter.XYs, len(x))
	for i := range pts {
		pts[i].X = x[i] * 1e4 // um
		pts[i].Y = y[i]
	}
	return pts
}

// plotBands writes the band edges and quasi-Fermi levels of the present solution.
func plotBands(d *device.Device, path string) error {
	p := plot.New()
	p.Title.Text = d.Summary()
	p.X.Label.Text = "Position (um)"
	p.Y.Label.Text = "Energy (eV)"

	err := plotutil.AddLines(p,
		"Ec", bandLine(d, node.FlagConductionBand),
		"Ev", bandLine(d, node.FlagValenceBand),
		"Efn", bandLine(d, node.FlagElectronPlanck),
		"Efp", bandLine(d, node.FlagHolePlanck),
	)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
