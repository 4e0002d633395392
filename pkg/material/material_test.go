package material

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimWindows/simwin-sub002/pkg/formula"
)

func TestLibraryLookup(t *testing.T) {
	lib := DefaultLibrary()

	gaas, err := lib.Lookup("gaas", 0)
	require.NoError(t, err)
	assert.Equal(t, "GaAs", gaas.Name)
	assert.InDelta(t, 1.424, gaas.BandGapAt(300), 1e-12)
	assert.Less(t, gaas.BandGapAt(350), gaas.BandGapAt(300))

	al, err := lib.Lookup("AlGaAs", 0.3)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, al.Composition, 0)
	assert.Greater(t, al.BandGapAt(300), gaas.BandGapAt(300))
	assert.Less(t, al.AffinityAt(300), gaas.AffinityAt(300))
	assert.False(t, al.SameAs(gaas))

	_, err = lib.Lookup("InP", 0)
	assert.True(t, errors.Is(err, ErrUnknownMaterial))

	_, err = lib.Lookup("AlGaAs", 1.2)
	assert.Error(t, err)
	assert.Equal(t, []string{"algaas", "gaas", "ingaas", "si"}, lib.Names())
}

func TestLibraryOpticalParams(t *testing.T) {
	lib := DefaultLibrary()
	for _, name := range lib.Names() {
		m, err := lib.Lookup(name, 0.1)
		require.NoError(t, err, name)
		assert.Greater(t, m.RefractiveIndexAt(1.4, 300), 1.0, name)
		assert.Greater(t, m.TransparencyConc, 0.0, name)
		assert.Greater(t, m.GainCompressionConc, 0.0, name)
		assert.Greater(t, m.ElectronFreeCarrier, 0.0, name)
	}
}

func TestEffectiveDOS(t *testing.T) {
	// GaAs conduction band, 300 K
	assert.InEpsilon(t, 4.35e17, EffectiveDOS(0.067, 300), 1e-2)
	assert.InEpsilon(t, 2.509e19, EffectiveDOS(1, 300), 1e-3)
}

func TestMobility(t *testing.T) {
	m := gaas()
	assert.InDelta(t, 8500, m.ElectronMobilityAt(0, 300), 1e-9)
	assert.Less(t, m.ElectronMobilityAt(1e18, 300), m.ElectronMobilityAt(1e16, 300))
	assert.Greater(t, m.ElectronMobilityAt(1e20, 300), m.ElectronMobilityMin)
	assert.Less(t, m.HoleMobilityAt(1e17, 400), m.HoleMobilityAt(1e17, 300))
}

func TestThermalConductivity(t *testing.T) {
	m := gaas()
	k, dk := m.ThermalConductivityAt(300)
	assert.InDelta(t, 0.44, k, 1e-12)
	assert.InDelta(t, -1.25*0.44/300, dk, 1e-15)

	al := algaas(0)
	k0, _ := al.ThermalConductivityAt(300)
	assert.InEpsilon(t, 1/2.27, k0, 1e-12)
}

func TestOverride(t *testing.T) {
	m := gaas()
	m.Composition = 0.1
	m.Override(ParamBandGap, formula.Func(func(b map[string]float64) float64 {
		return 1.5 + b["x"] - 1e-4*(b["t"]-300)
	}))
	assert.InDelta(t, 1.6, m.BandGapAt(300), 1e-12)
	assert.InDelta(t, 1.59, m.BandGapAt(400), 1e-12)

	c := m.Clone()
	c.Override(ParamBandGap, formula.Constant(2))
	assert.InDelta(t, 1.6, m.BandGapAt(300), 1e-12)
	assert.InDelta(t, 2, c.BandGapAt(300), 0)

	assert.Panics(t, func() { m.Override(numParams, formula.Constant(1)) })
}

func TestParseParam(t *testing.T) {
	p, err := ParseParam("hole_mobility")
	require.NoError(t, err)
	assert.Equal(t, ParamHoleMobility, p)
	assert.Equal(t, "hole_mobility", p.String())

	_, err = ParseParam("bogus")
	assert.Error(t, err)
}

func TestAbsorption(t *testing.T) {
	m := gaas()
	assert.Equal(t, 0.0, m.AbsorptionAt(1.4, 300))
	assert.InEpsilon(t, 2e4*math.Sqrt(0.1), m.AbsorptionAt(1.524, 300), 1e-9)
}
