package model

import (
	"testing"

	"bpxgen/internal/params"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	got, err := ParseType("SPMe")
	require.NoError(t, err)
	assert.Equal(t, SPMe, got)

	_, err = ParseType("P2D")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DFN, SPMe, SPM")
}

func TestDefaultFactoryEvents(t *testing.T) {
	dfn, err := DefaultFactory{}.New(DFN, Options{"contact resistance": "true"})
	require.NoError(t, err)
	assert.Contains(t, dfn.EventNames(), "Zero electrolyte concentration cut-off")
	assert.Empty(t, dfn.HeatSources)

	spm, err := DefaultFactory{}.New(SPM, nil)
	require.NoError(t, err)
	assert.NotContains(t, spm.EventNames(), "Zero electrolyte concentration cut-off")
	assert.Contains(t, spm.EventNames(), "Maximum voltage [V]")

	_, err = DefaultFactory{}.New(DFN, Options{"no such option": "true"})
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, err = DefaultFactory{}.New(Type("ECM"), nil)
	assert.Error(t, err)
}

func TestFactoryCopiesOptions(t *testing.T) {
	opts := Options{"particle phases": []string{"1", "1"}}
	m, err := DefaultFactory{}.New(DFN, opts)
	require.NoError(t, err)
	opts["thermal"] = "lumped"
	assert.NotContains(t, m.Options, "thermal")
}

func TestRemoveEvents(t *testing.T) {
	m, err := DefaultFactory{}.New(SPMe, nil)
	require.NoError(t, err)
	before := len(m.Events)

	n := m.RemoveEvents("Maximum voltage")
	assert.Equal(t, 2, n)
	assert.Len(t, m.Events, before-2)
	for _, name := range m.EventNames() {
		assert.NotContains(t, name, "Maximum voltage")
	}
	assert.Contains(t, m.EventNames(), "Minimum voltage [V]")
}

func TestAddHysteresisHeatSource(t *testing.T) {
	m, err := DefaultFactory{}.New(DFN, Options{OptionHeatIsotherm: "true"})
	require.NoError(t, err)
	require.Len(t, m.HeatSources, 3)

	changed, err := AddHysteresisHeatSource(m)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, m.HeatSources, HeatHysteresis)

	changed, err = AddHysteresisHeatSource(m)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, m.HeatSources, 4)

	bare, err := DefaultFactory{}.New(DFN, nil)
	require.NoError(t, err)
	_, err = AddHysteresisHeatSource(bare)
	assert.ErrorIs(t, err, ErrNoHeatSources)
}

func TestMakeHysteresisCompatible(t *testing.T) {
	tbl := params.Table([]float64{0, 1}, []float64{1, 0})
	v, err := MakeHysteresisCompatible(tbl)
	require.NoError(t, err)
	assert.Equal(t, params.KindFunction, v.Kind())
	got, err := v.Eval(0.25, 300)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, got, 1e-12)

	v, err = MakeHysteresisCompatible(params.Scalar(-1e-4))
	require.NoError(t, err)
	got, _ = v.Eval(0.5, 300)
	assert.Equal(t, -1e-4, got)

	fn := params.Function(func(args ...float64) float64 { return args[0] }, "U(sto, T)")
	v, err = MakeHysteresisCompatible(fn)
	require.NoError(t, err)
	assert.Equal(t, "U(sto, T)", v.Label())

	_, err = MakeHysteresisCompatible(params.Text("x"))
	assert.Error(t, err)
}

func TestFormatOption(t *testing.T) {
	assert.Equal(t, "true", FormatOption("true"))
	assert.Equal(t, "(1, 2)", FormatOption([]string{"1", "2"}))
	assert.Equal(t, "((current sigmoid, single), single)",
		FormatOption([]any{[]string{"current sigmoid", "single"}, "single"}))
}

func TestCanonicalOption(t *testing.T) {
	assert.Equal(t, "SEI", CanonicalOption("sei"))
	assert.Equal(t, "particle phases", CanonicalOption("Particle Phases"))
	assert.Equal(t, "no such option", CanonicalOption("no such option"))
}
