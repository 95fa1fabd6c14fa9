package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/model"
	"bpxgen/internal/params"
	"bpxgen/internal/pkg/cellfixture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFactory struct {
	mock.Mock
}

func (m *MockFactory) New(t model.Type, opts model.Options) (*model.Model, error) {
	args := m.Called(t, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Model), args.Error(1)
}

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Resolve(path, set string) (string, error) {
	args := m.Called(path, set)
	return args.String(0), args.Error(1)
}

func (m *MockSource) Load(path string) (params.Set, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(params.Set), args.Error(1)
}

func derive(t *testing.T, base params.Set, req Request) (*Result, error) {
	t.Helper()
	return NewDeriver(nil, model.DefaultFactory{}).Derive(context.Background(), base, req)
}

func mustDerive(t *testing.T, base params.Set, req Request) *Result {
	t.Helper()
	res, err := derive(t, base, req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func floatOf(t *testing.T, set params.Set, key string) float64 {
	t.Helper()
	v, err := set.Float(key)
	require.NoError(t, err, key)
	return v
}

func j0At(t *testing.T, set params.Set, e params.Electrode) float64 {
	t.Helper()
	v, err := set.Get(params.ExchangeCurrentDensity(params.SinglePhase, e))
	require.NoError(t, err)
	got, err := v.Eval(1000, 15000, 30000, 298.15)
	require.NoError(t, err)
	return got
}

func TestDeriveDefaults(t *testing.T) {
	base := cellfixture.Single()
	snapshot := base.Clone()

	res := mustDerive(t, base, DefaultRequest())

	assert.True(t, base.Equal(snapshot), "base set must not change")
	assert.Equal(t, 1.0, res.SOC)
	assert.Equal(t, []string{"1", "1"}, res.Options[optParticlePhases])
	assert.NotContains(t, res.Options, optContactResistance)
	assert.InDelta(t, cellfixture.NegMaxSto*cellfixture.NegMaxConc,
		floatOf(t, res.Params, params.InitialConcentration(params.SinglePhase, params.Negative)), 1e-9)
	assert.InDelta(t, cellfixture.PosMinSto*cellfixture.PosMaxConc,
		floatOf(t, res.Params, params.InitialConcentration(params.SinglePhase, params.Positive)), 1e-9)

	names := make([]string, len(res.Stages))
	for i, r := range res.Stages {
		names[i] = r.Name
	}
	assert.Equal(t, NewDeriver(nil, nil).pipeline.Stages(), names)
}

func TestZeroDegradationIsNoDegradation(t *testing.T) {
	base := cellfixture.Single()
	want := mustDerive(t, base, DefaultRequest())

	for name, state := range map[string]map[string]float64{
		"empty":    {},
		"all zero": {DegLLI: 0, DegLAMNeg: 0, DegRIFarPos: 0},
	} {
		t.Run(name, func(t *testing.T) {
			req := DefaultRequest()
			req.DegradationState = state
			got := mustDerive(t, base, req)
			assert.True(t, want.Params.Equal(got.Params))
			assert.False(t, got.Params.Has(params.CyclableLithium))
		})
	}
}

func TestDegradationLLI(t *testing.T) {
	base := cellfixture.Single()
	ncyc, err := electrochem.LithiumInventory(base, electrochem.SinglePhases)
	require.NoError(t, err)

	req := DefaultRequest()
	req.DegradationState = map[string]float64{DegLLI: 0.1}
	res := mustDerive(t, base, req)

	assert.InDelta(t, 0.9*ncyc, floatOf(t, res.Params, params.CyclableLithium), 1e-12)
	for _, e := range params.Electrodes {
		key := params.VolumeFraction(params.SinglePhase, e)
		assert.Equal(t, floatOf(t, base, key), floatOf(t, res.Params, key), key)
		assert.Equal(t, j0At(t, base, e), j0At(t, res.Params, e))
	}
	// less lithium moves the negative top of charge down
	assert.Less(t,
		floatOf(t, res.Params, params.MaxStoichiometry(params.SinglePhase, params.Negative)),
		cellfixture.NegMaxSto)
}

func TestDegradationFaradaicResistance(t *testing.T) {
	base := cellfixture.Single()
	req := DefaultRequest()
	req.DegradationState = map[string]float64{DegRIFarNeg: 0.25}
	res := mustDerive(t, base, req)

	assert.InDelta(t, j0At(t, base, params.Negative)/1.25, j0At(t, res.Params, params.Negative), 1e-12)
	assert.Equal(t, j0At(t, base, params.Positive), j0At(t, res.Params, params.Positive))
	assert.Equal(t, floatOf(t, base, params.ElectrolyteConductivity), floatOf(t, res.Params, params.ElectrolyteConductivity))
}

func TestDegradationElectrolyteAndSeriesResistance(t *testing.T) {
	base := cellfixture.Single()
	req := DefaultRequest()
	req.DegradationState = map[string]float64{DegRIElectrolyte: 1, DegR0Addn: 0.005}
	res := mustDerive(t, base, req)

	assert.InDelta(t, 0.5, floatOf(t, res.Params, params.ElectrolyteConductivity), 1e-12)
	assert.InDelta(t, 1.5e-10, floatOf(t, res.Params, params.ElectrolyteDiffusivity), 1e-22)
	assert.InDelta(t, 0.005, floatOf(t, res.Params, params.ContactResistance), 1e-15)
	assert.Equal(t, "true", res.Options[optContactResistance])
}

func TestDegradationLAM(t *testing.T) {
	base := cellfixture.Single()
	ncyc, err := electrochem.LithiumInventory(base, electrochem.SinglePhases)
	require.NoError(t, err)

	for _, tc := range []struct {
		key  string
		lost params.Electrode
	}{
		{key: DegLAMNeg, lost: params.Negative},
		{key: DegLAMPos, lost: params.Positive},
	} {
		t.Run(tc.key, func(t *testing.T) {
			req := DefaultRequest()
			req.DegradationState = map[string]float64{tc.key: 0.05}
			res := mustDerive(t, base, req)

			for _, e := range params.Electrodes {
				key := params.VolumeFraction(params.SinglePhase, e)
				want := floatOf(t, base, key)
				if e == tc.lost {
					want *= 1 - 0.05
				}
				assert.InDelta(t, want, floatOf(t, res.Params, key), 1e-12, key)
				assert.Equal(t, j0At(t, base, e), j0At(t, res.Params, e))
			}
			assert.InDelta(t, 0.57, floatOf(t, res.Params, params.VolumeFraction(params.SinglePhase, tc.lost)), 1e-12)
			// active material loss keeps the lithium inventory
			assert.InDelta(t, ncyc, floatOf(t, res.Params, params.CyclableLithium), 1e-12)
		})
	}
}

func TestInfeasibleDegradation(t *testing.T) {
	base := cellfixture.Single()
	snapshot := base.Clone()

	for name, state := range map[string]map[string]float64{
		"negative cannot reach the upper cut-off": {DegLAMNeg: 0.1},
		"lithium cannot reach the lower cut-off":  {DegLLI: 0.5},
	} {
		t.Run(name, func(t *testing.T) {
			req := DefaultRequest()
			req.DegradationState = state
			res, err := derive(t, base, req)

			assert.Nil(t, res)
			require.ErrorIs(t, err, ErrPhysicalConstraint)
			assert.ErrorIs(t, err, electrochem.ErrBoundsUnsolvable)
			var se *StageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "initial-state", se.Stage)
		})
	}
	assert.True(t, base.Equal(snapshot))
}

func TestNonMonotonicOCVIsPhysicalConstraint(t *testing.T) {
	base := cellfixture.Single()
	base[params.OCP(params.SinglePhase, params.Positive)] = params.Scalar(3.7)
	base[params.OCP(params.SinglePhase, params.Negative)] = params.Scalar(0.1)

	v := 3.6
	req := DefaultRequest()
	req.OCVInit = &v
	_, err := derive(t, base, req)

	require.ErrorIs(t, err, ErrPhysicalConstraint)
	assert.ErrorIs(t, err, electrochem.ErrNotMonotonic)
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "soc", se.Stage)
}

func TestContactResistanceOption(t *testing.T) {
	base := cellfixture.Single()
	base[params.ContactResistance] = params.Scalar(0.01)
	res := mustDerive(t, base, DefaultRequest())
	assert.Equal(t, "true", res.Options[optContactResistance])

	base[params.ContactResistance] = params.Scalar(0)
	res = mustDerive(t, base, DefaultRequest())
	assert.NotContains(t, res.Options, optContactResistance)
}

func TestHTCExt(t *testing.T) {
	base := cellfixture.Single()
	req := DefaultRequest()
	htc := 25.0
	req.HTCExt = &htc
	req.ExtraModelOptions = model.Options{model.OptionThermal: "lumped"}
	res := mustDerive(t, base, req)

	assert.Equal(t, 25.0, floatOf(t, res.Params, params.HeatTransferCoeff))
	assert.Equal(t, "lumped", res.Options[model.OptionThermal])
	assert.NotEmpty(t, res.Model.HeatSources)
}

func TestHysteresisBranchWithoutModel(t *testing.T) {
	base := cellfixture.WithHysteresis(cellfixture.Single(), params.SinglePhase)
	lith := base[params.BranchOCP(params.SinglePhase, params.Negative, electrochem.Lithiation)]

	req := DefaultRequest()
	req.HysteresisBranch = electrochem.BranchCharge
	res := mustDerive(t, base, req)

	for _, b := range electrochem.ElectrodeBranches {
		assert.False(t, res.Params.Has(params.BranchOCP(params.SinglePhase, params.Negative, b)), b)
	}
	got := res.Params[params.OCP(params.SinglePhase, params.Negative)]
	wantX, wantY := lith.Points()
	gotX, gotY := got.Points()
	assert.Equal(t, wantX, gotX)
	assert.Equal(t, wantY, gotY)
	assert.Equal(t, base[params.OCP(params.SinglePhase, params.Positive)], res.Params[params.OCP(params.SinglePhase, params.Positive)])
	assert.NotContains(t, res.Options, optOCP)
}

func TestHysteresisZeroState(t *testing.T) {
	base := cellfixture.WithHysteresis(cellfixture.Single(), params.SinglePhase)
	req := DefaultRequest()
	req.HysteresisModel = HysteresisZeroState
	res := mustDerive(t, base, req)

	assert.Equal(t, []any{"current sigmoid", "single"}, res.Options[optOCP])
	assert.Equal(t, params.KindTable, res.Params[params.OCP(params.SinglePhase, params.Negative)].Kind())
	assert.False(t, res.Params.Has(params.InitialHysteresisState(params.SinglePhase, params.Negative)))
}

func TestHysteresisOneState(t *testing.T) {
	base := cellfixture.WithHysteresis(cellfixture.Single(), params.SinglePhase)

	t.Run("average start", func(t *testing.T) {
		req := DefaultRequest()
		req.HysteresisModel = HysteresisOneState
		res := mustDerive(t, base, req)

		assert.Equal(t, []any{"Wycisk", "single"}, res.Options[optOCP])
		for _, suffix := range hysteresisSuffixes {
			key := params.ElectrodeParam(params.SinglePhase, params.Negative, suffix)
			assert.Equal(t, params.KindFunction, res.Params[key].Kind(), key)
		}
		assert.Equal(t, params.KindTable, res.Params[params.OCP(params.SinglePhase, params.Positive)].Kind())
		assert.Equal(t, 0.0, floatOf(t, res.Params, params.InitialHysteresisState(params.SinglePhase, params.Negative)))
		assert.Equal(t, 0.0, floatOf(t, res.Params, params.SwitchingFactor(params.SinglePhase, params.Negative)))
	})

	t.Run("after charge", func(t *testing.T) {
		req := DefaultRequest()
		req.HysteresisModel = HysteresisOneState
		req.HysteresisPrecedingState = electrochem.BranchCharge
		res := mustDerive(t, base, req)
		assert.Equal(t, -1.0, floatOf(t, res.Params, params.InitialHysteresisState(params.SinglePhase, params.Negative)))
	})

	t.Run("heat source", func(t *testing.T) {
		req := DefaultRequest()
		req.HysteresisModel = HysteresisOneState
		req.AddHysteresisHeatSource = true
		res := mustDerive(t, base, req)
		assert.Equal(t, "true", res.Options[model.OptionHeatIsotherm])
		assert.Contains(t, res.Model.HeatSources, model.HeatHysteresis)
	})

	t.Run("non-zero switching factor", func(t *testing.T) {
		bad := base.Clone()
		bad[params.SwitchingFactor(params.SinglePhase, params.Negative)] = params.Scalar(0.3)
		snapshot := bad.Clone()

		req := DefaultRequest()
		req.HysteresisModel = HysteresisOneState
		res, err := derive(t, bad, req)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrPhysicalConstraint)
		var se *StageError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "hysteresis", se.Stage)
		assert.True(t, bad.Equal(snapshot))
	})
}

func TestBlendedNegative(t *testing.T) {
	base := cellfixture.Blended()
	req := DefaultRequest()
	req.BlendedElectrode = [2]bool{true, false}
	req.HysteresisModel = HysteresisZeroState
	res := mustDerive(t, base, req)

	assert.Equal(t, []string{"2", "1"}, res.Options[optParticlePhases])
	assert.Equal(t, []any{[]string{"current sigmoid", "current sigmoid"}, "single"}, res.Options[optOCP])

	phases := params.MaterialPhases()
	assert.InDelta(t, cellfixture.NegMaxSto*cellfixture.NegMaxConc,
		floatOf(t, res.Params, params.InitialConcentration(phases[0], params.Negative)), 1e-9)
	assert.InDelta(t, 0.85*28000,
		floatOf(t, res.Params, params.InitialConcentration(phases[1], params.Negative)), 1e-9)
}

func TestPhaseDataMismatch(t *testing.T) {
	t.Run("blended request on single data", func(t *testing.T) {
		req := DefaultRequest()
		req.BlendedElectrode = [2]bool{true, false}
		_, err := derive(t, cellfixture.Single(), req)
		assert.ErrorIs(t, err, ErrDataAvailability)
	})
	t.Run("single request on blended data", func(t *testing.T) {
		_, err := derive(t, cellfixture.Blended(), DefaultRequest())
		assert.ErrorIs(t, err, ErrDataAvailability)
	})
}

func TestPositiveBlendAlwaysFails(t *testing.T) {
	for _, blended := range [][2]bool{{false, true}, {true, true}} {
		req := DefaultRequest()
		req.BlendedElectrode = blended
		_, err := derive(t, cellfixture.Blended(), req)
		assert.ErrorIs(t, err, ErrConfig, "%v", blended)
	}
}

func TestDegradationWithBlendFailsUntouched(t *testing.T) {
	base := cellfixture.Blended()
	snapshot := base.Clone()

	req := DefaultRequest()
	req.BlendedElectrode = [2]bool{true, false}
	req.DegradationState = map[string]float64{DegLLI: 0.1}
	res, err := derive(t, base, req)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrConfig)
	assert.True(t, base.Equal(snapshot))
}

func TestOCVRoundTrip(t *testing.T) {
	base := cellfixture.Single()
	curve, err := electrochem.ThermodynamicOCV(base, electrochem.DefaultCurvePoints)
	require.NoError(t, err)

	for _, soc := range []float64{0.3, 0.75} {
		v := curve.VoltageAt(soc)
		req := DefaultRequest()
		req.OCVInit = &v
		res := mustDerive(t, base, req)
		assert.InDelta(t, soc, res.SOC, 1e-3)
		// the voltage operating point is away from both ends
		assert.Len(t, res.Model.Events, 9)
	}
}

func TestSOCDefinitionIdentity(t *testing.T) {
	base := cellfixture.Single()
	curve, err := electrochem.ThermodynamicOCV(base, 11)
	require.NoError(t, err)

	req := DefaultRequest()
	req.SOCInit = 0.4
	req.SOCDefinition = &SOCDefinition{SOC: curve.SOC, OCV: curve.OCV}
	res := mustDerive(t, base, req)
	assert.InDelta(t, 0.4, res.SOC, 1e-6)
}

func TestTrimModelEvents(t *testing.T) {
	base := cellfixture.Single()
	cases := []struct {
		name    string
		soc     float64
		trim    bool
		removed string
		events  int
	}{
		{name: "near full", soc: 0.99, trim: true, removed: "Maximum voltage", events: 7},
		{name: "middle", soc: 0.5, trim: true, events: 9},
		{name: "near empty", soc: 0.02, trim: true, removed: "Minimum voltage", events: 7},
		{name: "disabled", soc: 0.99, trim: false, events: 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := DefaultRequest()
			req.SOCInit = tc.soc
			req.TrimModelEvents = tc.trim
			res := mustDerive(t, base, req)

			names := res.Model.EventNames()
			assert.Len(t, names, tc.events)
			for _, n := range names {
				if tc.removed != "" {
					assert.NotContains(t, n, tc.removed)
				}
			}
			if tc.removed == "Maximum voltage" {
				assert.Contains(t, names, "Minimum voltage [V]")
			}
		})
	}
}

func TestTrimUsesResolvedSOCOnlyForVoltage(t *testing.T) {
	base := cellfixture.Single()
	curve, err := electrochem.ThermodynamicOCV(base, electrochem.DefaultCurvePoints)
	require.NoError(t, err)

	t.Run("voltage near full trims despite a low fraction", func(t *testing.T) {
		v := curve.VoltageAt(0.99)
		req := DefaultRequest()
		req.SOCInit = 0.5
		req.OCVInit = &v
		res := mustDerive(t, base, req)
		assert.Greater(t, res.SOC, 1-socTolerance)
		assert.NotContains(t, res.Model.EventNames(), "Maximum voltage [V]")
	})

	t.Run("mid voltage keeps events despite a full fraction", func(t *testing.T) {
		v := curve.VoltageAt(0.5)
		req := DefaultRequest()
		req.SOCInit = 1
		req.OCVInit = &v
		res := mustDerive(t, base, req)
		assert.Len(t, res.Model.Events, 9)
	})

	t.Run("soc definition trims on the requested fraction", func(t *testing.T) {
		// external 0..1 spans thermodynamic 0.1..0.9
		req := DefaultRequest()
		req.SOCInit = 0.99
		req.SOCDefinition = &SOCDefinition{
			SOC:    []float64{0, 1},
			OCV:    []float64{curve.VoltageAt(0.1), curve.VoltageAt(0.9)},
			Method: electrochem.MethodLinearEndpoints,
		}
		res := mustDerive(t, base, req)
		assert.Less(t, res.SOC, 1-socTolerance)
		assert.NotContains(t, res.Model.EventNames(), "Maximum voltage [V]")
	})
}

func TestGenericFunctionsLeaveNoResidue(t *testing.T) {
	const param = "Electrolyte conductivity [S.m-1]"
	base := cellfixture.Single()
	base[param+" func_type polynomial_arrhenius"] = params.Text("")
	base[param+" coeffs.0"] = params.Scalar(0.1)
	base[param+" coeffs.1"] = params.Scalar(0.001)
	base[param+" Ea"] = params.Scalar(17000)

	res := mustDerive(t, base, DefaultRequest())
	for k := range res.Params {
		assert.False(t, strings.HasPrefix(k, param+" "), "residual entry %q", k)
	}
	got, err := res.Params[param].Eval(1000, 298.15)
	require.NoError(t, err)
	assert.InDelta(t, 1.1, got, 1e-12)
}

func TestExtraOptionConflict(t *testing.T) {
	req := DefaultRequest()
	req.ExtraModelOptions = model.Options{optParticlePhases: "2"}
	_, err := derive(t, cellfixture.Single(), req)
	assert.ErrorIs(t, err, ErrOptionConflict)
	assert.Contains(t, err.Error(), "particle phases")

	req.ExtraModelOptions = model.Options{"surface form": "differential"}
	res := mustDerive(t, cellfixture.Single(), req)
	assert.Equal(t, "differential", res.Options["surface form"])
}

func TestDeriveUsesFactory(t *testing.T) {
	f := new(MockFactory)
	built := &model.Model{Type: model.SPM, Events: []model.Event{{Name: "Maximum voltage [V]"}, {Name: "Minimum voltage [V]"}}}
	f.On("New", model.SPM, mock.MatchedBy(func(o model.Options) bool {
		phases, ok := o[optParticlePhases].([]string)
		return ok && len(phases) == 2
	})).Return(built, nil).Once()

	req := DefaultRequest()
	req.ModelType = model.SPM
	res, err := NewDeriver(nil, f).Derive(context.Background(), cellfixture.Single(), req)
	require.NoError(t, err)
	assert.Same(t, built, res.Model)
	assert.Equal(t, []string{"Minimum voltage [V]"}, res.Model.EventNames())
	f.AssertExpectations(t)
}

func TestDeriveFactoryError(t *testing.T) {
	f := new(MockFactory)
	f.On("New", mock.Anything, mock.Anything).Return(nil, model.ErrUnknownOption).Once()

	_, err := NewDeriver(nil, f).Derive(context.Background(), cellfixture.Single(), DefaultRequest())
	assert.ErrorIs(t, err, model.ErrUnknownOption)
	var se *StageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "model", se.Stage)
}

func TestGetParamsWithSource(t *testing.T) {
	src := new(MockSource)
	src.On("Resolve", "cells/parent.json", "fresh").Return("cells/fresh.json", nil).Once()
	src.On("Load", "cells/fresh.json").Return(cellfixture.Single(), nil).Once()

	req := DefaultRequest()
	req.Path = "cells/parent.json"
	req.ParameterSet = "fresh"
	res, err := NewDeriver(src, model.DefaultFactory{}).GetParams(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "cells/fresh.json", res.Source)
	src.AssertExpectations(t)
}

func TestGetParamsSourceError(t *testing.T) {
	src := new(MockSource)
	src.On("Resolve", "missing.json", "").Return("", errors.New("no such file")).Once()

	req := DefaultRequest()
	req.Path = "missing.json"
	_, err := NewDeriver(src, model.DefaultFactory{}).GetParams(context.Background(), req)
	assert.ErrorIs(t, err, ErrConfig)
	src.AssertNotCalled(t, "Load", mock.Anything)
}

func TestGetParamsFromDocument(t *testing.T) {
	req := DefaultRequest()
	req.Path = "../bpx/testdata/parent.json"
	res, err := GetParams(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, res.Source, "cell.json")
	assert.Equal(t, params.KindFunction, res.Params[params.ExchangeCurrentDensity(params.SinglePhase, params.Negative)].Kind())
	assert.False(t, res.Params.Has("Negative electrode exchange-current density pre-multiplier"))
}

func TestDeriveCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDeriver(nil, model.DefaultFactory{}).Derive(ctx, cellfixture.Single(), DefaultRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipelineOrdersStages(t *testing.T) {
	var ran []string
	stage := func(name string, order int) Stage {
		return NewStage(name, order, func(*DeriveContext) (params.Patch, error) {
			ran = append(ran, name)
			return params.NewPatch(), nil
		})
	}
	p := New("test", stage("c", 30), stage("a", 10), stage("b1", 20), stage("b2", 20))
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, p.Stages())

	dc := newDeriveContext(params.Set{}, DefaultRequest(), nil)
	require.NoError(t, p.Run(context.Background(), dc))
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, ran)
	assert.Len(t, dc.reports, 4)
}
