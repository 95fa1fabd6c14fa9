package electrochem

import (
	"errors"
	"fmt"

	"bpxgen/internal/params"
	"bpxgen/internal/pkg/numeric"
)

var ErrBoundsUnsolvable = errors.New("electrochem: cut-off voltage not reachable with the lithium inventory")

const (
	boundsTol     = 1e-10
	boundsMaxIter = 200
)

// InitOptions configures InitialConcentrations.
type InitOptions struct {
	Phases Phases
	// Models is the OCP model per electrode and phase; nil means single.
	Models [2][]OCPModel
	// Branches is the starting electrode branch from InitBranches.
	Branches [2]string
	// SOC is the thermodynamic state of charge in [0, 1].
	SOC float64
	// UpdateBounds re-solves the stoichiometry limits from the lithium
	// inventory and the cut-off voltages before placing the SOC.
	UpdateBounds bool
}

// InitialConcentrations places every electrode phase at opts.SOC and returns
// the initial concentrations (and, when requested, the new stoichiometry
// limits and hysteresis states) as a patch.
func InitialConcentrations(set params.Set, opts InitOptions) (params.Patch, error) {
	patch := params.NewPatch()
	view := set
	if opts.UpdateBounds {
		bp, err := updateBounds(set)
		if err != nil {
			return params.Patch{}, err
		}
		view = set.Clone()
		view.Apply(bp)
		patch.Merge(bp)
	}

	for _, e := range params.Electrodes {
		for i, ph := range opts.Phases[e] {
			at0, at100, err := bounds(view, ph, e)
			if err != nil {
				return params.Patch{}, err
			}
			cmax, err := view.Float(params.MaxConcentration(ph, e))
			if err != nil {
				return params.Patch{}, err
			}
			sto := stoichiometry(at0, at100, opts.SOC)
			patch.Put(params.InitialConcentration(ph, e), params.Scalar(sto*cmax))

			if modelAt(opts.Models[e], i) == OCPWycisk && opts.Branches[e] != "" {
				patch.Put(params.InitialHysteresisState(ph, e), params.Scalar(hysteresisState(opts.Branches[e])))
			}
		}
	}
	return patch, nil
}

func modelAt(models []OCPModel, i int) OCPModel {
	if i < len(models) {
		return models[i]
	}
	return OCPSingle
}

// hysteresisState is -1 on the lithiation branch and +1 on delithiation.
func hysteresisState(branch string) float64 {
	if branch == Lithiation {
		return -1
	}
	return 1
}

// updateBounds solves x(SOC 100) and x(SOC 0) of a single-phase cell from
// lithium conservation x*Qn + y*Qp = n_Li and the cut-off voltages.
func updateBounds(set params.Set) (params.Patch, error) {
	nli, err := set.Float(params.CyclableLithium)
	if err != nil {
		return params.Patch{}, err
	}
	vmin, err := set.Float(params.LowerCutoff)
	if err != nil {
		return params.Patch{}, err
	}
	vmax, err := set.Float(params.UpperCutoff)
	if err != nil {
		return params.Patch{}, err
	}
	var q [2]float64
	var u [2]func(float64) float64
	t := referenceTemperature(set)
	for _, e := range params.Electrodes {
		if q[e], err = capacity(set, params.SinglePhase, e); err != nil {
			return params.Patch{}, err
		}
		if u[e], err = ocpFunc(set, params.SinglePhase, e, t); err != nil {
			return params.Patch{}, err
		}
	}
	qn, qp := q[params.Negative], q[params.Positive]
	if qn <= 0 || qp <= 0 {
		return params.Patch{}, fmt.Errorf("electrochem: non-positive electrode capacity")
	}
	y := func(x float64) float64 { return (nli - x*qn) / qp }

	// y stays within [0, 1]
	lo := max(0, (nli-qp)/qn)
	hi := min(1, nli/qn)
	if lo >= hi {
		return params.Patch{}, ErrBoundsUnsolvable
	}

	solve := func(v float64) (float64, error) {
		x, ok := numeric.Bisect(func(x float64) float64 {
			return u[params.Positive](y(x)) - u[params.Negative](x) - v
		}, lo, hi, boundsTol, boundsMaxIter)
		if !ok {
			return 0, fmt.Errorf("%w (%.3f V)", ErrBoundsUnsolvable, v)
		}
		return x, nil
	}
	x100, err := solve(vmax)
	if err != nil {
		return params.Patch{}, err
	}
	x0, err := solve(vmin)
	if err != nil {
		return params.Patch{}, err
	}

	patch := params.NewPatch()
	ph, neg, pos := params.SinglePhase, params.Negative, params.Positive
	patch.Put(params.MinStoichiometry(ph, neg), params.Scalar(x0))
	patch.Put(params.MaxStoichiometry(ph, neg), params.Scalar(x100))
	patch.Put(params.MinStoichiometry(ph, pos), params.Scalar(y(x100)))
	patch.Put(params.MaxStoichiometry(ph, pos), params.Scalar(y(x0)))
	return patch, nil
}
