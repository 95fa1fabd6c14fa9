package electrochem

import (
	"errors"
	"fmt"

	"bpxgen/internal/params"
	"bpxgen/internal/pkg/numeric"
)

// DefaultCurvePoints is the SOC grid size used for the thermodynamic OCV.
const DefaultCurvePoints = 201

var ErrNotMonotonic = errors.New("electrochem: OCV is not monotonic in SOC")

// Curve is an OCV-SOC relation sampled on ascending SOC.
type Curve struct {
	SOC []float64
	OCV []float64

	toV   *numeric.Linear
	toSOC *numeric.Linear
}

// NewCurve fits an OCV-SOC relation given as paired samples.
func NewCurve(soc, ocv []float64) (*Curve, error) {
	toV, err := numeric.NewLinear(soc, ocv)
	if err != nil {
		return nil, fmt.Errorf("ocv curve: %w", err)
	}
	toSOC, err := numeric.NewLinear(ocv, soc)
	if err != nil {
		return nil, fmt.Errorf("ocv curve: %w", err)
	}
	return &Curve{
		SOC:   append([]float64(nil), soc...),
		OCV:   append([]float64(nil), ocv...),
		toV:   toV,
		toSOC: toSOC,
	}, nil
}

// VoltageAt interpolates the OCV at soc.
func (c *Curve) VoltageAt(soc float64) float64 { return c.toV.At(soc) }

// SOCAt inverts the curve at v; values beyond the curve clamp to its ends.
func (c *Curve) SOCAt(v float64) float64 { return c.toSOC.At(v) }

// Endpoints returns the SOC range of the samples.
func (c *Curve) Endpoints() (lo, hi float64) { return c.toV.Domain() }

// ThermodynamicOCV samples U_pos(y(s)) - U_neg(x(s)) on n evenly spaced SOC
// values at the reference temperature. It requires a single-phase set.
func ThermodynamicOCV(set params.Set, n int) (*Curve, error) {
	if n < 2 {
		n = DefaultCurvePoints
	}
	t := referenceTemperature(set)
	var (
		u          [2]func(float64) float64
		at0, at100 [2]float64
	)
	for _, e := range params.Electrodes {
		fn, err := ocpFunc(set, params.SinglePhase, e, t)
		if err != nil {
			return nil, err
		}
		u[e] = fn
		if at0[e], at100[e], err = bounds(set, params.SinglePhase, e); err != nil {
			return nil, err
		}
	}
	soc := numeric.Linspace(0, 1, n)
	ocv := make([]float64, n)
	for i, s := range soc {
		x := stoichiometry(at0[params.Negative], at100[params.Negative], s)
		y := stoichiometry(at0[params.Positive], at100[params.Positive], s)
		ocv[i] = u[params.Positive](y) - u[params.Negative](x)
	}
	for i := 1; i < n; i++ {
		if ocv[i] <= ocv[i-1] {
			return nil, fmt.Errorf("%w near SOC %.3f", ErrNotMonotonic, soc[i])
		}
	}
	return NewCurve(soc, ocv)
}
