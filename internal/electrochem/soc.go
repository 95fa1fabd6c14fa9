package electrochem

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/optimize"
)

// Method selects how an external OCV-SOC scale maps onto the thermodynamic
// one.
type Method string

const (
	// MethodVoltage matches the OCV the external curve gives at the SOC.
	MethodVoltage Method = "voltage"
	// MethodLinearEndpoints maps linearly through the curve's end voltages.
	MethodLinearEndpoints Method = "linear_endpoints"
	// MethodLinearOptimized maps linearly with the least-squares best fit
	// over the whole curve.
	MethodLinearOptimized Method = "linear_optimized"
)

var Methods = []Method{MethodVoltage, MethodLinearEndpoints, MethodLinearOptimized}

// ParseMethod validates s; an empty string means MethodVoltage.
func ParseMethod(s string) (Method, error) {
	if s == "" {
		return MethodVoltage, nil
	}
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = string(m)
	}
	return "", fmt.Errorf("unsupported SOC conversion method %q (supported: %s)", s, strings.Join(names, ", "))
}

// ConvertSOC reads soc on the external scale and returns the thermodynamic
// SOC, clamped to [0, 1].
func ConvertSOC(soc float64, external, thermo *Curve, method Method) (float64, error) {
	var out float64
	switch method {
	case MethodVoltage, "":
		out = thermo.SOCAt(external.VoltageAt(soc))
	case MethodLinearEndpoints:
		a, b := endpointMap(external, thermo)
		out = a + b*soc
	case MethodLinearOptimized:
		a, b, err := optimizedMap(external, thermo)
		if err != nil {
			return 0, err
		}
		out = a + b*soc
	default:
		return 0, fmt.Errorf("unsupported SOC conversion method %q", method)
	}
	return clamp01(out), nil
}

// endpointMap returns (a, b) with s_thermo = a + b*s_external through the
// thermodynamic SOCs that match the external curve's end voltages.
func endpointMap(external, thermo *Curve) (a, b float64) {
	lo, hi := external.Endpoints()
	s0 := thermo.SOCAt(external.VoltageAt(lo))
	s1 := thermo.SOCAt(external.VoltageAt(hi))
	b = (s1 - s0) / (hi - lo)
	return s0 - b*lo, b
}

func optimizedMap(external, thermo *Curve) (a, b float64, err error) {
	a0, b0 := endpointMap(external, thermo)
	problem := optimize.Problem{
		Func: func(p []float64) float64 {
			var sum float64
			for i, s := range external.SOC {
				d := thermo.VoltageAt(p[0]+p[1]*s) - external.OCV[i]
				sum += d * d
			}
			return sum
		},
	}
	res, err := optimize.Minimize(problem, []float64{a0, b0}, nil, &optimize.NelderMead{})
	if res == nil {
		return 0, 0, fmt.Errorf("linear_optimized fit: %w", err)
	}
	// an iteration-limit status still carries the best point found
	if math.IsNaN(res.F) {
		return 0, 0, fmt.Errorf("linear_optimized fit did not converge: %v", err)
	}
	return res.X[0], res.X[1], nil
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
