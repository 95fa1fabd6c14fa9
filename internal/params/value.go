package params

import (
	"encoding/json"
	"fmt"
	"math"

	"bpxgen/internal/pkg/numeric"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindArray
	KindTable
	KindFunction
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	case KindFunction:
		return "function"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Func is a synthesized parameter function. The argument order is fixed per
// parameter family:
//
//	exchange-current density      (c_e, c_s_surf, c_s_max, T)
//	electrolyte and generic c_e-T (c_e, T)
//	OCP, particle diffusivity     (sto, T)
type Func func(args ...float64) float64

// Value is one entry of a parameter Set.
type Value struct {
	kind   Kind
	scalar float64
	xs, ys []float64
	fn     Func
	label  string
	text   string
}

func Scalar(v float64) Value { return Value{kind: KindScalar, scalar: v} }

func Array(vs []float64) Value {
	return Value{kind: KindArray, ys: append([]float64(nil), vs...)}
}

// Table holds y sampled at x; it evaluates by linear interpolation on the
// first argument.
func Table(xs, ys []float64) Value {
	return Value{kind: KindTable, xs: append([]float64(nil), xs...), ys: append([]float64(nil), ys...)}
}

// Function wraps fn. label is a human readable signature used in exports.
func Function(fn Func, label string) Value {
	return Value{kind: KindFunction, fn: fn, label: label}
}

func Text(s string) Value { return Value{kind: KindText, text: s} }

func (v Value) Kind() Kind { return v.kind }

// Float returns the scalar payload.
func (v Value) Float() (float64, bool) {
	if v.kind != KindScalar {
		return 0, false
	}
	return v.scalar, true
}

// Points returns copies of the table (or array) data.
func (v Value) Points() (xs, ys []float64) {
	return append([]float64(nil), v.xs...), append([]float64(nil), v.ys...)
}

func (v Value) Label() string { return v.label }

func (v Value) String() string {
	switch v.kind {
	case KindScalar:
		return fmt.Sprintf("%g", v.scalar)
	case KindArray:
		return fmt.Sprintf("array[%d]", len(v.ys))
	case KindTable:
		return fmt.Sprintf("table[%d]", len(v.xs))
	case KindFunction:
		if v.label == "" {
			return "function"
		}
		return v.label
	default:
		return v.text
	}
}

// Func returns a callable view of any numeric variant. Scalars are constant,
// tables interpolate on args[0].
func (v Value) Func() (Func, error) {
	switch v.kind {
	case KindScalar:
		c := v.scalar
		return func(...float64) float64 { return c }, nil
	case KindTable:
		lin, err := numeric.NewLinear(v.xs, v.ys)
		if err != nil {
			return nil, err
		}
		return func(args ...float64) float64 {
			if len(args) == 0 {
				return math.NaN()
			}
			return lin.At(args[0])
		}, nil
	case KindFunction:
		if v.fn == nil {
			return nil, fmt.Errorf("params: nil function")
		}
		return v.fn, nil
	default:
		return nil, fmt.Errorf("params: %s value is not callable", v.kind)
	}
}

// Eval evaluates the value at args.
func (v Value) Eval(args ...float64) (float64, error) {
	fn, err := v.Func()
	if err != nil {
		return 0, err
	}
	return fn(args...), nil
}

// Scale multiplies the value by mul. Functions are wrapped, never re-fitted.
func (v Value) Scale(mul float64) (Value, error) {
	switch v.kind {
	case KindScalar:
		return Scalar(v.scalar * mul), nil
	case KindArray:
		out := Array(v.ys)
		for i := range out.ys {
			out.ys[i] *= mul
		}
		return out, nil
	case KindTable:
		out := Table(v.xs, v.ys)
		for i := range out.ys {
			out.ys[i] *= mul
		}
		return out, nil
	case KindFunction:
		inner := v.fn
		label := v.label
		if label == "" {
			label = "function"
		}
		return Function(func(args ...float64) float64 {
			return mul * inner(args...)
		}, fmt.Sprintf("%g * %s", mul, label)), nil
	default:
		return Value{}, fmt.Errorf("params: cannot scale %s value", v.kind)
	}
}

// MarshalJSON exports numbers, arrays and tables as data and functions by
// their label.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.export())
}

// MarshalYAML mirrors MarshalJSON for yaml.v3 encoders.
func (v Value) MarshalYAML() (any, error) {
	return v.export(), nil
}

func (v Value) export() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindArray:
		return v.ys
	case KindTable:
		return map[string][]float64{"x": v.xs, "y": v.ys}
	case KindFunction:
		return map[string]string{"function": v.String()}
	default:
		return v.text
	}
}
