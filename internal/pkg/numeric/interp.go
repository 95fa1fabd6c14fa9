// Package numeric wraps the gonum routines used across the derivation
// pipeline: clamped interpolation over tabulated data, uniform grids and a
// bracketed scalar root search.
package numeric

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

var ErrTooFewPoints = errors.New("numeric: at least two distinct points required")

// Linear is a piecewise-linear fit that holds the end values outside the
// sampled range.
type Linear struct {
	pl     interp.PiecewiseLinear
	xs, ys []float64
}

// NewLinear fits xs/ys. Samples are sorted by x and repeated x values keep
// their first y, so callers may pass descending or noisy grids.
func NewLinear(xs, ys []float64) (*Linear, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("numeric: length mismatch x=%d y=%d", len(xs), len(ys))
	}
	sx, sy := sortedUnique(xs, ys)
	if len(sx) < 2 {
		return nil, ErrTooFewPoints
	}
	lin := &Linear{xs: sx, ys: sy}
	if err := lin.pl.Fit(sx, sy); err != nil {
		return nil, fmt.Errorf("numeric: fit failed: %w", err)
	}
	return lin, nil
}

// At evaluates the fit at x.
func (l *Linear) At(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case x <= l.xs[0]:
		return l.ys[0]
	case x >= l.xs[len(l.xs)-1]:
		return l.ys[len(l.ys)-1]
	}
	return l.pl.Predict(x)
}

// Domain returns the sampled x range.
func (l *Linear) Domain() (lo, hi float64) {
	return l.xs[0], l.xs[len(l.xs)-1]
}

// Linspace returns n evenly spaced values over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Bisect finds a root of f in [lo, hi]. ok is false when f does not change
// sign over the bracket; the endpoint with the smaller residual is returned.
func Bisect(f func(float64) float64, lo, hi, tol float64, maxIter int) (root float64, ok bool) {
	flo, fhi := f(lo), f(hi)
	if flo == 0 {
		return lo, true
	}
	if fhi == 0 {
		return hi, true
	}
	if math.Signbit(flo) == math.Signbit(fhi) {
		if math.Abs(flo) < math.Abs(fhi) {
			return lo, false
		}
		return hi, false
	}
	for i := 0; i < maxIter; i++ {
		mid := 0.5 * (lo + hi)
		fmid := f(mid)
		if fmid == 0 || 0.5*(hi-lo) < tol {
			return mid, true
		}
		if math.Signbit(fmid) == math.Signbit(flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), true
}

func sortedUnique(xs, ys []float64) ([]float64, []float64) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	sx := make([]float64, 0, len(xs))
	sy := make([]float64, 0, len(ys))
	for _, i := range idx {
		if math.IsNaN(xs[i]) {
			continue
		}
		if n := len(sx); n > 0 && sx[n-1] == xs[i] {
			continue
		}
		sx = append(sx, xs[i])
		sy = append(sy, ys[i])
	}
	return sx, sy
}
