package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinear(t *testing.T) {
	// descending input with a repeated x
	lin, err := NewLinear([]float64{1, 0.5, 0.5, 0}, []float64{4, 3, 9, 2})
	require.NoError(t, err)

	lo, hi := lin.Domain()
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	cases := []struct {
		x, want float64
	}{
		{-1, 2},
		{0, 2},
		{0.25, 2.5},
		{0.5, 3},
		{0.75, 3.5},
		{2, 4},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, lin.At(tc.x), 1e-12, "x=%v", tc.x)
	}
	assert.True(t, math.IsNaN(lin.At(math.NaN())))
}

func TestNewLinearErrors(t *testing.T) {
	_, err := NewLinear([]float64{0, 1}, []float64{1})
	assert.ErrorContains(t, err, "length mismatch")

	_, err = NewLinear([]float64{0.5, 0.5}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, Linspace(0, 1, 5))
	assert.Equal(t, []float64{3}, Linspace(3, 4, 1))
}

func TestBisect(t *testing.T) {
	square := func(x float64) float64 { return x*x - 2 }

	cases := []struct {
		name     string
		f        func(float64) float64
		lo, hi   float64
		tol      float64
		want     float64
		wantOK   bool
		accuracy float64
	}{
		{name: "interior root", f: square, lo: 0, hi: 2, tol: 1e-10, want: math.Sqrt2, wantOK: true, accuracy: 1e-10},
		{name: "reversed sign", f: func(x float64) float64 { return 1 - x }, lo: 0, hi: 3, tol: 1e-10, want: 1, wantOK: true, accuracy: 1e-10},
		{name: "root at lower end", f: func(x float64) float64 { return x - 1 }, lo: 1, hi: 2, tol: 1e-10, want: 1, wantOK: true},
		{name: "root at upper end", f: func(x float64) float64 { return x - 1 }, lo: 0, hi: 1, tol: 1e-10, want: 1, wantOK: true},
		{name: "coarse tolerance", f: square, lo: 0, hi: 2, tol: 0.1, want: math.Sqrt2, wantOK: true, accuracy: 0.1},
		{name: "no sign change keeps lower end", f: square, lo: 2, hi: 3, tol: 1e-10, want: 2},
		{name: "no sign change keeps upper end", f: func(x float64) float64 { return -x - 1 }, lo: -3, hi: -2, tol: 1e-10, want: -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root, ok := Bisect(tc.f, tc.lo, tc.hi, tc.tol, 200)
			assert.Equal(t, tc.wantOK, ok)
			assert.InDelta(t, tc.want, root, tc.accuracy)
		})
	}
}

func TestBisectIterationCap(t *testing.T) {
	calls := 0
	f := func(x float64) float64 {
		calls++
		return x - 0.3
	}
	root, ok := Bisect(f, 0, 1, 0, 5)
	assert.True(t, ok)
	assert.InDelta(t, 0.3, root, 1.0/32)
	assert.Equal(t, 7, calls)
}
