package params

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueScale(t *testing.T) {
	t.Run("scalar", func(t *testing.T) {
		v, err := Scalar(2).Scale(0.5)
		require.NoError(t, err)
		f, ok := v.Float()
		assert.True(t, ok)
		assert.Equal(t, 1.0, f)
	})

	t.Run("table scales y only", func(t *testing.T) {
		src := Table([]float64{0, 1}, []float64{2, 4})
		v, err := src.Scale(0.5)
		require.NoError(t, err)
		xs, ys := v.Points()
		assert.Equal(t, []float64{0, 1}, xs)
		assert.Equal(t, []float64{1, 2}, ys)
		_, origY := src.Points()
		assert.Equal(t, []float64{2, 4}, origY)
	})

	t.Run("function is wrapped", func(t *testing.T) {
		fn := Function(func(args ...float64) float64 { return args[0] * 10 }, "f(c_e)")
		v, err := fn.Scale(0.25)
		require.NoError(t, err)
		assert.Equal(t, KindFunction, v.Kind())
		got, err := v.Eval(2)
		require.NoError(t, err)
		assert.InDelta(t, 5.0, got, 1e-12)
		assert.Equal(t, "0.25 * f(c_e)", v.String())
	})

	t.Run("text fails", func(t *testing.T) {
		_, err := Text("x").Scale(2)
		assert.Error(t, err)
	})
}

func TestValueEvalTable(t *testing.T) {
	v := Table([]float64{0, 0.5, 1}, []float64{1, 2, 4})
	got, err := v.Eval(0.75)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got, 1e-12)

	got, err = v.Eval(2)
	require.NoError(t, err)
	assert.Equal(t, 4.0, got)
}

func TestSetGetMissing(t *testing.T) {
	s := Set{"a": Scalar(1)}
	_, err := s.Get("b")
	assert.ErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), `"b"`)

	_, err = Set{"t": Text("x")}.Float("t")
	assert.Error(t, err)
}

func TestSetApplyAndClone(t *testing.T) {
	base := Set{"a": Scalar(1), "b": Scalar(2)}
	work := base.Clone()

	p := NewPatch()
	p.Put("c", Scalar(3))
	p.Remove("a")
	work.Apply(p)

	assert.Equal(t, []string{"b", "c"}, work.Keys())
	assert.Equal(t, []string{"a", "b"}, base.Keys())
	assert.Equal(t, []string{"c"}, p.Produced())
	assert.Equal(t, []string{"a"}, p.Consumed())
}

func TestPatchLaterOperationWins(t *testing.T) {
	p := NewPatch()
	p.Put("k", Scalar(1))
	p.Remove("k")
	assert.Empty(t, p.Produced())
	assert.Equal(t, []string{"k"}, p.Consumed())

	q := NewPatch()
	q.Put("k", Scalar(2))
	p.Merge(q)
	assert.Equal(t, []string{"k"}, p.Produced())
	assert.Empty(t, p.Consumed())
}

func TestValueJSON(t *testing.T) {
	s := Set{
		"scalar": Scalar(1.5),
		"table":  Table([]float64{0, 1}, []float64{3, 4}),
		"fn":     Function(func(...float64) float64 { return 0 }, "j0(c_e, c_s_surf, c_s_max, T)"),
	}
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"scalar": 1.5,
		"table": {"x": [0, 1], "y": [3, 4]},
		"fn": {"function": "j0(c_e, c_s_surf, c_s_max, T)"}
	}`, string(raw))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "Negative electrode OCP [V]", OCP(SinglePhase, Negative))
	assert.Equal(t, "Primary: Positive electrode lithiation OCP [V]", BranchOCP("Primary: ", Positive, "lithiation"))
	assert.Equal(t, "Maximum concentration in negative electrode [mol.m-3]", MaxConcentration(SinglePhase, Negative))
	assert.Equal(t, "Secondary: Initial hysteresis state in negative electrode", InitialHysteresisState("Secondary: ", Negative))
	assert.Equal(t, []Phase{"Primary: ", "Secondary: "}, MaterialPhases())
}
