package funcs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bpxgen/internal/params"
)

const funcTypeTag = " func_type "

// BuildGeneric synthesizes every parameter declared with a
// "<param> func_type <type>" marker from its "<param> <coefficient>"
// siblings. The marker and all siblings are consumed.
func BuildGeneric(set params.Set) (params.Patch, error) {
	patch := params.NewPatch()
	tref, _ := set.FloatOr(params.ReferenceTemperature, 0)
	for _, marker := range set.KeysContaining(funcTypeTag) {
		param, funcType, _ := strings.Cut(marker, funcTypeTag)
		funcType = strings.TrimSpace(funcType)
		prefix := param + " "

		flat := make(map[string]params.Value)
		consumed := []string{marker}
		for _, k := range set.Keys() {
			if k == marker || !strings.HasPrefix(k, prefix) {
				continue
			}
			consumed = append(consumed, k)
			if strings.Contains(k, funcTypeTag) {
				continue
			}
			flat[strings.TrimPrefix(k, prefix)] = set[k]
		}
		tree, err := Unflatten(flat)
		if err != nil {
			return params.Patch{}, fmt.Errorf("%s: %w", param, err)
		}
		fn, err := MakeGeneric(funcType, Coeffs{tree: tree, tref: tref})
		if err != nil {
			return params.Patch{}, fmt.Errorf("%s: %w", param, err)
		}
		patch.Put(param, fn)
		patch.Remove(consumed...)
	}
	return patch, nil
}

// Unflatten turns dotted coefficient names ("pieces.0.coeffs") into a nested
// tree of map[string]any whose leaves are params.Value.
func Unflatten(flat map[string]params.Value) (map[string]any, error) {
	root := make(map[string]any)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts := strings.Split(k, ".")
		node := root
		for i, part := range parts {
			if i == len(parts)-1 {
				if _, exists := node[part]; exists {
					return nil, fmt.Errorf("coefficient %q collides with a nested group", k)
				}
				node[part] = flat[k]
				break
			}
			next, ok := node[part]
			if !ok {
				child := make(map[string]any)
				node[part] = child
				node = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("coefficient %q nests under a value", k)
			}
			node = child
		}
	}
	return root, nil
}

// Coeffs is a read view over an unflattened coefficient tree.
type Coeffs struct {
	tree map[string]any
	tref float64
}

// NewCoeffs wraps tree; tref is the fallback for a missing "Tref".
func NewCoeffs(tree map[string]any, tref float64) Coeffs {
	return Coeffs{tree: tree, tref: tref}
}

func (c Coeffs) Float(name string) (float64, error) {
	v, ok := c.tree[name].(params.Value)
	if !ok {
		return 0, fmt.Errorf("missing coefficient %q", name)
	}
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("coefficient %q is a %s, want scalar", name, v.Kind())
	}
	return f, nil
}

func (c Coeffs) FloatOr(name string, def float64) (float64, error) {
	if _, ok := c.tree[name]; !ok {
		return def, nil
	}
	return c.Float(name)
}

// Floats reads a coefficient vector given either as an array value or as an
// index-keyed group ("coeffs.0", "coeffs.1", ...).
func (c Coeffs) Floats(name string) ([]float64, error) {
	return floatsOf(name, c.tree[name])
}

// Group returns a nested coefficient group.
func (c Coeffs) Group(name string) (Coeffs, error) {
	sub, ok := c.tree[name].(map[string]any)
	if !ok {
		return Coeffs{}, fmt.Errorf("missing coefficient group %q", name)
	}
	return Coeffs{tree: sub, tref: c.tref}, nil
}

// Len reports the number of entries of an index-keyed group.
func (c Coeffs) Len() int { return len(c.tree) }

// Arrhenius reads the optional "Ea" and "Tref" coefficients.
func (c Coeffs) Arrhenius() (ea, tref float64, err error) {
	if ea, err = c.FloatOr("Ea", 0); err != nil {
		return 0, 0, err
	}
	if tref, err = c.FloatOr("Tref", c.tref); err != nil {
		return 0, 0, err
	}
	if ea != 0 && tref <= 0 {
		return 0, 0, fmt.Errorf("activation energy given without a reference temperature")
	}
	return ea, tref, nil
}

func floatsOf(name string, node any) ([]float64, error) {
	switch v := node.(type) {
	case params.Value:
		switch v.Kind() {
		case params.KindArray:
			_, ys := v.Points()
			return ys, nil
		case params.KindScalar:
			f, _ := v.Float()
			return []float64{f}, nil
		}
		return nil, fmt.Errorf("coefficient %q is a %s, want array", name, v.Kind())
	case map[string]any:
		out := make([]float64, len(v))
		for k, item := range v {
			idx, err := strconv.Atoi(k)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("coefficient %q has non-contiguous index %q", name, k)
			}
			leaf, ok := item.(params.Value)
			if !ok {
				return nil, fmt.Errorf("coefficient %q.%s is a group, want scalar", name, k)
			}
			f, ok := leaf.Float()
			if !ok {
				return nil, fmt.Errorf("coefficient %q.%s is a %s, want scalar", name, k, leaf.Kind())
			}
			out[idx] = f
		}
		return out, nil
	case nil:
		return nil, fmt.Errorf("missing coefficient %q", name)
	default:
		return nil, fmt.Errorf("coefficient %q has unexpected shape", name)
	}
}
