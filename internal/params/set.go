// Package params holds the parameter mapping threaded through the derivation
// pipeline, its value variant and the explicit patches stages produce.
package params

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrMissing = errors.New("params: missing parameter")

// Set maps parameter names (with embedded units, electrode and phase) to
// values. A Set is owned by one derivation at a time.
type Set map[string]Value

// Get returns the value for key or an error wrapping ErrMissing.
func (s Set) Get(key string) (Value, error) {
	v, ok := s[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: %q", ErrMissing, key)
	}
	return v, nil
}

// Float returns a scalar parameter.
func (s Set) Float(key string) (float64, error) {
	v, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("params: %q is a %s, want scalar", key, v.Kind())
	}
	return f, nil
}

// FloatOr returns a scalar parameter or def when absent.
func (s Set) FloatOr(key string, def float64) (float64, error) {
	if !s.Has(key) {
		return def, nil
	}
	return s.Float(key)
}

func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Keys returns the sorted key list.
func (s Set) Keys() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// KeysContaining returns the sorted keys that contain sub.
func (s Set) KeysContaining(sub string) []string {
	var out []string
	for k := range s {
		if strings.Contains(k, sub) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// AnyContains reports whether any key contains sub.
func (s Set) AnyContains(sub string) bool {
	for k := range s {
		if strings.Contains(k, sub) {
			return true
		}
	}
	return false
}

// Clone returns a shallow copy; values are immutable so this is enough to
// isolate a derivation from its input.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Apply writes the produced keys of p and then removes its consumed keys.
func (s Set) Apply(p Patch) {
	for k, v := range p.Set {
		s[k] = v
	}
	for _, k := range p.Delete {
		delete(s, k)
	}
}

// Equal compares two sets by key and exported representation. Functions are
// equal when their labels match.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		o, ok := other[k]
		if !ok || v.Kind() != o.Kind() {
			return false
		}
		a, _ := v.MarshalJSON()
		b, _ := o.MarshalJSON()
		if string(a) != string(b) {
			return false
		}
	}
	return true
}
