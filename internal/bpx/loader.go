package bpx

import (
	"fmt"
	"os"

	"bpxgen/internal/funcs"
	"bpxgen/internal/logger"
	"bpxgen/internal/params"

	"github.com/tidwall/gjson"
)

const (
	sectionCell        = "Cell"
	sectionElectrolyte = "Electrolyte"
	sectionSeparator   = "Separator"
	sectionUser        = "User-defined"
	sectionParticle    = "Particle"

	premultiplierSuffix = "exchange-current density pre-multiplier"
	defaultTref         = 298.15
)

var electrodeSections = [2]string{"Negative electrode", "Positive electrode"}

// Loader resolves and flattens BPX documents.
type Loader struct {
	// Validate checks each document against the BPX schema before flattening.
	Validate bool
}

func NewLoader() *Loader {
	return &Loader{Validate: true}
}

// Resolve implements source resolution for parent and direct documents.
func (l *Loader) Resolve(path, set string) (string, error) {
	return ResolveSource(path, set)
}

// Load reads the BPX document at path and returns its parameters at SOC 1.
func (l *Loader) Load(path string) (params.Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if l.Validate {
		if err := ValidateDocument(raw); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	set, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debugf("bpx loaded path=%s params=%d", path, len(set))
	return set, nil
}

// Parse flattens a direct BPX document into a Set at SOC 1.
func Parse(raw []byte) (params.Set, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(raw)
	kind, err := sniff(doc, "document")
	if err != nil {
		return nil, err
	}
	if kind != KindDocument {
		return nil, fmt.Errorf("bpx: parent document cannot be loaded directly, resolve a parameter set first")
	}
	top := fields(doc.Get("Parameterisation"))

	user := make(params.Set)
	for k, v := range fields(top[sectionUser]) {
		if user[k], err = valueOf(v); err != nil {
			return nil, fmt.Errorf("%s %q: %w", sectionUser, k, err)
		}
	}

	set := make(params.Set)
	if err := copySection(set, top[sectionCell], cellName); err != nil {
		return nil, err
	}
	if err := copySection(set, top[sectionElectrolyte], electrolyteName); err != nil {
		return nil, err
	}
	if err := copySection(set, top[sectionSeparator], separatorName); err != nil {
		return nil, err
	}
	tref, _ := set.FloatOr(params.ReferenceTemperature, defaultTref)

	for _, title := range electrodeSections {
		e, err := sectionElectrode(title)
		if err != nil {
			return nil, err
		}
		if err := loadElectrode(set, user, e, fields(top[title]), tref); err != nil {
			return nil, fmt.Errorf("%s: %w", title, err)
		}
	}

	for k, v := range user {
		set[k] = v
	}
	return set, nil
}

func loadElectrode(set, user params.Set, e params.Electrode, sec map[string]gjson.Result, tref float64) error {
	particle, blended := sec[sectionParticle]
	if !blended {
		return loadPhase(set, user, params.SinglePhase, e, sec, tref)
	}
	// electrode-level entries of a blended electrode carry no phase
	for field, v := range sec {
		if field == sectionParticle {
			continue
		}
		val, err := valueOf(v)
		if err != nil {
			return fmt.Errorf("%q: %w", field, err)
		}
		set[electrodeName(params.SinglePhase, e, field)] = val
	}
	for name, sub := range fields(particle) {
		ph := params.Phase(name + ": ")
		if err := loadPhase(set, user, ph, e, fields(sub), tref); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func loadPhase(set, user params.Set, ph params.Phase, e params.Electrode, sec map[string]gjson.Result, tref float64) error {
	userJ0 := user.Has(params.ElectrodeParam(ph, e, premultiplierSuffix))
	for field, v := range sec {
		if field == sectionParticle {
			continue
		}
		if !userJ0 && (field == fieldRateConstant || field == fieldRateEa) {
			continue
		}
		val, err := valueOf(v)
		if err != nil {
			return fmt.Errorf("%q: %w", field, err)
		}
		set[electrodeName(ph, e, field)] = val
	}

	if !userJ0 {
		if k, ok := scalarField(sec, fieldRateConstant); ok {
			ea, _ := scalarField(sec, fieldRateEa)
			set[params.ExchangeCurrentDensity(ph, e)] = funcs.StandardJ0(k, ea, tref)
		}
	}

	if !set.Has(params.VolumeFraction(ph, e)) {
		a, okA := scalarField(sec, fieldSurfaceArea)
		r, okR := scalarField(sec, fieldParticleRadius)
		if okA && okR {
			// spherical particles: a = 3 eps / R
			set[params.VolumeFraction(ph, e)] = params.Scalar(a * r / 3)
		}
	}

	cmax, okC := scalarField(sec, fieldMaxConc)
	field := fieldMaxSto
	if e == params.Positive {
		field = fieldMinSto
	}
	at100, okS := scalarField(sec, field)
	if okC && okS {
		set[params.InitialConcentration(ph, e)] = params.Scalar(at100 * cmax)
	}
	return nil
}

func copySection(set params.Set, sec gjson.Result, name func(string) string) error {
	for field, v := range fields(sec) {
		val, err := valueOf(v)
		if err != nil {
			return fmt.Errorf("%q: %w", field, err)
		}
		set[name(field)] = val
	}
	return nil
}

// fields lists the members of an object. ForEach is used instead of Get so
// member names containing dots need no escaping.
func fields(r gjson.Result) map[string]gjson.Result {
	out := make(map[string]gjson.Result)
	if !r.IsObject() {
		return out
	}
	r.ForEach(func(k, v gjson.Result) bool {
		out[k.String()] = v
		return true
	})
	return out
}

func scalarField(sec map[string]gjson.Result, field string) (float64, bool) {
	v, ok := sec[field]
	if !ok || v.Type != gjson.Number {
		return 0, false
	}
	return v.Float(), true
}

// valueOf converts one JSON member: numbers become scalars, numeric arrays
// arrays, {"x": [...], "y": [...]} objects tables and everything else text.
func valueOf(v gjson.Result) (params.Value, error) {
	switch {
	case v.Type == gjson.Number:
		return params.Scalar(v.Float()), nil
	case v.Type == gjson.String:
		return params.Text(v.String()), nil
	case v.IsArray():
		xs, err := numbers(v)
		if err != nil {
			return params.Value{}, err
		}
		return params.Array(xs), nil
	case v.IsObject():
		obj := fields(v)
		x, okX := obj["x"]
		y, okY := obj["y"]
		if !okX || !okY || len(obj) != 2 {
			return params.Text(v.Raw), nil
		}
		xs, err := numbers(x)
		if err != nil {
			return params.Value{}, err
		}
		ys, err := numbers(y)
		if err != nil {
			return params.Value{}, err
		}
		if len(xs) != len(ys) {
			return params.Value{}, fmt.Errorf("table x has %d points, y has %d", len(xs), len(ys))
		}
		return params.Table(xs, ys), nil
	default:
		return params.Text(v.Raw), nil
	}
}

func numbers(v gjson.Result) ([]float64, error) {
	if !v.IsArray() {
		return nil, fmt.Errorf("want an array of numbers")
	}
	items := v.Array()
	out := make([]float64, len(items))
	for i, item := range items {
		if item.Type != gjson.Number {
			return nil, fmt.Errorf("item %d is not a number", i)
		}
		out[i] = item.Float()
	}
	return out, nil
}
