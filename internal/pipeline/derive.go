package pipeline

import (
	"context"
	"fmt"

	"bpxgen/internal/bpx"
	"bpxgen/internal/electrochem"
	"bpxgen/internal/logger"
	"bpxgen/internal/model"
	"bpxgen/internal/params"
)

// Source resolves and loads base parameter sets.
type Source interface {
	// Resolve maps a document path and optional parameter set name to the
	// document to load.
	Resolve(path, set string) (string, error)
	// Load returns the parameters of a direct document at SOC 1.
	Load(path string) (params.Set, error)
}

// Result is a derived parameter set together with its model.
type Result struct {
	Params   params.Set    `json:"-"`
	Model    *model.Model  `json:"model"`
	Options  model.Options `json:"options"`
	SOC      float64       `json:"soc"`
	Source   string        `json:"source,omitempty"`
	Stages   []StageReport `json:"stages"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Deriver turns a request into a parameter set and model.
type Deriver struct {
	Source  Source
	Factory model.Factory
	// CurvePoints is the sampling of the thermodynamic OCV curve used for
	// voltage targets and SOC conversion.
	CurvePoints int

	pipeline *Pipeline
}

func NewDeriver(src Source, factory model.Factory) *Deriver {
	return &Deriver{
		Source:      src,
		Factory:     factory,
		CurvePoints: electrochem.DefaultCurvePoints,
		pipeline:    New("derive", DefaultStages()...),
	}
}

// Stages lists the derivation stages in run order.
func (d *Deriver) Stages() []string {
	if d.pipeline == nil {
		return New("derive", DefaultStages()...).Stages()
	}
	return d.pipeline.Stages()
}

// GetParams resolves and loads the request's source, then derives from it.
func (d *Deriver) GetParams(ctx context.Context, req Request) (*Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	path, err := d.Source.Resolve(req.Path, req.ParameterSet)
	if err != nil {
		return nil, &StageError{Stage: "source", Err: fmt.Errorf("%w: %w", ErrConfig, err)}
	}
	base, err := d.Source.Load(path)
	if err != nil {
		return nil, &StageError{Stage: "source", Err: err}
	}
	res, err := d.Derive(ctx, base, req)
	if err != nil {
		return nil, err
	}
	res.Source = path
	return res, nil
}

// Derive runs the derivation on a copy of base. base is never modified and a
// failed derivation leaves nothing behind.
func (d *Deriver) Derive(ctx context.Context, base params.Set, req Request) (*Result, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p := d.pipeline
	if p == nil {
		p = New("derive", DefaultStages()...)
	}
	dc := newDeriveContext(base, req, d.Factory)
	dc.curvePoints = d.CurvePoints
	if err := p.Run(ctx, dc); err != nil {
		return nil, err
	}
	logger.Debugf("derived params=%d model=%s soc=%.4f events=%d",
		len(dc.set), dc.model.Type, dc.soc, len(dc.model.Events))
	return &Result{
		Params:   dc.set,
		Model:    dc.model,
		Options:  dc.options,
		SOC:      dc.soc,
		Stages:   dc.reports,
		Warnings: dc.warnings,
	}, nil
}

// GetParams derives with the BPX loader and the default model factory.
func GetParams(ctx context.Context, req Request) (*Result, error) {
	return NewDeriver(bpx.NewLoader(), model.DefaultFactory{}).GetParams(ctx, req)
}
