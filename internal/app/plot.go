package app

import (
	"context"
	"fmt"
	"path/filepath"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/visual"
)

// OCVChart derives the configured set and charts its thermodynamic OCV
// against SOC, with the SOC definition curve when one is configured and the
// initial state marked.
func (a *App) OCVChart(ctx context.Context) (visual.Chart, error) {
	req, err := a.cfg.Request()
	if err != nil {
		return visual.Chart{}, err
	}
	res, err := a.derive(ctx, req)
	if err != nil {
		return visual.Chart{}, err
	}
	name := filepath.Base(res.Source)
	if req.ParameterSet != "" {
		name = req.ParameterSet
	}
	cell, err := visual.ThermodynamicSeries(name, res.Params, a.deriver.CurvePoints)
	if err != nil {
		return visual.Chart{}, fmt.Errorf("ocv curve of %s: %w", name, err)
	}
	chart := visual.Chart{
		Title:    fmt.Sprintf("%s OCV", name),
		Subtitle: fmt.Sprintf("%s, SOC %.3f", res.Model.Type, res.SOC),
		Series:   []visual.Series{cell},
		Markers: []visual.Marker{{
			Label: "initial state",
			SOC:   res.SOC,
			OCV:   cell.Curve.VoltageAt(res.SOC),
		}},
	}
	if def := req.SOCDefinition; def != nil {
		c, err := electrochem.NewCurve(def.SOC, def.OCV)
		if err != nil {
			return visual.Chart{}, fmt.Errorf("soc definition: %w", err)
		}
		chart.Series = append(chart.Series, visual.Series{Name: "SOC definition", Curve: c})
	}
	return chart, nil
}
