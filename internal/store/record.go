package store

import (
	"errors"
	"time"

	"bpxgen/internal/export"
	"bpxgen/internal/pipeline"
	"bpxgen/internal/store/model"

	"github.com/google/uuid"
)

// NewRunRecord describes one derivation, successful or not.
func NewRunRecord(req pipeline.Request, res *pipeline.Result, err error) RunRecord {
	rec := RunRecord{
		ID:           uuid.NewString(),
		CreatedAt:    time.Now(),
		Source:       req.Path,
		ParameterSet: req.ParameterSet,
		ModelType:    string(req.ModelType),
		SOC:          req.SOCInit,
		Status:       model.RunStatusOK,
		Request:      req,
	}
	if err != nil {
		rec.Status = model.RunStatusFailed
		rec.Error = err.Error()
		var se *pipeline.StageError
		if errors.As(err, &se) {
			rec.Stage = se.Stage
		}
		return rec
	}
	if res == nil {
		return rec
	}
	if res.Source != "" {
		rec.Source = res.Source
	}
	doc := export.NewDocument(res)
	rec.SOC = res.SOC
	rec.ParamCount = len(res.Params)
	rec.Options = doc.Model.Options
	rec.Events = doc.Model.Events
	rec.Summary = export.Summary(res)
	return rec
}
