package store

import (
	"context"
	"errors"
	"time"

	"bpxgen/internal/export"
	"bpxgen/internal/pipeline"
	"bpxgen/internal/store/model"
)

var ErrNotFound = errors.New("store: run not found")

// RunRecord is a derivation as kept in the run history.
type RunRecord struct {
	ID           string               `json:"id"`
	CreatedAt    time.Time            `json:"created_at"`
	Source       string               `json:"source"`
	ParameterSet string               `json:"parameter_set,omitempty"`
	ModelType    string               `json:"model_type"`
	SOC          float64              `json:"soc"`
	Status       model.RunStatus      `json:"status"`
	Error        string               `json:"error,omitempty"`
	Stage        string               `json:"stage,omitempty"`
	ParamCount   int                  `json:"param_count"`
	Request      pipeline.Request     `json:"request"`
	Options      map[string]string    `json:"options,omitempty"`
	Events       []string             `json:"events,omitempty"`
	Summary      []export.SummaryLine `json:"summary,omitempty"`
}

// RunRepository persists derivation runs.
type RunRepository interface {
	SaveRun(ctx context.Context, rec *RunRecord) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}
