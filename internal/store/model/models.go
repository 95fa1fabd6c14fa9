// Package model holds the gorm models of the run history.
package model

import "gorm.io/datatypes"

type RunStatus string

const (
	RunStatusOK     RunStatus = "ok"
	RunStatusFailed RunStatus = "failed"
)

// RunModel is one stored derivation.
type RunModel struct {
	ID            string         `gorm:"column:id;primaryKey"`
	Source        string         `gorm:"column:source;index"`
	ParameterSet  string         `gorm:"column:parameter_set"`
	ModelType     string         `gorm:"column:model_type"`
	SOC           float64        `gorm:"column:soc"`
	Status        RunStatus      `gorm:"column:status;index"`
	Error         string         `gorm:"column:error"`
	Stage         string         `gorm:"column:stage"`
	ParamCount    int            `gorm:"column:param_count"`
	Request       datatypes.JSON `gorm:"column:request_json"`
	Options       datatypes.JSON `gorm:"column:options_json"`
	Events        datatypes.JSON `gorm:"column:events_json"`
	Summary       datatypes.JSON `gorm:"column:summary_json"`
	CreatedAtUnix int64          `gorm:"column:created_at;index"`
}

func (RunModel) TableName() string { return "derive_runs" }
