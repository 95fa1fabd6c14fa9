package pipeline

import (
	"bpxgen/internal/params"
)

// Stage is one step of a derivation. Handle reads the context and returns
// the parameter changes it makes; it never writes the parameter set itself.
type Stage interface {
	Meta() StageMeta
	Handle(dc *DeriveContext) (params.Patch, error)
}

// StageMeta carries what the runner needs to schedule a stage.
type StageMeta struct {
	Name  string
	Order int
}

// StageFunc adapts a function to a Stage.
type StageFunc struct {
	meta StageMeta
	fn   func(dc *DeriveContext) (params.Patch, error)
}

func NewStage(name string, order int, fn func(dc *DeriveContext) (params.Patch, error)) StageFunc {
	return StageFunc{meta: StageMeta{Name: name, Order: order}, fn: fn}
}

func (s StageFunc) Meta() StageMeta { return s.meta }

func (s StageFunc) Handle(dc *DeriveContext) (params.Patch, error) { return s.fn(dc) }

// StageReport records what a stage produced and consumed.
type StageReport struct {
	Name     string   `json:"name"`
	Produced []string `json:"produced,omitempty"`
	Consumed []string `json:"consumed,omitempty"`
}
