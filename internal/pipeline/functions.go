package pipeline

import (
	"bpxgen/internal/funcs"
	"bpxgen/internal/params"
)

func exchangeCurrentStage(dc *DeriveContext) (params.Patch, error) {
	return funcs.BuildExchangeCurrentDensity(dc.set)
}

func genericFunctionStage(dc *DeriveContext) (params.Patch, error) {
	return funcs.BuildGeneric(dc.set)
}

// thermalStage installs the external heat transfer coefficient of the lumped
// thermal model.
func thermalStage(dc *DeriveContext) (params.Patch, error) {
	patch := params.NewPatch()
	if dc.Request.HTCExt != nil {
		patch.Put(params.HeatTransferCoeff, params.Scalar(*dc.Request.HTCExt))
	}
	return patch, nil
}
