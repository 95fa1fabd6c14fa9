package pipeline

import (
	"errors"
	"fmt"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/params"
)

// socStage resolves the thermodynamic SOC the cell starts at. A target OCV
// wins over the SOC fraction; a SOC definition reads the fraction on an
// external OCV-SOC scale.
func socStage(dc *DeriveContext) (params.Patch, error) {
	req := dc.Request
	switch {
	case req.OCVInit != nil:
		curve, err := electrochem.ThermodynamicOCV(dc.set, dc.curvePoints)
		if err != nil {
			return params.Patch{}, physicalError(err)
		}
		dc.soc = curve.SOCAt(*req.OCVInit)
	case req.SOCDefinition != nil:
		external, err := electrochem.NewCurve(req.SOCDefinition.SOC, req.SOCDefinition.OCV)
		if err != nil {
			return params.Patch{}, fmt.Errorf("%w: soc_definition: %v", ErrConfig, err)
		}
		thermo, err := electrochem.ThermodynamicOCV(dc.set, dc.curvePoints)
		if err != nil {
			return params.Patch{}, physicalError(err)
		}
		if dc.soc, err = electrochem.ConvertSOC(req.SOCInit, external, thermo, req.SOCDefinition.Method); err != nil {
			return params.Patch{}, err
		}
	default:
		dc.soc = req.SOCInit
	}
	return params.NewPatch(), nil
}

// initialStateStage places every phase at the resolved SOC. A degraded cell
// gets its stoichiometry limits re-solved first.
func initialStateStage(dc *DeriveContext) (params.Patch, error) {
	patch, err := electrochem.InitialConcentrations(dc.set, electrochem.InitOptions{
		Phases:       dc.phases,
		Models:       dc.ocpModels,
		Branches:     dc.initBranch,
		SOC:          dc.soc,
		UpdateBounds: dc.degradation != nil,
	})
	if err != nil {
		return params.Patch{}, physicalError(err)
	}
	return patch, nil
}

// physicalError classifies OCV solver failures caused by the cell data
// itself, such as a degradation state the cut-off voltages cannot bracket.
func physicalError(err error) error {
	if errors.Is(err, electrochem.ErrBoundsUnsolvable) || errors.Is(err, electrochem.ErrNotMonotonic) {
		return fmt.Errorf("%w: %w", ErrPhysicalConstraint, err)
	}
	return err
}
