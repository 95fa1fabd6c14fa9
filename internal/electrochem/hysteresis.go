// Package electrochem holds the cell-level calculations the derivation
// pipeline delegates to: lithium inventory, thermodynamic OCV, SOC
// conversion, hysteresis branch selection and initial concentrations.
package electrochem

import (
	"fmt"
	"strings"

	"bpxgen/internal/params"
)

// Branch is a cell-level hysteresis branch.
type Branch string

const (
	BranchAverage   Branch = "average"
	BranchCharge    Branch = "charge"
	BranchDischarge Branch = "discharge"
)

// Branches lists the accepted cell-level branches.
var Branches = []Branch{BranchAverage, BranchCharge, BranchDischarge}

// ParseBranch validates s; an empty string means average.
func ParseBranch(s string) (Branch, error) {
	if s == "" {
		return BranchAverage, nil
	}
	for _, b := range Branches {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("unsupported hysteresis branch %q (supported: %s)", s, joinBranches())
}

func joinBranches() string {
	out := make([]string, len(Branches))
	for i, b := range Branches {
		out[i] = string(b)
	}
	return strings.Join(out, ", ")
}

// Electrode-level hysteresis branches.
const (
	Lithiation   = "lithiation"
	Delithiation = "delithiation"
)

// ElectrodeBranches lists the electrode-level branches.
var ElectrodeBranches = [2]string{Lithiation, Delithiation}

// branchMap maps a cell branch onto the electrode branch of each electrode.
// Charging lithiates the negative electrode and delithiates the positive.
var branchMap = map[Branch][2]string{
	BranchCharge:    {Lithiation, Delithiation},
	BranchDischarge: {Delithiation, Lithiation},
}

// ElectrodeBranch returns the electrode branch followed by e on cell branch b.
// ok is false for the average branch.
func ElectrodeBranch(b Branch, e params.Electrode) (string, bool) {
	m, ok := branchMap[b]
	if !ok {
		return "", false
	}
	return m[e], true
}

// OCPModel is the open-circuit potential model of one electrode phase, named
// the way the model options spell it.
type OCPModel string

const (
	OCPSingle         OCPModel = "single"
	OCPCurrentSigmoid OCPModel = "current sigmoid"
	OCPWycisk         OCPModel = "Wycisk"
)

// HasHysteresisData reports whether both electrode branch OCPs exist for the
// phase.
func HasHysteresisData(set params.Set, e params.Electrode, ph params.Phase) bool {
	for _, b := range ElectrodeBranches {
		if !set.Has(params.BranchOCP(ph, e, b)) {
			return false
		}
	}
	return true
}

// InitBranches returns the electrode branch each electrode starts on. The
// preceding cell branch only matters for electrodes with at least one
// hysteresis phase; zero hysteresis is assumed at SOC 100 and the SOC is read
// coulombically from there. An empty string means average.
func InitBranches(models [2][]OCPModel, preceding Branch) [2]string {
	var out [2]string
	for _, e := range params.Electrodes {
		if !anyHysteresis(models[e]) {
			continue
		}
		if b, ok := ElectrodeBranch(preceding, e); ok {
			out[e] = b
		}
	}
	return out
}

func anyHysteresis(models []OCPModel) bool {
	for _, m := range models {
		if m != OCPSingle && m != "" {
			return true
		}
	}
	return false
}
