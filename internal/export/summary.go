package export

import (
	"fmt"
	"math"
	"strings"

	"bpxgen/internal/params"
	"bpxgen/internal/pipeline"

	"github.com/shopspring/decimal"
)

// summaryDigits is the number of significant digits shown in summaries.
const summaryDigits = 5

// SummaryLine is one labelled quantity of a derivation summary.
type SummaryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Summary picks the quantities a reader checks first: the operating point,
// the initial concentrations and the stoichiometry window of every phase.
func Summary(res *pipeline.Result) []SummaryLine {
	lines := []SummaryLine{{Label: "SOC", Value: Significant(res.SOC, summaryDigits)}}
	if res.Model != nil {
		lines = append(lines,
			SummaryLine{Label: "Model", Value: string(res.Model.Type)},
			SummaryLine{Label: "Events", Value: fmt.Sprint(len(res.Model.Events))},
		)
	}
	set := res.Params
	for _, key := range set.Keys() {
		if !summaryKey(key) {
			continue
		}
		if v, ok := set[key].Float(); ok {
			lines = append(lines, SummaryLine{Label: key, Value: Significant(v, summaryDigits)})
		}
	}
	return lines
}

func summaryKey(key string) bool {
	switch key {
	case params.CyclableLithium, params.ContactResistance, params.HeatTransferCoeff:
		return true
	}
	return strings.Contains(key, "Initial concentration in") ||
		strings.Contains(key, "stoichiometry") ||
		strings.Contains(key, "Initial hysteresis state")
}

// Significant renders v rounded to digits significant digits without
// exponent notation.
func Significant(v float64, digits int) string {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	exp := int(math.Floor(math.Log10(math.Abs(v))))
	places := int32(digits - 1 - exp)
	return decimal.NewFromFloat(v).Round(places).String()
}

// FormatSummary renders lines as an aligned two-column block.
func FormatSummary(lines []SummaryLine) string {
	width := 0
	for _, l := range lines {
		width = max(width, len(l.Label))
	}
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%-*s  %s\n", width, l.Label, l.Value)
	}
	return b.String()
}
