package config

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadCurveCSV reads (SOC, OCV) rows from a two-column CSV file. A first
// row that does not parse as numbers is taken as a header.
func ReadCurveCSV(path string) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2
	r.TrimLeadingSpace = true
	r.Comment = '#'

	var rows [][]float64
	for line := 1; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		soc, errS := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		ocv, errO := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if errS != nil || errO != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("%s line %d: want two numbers, got %q", path, line, rec)
		}
		rows = append(rows, []float64{soc, ocv})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: no (SOC, OCV) rows", path)
	}
	return rows, nil
}
