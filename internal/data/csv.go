package data

import (
	"encoding/csv"
	"fmt"
	"os"
)

// loadCSV turns a CSV file into variable sets: the header row names the
// sets and each column's cells become that set's values. Attempts then
// draw from the columns like any other variable.
func loadCSV(path string) (*RequestData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse data file %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("data file %s needs a header row and at least one data row", path)
	}

	header := rows[0]
	variables := make(map[string][]string, len(header))
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("data file %s: row %d has %d fields, expected %d", path, i+2, len(row), len(header))
		}
		for j, field := range header {
			variables[field] = append(variables[field], row[j])
		}
	}

	return &RequestData{Variables: variables}, nil
}
