package worker

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/claimops/claimassist/internal/model"
)

// ReadClaimsFromFile loads claims from a batch input file. The format is
// chosen by extension: .csv (header row required), .json (array of
// objects), or .jsonl/.ndjson (one object per line).
func ReadClaimsFromFile(path string) ([]model.Claim, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readClaimsCSV(path)
	case ".json":
		return readClaimsJSON(path)
	case ".jsonl", ".ndjson":
		return readClaimsJSONL(path)
	default:
		return nil, fmt.Errorf("unsupported batch file format: %s", path)
	}
}

func readClaimsCSV(path string) ([]model.Claim, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows: %s", path)
	}

	header := records[0]
	claims := make([]model.Claim, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(record) {
				row[strings.TrimSpace(name)] = record[i]
			}
		}
		claims = append(claims, model.ClaimFromRow(row))
	}

	return claims, nil
}

func readClaimsJSON(path string) ([]model.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	claims := make([]model.Claim, 0, len(rows))
	for _, row := range rows {
		claims = append(claims, model.ClaimFromRow(row))
	}

	return claims, nil
}

func readClaimsJSONL(path string) ([]model.Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var claims []model.Claim
	for lineNo, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var row map[string]any
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("parse jsonl line %d: %w", lineNo+1, err)
		}
		claims = append(claims, model.ClaimFromRow(row))
	}

	return claims, nil
}
