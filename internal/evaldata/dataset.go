// Package evaldata loads labeled evaluation datasets and persists
// evaluation reports for the matching quality harness.
package evaldata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"game-deals-service/internal/matching"
)

// LoadDataset reads a labeled dataset from a JSON file: an array of entries
// with a canonical title and the expected external id (empty or absent when
// no match exists upstream).
func LoadDataset(path string) ([]matching.LabeledGame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dataset []matching.LabeledGame
	if err := json.NewDecoder(f).Decode(&dataset); err != nil {
		return nil, fmt.Errorf("decode dataset %s: %w", path, err)
	}

	if len(dataset) == 0 {
		return nil, errors.New("dataset is empty")
	}

	seen := make(map[string]struct{}, len(dataset))
	for i, item := range dataset {
		if item.Title == "" {
			return nil, fmt.Errorf("dataset entry %d has no title", i)
		}
		if _, dup := seen[item.Title]; dup {
			return nil, fmt.Errorf("duplicate dataset title %q", item.Title)
		}
		seen[item.Title] = struct{}{}
	}
	return dataset, nil
}

// WriteReport writes a strategy comparison as indented JSON, atomically via
// a temp file rename.
func WriteReport(path string, report matching.Comparison) error {
	if path == "" {
		return errors.New("report path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
