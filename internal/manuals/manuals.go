// Package manuals provides a read-only lookup of known error codes from
// static per-brand/model/series JSON bundles.
package manuals

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrorEntry is one documented error code inside a bundle.
type ErrorEntry struct {
	Code           string `json:"code"`
	System         string `json:"system"`
	ManualSummary  string `json:"manual_summary"`
	ActionsSummary string `json:"actions_summary"`
}

// bundle is the on-disk document: data/manuals/<brand>/<model>/<series|all|base>.json.
type bundle struct {
	Brand  string       `json:"brand"`
	Model  string       `json:"model"`
	Series string       `json:"series"`
	Errors []ErrorEntry `json:"errors"`
}

// Match is a successful lookup, tagged with the manuals source.
type Match struct {
	Source string     `json:"source"`
	Brand  string     `json:"brand"`
	Model  string     `json:"model"`
	Series string     `json:"series"`
	Error  ErrorEntry `json:"error"`
}

type Store struct {
	basePath string
}

func NewStore(basePath string) *Store {
	return &Store{basePath: basePath}
}

// Search returns the best-matching manual entry for the key, or (nil, nil)
// when there is none. Missing series falls back to the "all" bucket, and a
// series-specific bundle shadows the base bundle entirely: once a bundle file
// exists, the next path is not consulted even if no entry in it matches.
func (s *Store) Search(brand, mdl, series, errorCode string) (*Match, error) {
	b := norm(brand)
	m := norm(mdl)
	code := norm(errorCode)
	if b == "" || m == "" || code == "" {
		return nil, nil
	}
	sr := norm(series)
	if sr == "" {
		sr = "all"
	}

	// Search order: series-specific bundle, then the base bundle.
	paths := []string{
		filepath.Join(s.basePath, b, m, sr+".json"),
		filepath.Join(s.basePath, b, m, "base.json"),
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("manuals: read %q: %w", p, err)
		}
		var doc bundle
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("manuals: unmarshal %q: %w", p, err)
		}
		for _, e := range doc.Errors {
			ec := norm(e.Code)
			// Substring matching supports abbreviated lookups, e.g. "45"
			// against a manufacturer code "E45".
			if ec == code || strings.Contains(ec, code) {
				return &Match{
					Source: "manuals",
					Brand:  doc.Brand,
					Model:  doc.Model,
					Series: doc.Series,
					Error:  e,
				}, nil
			}
		}
		return nil, nil
	}
	return nil, nil
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
