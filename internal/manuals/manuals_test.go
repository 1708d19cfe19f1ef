package manuals

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeBundle(t *testing.T, base, brand, mdl, name string, b bundle) {
	t.Helper()
	dir := filepath.Join(base, brand, mdl)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %q: %v", dir, err)
	}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal bundle: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	base := t.TempDir()
	writeBundle(t, base, "toyota", "8fgu25", "base", bundle{
		Brand: "Toyota",
		Model: "8FGU25",
		Errors: []ErrorEntry{
			{Code: "E45", System: "hydraulics", ManualSummary: "Lift lock solenoid fault.", ActionsSummary: "Check solenoid wiring."},
			{Code: "AD-1", System: "transmission", ManualSummary: "Shift actuator timeout.", ActionsSummary: "Inspect actuator."},
		},
	})
	writeBundle(t, base, "toyota", "8fgu25", "vii", bundle{
		Brand:  "Toyota",
		Model:  "8FGU25",
		Series: "VII",
		Errors: []ErrorEntry{
			{Code: "E45", System: "hydraulics", ManualSummary: "Series VII variant of the lift lock fault.", ActionsSummary: "Check the VII harness."},
		},
	})
	return NewStore(base)
}

func TestSearchCodeMatching(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name      string
		errorCode string
		wantCode  string
		wantMiss  bool
	}{
		{name: "exact", errorCode: "E45", wantCode: "E45"},
		{name: "case and whitespace", errorCode: " e45 ", wantCode: "E45"},
		{name: "substring", errorCode: "45", wantCode: "E45"},
		{name: "substring of dashed code", errorCode: "ad", wantCode: "AD-1"},
		{name: "unknown code", errorCode: "E46", wantMiss: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search("Toyota", "8FGU25", "", tt.errorCode)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if tt.wantMiss {
				if got != nil {
					t.Fatalf("Search() = %+v, want miss", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Search() = nil, want match")
			}
			if got.Error.Code != tt.wantCode {
				t.Errorf("matched code = %q, want %q", got.Error.Code, tt.wantCode)
			}
			if got.Source != "manuals" {
				t.Errorf("Source = %q, want manuals", got.Source)
			}
		})
	}
}

func TestSearchSeriesShadowsBase(t *testing.T) {
	s := newTestStore(t)

	// With a series, the series bundle is consulted first.
	got, err := s.Search("Toyota", "8FGU25", "VII", "E45")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got == nil || got.Error.ManualSummary != "Series VII variant of the lift lock fault." {
		t.Fatalf("Search(series VII) = %+v, want the series bundle entry", got)
	}

	// The series bundle exists, so the base bundle is never consulted even
	// though it knows AD-1.
	got, err = s.Search("Toyota", "8FGU25", "VII", "AD-1")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got != nil {
		t.Errorf("Search(series VII, AD-1) = %+v, want miss", got)
	}

	// An unknown series has no bundle and falls back to base.
	got, err = s.Search("Toyota", "8FGU25", "IX", "AD-1")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if got == nil || got.Error.Code != "AD-1" {
		t.Fatalf("Search(series IX) = %+v, want base bundle AD-1", got)
	}
}

func TestSearchMissingInputs(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name                     string
		brand, mdl, series, code string
	}{
		{name: "no brand", mdl: "8FGU25", code: "E45"},
		{name: "no model", brand: "Toyota", code: "E45"},
		{name: "no code", brand: "Toyota", mdl: "8FGU25"},
		{name: "unknown brand", brand: "Komatsu", mdl: "FG25", code: "E45"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Search(tt.brand, tt.mdl, tt.series, tt.code)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if got != nil {
				t.Errorf("Search() = %+v, want miss", got)
			}
		})
	}
}
