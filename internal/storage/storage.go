package storage

import (
	"context"
	"strings"
	"time"

	"github.com/forkliftia/case-service/internal/errs"
	"github.com/forkliftia/case-service/internal/model"
	"gorm.io/datatypes"
)

// DefaultListLimit is used when ListCases is called with limit <= 0.
const DefaultListLimit = 200

// CaseStore is the persistence contract both backends satisfy. The backend is
// selected once at startup (STORAGE_BACKEND) and injected; callers never mix
// implementations.
type CaseStore interface {
	// CreateCase assigns a new unique id, sets created_at = updated_at = now
	// and persists the record. Status defaults to open, source to ai.
	CreateCase(ctx context.Context, data model.CaseCreate) (*model.Case, error)

	// ListCases returns cases newest-id-first, optionally filtered by status.
	ListCases(ctx context.Context, status string, limit int) ([]model.Case, error)

	GetCase(ctx context.Context, id int64) (*model.Case, error)

	// FindResolvedByKey returns the most recent resolved case matching
	// brand/model case-insensitively; series and errorCode filter only when
	// non-empty. Returns (nil, nil) on a miss.
	FindResolvedByKey(ctx context.Context, brand, mdl, series, errorCode string) (*model.Case, error)

	// UpdateStatus transitions the case to status ("open" or "resolved").
	UpdateStatus(ctx context.Context, id int64, status string) (*model.Case, error)

	// ResolveCase resolves the case with a trimmed, non-blank note.
	ResolveCase(ctx context.Context, id int64, note string) (*model.Case, error)
}

// norm lower-cases and trims s. An empty result means "absent" for matching.
func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

func parseStatus(status string) (model.CaseStatus, error) {
	switch model.CaseStatus(status) {
	case model.CaseStatusOpen, model.CaseStatusResolved:
		return model.CaseStatus(status), nil
	}
	return "", errs.ErrInvalidStatus
}

// newCase builds a Case from create input with defaults applied. id may be
// zero when the backend assigns ids itself.
func newCase(data model.CaseCreate, id int64, now time.Time) (model.Case, error) {
	status := data.Status
	if status == "" {
		status = model.CaseStatusOpen
	} else if _, err := parseStatus(string(status)); err != nil {
		return model.Case{}, err
	}
	source := data.Source
	if source == "" {
		source = model.CaseSourceAI
	}
	tags := data.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Case{
		ID:           id,
		Title:        data.Title,
		Description:  data.Description,
		Brand:        data.Brand,
		Model:        data.Model,
		Series:       data.Series,
		ErrorCode:    data.ErrorCode,
		Symptom:      data.Symptom,
		ChecksDone:   data.ChecksDone,
		Diagnosis:    data.Diagnosis,
		Status:       status,
		Source:       source,
		Tags:         datatypes.JSONSlice[string](tags),
		CreatedByUID: data.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// matchesKey implements the optional-field rule shared with the database
// backend: brand/model must equal, series/errorCode only when queried.
func matchesKey(c *model.Case, brand, mdl, series, errorCode string) bool {
	if c.Status != model.CaseStatusResolved {
		return false
	}
	if norm(c.Brand) != brand || norm(c.Model) != mdl {
		return false
	}
	if series != "" && norm(c.Series) != series {
		return false
	}
	if errorCode != "" && norm(c.ErrorCode) != errorCode {
		return false
	}
	return true
}
