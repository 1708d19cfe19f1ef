package service

import (
	"context"
	"strings"

	"github.com/forkliftia/case-service/internal/errs"
	"github.com/forkliftia/case-service/internal/model"
	"github.com/forkliftia/case-service/internal/storage"
)

// CaseService exposes case operations on top of the injected store and
// enforces the owner-or-admin rule on mutating calls. Reads are unchecked.
type CaseService struct {
	store     storage.CaseStore
	adminUIDs []string
}

func NewCaseService(store storage.CaseStore, adminUIDs []string) *CaseService {
	return &CaseService{store: store, adminUIDs: adminUIDs}
}

func (s *CaseService) Create(ctx context.Context, data model.CaseCreate) (*model.Case, error) {
	if data.Title == "" {
		data.Title = caseTitle(data.Brand, data.Model, data.ErrorCode)
	}
	if data.Description == "" {
		data.Description = data.Symptom
	}
	return s.store.CreateCase(ctx, data)
}

func (s *CaseService) List(ctx context.Context, status string, limit int) ([]model.Case, error) {
	return s.store.ListCases(ctx, status, limit)
}

func (s *CaseService) Get(ctx context.Context, id int64) (*model.Case, error) {
	return s.store.GetCase(ctx, id)
}

func (s *CaseService) UpdateStatus(ctx context.Context, id int64, status, requesterUID string) (*model.Case, error) {
	switch model.CaseStatus(status) {
	case model.CaseStatusOpen, model.CaseStatusResolved:
	default:
		return nil, errs.ErrInvalidStatus
	}
	if err := s.authorize(ctx, id, requesterUID); err != nil {
		return nil, err
	}
	return s.store.UpdateStatus(ctx, id, status)
}

func (s *CaseService) Resolve(ctx context.Context, id int64, note, requesterUID string) (*model.Case, error) {
	if strings.TrimSpace(note) == "" {
		return nil, errs.ErrEmptyNote
	}
	if err := s.authorize(ctx, id, requesterUID); err != nil {
		return nil, err
	}
	return s.store.ResolveCase(ctx, id, note)
}

func (s *CaseService) authorize(ctx context.Context, id int64, uid string) error {
	c, err := s.store.GetCase(ctx, id)
	if err != nil {
		return err
	}
	if c.CreatedByUID == uid {
		return nil
	}
	for _, a := range s.adminUIDs {
		if a == uid {
			return nil
		}
	}
	return errs.ErrForbidden
}

func caseTitle(brand, mdl, errorCode string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{brand, mdl, errorCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Diagnostic case"
	}
	return strings.Join(parts, " ")
}
