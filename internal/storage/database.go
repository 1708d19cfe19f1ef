package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/forkliftia/case-service/internal/errs"
	"github.com/forkliftia/case-service/internal/model"
	"gorm.io/gorm"
)

// DatabaseCaseStore persists cases and user identities in a relational
// schema. Every operation runs in its own short-lived transaction and
// returns a detached snapshot; no session is held across calls.
type DatabaseCaseStore struct {
	db *gorm.DB
}

func NewDatabaseCaseStore(db *gorm.DB) *DatabaseCaseStore {
	return &DatabaseCaseStore{db: db}
}

// ensureUser is the idempotent get-or-create keyed by uid. Cases reference
// users.uid, so the row must exist before the first insert for that uid.
func ensureUser(tx *gorm.DB, uid string, now time.Time) error {
	var u model.User
	err := tx.Where("uid = ?", uid).First(&u).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(&model.User{UID: uid, CreatedAt: now}).Error
}

func (s *DatabaseCaseStore) CreateCase(ctx context.Context, data model.CaseCreate) (*model.Case, error) {
	now := time.Now().UTC()
	c, err := newCase(data, 0, now)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureUser(tx, data.CreatedBy, now); err != nil {
			return fmt.Errorf("ensure user %q: %w", data.CreatedBy, err)
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		// Reload to capture server-assigned fields.
		return tx.First(&c, c.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *DatabaseCaseStore) ListCases(ctx context.Context, status string, limit int) ([]model.Case, error) {
	var items []model.Case
	tx := s.db.WithContext(ctx).Model(&model.Case{})
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	if err := tx.Order("id DESC").Limit(clampLimit(limit)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *DatabaseCaseStore) GetCase(ctx context.Context, id int64) (*model.Case, error) {
	var c model.Case
	if err := s.db.WithContext(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrCaseNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *DatabaseCaseStore) FindResolvedByKey(ctx context.Context, brand, mdl, series, errorCode string) (*model.Case, error) {
	b, m := norm(brand), norm(mdl)
	if b == "" || m == "" {
		return nil, nil
	}
	// Exact case-insensitive equality, not pattern matching: brand/model can
	// originate from untrusted input.
	tx := s.db.WithContext(ctx).
		Where("status = ?", model.CaseStatusResolved).
		Where("LOWER(TRIM(brand)) = ?", b).
		Where("LOWER(TRIM(model)) = ?", m)
	if sn := norm(series); sn != "" {
		tx = tx.Where("LOWER(TRIM(series)) = ?", sn)
	}
	if en := norm(errorCode); en != "" {
		tx = tx.Where("LOWER(TRIM(error_code)) = ?", en)
	}
	var c model.Case
	if err := tx.Order("id DESC").First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *DatabaseCaseStore) UpdateStatus(ctx context.Context, id int64, status string) (*model.Case, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	var c model.Case
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrCaseNotFound
			}
			return err
		}
		c.SetStatus(st, time.Now().UTC())
		// Save writes all columns, so cleared resolution metadata goes NULL.
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *DatabaseCaseStore) ResolveCase(ctx context.Context, id int64, note string) (*model.Case, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, errs.ErrEmptyNote
	}
	var c model.Case
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrCaseNotFound
			}
			return err
		}
		c.MarkResolved(note, time.Now().UTC())
		return tx.Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
