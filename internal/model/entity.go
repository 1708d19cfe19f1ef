package model

import (
	"time"

	"gorm.io/datatypes"
)

type CaseStatus string

const (
	CaseStatusOpen     CaseStatus = "open"
	CaseStatusResolved CaseStatus = "resolved"
)

// CaseSource marks where a diagnosis came from: a reused resolved case,
// a fresh LLM answer, static manual data, or a combination.
type CaseSource string

const (
	CaseSourceCases   CaseSource = "cases"
	CaseSourceAI      CaseSource = "ai"
	CaseSourceManuals CaseSource = "manuals"
	CaseSourceMixed   CaseSource = "mixed"
)

// User is an identity record. Rows are created lazily the first time an
// unseen uid creates a case; the service never deletes them.
type User struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	UID         string     `gorm:"uniqueIndex;not null" json:"uid"`
	DisplayName string     `gorm:"type:varchar(255)" json:"display_name,omitempty"`
	Email       string     `gorm:"type:varchar(255)" json:"email,omitempty"`
	PhotoURL    string     `gorm:"type:varchar(512)" json:"photo_url,omitempty"`
	Role        string     `gorm:"type:varchar(32)" json:"role,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (User) TableName() string { return "users" }

type Case struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`

	Brand     string `gorm:"type:varchar(64);index" json:"brand"`
	Model     string `gorm:"type:varchar(64);index" json:"model"`
	Series    string `gorm:"type:varchar(64)" json:"series,omitempty"`
	ErrorCode string `gorm:"type:varchar(64)" json:"error_code,omitempty"`

	Symptom    string `gorm:"type:text" json:"symptom"`
	ChecksDone string `gorm:"type:text" json:"checks_done,omitempty"`
	Diagnosis  string `gorm:"type:text" json:"diagnosis,omitempty"`

	Status CaseStatus                  `gorm:"type:varchar(32);index;not null" json:"status"`
	Source CaseSource                  `gorm:"type:varchar(32)" json:"source"`
	Tags   datatypes.JSONSlice[string] `json:"tags"`

	CreatedByUID   string     `gorm:"index;not null" json:"created_by_uid"`
	ResolutionNote string     `gorm:"type:text" json:"resolution_note,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	ClosedAt       *time.Time `json:"closed_at,omitempty"`
}

func (Case) TableName() string { return "cases" }

// SetStatus applies a status transition at the given instant. Moving to
// resolved keeps existing resolution timestamps; moving away clears all
// resolution metadata.
func (c *Case) SetStatus(status CaseStatus, now time.Time) {
	c.Status = status
	if status == CaseStatusResolved {
		if c.ClosedAt == nil {
			c.ClosedAt = &now
		}
		if c.ResolvedAt == nil {
			c.ResolvedAt = &now
		}
	} else {
		c.ClosedAt = nil
		c.ResolvedAt = nil
		c.ResolutionNote = ""
	}
	c.UpdatedAt = now
}

// MarkResolved resolves the case with a note. ResolvedAt is always refreshed,
// ClosedAt only when not already set.
func (c *Case) MarkResolved(note string, now time.Time) {
	c.Status = CaseStatusResolved
	c.ResolutionNote = note
	c.ResolvedAt = &now
	if c.ClosedAt == nil {
		c.ClosedAt = &now
	}
	c.UpdatedAt = now
}

// CaseCreate is the input for creating a case. Status defaults to open and
// source to ai when left empty.
type CaseCreate struct {
	Title       string
	Description string
	Brand       string
	Model       string
	Series      string
	ErrorCode   string
	Symptom     string
	ChecksDone  string
	Diagnosis   string
	Status      CaseStatus
	Source      CaseSource
	Tags        []string
	CreatedBy   string
}
