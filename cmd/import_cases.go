package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/forkliftia/case-service/internal/config"
	"github.com/forkliftia/case-service/internal/database"
	"github.com/forkliftia/case-service/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// legacyUserUID owns imported records that carry no creator.
const legacyUserUID = "legacy-import"

var importFile string

var importCasesCmd = &cobra.Command{
	Use:   "import-cases",
	Short: "Import a legacy cases.json document into the database backend",
	RunE:  runImportCases,
}

func init() {
	importCasesCmd.Flags().StringVar(&importFile, "file", "data/cases.json", "path to the legacy cases document")
	rootCmd.AddCommand(importCasesCmd)
}

// legacyCase mirrors the json-backend record shape with string timestamps.
type legacyCase struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Brand          string   `json:"brand"`
	Model          string   `json:"model"`
	Series         string   `json:"series"`
	ErrorCode      string   `json:"error_code"`
	Symptom        string   `json:"symptom"`
	ChecksDone     string   `json:"checks_done"`
	Diagnosis      string   `json:"diagnosis"`
	Status         string   `json:"status"`
	Source         string   `json:"source"`
	Tags           []string `json:"tags"`
	CreatedByUID   string   `json:"created_by_uid"`
	ResolutionNote string   `json:"resolution_note"`
	CreatedAt      string   `json:"created_at"`
	UpdatedAt      string   `json:"updated_at"`
	ResolvedAt     string   `json:"resolved_at"`
	ClosedAt       string   `json:"closed_at"`
}

func runImportCases(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.DB.Host == "" || cfg.DB.Database == "" {
		return fmt.Errorf("config: DB_HOST and DB_DATABASE are required for import")
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	conn, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	data, err := os.ReadFile(importFile)
	if err != nil {
		return fmt.Errorf("read %q: %w", importFile, err)
	}
	var payload struct {
		Cases []legacyCase `json:"cases"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("unmarshal %q: %w", importFile, err)
	}
	log.Printf("import-cases: found %d cases in %s", len(payload.Cases), importFile)

	imported := 0
	for i := range payload.Cases {
		if err := importCase(conn, &payload.Cases[i]); err != nil {
			log.Printf("import-cases: case #%d: %v", payload.Cases[i].ID, err)
			continue
		}
		imported++
	}
	log.Printf("import-cases: done, imported %d/%d cases", imported, len(payload.Cases))
	return nil
}

func importCase(conn *gorm.DB, raw *legacyCase) error {
	now := time.Now().UTC()
	uid := raw.CreatedByUID
	if uid == "" {
		uid = legacyUserUID
	}
	c := model.Case{
		Title:          raw.Title,
		Description:    raw.Description,
		Brand:          orDefault(raw.Brand, "unknown"),
		Model:          orDefault(raw.Model, "unknown"),
		Series:         raw.Series,
		ErrorCode:      raw.ErrorCode,
		Symptom:        orDefault(raw.Symptom, raw.Description),
		ChecksDone:     raw.ChecksDone,
		Diagnosis:      raw.Diagnosis,
		Status:         model.CaseStatus(orDefault(raw.Status, string(model.CaseStatusOpen))),
		Source:         model.CaseSource(orDefault(raw.Source, string(model.CaseSourceAI))),
		Tags:           datatypes.JSONSlice[string](raw.Tags),
		CreatedByUID:   uid,
		ResolutionNote: raw.ResolutionNote,
		CreatedAt:      parseTimeOr(raw.CreatedAt, now),
		UpdatedAt:      parseTimeOr(raw.UpdatedAt, now),
		ResolvedAt:     parseTimePtr(raw.ResolvedAt),
		ClosedAt:       parseTimePtr(raw.ClosedAt),
	}
	if c.Title == "" {
		c.Title = fmt.Sprintf("Case #%d", raw.ID)
	}
	if c.Description == "" {
		c.Description = orDefault(raw.Symptom, "N/A")
	}
	if c.Tags == nil {
		c.Tags = datatypes.JSONSlice[string]([]string{})
	}
	return conn.Transaction(func(tx *gorm.DB) error {
		var u model.User
		err := tx.Where("uid = ?", uid).First(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Create(&model.User{UID: uid, CreatedAt: now}).Error
		}
		if err != nil {
			return err
		}
		return tx.Create(&c).Error
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// parseTimeOr accepts RFC3339 and the bare ISO form legacy documents used.
func parseTimeOr(s string, def time.Time) time.Time {
	if t := parseTimePtr(s); t != nil {
		return *t
	}
	return def
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
