package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/forkliftia/case-service/internal/errs"
	"github.com/forkliftia/case-service/internal/model"
)

// jsonDocument is the on-disk shape: a monotonic id counter plus the full
// case set.
type jsonDocument struct {
	NextID int64        `json:"next_id"`
	Cases  []model.Case `json:"cases"`
}

// JSONCaseStore persists the entire case set as a single JSON document.
// Every mutation rewrites the document via temp file + rename, so readers
// only ever see the pre- or post-mutation state. The mutex serializes
// writers within this process; there is no cross-process lock (last writer
// wins).
type JSONCaseStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONCaseStore(path string) (*JSONCaseStore, error) {
	s := &JSONCaseStore{path: path}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create dir for %q: %w", path, err)
		}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(&jsonDocument{NextID: 1, Cases: []model.Case{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("storage: stat %q: %w", path, err)
	}
	return s, nil
}

func (s *JSONCaseStore) read() (*jsonDocument, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %q: %w", s.path, err)
	}
	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: unmarshal %q: %w", s.path, err)
	}
	return &doc, nil
}

// write replaces the document atomically: full content to a sibling temp
// path, then rename over the destination.
func (s *JSONCaseStore) write(doc *jsonDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("storage: marshal cases: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("storage: rename %q: %w", tmp, err)
	}
	return nil
}

func (s *JSONCaseStore) CreateCase(_ context.Context, data model.CaseCreate) (*model.Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	c, err := newCase(data, doc.NextID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	doc.NextID++
	doc.Cases = append(doc.Cases, c)
	if err := s.write(doc); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *JSONCaseStore) ListCases(_ context.Context, status string, limit int) ([]model.Case, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	items := make([]model.Case, 0, len(doc.Cases))
	for _, c := range doc.Cases {
		if status != "" && string(c.Status) != status {
			continue
		}
		items = append(items, c)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })
	if n := clampLimit(limit); len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func (s *JSONCaseStore) GetCase(_ context.Context, id int64) (*model.Case, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Cases {
		if doc.Cases[i].ID == id {
			c := doc.Cases[i]
			return &c, nil
		}
	}
	return nil, errs.ErrCaseNotFound
}

func (s *JSONCaseStore) FindResolvedByKey(_ context.Context, brand, mdl, series, errorCode string) (*model.Case, error) {
	b, m := norm(brand), norm(mdl)
	if b == "" || m == "" {
		return nil, nil
	}
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	sort.Slice(doc.Cases, func(i, j int) bool { return doc.Cases[i].ID > doc.Cases[j].ID })
	sn, en := norm(series), norm(errorCode)
	for i := range doc.Cases {
		if matchesKey(&doc.Cases[i], b, m, sn, en) {
			c := doc.Cases[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (s *JSONCaseStore) UpdateStatus(_ context.Context, id int64, status string) (*model.Case, error) {
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Cases {
		if doc.Cases[i].ID != id {
			continue
		}
		doc.Cases[i].SetStatus(st, time.Now().UTC())
		if err := s.write(doc); err != nil {
			return nil, err
		}
		c := doc.Cases[i]
		return &c, nil
	}
	return nil, errs.ErrCaseNotFound
}

func (s *JSONCaseStore) ResolveCase(_ context.Context, id int64, note string) (*model.Case, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, errs.ErrEmptyNote
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	for i := range doc.Cases {
		if doc.Cases[i].ID != id {
			continue
		}
		doc.Cases[i].MarkResolved(note, time.Now().UTC())
		if err := s.write(doc); err != nil {
			return nil, err
		}
		c := doc.Cases[i]
		return &c, nil
	}
	return nil, errs.ErrCaseNotFound
}
