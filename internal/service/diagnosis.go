package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/forkliftia/case-service/internal/ai"
	"github.com/forkliftia/case-service/internal/errs"
	"github.com/forkliftia/case-service/internal/manuals"
	"github.com/forkliftia/case-service/internal/model"
	"github.com/forkliftia/case-service/internal/storage"
)

// Generator is the external LLM collaborator. *ai.GeminiClient satisfies it;
// tests substitute a fake.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, message string, history []ai.ChatTurn) (string, error)
}

type DiagnosisRequest struct {
	Brand      string
	Model      string
	Series     string
	ErrorCode  string
	Symptom    string
	ChecksDone string
}

type DiagnosisResult struct {
	CaseID    int64            `json:"case_id"`
	Diagnosis string           `json:"diagnosis"`
	Source    model.CaseSource `json:"source"`
	Manual    *manuals.Match   `json:"manual,omitempty"`

	// Created is set when a new case was persisted on this request.
	Created *model.Case `json:"-"`
}

// DiagnosisService orchestrates manual lookup, resolved-case matching and,
// on a miss, a single LLM call persisted as a new open case. It keeps no
// per-request state.
type DiagnosisService struct {
	store   storage.CaseStore
	manuals *manuals.Store
	llm     Generator
}

func NewDiagnosisService(store storage.CaseStore, manualStore *manuals.Store, llm Generator) *DiagnosisService {
	return &DiagnosisService{store: store, manuals: manualStore, llm: llm}
}

// Diagnose resolves a symptom report. A stored resolved case for the same
// key short-circuits the LLM entirely: repeated identical reports never
// re-invoke it.
func (s *DiagnosisService) Diagnose(ctx context.Context, req DiagnosisRequest, uid string) (*DiagnosisResult, error) {
	req.Brand = strings.TrimSpace(req.Brand)
	req.Model = strings.TrimSpace(req.Model)
	req.Series = strings.TrimSpace(req.Series)
	req.ErrorCode = strings.TrimSpace(req.ErrorCode)
	req.Symptom = strings.TrimSpace(req.Symptom)
	req.ChecksDone = strings.TrimSpace(req.ChecksDone)

	manual, err := s.manuals.Search(req.Brand, req.Model, req.Series, req.ErrorCode)
	if err != nil {
		return nil, err
	}

	hit, err := s.store.FindResolvedByKey(ctx, req.Brand, req.Model, req.Series, req.ErrorCode)
	if err != nil {
		return nil, err
	}
	if hit != nil {
		return &DiagnosisResult{
			CaseID:    hit.ID,
			Diagnosis: hit.Diagnosis,
			Source:    model.CaseSourceCases,
			Manual:    manual,
		}, nil
	}

	if s.llm == nil {
		return nil, fmt.Errorf("%w: ai client not configured", errs.ErrUpstream)
	}
	prompt := ai.BuildDiagnosisPrompt(ai.DiagnosisInput{
		Brand:      req.Brand,
		Model:      req.Model,
		Series:     req.Series,
		ErrorCode:  req.ErrorCode,
		Symptom:    req.Symptom,
		ChecksDone: req.ChecksDone,
	}, ai.BuildManualContext(manual))
	answer, err := s.llm.GenerateContent(ctx, prompt)
	if err != nil {
		// Surfaced once as an opaque upstream failure; never retried here.
		return nil, fmt.Errorf("%w: %v", errs.ErrUpstream, err)
	}

	created, err := s.store.CreateCase(ctx, model.CaseCreate{
		Title:       caseTitle(req.Brand, req.Model, req.ErrorCode),
		Description: req.Symptom,
		Brand:       req.Brand,
		Model:       req.Model,
		Series:      req.Series,
		ErrorCode:   req.ErrorCode,
		Symptom:     req.Symptom,
		ChecksDone:  req.ChecksDone,
		Diagnosis:   answer,
		Status:      model.CaseStatusOpen,
		Source:      model.CaseSourceAI,
		CreatedBy:   uid,
	})
	if err != nil {
		return nil, err
	}
	return &DiagnosisResult{
		CaseID:    created.ID,
		Diagnosis: answer,
		Source:    model.CaseSourceAI,
		Manual:    manual,
		Created:   created,
	}, nil
}

// Chat is a plain passthrough to the LLM with conversation history.
func (s *DiagnosisService) Chat(ctx context.Context, message string, history []ai.ChatTurn) (string, error) {
	if s.llm == nil {
		return "", fmt.Errorf("%w: ai client not configured", errs.ErrUpstream)
	}
	reply, err := s.llm.Chat(ctx, message, history)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstream, err)
	}
	return reply, nil
}
