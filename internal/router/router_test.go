package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/forkliftia/case-service/internal/ai"
	"github.com/forkliftia/case-service/internal/handler"
	"github.com/forkliftia/case-service/internal/kafka"
	"github.com/forkliftia/case-service/internal/manuals"
	"github.com/forkliftia/case-service/internal/model"
	"github.com/forkliftia/case-service/internal/service"
	"github.com/forkliftia/case-service/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	answer string
	err    error
}

func (s *stubGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return s.answer, s.err
}

func (s *stubGenerator) Chat(ctx context.Context, message string, history []ai.ChatTurn) (string, error) {
	return s.answer, s.err
}

func newTestServer(t *testing.T, gen service.Generator) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := storage.NewJSONCaseStore(filepath.Join(t.TempDir(), "cases.json"))
	require.NoError(t, err)
	events := kafka.NewProducer(nil, "")
	caseSvc := service.NewCaseService(store, []string{"admin-1"})
	diagSvc := service.NewDiagnosisService(store, manuals.NewStore(t.TempDir()), gen)
	return New(
		handler.NewCaseHandler(caseSvc, events),
		handler.NewDiagnosisHandler(diagSvc, events),
	)
}

func doJSON(t *testing.T, srv http.Handler, method, path, uid string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if uid != "" {
		req.Header.Set("Authorization", "Bearer "+uid)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	assert.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/ready", "", nil).Code)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, nil)
	body := gin.H{"brand": "Toyota", "model": "8FGU25", "symptom": "won't lift"}

	// No header at all.
	w := doJSON(t, srv, http.MethodPost, "/api/v1/cases", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Malformed header.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases", bytes.NewBufferString("{}"))
	req.Header.Set("Authorization", "Basic abc")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Reads stay open.
	assert.Equal(t, http.StatusOK, doJSON(t, srv, http.MethodGet, "/api/v1/cases", "", nil).Code)
}

func TestCaseLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t, nil)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/cases", "owner-1", gin.H{
		"brand":      "Toyota",
		"model":      "8FGU25",
		"error_code": "E45",
		"symptom":    "won't lift",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.Case
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "owner-1", created.CreatedByUID)
	assert.Equal(t, model.CaseStatusOpen, created.Status)

	// Anonymous read of the new case.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/cases/1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// A stranger may not resolve it.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/cases/1/resolve", "stranger", gin.H{"resolution_note": "did a thing"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// An admin may.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/cases/1/resolve", "admin-1", gin.H{"resolution_note": "replaced solenoid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resolved model.Case
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.Equal(t, model.CaseStatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)

	// Status filter on the list endpoint.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/cases?status=resolved", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Cases []model.Case `json:"cases"`
		Total int          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)
}

func TestErrorStatusMapping(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{err: errors.New("model overloaded")})

	w := doJSON(t, srv, http.MethodGet, "/api/v1/cases/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/cases/notanumber", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Create one case so status/resolve validation is reachable.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/cases", "owner-1", gin.H{"brand": "Toyota", "model": "8FGU25", "symptom": "won't lift"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, srv, http.MethodPatch, "/api/v1/cases/1/status", "owner-1", gin.H{"status": "in_progress"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/cases/1/resolve", "owner-1", gin.H{"resolution_note": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing required fields are rejected by binding.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/cases", "owner-1", gin.H{"brand": "Toyota"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// LLM failure surfaces as a bad gateway.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/diagnosis", "owner-1", gin.H{"brand": "Linde", "model": "H25", "symptom": "stalls"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestDiagnosisOverHTTP(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{answer: "Probable cause: lift lock solenoid."})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/diagnosis", "tech-1", gin.H{
		"brand":      "Toyota",
		"model":      "8FGU25",
		"error_code": "E45",
		"symptom":    "won't lift",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result struct {
		CaseID    int64  `json:"case_id"`
		Diagnosis string `json:"diagnosis"`
		Source    string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(1), result.CaseID)
	assert.Equal(t, "ai", result.Source)
	assert.Contains(t, result.Diagnosis, "lift lock solenoid")

	// The persisted case is visible through the cases API.
	w = doJSON(t, srv, http.MethodGet, "/api/v1/cases/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var c model.Case
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.Equal(t, model.CaseSourceAI, c.Source)
	assert.Equal(t, "tech-1", c.CreatedByUID)
}

func TestChatOverHTTP(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{answer: "Check the hydraulic fluid level first."})

	w := doJSON(t, srv, http.MethodPost, "/api/v1/chat", "tech-1", gin.H{
		"message": "where do I start?",
		"history": []gin.H{{"role": "user", "content": "my forklift won't lift"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Response string `json:"response"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Check the hydraulic fluid level first.", resp.Response)

	// Message is required.
	w = doJSON(t, srv, http.MethodPost, "/api/v1/chat", "tech-1", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
