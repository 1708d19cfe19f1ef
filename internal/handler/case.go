package handler

import (
	"net/http"
	"strconv"

	"github.com/forkliftia/case-service/internal/kafka"
	"github.com/forkliftia/case-service/internal/model"
	"github.com/forkliftia/case-service/internal/service"
	"github.com/gin-gonic/gin"
)

type CaseHandler struct {
	svc    *service.CaseService
	events *kafka.Producer
}

func NewCaseHandler(svc *service.CaseService, events *kafka.Producer) *CaseHandler {
	return &CaseHandler{svc: svc, events: events}
}

type createCaseRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Brand       string   `json:"brand" binding:"required"`
	Model       string   `json:"model" binding:"required"`
	Series      string   `json:"series"`
	ErrorCode   string   `json:"error_code"`
	Symptom     string   `json:"symptom" binding:"required"`
	ChecksDone  string   `json:"checks_done"`
	Diagnosis   string   `json:"diagnosis"`
	Status      string   `json:"status"`
	Source      string   `json:"source"`
	Tags        []string `json:"tags"`
}

func (h *CaseHandler) Create(c *gin.Context) {
	var req createCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	created, err := h.svc.Create(c.Request.Context(), model.CaseCreate{
		Title:       req.Title,
		Description: req.Description,
		Brand:       req.Brand,
		Model:       req.Model,
		Series:      req.Series,
		ErrorCode:   req.ErrorCode,
		Symptom:     req.Symptom,
		ChecksDone:  req.ChecksDone,
		Diagnosis:   req.Diagnosis,
		Status:      model.CaseStatus(req.Status),
		Source:      model.CaseSource(req.Source),
		Tags:        req.Tags,
		CreatedBy:   c.GetString("uid"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.events.ProduceCaseEventAsync("case.created", created)
	c.JSON(http.StatusCreated, created)
}

func (h *CaseHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	found, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *CaseHandler) List(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	items, err := h.svc.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cases": items, "total": len(items)})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *CaseHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	updated, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, c.GetString("uid"))
	if err != nil {
		writeError(c, err)
		return
	}
	h.events.ProduceCaseEventAsync("case.status_changed", updated)
	c.JSON(http.StatusOK, updated)
}

type resolveCaseRequest struct {
	ResolutionNote string `json:"resolution_note" binding:"required"`
}

func (h *CaseHandler) Resolve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req resolveCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	resolved, err := h.svc.Resolve(c.Request.Context(), id, req.ResolutionNote, c.GetString("uid"))
	if err != nil {
		writeError(c, err)
		return
	}
	h.events.ProduceCaseEventAsync("case.resolved", resolved)
	c.JSON(http.StatusOK, resolved)
}
