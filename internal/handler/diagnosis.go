package handler

import (
	"net/http"

	"github.com/forkliftia/case-service/internal/ai"
	"github.com/forkliftia/case-service/internal/kafka"
	"github.com/forkliftia/case-service/internal/service"
	"github.com/gin-gonic/gin"
)

type DiagnosisHandler struct {
	svc    *service.DiagnosisService
	events *kafka.Producer
}

func NewDiagnosisHandler(svc *service.DiagnosisService, events *kafka.Producer) *DiagnosisHandler {
	return &DiagnosisHandler{svc: svc, events: events}
}

type diagnosisRequest struct {
	Brand      string `json:"brand" binding:"required"`
	Model      string `json:"model" binding:"required"`
	Series     string `json:"series"`
	ErrorCode  string `json:"error_code"`
	Symptom    string `json:"symptom" binding:"required"`
	ChecksDone string `json:"checks_done"`
}

func (h *DiagnosisHandler) Diagnose(c *gin.Context) {
	var req diagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	result, err := h.svc.Diagnose(c.Request.Context(), service.DiagnosisRequest{
		Brand:      req.Brand,
		Model:      req.Model,
		Series:     req.Series,
		ErrorCode:  req.ErrorCode,
		Symptom:    req.Symptom,
		ChecksDone: req.ChecksDone,
	}, c.GetString("uid"))
	if err != nil {
		writeError(c, err)
		return
	}
	if result.Created != nil {
		h.events.ProduceCaseEventAsync("case.created", result.Created)
	}
	c.JSON(http.StatusOK, result)
}

type chatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []ai.ChatTurn `json:"history"`
}

func (h *DiagnosisHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	reply, err := h.svc.Chat(c.Request.Context(), req.Message, req.History)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": reply})
}
