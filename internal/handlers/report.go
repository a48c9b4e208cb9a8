package handlers

import (
	"net/http"

	"askboard/internal/middleware"
	"askboard/internal/services"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
	Reason     string `json:"reason"`
}

func (h *ReportHandler) Create(c *gin.Context) {
	var req reportRequest
	if !bind(c, &req) {
		return
	}

	report, err := h.reports.Create(c.Request.Context(), middleware.CurrentActor(c), req.TargetType, req.TargetID, req.Reason)
	if err != nil {
		RenderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
