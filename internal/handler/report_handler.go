package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"claimsight/internal/csvexport"
	"claimsight/internal/domain"
	"claimsight/internal/service"
)

// ReportHandler handles reporting and export endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// sinceParam reads the days_back query parameter into a window start,
// defaulting to 90 days.
func sinceParam(c *gin.Context) time.Time {
	daysBack, _ := strconv.Atoi(c.DefaultQuery("days_back", "90"))
	if daysBack < 1 || daysBack > 3650 {
		daysBack = 90
	}
	return time.Now().UTC().AddDate(0, 0, -daysBack)
}

// PayerOverview handles GET /api/v1/reports/payers
func (h *ReportHandler) PayerOverview(c *gin.Context) {
	rows, err := h.reportService.PayerOverview(c.Request.Context(), sinceParam(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rows)
}

// DenialSummary handles GET /api/v1/reports/denials
func (h *ReportHandler) DenialSummary(c *gin.Context) {
	rows, err := h.reportService.DenialSummary(c.Request.Context(), sinceParam(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rows)
}

// ExportEpisodesCSV handles GET /api/v1/exports/episodes.csv
func (h *ReportHandler) ExportEpisodesCSV(c *gin.Context) {
	status := domain.EpisodeStatus(c.Query("status"))

	filename := csvexport.BuildFilename("episodes")
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := h.reportService.ExportEpisodesCSV(c.Request.Context(), c.Writer, status); err != nil {
		// headers are already written; abort the stream
		_ = c.Error(err)
		c.Abort()
	}
}

// ExportPatternsXLSX handles GET /api/v1/exports/patterns.xlsx
func (h *ReportHandler) ExportPatternsXLSX(c *gin.Context) {
	filename := fmt.Sprintf("denial_patterns_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if err := h.reportService.ExportPatternsXLSX(c.Request.Context(), c.Writer); err != nil {
		_ = c.Error(err)
		c.Abort()
	}
}

// Duplicates handles GET /api/v1/admin/duplicates
func (h *ReportHandler) Duplicates(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 1000 {
		limit = 100
	}

	rows, err := h.reportService.DuplicateControlNumbers(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, rows)
}
