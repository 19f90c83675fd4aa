package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"claimsight/internal/service"
)

// PatternHandler handles denial pattern endpoints.
type PatternHandler struct {
	patternService service.PatternService
}

// NewPatternHandler creates a new PatternHandler.
func NewPatternHandler(patternService service.PatternService) *PatternHandler {
	return &PatternHandler{patternService: patternService}
}

// List handles GET /api/v1/patterns
func (h *PatternHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	patterns, total, err := h.patternService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, patterns, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ListByPayer handles GET /api/v1/payers/:payerID/patterns
func (h *PatternHandler) ListByPayer(c *gin.Context) {
	payerID := c.Param("payerID")
	if payerID == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_PAYER", "payer ID is required")
		return
	}

	patterns, err := h.patternService.ListByPayer(c.Request.Context(), payerID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, patterns)
}

// Detect handles POST /api/v1/payers/:payerID/patterns/detect. days_back
// bounds the trailing window; zero uses the configured default.
func (h *PatternHandler) Detect(c *gin.Context) {
	payerID := c.Param("payerID")
	if payerID == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_PAYER", "payer ID is required")
		return
	}

	daysBack, _ := strconv.Atoi(c.DefaultQuery("days_back", "0"))
	if daysBack < 0 {
		RespondError(c, http.StatusBadRequest, "INVALID_DAYS_BACK", "days_back must be non-negative")
		return
	}

	summary, err := h.patternService.DetectForPayer(c.Request.Context(), payerID, daysBack)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, summary)
}
