package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimsight/internal/service"
)

// RemittanceHandler handles remittance read endpoints.
type RemittanceHandler struct {
	remitService service.RemittanceService
}

// NewRemittanceHandler creates a new RemittanceHandler.
func NewRemittanceHandler(remitService service.RemittanceService) *RemittanceHandler {
	return &RemittanceHandler{remitService: remitService}
}

// List handles GET /api/v1/remittances
func (h *RemittanceHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	remits, total, err := h.remitService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, remits, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/remittances/:id
func (h *RemittanceHandler) GetByID(c *gin.Context) {
	remitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid remittance ID")
		return
	}

	remit, err := h.remitService.GetByID(c.Request.Context(), remitID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, remit)
}
