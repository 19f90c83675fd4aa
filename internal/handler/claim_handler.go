package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimsight/internal/service"
)

// ClaimHandler handles claim read endpoints.
type ClaimHandler struct {
	claimService service.ClaimService
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(claimService service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// List handles GET /api/v1/claims. The control_number query parameter switches
// to an exact-match lookup.
func (h *ClaimHandler) List(c *gin.Context) {
	if controlNumber := c.Query("control_number"); controlNumber != "" {
		claims, err := h.claimService.FindByControlNumber(c.Request.Context(), controlNumber)
		if err != nil {
			HandleError(c, err)
			return
		}
		RespondOK(c, claims)
		return
	}

	offset, limit := parsePagination(c)
	claims, total, err := h.claimService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, claims, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/claims/:id
func (h *ClaimHandler) GetByID(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid claim ID")
		return
	}

	claim, err := h.claimService.GetByID(c.Request.Context(), claimID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, claim)
}
