package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimsight/internal/domain"
	"claimsight/internal/service"
)

// EpisodeHandler handles claim episode endpoints.
type EpisodeHandler struct {
	episodeService service.EpisodeService
	linkService    service.LinkService
}

// NewEpisodeHandler creates a new EpisodeHandler.
func NewEpisodeHandler(episodeService service.EpisodeService, linkService service.LinkService) *EpisodeHandler {
	return &EpisodeHandler{episodeService: episodeService, linkService: linkService}
}

// List handles GET /api/v1/episodes. The status query parameter filters by
// episode state.
func (h *EpisodeHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	status := domain.EpisodeStatus(c.Query("status"))
	switch status {
	case "", domain.EpisodePending, domain.EpisodeLinked, domain.EpisodeComplete:
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be PENDING, LINKED, or COMPLETE")
		return
	}

	episodes, total, err := h.episodeService.List(c.Request.Context(), status, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, episodes, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/episodes/:id
func (h *EpisodeHandler) GetByID(c *gin.Context) {
	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid episode ID")
		return
	}

	episode, err := h.episodeService.GetByID(c.Request.Context(), episodeID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, episode)
}

// Relink handles POST /api/v1/episodes/relink. It retries linking for
// remittances whose claims arrived after they did.
func (h *EpisodeHandler) Relink(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "500"))
	if limit < 1 || limit > 5000 {
		limit = 500
	}

	summary, err := h.linkService.RelinkUnlinked(c.Request.Context(), limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, summary)
}
