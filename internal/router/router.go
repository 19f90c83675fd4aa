package router

import (
	"github.com/gin-gonic/gin"

	"claimsight/internal/handler"
	"claimsight/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	fileH *handler.FileHandler,
	claimH *handler.ClaimHandler,
	remitH *handler.RemittanceHandler,
	episodeH *handler.EpisodeHandler,
	patternH *handler.PatternHandler,
	reportH *handler.ReportHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware; the request id goes first so recovery and request
	// logs can carry it
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// EDI file intake
	files := v1.Group("/files")
	files.POST("/upload", fileH.Upload)
	files.GET("", fileH.List)
	files.GET("/:id", fileH.GetByID)

	// Claims and remittances
	claims := v1.Group("/claims")
	claims.GET("", claimH.List)
	claims.GET("/:id", claimH.GetByID)

	remits := v1.Group("/remittances")
	remits.GET("", remitH.List)
	remits.GET("/:id", remitH.GetByID)

	// Episodes
	episodes := v1.Group("/episodes")
	episodes.GET("", episodeH.List)
	episodes.GET("/:id", episodeH.GetByID)
	episodes.POST("/relink", episodeH.Relink)

	// Denial patterns
	v1.GET("/patterns", patternH.List)
	payers := v1.Group("/payers")
	payers.GET("/:payerID/patterns", patternH.ListByPayer)
	payers.POST("/:payerID/patterns/detect", patternH.Detect)

	// Reports and exports
	reports := v1.Group("/reports")
	reports.GET("/payers", reportH.PayerOverview)
	reports.GET("/denials", reportH.DenialSummary)

	exports := v1.Group("/exports")
	exports.GET("/episodes.csv", reportH.ExportEpisodesCSV)
	exports.GET("/patterns.xlsx", reportH.ExportPatternsXLSX)

	v1.GET("/stats", statsH.GetStats)

	// Operator visibility
	admin := v1.Group("/admin")
	admin.GET("/duplicates", reportH.Duplicates)

	return r
}
