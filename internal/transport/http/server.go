package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/bootstrap"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/transport/http/handler"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// The frontend is served from a different origin during development.
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	router.Use(cors.New(corsCfg))

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	documentHandler := handler.NewDocumentHandler(app.IngestService, app.Config.Ingest.MaxUploadMB)
	chatHandler := handler.NewChatHandler(app.QueryService)

	v1 := router.Group("/api/v1")
	documents := v1.Group("/documents")
	documents.POST("/upload", documentHandler.Upload)
	documents.GET("", documentHandler.List)
	documents.DELETE("/:id", documentHandler.Delete)
	documents.POST("/:id/reprocess", documentHandler.Reprocess)

	v1.POST("/chat", chatHandler.Ask)

	return router
}
