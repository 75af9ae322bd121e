package router

import (
	"net/http"

	"ocrweb/internal/server/middleware"
	"ocrweb/internal/web"

	"github.com/gin-gonic/gin"
)

// TaskHandler defines the handlers the router mounts.
type TaskHandler interface {
	HandleIndex(c *gin.Context)
	HandleUpload(c *gin.Context)
	HandleResult(c *gin.Context)
	HandleDownload(c *gin.Context)
}

// New wires pages, static assets, and the task API to the Gin engine.
func New(apiKey string, h TaskHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.SetHTMLTemplate(web.Templates())
	r.StaticFS("/static", web.Static())

	// Health check endpoint (no middleware)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/", h.HandleIndex)
	r.GET("/download/:task_id/:filename", h.HandleDownload)

	// Upload and polling, behind the API key when configured
	api := r.Group("/")
	api.Use(middleware.WithAPIKey(apiKey))
	{
		api.POST("/upload", h.HandleUpload)
		api.GET("/result/:task_id", h.HandleResult)
	}

	return r
}
