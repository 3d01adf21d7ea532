// Package routes wires the HTTP surface.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codariq/sentidoc/api/handlers"
	"github.com/codariq/sentidoc/api/middleware"
)

// Setup registers all routes on a new gin engine.
func Setup(h *handlers.Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/documents/upload", h.Upload)
		v1.GET("/documents/user/:userId", h.ListByUser)
		v1.POST("/documents/keywords", h.Keywords)
		v1.POST("/documents/summary", h.Summary)

		v1.GET("/filter/sentiment/:label", h.FilterBySentiment)
		v1.POST("/search/keyword", h.SearchKeyword)
		v1.POST("/search/articles", h.Articles)

		v1.POST("/keywords/definition", h.Definition)

		v1.GET("/tasks/:taskId/status", h.TaskStatus)
	}

	return r
}
