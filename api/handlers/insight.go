package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codariq/sentidoc/internal/store/sqlite"
	"github.com/codariq/sentidoc/pkg/logger"
)

// Summary fetches a committed document's text and asks the insight backend
// for a summary.
func (h *Handlers) Summary(c *gin.Context) {
	var req filenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}

	doc, err := h.queries.DocumentByFilename(c.Request.Context(), req.Filename)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		h.logger.Error("failed to fetch document", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch document"})
		return
	}

	summary, err := h.enrich.Summarize(c.Request.Context(), doc.Content)
	if err != nil {
		h.logger.Error("summary request failed", logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "summary service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"filename": req.Filename, "summary": summary})
}

// Definition asks the insight backend to define a keyword.
func (h *Handlers) Definition(c *gin.Context) {
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}

	definition, err := h.enrich.Define(c.Request.Context(), req.Keyword)
	if err != nil {
		h.logger.Error("definition request failed", logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "definition service unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keyword": req.Keyword, "definition": definition})
}

// Articles searches the web for articles about a keyword.
func (h *Handlers) Articles(c *gin.Context) {
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}

	links, err := h.enrich.SearchArticles(c.Request.Context(), req.Keyword)
	if err != nil {
		h.logger.Error("article search failed", logger.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "article search unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keyword": req.Keyword, "articles": links})
}
