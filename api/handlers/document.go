package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codariq/sentidoc/internal/models"
	"github.com/codariq/sentidoc/internal/status"
	"github.com/codariq/sentidoc/internal/store/sqlite"
	"github.com/codariq/sentidoc/pkg/logger"
	"github.com/codariq/sentidoc/pkg/queue"
)

// Upload accepts one or more files and queues them for ingestion. The 202
// response confirms queuing only; completion is observed through the task
// status endpoint or the query boundary.
func (h *Handlers) Upload(c *gin.Context) {
	ownerID := c.PostForm("userId")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		if f := form.File["file"]; len(f) > 0 {
			files = f
		}
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files provided"})
		return
	}

	taskIDs, err := h.ingest.AcceptBatch(c.Request.Context(), files, ownerID)
	if err != nil {
		if errors.Is(err, queue.ErrFull) {
			c.Header("Retry-After", "5")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingestion queue is full"})
			return
		}
		h.logger.Warn("upload rejected", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "files queued for processing",
		"taskIds": taskIDs,
	})
}

// TaskStatus reports the recorded lifecycle state of an ingestion task.
func (h *Handlers) TaskStatus(c *gin.Context) {
	st, err := h.ingest.Status(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		if errors.Is(err, status.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
			return
		}
		h.logger.Error("failed to fetch task status", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch task status"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// ListByUser lists an owner's committed documents.
func (h *Handlers) ListByUser(c *gin.Context) {
	docs, err := h.queries.DocumentsByOwner(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.logger.Error("failed to list documents", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	if docs == nil {
		docs = []models.DocumentSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

type filenameRequest struct {
	Filename string `json:"filename" binding:"required"`
}

// Keywords returns every keyword of one document, walking the committed tree.
func (h *Handlers) Keywords(c *gin.Context) {
	var req filenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}

	words, err := h.queries.KeywordsByFilename(c.Request.Context(), req.Filename)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		h.logger.Error("failed to fetch keywords", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch keywords"})
		return
	}
	if words == nil {
		words = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"filename": req.Filename, "keywords": words})
}

// FilterBySentiment returns the paragraphs and sentences carrying a label.
func (h *Handlers) FilterBySentiment(c *gin.Context) {
	label := c.Param("label")
	if !models.ValidLabel(label) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sentiment must be positive, negative or neutral"})
		return
	}

	paragraphs, sentences, err := h.queries.FilterBySentiment(c.Request.Context(), models.SentimentLabel(label))
	if err != nil {
		h.logger.Error("failed to filter by sentiment", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to filter by sentiment"})
		return
	}
	if paragraphs == nil {
		paragraphs = []models.SentimentSlice{}
	}
	if sentences == nil {
		sentences = []models.SentimentSlice{}
	}
	c.JSON(http.StatusOK, gin.H{
		"sentiment":  label,
		"paragraphs": paragraphs,
		"sentences":  sentences,
	})
}

type keywordRequest struct {
	Keyword string `json:"keyword" binding:"required"`
}

// SearchKeyword returns the sentences containing a keyword and the
// paragraphs those sentences belong to.
func (h *Handlers) SearchKeyword(c *gin.Context) {
	var req keywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}

	sentences, paragraphs, err := h.queries.SearchByKeyword(c.Request.Context(), req.Keyword)
	if err != nil {
		h.logger.Error("failed to search by keyword", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search by keyword"})
		return
	}
	if sentences == nil {
		sentences = []models.SentimentSlice{}
	}
	if paragraphs == nil {
		paragraphs = []models.SentimentSlice{}
	}
	c.JSON(http.StatusOK, gin.H{
		"keyword":    req.Keyword,
		"sentences":  sentences,
		"paragraphs": paragraphs,
	})
}
