// Package handlers implements the HTTP boundary. Uploads are acknowledged
// with 202 before any processing happens; queries only ever see fully
// committed documents.
package handlers

import (
	"context"

	"github.com/codariq/sentidoc/internal/enrich"
	"github.com/codariq/sentidoc/internal/models"
	"github.com/codariq/sentidoc/internal/service/ingest"
	"github.com/codariq/sentidoc/pkg/logger"
)

// DocumentQueries is the read side of the persistence gateway.
type DocumentQueries interface {
	DocumentsByOwner(ctx context.Context, ownerID string) ([]models.DocumentSummary, error)
	DocumentByFilename(ctx context.Context, filename string) (*models.Document, error)
	KeywordsByFilename(ctx context.Context, filename string) ([]string, error)
	FilterBySentiment(ctx context.Context, label models.SentimentLabel) (paragraphs, sentences []models.SentimentSlice, err error)
	SearchByKeyword(ctx context.Context, word string) (sentences, paragraphs []models.SentimentSlice, err error)
}

// Handlers bundles the dependencies of all route handlers.
type Handlers struct {
	ingest  *ingest.Service
	queries DocumentQueries
	enrich  *enrich.Client
	logger  logger.Logger
}

// New creates the handler set.
func New(svc *ingest.Service, q DocumentQueries, en *enrich.Client, log logger.Logger) *Handlers {
	return &Handlers{
		ingest:  svc,
		queries: q,
		enrich:  en,
		logger:  log.Named("api"),
	}
}
