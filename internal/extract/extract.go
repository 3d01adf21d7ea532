// Package extract maps stored files to raw text. Dispatch is a pure mapping
// from the declared filename's extension to one of four strategies; unmapped
// extensions are rejected at the HTTP boundary and never reach a worker.
package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/codariq/sentidoc/pkg/logger"
)

// Kind tags the extraction strategy for a file.
type Kind int

const (
	KindUnsupported Kind = iota
	KindPDF
	KindImage
	KindPlainText
	KindWordProcessor
)

func (k Kind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	case KindPlainText:
		return "text"
	case KindWordProcessor:
		return "docx"
	default:
		return "unsupported"
	}
}

// KindForFilename maps a filename to its strategy by extension,
// case-insensitively.
func KindForFilename(name string) Kind {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return KindPDF
	case ".png", ".jpg", ".jpeg", ".gif":
		return KindImage
	case ".txt":
		return KindPlainText
	case ".docx":
		return KindWordProcessor
	default:
		return KindUnsupported
	}
}

// Supported reports whether a filename maps to an extraction strategy.
func Supported(name string) bool {
	return KindForFilename(name) != KindUnsupported
}

// ImageEngine recognizes text in an image. Implementations: local tesseract
// and AWS Textract.
type ImageEngine interface {
	Recognize(ctx context.Context, data []byte) (string, error)
}

// Extractor dispatches file bytes to the strategy for their declared name.
type Extractor struct {
	image  ImageEngine
	logger logger.Logger
}

func New(image ImageEngine, log logger.Logger) *Extractor {
	return &Extractor{image: image, logger: log}
}

// Extract returns the raw text of the file. Every strategy tolerates empty
// input and returns an empty string. PDF engine failures are swallowed into
// empty text so a broken PDF still flows through the pipeline; failures of
// the other strategies propagate and abort the task.
func (e *Extractor) Extract(ctx context.Context, data []byte, declaredFilename string) (string, error) {
	switch KindForFilename(declaredFilename) {
	case KindPDF:
		return e.extractPDF(data, declaredFilename), nil
	case KindImage:
		if len(data) == 0 {
			return "", nil
		}
		text, err := e.image.Recognize(ctx, data)
		if err != nil {
			return "", fmt.Errorf("failed to recognize image text: %w", err)
		}
		return text, nil
	case KindPlainText:
		return string(data), nil
	case KindWordProcessor:
		return extractDocx(data)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(declaredFilename))
	}
}
