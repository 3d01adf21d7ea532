package extract

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/codariq/sentidoc/pkg/logger"
)

// extractPDF concatenates the plain text of every page. Engine errors are
// deliberately swallowed into empty text: a malformed PDF must not fail the
// task, it only produces an empty document.
func (e *Extractor) extractPDF(data []byte, filename string) (text string) {
	if len(data) == 0 {
		return ""
	}

	// The engine panics on some malformed files; those fall under the same
	// empty-text policy as parse errors.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("PDF parse panicked, yielding empty text",
				logger.String("filename", filename),
				logger.Any("panic", r),
			)
			text = ""
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		e.logger.Warn("PDF parse failed, yielding empty text",
			logger.String("filename", filename),
			logger.Error(err),
		)
		return ""
	}

	var sb strings.Builder
	for i := 1; i <= pdfReader.NumPage(); i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Warn("PDF text extraction failed, yielding empty text",
				logger.String("filename", filename),
				logger.Int("page", i),
				logger.Error(err),
			)
			return ""
		}
		sb.WriteString(text)
	}
	return sb.String()
}
