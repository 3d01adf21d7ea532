package extract

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/codariq/sentidoc/pkg/logger"
)

// minOCRWidth is the width below which images are upscaled before
// recognition; tesseract accuracy drops sharply on small scans.
const minOCRWidth = 1024

// TesseractEngine runs OCR locally through tesseract with a light
// grayscale/upscale preprocessing pass.
type TesseractEngine struct {
	languages []string
	logger    logger.Logger
}

func NewTesseractEngine(languages []string, log logger.Logger) *TesseractEngine {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractEngine{languages: languages, logger: log}
}

// Recognize implements ImageEngine.
func (t *TesseractEngine) Recognize(ctx context.Context, data []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	img = imaging.Grayscale(img)
	if width := img.Bounds().Dx(); width > 0 && width < minOCRWidth {
		img = imaging.Resize(img, minOCRWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode preprocessed image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.languages...); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to load image into OCR engine: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to run OCR: %w", err)
	}
	return text, nil
}
