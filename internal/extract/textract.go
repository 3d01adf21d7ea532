package extract

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	cfg "github.com/codariq/sentidoc/config"
	"github.com/codariq/sentidoc/pkg/logger"
)

// TextractEngine recognizes image text through AWS Textract. Selected by
// config when local tesseract is unavailable or hosted OCR is preferred.
type TextractEngine struct {
	client *textract.Client
	logger logger.Logger
}

func NewTextractEngine(ctx context.Context, log logger.Logger) (*TextractEngine, error) {
	awsConfig := cfg.GetAWSConfig()

	creds := credentials.NewStaticCredentialsProvider(
		awsConfig.AccessKey,
		awsConfig.SecretKey,
		"",
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(awsConfig.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &TextractEngine{
		client: textract.NewFromConfig(awsCfg),
		logger: log,
	}, nil
}

// Recognize implements ImageEngine. It joins detected lines with newlines,
// preserving the top-to-bottom reading order Textract reports.
func (t *TextractEngine) Recognize(ctx context.Context, data []byte) (string, error) {
	out, err := t.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{
			Bytes: data,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to detect document text: %w", err)
	}

	var lines []string
	for _, block := range out.Blocks {
		if block.BlockType == types.BlockTypeLine && block.Text != nil {
			lines = append(lines, *block.Text)
		}
	}
	return strings.Join(lines, "\n"), nil
}
