package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var (
	awsOnce   sync.Once
	awsConfig *AWSConfig
)

// AWSConfig carries the credentials shared by the S3 storage backend and the
// Textract OCR engine.
type AWSConfig struct {
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
}

// GetAWSConfig loads the AWS settings from the environment once.
func GetAWSConfig() *AWSConfig {
	awsOnce.Do(func() {
		_ = godotenv.Load()

		awsConfig = &AWSConfig{
			Region:     os.Getenv("AWS_REGION"),
			Endpoint:   os.Getenv("AWS_ENDPOINT"),
			AccessKey:  os.Getenv("AWS_ACCESS_KEY"),
			SecretKey:  os.Getenv("AWS_SECRET_KEY"),
			BucketName: os.Getenv("AWS_S3_BUCKET_NAME"),
		}
	})
	return awsConfig
}
