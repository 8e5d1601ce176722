package config

// This file constructs the S3 client used for photo storage.  The application
// stores every uploaded or transformed image as an object in an S3-compatible
// bucket and keeps only the public URL in the database.  Credentials and the
// endpoint come from environment variables so the same code works against AWS
// proper or any S3-compatible provider (MinIO, R2).

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// StorageConfig carries the bucket name and the public URL prefix under which
// stored objects are reachable.  PublicURL is joined with the object key when
// building image URLs, e.g. "https://cdn.example.com" + "/" + key.
type StorageConfig struct {
	Bucket    string
	PublicURL string
}

// LoadStorageConfig reads the storage bucket settings from the environment.
func LoadStorageConfig() StorageConfig {
	return StorageConfig{
		Bucket:    must("STORAGE_BUCKET"),
		PublicURL: must("STORAGE_PUBLIC_URL"),
	}
}

// NewStorageClient builds an S3 client from STORAGE_* environment variables.
// When STORAGE_ENDPOINT is set it overrides the default AWS endpoint, which
// is how S3-compatible providers are targeted.  Path-style addressing is
// enabled in that case because most compatible providers require it.
func NewStorageClient(ctx context.Context) (*s3.Client, error) {
	region := getenv("STORAGE_REGION", "auto")
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			must("STORAGE_ACCESS_KEY_ID"),
			must("STORAGE_SECRET_ACCESS_KEY"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	endpoint := os.Getenv("STORAGE_ENDPOINT")
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}
