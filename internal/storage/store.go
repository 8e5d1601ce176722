// Package storage wraps the S3-compatible object store that holds every
// uploaded photo, derived transformation and generated QR code. The database
// keeps URLs only; all pixel data goes through this package.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/photoshare/backend/internal/config"
)

// Store uploads and fetches image objects.
type Store struct {
	Client *s3.Client
	Cfg    config.StorageConfig
}

func New(client *s3.Client, cfg config.StorageConfig) *Store {
	return &Store{Client: client, Cfg: cfg}
}

// Upload stores data under key with the given content type and returns the
// public URL of the object.
func (s *Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

// UploadStream is Upload for callers holding a reader, e.g. a multipart file.
func (s *Store) UploadStream(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Cfg.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Download fetches the full object stored under key.
func (s *Store) Download(ctx context.Context, key string) ([]byte, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// Delete removes the object stored under key. Deleting a missing object is
// not an error on S3, which suits the fire-and-forget cleanup callers do.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// URL builds the public URL for an object key, escaping path segments so
// keys containing the original filename stay valid URLs.
func (s *Store) URL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimRight(s.Cfg.PublicURL, "/") + "/" + strings.Join(parts, "/")
}

// KeyFromURL recovers the object key from a public URL produced by URL.
// Returns an empty string when u does not point into this store.
func (s *Store) KeyFromURL(u string) string {
	prefix := strings.TrimRight(s.Cfg.PublicURL, "/") + "/"
	if !strings.HasPrefix(u, prefix) {
		return ""
	}
	escaped := strings.TrimPrefix(u, prefix)
	parts := strings.Split(escaped, "/")
	for i, p := range parts {
		if dec, err := url.PathUnescape(p); err == nil {
			parts[i] = dec
		}
	}
	return strings.Join(parts, "/")
}
