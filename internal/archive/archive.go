// Package archive stores raw provider transaction batches in GCS so any
// analysis can be replayed later against the exact bytes that were fetched.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/moneymaven/insights/internal/domain"
	"github.com/moneymaven/insights/internal/logger"
)

const uploadTimeout = 2 * time.Minute

// Store is the archive surface jobs and the CLI depend on.
type Store interface {
	SaveBatch(ctx context.Context, accountID string, txs []domain.ProviderTransaction) (string, error)
	FetchBatch(ctx context.Context, uri string) ([]domain.ProviderTransaction, error)
}

// GCSStore writes batches to a GCS bucket. It assumes Application Default
// Credentials are configured.
type GCSStore struct {
	bucket string
}

var _ Store = &GCSStore{}

func NewGCSStore(bucket string) *GCSStore {
	return &GCSStore{bucket: bucket}
}

// SaveBatch uploads the batch as a JSON object and returns its gs:// URI.
// Object names embed the fetch date and a uuid so batches never collide.
func (s *GCSStore) SaveBatch(ctx context.Context, accountID string, txs []domain.ProviderTransaction) (string, error) {
	data, err := json.Marshal(txs)
	if err != nil {
		return "", fmt.Errorf("SaveBatch: marshal batch: %w", err)
	}

	objectName := fmt.Sprintf("raw/%s/%s-%s.json",
		accountID, time.Now().UTC().Format("2006-01-02"), uuid.NewString())

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("SaveBatch: create storage client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("SaveBatch: write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("SaveBatch: finalize upload: %w", err)
	}

	uri := fmt.Sprintf("gs://%s/%s", s.bucket, objectName)
	log := logger.FromContext(ctx)
	log.Debug().
		Str("uri", uri).
		Int("transactions", len(txs)).
		Msg("Archived raw batch")
	return uri, nil
}

// FetchBatch downloads and decodes an archived batch by its gs:// URI.
func (s *GCSStore) FetchBatch(ctx context.Context, uri string) ([]domain.ProviderTransaction, error) {
	bucket, object, err := splitURI(uri)
	if err != nil {
		return nil, fmt.Errorf("FetchBatch: %w", err)
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchBatch: create storage client: %w", err)
	}
	defer client.Close()

	rc, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("FetchBatch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("FetchBatch: reading bytes: %w", err)
	}

	var txs []domain.ProviderTransaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, fmt.Errorf("FetchBatch: decode batch: %w", err)
	}
	return txs, nil
}

// splitURI parses "gs://bucket/path/to/object" into its parts.
func splitURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}
