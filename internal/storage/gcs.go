package storage

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// ResumeArchive keeps a copy of every uploaded resume file in a GCS bucket.
type ResumeArchive struct {
	client *storage.Client
	bucket string
	now    func() time.Time
}

func NewResumeArchive(ctx context.Context, bucket string) (*ResumeArchive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	return &ResumeArchive{client: client, bucket: bucket, now: time.Now}, nil
}

// ObjectKey is resumes/<user>/<yyyy-mm-dd>/<uuid>.pdf
func (a *ResumeArchive) ObjectKey(userID string) string {
	return fmt.Sprintf("resumes/%s/%s/%s.pdf", userID, a.now().UTC().Format("2006-01-02"), uuid.NewString())
}

// Archive uploads data and returns the object key.
func (a *ResumeArchive) Archive(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	key := a.ObjectKey(userID)

	w := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"user_id": userID}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("writing object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing object %s: %w", key, err)
	}
	return key, nil
}

func (a *ResumeArchive) Close() error {
	return a.client.Close()
}
