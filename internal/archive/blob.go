package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"

	"github.com/hearthhub/configflow/pkg/api"
)

type (
	// BlobArchiver writes terminal flows into a gocloud blob bucket
	BlobArchiver struct {
		bucket *blob.Bucket
		owned  bool
	}

	// archivedFlow is the cold-storage record. The handler context is
	// included here; the bucket is not an API surface
	archivedFlow struct {
		Flow       *api.FlowInstance `json:"flow"`
		Context    api.Data          `json:"context,omitempty"`
		ArchivedAt time.Time         `json:"archived_at"`
	}
)

// NewBlobArchiver opens a bucket from a gocloud URL (file://, mem://)
func NewBlobArchiver(ctx context.Context, url string) (*BlobArchiver, error) {
	bucket, err := blob.OpenBucket(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive bucket: %w", err)
	}
	return &BlobArchiver{bucket: bucket, owned: true}, nil
}

// NewBlobArchiverFromBucket wraps an already open bucket
func NewBlobArchiverFromBucket(bucket *blob.Bucket) *BlobArchiver {
	return &BlobArchiver{bucket: bucket}
}

// Put writes one flow under flows/<domain>/<flow-id>.json
func (a *BlobArchiver) Put(ctx context.Context, f *api.FlowInstance) error {
	rec := archivedFlow{
		Flow:       f,
		Context:    f.Context,
		ArchivedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode flow %s: %w", f.ID, err)
	}
	key := a.Key(f)
	if err := a.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Get reads an archived flow back by its key
func (a *BlobArchiver) Get(
	ctx context.Context, key string,
) (*api.FlowInstance, error) {
	data, err := a.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	var rec archivedFlow
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	rec.Flow.Context = rec.Context
	return rec.Flow, nil
}

// Key returns the bucket key for a flow
func (a *BlobArchiver) Key(f *api.FlowInstance) string {
	return fmt.Sprintf("flows/%s/%s.json", f.Domain, f.ID)
}

// Close releases the bucket if this archiver opened it
func (a *BlobArchiver) Close() error {
	if !a.owned {
		return nil
	}
	return a.bucket.Close()
}
