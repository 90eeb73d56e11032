package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const snapshotContentType = "application/json"

// MinioStore archives per-user todo snapshots in object storage.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	// Ensure bucket exists
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

// SnapshotKey is the object key holding ownerID's latest export.
func SnapshotKey(ownerID string) string {
	return ownerID + "/todos.json"
}

// PutSnapshot overwrites ownerID's stored export with data.
func (s *MinioStore) PutSnapshot(ctx context.Context, ownerID string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, SnapshotKey(ownerID), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: snapshotContentType})
	return classify("minio put snapshot", err)
}

// GetSnapshot returns ownerID's stored export, or nil if none exists.
func (s *MinioStore) GetSnapshot(ctx context.Context, ownerID string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, SnapshotKey(ownerID), minio.GetObjectOptions{})
	if err != nil {
		return nil, classify("minio get snapshot", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, classify("minio read snapshot", err)
	}
	return data, nil
}
