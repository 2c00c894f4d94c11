package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mattdimens/vehicle-analyzer-sub000/internal/domain/uploads"
)

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	publicBase string
	expiry     time.Duration
}

// New connects to the object store and ensures the bucket exists.
// publicBase, when set, is the CDN/base URL clients read objects from;
// otherwise URLs are built from the store endpoint directly.
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool, publicBase string, expiry time.Duration) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Store{
		client:     cli,
		bucketName: bucket,
		region:     region,
		publicBase: strings.TrimRight(publicBase, "/"),
		expiry:     expiry,
	}, nil
}

// IssueSlot implements uploads.Issuer. The presigned PUT is scoped to a
// single object key; uploading the same key twice overwrites, which is
// the configured conflict behavior (callers namespace their filenames).
// contentType is advisory: the client must send it as the Content-Type
// header on the PUT, the signature does not pin it.
func (s *Store) IssueSlot(ctx context.Context, objectName, contentType string) (*uploads.Slot, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucketName, objectName, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign %s: %w", objectName, err)
	}
	return &uploads.Slot{
		SignedURL: u.String(),
		Path:      objectName,
		PublicURL: s.PublicURL(objectName),
		ExpiresAt: time.Now().Add(s.expiry),
	}, nil
}

// PublicURL builds the durable read URL for an object key.
func (s *Store) PublicURL(key string) string {
	if s.publicBase != "" {
		return s.publicBase + "/" + key
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.client.EndpointURL().String(), "/"), s.bucketName, key)
}

// Check reports storage reachability for the health endpoint.
func (s *Store) Check(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}
