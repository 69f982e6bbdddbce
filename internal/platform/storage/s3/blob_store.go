/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-21
 * Change License: AGPL-3.0
 */

package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/TraceApi/brasil-utils/internal/core/domain"
	"github.com/TraceApi/brasil-utils/internal/core/ports"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BlobStore keeps cache entries as objects named <namespace>/<key>.json.
// The object's LastModified is the stored-at time.
type BlobStore struct {
	client *s3.Client
	bucket string
	maxAge time.Duration
	now    func() time.Time
}

var _ ports.DocumentCache = (*BlobStore)(nil)

type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	MaxAge    time.Duration
}

func NewBlobStore(ctx context.Context, cfg Config) (*BlobStore, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &BlobStore{client: client, bucket: cfg.Bucket, maxAge: cfg.MaxAge, now: time.Now}, nil
}

func (b *BlobStore) Put(ctx context.Context, namespace, key string, document []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey(namespace, key)),
		Body:        bytes.NewReader(document),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}

// Get downloads the object when it exists and is fresh. Missing objects and
// transport errors are both a miss.
func (b *BlobStore) Get(ctx context.Context, namespace, key string, validUntil time.Time) ([]byte, bool) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey(namespace, key)),
	})
	if err != nil {
		return nil, false
	}
	defer out.Body.Close()

	entry := domain.CacheEntry{Namespace: namespace, Key: key, StoredAt: aws.ToTime(out.LastModified)}
	if !entry.Fresh(b.now(), validUntil, b.maxAge) {
		return nil, false
	}

	data, err := io.ReadAll(out.Body)
	if err != nil || !json.Valid(data) {
		return nil, false
	}
	return data, true
}

func objectKey(namespace, key string) string {
	return path.Join(namespace, key+".json")
}
