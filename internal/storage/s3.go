// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3 stores content objects in one bucket of an S3-compatible service.
// It uses path-style addressing, which CEPH and MinIO require.
type S3 struct {
	s3     *s3.Client
	bucket string
	prefix string
}

// NewS3 creates an S3 backend. Returns (nil, nil) if endpoint or
// credentials are empty, so the caller can fall back to a Dir backend.
func NewS3(endpoint, region, accessKey, secretKey, bucket, prefix string) (*S3, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}
	if bucket == "" {
		return nil, fmt.Errorf("s3 content backend: bucket is required")
	}

	endpoint = strings.TrimRight(endpoint, "/")

	client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &S3{
		s3:     client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (c *S3) objectKey(key string) (string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	if c.prefix != "" {
		k = c.prefix + "/" + k
	}
	return k, nil
}

// Put uploads data under key.
func (c *S3) Put(ctx context.Context, key, contentType string, data []byte) error {
	k, err := c.objectKey(key)
	if err != nil {
		return err
	}

	_, err = c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(k),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", c.bucket, k, err)
	}
	return nil
}

// Get downloads the object stored under key.
func (c *S3) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := c.objectKey(key)
	if err != nil {
		return nil, err
	}

	output, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, fmt.Errorf("s3 download %s/%s: %w", c.bucket, k, ErrNotExist)
		}
		return nil, fmt.Errorf("s3 download %s/%s: %w", c.bucket, k, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read body %s/%s: %w", c.bucket, k, err)
	}
	return data, nil
}

// Delete removes the object stored under key. S3 reports success for
// missing keys.
func (c *S3) Delete(ctx context.Context, key string) error {
	k, err := c.objectKey(key)
	if err != nil {
		return err
	}

	_, err = c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", c.bucket, k, err)
	}
	return nil
}
