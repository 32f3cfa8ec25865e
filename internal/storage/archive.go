// Package storage archives raw uploads and finished import outcomes
// to S3 for audit and replay.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ignite/seller-directory/internal/domain"
)

// S3Archive implements importer.Archiver against an S3 bucket. Objects
// are keyed imports/<uploadId>/source... and imports/<uploadId>/outcome.json.
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Archive loads AWS config from the environment and returns an
// archive bound to bucket. An optional shared-config profile may be
// named for local development.
func NewS3Archive(ctx context.Context, bucket, region, profile string) (*S3Archive, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &S3Archive{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		prefix: "imports",
	}, nil
}

func (a *S3Archive) ArchiveSource(ctx context.Context, uploadID, fileName string, data []byte) error {
	name := fileName
	if name == "" {
		name = "source"
	}
	key := path.Join(a.prefix, uploadID, path.Base(name))
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("archive source to s3: %w", err)
	}
	return nil
}

func (a *S3Archive) ArchiveOutcome(ctx context.Context, outcome *domain.ImportOutcome) error {
	payload, err := json.MarshalIndent(outcome, "", "  ")
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	key := path.Join(a.prefix, outcome.UploadID, "outcome.json")
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("archive outcome to s3: %w", err)
	}
	return nil
}
