// Package objects collects bucket inventory from the Objects store's
// S3-compatible endpoint. It is the one collector that does not go
// through Prism; Objects exposes bucket metadata only over S3.
package objects

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nutanix-exporter/nutanix-exporter/internal/config"
)

// Bucket is one bucket's inventory entry.
type Bucket struct {
	Name    string
	Created float64 // unix seconds
}

// Inventory is the result of one bucket listing.
type Inventory struct {
	BucketCount float64
	Buckets     []Bucket
}

// Client lists buckets on a single Objects store endpoint.
type Client struct {
	s3     *s3.Client
	logger *slog.Logger
}

// NewClient creates an S3 client for the configured Objects endpoint.
// Objects stores speak path-style S3 only.
func NewClient(ctx context.Context, cfg config.ObjectsConfig, logger *slog.Logger) (*Client, error) {
	if cfg.S3Endpoint == "" {
		return nil, fmt.Errorf("objects S3 endpoint cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	region := cfg.S3Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey, cfg.S3SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &Client{s3: client, logger: logger}, nil
}

// ListBuckets returns the bucket inventory for the endpoint.
func (c *Client) ListBuckets(ctx context.Context) (*Inventory, error) {
	output, err := c.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}

	inventory := &Inventory{
		BucketCount: float64(len(output.Buckets)),
		Buckets:     make([]Bucket, 0, len(output.Buckets)),
	}
	for _, b := range output.Buckets {
		bucket := Bucket{Name: aws.ToString(b.Name)}
		if b.CreationDate != nil {
			bucket.Created = float64(b.CreationDate.Unix())
		}
		inventory.Buckets = append(inventory.Buckets, bucket)
	}

	c.logger.Debug("Listed object store buckets", "count", len(inventory.Buckets))
	return inventory, nil
}
