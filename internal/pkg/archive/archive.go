package archive

import (
	"bytes"
	"context"
	"fmt"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/bytedance/sonic"
	"github.com/ougirez/pricelist/internal/domain"
	"github.com/ougirez/pricelist/internal/pkg/logger"
)

// Archiver stores the transformed rows of a finished upload.
type Archiver interface {
	Archive(ctx context.Context, uploadID string, rows []domain.TransformedItem, chunkSize int) error
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type S3 struct {
	client putObjectAPI
	bucket string
}

// New builds an S3 archiver. A non-empty Endpoint targets an S3-compatible
// server (minio, localstack) with path-style addressing.
func New(ctx context.Context, opts Options) (*S3, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(opts.Region)}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("awsconfig.LoadDefaultConfig: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{client: client, bucket: opts.Bucket}, nil
}

// ChunkKey names the n-th chunk of an upload, counting from 1.
func ChunkKey(uploadID string, n int) string {
	return fmt.Sprintf("chunks/%s/chunk_%d.json", uploadID, n)
}

// Archive writes rows as JSON arrays of at most chunkSize rows each.
func (a *S3) Archive(ctx context.Context, uploadID string, rows []domain.TransformedItem, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = len(rows)
	}

	for n, lo := 1, 0; lo < len(rows); n, lo = n+1, lo+chunkSize {
		hi := min(lo+chunkSize, len(rows))

		body, err := sonic.Marshal(rows[lo:hi])
		if err != nil {
			return fmt.Errorf("sonic.Marshal: %w", err)
		}

		_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.bucket),
			Key:         aws.String(ChunkKey(uploadID, n)),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			return fmt.Errorf("client.PutObject: %w", err)
		}
	}

	logger.Debugf(ctx, "archived %d rows of upload %s", len(rows), uploadID)
	return nil
}

// Nop is used when no bucket is configured.
type Nop struct{}

func (Nop) Archive(context.Context, string, []domain.TransformedItem, int) error {
	return nil
}
