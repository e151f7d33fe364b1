package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"

	"github.com/seqarchive/seqsubmit/internal/models"
)

// S3Options configures the S3-compatible archive endpoint.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3 uploads entries with PutObject. An existing key is reported in the
// already-exists vocabulary rather than overwritten: archive objects are
// immutable once validated.
type S3 struct {
	client *s3.Client
	bucket string
}

func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("loading s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3{client: client, bucket: opts.Bucket}, nil
}

func (u *S3) Upload(ctx context.Context, e *models.FileEntry) (string, error) {
	path := filepath.Join(e.ResolvedDir, e.FileName)
	key := e.ID + "/" + e.FileName

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("local file not found for %s (%s)\n", e.ID, path), nil
		}
		return "", err
	}
	defer f.Close()

	if u.exists(ctx, key) {
		return fmt.Sprintf("file %s already exists at the destination\n", e.ID), nil
	}

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	contentType := "application/octet-stream"
	if m, err := mimetype.DetectFile(path); err == nil {
		contentType = m.String()
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(info.Size()),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("upload finished for file %s (%d bytes)\n", e.ID, info.Size()), nil
}

func (u *S3) exists(ctx context.Context, key string) bool {
	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return false
		}
		// Head failures other than 404 are treated as absent; the Put will
		// surface the real problem.
		return false
	}
	return true
}
