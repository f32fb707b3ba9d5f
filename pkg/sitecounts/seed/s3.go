package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Config options for reading seeds from S3-compatible storage
type S3Config struct {
	Region          string `env:"SEED_S3_REGION" env-description:"S3 region of the seed bucket"`
	Endpoint        string `env:"SEED_S3_ENDPOINT" env-description:"Custom endpoint for S3-compatible services"`
	AccessKeyID     string `env:"SEED_S3_ACCESS_KEY_ID" env-description:"Access key id; default credential chain when empty"`
	SecretAccessKey string `env:"SEED_S3_SECRET_ACCESS_KEY" env-description:"Secret access key"`
	UsePathStyle    bool   `env:"SEED_S3_USE_PATH_STYLE" env-description:"Use path-style addressing (MinIO)"`
}

func newS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	return s3.NewFromConfig(awsCfg, s3Options...), nil
}

func openS3(ctx context.Context, cfg S3Config, bucket, key string) (io.ReadCloser, error) {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return download(ctx, client, bucket, key)
}

// download fetches the whole object into memory; seed files are small.
func download(ctx context.Context, client manager.DownloadAPIClient, bucket, key string) (io.ReadCloser, error) {
	buf := manager.NewWriteAtBuffer([]byte{})
	downloader := manager.NewDownloader(client)

	_, err := downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && (apiErr.ErrorCode() == "NoSuchKey" || apiErr.ErrorCode() == "NotFound") {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrSeedNotFound, bucket, key)
		}
		return nil, fmt.Errorf("failed to download seed: %w", err)
	}

	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}
