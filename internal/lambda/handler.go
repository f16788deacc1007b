package lambda

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stahnma/gh-shelf/internal/commands"
	"github.com/stahnma/gh-shelf/internal/history"
)

// ObjectPutter is the part of the S3 client the handler uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Exporter refreshes and exports one identity's repository lists.
type Exporter interface {
	Refresh(ctx context.Context) (identity string, err error)
	ExportJSON(ctx context.Context, w io.Writer, identity string) error
}

// NewS3Client builds an S3 client for region from the default AWS config.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// NewHandler returns a Lambda handler that preloads the token owner's
// repositories and uploads the JSON export to S3. objectKey is formatted with
// the identity and the date.
func NewHandler(app *commands.App) func(context.Context, any) (string, error) {
	return func(ctx context.Context, _ any) (string, error) {
		if app.Config.S3Bucket == "" || app.Config.S3ObjectKey == "" {
			return "", fmt.Errorf("S3_BUCKET_NAME and S3_OBJECT_KEY environment variables must be set")
		}
		svc, err := NewS3Client(ctx, app.Config.AWSRegion)
		if err != nil {
			return "", err
		}
		return Publish(ctx, app.Logger, app, svc, app.Config.S3Bucket, app.Config.S3ObjectKey, time.Now())
	}
}

// Publish refreshes the export and writes it to bucket.
func Publish(ctx context.Context, logger *slog.Logger, exp Exporter, svc ObjectPutter, bucket, objectKey string, now time.Time) (string, error) {
	identity, err := exp.Refresh(ctx)
	if err != nil {
		return "", fmt.Errorf("preload: %w", err)
	}

	var buf bytes.Buffer
	if err := exp.ExportJSON(ctx, &buf, identity); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if buf.Len() == 0 {
		return "", fmt.Errorf("export command produced no output")
	}

	key := fmt.Sprintf(objectKey, identity, now.Format(history.DateLayout))
	_, err = svc.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}
	logger.Info("export uploaded", slog.String("bucket", bucket), slog.String("key", key))

	return "Lambda executed successfully and output uploaded to S3", nil
}
