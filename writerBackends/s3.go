package writerbackends

import (
	"context"
	"errors"
	"fmt"
	"io"

	"pixbatch/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Writer uploads artifacts to an S3 bucket under an optional key prefix.
type S3Writer struct {
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

// NewS3 builds a client from static credentials in accessInfo. The client and its
// uploader are shared by every Write.
func NewS3(ctx context.Context, accessInfo map[string]string) (*S3Writer, error) {
	bucket := accessInfo["bucket"]
	region := accessInfo["region"]
	if bucket == "" || region == "" {
		return nil, errors.New("missing required accessInfo keys: bucket, region")
	}

	opts := s3.Options{Region: region}
	if accessInfo["accessKey"] != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(accessInfo["accessKey"], accessInfo["secretKey"], "")
	}
	client := s3.New(opts)

	return &S3Writer{
		bucket:   bucket,
		prefix:   accessInfo["prefix"],
		uploader: manager.NewUploader(client),
	}, nil
}

func (w *S3Writer) Write(ctx context.Context, name string, r io.Reader) error {
	key := objectKey(w.prefix, name)
	_, err := w.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s to bucket %s: %w", key, w.bucket, err)
	}

	logger.Debugf("uploaded object '%s' to bucket '%s'", key, w.bucket)
	return nil
}

func (w *S3Writer) Describe() string {
	return fmt.Sprintf("s3://%s/%s", w.bucket, objectKey(w.prefix, ""))
}

func (w *S3Writer) Close() error { return nil }
