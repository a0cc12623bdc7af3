package writerbackends

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"pixbatch/logger"
)

// GCSWriter uploads artifacts to a Google Cloud Storage bucket.
type GCSWriter struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCS creates a storage client. A base64 service account key in credentialsJSON
// wins over a credentialsFile path; with neither, Application Default Credentials apply.
func NewGCS(ctx context.Context, accessInfo map[string]string) (*GCSWriter, error) {
	bucket := accessInfo["bucket"]
	if bucket == "" {
		return nil, errors.New("missing required accessInfo key: bucket")
	}

	var opts []option.ClientOption
	switch {
	case accessInfo["credentialsJSON"] != "":
		key, err := base64.StdEncoding.DecodeString(accessInfo["credentialsJSON"])
		if err != nil {
			return nil, fmt.Errorf("invalid credentialsJSON: %w", err)
		}
		opts = append(opts, option.WithCredentialsJSON(key))
	case accessInfo["credentialsFile"] != "":
		opts = append(opts, option.WithCredentialsFile(accessInfo["credentialsFile"]))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	return &GCSWriter{client: client, bucket: bucket, prefix: accessInfo["prefix"]}, nil
}

func (w *GCSWriter) Write(ctx context.Context, name string, r io.Reader) error {
	objectName := objectKey(w.prefix, name)
	wc := w.client.Bucket(w.bucket).Object(objectName).NewWriter(ctx)

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return fmt.Errorf("io.Copy: %w", err)
	}
	// Close completes the upload.
	if err := wc.Close(); err != nil {
		return fmt.Errorf("Writer.Close: %w", err)
	}

	logger.Debugf("uploaded object '%s' to bucket '%s'", objectName, w.bucket)
	return nil
}

func (w *GCSWriter) Describe() string {
	return fmt.Sprintf("gs://%s/%s", w.bucket, objectKey(w.prefix, ""))
}

func (w *GCSWriter) Close() error { return w.client.Close() }
