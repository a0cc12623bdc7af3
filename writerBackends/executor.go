package writerbackends

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Backend types accepted by Open.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendGCS   = "gcs"
	BackendSFTP  = "sftp"
)

// Writer stores named artifacts somewhere. Implementations are opened once per run
// and are safe for concurrent Write calls.
type Writer interface {
	// Write stores the content of r under name, replacing any previous object.
	Write(ctx context.Context, name string, r io.Reader) error
	// Describe returns a human readable destination for logs.
	Describe() string
	Close() error
}

// Open builds the writer for backendType from its accessInfo.
// local: dir. s3: bucket, region, accessKey, secretKey, prefix.
// gcs: bucket, credentialsJSON|credentialsFile, prefix. sftp: host, port, user, password|privateKey, remoteDir.
func Open(ctx context.Context, backendType string, accessInfo map[string]string) (Writer, error) {
	switch backendType {
	case BackendLocal:
		w, err := NewLocal(accessInfo["dir"])
		if err != nil {
			return nil, fmt.Errorf("failed to open local writer: %w", err)
		}
		return w, nil
	case BackendS3:
		w, err := NewS3(ctx, accessInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to open S3 writer: %w", err)
		}
		return w, nil
	case BackendGCS:
		w, err := NewGCS(ctx, accessInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to open GCS writer: %w", err)
		}
		return w, nil
	case BackendSFTP:
		w, err := NewSFTP(ctx, accessInfo)
		if err != nil {
			return nil, fmt.Errorf("failed to open SFTP writer: %w", err)
		}
		return w, nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", backendType)
	}
}

// objectKey joins a slash separated prefix and a name, ignoring empty or slashed prefixes.
func objectKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}
