package config

import "os"

// MirrorAccessInfo collects the credentials and destination of a mirror backend from
// the environment. Secrets are only ever read from the environment, never from flags.
func MirrorAccessInfo(kind string) map[string]string {
	var keys map[string]string
	switch kind {
	case MirrorS3:
		keys = map[string]string{
			"bucket":    "PIXBATCH_S3_BUCKET",
			"region":    "PIXBATCH_S3_REGION",
			"accessKey": "PIXBATCH_S3_ACCESS_KEY",
			"secretKey": "PIXBATCH_S3_SECRET_KEY",
			"prefix":    "PIXBATCH_S3_PREFIX",
		}
	case MirrorGCS:
		keys = map[string]string{
			"bucket":          "PIXBATCH_GCS_BUCKET",
			"credentialsFile": "PIXBATCH_GCS_CREDENTIALS_FILE",
			"credentialsJSON": "PIXBATCH_GCS_CREDENTIALS_JSON",
			"prefix":          "PIXBATCH_GCS_PREFIX",
		}
	case MirrorSFTP:
		keys = map[string]string{
			"host":       "PIXBATCH_SFTP_HOST",
			"port":       "PIXBATCH_SFTP_PORT",
			"user":       "PIXBATCH_SFTP_USER",
			"password":   "PIXBATCH_SFTP_PASSWORD",
			"privateKey": "PIXBATCH_SFTP_PRIVATE_KEY",
			"remoteDir":  "PIXBATCH_SFTP_REMOTE_DIR",
		}
	default:
		return map[string]string{}
	}

	info := make(map[string]string, len(keys))
	for field, env := range keys {
		if v := os.Getenv(env); v != "" {
			info[field] = v
		}
	}
	return info
}
