package config

import "log"

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}

// MustServe checks everything the HTTP server cannot start without.
func (c Config) MustServe() {
	MustNonEmpty(c.DatabaseURL, "DATABASE_URL")
	MustNonEmptyBytes(c.JWTSecret, "JWT_SECRET")
	MustNonEmpty(c.Storage.Endpoint, "MINIO_ENDPOINT")
	MustNonEmpty(c.Storage.AccessKey, "MINIO_ACCESS_KEY")
	MustNonEmpty(c.Storage.SecretKey, "MINIO_SECRET_KEY")
	MustNonEmpty(c.Storage.Bucket, "MINIO_BUCKET")
}
