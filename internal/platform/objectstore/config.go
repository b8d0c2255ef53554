package objectstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/folio-labs/folio-go/internal/platform/env"
)

type Config struct {
	Endpoint    string `env:"FOLIO_MINIO_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey   string `env:"FOLIO_MINIO_ACCESS_KEY" envDefault:"folio"`
	SecretKey   string `env:"FOLIO_MINIO_SECRET_KEY" envDefault:"foliominio"`
	Region      string `env:"FOLIO_MINIO_REGION" envDefault:"us-east-1"`
	UseSSL      bool   `env:"FOLIO_MINIO_USE_SSL" envDefault:"false"`
	BucketMedia string `env:"FOLIO_MINIO_BUCKET_MEDIA" envDefault:"media"`
	// MaxUploadBytes bounds a single media upload.
	MaxUploadBytes int64 `env:"FOLIO_MEDIA_MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return errors.New("endpoint is required")
	}
	if strings.TrimSpace(c.AccessKey) == "" {
		return errors.New("access key is required")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("secret key is required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("region is required")
	}
	if strings.TrimSpace(c.BucketMedia) == "" {
		return errors.New("media bucket is required")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}
	if strings.Contains(c.Endpoint, "://") {
		return fmt.Errorf("endpoint must not include scheme: %q", c.Endpoint)
	}
	return nil
}
