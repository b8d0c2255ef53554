package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folio-labs/folio-go/internal/platform/env"
)

const (
	storagePostgres = "postgres"
	storageMemory   = "memory"
)

type siteConfig struct {
	Addr            string        `env:"SITE_HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SITE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// PublicHost is the site's own host name; referrers from it count as internal.
	PublicHost     string `env:"SITE_PUBLIC_HOST"`
	CORSOriginsRaw string `env:"SITE_CORS_ORIGINS"`
	TrustProxy     bool   `env:"SITE_TRUST_PROXY" envDefault:"false"`
	Storage        string `env:"SITE_STORAGE" envDefault:"postgres"`
	MediaEnabled   bool   `env:"SITE_MEDIA_ENABLED" envDefault:"true"`

	ChatbotKnowledgeFile string `env:"CHATBOT_KNOWLEDGE_FILE"`
}

func siteConfigFromEnv() (siteConfig, error) {
	var cfg siteConfig
	if err := env.Parse(&cfg); err != nil {
		return siteConfig{}, err
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	cfg.PublicHost = strings.ToLower(strings.TrimSpace(cfg.PublicHost))
	cfg.ChatbotKnowledgeFile = strings.TrimSpace(cfg.ChatbotKnowledgeFile)
	if err := cfg.Validate(); err != nil {
		return siteConfig{}, err
	}
	return cfg, nil
}

func (c siteConfig) CORSOrigins() []string {
	return env.CSV(c.CORSOriginsRaw)
}

func (c siteConfig) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("SITE_HTTP_ADDR is required")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SITE_SHUTDOWN_TIMEOUT must be positive")
	}
	if strings.Contains(c.PublicHost, "/") {
		return fmt.Errorf("SITE_PUBLIC_HOST must be a bare host name (got %q)", c.PublicHost)
	}
	switch c.Storage {
	case storagePostgres, storageMemory:
	default:
		return fmt.Errorf("SITE_STORAGE must be one of: postgres, memory (got %q)", c.Storage)
	}
	return nil
}
