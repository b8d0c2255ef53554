package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSiteConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("SITE_PUBLIC_HOST", " Example.DEV ")
	t.Setenv("SITE_CORS_ORIGINS", "https://example.dev, https://www.example.dev")
	t.Setenv("SITE_STORAGE", " Memory ")

	cfg, err := siteConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, "example.dev", cfg.PublicHost)
	require.Equal(t, storageMemory, cfg.Storage)
	require.True(t, cfg.MediaEnabled)
	require.False(t, cfg.TrustProxy)
	require.Equal(t, []string{"https://example.dev", "https://www.example.dev"}, cfg.CORSOrigins())
}

func TestSiteConfig_Validate(t *testing.T) {
	valid := siteConfig{Addr: ":8080", ShutdownTimeout: time.Second, Storage: storagePostgres}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*siteConfig)
		want   string
	}{
		{"addr", func(c *siteConfig) { c.Addr = " " }, "SITE_HTTP_ADDR"},
		{"shutdown", func(c *siteConfig) { c.ShutdownTimeout = 0 }, "SITE_SHUTDOWN_TIMEOUT"},
		{"host", func(c *siteConfig) { c.PublicHost = "https://example.dev/" }, "SITE_PUBLIC_HOST"},
		{"storage", func(c *siteConfig) { c.Storage = "sqlite" }, "SITE_STORAGE"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestSiteConfigFromEnv_RejectsBadDuration(t *testing.T) {
	t.Setenv("SITE_SHUTDOWN_TIMEOUT", "soon")

	_, err := siteConfigFromEnv()
	require.Error(t, err)
}
