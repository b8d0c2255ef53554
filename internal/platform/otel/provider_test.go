package otel

import (
	"context"
	"testing"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: true}, "testsvc")
	if err != nil {
		t.Fatalf("Setup() err=%v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() err=%v", err)
	}
}

func TestConfig_Active(t *testing.T) {
	cases := []struct {
		cfg  Config
		want bool
	}{
		{Config{}, false},
		{Config{Enabled: true}, false},
		{Config{Enabled: false, Endpoint: "http://collector:4318"}, false},
		{Config{Enabled: true, Endpoint: "http://collector:4318"}, true},
	}
	for _, tc := range cases {
		if got := tc.cfg.Active(); got != tc.want {
			t.Fatalf("Active(%+v)=%v, want %v", tc.cfg, got, tc.want)
		}
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("OTEL_ENDPOINT", " http://collector:4318 ")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if !cfg.Active() || cfg.Endpoint != "http://collector:4318" {
		t.Fatalf("cfg=%+v, want active with trimmed endpoint", cfg)
	}
}
