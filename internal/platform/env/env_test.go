package env

import (
	"testing"
	"time"
)

type testConfig struct {
	Name    string        `env:"ENV_TEST_NAME" envDefault:"fallback"`
	Timeout time.Duration `env:"ENV_TEST_TIMEOUT" envDefault:"5s"`
	Enabled bool          `env:"ENV_TEST_ENABLED" envDefault:"true"`
	Count   int           `env:"ENV_TEST_COUNT" envDefault:"42"`
}

func TestParse_Defaults(t *testing.T) {
	var cfg testConfig
	if err := Parse(&cfg); err != nil {
		t.Fatalf("Parse() err=%v", err)
	}
	if cfg.Name != "fallback" {
		t.Fatalf("Name=%q, want fallback", cfg.Name)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("Timeout=%v, want 5s", cfg.Timeout)
	}
	if !cfg.Enabled {
		t.Fatalf("Enabled=%v, want true", cfg.Enabled)
	}
	if cfg.Count != 42 {
		t.Fatalf("Count=%d, want 42", cfg.Count)
	}
}

func TestParse_Override(t *testing.T) {
	t.Setenv("ENV_TEST_NAME", "value")
	t.Setenv("ENV_TEST_TIMEOUT", "250ms")
	t.Setenv("ENV_TEST_ENABLED", "false")
	t.Setenv("ENV_TEST_COUNT", "7")

	var cfg testConfig
	if err := Parse(&cfg); err != nil {
		t.Fatalf("Parse() err=%v", err)
	}
	if cfg.Name != "value" {
		t.Fatalf("Name=%q, want value", cfg.Name)
	}
	if cfg.Timeout != 250*time.Millisecond {
		t.Fatalf("Timeout=%v, want 250ms", cfg.Timeout)
	}
	if cfg.Enabled {
		t.Fatalf("Enabled=%v, want false", cfg.Enabled)
	}
	if cfg.Count != 7 {
		t.Fatalf("Count=%d, want 7", cfg.Count)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	t.Setenv("ENV_TEST_TIMEOUT", "not-a-duration")
	var cfg testConfig
	if err := Parse(&cfg); err == nil {
		t.Fatalf("Parse() expected error")
	}
}

func TestParse_InvalidInt(t *testing.T) {
	t.Setenv("ENV_TEST_COUNT", "nope")
	var cfg testConfig
	if err := Parse(&cfg); err == nil {
		t.Fatalf("Parse() expected error")
	}
}

func TestCSV(t *testing.T) {
	got := CSV(" Admin, editor,,admin ")
	if len(got) != 2 || got[0] != "admin" || got[1] != "editor" {
		t.Fatalf("CSV()=%v, want [admin editor]", got)
	}
	if got := CSV(""); len(got) != 0 {
		t.Fatalf("CSV(\"\")=%v, want empty", got)
	}
}
