package env

import (
	"fmt"
	"strings"

	cenv "github.com/caarlos0/env/v11"
)

// Parse fills target from environment variables using `env` and `envDefault` struct tags.
func Parse(target any) error {
	if err := cenv.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// CSV splits a comma separated value into trimmed, lowercased, de-duplicated items.
func CSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		item := strings.ToLower(strings.TrimSpace(part))
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
