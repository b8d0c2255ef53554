package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/folio-labs/folio-go/internal/platform/env"
)

type Mode string

const (
	ModeToken    Mode = "token"
	ModeOIDC     Mode = "oidc"
	ModeDev      Mode = "dev"
	ModeDisabled Mode = "disabled"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Config struct {
	Mode Mode `env:"AUTH_MODE" envDefault:"token"`

	// Token mode: admin signs in with username/password and receives a signed bearer token.
	TokenSecret       string        `env:"AUTH_TOKEN_SECRET"`
	TokenTTL          time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"12h"`
	TokenIssuer       string        `env:"AUTH_TOKEN_ISSUER" envDefault:"folio"`
	AdminUsername     string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`

	RolesClaim string `env:"AUTH_ROLES_CLAIM" envDefault:"roles"`
	EmailClaim string `env:"AUTH_EMAIL_CLAIM" envDefault:"email"`

	SessionCookieName     string        `env:"AUTH_SESSION_COOKIE_NAME" envDefault:"folio_session"`
	SessionCookieSecure   bool          `env:"AUTH_SESSION_COOKIE_SECURE" envDefault:"true"`
	SessionCookieMaxAge   time.Duration `env:"AUTH_SESSION_MAX_AGE" envDefault:"1h"`
	SessionCookieSameSite string        `env:"AUTH_SESSION_COOKIE_SAMESITE" envDefault:"Lax"`

	OIDCIssuerURL    string `env:"OIDC_ISSUER_URL"`
	OIDCClientID     string `env:"OIDC_CLIENT_ID"`
	OIDCClientSecret string `env:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string `env:"OIDC_REDIRECT_URL"`
	OIDCScopesRaw    string `env:"OIDC_SCOPES" envDefault:"openid profile email"`
	OIDCAdminEmails  string `env:"OIDC_ADMIN_EMAILS"`

	DevSubject  string `env:"DEV_AUTH_SUBJECT" envDefault:"dev-admin"`
	DevEmail    string `env:"DEV_AUTH_EMAIL" envDefault:"dev-admin@example.local"`
	DevRolesRaw string `env:"DEV_AUTH_ROLES" envDefault:"admin"`
}

func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Mode = Mode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) OIDCScopes() []string {
	fields := strings.Fields(c.OIDCScopesRaw)
	if len(fields) == 0 {
		return []string{"openid", "profile", "email"}
	}
	return fields
}

func (c Config) DevRoles() []string {
	return env.CSV(c.DevRolesRaw)
}

func (c Config) AdminEmails() []string {
	return env.CSV(c.OIDCAdminEmails)
}

func (c Config) Validate() error {
	if strings.TrimSpace(string(c.Mode)) == "" {
		return errors.New("AUTH_MODE is required")
	}
	if strings.TrimSpace(c.SessionCookieName) == "" {
		return errors.New("AUTH_SESSION_COOKIE_NAME is required")
	}
	if c.SessionCookieMaxAge <= 0 {
		return errors.New("AUTH_SESSION_MAX_AGE must be positive")
	}

	switch c.Mode {
	case ModeToken:
		if len(strings.TrimSpace(c.TokenSecret)) < 32 {
			return errors.New("AUTH_TOKEN_SECRET must be at least 32 characters when AUTH_MODE=token")
		}
		if c.TokenTTL <= 0 {
			return errors.New("AUTH_TOKEN_TTL must be positive")
		}
		if strings.TrimSpace(c.AdminUsername) == "" {
			return errors.New("ADMIN_USERNAME is required when AUTH_MODE=token")
		}
		if strings.TrimSpace(c.AdminPasswordHash) == "" {
			return errors.New("ADMIN_PASSWORD_HASH is required when AUTH_MODE=token")
		}
	case ModeOIDC:
		if strings.TrimSpace(c.OIDCIssuerURL) == "" {
			return errors.New("OIDC_ISSUER_URL is required when AUTH_MODE=oidc")
		}
		if strings.TrimSpace(c.OIDCClientID) == "" {
			return errors.New("OIDC_CLIENT_ID is required when AUTH_MODE=oidc")
		}
		if strings.TrimSpace(c.RolesClaim) == "" {
			return errors.New("AUTH_ROLES_CLAIM is required")
		}
		if strings.TrimSpace(c.EmailClaim) == "" {
			return errors.New("AUTH_EMAIL_CLAIM is required")
		}
	case ModeDev:
		if strings.TrimSpace(c.DevSubject) == "" {
			return errors.New("DEV_AUTH_SUBJECT is required when AUTH_MODE=dev")
		}
		if len(c.DevRoles()) == 0 {
			return errors.New("DEV_AUTH_ROLES must be non-empty when AUTH_MODE=dev")
		}
	case ModeDisabled:
	default:
		return fmt.Errorf("AUTH_MODE must be one of: token, oidc, dev, disabled (got %q)", c.Mode)
	}

	return nil
}

func (c Config) ValidateForLogin() error {
	if c.Mode != ModeOIDC {
		return fmt.Errorf("login requires AUTH_MODE=oidc (got %q)", c.Mode)
	}
	if strings.TrimSpace(c.OIDCClientSecret) == "" {
		return errors.New("OIDC_CLIENT_SECRET is required for login endpoints")
	}
	if strings.TrimSpace(c.OIDCRedirectURL) == "" {
		return errors.New("OIDC_REDIRECT_URL is required for login endpoints")
	}
	return nil
}
