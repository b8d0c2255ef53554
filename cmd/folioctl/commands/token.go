package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/folio-labs/folio-go/internal/platform/auth"
)

func issueTokenCmd() *cobra.Command {
	var (
		subject string
		role    string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Sign an admin bearer token with AUTH_TOKEN_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := auth.ConfigFromEnv()
			if err != nil {
				return err
			}
			if cfg.Mode != auth.ModeToken {
				return fmt.Errorf("issue-token requires AUTH_MODE=token (got %q)", cfg.Mode)
			}
			role = strings.ToLower(strings.TrimSpace(role))
			if !auth.HasAtLeast([]string{role}, auth.RoleViewer) {
				return fmt.Errorf("unknown role %q", role)
			}
			if ttl < 0 {
				return errors.New("--ttl must be positive")
			}
			if ttl > 0 {
				cfg.TokenTTL = ttl
			}
			if strings.TrimSpace(subject) == "" {
				subject = cfg.AdminUsername
			}

			tokens, err := auth.NewTokenService(cfg)
			if err != nil {
				return err
			}
			token, expires, err := tokens.Issue(auth.Identity{Subject: strings.TrimSpace(subject), Roles: []string{role}})
			if err != nil {
				return err
			}
			logger.Info("token issued", "subject", subject, "role", role, "expires_at", expires)
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "token subject (default ADMIN_USERNAME)")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "viewer, editor or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default AUTH_TOKEN_TTL)")
	return cmd
}
