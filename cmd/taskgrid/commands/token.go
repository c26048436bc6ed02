package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/taskgrid/internal/infrastructure/server"
)

// NewTokenCommand creates the token command
func NewTokenCommand(opts *Options) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "API token commands",
	}

	var subject, role string
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token signed with jwt.secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" {
				return errors.New("--subject is required")
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			token, err := server.IssueToken(cfg.JWT, subject, role, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issueCmd.Flags().StringVar(&subject, "subject", "", "Token subject (required)")
	issueCmd.Flags().StringVar(&role, "role", "editor", "Role claim")
	tokenCmd.AddCommand(issueCmd)

	return tokenCmd
}
