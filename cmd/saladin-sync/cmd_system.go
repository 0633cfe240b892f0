// ABOUTME: Diagnostics subcommands: backend health, provider key validation and usage stats
// ABOUTME: Usage reads the local journal and does not contact the backend

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kurek775/saladin/internal/credentials"
	"github.com/kurek775/saladin/internal/journal"
)

// newHealthCmd creates the "saladin-sync health" subcommand.
func newHealthCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.session.Close() }()

			h, err := e.session.API().HealthDetails(cmd.Context())
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatHealth(h))
			return nil
		},
	}
}

// newValidateKeyCmd creates the "saladin-sync validate-key" subcommand.
func newValidateKeyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-key <provider> [key]",
		Short: "Ask the backend to verify a provider API key",
		Long:  "Validates a provider key (openai, anthropic or google). Without a key\nargument the key from the config file is used.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			if _, ok := credentials.HeaderName(credentials.Provider(provider)); !ok {
				return fmt.Errorf("%w: %s", credentials.ErrUnknownKey, provider)
			}

			e, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.session.Close() }()

			key := e.cfg.Credentials.Keys[provider]
			if len(args) == 2 {
				key = args[1]
			}
			if key == "" {
				return fmt.Errorf("no %s key given or configured", provider)
			}

			res, err := e.session.API().ValidateKey(cmd.Context(), provider, key)
			if err != nil {
				return fmt.Errorf("validate key: %w", err)
			}
			if !res.Valid {
				return fmt.Errorf("%s key rejected: %s", provider, res.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s key is valid\n", provider)
			return nil
		},
	}
}

// newUsageCmd creates the "saladin-sync usage" subcommand.
func newUsageCmd(g *globalFlags) *cobra.Command {
	var taskID, agentID string

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show token usage recorded in the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return errors.New("usage journal is disabled (set journal.enabled)")
			}
			j, err := journal.Open(cfg.Journal.Path, setupLogger(cfg.Logging, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()

			var filter journal.Filter
			if taskID != "" {
				filter.TaskID = &taskID
			}
			if agentID != "" {
				filter.AgentID = &agentID
			}
			ctx := cmd.Context()
			total, err := j.GetUsageStats(ctx, filter)
			if err != nil {
				return err
			}
			byModel, err := j.StatsByModel(ctx, filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatUsage(total, byModel))
			return nil
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "only count this task")
	cmd.Flags().StringVar(&agentID, "agent", "", "only count this agent")
	return cmd
}
