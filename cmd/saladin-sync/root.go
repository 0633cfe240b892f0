// ABOUTME: Root cobra command, global flags and shared config/session setup
// ABOUTME: Every subcommand loads configuration the same way through globalFlags

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kurek775/saladin/internal/config"
	"github.com/kurek775/saladin/internal/session"
)

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// env is what a subcommand needs to talk to the backend.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	session *session.Session
}

// newRootCmd creates the root saladin-sync command with all subcommands attached.
func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "saladin-sync",
		Short:         "Real-time mirror of an agent orchestration backend",
		Long:          "saladin-sync keeps a local view of agents, tasks, logs and token usage\nin step with the backend's REST API and event stream.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("saladin-sync {{.Version}}\n")

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default $SALADIN_CONFIG or ~/.config/saladin/client.yaml)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override logging.level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "override logging.format (text|json)")

	cmd.AddCommand(
		newWatchCmd(g),
		newAgentsCmd(g),
		newTasksCmd(g),
		newTaskCmd(g),
		newCreateTaskCmd(g),
		newApproveCmd(g),
		newScoutCmd(g),
		newUsageCmd(g),
		newHealthCmd(g),
		newValidateKeyCmd(g),
		newVersionCmd(),
	)
	return cmd
}

func (g *globalFlags) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if g.configPath != "" {
		cfg, err = config.Load(g.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	return cfg, nil
}

// open loads config and builds a session. Callers must Close the session.
func (g *globalFlags) open(cmd *cobra.Command) (*env, error) {
	cfg, err := g.load()
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.Logging, cmd.ErrOrStderr())
	s, err := session.New(session.Options{Config: cfg, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return &env{cfg: cfg, logger: logger, session: s}, nil
}

// newVersionCmd creates the "saladin-sync version" subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "saladin-sync %s\n", version)
			return nil
		},
	}
}
