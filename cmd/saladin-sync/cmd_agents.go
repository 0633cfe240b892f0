// ABOUTME: "saladin-sync agents" lists configured agents
// ABOUTME: Fetches the agent snapshot through the session so ordering matches the store

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newAgentsCmd creates the "saladin-sync agents" subcommand.
func newAgentsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.session.Close() }()

			if err := e.session.RefreshAgents(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatAgentsTable(e.session.Store().Agents()))
			return nil
		},
	}
}
