// ABOUTME: "saladin-sync watch" streams live changes until interrupted
// ABOUTME: Loads the snapshot, opens the event stream and prints each committed change

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kurek775/saladin/internal/state"
)

// newWatchCmd creates the "saladin-sync watch" subcommand.
func newWatchCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow agents, tasks and logs live",
		Long:  "Loads the current agents and tasks, then follows the event stream and\nprints every change until interrupted. Reconnects automatically.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.session.Close() }()

			ctx := cmd.Context()
			changes, _ := e.session.Store().Subscribe(ctx)
			if err := e.session.Start(ctx); err != nil {
				e.logger.Warn("initial snapshot failed", "error", err)
			}

			out := cmd.OutOrStdout()
			store := e.session.Store()
			fmt.Fprintf(out, "%d agents, %d tasks\n", len(store.Agents()), len(store.Tasks()))
			return watch(ctx, out, store, changes)
		},
	}
}

func watch(ctx context.Context, out io.Writer, store *state.Store, changes <-chan state.Change) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			fmt.Fprint(out, describeChange(store, c))
		}
	}
}

// describeChange renders one change against the store's current contents.
func describeChange(store *state.Store, c state.Change) string {
	switch c.Kind {
	case state.ChangeLog:
		logs := store.Logs()
		for i := len(logs) - 1; i >= 0; i-- {
			if logs[i].ID == c.ID {
				return formatLogEntry(logs[i])
			}
		}
	case state.ChangeTask:
		if t, ok := store.Task(c.ID); ok {
			return fmt.Sprintf("task %s %s rev %d\n", t.ID, colorStatus(string(t.Status)), t.CurrentRevision)
		}
	case state.ChangeAgent:
		if a, ok := store.Agent(c.ID); ok {
			return fmt.Sprintf("agent %s (%s) %s\n", a.Name, a.ID, colorStatus(string(a.Status)))
		}
	case state.ChangeAgentRemoved:
		return fmt.Sprintf("agent %s removed\n", c.ID)
	case state.ChangeTelemetry:
		tt := store.Telemetry(c.ID)
		return fmt.Sprintf("usage %s %d tokens $%.6f (session $%.6f)\n",
			c.ID, tt.TotalTokens, tt.TotalCostUSD, store.TotalCost())
	case state.ChangeConnection:
		if store.Connected() {
			return color.GreenString("connected") + "\n"
		}
		return color.YellowString("disconnected") + "\n"
	case state.ChangeAgents:
		return fmt.Sprintf("%d agents loaded\n", len(store.Agents()))
	case state.ChangeTasks:
		return fmt.Sprintf("%d tasks loaded\n", len(store.Tasks()))
	case state.ChangeReset:
		return "session reset\n"
	}
	return ""
}
