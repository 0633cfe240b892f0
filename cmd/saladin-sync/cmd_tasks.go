// ABOUTME: Task subcommands: list, show one task, create, approve and launch a scout run
// ABOUTME: Mutations print the task as the server returned it

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kurek775/saladin/internal/api"
	"github.com/kurek775/saladin/internal/model"
)

// newTasksCmd creates the "saladin-sync tasks" subcommand.
func newTasksCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.session.Close() }()

			if err := e.session.RefreshTasks(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatTasksTable(e.session.Store().Tasks()))
			return nil
		},
	}
}

// newTaskCmd creates the "saladin-sync task <id>" subcommand.
func newTaskCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "task <id>",
		Short: "Show a task with its outputs and reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.session.Close() }()

			task, err := e.session.RefreshTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatTaskDetail(task))
			return nil
		},
	}
}

// newCreateTaskCmd creates the "saladin-sync create-task" subcommand.
func newCreateTaskCmd(g *globalFlags) *cobra.Command {
	var in model.TaskCreate

	cmd := &cobra.Command{
		Use:   "create-task <description>",
		Short: "Submit a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.session.Close() }()

			in.Description = args[0]
			task, err := e.session.CreateTask(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", task.ID, task.Status)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&in.AssignedAgents, "agent", nil, "agent id to assign (repeatable)")
	cmd.Flags().BoolVar(&in.RequiresHumanApproval, "require-approval", false, "park the task for a human decision after review")
	cmd.Flags().StringVar(&in.ParentTaskID, "parent", "", "parent task id")
	return cmd
}

// newApproveCmd creates the "saladin-sync approve <id>" subcommand.
func newApproveCmd(g *globalFlags) *cobra.Command {
	var decision, feedback string

	cmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Resolve a task waiting for human approval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.session.Close() }()

			task, err := e.session.SubmitApproval(cmd.Context(), args[0], model.HumanDecision{
				Decision: model.Decision(decision),
				Feedback: feedback,
			})
			if err != nil {
				return fmt.Errorf("approve: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %s is now %s\n", task.ID, colorStatus(string(task.Status)))
			return nil
		},
	}

	cmd.Flags().StringVar(&decision, "decision", string(model.DecisionApprove), "approve|reject|revise")
	cmd.Flags().StringVar(&feedback, "feedback", "", "feedback for the agents")
	return cmd
}

// newScoutCmd creates the "saladin-sync scout" subcommand.
func newScoutCmd(g *globalFlags) *cobra.Command {
	var in api.ScoutRequest

	cmd := &cobra.Command{
		Use:   "scout",
		Short: "Launch a scout run that proposes improvement tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = e.session.Close() }()

			ack, err := e.session.LaunchScout(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("scout: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scout task %s %s (%d tasks, depth %d)\n",
				ack.TaskID, ack.Status, ack.NumTasks, ack.MaxDepth)
			return nil
		},
	}

	cmd.Flags().IntVar(&in.NumTasks, "num-tasks", 3, "number of tasks to propose")
	cmd.Flags().IntVar(&in.MaxDepth, "max-depth", 1, "maximum spawn depth")
	cmd.Flags().StringVar(&in.AgentID, "agent", "", "agent to run the scout as")
	return cmd
}
