// ABOUTME: Snapshot fetches and REST mutations that merge server responses into the store
// ABOUTME: A failed request leaves the store untouched and returns the error

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/kurek775/saladin/internal/api"
	"github.com/kurek775/saladin/internal/model"
)

// Refresh reloads the agent and task collections. Both lists are fetched
// before either is applied, so a failure leaves the store untouched.
func (s *Session) Refresh(ctx context.Context) error {
	agents, agentsErr := s.client.ListAgents(ctx)
	if agentsErr != nil {
		agentsErr = fmt.Errorf("refreshing agents: %w", agentsErr)
	}
	tasks, tasksErr := s.client.ListTasks(ctx)
	if tasksErr != nil {
		tasksErr = fmt.Errorf("refreshing tasks: %w", tasksErr)
	}
	if err := errors.Join(agentsErr, tasksErr); err != nil {
		return err
	}
	s.engine.ApplyAgents(agents)
	s.engine.ApplyTaskSummaries(tasks)
	return nil
}

// RefreshAgents replaces the agent collection with the server's list.
func (s *Session) RefreshAgents(ctx context.Context) error {
	agents, err := s.client.ListAgents(ctx)
	if err != nil {
		return fmt.Errorf("refreshing agents: %w", err)
	}
	s.engine.ApplyAgents(agents)
	return nil
}

// RefreshTasks replaces the task collection with the server's list,
// keeping detail fields the list endpoint omits.
func (s *Session) RefreshTasks(ctx context.Context) error {
	tasks, err := s.client.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("refreshing tasks: %w", err)
	}
	s.engine.ApplyTaskSummaries(tasks)
	return nil
}

// RefreshTask fetches one task with its outputs and reviews.
func (s *Session) RefreshTask(ctx context.Context, id string) (model.Task, error) {
	task, err := s.client.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("refreshing task %s: %w", id, err)
	}
	s.engine.ApplyTask(task)
	merged, _ := s.store.Task(id)
	return merged, nil
}

// CreateAgent creates an agent and adds it to the store.
func (s *Session) CreateAgent(ctx context.Context, in model.AgentCreate) (model.Agent, error) {
	a, err := s.client.CreateAgent(ctx, in)
	if err != nil {
		return model.Agent{}, err
	}
	s.engine.ApplyAgent(a)
	return a, nil
}

// UpdateAgent applies a partial update and stores the result.
func (s *Session) UpdateAgent(ctx context.Context, id string, in model.AgentUpdate) (model.Agent, error) {
	a, err := s.client.UpdateAgent(ctx, id, in)
	if err != nil {
		return model.Agent{}, err
	}
	s.engine.ApplyAgent(a)
	return a, nil
}

// DeleteAgent deletes an agent. A 404 still removes the local copy and is
// returned so callers can tell the agent was already gone.
func (s *Session) DeleteAgent(ctx context.Context, id string) error {
	err := s.client.DeleteAgent(ctx, id)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		return err
	}
	s.engine.RemoveAgent(id)
	return err
}

// CreateTask submits a task and adds it to the store.
func (s *Session) CreateTask(ctx context.Context, in model.TaskCreate) (model.Task, error) {
	task, err := s.client.CreateTask(ctx, in)
	if err != nil {
		return model.Task{}, err
	}
	s.engine.ApplyTask(task)
	return task, nil
}

// SubmitApproval resolves a pending human approval.
func (s *Session) SubmitApproval(ctx context.Context, taskID string, d model.HumanDecision) (model.Task, error) {
	if !d.Decision.Valid() {
		return model.Task{}, fmt.Errorf("invalid decision %q", d.Decision)
	}
	task, err := s.client.Approve(ctx, taskID, d)
	if err != nil {
		return model.Task{}, err
	}
	s.engine.ApplyTask(task)
	return task, nil
}

// LaunchScout starts a scout run and fetches the task it created.
func (s *Session) LaunchScout(ctx context.Context, in api.ScoutRequest) (api.ScoutLaunch, error) {
	ack, err := s.client.LaunchScout(ctx, in)
	if err != nil {
		return api.ScoutLaunch{}, err
	}
	if ack.TaskID != "" {
		if _, err := s.RefreshTask(ctx, ack.TaskID); err != nil {
			s.logger.Warn("scout task not yet visible", "task_id", ack.TaskID, "error", err)
		}
	}
	return ack, nil
}

// ClearLogs empties the activity log.
func (s *Session) ClearLogs() {
	s.engine.ClearLogs()
}
