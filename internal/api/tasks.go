// ABOUTME: Task endpoints: list summaries, fetch detail, create, approve and scout launch
// ABOUTME: The list endpoint omits outputs, reviews and final output

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kurek775/saladin/internal/model"
)

// ListTasks fetches every task in summary form.
func (c *Client) ListTasks(ctx context.Context) ([]model.TaskSummary, error) {
	var tasks []model.TaskSummary
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches one task with its outputs and reviews.
func (c *Client) GetTask(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &t)
	return t, err
}

// CreateTask submits a new task.
func (c *Client) CreateTask(ctx context.Context, in model.TaskCreate) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPost, "/tasks", in, &t)
	return t, err
}

// Approve resolves a task waiting in pending_human_approval.
func (c *Client) Approve(ctx context.Context, id string, d model.HumanDecision) (model.Task, error) {
	var t model.Task
	err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(id)+"/approve", d, &t)
	return t, err
}

// ScoutRequest asks the backend to spawn exploratory self-improvement tasks.
type ScoutRequest struct {
	NumTasks int    `json:"num_tasks"`
	MaxDepth int    `json:"max_depth"`
	AgentID  string `json:"agent_id,omitempty"`
}

// ScoutLaunch acknowledges a scout request.
type ScoutLaunch struct {
	TaskID   string           `json:"task_id"`
	Status   model.TaskStatus `json:"status"`
	NumTasks int              `json:"num_tasks"`
	MaxDepth int              `json:"max_depth"`
}

// LaunchScout starts a scout run. Its tasks arrive through the stream.
func (c *Client) LaunchScout(ctx context.Context, in ScoutRequest) (ScoutLaunch, error) {
	var out ScoutLaunch
	err := c.do(ctx, http.MethodPost, "/scout/launch", in, &out)
	return out, err
}
