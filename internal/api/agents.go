// ABOUTME: Agent endpoints: list, fetch, create, partial update and delete
// ABOUTME: Returned records are the server's view after the operation

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kurek775/saladin/internal/model"
)

// ListAgents fetches every agent.
func (c *Client) ListAgents(ctx context.Context) ([]model.Agent, error) {
	var agents []model.Agent
	if err := c.do(ctx, http.MethodGet, "/agents", nil, &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// GetAgent fetches one agent.
func (c *Client) GetAgent(ctx context.Context, id string) (model.Agent, error) {
	var a model.Agent
	err := c.do(ctx, http.MethodGet, "/agents/"+url.PathEscape(id), nil, &a)
	return a, err
}

// CreateAgent creates an agent.
func (c *Client) CreateAgent(ctx context.Context, in model.AgentCreate) (model.Agent, error) {
	var a model.Agent
	err := c.do(ctx, http.MethodPost, "/agents", in, &a)
	return a, err
}

// UpdateAgent applies a partial update.
func (c *Client) UpdateAgent(ctx context.Context, id string, in model.AgentUpdate) (model.Agent, error) {
	var a model.Agent
	err := c.do(ctx, http.MethodPatch, "/agents/"+url.PathEscape(id), in, &a)
	return a, err
}

// DeleteAgent deletes an agent.
func (c *Client) DeleteAgent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/agents/"+url.PathEscape(id), nil, nil)
}
