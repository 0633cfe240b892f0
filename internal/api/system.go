// ABOUTME: Health and settings endpoints used by the CLI for diagnostics
// ABOUTME: Key validation is delegated to the backend, which calls the provider

package api

import (
	"context"
	"net/http"
)

// Health is the backend's detailed health report.
type Health struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime,omitempty"`
	NumAgents     int    `json:"num_agents,omitempty"`
	NumTasks      int    `json:"num_tasks,omitempty"`
	PythonVersion string `json:"python_version,omitempty"`
	SandboxMode   string `json:"sandbox_mode,omitempty"`
	LLMProvider   string `json:"llm_provider,omitempty"`
	LLMModel      string `json:"llm_model,omitempty"`
}

// HealthDetails fetches the detailed health report.
func (c *Client) HealthDetails(ctx context.Context) (Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "/health/details", nil, &h)
	return h, err
}

// KeyValidation is the backend's verdict on a provider key.
type KeyValidation struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidateKey asks the backend to check a provider key with a minimal call.
func (c *Client) ValidateKey(ctx context.Context, provider, key string) (KeyValidation, error) {
	var out KeyValidation
	in := struct {
		Provider string `json:"provider"`
		Key      string `json:"key"`
	}{provider, key}
	err := c.do(ctx, http.MethodPost, "/settings/validate-key", in, &out)
	return out, err
}
