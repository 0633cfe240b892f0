// ABOUTME: Agent, task, log and telemetry records shared by the store, engine and REST client
// ABOUTME: JSON tags match the backend wire format for snapshots and stream payloads

package model

import "slices"

// Agent is a configured worker or supervisor.
type Agent struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Role         AgentRole   `json:"role"`
	SystemPrompt string      `json:"system_prompt"`
	LLMProvider  string      `json:"llm_provider"`
	LLMModel     string      `json:"llm_model"`
	Status       AgentStatus `json:"status"`
	CreatedAt    Timestamp   `json:"created_at"`
}

// AgentCreate is the request body for creating an agent.
type AgentCreate struct {
	Name         string    `json:"name"`
	Role         AgentRole `json:"role"`
	SystemPrompt string    `json:"system_prompt"`
	LLMProvider  string    `json:"llm_provider"`
	LLMModel     string    `json:"llm_model"`
}

// AgentUpdate is a partial agent update. Nil fields are left unchanged by the server.
type AgentUpdate struct {
	Name         *string `json:"name,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
	LLMProvider  *string `json:"llm_provider,omitempty"`
	LLMModel     *string `json:"llm_model,omitempty"`
}

// WorkerOutput is one worker's result for a task revision.
type WorkerOutput struct {
	AgentID   string    `json:"agent_id"`
	AgentName string    `json:"agent_name"`
	Output    string    `json:"output"`
	Revision  int       `json:"revision"`
	Timestamp Timestamp `json:"timestamp"`
}

// SupervisorReview is a verdict on a task revision.
type SupervisorReview struct {
	Decision  Decision  `json:"decision"`
	Feedback  string    `json:"feedback"`
	Revision  int       `json:"revision"`
	Timestamp Timestamp `json:"timestamp"`
}

// Lineage links a task spawned by another task.
type Lineage struct {
	ParentTaskID   string   `json:"parent_task_id,omitempty"`
	Depth          int      `json:"depth,omitempty"`
	ChildTaskIDs   []string `json:"child_task_ids,omitempty"`
	SpawnedByAgent string   `json:"spawned_by_agent,omitempty"`
}

// Task is the full task record returned by the detail endpoint.
type Task struct {
	ID                string             `json:"id"`
	Description       string             `json:"description"`
	Status            TaskStatus         `json:"status"`
	AssignedAgents    []string           `json:"assigned_agents"`
	WorkerOutputs     []WorkerOutput     `json:"worker_outputs"`
	SupervisorReviews []SupervisorReview `json:"supervisor_reviews"`
	CurrentRevision   int                `json:"current_revision"`
	FinalOutput       string             `json:"final_output"`
	CreatedAt         Timestamp          `json:"created_at"`
	UpdatedAt         Timestamp          `json:"updated_at"`
	Lineage
}

// TaskSummary is the list-endpoint shape: a task without outputs, reviews or final output.
type TaskSummary struct {
	ID              string     `json:"id"`
	Description     string     `json:"description"`
	Status          TaskStatus `json:"status"`
	AssignedAgents  []string   `json:"assigned_agents"`
	CurrentRevision int        `json:"current_revision"`
	CreatedAt       Timestamp  `json:"created_at"`
	UpdatedAt       Timestamp  `json:"updated_at"`
	Lineage
}

// TaskCreate is the request body for creating a task.
type TaskCreate struct {
	Description           string   `json:"description"`
	AssignedAgents        []string `json:"assigned_agents,omitempty"`
	RequiresHumanApproval bool     `json:"requires_human_approval,omitempty"`
	ParentTaskID          string   `json:"parent_task_id,omitempty"`
}

// HumanDecision is the body submitted to resolve a pending human approval.
type HumanDecision struct {
	Decision Decision `json:"decision"`
	Feedback string   `json:"feedback,omitempty"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	t.AssignedAgents = slices.Clone(t.AssignedAgents)
	t.WorkerOutputs = slices.Clone(t.WorkerOutputs)
	t.SupervisorReviews = slices.Clone(t.SupervisorReviews)
	t.ChildTaskIDs = slices.Clone(t.ChildTaskIDs)
	return t
}

// Summary projects t onto the list shape.
func (t Task) Summary() TaskSummary {
	return TaskSummary{
		ID:              t.ID,
		Description:     t.Description,
		Status:          t.Status,
		AssignedAgents:  slices.Clone(t.AssignedAgents),
		CurrentRevision: t.CurrentRevision,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		Lineage: Lineage{
			ParentTaskID:   t.ParentTaskID,
			Depth:          t.Depth,
			ChildTaskIDs:   slices.Clone(t.ChildTaskIDs),
			SpawnedByAgent: t.SpawnedByAgent,
		},
	}
}

// LogEntry is one line of the live activity log.
type LogEntry struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id,omitempty"`
	AgentID   string    `json:"agent_id,omitempty"`
	AgentName string    `json:"agent_name,omitempty"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Timestamp Timestamp `json:"timestamp"`
}

// TokenUsage is a single LLM call's token consumption.
type TokenUsage struct {
	Model            string    `json:"model"`
	InputTokens      int64     `json:"input_tokens"`
	OutputTokens     int64     `json:"output_tokens"`
	TotalTokens      int64     `json:"total_tokens"`
	EstimatedCostUSD float64   `json:"estimated_cost_usd"`
	Timestamp        Timestamp `json:"timestamp"`
}

// TaskTelemetry aggregates token usage for one task.
type TaskTelemetry struct {
	TotalInputTokens  int64        `json:"total_input_tokens"`
	TotalOutputTokens int64        `json:"total_output_tokens"`
	TotalTokens       int64        `json:"total_tokens"`
	TotalCostUSD      float64      `json:"total_cost_usd"`
	Entries           []TokenUsage `json:"entries"`
}

// Clone returns a deep copy of t.
func (t TaskTelemetry) Clone() TaskTelemetry {
	t.Entries = slices.Clone(t.Entries)
	return t
}
