// ABOUTME: Closed set of typed stream events with visitor-style dispatch
// ABOUTME: Each variant carries only the fields the wire frame actually supplied

package events

import "github.com/kurek775/saladin/internal/model"

// Kind is the wire type tag of a frame.
type Kind string

// Inbound frame kinds.
const (
	KindAgentUpdate           Kind = "agent_update"
	KindTaskUpdate            Kind = "task_update"
	KindLog                   Kind = "log"
	KindWorkerOutput          Kind = "worker_output"
	KindSupervisorReview      Kind = "supervisor_review"
	KindHumanApprovalRequired Kind = "human_approval_required"
	KindTelemetry             Kind = "telemetry"
	KindPing                  Kind = "ping"
)

// PongFrame is the liveness reply sent for every ping.
var PongFrame = []byte(`{"type":"pong"}`)

// Event is one validated inbound frame.
type Event interface {
	Kind() Kind
	// Accept dispatches the event to the matching Handler method.
	Accept(h Handler)
	sealed()
}

// Handler receives events by kind.
type Handler interface {
	HandleAgentUpdate(AgentUpdate)
	HandleTaskUpdate(TaskUpdate)
	HandleLog(Log)
	HandleWorkerOutput(WorkerOutput)
	HandleSupervisorReview(SupervisorReview)
	HandleHumanApprovalRequired(HumanApprovalRequired)
	HandleTelemetry(Telemetry)
	HandlePing(Ping)
}

// AgentAction is the operation carried by an agent_update frame.
type AgentAction string

// Agent actions.
const (
	AgentCreated       AgentAction = "created"
	AgentUpdated       AgentAction = "updated"
	AgentStatusChanged AgentAction = "status_changed"
	AgentDeleted       AgentAction = "deleted"
)

// AgentUpdate creates, replaces, re-statuses or deletes an agent.
// For AgentDeleted only AgentID is set; otherwise Agent holds the full record
// and AgentID equals Agent.ID.
type AgentUpdate struct {
	Action  AgentAction
	AgentID string
	Agent   model.Agent
}

// Task update action tags seen on the wire.
const (
	TaskActionCreated       = "created"
	TaskActionStatusChanged = "status_changed"
	TaskActionRevision      = "revision"
	TaskActionCompleted     = "completed"
	TaskActionChildCreated  = "child_created"
)

// TaskUpdate is a sparse patch of one task. Nil pointers mean the field was
// absent from the frame and must not overwrite local state.
type TaskUpdate struct {
	Action          string
	TaskID          string
	Status          model.TaskStatus
	Description     *string
	AssignedAgents  []string // nil when absent
	CurrentRevision *int
	FinalOutput     *string
	UpdatedAt       *model.Timestamp
	ParentTaskID    *string
	Depth           *int
	ChildTaskIDs    []string // nil when absent
	SpawnedByAgent  *string
	// ChildID is set for child_created and names the newly spawned task.
	ChildID string
}

// Log is a free-form activity line.
type Log struct {
	TaskID    string
	AgentID   string
	AgentName string
	Level     model.LogLevel
	Message   string
	Timestamp model.Timestamp
}

// WorkerOutput announces that a worker produced output for a revision.
type WorkerOutput struct {
	TaskID    string
	AgentID   string
	AgentName string
	Output    string
	Revision  int
	Timestamp model.Timestamp
}

// SupervisorReview announces a supervisor verdict.
type SupervisorReview struct {
	TaskID    string
	Decision  model.Decision
	Feedback  string
	Revision  int
	Timestamp model.Timestamp
}

// HumanApprovalRequired parks a task until a human decides.
type HumanApprovalRequired struct {
	TaskID             string
	SupervisorDecision model.Decision
	Feedback           string
	Timestamp          model.Timestamp
}

// Telemetry reports token usage for one LLM call of a task.
type Telemetry struct {
	TaskID    string
	AgentID   string
	AgentName string
	Usage     model.TokenUsage
	// HasTotal and HasCost record whether the frame supplied those fields.
	HasTotal bool
	HasCost  bool
}

// Ping is the server liveness probe.
type Ping struct{}

func (AgentUpdate) Kind() Kind           { return KindAgentUpdate }
func (TaskUpdate) Kind() Kind            { return KindTaskUpdate }
func (Log) Kind() Kind                   { return KindLog }
func (WorkerOutput) Kind() Kind          { return KindWorkerOutput }
func (SupervisorReview) Kind() Kind      { return KindSupervisorReview }
func (HumanApprovalRequired) Kind() Kind { return KindHumanApprovalRequired }
func (Telemetry) Kind() Kind             { return KindTelemetry }
func (Ping) Kind() Kind                  { return KindPing }

func (e AgentUpdate) Accept(h Handler)           { h.HandleAgentUpdate(e) }
func (e TaskUpdate) Accept(h Handler)            { h.HandleTaskUpdate(e) }
func (e Log) Accept(h Handler)                   { h.HandleLog(e) }
func (e WorkerOutput) Accept(h Handler)          { h.HandleWorkerOutput(e) }
func (e SupervisorReview) Accept(h Handler)      { h.HandleSupervisorReview(e) }
func (e HumanApprovalRequired) Accept(h Handler) { h.HandleHumanApprovalRequired(e) }
func (e Telemetry) Accept(h Handler)             { h.HandleTelemetry(e) }
func (e Ping) Accept(h Handler)                  { h.HandlePing(e) }

func (AgentUpdate) sealed()           {}
func (TaskUpdate) sealed()            {}
func (Log) sealed()                   {}
func (WorkerOutput) sealed()          {}
func (SupervisorReview) sealed()      {}
func (HumanApprovalRequired) sealed() {}
func (Telemetry) sealed()             {}
func (Ping) sealed()                  {}
