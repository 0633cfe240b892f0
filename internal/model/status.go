// ABOUTME: Enumerations for agent roles, agent and task status, and review decisions
// ABOUTME: Mirrors the backend's string enums with validation helpers

package model

// AgentRole is the role an agent plays in a task.
type AgentRole string

// Agent roles.
const (
	RoleWorker     AgentRole = "worker"
	RoleSupervisor AgentRole = "supervisor"
)

// Valid reports whether r is a known role.
func (r AgentRole) Valid() bool {
	return r == RoleWorker || r == RoleSupervisor
}

// AgentStatus is the runtime state of an agent.
type AgentStatus string

// Agent statuses.
const (
	AgentIdle  AgentStatus = "idle"
	AgentBusy  AgentStatus = "busy"
	AgentError AgentStatus = "error"
)

// Valid reports whether s is a known agent status.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentIdle, AgentBusy, AgentError:
		return true
	}
	return false
}

// TaskStatus is a state of the task orchestration machine.
type TaskStatus string

// Task statuses.
const (
	TaskPending              TaskStatus = "pending"
	TaskRunning              TaskStatus = "running"
	TaskUnderReview          TaskStatus = "under_review"
	TaskRevision             TaskStatus = "revision"
	TaskApproved             TaskStatus = "approved"
	TaskRejected             TaskStatus = "rejected"
	TaskFailed               TaskStatus = "failed"
	TaskPendingHumanApproval TaskStatus = "pending_human_approval"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskRunning, TaskUnderReview, TaskRevision,
		TaskApproved, TaskRejected, TaskFailed, TaskPendingHumanApproval:
		return true
	}
	return false
}

// IsTerminal reports whether s ends the task state machine.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskApproved || s == TaskRejected || s == TaskFailed
}

// Decision is a supervisor or human review verdict.
type Decision string

// Review decisions.
const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
	DecisionRevise  Decision = "revise"
)

// Valid reports whether d is a known decision.
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject || d == DecisionRevise
}

// LogLevel is the severity of a log entry.
type LogLevel string

// Log levels.
const (
	LevelInfo    LogLevel = "info"
	LevelWarning LogLevel = "warning"
	LevelError   LogLevel = "error"
)

// NormalizeLevel maps an arbitrary wire value onto a known level.
// Unknown or empty values become info; "warn" is accepted as warning.
func NormalizeLevel(s string) LogLevel {
	switch s {
	case "warning", "warn":
		return LevelWarning
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
