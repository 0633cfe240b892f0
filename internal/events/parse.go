// ABOUTME: Validator that narrows raw JSON frames into typed events using gjson
// ABOUTME: Rejects malformed or unknown frames with wrapped sentinel errors, never panics

package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/kurek775/saladin/internal/model"
)

// Validation errors. Parse wraps one of these with detail.
var (
	ErrMalformed   = errors.New("malformed frame")
	ErrUnknownType = errors.New("unknown frame type")
)

// Parse validates a raw frame and returns the typed event it carries.
func Parse(raw []byte) (Event, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: frame is not an object", ErrMalformed)
	}

	typ := root.Get("type")
	if typ.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing type tag", ErrMalformed)
	}
	kind := Kind(typ.Str)

	// Pings may arrive without a data object.
	if kind == KindPing {
		return Ping{}, nil
	}

	data := root.Get("data")
	if !data.IsObject() {
		switch kind {
		case KindAgentUpdate, KindTaskUpdate, KindLog, KindWorkerOutput,
			KindSupervisorReview, KindHumanApprovalRequired, KindTelemetry:
			return nil, fmt.Errorf("%w: %s without data object", ErrMalformed, kind)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ.Str)
	}

	switch kind {
	case KindAgentUpdate:
		return parseAgentUpdate(data)
	case KindTaskUpdate:
		return parseTaskUpdate(data)
	case KindLog:
		return parseLog(data), nil
	case KindWorkerOutput:
		return parseWorkerOutput(data)
	case KindSupervisorReview:
		return parseSupervisorReview(data)
	case KindHumanApprovalRequired:
		return parseHumanApproval(data)
	case KindTelemetry:
		return parseTelemetry(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, typ.Str)
	}
}

func parseAgentUpdate(data gjson.Result) (Event, error) {
	action := AgentAction(data.Get("action").String())

	switch action {
	case AgentDeleted:
		id := data.Get("agent_id").String()
		if id == "" {
			id = data.Get("agent.id").String()
		}
		if id == "" {
			return nil, fmt.Errorf("%w: agent_update deleted without agent_id", ErrMalformed)
		}
		return AgentUpdate{Action: action, AgentID: id}, nil

	case AgentCreated, AgentUpdated, AgentStatusChanged:
		raw := data.Get("agent")
		if !raw.IsObject() {
			return nil, fmt.Errorf("%w: agent_update %s without agent object", ErrMalformed, action)
		}
		var agent model.Agent
		if err := json.Unmarshal([]byte(raw.Raw), &agent); err != nil {
			return nil, fmt.Errorf("%w: decoding agent: %v", ErrMalformed, err)
		}
		if agent.ID == "" {
			return nil, fmt.Errorf("%w: agent without id", ErrMalformed)
		}
		if !agent.Role.Valid() {
			return nil, fmt.Errorf("%w: agent %s has role %q", ErrMalformed, agent.ID, agent.Role)
		}
		if !agent.Status.Valid() {
			return nil, fmt.Errorf("%w: agent %s has status %q", ErrMalformed, agent.ID, agent.Status)
		}
		return AgentUpdate{Action: action, AgentID: agent.ID, Agent: agent}, nil

	default:
		return nil, fmt.Errorf("%w: agent_update action %q", ErrMalformed, action)
	}
}

func parseTaskUpdate(data gjson.Result) (Event, error) {
	task := data.Get("task")
	if !task.IsObject() {
		return nil, fmt.Errorf("%w: task_update without task object", ErrMalformed)
	}

	id := task.Get("id")
	if id.Type != gjson.String || id.Str == "" {
		return nil, fmt.Errorf("%w: task_update without task id", ErrMalformed)
	}
	status := model.TaskStatus(task.Get("status").String())
	if !status.Valid() {
		return nil, fmt.Errorf("%w: task %s has status %q", ErrMalformed, id.Str, status)
	}

	upd := TaskUpdate{
		Action:         data.Get("action").String(),
		TaskID:         id.Str,
		Status:         status,
		Description:    optString(task.Get("description")),
		AssignedAgents: optStrings(task.Get("assigned_agents")),
		FinalOutput:    optString(task.Get("final_output")),
		ParentTaskID:   optString(task.Get("parent_task_id")),
		ChildTaskIDs:   optStrings(task.Get("child_task_ids")),
		SpawnedByAgent: optString(task.Get("spawned_by_agent")),
		ChildID:        data.Get("child_id").String(),
	}

	var err error
	if upd.CurrentRevision, err = optInt(task.Get("current_revision")); err != nil {
		return nil, fmt.Errorf("%w: current_revision: %v", ErrMalformed, err)
	}
	if upd.Depth, err = optInt(task.Get("depth")); err != nil {
		return nil, fmt.Errorf("%w: depth: %v", ErrMalformed, err)
	}
	if ts := task.Get("updated_at"); ts.Type == gjson.String {
		// An unreadable updated_at is dropped rather than failing the frame.
		if parsed, perr := model.ParseTimestamp(ts.Str); perr == nil && !parsed.IsZero() {
			upd.UpdatedAt = &parsed
		}
	}

	return upd, nil
}

func parseLog(data gjson.Result) Log {
	return Log{
		TaskID:    data.Get("task_id").String(),
		AgentID:   data.Get("agent_id").String(),
		AgentName: data.Get("agent_name").String(),
		Level:     model.NormalizeLevel(data.Get("level").String()),
		Message:   data.Get("message").String(),
		Timestamp: lenientTime(data.Get("timestamp")),
	}
}

func parseWorkerOutput(data gjson.Result) (Event, error) {
	rev, err := intOrZero(data.Get("revision"))
	if err != nil {
		return nil, fmt.Errorf("%w: revision: %v", ErrMalformed, err)
	}
	return WorkerOutput{
		TaskID:    data.Get("task_id").String(),
		AgentID:   data.Get("agent_id").String(),
		AgentName: data.Get("agent_name").String(),
		Output:    data.Get("output").String(),
		Revision:  int(rev),
		Timestamp: lenientTime(data.Get("timestamp")),
	}, nil
}

func parseSupervisorReview(data gjson.Result) (Event, error) {
	rev, err := intOrZero(data.Get("revision"))
	if err != nil {
		return nil, fmt.Errorf("%w: revision: %v", ErrMalformed, err)
	}
	return SupervisorReview{
		TaskID:    data.Get("task_id").String(),
		Decision:  model.Decision(data.Get("decision").String()),
		Feedback:  data.Get("feedback").String(),
		Revision:  int(rev),
		Timestamp: lenientTime(data.Get("timestamp")),
	}, nil
}

func parseHumanApproval(data gjson.Result) (Event, error) {
	taskID := data.Get("task_id").String()
	if taskID == "" {
		return nil, fmt.Errorf("%w: human_approval_required without task_id", ErrMalformed)
	}
	return HumanApprovalRequired{
		TaskID:             taskID,
		SupervisorDecision: model.Decision(data.Get("supervisor_decision").String()),
		Feedback:           data.Get("feedback").String(),
		Timestamp:          lenientTime(data.Get("timestamp")),
	}, nil
}

func parseTelemetry(data gjson.Result) (Event, error) {
	taskID := data.Get("task_id").String()
	if taskID == "" {
		return nil, fmt.Errorf("%w: telemetry without task_id", ErrMalformed)
	}

	var usage model.TokenUsage
	var err error
	usage.Model = data.Get("model").String()
	if usage.InputTokens, err = intOrZero(data.Get("input_tokens")); err != nil {
		return nil, fmt.Errorf("%w: input_tokens: %v", ErrMalformed, err)
	}
	if usage.OutputTokens, err = intOrZero(data.Get("output_tokens")); err != nil {
		return nil, fmt.Errorf("%w: output_tokens: %v", ErrMalformed, err)
	}
	total := data.Get("total_tokens")
	if usage.TotalTokens, err = intOrZero(total); err != nil {
		return nil, fmt.Errorf("%w: total_tokens: %v", ErrMalformed, err)
	}
	cost := data.Get("estimated_cost_usd")
	if usage.EstimatedCostUSD, err = floatOrZero(cost); err != nil {
		return nil, fmt.Errorf("%w: estimated_cost_usd: %v", ErrMalformed, err)
	}
	usage.Timestamp = lenientTime(data.Get("timestamp"))

	return Telemetry{
		TaskID:    taskID,
		AgentID:   data.Get("agent_id").String(),
		AgentName: data.Get("agent_name").String(),
		Usage:     usage,
		HasTotal:  present(total),
		HasCost:   present(cost),
	}, nil
}

// present reports whether r holds a non-null value.
func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func optString(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := r.Str
	return &s
}

func optStrings(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	out := make([]string, 0, len(r.Array()))
	for _, item := range r.Array() {
		if item.Type == gjson.String {
			out = append(out, item.Str)
		}
	}
	return out
}

func optInt(r gjson.Result) (*int, error) {
	if !present(r) {
		return nil, nil
	}
	if r.Type != gjson.Number {
		return nil, fmt.Errorf("expected number, got %s", r.Type)
	}
	v := int(r.Int())
	return &v, nil
}

func intOrZero(r gjson.Result) (int64, error) {
	if !present(r) {
		return 0, nil
	}
	if r.Type != gjson.Number {
		return 0, fmt.Errorf("expected number, got %s", r.Type)
	}
	return r.Int(), nil
}

func floatOrZero(r gjson.Result) (float64, error) {
	if !present(r) {
		return 0, nil
	}
	if r.Type != gjson.Number {
		return 0, fmt.Errorf("expected number, got %s", r.Type)
	}
	return r.Float(), nil
}

// lenientTime parses an optional timestamp; anything unreadable becomes the zero value.
func lenientTime(r gjson.Result) model.Timestamp {
	if r.Type != gjson.String {
		return model.Timestamp{}
	}
	ts, err := model.ParseTimestamp(r.Str)
	if err != nil {
		return model.Timestamp{}
	}
	return ts
}
