// ABOUTME: Tests for frame validation and narrowing into typed events
// ABOUTME: Covers every kind, sparse task patches, defaults and rejection paths

package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurek775/saladin/internal/model"
)

func TestParse_Ping(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"ping"}`))
	require.NoError(t, err)
	assert.Equal(t, KindPing, ev.Kind())
}

func TestParse_AgentUpdate(t *testing.T) {
	raw := `{"type":"agent_update","data":{"action":"created","agent":{
		"id":"a1","name":"Writer","role":"worker","system_prompt":"p",
		"llm_provider":"openai","llm_model":"gpt-4o","status":"idle",
		"created_at":"2025-03-01T10:00:00+00:00"}}}`

	ev, err := Parse([]byte(raw))
	require.NoError(t, err)

	upd, ok := ev.(AgentUpdate)
	require.True(t, ok)
	assert.Equal(t, AgentCreated, upd.Action)
	assert.Equal(t, "a1", upd.AgentID)
	assert.Equal(t, "Writer", upd.Agent.Name)
	assert.Equal(t, model.RoleWorker, upd.Agent.Role)
	assert.Equal(t, "gpt-4o", upd.Agent.LLMModel)
}

func TestParse_AgentDeleted(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"agent_update","data":{"action":"deleted","agent_id":"a9"}}`))
	require.NoError(t, err)

	upd := ev.(AgentUpdate)
	assert.Equal(t, AgentDeleted, upd.Action)
	assert.Equal(t, "a9", upd.AgentID)
}

func TestParse_AgentUpdate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown action", `{"type":"agent_update","data":{"action":"renamed","agent":{"id":"a1","role":"worker","status":"idle"}}}`},
		{"missing agent", `{"type":"agent_update","data":{"action":"updated"}}`},
		{"missing id", `{"type":"agent_update","data":{"action":"updated","agent":{"role":"worker","status":"idle"}}}`},
		{"bad role", `{"type":"agent_update","data":{"action":"updated","agent":{"id":"a1","role":"boss","status":"idle"}}}`},
		{"bad status", `{"type":"agent_update","data":{"action":"status_changed","agent":{"id":"a1","role":"worker","status":"asleep"}}}`},
		{"deleted without id", `{"type":"agent_update","data":{"action":"deleted"}}`},
		{"wrong field type", `{"type":"agent_update","data":{"action":"created","agent":{"id":7,"role":"worker","status":"idle"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "got %v", err)
		})
	}
}

func TestParse_TaskUpdate_Sparse(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"task_update","data":{"action":"status_changed","task":{"id":"t1","status":"running"}}}`))
	require.NoError(t, err)

	upd := ev.(TaskUpdate)
	assert.Equal(t, "t1", upd.TaskID)
	assert.Equal(t, model.TaskRunning, upd.Status)
	assert.Nil(t, upd.FinalOutput)
	assert.Nil(t, upd.CurrentRevision)
	assert.Nil(t, upd.Description)
	assert.Nil(t, upd.AssignedAgents)
	assert.Nil(t, upd.ChildTaskIDs)
	assert.Nil(t, upd.UpdatedAt)
}

func TestParse_TaskUpdate_Full(t *testing.T) {
	raw := `{"type":"task_update","data":{"action":"child_created","child_id":"t2","task":{
		"id":"t1","status":"running","description":"d","assigned_agents":["a1","a2"],
		"current_revision":2,"final_output":"done","updated_at":"2025-03-01T10:00:00+00:00",
		"parent_task_id":"","depth":0,"child_task_ids":["t2"],"spawned_by_agent":"a1"}}}`

	ev, err := Parse([]byte(raw))
	require.NoError(t, err)

	upd := ev.(TaskUpdate)
	assert.Equal(t, TaskActionChildCreated, upd.Action)
	assert.Equal(t, "t2", upd.ChildID)
	require.NotNil(t, upd.CurrentRevision)
	assert.Equal(t, 2, *upd.CurrentRevision)
	require.NotNil(t, upd.FinalOutput)
	assert.Equal(t, "done", *upd.FinalOutput)
	assert.Equal(t, []string{"a1", "a2"}, upd.AssignedAgents)
	assert.Equal(t, []string{"t2"}, upd.ChildTaskIDs)
	require.NotNil(t, upd.Depth)
	assert.Equal(t, 0, *upd.Depth)
	require.NotNil(t, upd.UpdatedAt)
	assert.Equal(t, 2025, upd.UpdatedAt.Year())
}

func TestParse_TaskUpdate_NullFieldsAreAbsent(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"task_update","data":{"task":{"id":"t1","status":"approved","final_output":null,"current_revision":null}}}`))
	require.NoError(t, err)

	upd := ev.(TaskUpdate)
	assert.Nil(t, upd.FinalOutput)
	assert.Nil(t, upd.CurrentRevision)
}

func TestParse_TaskUpdate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no task", `{"type":"task_update","data":{"action":"created"}}`},
		{"no id", `{"type":"task_update","data":{"task":{"status":"running"}}}`},
		{"no status", `{"type":"task_update","data":{"task":{"id":"t1"}}}`},
		{"unknown status", `{"type":"task_update","data":{"task":{"id":"t1","status":"done"}}}`},
		{"string revision", `{"type":"task_update","data":{"task":{"id":"t1","status":"revision","current_revision":"two"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestParse_LogKinds(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"log","data":{"task_id":"t1","level":"error","message":"boom","timestamp":"2025-03-01T10:00:00+00:00"}}`))
	require.NoError(t, err)
	lg := ev.(Log)
	assert.Equal(t, model.LevelError, lg.Level)
	assert.Equal(t, "boom", lg.Message)
	assert.False(t, lg.Timestamp.IsZero())

	ev, err = Parse([]byte(`{"type":"worker_output","data":{"task_id":"t1","agent_id":"a1","agent_name":"W","output":"hi","revision":1}}`))
	require.NoError(t, err)
	wo := ev.(WorkerOutput)
	assert.Equal(t, "W", wo.AgentName)
	assert.Equal(t, 1, wo.Revision)

	ev, err = Parse([]byte(`{"type":"supervisor_review","data":{"task_id":"t1","decision":"revise","feedback":"more","revision":0}}`))
	require.NoError(t, err)
	sr := ev.(SupervisorReview)
	assert.Equal(t, model.DecisionRevise, sr.Decision)
	assert.Equal(t, "more", sr.Feedback)
}

func TestParse_LogDefaults(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"log","data":{}}`))
	require.NoError(t, err)
	lg := ev.(Log)
	assert.Equal(t, model.LevelInfo, lg.Level)
	assert.True(t, lg.Timestamp.IsZero())
}

func TestParse_HumanApproval(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"human_approval_required","data":{"task_id":"T1","supervisor_decision":"approve"}}`))
	require.NoError(t, err)
	ha := ev.(HumanApprovalRequired)
	assert.Equal(t, "T1", ha.TaskID)
	assert.Equal(t, model.DecisionApprove, ha.SupervisorDecision)

	_, err = Parse([]byte(`{"type":"human_approval_required","data":{}}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_Telemetry(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"telemetry","data":{"task_id":"T1","model":"gpt-4o","input_tokens":100,"output_tokens":50,"total_tokens":150,"estimated_cost_usd":0.002}}`))
	require.NoError(t, err)
	tel := ev.(Telemetry)
	assert.Equal(t, int64(100), tel.Usage.InputTokens)
	assert.Equal(t, int64(50), tel.Usage.OutputTokens)
	assert.Equal(t, int64(150), tel.Usage.TotalTokens)
	assert.InDelta(t, 0.002, tel.Usage.EstimatedCostUSD, 1e-12)
	assert.True(t, tel.HasTotal)
	assert.True(t, tel.HasCost)
}

func TestParse_TelemetryDefaultsMissingNumbers(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"telemetry","data":{"task_id":"T1"}}`))
	require.NoError(t, err)
	tel := ev.(Telemetry)
	assert.Zero(t, tel.Usage.InputTokens)
	assert.Zero(t, tel.Usage.TotalTokens)
	assert.False(t, tel.HasTotal)
	assert.False(t, tel.HasCost)

	_, err = Parse([]byte(`{"type":"telemetry","data":{"input_tokens":1}}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse([]byte(`{"type":"telemetry","data":{"task_id":"T1","input_tokens":"many"}}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParse_FrameErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `{"type":`, ErrMalformed},
		{"array", `[1,2]`, ErrMalformed},
		{"no type", `{"data":{}}`, ErrMalformed},
		{"numeric type", `{"type":3,"data":{}}`, ErrMalformed},
		{"known without data", `{"type":"log"}`, ErrMalformed},
		{"unknown type", `{"type":"weather","data":{}}`, ErrUnknownType},
		{"unknown without data", `{"type":"weather"}`, ErrUnknownType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := Parse([]byte(tt.raw))
			assert.Nil(t, ev)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// recorder captures dispatched kinds.
type recorder struct {
	kinds []Kind
}

func (r *recorder) HandleAgentUpdate(AgentUpdate)                     { r.kinds = append(r.kinds, KindAgentUpdate) }
func (r *recorder) HandleTaskUpdate(TaskUpdate)                       { r.kinds = append(r.kinds, KindTaskUpdate) }
func (r *recorder) HandleLog(Log)                                     { r.kinds = append(r.kinds, KindLog) }
func (r *recorder) HandleWorkerOutput(WorkerOutput)                   { r.kinds = append(r.kinds, KindWorkerOutput) }
func (r *recorder) HandleSupervisorReview(SupervisorReview)           { r.kinds = append(r.kinds, KindSupervisorReview) }
func (r *recorder) HandleHumanApprovalRequired(HumanApprovalRequired) { r.kinds = append(r.kinds, KindHumanApprovalRequired) }
func (r *recorder) HandleTelemetry(Telemetry)                         { r.kinds = append(r.kinds, KindTelemetry) }
func (r *recorder) HandlePing(Ping)                                   { r.kinds = append(r.kinds, KindPing) }

func TestAccept_DispatchesByKind(t *testing.T) {
	all := []Event{
		AgentUpdate{}, TaskUpdate{}, Log{}, WorkerOutput{}, SupervisorReview{},
		HumanApprovalRequired{}, Telemetry{}, Ping{},
	}
	rec := &recorder{}
	for _, ev := range all {
		ev.Accept(rec)
	}
	require.Len(t, rec.kinds, len(all))
	for i, ev := range all {
		assert.Equal(t, ev.Kind(), rec.kinds[i])
	}
}
