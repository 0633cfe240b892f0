// ABOUTME: Field-level merge rules shared by stream patches and snapshot merges
// ABOUTME: Revisions only move forward and child task ids are a growing set

package reconcile

import (
	"slices"

	"github.com/kurek775/saladin/internal/model"
)

// appendUnique appends ids not already present, preserving first-seen order.
func appendUnique(dst []string, ids ...string) []string {
	for _, id := range ids {
		if id == "" || slices.Contains(dst, id) {
			continue
		}
		dst = append(dst, id)
	}
	return dst
}

// mergeSummary folds a list-endpoint record into the local task. Detail
// fields the summary does not carry are kept from local.
func mergeSummary(local model.Task, s model.TaskSummary) model.Task {
	t := local.Clone()
	t.Description = s.Description
	t.AssignedAgents = slices.Clone(s.AssignedAgents)
	if !s.CreatedAt.IsZero() {
		t.CreatedAt = s.CreatedAt
	}
	if remoteNewer(local.UpdatedAt, s.UpdatedAt) {
		t.Status = s.Status
		t.UpdatedAt = s.UpdatedAt
	}
	t.CurrentRevision = max(local.CurrentRevision, s.CurrentRevision)
	mergeLineage(&t.Lineage, s.Lineage)
	return t
}

// mergeDetail folds a full task record into the local task. The detail
// endpoint is the only source of the output and review arrays.
func mergeDetail(local, remote model.Task) model.Task {
	t := mergeSummary(local, remote.Summary())
	t.WorkerOutputs = slices.Clone(remote.WorkerOutputs)
	t.SupervisorReviews = slices.Clone(remote.SupervisorReviews)
	if remote.FinalOutput != "" && remoteNewer(local.UpdatedAt, remote.UpdatedAt) {
		t.FinalOutput = remote.FinalOutput
	}
	if t.FinalOutput == "" {
		t.FinalOutput = remote.FinalOutput
	}
	return t
}

// remoteNewer reports whether a server record may override the local status
// and final output. Stream patches usually carry no updated_at, so a tie keeps
// what the stream applied.
func remoteNewer(local, remote model.Timestamp) bool {
	return local.IsZero() || remote.After(local.Time)
}

func mergeLineage(dst *model.Lineage, src model.Lineage) {
	if src.ParentTaskID != "" {
		dst.ParentTaskID = src.ParentTaskID
	}
	if src.Depth != 0 {
		dst.Depth = src.Depth
	}
	if src.SpawnedByAgent != "" {
		dst.SpawnedByAgent = src.SpawnedByAgent
	}
	dst.ChildTaskIDs = appendUnique(dst.ChildTaskIDs, src.ChildTaskIDs...)
}

func newTask(s model.TaskSummary) model.Task {
	return model.Task{
		ID:              s.ID,
		Description:     s.Description,
		Status:          s.Status,
		AssignedAgents:  slices.Clone(s.AssignedAgents),
		CurrentRevision: s.CurrentRevision,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Lineage: model.Lineage{
			ParentTaskID:   s.ParentTaskID,
			Depth:          s.Depth,
			ChildTaskIDs:   appendUnique(nil, s.ChildTaskIDs...),
			SpawnedByAgent: s.SpawnedByAgent,
		},
	}
}
