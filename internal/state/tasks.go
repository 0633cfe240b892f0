// ABOUTME: Task table keyed by id with primitive put, patch and replace operations
// ABOUTME: Merge policy lives in the reconcile package; this table only stores records

package state

import (
	"sort"

	"github.com/kurek775/saladin/internal/model"
)

// TaskTable holds tasks by id.
type TaskTable struct {
	byID map[string]*model.Task
}

func newTaskTable() *TaskTable {
	return &TaskTable{byID: make(map[string]*model.Task)}
}

// Get returns a copy of a task.
func (t *TaskTable) Get(id string) (model.Task, bool) {
	task, ok := t.byID[id]
	if !ok {
		return model.Task{}, false
	}
	return task.Clone(), true
}

// Has reports whether id is known.
func (t *TaskTable) Has(id string) bool {
	_, ok := t.byID[id]
	return ok
}

// Put inserts or replaces a task record.
func (t *TaskTable) Put(task model.Task) {
	cp := task.Clone()
	t.byID[task.ID] = &cp
}

// Patch applies fn to a known task in place. It reports false if the task is unknown.
func (t *TaskTable) Patch(id string, fn func(*model.Task)) bool {
	task, ok := t.byID[id]
	if !ok {
		return false
	}
	fn(task)
	return true
}

// Replace swaps the whole collection for tasks.
func (t *TaskTable) Replace(tasks []model.Task) {
	t.byID = make(map[string]*model.Task, len(tasks))
	for _, task := range tasks {
		cp := task.Clone()
		t.byID[task.ID] = &cp
	}
}

// Len returns the number of tasks.
func (t *TaskTable) Len() int {
	return len(t.byID)
}

// List returns copies of all tasks ordered by creation time, then id.
func (t *TaskTable) List() []model.Task {
	out := make([]model.Task, 0, len(t.byID))
	for _, task := range t.byID {
		out = append(out, task.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
