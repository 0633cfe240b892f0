// ABOUTME: Plain-text rendering of agents, tasks, logs and usage for terminal output
// ABOUTME: Status words are colorized when stdout is a terminal

package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/kurek775/saladin/internal/api"
	"github.com/kurek775/saladin/internal/journal"
	"github.com/kurek775/saladin/internal/model"
)

// truncate shortens s to n runes, appending "..." when cut.
func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

func colorStatus(status string) string {
	switch status {
	case string(model.TaskApproved), string(model.AgentIdle):
		return color.GreenString(status)
	case string(model.TaskRunning), string(model.TaskUnderReview), string(model.AgentBusy):
		return color.CyanString(status)
	case string(model.TaskPendingHumanApproval):
		return color.YellowString(status)
	case string(model.TaskRejected), string(model.TaskFailed), string(model.AgentError):
		return color.RedString(status)
	}
	return status
}

// pad right-pads the visible text of s to width; color codes do not count.
func pad(s string, visible, width int) string {
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func formatAgentsTable(agents []model.Agent) string {
	if len(agents) == 0 {
		return "No agents.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-38s %-20s %-10s %-8s %s\n", "ID", "NAME", "ROLE", "STATUS", "MODEL")
	for _, a := range agents {
		fmt.Fprintf(&b, "%-38s %-20s %-10s %s %s\n",
			a.ID, truncate(a.Name, 20), a.Role,
			pad(colorStatus(string(a.Status)), len(a.Status), 8),
			strings.TrimPrefix(a.LLMProvider+"/"+a.LLMModel, "/"))
	}
	return b.String()
}

func formatTasksTable(tasks []model.Task) string {
	if len(tasks) == 0 {
		return "No tasks.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-38s %-24s %-4s %s\n", "ID", "STATUS", "REV", "DESCRIPTION")
	for _, t := range tasks {
		desc := t.Description
		if t.Depth > 0 {
			desc = strings.Repeat("  ", t.Depth) + "↳ " + desc
		}
		fmt.Fprintf(&b, "%-38s %s %-4d %s\n",
			t.ID, pad(colorStatus(string(t.Status)), len(t.Status), 24),
			t.CurrentRevision, truncate(desc, 60))
	}
	return b.String()
}

func formatTaskDetail(t model.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task:      %s\n", t.ID)
	fmt.Fprintf(&b, "Status:    %s\n", colorStatus(string(t.Status)))
	fmt.Fprintf(&b, "Revision:  %d\n", t.CurrentRevision)
	if len(t.AssignedAgents) > 0 {
		fmt.Fprintf(&b, "Agents:    %s\n", strings.Join(t.AssignedAgents, ", "))
	}
	if t.ParentTaskID != "" {
		fmt.Fprintf(&b, "Parent:    %s (depth %d)\n", t.ParentTaskID, t.Depth)
	}
	if len(t.ChildTaskIDs) > 0 {
		fmt.Fprintf(&b, "Children:  %s\n", strings.Join(t.ChildTaskIDs, ", "))
	}
	fmt.Fprintf(&b, "\n%s\n", t.Description)

	for _, o := range t.WorkerOutputs {
		name := o.AgentName
		if name == "" {
			name = o.AgentID
		}
		fmt.Fprintf(&b, "\n%s rev %d\n%s\n", color.CyanString("[Worker: %s]", name), o.Revision, o.Output)
	}
	for _, r := range t.SupervisorReviews {
		fmt.Fprintf(&b, "\n%s rev %d: %s\n", color.MagentaString("[Supervisor]"), r.Revision, r.Decision)
		if r.Feedback != "" {
			fmt.Fprintf(&b, "%s\n", r.Feedback)
		}
	}
	if t.FinalOutput != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", color.GreenString("Final output:"), t.FinalOutput)
	}
	return b.String()
}

func formatLogEntry(e model.LogEntry) string {
	level := strings.ToUpper(string(e.Level))
	switch e.Level {
	case model.LevelWarning:
		level = color.YellowString(level)
	case model.LevelError:
		level = color.RedString(level)
	}
	who := e.AgentName
	if who == "" {
		who = e.AgentID
	}
	if who != "" {
		who += ": "
	}
	return fmt.Sprintf("%s [%s] %s%s\n", e.Timestamp.Local().Format("15:04:05"), level, who, e.Message)
}

func formatUsage(total *journal.Stats, byModel []journal.ModelStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Requests:  %d\n", total.RequestCount)
	fmt.Fprintf(&b, "Input:     %d\n", total.TotalInput)
	fmt.Fprintf(&b, "Output:    %d\n", total.TotalOutput)
	fmt.Fprintf(&b, "Total:     %d\n", total.TotalTokens)
	fmt.Fprintf(&b, "Cost:      $%.6f\n", total.TotalCostUSD)
	if len(byModel) == 0 {
		return b.String()
	}
	fmt.Fprintf(&b, "\n%-28s %-8s %-12s %s\n", "MODEL", "CALLS", "TOKENS", "COST")
	for _, m := range byModel {
		name := m.Model
		if name == "" {
			name = "(unknown)"
		}
		fmt.Fprintf(&b, "%-28s %-8d %-12d $%.6f\n", name, m.RequestCount, m.TotalTokens, m.TotalCostUSD)
	}
	return b.String()
}

func formatHealth(h api.Health) string {
	var b strings.Builder
	rows := []struct{ k, v string }{
		{"Status", h.Status},
		{"Uptime", h.Uptime},
		{"Agents", fmt.Sprint(h.NumAgents)},
		{"Tasks", fmt.Sprint(h.NumTasks)},
		{"Sandbox", h.SandboxMode},
		{"Provider", h.LLMProvider},
		{"Model", h.LLMModel},
		{"Python", h.PythonVersion},
	}
	for _, r := range rows {
		if r.v == "" {
			continue
		}
		fmt.Fprintf(&b, "%-10s %s\n", r.k+":", r.v)
	}
	return b.String()
}
