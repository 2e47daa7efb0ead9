// Package tasks holds the canned project task list published to the team board.
package tasks

import (
	"fmt"
	"slices"
	"strings"
)

// Status is a task's progress.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Task is one line of the project plan.
type Task struct {
	ID          string   `json:"id"`
	Phase       int      `json:"phase"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	DependsOn   []string `json:"depends_on,omitempty"`
}

// Phase names, indexed by phase number.
var Phases = map[int]string{
	1: "Foundation",
	2: "Events & Media",
	3: "Ticketing & Payments",
	4: "Messaging",
	5: "Content Site",
}

var all = []Task{
	{ID: "T-101", Phase: 1, Title: "Tenant scoping", Description: "Scope every backend call to the configured tenant id.", Status: StatusDone},
	{ID: "T-102", Phase: 1, Title: "Session authentication", Description: "Verify identity provider session tokens and derive admin role.", Status: StatusDone},
	{ID: "T-103", Phase: 1, Title: "Backend service account", Description: "Log in to the backend and cache the service token.", Status: StatusDone},
	{ID: "T-104", Phase: 1, Title: "Error toasts", Description: "Return a uniform error envelope the UI turns into toasts.", Status: StatusDone},
	{ID: "T-201", Phase: 2, Title: "Public event list", Description: "Paginated, filtered event listing for visitors.", Status: StatusDone, DependsOn: []string{"T-101"}},
	{ID: "T-202", Phase: 2, Title: "Event admin", Description: "Create, edit and delete events from the admin dashboard.", Status: StatusDone, DependsOn: []string{"T-102", "T-201"}},
	{ID: "T-203", Phase: 2, Title: "Media uploads", Description: "Upload flyers, hero images and documents for events.", Status: StatusInProgress, DependsOn: []string{"T-202"}},
	{ID: "T-204", Phase: 2, Title: "Event comments", Description: "Polled comment thread on each event page.", Status: StatusInProgress, DependsOn: []string{"T-201"}},
	{ID: "T-301", Phase: 3, Title: "Ticket types", Description: "Show ticket types and remaining availability per event.", Status: StatusDone, DependsOn: []string{"T-201"}},
	{ID: "T-302", Phase: 3, Title: "Stripe checkout", Description: "Sell tickets through hosted checkout sessions.", Status: StatusInProgress, DependsOn: []string{"T-301"}},
	{ID: "T-303", Phase: 3, Title: "Payment webhook", Description: "Record transactions and attendees when checkout completes.", Status: StatusTodo, DependsOn: []string{"T-302"}},
	{ID: "T-304", Phase: 3, Title: "Free registration", Description: "Register attendees for free events without payment.", Status: StatusDone, DependsOn: []string{"T-201"}},
	{ID: "T-401", Phase: 4, Title: "WhatsApp settings", Description: "Store Twilio credentials per tenant with masked secrets.", Status: StatusDone, DependsOn: []string{"T-101"}},
	{ID: "T-402", Phase: 4, Title: "WhatsApp broadcast", Description: "Send announcements to up to 100 recipients and log results.", Status: StatusTodo, DependsOn: []string{"T-401"}},
	{ID: "T-501", Phase: 5, Title: "Gallery pages", Description: "Regenerate static gallery pages from the scraped site.", Status: StatusDone},
	{ID: "T-502", Phase: 5, Title: "Gallery index", Description: "Link every gallery from a single index page.", Status: StatusDone, DependsOn: []string{"T-501"}},
}

// All returns a copy of the task list.
func All() []Task {
	return slices.Clone(all)
}

// ParseStatus accepts "todo", "in_progress" (or "in-progress") and "done".
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")); st {
	case StatusTodo, StatusInProgress, StatusDone:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Filter keeps tasks matching phase (0 = any) and status ("" = any).
func Filter(list []Task, phase int, status Status) []Task {
	out := make([]Task, 0, len(list))
	for _, t := range list {
		if phase != 0 && t.Phase != phase {
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Summary counts tasks per status.
func Summary(list []Task) map[Status]int {
	counts := map[Status]int{StatusTodo: 0, StatusInProgress: 0, StatusDone: 0}
	for _, t := range list {
		counts[t.Status]++
	}
	return counts
}
