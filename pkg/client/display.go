package client

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/artem13815/tasktracker/pkg/auth"
	"github.com/artem13815/tasktracker/pkg/task"
)

// Badge colours.
const (
	ColorPending    = "#ffc107"
	ColorInProgress = "#17a2b8"
	ColorCompleted  = "#28a745"
	ColorUnknown    = "#6c757d"

	ColorOverdue = "#dc3545"
	ColorDueNow  = "#fd7e14"
	ColorDueSoon = "#ffc107"
	ColorDueLate = "#28a745"
)

// displayDate is locale independent.
const displayDate = "Jan 2, 2006"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorOverdue)).Bold(true)
)

func StatusColor(s task.Status) string {
	switch s {
	case task.StatusPending:
		return ColorPending
	case task.StatusInProgress:
		return ColorInProgress
	case task.StatusCompleted:
		return ColorCompleted
	}
	return ColorUnknown
}

// DaysUntil counts whole days from now to due, rounding up.
func DaysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

func DueColor(due, now time.Time) string {
	switch d := DaysUntil(due, now); {
	case d < 0:
		return ColorOverdue
	case d <= 1:
		return ColorDueNow
	case d <= 3:
		return ColorDueSoon
	}
	return ColorDueLate
}

func StatusBadge(s task.Status) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(StatusColor(s))).
		Bold(true).
		Render("[" + string(s) + "]")
}

// FormatDate renders a YYYY-MM-DD or RFC 3339 value; anything else is returned as is.
func FormatDate(raw string) string {
	t, err := task.ParseDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(displayDate)
}

func PageLine(p task.Pagination) string {
	pages := p.Pages
	if pages < 1 {
		pages = 1
	}
	return fmt.Sprintf("Page %d of %d (%d tasks)", p.Page, pages, p.Total)
}

// RenderTasks prints one block per task. showAssignee is set for the admin view.
func RenderTasks(w io.Writer, list TaskList, now time.Time, showAssignee bool) {
	if len(list.Tasks) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No tasks found."))
		return
	}
	for _, t := range list.Tasks {
		fmt.Fprintf(w, "%s %s\n", StatusBadge(t.Status), titleStyle.Render(t.Title))
		fmt.Fprintf(w, "  %s\n", t.Description)

		due := FormatDate(t.DueDate)
		if d, err := task.ParseDate(t.DueDate); err == nil {
			due = lipgloss.NewStyle().Foreground(lipgloss.Color(DueColor(d, now))).Render(due)
		}
		meta := []string{"Due: " + due}
		if showAssignee {
			meta = append(meta, "Assigned to: "+assigneeLabel(t.AssignedTo))
		}
		if !t.CreatedAt.IsZero() {
			meta = append(meta, "Created: "+t.CreatedAt.Format(displayDate))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(meta, "  "))
		fmt.Fprintf(w, "  %s\n\n", dimStyle.Render("id "+t.ID))
	}
	fmt.Fprintln(w, PageLine(list.Pagination))
}

func RenderStats(w io.Writer, s Stats) {
	fmt.Fprintln(w, headerStyle.Render("Summary"))
	fmt.Fprintf(w, "  Total: %d\n", s.Total)
	fmt.Fprintf(w, "  %s %d\n", StatusBadge(task.StatusPending), s.Pending)
	fmt.Fprintf(w, "  %s %d\n", StatusBadge(task.StatusInProgress), s.InProgress)
	fmt.Fprintf(w, "  %s %d\n", StatusBadge(task.StatusCompleted), s.Completed)
}

func RenderUsers(w io.Writer, users []auth.PublicUser) {
	if len(users) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No employees yet."))
		return
	}
	for _, u := range users {
		fmt.Fprintf(w, "%s <%s>  %s\n", titleStyle.Render(u.Name), u.Email, dimStyle.Render(u.ID.String()))
	}
}

func RenderError(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render(msg))
}

func assigneeLabel(a task.Assignee) string {
	if a.Name == "" {
		return a.ID.String()
	}
	return a.Name
}
