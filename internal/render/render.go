// Package render builds the plain-text messages sent to users.
package render

import (
	"fmt"
	"strings"

	"github.com/ykvlv/sidekick-bot/internal/domain"
)

func kindLabel(k domain.TaskKind) string {
	switch k {
	case domain.KindDaily:
		return "Daily"
	case domain.KindWeekly:
		return "Weekly"
	}
	return ""
}

// TaskLabel formats a listed task with its points and, for custom tasks, its kind.
func TaskLabel(v domain.TaskView) string {
	if v.Kind != "" {
		return fmt.Sprintf("%s (%s, points: %d)", v.Description, kindLabel(v.Kind), v.Difficulty)
	}
	return fmt.Sprintf("%s (points: %d)", v.Description, v.Difficulty)
}

// TaskList is the numbered checklist shown by /list.
func TaskList(views []domain.TaskView) string {
	var b strings.Builder
	b.WriteString("Here are your tasks for today:\n")
	if len(views) == 0 {
		b.WriteString("No tasks found.\n")
		return b.String()
	}
	for i, v := range views {
		if v.Completed {
			fmt.Fprintf(&b, "%d. ✅ %s (+%d)\n", i+1, TaskLabel(v), v.Difficulty)
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, TaskLabel(v))
	}
	return b.String()
}

// MorningReminder lists the day's plan without completion state.
func MorningReminder(u *domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Good morning %s!\n\nHere are your tasks for today:\n\nDaily Tasks:\n", u.Name)
	for i, d := range u.Defaults {
		fmt.Fprintf(&b, "%d. %s (points: %d)\n", i+1, d.Description, d.Difficulty)
	}
	writeCustomSection(&b, "Your Custom Daily Tasks:", u.ActiveCustomOfKind(domain.KindDaily))
	writeCustomSection(&b, "Your Weekly Tasks:", u.ActiveCustomOfKind(domain.KindWeekly))
	return b.String()
}

func writeCustomSection(b *strings.Builder, title string, tasks []*domain.CustomTask) {
	if len(tasks) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for i, t := range tasks {
		fmt.Fprintf(b, "%d. %s (points: %d)\n", i+1, t.Description, t.Difficulty)
	}
}

// NightlySummary splits today's listing into done and not done.
func NightlySummary(views []domain.TaskView, pointsToday int) string {
	var done, open []string
	for _, v := range views {
		if v.Completed {
			done = append(done, TaskLabel(v))
		} else {
			open = append(open, TaskLabel(v))
		}
	}

	var b strings.Builder
	b.WriteString("Here is your nightly summary:\n\nCompleted Tasks:\n")
	writeBullets(&b, done)
	b.WriteString("\nUncompleted Tasks:\n")
	writeBullets(&b, open)
	fmt.Fprintf(&b, "\nTotal Points for Today: %d\n", pointsToday)
	return b.String()
}

func writeBullets(b *strings.Builder, items []string) {
	if len(items) == 0 {
		b.WriteString("None\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "- %s\n", it)
	}
}

// WeeklySummary reports weekly and total points and the current task list.
func WeeklySummary(u *domain.User, views []domain.TaskView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Happy Friday, %s!\n\n", u.Name)
	fmt.Fprintf(&b, "This week, you've earned %d points.\n", u.WeeklyPoints)
	fmt.Fprintf(&b, "Your total points so far are %d.\n\n", u.TotalPoints)
	b.WriteString("Here are your current tasks:\n")
	if len(views) == 0 {
		b.WriteString("No tasks found.\n")
	}
	for i, v := range views {
		fmt.Fprintf(&b, "%d. %s\n", i+1, TaskLabel(v))
	}
	b.WriteString("\nKeep up the great work!")
	return b.String()
}

// Points shows both counters.
func Points(u *domain.User) string {
	return fmt.Sprintf("Your points:\n- Total Points: %d\n- Weekly Points: %d", u.TotalPoints, u.WeeklyPoints)
}

// CatalogPrompt asks a registering user to pick their default tasks.
func CatalogPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Please select your first %d tasks from the list by entering the numbers separated by commas (e.g., '1,3,5,...').\n", domain.DefaultSetSize)
	b.WriteString("Or simply reply with 'Default' to use the default set.\n\n")
	for i, t := range domain.Catalog() {
		fmt.Fprintf(&b, "%d. %s (points: %d)\n", i+1, t.Description, t.Difficulty)
	}
	return b.String()
}

// Welcome confirms registration and lists the chosen defaults.
func Welcome(u *domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thanks %s, you are now registered with Selfcare Sidekick and have been gifted %d points!\n\n", u.Name, domain.RegistrationGift)
	b.WriteString("Your personal default tasks for daily self-care:\n")
	for _, d := range u.Defaults {
		fmt.Fprintf(&b, "- %s (points: %d)\n", d.Description, d.Difficulty)
	}
	b.WriteString("\nUse /complete to mark tasks as done, /add to add custom tasks, /remove to remove tasks, and /points to check your points.\n")
	b.WriteString("Try /journal for a daily journal prompt. Have a great day!")
	return b.String()
}

// RemovalPrompt lists active custom tasks for the remove dialog.
func RemovalPrompt(tasks []domain.CustomTask) string {
	var b strings.Builder
	b.WriteString("Your custom tasks:\n")
	for i, t := range tasks {
		fmt.Fprintf(&b, "%d. %s (Type: %s)\n", i+1, t.Description, t.Kind)
	}
	b.WriteString("Reply with the number of the task you want to remove.")
	return b.String()
}
