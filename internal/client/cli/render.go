package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/passclient/internal/client/models"
	"github.com/dmitrijs2005/passclient/internal/client/services"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

const maskedSecret = "••••••••"

type column struct {
	title string
	width int
}

func renderTable(cols []column, rows [][]string) string {
	cell := func(i int, s string) string {
		w := cols[i].width
		if lipgloss.Width(s) > w {
			s = truncate(s, w)
		}
		return lipgloss.NewStyle().Width(w + 2).Render(s)
	}

	var b strings.Builder
	head := make([]string, len(cols))
	for i, c := range cols {
		head[i] = headerStyle.Render(cell(i, c.title))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, head...))
	b.WriteByte('\n')

	for _, r := range rows {
		line := make([]string, len(cols))
		for i := range cols {
			line[i] = cell(i, r[i])
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, line...))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, w int) string {
	r := []rune(s)
	if len(r) <= w || w < 2 {
		return s
	}
	return string(r[:w-1]) + "…"
}

func renderRecords(rs models.Records) string {
	if len(rs) == 0 {
		return mutedStyle.Render("No records.")
	}

	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		rows = append(rows, []string{r.ID.String(), r.Website, r.Username, r.Description})
	}
	return renderTable([]column{{"ID", 6}, {"WEBSITE", 24}, {"USERNAME", 20}, {"DESCRIPTION", 30}}, rows)
}

func renderRecord(r models.PasswordRecord, reveal bool) string {
	value := maskedSecret
	if reveal {
		value = r.Value
	}
	lines := []string{
		field("ID", r.ID.String()),
		field("Website", r.Website),
		field("Username", r.Username),
		field("Secret", value),
	}
	if r.Description != "" {
		lines = append(lines, field("Description", r.Description))
	}
	if r.CreatedAt != "" {
		lines = append(lines, field("Created", r.CreatedAt))
	}
	if r.UpdatedAt != "" {
		lines = append(lines, field("Updated", r.UpdatedAt))
	}
	return strings.Join(lines, "\n")
}

func renderUsers(us []models.User) string {
	if len(us) == 0 {
		return mutedStyle.Render("No users.")
	}
	rows := make([][]string, 0, len(us))
	for _, u := range us {
		rows = append(rows, []string{u.ID.String(), u.Username, u.Email, strings.TrimSpace(u.FirstName + " " + u.LastName), u.Role})
	}
	return renderTable([]column{{"ID", 6}, {"USERNAME", 16}, {"EMAIL", 28}, {"NAME", 24}, {"ROLE", 8}}, rows)
}

func renderUser(u models.User) string {
	lines := []string{
		field("ID", u.ID.String()),
		field("Username", u.Username),
		field("Email", u.Email),
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		lines = append(lines, field("Name", name))
	}
	if u.Role != "" {
		lines = append(lines, field("Role", u.Role))
	}
	return strings.Join(lines, "\n")
}

func renderExpiry(s models.Session, now time.Time) string {
	left, ok := services.ExpiresIn(s, now)
	if !ok {
		return field("Token expires", "unknown")
	}
	exp := s.ExpiresAt.Format(time.RFC3339)
	if left = left.Round(time.Minute); left <= 0 {
		return field("Token expires", fmt.Sprintf("%s (expired)", exp))
	}
	return field("Token expires", fmt.Sprintf("%s (in %s)", exp, left))
}

func field(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-14s", label+":")) + value
}
