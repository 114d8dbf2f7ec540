package journal

import (
	"context"
	"fmt"
	"strings"
)

var periodTitles = map[Period]string{
	Morning:   "Morning",
	Afternoon: "Afternoon",
	Evening:   "Evening",
}

// RenderEntry formats a single journal entry as markdown.
func RenderEntry(e *Entry) string {
	var sb strings.Builder

	day := e.Date
	if day == "" {
		day = e.CreatedAt.Format("2006-01-02")
	}
	sb.WriteString(fmt.Sprintf("## %s | %s (%d/10)\n", day, e.OverallMood, e.OverallScore))
	sb.WriteString(fmt.Sprintf("**Written %s | id %s**\n\n", e.CreatedAt.Format("2006-01-02 15:04"), e.ID))

	for _, p := range Periods {
		v := e.Period(p)
		sb.WriteString(fmt.Sprintf("### %s | %s %d/10\n", periodTitles[p], v.Mood, v.Score))
		sb.WriteString(v.Text)
		sb.WriteString("\n")
		if v.Tip != "" {
			sb.WriteString("\n> ")
			sb.WriteString(v.Tip)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if e.DailySummary != "" {
		sb.WriteString("**Summary:** ")
		sb.WriteString(e.DailySummary)
		sb.WriteString("\n")
	}

	return sb.String()
}

// ExportMarkdown generates a human-readable markdown diary for userID,
// oldest entry first.
func (r *Repository) ExportMarkdown(ctx context.Context, userID string) (string, error) {
	entries, err := r.List(ctx, userID, 0)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("# MindCare Journal\n\n")

	for i := len(entries) - 1; i >= 0; i-- {
		sb.WriteString(RenderEntry(&entries[i]))
		sb.WriteString("\n---\n\n")
	}

	return sb.String(), nil
}
