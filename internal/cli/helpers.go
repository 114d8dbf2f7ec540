package cli

import (
	"strings"

	"github.com/swamp-dev/mindcare/internal/stats"
)

func renderProgressBar(percent float64, width int) string {
	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return "[" + bar + "]"
}

func scoreIcon(score int) string {
	switch stats.Band(score) {
	case "great":
		return "★"
	case "good":
		return "✓"
	case "fair":
		return "○"
	default:
		return "✗"
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
