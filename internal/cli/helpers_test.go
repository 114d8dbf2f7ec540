package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/swamp-dev/mindcare/internal/analysis"
	"github.com/swamp-dev/mindcare/internal/journal"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		width   int
		wantLen int // total length including brackets
	}{
		{"0 percent", 0.0, 20, 22},
		{"50 percent", 50.0, 20, 22},
		{"100 percent", 100.0, 20, 22},
		{"25 percent", 25.0, 40, 42},
		{"negative", -10.0, 10, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := renderProgressBar(tt.percent, tt.width)

			runes := []rune(result)
			if len(runes) != tt.wantLen {
				t.Errorf("renderProgressBar(%.0f, %d) rune length = %d, want %d", tt.percent, tt.width, len(runes), tt.wantLen)
			}
			if result[0] != '[' {
				t.Error("expected bar to start with '['")
			}
			if runes[len(runes)-1] != ']' {
				t.Error("expected bar to end with ']'")
			}
		})
	}

	if bar := renderProgressBar(0.0, 10); strings.Contains(bar, "█") {
		t.Error("0% bar should have no filled blocks")
	}
	if bar := renderProgressBar(150.0, 10); strings.Contains(bar, "░") {
		t.Error(">100% bar should be clamped to full (no empty blocks)")
	}
	if bar := renderProgressBar(67.0, 10); strings.Count(bar, "█") != 6 {
		t.Errorf("67%% of 10 should fill 6 blocks, got %q", bar)
	}
}

func TestScoreIcon(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{10, "★"},
		{8, "★"},
		{7, "✓"},
		{6, "✓"},
		{5, "○"},
		{4, "○"},
		{3, "✗"},
		{1, "✗"},
	}

	for _, tt := range tests {
		if got := scoreIcon(tt.score); got != tt.expected {
			t.Errorf("scoreIcon(%d) = %q, want %q", tt.score, got, tt.expected)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"over length gets ellipsis", "hello world", 8, "hello..."},
		{"empty string", "", 10, ""},
		{"multibyte kept whole", "çaféçaféçafé", 7, "çafé..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := truncate(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, result, tt.expected)
			}
			if n := len([]rune(result)); n > tt.max {
				t.Errorf("truncate result length %d exceeds max %d", n, tt.max)
			}
		})
	}
}

func TestPromptMissing(t *testing.T) {
	texts := analysis.DayTexts{Afternoon: "given"}
	var prompts strings.Builder

	err := promptMissing(strings.NewReader("first line\n  third line  \n"), &prompts, &texts)
	if err != nil {
		t.Fatalf("promptMissing() error = %v", err)
	}

	if texts.Morning != "first line" || texts.Afternoon != "given" || texts.Evening != "third line" {
		t.Errorf("unexpected texts: %+v", texts)
	}
	if prompts.String() != "morning: evening: " {
		t.Errorf("unexpected prompts %q", prompts.String())
	}
}

func TestPromptMissingEOF(t *testing.T) {
	texts := analysis.DayTexts{}
	var prompts strings.Builder

	err := promptMissing(strings.NewReader("only morning\n"), &prompts, &texts)
	if !errors.Is(err, journal.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "afternoon") {
		t.Errorf("error should name the missing part: %v", err)
	}
}
