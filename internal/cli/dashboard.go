package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swamp-dev/mindcare/internal/stats"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show mood statistics",
	Long: `Display the dashboard over the most recent entries: average score, mood
distribution, the score trend and how many entries were written on each of
the last seven days.`,
	RunE: runDashboard,
}

var (
	dashboardWindow int
	dashboardJSON   bool
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Summarize the last 30 days",
	RunE:  runInsights,
}

var insightsJSON bool

func init() {
	dashboardCmd.Flags().IntVar(&dashboardWindow, "window", 0, "number of recent entries to include (default from config)")
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "output as JSON")

	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "output as JSON")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	window := dashboardWindow
	if window <= 0 {
		window = a.cfg.Dashboard.Window
	}

	s, err := a.svc.Dashboard(cmd.Context(), window)
	if err != nil {
		return fmt.Errorf("loading dashboard: %w", err)
	}

	if dashboardJSON {
		return encodeJSON(cmd.OutOrStdout(), s)
	}

	printDashboard(cmd.OutOrStdout(), s)
	return nil
}

func printDashboard(w io.Writer, s *stats.Summary) {
	fmt.Fprintln(w, "=== MindCare Dashboard ===")
	fmt.Fprintln(w)

	if s.TotalEntries == 0 {
		fmt.Fprintln(w, "No journal entries yet. Run 'mindcare write' to add one.")
		return
	}

	avg := s.AverageScore.InexactFloat64()
	fmt.Fprintf(w, "Entries:   %d\n", s.TotalEntries)
	fmt.Fprintf(w, "Average:   %s/10 %s\n", s.AverageScore.StringFixed(1), renderProgressBar(avg*10, 20))
	fmt.Fprintf(w, "Mood:      %s\n", s.MostCommonMood)
	fmt.Fprintf(w, "Direction: %s\n", s.Direction)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Moods ---")
	for _, m := range s.MoodDistribution {
		fmt.Fprintf(w, "%-10s %5s%% %s (%d)\n",
			m.Mood, m.Percentage.StringFixed(1), renderProgressBar(m.Percentage.InexactFloat64(), 20), m.Count)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Trend ---")
	for _, p := range s.Trend {
		fmt.Fprintf(w, "%-10s %s %2d  %s\n", p.Date, scoreIcon(p.OverallScore), p.OverallScore, p.Mood)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "--- Last 7 Days ---")
	for _, d := range s.WeeklyActivity {
		fmt.Fprintf(w, "%s %s  %s\n", d.Weekday, d.Date[5:], strings.Repeat("█", d.Entries))
	}
}

func runInsights(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	ins, err := a.svc.Insights(cmd.Context())
	if err != nil {
		return fmt.Errorf("generating insights: %w", err)
	}

	out := cmd.OutOrStdout()
	if insightsJSON {
		return encodeJSON(out, ins)
	}

	if ins.MonthlyInsights == "" {
		fmt.Fprintln(out, "No entries in the last 30 days.")
		return nil
	}
	fmt.Fprintln(out, ins.MonthlyInsights)
	if ins.Degraded {
		fmt.Fprintln(out, "\n(analysis unavailable; showing a generic message)")
	}
	return nil
}
