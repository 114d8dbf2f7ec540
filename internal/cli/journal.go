package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/swamp-dev/mindcare/internal/analysis"
	"github.com/swamp-dev/mindcare/internal/journal"
)

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Record today's journal entry",
	Long: `Write records one day: what happened in the morning, afternoon and
evening. Each part is classified, then the day is summarized and stored.

Parts not given as flags are read from standard input, one line each.

Examples:
  mindcare write
  mindcare write --morning "Ran 5k" --afternoon "Long meeting" --evening "Movie night"`,
	RunE: runWrite,
}

var (
	writeMorning   string
	writeAfternoon string
	writeEvening   string
	writeJSON      bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries, newest first",
	RunE:  runList,
}

var (
	listLast     int
	listJSON     bool
	listMarkdown bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a journal entry",
	Long: `Edit replaces only the fields given as flags. The entry keeps its id,
owner and creation time.

Examples:
  mindcare edit 0190c7e2-... --evening "Actually a great evening" --score 8
  mindcare edit 0190c7e2-... --mood Happy --summary "Better than expected"`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var deleteStrict bool

func init() {
	writeCmd.Flags().StringVar(&writeMorning, "morning", "", "morning text")
	writeCmd.Flags().StringVar(&writeAfternoon, "afternoon", "", "afternoon text")
	writeCmd.Flags().StringVar(&writeEvening, "evening", "", "evening text")
	writeCmd.Flags().BoolVar(&writeJSON, "json", false, "output the stored entry and analysis as JSON")

	listCmd.Flags().IntVar(&listLast, "last", 0, "show last N entries")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	listCmd.Flags().BoolVar(&listMarkdown, "markdown", false, "render all entries as a markdown document")

	editCmd.Flags().String("morning", "", "morning text")
	editCmd.Flags().String("afternoon", "", "afternoon text")
	editCmd.Flags().String("evening", "", "evening text")
	editCmd.Flags().String("mood", "", "overall mood")
	editCmd.Flags().Int("score", 0, "overall score (1-10)")
	editCmd.Flags().String("summary", "", "daily summary")
	editCmd.Flags().String("date", "", "calendar date (YYYY-MM-DD)")

	deleteCmd.Flags().BoolVar(&deleteStrict, "strict", false, "fail when no entry was deleted")
}

func runWrite(cmd *cobra.Command, args []string) error {
	texts := analysis.DayTexts{Morning: writeMorning, Afternoon: writeAfternoon, Evening: writeEvening}
	if err := promptMissing(cmd.InOrStdin(), cmd.ErrOrStderr(), &texts); err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.svc.Record(cmd.Context(), texts)
	if err != nil {
		return fmt.Errorf("recording entry: %w", err)
	}

	out := cmd.OutOrStdout()
	if writeJSON {
		return encodeJSON(out, rec)
	}

	fmt.Fprint(out, journal.RenderEntry(rec.Entry))
	if rec.Analysis.Degraded() {
		fmt.Fprintln(out, "\n(analysis unavailable; neutral defaults were stored)")
	}
	return nil
}

// promptMissing reads one line per empty part of texts.
func promptMissing(in io.Reader, prompt io.Writer, texts *analysis.DayTexts) error {
	sc := bufio.NewScanner(in)
	fields := []*string{&texts.Morning, &texts.Afternoon, &texts.Evening}

	for i, f := range fields {
		if strings.TrimSpace(*f) != "" {
			continue
		}
		fmt.Fprintf(prompt, "%s: ", journal.Periods[i])
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return fmt.Errorf("reading %s: %w", journal.Periods[i], err)
			}
			return fmt.Errorf("%w: %s entry is required", journal.ErrValidation, journal.Periods[i])
		}
		*f = strings.TrimSpace(sc.Text())
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()

	if listMarkdown {
		md, err := a.svc.Export(cmd.Context())
		if err != nil {
			return fmt.Errorf("exporting journal: %w", err)
		}
		fmt.Fprint(out, md)
		return nil
	}

	entries, err := a.svc.Entries(cmd.Context(), listLast)
	if err != nil {
		return fmt.Errorf("loading journal entries: %w", err)
	}

	if listJSON {
		return encodeJSON(out, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No journal entries found.")
		return nil
	}

	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-10s  %s %2d  %-10s  %s\n",
			e.ID, e.Date, scoreIcon(e.OverallScore), e.OverallScore, e.OverallMood,
			truncate(e.DailySummary, 50))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.svc.Entry(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), journal.RenderEntry(e))
	return nil
}

// patchFromFlags builds a patch from the flags the user actually set.
func patchFromFlags(cmd *cobra.Command) (journal.Patch, error) {
	var p journal.Patch
	flags := cmd.Flags()

	strFlags := []struct {
		name string
		dst  **string
	}{
		{"morning", &p.Morning},
		{"afternoon", &p.Afternoon},
		{"evening", &p.Evening},
		{"mood", &p.OverallMood},
		{"summary", &p.DailySummary},
		{"date", &p.Date},
	}
	for _, f := range strFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return p, err
		}
		*f.dst = &v
	}

	if flags.Changed("score") {
		v, err := flags.GetInt("score")
		if err != nil {
			return p, err
		}
		p.OverallScore = &v
	}

	if p == (journal.Patch{}) {
		return p, fmt.Errorf("%w: nothing to change; pass at least one field flag", journal.ErrValidation)
	}
	return p, nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	p, err := patchFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	e, err := a.svc.Update(cmd.Context(), args[0], p)
	if err != nil {
		return fmt.Errorf("updating entry: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), journal.RenderEntry(e))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.svc.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if !deleted {
		if deleteStrict {
			return fmt.Errorf("entry %s: %w", args[0], journal.ErrNotFound)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "No entry %s; nothing deleted.\n", args[0])
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
