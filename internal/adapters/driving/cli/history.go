package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
	historyKeep  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scans",
	Long: `Lists finished scans, most recent first.

Use 'history show <run-id>' for the matched pages of one run and
'history prune --keep N' to drop older entries.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one past scan",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent scans",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs (0 = all)")
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", 10, "number of runs to keep")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

// recordReport is the JSON form of a stored run.
type recordReport struct {
	RunID            string             `json:"run_id"`
	State            domain.RunState    `json:"state"`
	Root             string             `json:"root"`
	Query            string             `json:"query"`
	Mode             domain.Mode        `json:"mode"`
	OutputDirectory  string             `json:"output_directory"`
	DocumentsTotal   int                `json:"documents_total"`
	DocumentsScanned int                `json:"documents_scanned"`
	DocumentsSkipped int                `json:"documents_skipped"`
	TotalMatches     int                `json:"total_matches"`
	FilesProduced    int                `json:"files_produced"`
	OutputPaths      []string           `json:"output_paths"`
	Matches          []domain.PageMatch `json:"matches"`
	StartedAt        time.Time          `json:"started_at"`
	ElapsedMS        int64              `json:"elapsed_ms"`
	Error            string             `json:"error,omitempty"`
}

func newRecordReport(r *domain.ScanRecord) recordReport {
	report := recordReport{
		RunID:            r.ID,
		State:            r.State,
		Root:             r.RootDirectory,
		Query:            r.Query,
		Mode:             r.Mode,
		OutputDirectory:  r.OutputDirectory,
		DocumentsTotal:   r.DocumentsTotal,
		DocumentsScanned: r.DocumentsScanned,
		DocumentsSkipped: r.DocumentsSkipped,
		TotalMatches:     r.TotalMatches,
		FilesProduced:    r.FilesProduced,
		OutputPaths:      r.OutputPaths,
		Matches:          r.Matches,
		StartedAt:        r.StartedAt,
		ElapsedMS:        r.Elapsed.Milliseconds(),
		Error:            r.Error,
	}
	if report.OutputPaths == nil {
		report.OutputPaths = []string{}
	}
	if report.Matches == nil {
		report.Matches = []domain.PageMatch{}
	}
	return report
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history")
	}

	records, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if historyJSON {
		reports := make([]recordReport, len(records))
		for i := range records {
			reports[i] = newRecordReport(&records[i])
		}
		return printJSON(cmd, reports)
	}

	if len(records) == 0 {
		cmd.Println("No scans recorded.")
		return nil
	}

	for i := range records {
		r := &records[i]
		cmd.Printf("%s  %s  %-9s  %-9s  %q in %s: %d page(s), %d file(s)\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.State, r.Mode,
			r.Query, r.RootDirectory, r.TotalMatches, r.FilesProduced)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return notConfigured("history")
	}

	record, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run %s not found", args[0])
		}
		return fmt.Errorf("failed to get run: %w", err)
	}

	if historyJSON {
		return printJSON(cmd, newRecordReport(record))
	}

	cmd.Printf("Run:        %s\n", record.ID)
	cmd.Printf("Started:    %s\n", record.StartedAt.Local().Format(time.RFC3339))
	cmd.Printf("Elapsed:    %s\n", record.Elapsed)
	cmd.Printf("State:      %s\n", record.State)
	if record.Error != "" {
		cmd.Printf("Error:      %s\n", record.Error)
	}
	cmd.Printf("Root:       %s\n", record.RootDirectory)
	cmd.Printf("Query:      %q\n", record.Query)
	cmd.Printf("Mode:       %s\n", record.Mode.Description())
	cmd.Printf("Documents:  %d scanned of %d, %d skipped\n",
		record.DocumentsScanned, record.DocumentsTotal, record.DocumentsSkipped)
	cmd.Printf("Matches:    %d page(s)\n", record.TotalMatches)
	for _, p := range record.OutputPaths {
		cmd.Printf("Output:     %s\n", p)
	}

	if len(record.Matches) > 0 {
		cmd.Println()
		last := ""
		for _, m := range record.Matches {
			if m.DocumentPath != last {
				cmd.Printf("  %s\n", m.DocumentPath)
				last = m.DocumentPath
			}
			// Pages are shown one-based.
			cmd.Printf("    page %d\n", m.PageIndex+1)
		}
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return notConfigured("history")
	}

	removed, err := historyService.Prune(cmd.Context(), historyKeep)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	cmd.Printf("Removed %d run(s).\n", removed)
	return nil
}
