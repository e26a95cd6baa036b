package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/connectors/filesystem"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// scanFlags are shared by scan and watch.
type scanFlags struct {
	mode      string
	output    string
	extractor string
	json      bool
	quiet     bool
}

var scanOpts scanFlags

var scanCmd = &cobra.Command{
	Use:   "scan <root> <query>",
	Short: "Scan a directory for PDFs containing text",
	Long: `Scans every PDF below root, including PDFs inside ZIP archives, for pages
containing query. Matching is case-insensitive.

Modes:
  pages      - write one PDF holding only the matching pages (default)
  documents  - copy every matching document into a results folder

Results are written to --output, the output.directory setting, or
<root>/results, in that order. Press Ctrl+C to cancel; a cancelled scan
writes nothing.`,
	Args: cobra.ExactArgs(2),
	RunE: runScan,
}

func init() {
	addScanFlags(scanCmd, &scanOpts)
	rootCmd.AddCommand(scanCmd)
}

func addScanFlags(cmd *cobra.Command, f *scanFlags) {
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "output mode: pages or documents (default from settings)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&f.extractor, "extractor", "", "text extraction backend: tabula or ledongthuc")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the result as JSON")
	cmd.Flags().BoolVarP(&f.quiet, "quiet", "q", false, "only print warnings and the summary")
}

// buildRequest turns arguments and flags into a scan request.
func buildRequest(args []string, f *scanFlags) (domain.ScanRequest, error) {
	req := domain.ScanRequest{
		RootDirectory:   filesystem.ResolvePath(args[0]),
		Query:           args[1],
		OutputDirectory: f.output,
	}
	if f.mode != "" {
		mode, err := domain.ParseMode(f.mode)
		if err != nil {
			return req, fmt.Errorf("%w: use pages or documents", err)
		}
		req.Mode = mode
	}
	if f.extractor != "" {
		backend := domain.ExtractorBackend(f.extractor)
		if !backend.IsValid() {
			return req, fmt.Errorf("%w: extractor %q", domain.ErrUnsupportedType, f.extractor)
		}
		req.Extractor = backend
	}
	return req, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanService == nil {
		return notConfigured("scan")
	}

	req, err := buildRequest(args, &scanOpts)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var sink domain.EventSink
	if !scanOpts.json {
		printer := newProgressPrinter(cmd.ErrOrStderr())
		printer.quietLog = scanOpts.quiet
		sink = printer.Handle
	}

	result, err := scanService.Scan(ctx, req, sink)
	if result != nil {
		if scanOpts.json {
			if jerr := printJSON(cmd, newRunReport(result)); jerr != nil {
				return jerr
			}
		} else {
			printSummary(cmd, result)
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrCancelled) {
			return errors.New("scan cancelled, no output written")
		}
		return fmt.Errorf("scan failed: %w", err)
	}
	return nil
}

// runReport is the JSON form of a finished run.
type runReport struct {
	RunID            string          `json:"run_id"`
	State            domain.RunState `json:"state"`
	Root             string          `json:"root"`
	Query            string          `json:"query"`
	Mode             domain.Mode     `json:"mode"`
	OutputDirectory  string          `json:"output_directory"`
	DocumentsTotal   int             `json:"documents_total"`
	DocumentsScanned int             `json:"documents_scanned"`
	DocumentsSkipped int             `json:"documents_skipped"`
	TotalMatches     int             `json:"total_matches"`
	FilesProduced    int             `json:"files_produced"`
	PagesSkipped     int             `json:"pages_skipped,omitempty"`
	OutputPaths      []string        `json:"output_paths"`
	Matches          []reportMatch   `json:"matches"`
	StartedAt        time.Time       `json:"started_at"`
	ElapsedMS        int64           `json:"elapsed_ms"`
	Error            string          `json:"error,omitempty"`
}

// reportMatch is one matching document of a run report.
// Archive members are named archive.zip!/entry.pdf.
type reportMatch struct {
	Document string `json:"document"`
	Archive  string `json:"archive,omitempty"`
	Entry    string `json:"entry,omitempty"`
	Pages    []int  `json:"pages"`
}

func newRunReport(r *domain.ScanResult) runReport {
	report := runReport{
		RunID:            r.RunID,
		State:            r.State,
		Root:             r.Request.RootDirectory,
		Query:            r.Request.Query,
		Mode:             r.Request.Mode,
		OutputDirectory:  r.Request.OutputDirectory,
		DocumentsTotal:   r.DocumentsTotal,
		DocumentsScanned: r.DocumentsScanned,
		DocumentsSkipped: r.DocumentsSkipped,
		TotalMatches:     r.TotalMatches,
		FilesProduced:    r.FilesProduced,
		PagesSkipped:     r.PagesSkipped,
		OutputPaths:      r.OutputPaths,
		Matches:          []reportMatch{},
		StartedAt:        r.StartedAt,
		ElapsedMS:        r.Elapsed.Milliseconds(),
	}
	if report.OutputPaths == nil {
		report.OutputPaths = []string{}
	}
	for _, d := range r.Matches.Documents() {
		report.Matches = append(report.Matches, reportMatch{
			Document: d.Document.DisplayName(),
			Archive:  d.Document.ArchivePath,
			Entry:    d.Document.EntryName,
			Pages:    append([]int{}, d.Pages...),
		})
	}
	if r.Err != nil {
		report.Error = r.Err.Error()
	}
	return report
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printCompactJSON(cmd *cobra.Command, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printSummary(cmd *cobra.Command, r *domain.ScanResult) {
	cmd.Printf("Scanned %d of %d document(s)", r.DocumentsScanned, r.DocumentsTotal)
	if r.DocumentsSkipped > 0 {
		cmd.Printf(", %d skipped", r.DocumentsSkipped)
	}
	cmd.Printf(" in %s\n", r.Elapsed.Round(time.Millisecond))

	switch r.State {
	case domain.RunStateCancelled:
		cmd.Println("Scan cancelled.")
		return
	case domain.RunStateFailed:
		if r.Err != nil {
			cmd.Printf("Scan failed: %v\n", r.Err)
		}
		return
	}

	documents := 0
	if r.Matches != nil {
		documents = r.Matches.Len()
	}
	if r.TotalMatches == 0 {
		cmd.Println("No matches found.")
		return
	}
	cmd.Printf("Found %d matching page(s) in %d document(s)\n", r.TotalMatches, documents)

	switch r.Request.Mode {
	case domain.ModeWholeDocuments:
		cmd.Printf("Copied %d document(s)\n", r.FilesProduced)
	default:
		if r.PagesSkipped > 0 {
			cmd.Printf("%d page(s) could not be copied\n", r.PagesSkipped)
		}
	}
	for _, p := range r.OutputPaths {
		cmd.Printf("Output: %s\n", p)
	}
}
