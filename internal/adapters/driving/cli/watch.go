package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

var watchOpts scanFlags

var watchCmd = &cobra.Command{
	Use:   "watch <root> <query>",
	Short: "Rescan a directory whenever its PDFs change",
	Long: `Runs a scan, then keeps watching root and rescans whenever a PDF or ZIP
archive below it is created, changed or removed.

Rescans are at most one per watch.cooldown (see 'pdfsift settings').
Changes inside the output directory are ignored. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	addScanFlags(watchCmd, &watchOpts)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchService == nil {
		return notConfigured("watch")
	}

	req, err := buildRequest(args, &watchOpts)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	var sink domain.EventSink
	if !watchOpts.json {
		printer := newProgressPrinter(cmd.ErrOrStderr())
		printer.quietLog = watchOpts.quiet
		sink = printer.Handle
		cmd.PrintErrf("Watching %s (Ctrl+C to stop)\n", req.RootDirectory)
	}

	onResult := func(r *domain.ScanResult) {
		if watchOpts.json {
			// One JSON document per line.
			if err := printCompactJSON(cmd, newRunReport(r)); err != nil {
				cmd.PrintErrf("error: %v\n", err)
			}
			return
		}
		printSummary(cmd, r)
		cmd.Println()
	}

	if err := watchService.Watch(ctx, req, sink, onResult); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
