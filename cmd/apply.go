package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"emby-tagger/core/metrics"
	"emby-tagger/core/reconcile"
	"emby-tagger/core/validation"
	"emby-tagger/feature/catalog"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunApply bool
	yesConfirm  bool
)

// applyCmd submits a batch of mapping operations read from a JSON file.
var applyCmd = &cobra.Command{
	Use:   "apply <operations.json>",
	Short: "Apply mapping operations to the local library",
	Long: `Reads a batch of operations and applies each one independently.
The file holds either a JSON array of operations or an object with an
"operations" field, e.g.

  [{"type": "map", "remoteItemId": 12, "localItemId": 3},
   {"type": "create", "remoteItemId": 13}]

Use "-" to read from stdin; this needs --yes or --dry-run since the
confirmation prompt reads stdin too.

Examples:
  # Preview the batch
  apply ops.json --dry-run

  # Apply with auto-confirm (non-interactive)
  apply ops.json --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&dryRunApply, "dry-run", false, "Print the queued operations without applying them")
	applyCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the batch (non-interactive)")
	RootCmd.AddCommand(applyCmd)
}

// errStdinNeedsYes is returned when the batch and the confirmation would
// both have to come from stdin.
var errStdinNeedsYes = errors.New("reading operations from stdin requires --yes or --dry-run")

func runApply(cmd *cobra.Command, args []string) error {
	if err := checkInteractive(args[0]); err != nil {
		return err
	}

	ops, err := readOperationsFile(cmd, args[0])
	if err != nil {
		return err
	}

	a, err := bootstrap(metrics.Nop{}, true)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	ctx := cmd.Context()
	view, err := a.catalog.View(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog view: %w", err)
	}

	decisions := queueOperations(view, ops)
	pending := decisions.Pending()
	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderOperations(view, pending))

	if dryRunApply {
		a.logger.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if !confirmBatch(cmd.InOrStdin(), out, len(pending)) {
		a.logger.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	result := a.catalog.Apply(ctx, pending)
	decisions.Resolve(result)

	a.logger.Info("Batch applied",
		zap.Int("success", len(result.Success)),
		zap.Int("failed", len(result.Failed)),
	)
	for _, f := range result.Failed {
		a.logger.Warn("Operation failed",
			zap.Uint("remote_item_id", f.ID),
			zap.String("state", string(decisions.State(f.ID))),
			zap.String("error", f.Error),
		)
	}
	return writeJSON(cmd, result)
}

// checkInteractive rejects "-" unless no typed confirmation is needed.
func checkInteractive(path string) error {
	if path == "-" && !yesConfirm && !dryRunApply {
		return errStdinNeedsYes
	}
	return nil
}

// readOperationsFile reads and validates the batch at path, or stdin for "-".
func readOperationsFile(cmd *cobra.Command, path string) ([]reconcile.Operation, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open operations file: %w", err)
		}
		defer f.Close()
		r = f
	}

	ops, err := readOperations(r)
	if err != nil {
		return nil, err
	}
	if err := validation.New().Validate(catalog.ApplyRequest{Operations: ops}); err != nil {
		return nil, err
	}
	return ops, nil
}

// readOperations decodes a JSON array of operations or an object with an
// "operations" field.
func readOperations(r io.Reader) ([]reconcile.Operation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read operations: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var ops []reconcile.Operation
		if err := json.Unmarshal(data, &ops); err != nil {
			return nil, fmt.Errorf("failed to decode operations: %w", err)
		}
		return ops, nil
	}

	var req catalog.ApplyRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to decode operations: %w", err)
	}
	return req.Operations, nil
}

// queueOperations registers every item of the view and queues the batch.
// A later operation for the same remote item replaces an earlier one.
func queueOperations(view *catalog.SyncReport, ops []reconcile.Operation) *reconcile.Decisions {
	decisions := reconcile.NewDecisions()
	for _, r := range view.Results {
		decisions.Propose(r.Item.ID)
	}
	for _, op := range ops {
		// A fresh set has no resolved items, so Queue cannot fail here.
		_ = decisions.Queue(op)
	}
	return decisions
}

// renderOperations lists the queued operations with the titles they touch.
func renderOperations(view *catalog.SyncReport, ops []reconcile.Operation) string {
	titles := make(map[uint]string, len(view.Results))
	for _, r := range view.Results {
		titles[r.Item.ID] = r.Item.Title
	}

	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		local := ""
		if op.Type == reconcile.OpMap {
			local = strconv.FormatUint(uint64(op.LocalItemID), 10)
		}
		title, ok := titles[op.RemoteItemID]
		if !ok {
			title = "(not in view)"
		}
		rows = append(rows, []string{
			string(op.Type),
			strconv.FormatUint(uint64(op.RemoteItemID), 10),
			title,
			local,
		})
	}

	return renderTable(
		[]string{"Operation", "Remote", "Title", "Local"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight},
	) + "\n"
}

// confirmBatch prompts the user for confirmation or uses --yes flag.
func confirmBatch(in io.Reader, out io.Writer, count int) bool {
	if yesConfirm {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Fprintf(out, "\n⚠️  Type 'yes' to apply %d operation(s): ", count)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
