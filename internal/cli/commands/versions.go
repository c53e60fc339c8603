package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vellum-engine/vellum/internal/cli/ui"
	"github.com/vellum-engine/vellum/internal/versionstore"
)

// newVersionsCommand creates the versions command group
func newVersionsCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Record and check structural versions",
		Long: `Record and check the structural versions of the registered types.

The ledger backend comes from versions.backend in vellum.yaml (redis,
sqlite or postgres; sqlite at vellum.db by default). Run 'record' from a
known-good build and 'check' from a candidate build to find types whose
shape changed. The memory backend keeps nothing between runs and is
refused here.`,
		Example: `  # Record the current versions in the configured ledger
  vellum versions record

  # Fail if any recorded type changed shape
  vellum versions check`,
	}

	cmd.AddCommand(newVersionsRecordCommand(e))
	cmd.AddCommand(newVersionsCheckCommand(e))
	return cmd
}

func newVersionsRecordCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Write the current structural versions to the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.openLedger(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := versionstore.Commit(cmd.Context(), store, e.reg, time.Now().UTC())
			if err != nil {
				return err
			}
			e.logger.Info("recorded structural versions")

			if e.json() {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"backend":  e.cfg.Versions.Backend,
					"recorded": n,
				})
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Recorded %d versions (%s)", n, e.cfg.Versions.Backend), e.colorless())
			return nil
		},
	}
}

func newVersionsCheckCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Compare the registry against the ledger",
		Long: `Compare the registry against the ledger.

Added and removed types are reported but do not fail the check; a type
whose structural version changed does.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := e.openLedger(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			drifts, err := versionstore.Check(cmd.Context(), store, e.reg, e.logger)
			if err != nil {
				return err
			}

			changed := 0
			for _, d := range drifts {
				if d.Changed() {
					changed++
				}
			}

			out := cmd.OutOrStdout()
			if e.json() {
				if drifts == nil {
					drifts = []versionstore.Drift{}
				}
				if err := writeJSON(out, drifts); err != nil {
					return err
				}
			} else if len(drifts) == 0 {
				ui.WriteSuccess(out, "No drift", e.colorless())
			} else {
				table := ui.NewTable(out, e.colorless(), "Name", "Kind", "Status", "Recorded", "Current")
				for _, d := range drifts {
					table.AddRow(ui.ShortName(d.Name), d.Kind, string(d.Status), dash(d.Recorded), dash(d.Current))
				}
				table.Render()
			}

			if changed > 0 {
				fmt.Fprint(cmd.ErrOrStderr(), ui.DriftError(changed, e.colorless()))
				return reportedError{fmt.Errorf("%d type(s) drifted", changed)}
			}
			return nil
		},
	}
}

// openLedger opens the configured ledger. The memory backend is rejected
// because record and check run in separate processes.
func (e *env) openLedger(cmd *cobra.Command) (versionstore.Store, error) {
	if e.cfg.Versions.Backend == versionstore.BackendMemory {
		return nil, fmt.Errorf("versions.backend %q does not persist between runs; use sqlite, postgres or redis", versionstore.BackendMemory)
	}
	store, err := versionstore.Open(cmd.Context(), e.cfg.Store())
	if err != nil {
		return nil, fmt.Errorf("failed to open version ledger: %w", err)
	}
	return store, nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
