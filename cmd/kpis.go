package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/datastrike/internal/report"
)

func newKPIsCmd() *cobra.Command {
	var (
		teamID  int64
		asJSON  bool
		withRaw bool
	)
	cmd := &cobra.Command{
		Use:   "kpis <file>",
		Short: "Compute KPIs for a match export",
		Long: "Compute KPIs for an xlsx or csv match export. With --team the events\n" +
			"are joined to the roster and restricted to that club.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := startService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			rep, err := svc.FileKPIs(ctx, args[0], teamID)
			if err != nil {
				return fmt.Errorf("compute kpis: %w", err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if withRaw {
					return writeJSON(out, rep)
				}
				return writeJSON(out, rep.Result)
			}
			report.PrintResult(out, rep.Result)
			return nil
		},
	}
	cmd.Flags().Int64Var(&teamID, "team", 0, "restrict to this club id (0 keeps every event)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	cmd.Flags().BoolVar(&withRaw, "raw", false, "include the projected events in JSON output")
	return cmd
}

func newPeriodsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "periods <file>",
		Short: "Summarize a match export per period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := startService(ctx)
			if err != nil {
				return err
			}
			defer svc.Stop()

			periods, err := svc.FilePeriods(ctx, args[0])
			if err != nil {
				return fmt.Errorf("summarize periods: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), periods)
			}
			report.PrintPeriodSummaries(cmd.OutOrStdout(), periods)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
