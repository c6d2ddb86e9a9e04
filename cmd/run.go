package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sales-lead/leadgen-cli/internal/model"
	"github.com/sales-lead/leadgen-cli/internal/pipeline"
)

var (
	runRowIndex int
	runCompany  string
	runLimit    int
	runForce    bool
	runDryRun   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Enrich prospect rows",
	Long:  "Processes prospect rows through search, official site selection, crawl, contact extraction, and the LLM report. Without --row or --company, all eligible rows are processed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx, runDryRun)
		if err != nil {
			return err
		}
		defer env.Close()

		switch {
		case runRowIndex > 0:
			return runSingleRow(ctx, env, runRowIndex)
		case runCompany != "":
			return runByCompany(ctx, env, runCompany)
		default:
			outcomes, err := env.Processor.ProcessAll(ctx, runForce, runLimit)
			if err != nil {
				return err
			}
			printOutcomes(outcomes)
			return nil
		}
	},
}

func runSingleRow(ctx context.Context, env *appEnv, rowIndex int) error {
	row, err := findRow(ctx, env, func(r model.CompanyRow) bool {
		return r.RowIndex == rowIndex
	})
	if err != nil {
		return eris.Wrapf(err, "row %d not found", rowIndex)
	}
	if row.LockManualOverride && !runForce {
		return eris.Errorf("row %d is locked for manual override (use --force)", rowIndex)
	}
	outcome, err := env.Processor.ProcessRow(ctx, *row)
	if err != nil {
		return err
	}
	printOutcomes([]pipeline.Outcome{*outcome})
	return nil
}

func runByCompany(ctx context.Context, env *appEnv, company string) error {
	row, err := findRow(ctx, env, func(r model.CompanyRow) bool {
		return r.CompanyName == company
	})
	if err != nil {
		return eris.Wrapf(err, "company %q not found", company)
	}
	if row.LockManualOverride && !runForce {
		return eris.Errorf("row for %q is locked for manual override (use --force)", company)
	}
	outcome, err := env.Processor.ProcessRow(ctx, *row)
	if err != nil {
		return err
	}
	printOutcomes([]pipeline.Outcome{*outcome})
	return nil
}

func findRow(ctx context.Context, env *appEnv, match func(model.CompanyRow) bool) (*model.CompanyRow, error) {
	rows, err := env.Store.FetchRows(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if match(row) {
			return &row, nil
		}
	}
	return nil, eris.New("no matching row")
}

func printOutcomes(outcomes []pipeline.Outcome) {
	for _, outcome := range outcomes {
		fmt.Printf("row %d %s: status=%s\n",
			outcome.Row.RowIndex, outcome.Row.CompanyName, outcome.Updates["status"])
		if detail := outcome.Updates["error_detail"]; detail != "" {
			fmt.Printf("  error_detail: %s\n", detail)
		}
	}
}

func init() {
	runCmd.Flags().IntVar(&runRowIndex, "row", 0, "process a single row by index (data rows start at 1)")
	runCmd.Flags().StringVar(&runCompany, "company", "", "process a single row by company name")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "cap the number of rows processed (0 = no cap)")
	runCmd.Flags().BoolVar(&runForce, "force", false, "reprocess rows regardless of status")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "report results without writing to the store")
	rootCmd.AddCommand(runCmd)
}
