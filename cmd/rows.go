package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "List prospect rows and their statuses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		rows, err := st.FetchRows(ctx)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("no rows")
			return nil
		}
		for _, row := range rows {
			status := string(row.Status)
			if status == "" {
				status = "-"
			}
			lock := ""
			if row.LockManualOverride {
				lock = " [locked]"
			}
			fmt.Printf("%4d  %-12s %s%s\n", row.RowIndex, status, row.CompanyName, lock)
			if row.WebsiteURL != "" {
				fmt.Printf("      %s\n", row.WebsiteURL)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rowsCmd)
}
