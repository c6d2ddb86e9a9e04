package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <company name>",
	Short: "Append a pending prospect row",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		name := strings.Join(args, " ")
		rowIndex, err := st.AddRow(ctx, name)
		if err != nil {
			return err
		}
		fmt.Printf("added row %d: %s\n", rowIndex, name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
