package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importBy string

var importCmd = &cobra.Command{
	Use:   "import <schema-id> <rows.json>",
	Short: "Bulk-create entries from a JSON file",
	Long: `Import reads a JSON array of row objects keyed by property key and
creates one entry per row. Rows are validated independently: invalid rows are
reported and skipped, valid rows are kept.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := readRows(args[1])
		if err != nil {
			return fmt.Errorf("reading rows: %w", err)
		}

		services, closeDB, err := openServices()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer closeDB()

		result, err := services.Entries.BulkCreate(context.Background(), args[0], rows, importBy)
		if err != nil {
			return fmt.Errorf("importing rows: %w", err)
		}
		for _, f := range result.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "row %d: %s\n", f.Index+1, f.Error)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
		if result.Partial() {
			return &exitError{code: 2, err: fmt.Errorf("%d rows were not imported", len(result.Failed))}
		}
		return nil
	},
}

func readRows(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("%s must hold a JSON array of objects: %w", path, err)
	}
	return rows, nil
}

func init() {
	importCmd.Flags().StringVar(&importBy, "as", "", "User ID recorded as the creator")
	rootCmd.AddCommand(importCmd)
}
