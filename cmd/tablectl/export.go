package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BunnySweety/kollab-sub001/internal/query"
	"github.com/BunnySweety/kollab-sub001/internal/table"
	"github.com/spf13/cobra"
)

var (
	exportFilters    []string
	exportSort       string
	exportDesc       bool
	exportAllColumns bool
	exportOut        string
)

var exportCmd = &cobra.Command{
	Use:   "export <schema-id>",
	Short: "Export a table as CSV",
	Long: `Export writes the filtered and sorted rows of a table as CSV.
Only visible columns are written unless --all-columns is given.
Without --out the file is named <table-name>_<date>.csv in the current directory;
use --out - to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := buildQuery(exportFilters, exportSort, exportDesc)
		if err != nil {
			return fmt.Errorf("invalid query: %w", err)
		}

		services, closeDB, err := openServices()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer closeDB()

		var buf bytes.Buffer
		name, err := services.Tables.Export(context.Background(), args[0], table.ExportOptions{
			Query:      q,
			AllColumns: exportAllColumns,
		}, &buf)
		if err != nil {
			return fmt.Errorf("exporting table: %w", err)
		}

		if exportOut == "-" {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		path := exportOut
		if path == "" {
			path = name
		} else if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, name)
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
		return nil
	},
}

// buildQuery 把可重复的 "property:operator:value" 参数转换为查询。
// value 本身可以包含冒号；is_empty / is_not_empty 不需要 value。
func buildQuery(filters []string, sortColumn string, desc bool) (query.Query, error) {
	var q query.Query
	for _, raw := range filters {
		parts := strings.SplitN(raw, ":", 3)
		if len(parts) < 2 || parts[0] == "" {
			return q, fmt.Errorf("filter %q must look like property:operator[:value]", raw)
		}
		f := query.Filter{Property: parts[0], Operator: query.Operator(parts[1])}
		if !f.Operator.Valid() {
			return q, fmt.Errorf("unknown operator %q", parts[1])
		}
		if len(parts) == 3 {
			f.Value = parts[2]
		}
		q.Filters = append(q.Filters, f)
	}
	if sortColumn != "" {
		dir := query.Asc
		if desc {
			dir = query.Desc
		}
		q.Sort = &query.Sort{Column: sortColumn, Direction: dir}
	}
	return q, nil
}

func init() {
	exportCmd.Flags().StringArrayVarP(&exportFilters, "filter", "f", nil, "Filter as property:operator:value (repeatable, combined with AND)")
	exportCmd.Flags().StringVarP(&exportSort, "sort", "s", "", "Column to sort by")
	exportCmd.Flags().BoolVar(&exportDesc, "desc", false, "Sort descending")
	exportCmd.Flags().BoolVar(&exportAllColumns, "all-columns", false, "Include hidden columns")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file or directory (- for stdout)")
	rootCmd.AddCommand(exportCmd)
}
