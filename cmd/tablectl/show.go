package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/export"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const (
	defaultCellWidth = 16
	minCellWidth     = 4
	maxCellWidth     = 40
	// 存储的列宽是 Web 端的像素值
	pixelsPerChar = 8
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#1E1E2E", Dark: "#CDD6F4"})
	cellStyle  = lipgloss.NewStyle()
	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})
	tableStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

var (
	showFilters []string
	showSort    string
	showDesc    bool
)

var showCmd = &cobra.Command{
	Use:   "show <schema-id>",
	Short: "Print a table in the terminal",
	Long:  "Show renders the visible columns of a table, honouring stored column widths.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := buildQuery(showFilters, showSort, showDesc)
		if err != nil {
			return fmt.Errorf("invalid query: %w", err)
		}
		services, closeDB, err := openServices()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer closeDB()

		ctx := context.Background()
		sc, err := services.Schemas.GetSchema(ctx, args[0])
		if err != nil {
			return fmt.Errorf("loading table: %w", err)
		}
		rows, err := services.Tables.Query(ctx, args[0], q)
		if err != nil {
			return fmt.Errorf("querying table: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(sc, rows, time.Local))
		return nil
	},
}

// renderTable 绘制 sc 的可见列。列宽来自 _columnWidths 元数据，由像素换算为字符数。
func renderTable(sc *schema.Schema, rows []entry.Entry, loc *time.Location) string {
	keys := schema.DeriveVisibleColumns(sc)
	stored := schema.ColumnWidths(sc)
	widths := make([]int, len(keys))
	for i, key := range keys {
		widths[i] = cellWidth(stored[key])
	}

	lines := make([]string, 0, len(rows)+2)
	header := make([]string, len(keys))
	rule := make([]string, len(keys))
	for i, key := range keys {
		header[i] = headerStyle.Width(widths[i]).Render(truncate(sc.Properties[key].Name, widths[i]))
		rule[i] = mutedStyle.Render(strings.Repeat("─", widths[i]))
	}
	lines = append(lines, strings.Join(header, " "), strings.Join(rule, " "))

	for _, e := range rows {
		cells := make([]string, len(keys))
		for i, key := range keys {
			text := export.Cell(sc.Properties[key], e.Value(key), loc)
			cells[i] = cellStyle.Width(widths[i]).Render(truncate(text, widths[i]))
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	footer := mutedStyle.Render(fmt.Sprintf("%d rows", len(rows)))
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(sc.Name),
		tableStyle.Render(strings.Join(lines, "\n")),
		footer,
	)
}

func cellWidth(px int) int {
	if px <= 0 {
		return defaultCellWidth
	}
	w := px / pixelsPerChar
	switch {
	case w < minCellWidth:
		return minCellWidth
	case w > maxCellWidth:
		return maxCellWidth
	}
	return w
}

// truncate 把 s 截断到最多 width 个终端字符宽度，截断处以 "…" 标记。
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func init() {
	showCmd.Flags().StringArrayVarP(&showFilters, "filter", "f", nil, "Filter as property:operator:value (repeatable)")
	showCmd.Flags().StringVarP(&showSort, "sort", "s", "", "Column to sort by")
	showCmd.Flags().BoolVar(&showDesc, "desc", false, "Sort descending")
	rootCmd.AddCommand(showCmd)
}
