package main

import (
	"context"
	"fmt"

	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type columnDoc struct {
	Key     string        `yaml:"key"`
	Name    string        `yaml:"name"`
	Type    property.Type `yaml:"type"`
	Options []string      `yaml:"options,omitempty"`
	Format  string        `yaml:"format,omitempty"`
	Hidden  bool          `yaml:"hidden,omitempty"`
	Width   int           `yaml:"width,omitempty"`
}

type viewDoc struct {
	Type          string `yaml:"type"`
	Name          string `yaml:"name"`
	CoverProperty string `yaml:"coverProperty,omitempty"`
}

type schemaDoc struct {
	ID          string      `yaml:"id"`
	Workspace   string      `yaml:"workspace"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Columns     []columnDoc `yaml:"columns"`
	Views       []viewDoc   `yaml:"views"`
}

var describeCmd = &cobra.Command{
	Use:   "describe <schema-id>",
	Short: "Print a table's columns and views as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, closeDB, err := openServices()
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer closeDB()

		sc, err := services.Schemas.GetSchema(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("loading table: %w", err)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(describe(sc)); err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return enc.Close()
	},
}

// describe 按显示顺序列出所有列，并带上隐藏和列宽等布局信息
func describe(sc *schema.Schema) schemaDoc {
	layout := schema.LayoutOf(sc)
	hidden := schema.HiddenColumns(sc)
	doc := schemaDoc{
		ID:          sc.ID,
		Workspace:   sc.WorkspaceID,
		Name:        sc.Name,
		Description: sc.Description,
	}
	for _, key := range layout.Order {
		def := sc.Properties[key]
		doc.Columns = append(doc.Columns, columnDoc{
			Key:     key,
			Name:    def.Name,
			Type:    def.Type,
			Options: def.Options,
			Format:  def.Format,
			Hidden:  hidden[key],
			Width:   layout.Widths[key],
		})
	}
	for _, v := range schema.UserViews(sc) {
		doc.Views = append(doc.Views, viewDoc{Type: v.Type, Name: v.Name, CoverProperty: v.CoverProperty})
	}
	return doc
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
