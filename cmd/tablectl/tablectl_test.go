package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/query"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBuildQuery(t *testing.T) {
	q, err := buildQuery([]string{"Name:contains:acme", "Due:greater_than:2024-01-01T10:00", "Notes:is_empty"}, "Due", true)
	require.NoError(t, err)
	require.Len(t, q.Filters, 3)
	assert.Equal(t, query.Filter{Property: "Name", Operator: query.Contains, Value: "acme"}, q.Filters[0])
	assert.Equal(t, "2024-01-01T10:00", q.Filters[1].Value, "value keeps its colons")
	assert.Nil(t, q.Filters[2].Value)
	assert.Equal(t, &query.Sort{Column: "Due", Direction: query.Desc}, q.Sort)

	_, err = buildQuery([]string{"Name"}, "", false)
	assert.Error(t, err)
	_, err = buildQuery([]string{"Name:like:x"}, "", false)
	assert.Error(t, err)
}

func sampleSchema() *schema.Schema {
	sc := &schema.Schema{
		ID:          "s1",
		WorkspaceID: "w1",
		Name:        "Contacts",
		Properties: map[string]property.Definition{
			"Name":  {Name: "Name", Type: property.TypeTitle},
			"Notes": {Name: "Notes", Type: property.TypeText},
			"VIP":   {Name: "VIP", Type: property.TypeCheckbox},
		},
		Views: []schema.View{{Type: schema.ViewTable, Name: "All"}},
	}
	schema.PersistOrder(sc, []string{"Name", "Notes", "VIP"})
	schema.SetColumnHidden(sc, "Notes", true)
	schema.SetColumnWidth(sc, "Name", 80)
	return sc
}

func TestRenderTableHonoursLayout(t *testing.T) {
	rows := []entry.Entry{{Data: map[string]any{"Name": "A very long company name", "Notes": "secret", "VIP": true}}}
	out := renderTable(sampleSchema(), rows, time.UTC)

	assert.Contains(t, out, "Contacts")
	assert.Contains(t, out, "A very lo…")
	assert.Contains(t, out, "Yes")
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "1 rows")
}

func TestCellWidthAndTruncate(t *testing.T) {
	assert.Equal(t, defaultCellWidth, cellWidth(0))
	assert.Equal(t, minCellWidth, cellWidth(10))
	assert.Equal(t, maxCellWidth, cellWidth(10000))
	assert.Equal(t, 25, cellWidth(200))

	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestDescribe(t *testing.T) {
	out, err := yaml.Marshal(describe(sampleSchema()))
	require.NoError(t, err)
	text := string(out)

	assert.True(t, strings.Index(text, "key: Name") < strings.Index(text, "key: Notes"))
	assert.Contains(t, text, "hidden: true")
	assert.Contains(t, text, "width: 80")
	assert.Contains(t, text, "name: All")
	assert.NotContains(t, text, "_columnOrder")
}

func TestReadRows(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "rows.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"Name":"A","Price":3},{"Name":"B"}]`), 0o644))

	rows, err := readRows(good)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, float64(3), rows[0]["Price"])

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"Name":"A"}`), 0o644))
	_, err = readRows(bad)
	assert.Error(t, err)
}
