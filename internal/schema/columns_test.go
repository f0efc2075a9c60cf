package schema_test

import (
	"testing"

	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contacts() *schema.Schema {
	return &schema.Schema{
		ID: "s1",
		Properties: map[string]property.Definition{
			"Name":   {Name: "Name", Type: property.TypeTitle},
			"Email":  {Name: "Email", Type: property.TypeEmail},
			"Status": {Name: "Status", Type: property.TypeSelect, Options: []string{"Lead", "Won"}},
		},
		Views: []schema.View{{Type: schema.ViewTable, Name: "Table"}},
	}
}

func TestDeriveDisplayOrder(t *testing.T) {
	sc := contacts()
	assert.Equal(t, []string{"Email", "Name", "Status"}, schema.DeriveDisplayOrder(sc), "unlisted keys sort by key")

	schema.PersistOrder(sc, []string{"Name", "Email", "Status"})
	assert.Equal(t, []string{"Name", "Email", "Status"}, schema.DeriveDisplayOrder(sc))

	// 过期和重复的键被忽略，新键排在最后
	sc.Views = append(sc.Views, schema.View{Type: schema.ViewColumnOrder, Columns: []string{"Status", "Gone", "Status"}})
	assert.Equal(t, []string{"Status", "Email", "Name"}, schema.DeriveDisplayOrder(sc), "last _columnOrder view wins")
}

func TestPersistOrderReplacesWholesale(t *testing.T) {
	sc := contacts()
	schema.PersistOrder(sc, []string{"Name"})
	schema.PersistOrder(sc, []string{"Status", "Name", "Email"})

	var count int
	for _, v := range sc.Views {
		if v.Type == schema.ViewColumnOrder {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"Status", "Name", "Email"}, schema.DeriveDisplayOrder(sc))
	require.Len(t, schema.UserViews(sc), 1)
	assert.Equal(t, "Table", schema.UserViews(sc)[0].Name)
}

func TestHiddenColumnsAndLayout(t *testing.T) {
	sc := contacts()
	schema.PersistOrder(sc, []string{"Name", "Email", "Status"})

	schema.SetColumnHidden(sc, "Email", true)
	schema.SetColumnHidden(sc, "Email", true)
	assert.Equal(t, []string{"Name", "Status"}, schema.DeriveVisibleColumns(sc))
	assert.Equal(t, map[string]bool{"Email": true}, schema.HiddenColumns(sc))

	schema.SetColumnWidth(sc, "Name", 240)
	layout := schema.LayoutOf(sc)
	assert.Equal(t, []string{"Name", "Email", "Status"}, layout.Order)
	assert.Equal(t, []string{"Name", "Status"}, layout.Visible)
	assert.Equal(t, []string{"Email"}, layout.Hidden)
	assert.Equal(t, map[string]int{"Name": 240}, layout.Widths)

	schema.SetColumnHidden(sc, "Email", false)
	assert.Empty(t, schema.HiddenColumns(sc))
	for _, v := range sc.Views {
		assert.NotEqual(t, schema.ViewHiddenColumns, v.Type, "empty hidden set removes the view")
	}
}

func TestMoveColumn(t *testing.T) {
	order := []string{"Name", "Email", "Status"}

	moved, ok := schema.MoveColumn(order, "Status", "Email")
	require.True(t, ok)
	assert.Equal(t, []string{"Name", "Status", "Email"}, moved)
	assert.Equal(t, []string{"Name", "Email", "Status"}, order, "input is not modified")

	moved, ok = schema.MoveColumn(order, "Name", "")
	require.True(t, ok)
	assert.Equal(t, []string{"Email", "Status", "Name"}, moved)

	_, ok = schema.MoveColumn(order, "Nope", "Email")
	assert.False(t, ok)
	_, ok = schema.MoveColumn(order, "Name", "Nope")
	assert.False(t, ok)
}

func TestInsertAfter(t *testing.T) {
	order := []string{"Name", "Email"}
	assert.Equal(t, []string{"Name", "New", "Email"}, schema.InsertAfter(order, "New", "Name"))
	assert.Equal(t, []string{"Name", "Email", "New"}, schema.InsertAfter(order, "New", ""))
	assert.Equal(t, []string{"Name", "Email", "New"}, schema.InsertAfter(order, "New", "Missing"))
}
