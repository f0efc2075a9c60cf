package export_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/export"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func library() *schema.Schema {
	return &schema.Schema{
		Name: "Books",
		Properties: map[string]property.Definition{
			"title": {Name: "Title", Type: property.TypeTitle},
			"tags":  {Name: "Tags", Type: property.TypeMultiSelect, Options: []string{"classic", "sci-fi"}},
			"read":  {Name: "Read", Type: property.TypeCheckbox},
			"date":  {Name: "Published", Type: property.TypeDate},
			"pages": {Name: "Pages", Type: property.TypeNumber},
		},
	}
}

func TestCSV(t *testing.T) {
	entries := []entry.Entry{
		{Data: map[string]any{
			"title": `The "Best" Book, Vol. 1`,
			"tags":  []any{"classic", "sci-fi"},
			"read":  true,
			"date":  "2024-02-29T22:00:00Z",
			"pages": 320.0,
		}},
		{Data: map[string]any{"title": "Empty"}},
	}
	loc := time.FixedZone("UTC+2", 2*60*60)

	got := export.CSV(entries, library(), []string{"title", "tags", "read", "date", "pages", "gone"}, loc)
	want := `"Title","Tags","Read","Published","Pages"` + "\n" +
		`"The ""Best"" Book, Vol. 1","classic; sci-fi","Yes","3/1/2024","320"` + "\n" +
		`"Empty","","No","",""` + "\n"
	assert.Equal(t, want, got)
}

func TestCSVOnlyGivenColumns(t *testing.T) {
	entries := []entry.Entry{{Data: map[string]any{"title": "A", "pages": 12.0}}}

	var buf bytes.Buffer
	require.NoError(t, export.Write(&buf, entries, library(), []string{"pages"}, time.UTC))
	assert.Equal(t, "\"Pages\"\n\"12\"\n", buf.String())

	assert.Equal(t, "\"Title\"\n", export.CSV(nil, library(), []string{"title"}, time.UTC))
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 5, 7, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "Books_2024-05-07.csv", export.Filename("Books", now))
	assert.Equal(t, "Q1_Q2 plans_2024-05-07.csv", export.Filename("Q1/Q2 plans", now))
	assert.Equal(t, "export_2024-05-07.csv", export.Filename("  ", now))
}
