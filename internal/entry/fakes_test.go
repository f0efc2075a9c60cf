package entry_test

import (
	"context"
	"sort"
	"sync"

	"github.com/BunnySweety/kollab-sub001/internal/entry"
	"github.com/BunnySweety/kollab-sub001/internal/platform/apperr"
	"github.com/BunnySweety/kollab-sub001/internal/property"
	"github.com/BunnySweety/kollab-sub001/internal/schema"
)

type memRepo struct {
	mu    sync.Mutex
	rows  map[string]*entry.Entry
	saves int
}

func newMemRepo() *memRepo {
	return &memRepo{rows: make(map[string]*entry.Entry)}
}

func (r *memRepo) Create(_ context.Context, e *entry.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[e.ID] = e.Clone()
	return nil
}

func (r *memRepo) Get(_ context.Context, id string) (*entry.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.rows[id]
	if !ok {
		return nil, apperr.NotFound("entry", id)
	}
	return e.Clone(), nil
}

func (r *memRepo) ListBySchema(_ context.Context, schemaID string) ([]entry.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entry.Entry
	for _, e := range r.rows {
		if e.SchemaID == schemaID {
			out = append(out, *e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *memRepo) Save(_ context.Context, e *entry.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if _, ok := r.rows[e.ID]; !ok {
		return apperr.NotFound("entry", e.ID)
	}
	r.rows[e.ID] = e.Clone()
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return apperr.NotFound("entry", id)
	}
	delete(r.rows, id)
	return nil
}

func (r *memRepo) DeleteBySchema(_ context.Context, schemaID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.rows {
		if e.SchemaID == schemaID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *memRepo) NextOrder(_ context.Context, schemaID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for _, e := range r.rows {
		if e.SchemaID == schemaID && e.Order > max {
			max = e.Order
		}
	}
	return max + 1, nil
}

type staticSchemas map[string]*schema.Schema

func (s staticSchemas) GetSchema(_ context.Context, id string) (*schema.Schema, error) {
	sc, ok := s[id]
	if !ok {
		return nil, apperr.NotFound("schema", id)
	}
	return sc, nil
}

// companies 是测试用的 schema：Name(title) / Email / Price / Active / Tags
func companies() *schema.Schema {
	sc := &schema.Schema{
		ID:          "s1",
		WorkspaceID: "w1",
		Name:        "Companies",
		Properties: map[string]property.Definition{
			"Name":   {Name: "Name", Type: property.TypeTitle},
			"Email":  {Name: "Email", Type: property.TypeEmail},
			"Price":  {Name: "Price", Type: property.TypeNumber},
			"Active": {Name: "Active", Type: property.TypeCheckbox},
			"Tags":   {Name: "Tags", Type: property.TypeMultiSelect, Options: []string{"a", "b"}},
		},
		Views: []schema.View{{Type: schema.ViewTable, Name: "Table"}},
	}
	schema.PersistOrder(sc, []string{"Name", "Email", "Price", "Active", "Tags"})
	return sc
}

func newService(opts entry.Options) (*entry.Service, *memRepo) {
	repo := newMemRepo()
	sc := companies()
	return entry.NewService(repo, staticSchemas{sc.ID: sc}, opts), repo
}
