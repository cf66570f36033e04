package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeBackend implements the remote key-table API contract for tests:
// GET /data?table=<name> returns the table, POST /data accepts a single
// upsert or a bulk envelope. Tables hold raw maps so snapshots of any shape
// round-trip through it.
type fakeBackend struct {
	mu     sync.Mutex
	tables map[string][]map[string]any

	rejectBulk bool                      // answer bulk writes with an application error
	rejectItem func(map[string]any) bool // answer matching single writes with an application error
	blackhole  bool                      // accept writes but store nothing

	getCalls  int
	bulkCalls int
	itemCalls int

	srv *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{tables: map[string][]map[string]any{}}
	b.srv = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) store() *Store {
	return NewStore(b.srv.URL)
}

func (b *fakeBackend) app() *App {
	return NewApp(b.store())
}

// seed replaces a table's contents with the given typed records.
func (b *fakeBackend) seed(t *testing.T, table string, records ...any) {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tables[table] = nil
	for _, rec := range records {
		b.tables[table] = append(b.tables[table], toRow(t, rec))
	}
}

func (b *fakeBackend) count(table string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tables[table])
}

func (b *fakeBackend) rows(table string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]any(nil), b.tables[table]...)
}

func toRow(t *testing.T, rec any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal seed record: %v", err)
	}
	var row map[string]any
	if err := json.Unmarshal(raw, &row); err != nil {
		t.Fatalf("unmarshal seed record: %v", err)
	}
	return row
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/data" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodGet:
		b.mu.Lock()
		b.getCalls++
		rows := b.tables[r.URL.Query().Get("table")]
		b.mu.Unlock()
		if rows == nil {
			rows = []map[string]any{}
		}
		json.NewEncoder(w).Encode(rows)

	case http.MethodPost:
		var payload struct {
			Table string         `json:"table"`
			Item  map[string]any `json:"item"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			json.NewEncoder(w).Encode(map[string]any{"error": "bad payload"})
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		if isBulk, _ := payload.Item["__bulk"].(bool); isBulk {
			b.bulkCalls++
			if b.rejectBulk {
				json.NewEncoder(w).Encode(map[string]any{"error": "unsupported"})
				return
			}
			if !b.blackhole {
				items, _ := payload.Item["items"].([]any)
				replaced := make([]map[string]any, 0, len(items))
				for _, it := range items {
					if row, ok := it.(map[string]any); ok {
						replaced = append(replaced, row)
					}
				}
				b.tables[payload.Table] = replaced
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true})
			return
		}

		b.itemCalls++
		if b.rejectItem != nil && b.rejectItem(payload.Item) {
			json.NewEncoder(w).Encode(map[string]any{"error": "rejected"})
			return
		}
		if !b.blackhole {
			b.upsert(payload.Table, payload.Item)
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// upsert merges by key the way a managed key-table store would: existing
// fields survive a partial write.
func (b *fakeBackend) upsert(table string, item map[string]any) {
	key := rowKey(item)
	if key != "" {
		for i, row := range b.tables[table] {
			if rowKey(row) == key {
				merged := map[string]any{}
				for k, v := range row {
					merged[k] = v
				}
				for k, v := range item {
					merged[k] = v
				}
				b.tables[table][i] = merged
				return
			}
		}
	}
	b.tables[table] = append(b.tables[table], item)
}

func rowKey(row map[string]any) string {
	if id, ok := row["backup_id"].(string); ok {
		return id
	}
	if id, ok := row["id"].(string); ok {
		return id
	}
	return ""
}
