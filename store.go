package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Store talks to the remote key-table API. It is the only thing in the
// application that touches the network; everything else goes through it.
type Store struct {
	BaseURL string
	Client  *http.Client
}

func InitStore() (*Store, error) {
	err := godotenv.Load() // Load .env file if present
	if err != nil {
		log.Println("No .env file found or error loading .env:", err)
	}

	base := os.Getenv("KPM_API_BASE_URL")
	if base == "" {
		return nil, fmt.Errorf("missing required environment variable KPM_API_BASE_URL")
	}

	log.Println("✅ Remote store configured:", base)
	return NewStore(base), nil
}

func NewStore(baseURL string) *Store {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Store{BaseURL: baseURL, Client: &http.Client{}}
}

// StoreResponse is whatever JSON the remote store answers a write with.
// An "error" field signals an application-level failure, distinct from a
// transport failure.
type StoreResponse map[string]any

func (r StoreResponse) Err() string {
	if r == nil {
		return ""
	}
	if msg, ok := r["error"].(string); ok {
		return msg
	}
	return ""
}

type savePayload struct {
	Table string `json:"table"`
	Item  any    `json:"item"`
}

// BulkEnvelope asks the store to accept a whole table at once. The backend
// may or may not support it; callers find out from the response.
type BulkEnvelope struct {
	Bulk  bool  `json:"__bulk"`
	Items []any `json:"items"`
}

// FetchTable reads every item of a table. It never fails upward: transport
// and decode errors are logged and come back as an empty table. A single
// object or an {items: [...]} wrapper is normalized to a plain list.
func (s *Store) FetchTable(table string) []json.RawMessage {
	endpoint := s.BaseURL + "data?table=" + url.QueryEscape(table)
	resp, err := s.Client.Get(endpoint)
	if err != nil {
		log.Printf("❌ fetchTable(%s) error: %v", table, err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("❌ fetchTable(%s) read error: %v", table, err)
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("❌ fetchTable(%s) status %d", table, resp.StatusCode)
		return nil
	}

	return normalizeRows(table, body)
}

func normalizeRows(table string, body []byte) []json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err == nil {
		return rows
	}

	var wrapper struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		log.Printf("❌ fetchTable(%s) decode error: %v", table, err)
		return nil
	}
	if wrapper.Items != nil {
		return wrapper.Items
	}
	// Single object, treat as a one-element table
	return []json.RawMessage{json.RawMessage(trimmed)}
}

// SaveData writes one item (or a bulk envelope) to a table. A transport
// failure returns an error; an application-level failure comes back inside
// the response for the caller to inspect.
func (s *Store) SaveData(table string, item any) (StoreResponse, error) {
	body, err := json.Marshal(savePayload{Table: table, Item: item})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload for %s: %w", table, err)
	}

	resp, err := s.Client.Post(s.BaseURL+"data", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("saveData(%s): %w", table, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("saveData(%s) read: %w", table, err)
	}

	var out StoreResponse
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("saveData(%s) decode: %w", table, err)
		}
	}
	return out, nil
}
