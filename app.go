package main

import (
	"encoding/json"
	"log"
	"strings"
	"sync"
)

// App holds the in-memory copy of every table plus the store client. The
// remote store is the system of record; these collections are a cache that
// is rebuilt from it after every write and on every full reload.
type App struct {
	Store *Store

	mu         sync.RWMutex
	users      []User
	payments   []Payment
	customers  []Master
	suppliers  []Master
	backups    []Backup
	lastBackup *Backup
}

func NewApp(store *Store) *App {
	return &App{Store: store}
}

// SaveReport tells the caller how a full-table save actually went. The
// operation itself never fails upward; dropped items only show up here and
// in the logs.
type SaveReport struct {
	Table     string `json:"table"`
	Bulk      bool   `json:"bulk"` // true when the bulk envelope was accepted
	Attempted int    `json:"attempted"`
	Failed    int    `json:"failed"`
}

// SaveFullTable persists a full replacement of a table. One bulk attempt; if
// the store rejects it (or the transport fails) every item is written
// individually, in order, with per-item failures logged and skipped. Either
// way the table is re-read afterwards so the cache reflects what the backend
// actually accepted, not what we meant to send.
func (a *App) SaveFullTable(table string, items []any) SaveReport {
	report := SaveReport{Table: table, Attempted: len(items)}

	resp, err := a.Store.SaveData(table, BulkEnvelope{Bulk: true, Items: items})
	if err == nil && resp.Err() == "" {
		report.Bulk = true
	} else {
		if err != nil {
			log.Printf("⚠️ Bulk save failed for %s, fallback to per-item: %v", table, err)
		} else {
			log.Printf("⚠️ Bulk save rejected for %s, fallback to per-item: %s", table, resp.Err())
		}
		for _, item := range items {
			resp, err := a.Store.SaveData(table, item)
			if err != nil {
				report.Failed++
				log.Printf("❌ Failed saving item to %s: %v", table, err)
				continue
			}
			if msg := resp.Err(); msg != "" {
				report.Failed++
				log.Printf("❌ Store rejected item for %s: %s", table, msg)
			}
		}
	}

	a.RefreshTable(table)
	return report
}

// RefreshTable re-reads one table and installs it in the cache.
func (a *App) RefreshTable(table string) {
	rows := a.Store.FetchTable(table)

	switch table {
	case TableUsers:
		// An empty read never wipes the users we already have; losing every
		// account would lock everyone out of the session gate.
		if users := decodeRows[User](rows); len(users) > 0 {
			a.mu.Lock()
			a.users = users
			a.mu.Unlock()
		}
	case TablePayments:
		payments := decodeRows[Payment](rows)
		sortPayments(payments)
		a.mu.Lock()
		a.payments = payments
		a.mu.Unlock()
	case TableCustomers:
		a.mu.Lock()
		a.customers = decodeRows[Master](rows)
		a.mu.Unlock()
	case TableSuppliers:
		a.mu.Lock()
		a.suppliers = decodeRows[Master](rows)
		a.mu.Unlock()
	case TableBackups:
		backups := decodeRows[Backup](rows)
		sortBackups(backups)
		a.mu.Lock()
		a.backups = backups
		a.lastBackup = nil
		if len(backups) > 0 {
			a.lastBackup = &backups[0]
		}
		a.mu.Unlock()
	default:
		log.Printf("⚠️ refreshTable: unknown table %q", table)
	}
}

// InitialLoad discards the cache and rebuilds it from the remote store. An
// empty users table is seeded with the default admin accounts, locally and
// on the backend, so the first run of a fresh deployment can log in.
func (a *App) InitialLoad() {
	log.Println("⏳ Loading tables from remote store...")

	users := decodeRows[User](a.Store.FetchTable(TableUsers))
	payments := decodeRows[Payment](a.Store.FetchTable(TablePayments))
	customers := decodeRows[Master](a.Store.FetchTable(TableCustomers))
	suppliers := decodeRows[Master](a.Store.FetchTable(TableSuppliers))
	backups := decodeRows[Backup](a.Store.FetchTable(TableBackups))

	sortPayments(payments)
	sortBackups(backups)

	a.mu.Lock()
	a.payments = payments
	a.customers = customers
	a.suppliers = suppliers
	a.backups = backups
	a.lastBackup = nil
	if len(backups) > 0 {
		a.lastBackup = &backups[0]
	}
	if len(users) > 0 {
		a.users = users
	} else {
		// Seed locally first so login works even if the write below fails.
		a.users = append([]User(nil), DefaultAdmins...)
	}
	a.mu.Unlock()

	if len(users) == 0 {
		log.Println("⚠️ No users found in remote store. Creating default admin accounts...")
		a.SaveFullTable(TableUsers, toItems(DefaultAdmins))
	}

	a.RunAutoBackup()
	log.Println("✅ Initial load complete")
}

// decodeRows turns raw store rows into typed records, skipping anything
// malformed rather than failing the whole table.
func decodeRows[T any](rows []json.RawMessage) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		var v T
		if err := json.Unmarshal(row, &v); err != nil {
			log.Printf("⚠️ Skipping malformed row: %v", err)
			continue
		}
		out = append(out, v)
	}
	return out
}

// ---- read access ----

func (a *App) Users() []User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]User(nil), a.users...)
}

func (a *App) Payments() []Payment {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Payment(nil), a.payments...)
}

func (a *App) Customers() []Master {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Master(nil), a.customers...)
}

func (a *App) Suppliers() []Master {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Master(nil), a.suppliers...)
}

func (a *App) Backups() []Backup {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Backup(nil), a.backups...)
}

func (a *App) LastBackup() *Backup {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastBackup == nil {
		return nil
	}
	b := *a.lastBackup
	return &b
}

func (a *App) UserByID(id string) (User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, u := range a.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func (a *App) UserByUsername(username string) (User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, u := range a.users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return User{}, false
}
