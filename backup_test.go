package main

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func seededApp(t *testing.T) (*fakeBackend, *App) {
	t.Helper()
	backend := newFakeBackend(t)
	backend.seed(t, TableUsers,
		User{ID: "1", Username: "PARTHI", Password: "parthi123", Name: "Parthi", Role: "admin"},
		User{ID: "3", Username: "MAYA", Password: "maya12345", Name: "Maya", Role: "manager"},
	)
	backend.seed(t, TablePayments,
		Payment{ID: "p1", Type: "in", HandledBy: "Parthi", Amount: "150.50", Method: "Cash", Date: "2026-08-01", Timestamp: "2026-08-01T09:00:00.000Z"},
		Payment{ID: "p2", Type: "out", HandledBy: "Maya", Amount: "40", Method: "UPI", Category: "Transport", Date: "2026-08-02", Timestamp: "2026-08-02T09:00:00.000Z"},
	)
	backend.seed(t, TableCustomers, Master{ID: "c1", Name: "Hotel Annapoorna", Phone: "98400"})
	backend.seed(t, TableSuppliers, Master{ID: "s1", Name: "Green Farm", GST: "33AAA"})
	// A recent backup keeps the startup auto-backup check quiet.
	backend.seed(t, TableBackups, Backup{
		BackupID:  "seed-backup",
		Timestamp: time.Now().Add(-time.Hour).UTC().Format(stampLayout),
	})

	app := backend.app()
	app.InitialLoad()
	return backend, app
}

func TestBackupIDSortsChronologically(t *testing.T) {
	earlier := time.Date(2026, 8, 29, 9, 5, 0, 0, time.UTC).Format(stampLayout)
	later := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC).Format(stampLayout)

	a := backupIDReplacer.Replace(earlier)
	b := backupIDReplacer.Replace(later)
	if !(a < b) {
		t.Fatalf("backup ids must sort lexicographically in time order: %q vs %q", a, b)
	}
	if strings.ContainsAny(a, ":.") {
		t.Fatalf("backup id still contains reserved characters: %q", a)
	}
}

func TestCreateBackupPayloadSnapshotsEverything(t *testing.T) {
	_, app := seededApp(t)

	payload := app.CreateBackupPayload()
	if payload.BackupID == "" || payload.Timestamp == "" {
		t.Fatalf("payload missing identity: %+v", payload)
	}
	if len(payload.Users) != 2 || len(payload.Payments) != 2 || len(payload.Customers) != 1 || len(payload.Suppliers) != 1 {
		t.Fatalf("snapshot incomplete: %+v", payload)
	}

	// Snapshotting alone must not touch the backend.
	if got := app.Backups(); len(got) != 1 { // just the seeded backup
		t.Fatalf("expected only the seeded backup, got %d", len(got))
	}
}

func TestManualBackupVerified(t *testing.T) {
	_, app := seededApp(t)

	payload, verified, err := app.ManualBackup()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verified {
		t.Fatal("backup written to a working backend must verify")
	}

	found := false
	for _, b := range app.Backups() {
		if b.BackupID == payload.BackupID {
			found = true
		}
	}
	if !found {
		t.Fatal("new backup missing from the refreshed cache")
	}
	if last := app.LastBackup(); last == nil || last.BackupID != payload.BackupID {
		t.Fatalf("lastBackup not updated: %+v", last)
	}
}

func TestManualBackupUnverified(t *testing.T) {
	backend, app := seededApp(t)
	backend.blackhole = true // writes accepted, nothing stored

	_, verified, err := app.ManualBackup()
	if err != nil {
		t.Fatalf("an unverifiable backup is not a hard failure: %v", err)
	}
	if verified {
		t.Fatal("backup cannot verify when the re-read does not contain it")
	}
}

func TestAutoBackupDebounce(t *testing.T) {
	backend := newFakeBackend(t)
	app := backend.app()

	fresh := Backup{
		BackupID:  "existing-fresh",
		Timestamp: time.Now().Add(-23 * time.Hour).UTC().Format(stampLayout),
	}
	backend.seed(t, TableBackups, fresh)

	app.RunAutoBackup()
	if got := backend.count(TableBackups); got != 1 {
		t.Fatalf("23h-old backup must debounce a new one, backend has %d", got)
	}

	stale := Backup{
		BackupID:  "existing-stale",
		Timestamp: time.Now().Add(-25 * time.Hour).UTC().Format(stampLayout),
	}
	backend.seed(t, TableBackups, stale)

	app.RunAutoBackup()
	if got := backend.count(TableBackups); got != 2 {
		t.Fatalf("25h-old backup must allow exactly one new one, backend has %d", got)
	}
}

func TestAutoBackupRunsWhenNoneExist(t *testing.T) {
	backend := newFakeBackend(t)
	app := backend.app()

	app.RunAutoBackup()
	if got := backend.count(TableBackups); got != 1 {
		t.Fatalf("empty backup table must produce one backup, got %d", got)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	_, app := seededApp(t)

	payload, verified, err := app.ManualBackup()
	if err != nil || !verified {
		t.Fatalf("setup backup failed: %v verified=%v", err, verified)
	}

	usersBefore := app.Users()
	paymentsBefore := app.Payments()
	customersBefore := app.Customers()
	suppliersBefore := app.Suppliers()

	if err := app.RestoreBackup(payload.BackupID); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if !reflect.DeepEqual(usersBefore, app.Users()) {
		t.Error("users changed across an immediate restore")
	}
	if !reflect.DeepEqual(paymentsBefore, app.Payments()) {
		t.Error("payments changed across an immediate restore")
	}
	if !reflect.DeepEqual(customersBefore, app.Customers()) {
		t.Error("customers changed across an immediate restore")
	}
	if !reflect.DeepEqual(suppliersBefore, app.Suppliers()) {
		t.Error("suppliers changed across an immediate restore")
	}
}

func TestRestoreOverwritesLiveTables(t *testing.T) {
	backend, app := seededApp(t)

	snapshot := Backup{
		BackupID:  "chosen-snapshot",
		Timestamp: "2026-08-20T00:00:00.000Z",
		Users:     []User{{ID: "1", Username: "PARTHI", Password: "parthi123", Name: "Parthi", Role: "admin"}},
		Payments:  []Payment{{ID: "px", Type: "in", HandledBy: "Parthi", Amount: "999", Method: "Cash", Date: "2026-08-19", Timestamp: "2026-08-19T08:00:00.000Z"}},
		Customers: []Master{{ID: "cx", Name: "Old Customer"}},
		Suppliers: []Master{{ID: "sx", Name: "Old Supplier"}},
	}
	backend.seed(t, TableBackups, snapshot)

	if err := app.RestoreBackup("chosen-snapshot"); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if payments := app.Payments(); len(payments) != 1 || payments[0].ID != "px" {
		t.Fatalf("payments not replaced by snapshot: %+v", payments)
	}
	if customers := app.Customers(); len(customers) != 1 || customers[0].ID != "cx" {
		t.Fatalf("customers not replaced by snapshot: %+v", customers)
	}

	// The restored tables are re-persisted, not just installed in memory.
	if rows := backend.rows(TablePayments); len(rows) != 1 || rows[0]["id"] != "px" {
		t.Fatalf("backend payments not overwritten: %+v", rows)
	}
	if rows := backend.rows(TableSuppliers); len(rows) != 1 || rows[0]["id"] != "sx" {
		t.Fatalf("backend suppliers not overwritten: %+v", rows)
	}
}

func TestRestoreUnknownBackup(t *testing.T) {
	_, app := seededApp(t)
	paymentsBefore := app.Payments()

	if err := app.RestoreBackup("no-such-backup"); err == nil {
		t.Fatal("expected a reported error for an unknown backup id")
	}
	if !reflect.DeepEqual(paymentsBefore, app.Payments()) {
		t.Fatal("a failed lookup must leave the live tables alone")
	}
}
