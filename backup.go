package main

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// BackupInterval gates the automatic backup: a new snapshot is only taken
// when the newest existing backup is at least this old.
const BackupInterval = 24 * time.Hour

var backupIDReplacer = strings.NewReplacer(":", "-", ".", "-")

// CreateBackupPayload snapshots the four live tables. Side-effect free; the
// result only matters once something persists it.
func (a *App) CreateBackupPayload() Backup {
	now := nowStamp()

	a.mu.RLock()
	defer a.mu.RUnlock()
	return Backup{
		BackupID:  backupIDReplacer.Replace(now),
		Timestamp: now,
		Users:     append([]User(nil), a.users...),
		Payments:  append([]Payment(nil), a.payments...),
		Customers: append([]Master(nil), a.customers...),
		Suppliers: append([]Master(nil), a.suppliers...),
	}
}

// ManualBackup snapshots, writes, then re-reads the backup table to confirm
// the new id is really there. A write that goes through but cannot be seen
// on re-read is reported as unverified, which is not the same as a failure.
func (a *App) ManualBackup() (Backup, bool, error) {
	payload := a.CreateBackupPayload()

	resp, err := a.Store.SaveData(TableBackups, payload)
	if err != nil {
		return payload, false, fmt.Errorf("manual backup failed: %w", err)
	}
	if msg := resp.Err(); msg != "" {
		return payload, false, fmt.Errorf("manual backup rejected by store: %s", msg)
	}

	a.RefreshTable(TableBackups)
	for _, b := range a.Backups() {
		if b.BackupID == payload.BackupID {
			log.Println("✅ Manual backup completed and verified:", payload.BackupID)
			return payload, true, nil
		}
	}
	log.Println("⚠️ Manual backup attempted but could not be verified:", payload.BackupID)
	return payload, false, nil
}

// RunAutoBackup creates a snapshot only when no backup exists yet or the
// newest one is at least BackupInterval old. The check and the write are not
// atomic; two processes can both decide to back up. Duplicates only cost
// storage, so that race stays unguarded.
func (a *App) RunAutoBackup() {
	existing := decodeRows[Backup](a.Store.FetchTable(TableBackups))

	var latest time.Time
	for _, b := range existing {
		if t := parseStamp(b.Timestamp); t.After(latest) {
			latest = t
		}
	}

	if !latest.IsZero() && time.Since(latest) < BackupInterval {
		log.Println("ℹ️ Auto-backup not needed. Last backup at", latest.Format(time.RFC3339))
		return
	}

	payload := a.CreateBackupPayload()
	resp, err := a.Store.SaveData(TableBackups, payload)
	if err != nil {
		log.Printf("❌ Auto-backup error: %v", err)
		return
	}
	if msg := resp.Err(); msg != "" {
		log.Printf("❌ Auto-backup rejected by store: %s", msg)
		return
	}
	a.RefreshTable(TableBackups)
	log.Println("✅ Auto-backup created:", payload.BackupID)
}

// AutoBackupLoop runs the debounced check on a fixed wall-clock interval.
// InitialLoad already ran it once at startup.
func (a *App) AutoBackupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		a.RunAutoBackup()
	}
}

// RestoreBackup overwrites the four live tables from a chosen snapshot and
// re-persists each of them. The four saves run one after another; a failure
// partway leaves the backend with a mix of old and new tables, and the next
// restore is the recovery path. Destructive; callers confirm first.
func (a *App) RestoreBackup(backupID string) error {
	if backupID == "" {
		return fmt.Errorf("no backup selected")
	}

	all := decodeRows[Backup](a.Store.FetchTable(TableBackups))
	var chosen *Backup
	for i := range all {
		if all[i].BackupID == backupID {
			chosen = &all[i]
			break
		}
	}
	if chosen == nil {
		return fmt.Errorf("backup %s not found on server", backupID)
	}

	restored := append([]Payment(nil), chosen.Payments...)
	sortPayments(restored)

	a.mu.Lock()
	if chosen.Users != nil {
		a.users = append([]User(nil), chosen.Users...)
	}
	if chosen.Payments != nil {
		a.payments = restored
	}
	if chosen.Customers != nil {
		a.customers = append([]Master(nil), chosen.Customers...)
	}
	if chosen.Suppliers != nil {
		a.suppliers = append([]Master(nil), chosen.Suppliers...)
	}
	a.mu.Unlock()

	a.SaveFullTable(TableUsers, toItems(chosen.Users))
	a.SaveFullTable(TablePayments, toItems(chosen.Payments))
	a.SaveFullTable(TableCustomers, toItems(chosen.Customers))
	a.SaveFullTable(TableSuppliers, toItems(chosen.Suppliers))

	a.RefreshTable(TableBackups)
	log.Println("✅ Restore completed from backup:", backupID)
	return nil
}
