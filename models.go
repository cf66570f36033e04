package main

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Table names in the remote store
const (
	TableUsers     = "kpm-users"
	TablePayments  = "kpm-payments"
	TableCustomers = "kpm-customers"
	TableSuppliers = "kpm-suppliers"
	TableBackups   = "kpm-backups"
)

var PaymentMethods = []string{"Cash", "Bank Transfer", "UPI"}

var PayoutCategories = []string{"Supplier", "Salary", "Savings", "Share", "Expenses", "Transport", "Extra"}

// DefaultManagerPassword is the fixed reset password for manager accounts.
// Must be rotated by the user after the next login.
const DefaultManagerPassword = "manager123"

// DefaultAdmins are written to the remote store when the users table is empty at startup.
var DefaultAdmins = []User{
	{ID: "1", Username: "PARTHI", Password: "parthi123", Role: "admin", Name: "Parthi"},
	{ID: "2", Username: "PRABU", Password: "prabu123", Role: "admin", Name: "Prabu"},
}

type User struct {
	ID       string `json:"id"`
	Username string `json:"username"` // unique, compared case-insensitively
	Password string `json:"password"` // plain text, compared byte-for-byte at login
	Name     string `json:"name"`
	Role     string `json:"role"` // "admin" or "manager"
}

type Payment struct {
	ID               string `json:"id"`
	Type             string `json:"type"` // "in" or "out"
	HandledBy        string `json:"handledBy"`
	CustomerSupplier string `json:"customerSupplier,omitempty"`
	Amount           string `json:"amount"`
	Method           string `json:"method"`
	Category         string `json:"category,omitempty"` // required when type is "out"
	Notes            string `json:"notes,omitempty"`
	Date             string `json:"date"` // YYYY-MM-DD
	EnteredBy        string `json:"enteredBy"`
	EnteredByID      string `json:"enteredById"`
	Timestamp        string `json:"timestamp"` // set at creation, never changed on edit
}

// Master is the shared record shape for customers and suppliers.
type Master struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	GST     string `json:"gst,omitempty"`
}

// Backup is an immutable snapshot of the four live tables.
// backup_id sorts lexicographically in chronological order.
type Backup struct {
	BackupID  string    `json:"backup_id"`
	Timestamp string    `json:"timestamp"`
	Users     []User    `json:"users"`
	Payments  []Payment `json:"payments"`
	Customers []Master  `json:"customers"`
	Suppliers []Master  `json:"suppliers"`
}

// NewID mints an opaque record id.
func NewID() string {
	return uuid.NewString()
}

// stampLayout keeps every timestamp the same width so string order matches time order.
const stampLayout = "2006-01-02T15:04:05.000Z07:00"

func nowStamp() string {
	return time.Now().UTC().Format(stampLayout)
}

// parseStamp reads the timestamps this app and the remote store exchange.
// Returns the zero time for anything unreadable.
func parseStamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

// parseAmount tolerates malformed or missing amounts by treating them as zero.
func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// paymentTime is the sort key for a payment: timestamp, falling back to date.
func paymentTime(p Payment) time.Time {
	if t := parseStamp(p.Timestamp); !t.IsZero() {
		return t
	}
	return parseStamp(p.Date)
}

// sortPayments orders newest first.
func sortPayments(list []Payment) {
	sort.SliceStable(list, func(i, j int) bool {
		return paymentTime(list[i]).After(paymentTime(list[j]))
	})
}

// sortBackups orders newest first.
func sortBackups(list []Backup) {
	sort.SliceStable(list, func(i, j int) bool {
		return parseStamp(list[i].Timestamp).After(parseStamp(list[j].Timestamp))
	})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// toItems converts a typed collection into the payload slice SaveFullTable expects.
func toItems[T any](list []T) []any {
	items := make([]any, len(list))
	for i, v := range list {
		items[i] = v
	}
	return items
}
