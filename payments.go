package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ValidatePaymentInput checks the fields a caller is allowed to set before
// any network call is attempted.
func ValidatePaymentInput(p *Payment) error {
	if p.Type != "in" && p.Type != "out" {
		return fmt.Errorf("type must be either \"in\" or \"out\"")
	}
	if strings.TrimSpace(p.HandledBy) == "" {
		return fmt.Errorf("handledBy is required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(p.Amount))
	if err != nil {
		return fmt.Errorf("amount must be a number")
	}
	if amount.IsNegative() {
		return fmt.Errorf("amount must not be negative")
	}
	if !contains(PaymentMethods, p.Method) {
		return fmt.Errorf("method must be one of: %s", strings.Join(PaymentMethods, ", "))
	}
	if p.Type == "out" {
		if p.Category == "" {
			return fmt.Errorf("category is required for payments out")
		}
		if !contains(PayoutCategories, p.Category) {
			return fmt.Errorf("category must be one of: %s", strings.Join(PayoutCategories, ", "))
		}
	}
	if p.Date == "" {
		p.Date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", p.Date); err != nil {
		return fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	return nil
}

// canEditPayment: only the creator or an admin may change a payment.
func canEditPayment(actor User, p Payment) bool {
	return actor.Role == "admin" || actor.ID == p.EnteredByID
}

// CreatePayment records a new payment and persists the full table.
func (a *App) CreatePayment(actor User, input Payment) (Payment, SaveReport, error) {
	if err := ValidatePaymentInput(&input); err != nil {
		return Payment{}, SaveReport{}, err
	}

	input.ID = NewID()
	input.EnteredBy = actor.Name
	input.EnteredByID = actor.ID
	input.Timestamp = nowStamp()

	a.mu.Lock()
	updated := append(append([]Payment(nil), a.payments...), input)
	sortPayments(updated)
	a.payments = updated
	a.mu.Unlock()

	report := a.SaveFullTable(TablePayments, toItems(updated))
	return input, report, nil
}

// UpdatePayment replaces an existing payment's editable fields. The original
// timestamp survives the edit; the editor becomes the recorded enterer.
func (a *App) UpdatePayment(actor User, id string, input Payment) (Payment, SaveReport, error) {
	if err := ValidatePaymentInput(&input); err != nil {
		return Payment{}, SaveReport{}, err
	}

	a.mu.Lock()
	idx := -1
	for i, p := range a.payments {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return Payment{}, SaveReport{}, fmt.Errorf("payment not found")
	}
	existing := a.payments[idx]
	if !canEditPayment(actor, existing) {
		a.mu.Unlock()
		return Payment{}, SaveReport{}, fmt.Errorf("only the creator or an admin can edit this payment")
	}

	input.ID = existing.ID
	input.Timestamp = existing.Timestamp
	input.EnteredBy = actor.Name
	input.EnteredByID = actor.ID

	updated := append([]Payment(nil), a.payments...)
	updated[idx] = input
	sortPayments(updated)
	a.payments = updated
	a.mu.Unlock()

	report := a.SaveFullTable(TablePayments, toItems(updated))
	return input, report, nil
}

// DeletePayment removes a payment and persists the remaining table.
func (a *App) DeletePayment(actor User, id string) (SaveReport, error) {
	a.mu.Lock()
	updated := make([]Payment, 0, len(a.payments))
	found := false
	for _, p := range a.payments {
		if p.ID == id {
			found = true
			if !canEditPayment(actor, p) {
				a.mu.Unlock()
				return SaveReport{}, fmt.Errorf("only the creator or an admin can delete this payment")
			}
			continue
		}
		updated = append(updated, p)
	}
	if !found {
		a.mu.Unlock()
		return SaveReport{}, fmt.Errorf("payment not found")
	}
	a.payments = updated
	a.mu.Unlock()

	return a.SaveFullTable(TablePayments, toItems(updated)), nil
}
