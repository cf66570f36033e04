package main

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Derived views over the payments table. All of these recompute from the
// current cache on every call; nothing here is stored.

func sumPayments(list []Payment, paymentType string) decimal.Decimal {
	total := decimal.Zero
	for _, p := range list {
		if p.Type == paymentType {
			total = total.Add(parseAmount(p.Amount))
		}
	}
	return total
}

// TotalIn is the sum of all incoming payment amounts.
func (a *App) TotalIn() decimal.Decimal {
	return sumPayments(a.Payments(), "in")
}

// TotalOut is the sum of all outgoing payment amounts.
func (a *App) TotalOut() decimal.Decimal {
	return sumPayments(a.Payments(), "out")
}

// TotalHolding is the overall balance: payments in minus payments out.
func (a *App) TotalHolding() decimal.Decimal {
	return a.TotalIn().Sub(a.TotalOut())
}

// Holding is one staff member's running balance: in minus out over the
// payments they handled. Name matching is case-insensitive.
func (a *App) Holding(person string) decimal.Decimal {
	handled := make([]Payment, 0)
	for _, p := range a.Payments() {
		if strings.EqualFold(p.HandledBy, person) {
			handled = append(handled, p)
		}
	}
	return sumPayments(handled, "in").Sub(sumPayments(handled, "out"))
}

// AllStaff lists every user's display name, sorted.
func (a *App) AllStaff() []string {
	users := a.Users()
	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Name)
	}
	sort.Strings(names)
	return names
}
