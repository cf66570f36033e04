package main

import (
	"fmt"
	"strings"
)

// Customers and suppliers share one record shape and one set of operations;
// the kind just picks the table.

func masterTable(kind string) (string, error) {
	switch kind {
	case "customer":
		return TableCustomers, nil
	case "supplier":
		return TableSuppliers, nil
	default:
		return "", fmt.Errorf("unknown master kind %q", kind)
	}
}

func (a *App) mastersFor(table string) []Master {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if table == TableCustomers {
		return append([]Master(nil), a.customers...)
	}
	return append([]Master(nil), a.suppliers...)
}

func (a *App) setMasters(table string, list []Master) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if table == TableCustomers {
		a.customers = list
	} else {
		a.suppliers = list
	}
}

// CreateMaster adds a customer or supplier. Name is the only required field.
func (a *App) CreateMaster(kind string, input Master) (Master, SaveReport, error) {
	table, err := masterTable(kind)
	if err != nil {
		return Master{}, SaveReport{}, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return Master{}, SaveReport{}, fmt.Errorf("name is required")
	}

	input.ID = NewID()
	updated := append(a.mastersFor(table), input)
	a.setMasters(table, updated)

	return input, a.SaveFullTable(table, toItems(updated)), nil
}

// UpdateMaster replaces an existing customer or supplier record.
func (a *App) UpdateMaster(kind, id string, input Master) (Master, SaveReport, error) {
	table, err := masterTable(kind)
	if err != nil {
		return Master{}, SaveReport{}, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return Master{}, SaveReport{}, fmt.Errorf("name is required")
	}

	list := a.mastersFor(table)
	idx := -1
	for i, m := range list {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Master{}, SaveReport{}, fmt.Errorf("%s not found", kind)
	}

	input.ID = id
	list[idx] = input
	a.setMasters(table, list)

	return input, a.SaveFullTable(table, toItems(list)), nil
}

// DeleteMaster removes a customer or supplier.
func (a *App) DeleteMaster(kind, id string) (SaveReport, error) {
	table, err := masterTable(kind)
	if err != nil {
		return SaveReport{}, err
	}

	list := a.mastersFor(table)
	updated := make([]Master, 0, len(list))
	found := false
	for _, m := range list {
		if m.ID == id {
			found = true
			continue
		}
		updated = append(updated, m)
	}
	if !found {
		return SaveReport{}, fmt.Errorf("%s not found", kind)
	}
	a.setMasters(table, updated)

	return a.SaveFullTable(table, toItems(updated)), nil
}
