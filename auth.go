package main

import (
	"fmt"
	"log"
	"strings"
)

// Passwords are stored and compared in plain text against the cached users
// table. There is no lockout and no server-side session; the JWT layer in
// jwt.go only protects the HTTP surface.

// ErrAdminReset marks a password reset attempt on an admin account. Admin
// passwords are never reset to the public default; the other admin has to
// help out-of-band.
var ErrAdminReset = fmt.Errorf("admin passwords cannot be reset here, contact the other admin")

// FindUserByCredentials is the login check: case-insensitive username,
// exact password.
func (a *App) FindUserByCredentials(username, password string) (User, bool) {
	username = strings.TrimSpace(username)
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, u := range a.users {
		if strings.EqualFold(u.Username, username) && u.Password == password {
			return u, true
		}
	}
	return User{}, false
}

// ChangePassword swaps a user's password after checking the old one.
func (a *App) ChangePassword(userID, oldPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	a.mu.Lock()
	idx := -1
	for i, u := range a.users {
		if u.ID == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return fmt.Errorf("user not found")
	}
	if a.users[idx].Password != oldPassword {
		a.mu.Unlock()
		return fmt.Errorf("old password incorrect")
	}

	updated := append([]User(nil), a.users...)
	updated[idx].Password = newPassword
	a.users = updated
	a.mu.Unlock()

	a.SaveFullTable(TableUsers, toItems(updated))

	// Best-effort partial upsert on top of the full save, for backends that
	// merge records by key.
	if _, err := a.Store.SaveData(TableUsers, map[string]string{"id": userID, "password": newPassword}); err != nil {
		log.Printf("⚠️ Single-item password upsert failed: %v", err)
	}
	return nil
}

// ForgotPassword resets a manager's password to the fixed default and
// returns it. The user is expected to change it right after logging in.
func (a *App) ForgotPassword(username string) (string, error) {
	user, found := a.UserByUsername(strings.TrimSpace(username))
	if !found {
		return "", fmt.Errorf("user not found")
	}
	if user.Role == "admin" {
		return "", ErrAdminReset
	}

	a.mu.Lock()
	updated := append([]User(nil), a.users...)
	for i := range updated {
		if updated[i].ID == user.ID {
			updated[i].Password = DefaultManagerPassword
		}
	}
	a.users = updated
	a.mu.Unlock()

	a.SaveFullTable(TableUsers, toItems(updated))
	return DefaultManagerPassword, nil
}

// CreateManager adds a manager account. Admin accounts are only ever seeded,
// never created here, so at least one admin always exists.
func (a *App) CreateManager(username, password, name string) (User, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if username == "" || password == "" || name == "" {
		return User{}, fmt.Errorf("username, password and name are required")
	}
	if len(password) < 6 {
		return User{}, fmt.Errorf("password must be at least 6 characters")
	}
	if _, exists := a.UserByUsername(username); exists {
		return User{}, fmt.Errorf("username already exists")
	}

	user := User{
		ID:       NewID(),
		Username: username,
		Password: password,
		Name:     name,
		Role:     "manager",
	}

	a.mu.Lock()
	updated := append(append([]User(nil), a.users...), user)
	a.users = updated
	a.mu.Unlock()

	a.SaveFullTable(TableUsers, toItems(updated))
	return user, nil
}

// UpdateManager edits an existing manager account.
func (a *App) UpdateManager(id, username, password, name string) (User, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if username == "" || password == "" || name == "" {
		return User{}, fmt.Errorf("username, password and name are required")
	}
	if len(password) < 6 {
		return User{}, fmt.Errorf("password must be at least 6 characters")
	}
	if other, exists := a.UserByUsername(username); exists && other.ID != id {
		return User{}, fmt.Errorf("username already exists")
	}

	a.mu.Lock()
	idx := -1
	for i, u := range a.users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		a.mu.Unlock()
		return User{}, fmt.Errorf("user not found")
	}
	if a.users[idx].Role != "manager" {
		a.mu.Unlock()
		return User{}, fmt.Errorf("only manager accounts can be edited")
	}

	updated := append([]User(nil), a.users...)
	updated[idx].Username = username
	updated[idx].Password = password
	updated[idx].Name = name
	user := updated[idx]
	a.users = updated
	a.mu.Unlock()

	a.SaveFullTable(TableUsers, toItems(updated))
	return user, nil
}

// DeleteUser removes a manager account. Admins cannot be deleted.
func (a *App) DeleteUser(id string) error {
	a.mu.Lock()
	updated := make([]User, 0, len(a.users))
	found := false
	for _, u := range a.users {
		if u.ID == id {
			if u.Role == "admin" {
				a.mu.Unlock()
				return fmt.Errorf("admin accounts cannot be deleted")
			}
			found = true
			continue
		}
		updated = append(updated, u)
	}
	if !found {
		a.mu.Unlock()
		return fmt.Errorf("user not found")
	}
	a.users = updated
	a.mu.Unlock()

	a.SaveFullTable(TableUsers, toItems(updated))
	return nil
}
