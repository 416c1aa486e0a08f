package store

import (
	"strings"

	"github.com/MDharunPrasad/photo-kiosk/internal/models"
)

// Login - advisory identity check against the local user list: exact
// email+role+password match, plaintext by contract. forceLogin skips
// the check entirely and synthesizes a user, which the old kiosk relied
// on for walk-up operation. Never reports why it failed.
func (st *SessionStore) Login(email, password string, role models.Role, forceLogin bool) bool {
	st.mu.Lock()

	if forceLogin {
		name := "User"
		if at := strings.IndexByte(email, '@'); at > 0 {
			name = email[:at]
		}
		u := models.NewUser(name, email, role, st.now())
		st.currentUser = &u
		st.persistCurrentUserLocked()
		st.mu.Unlock()
		return true
	}

	for _, su := range st.users {
		if su.Email == email && su.Role == role && su.Password == password {
			u := su.User
			st.currentUser = &u
			st.persistCurrentUserLocked()
			st.mu.Unlock()
			return true
		}
	}

	st.mu.Unlock()
	return false
}

// Logout - clears the active identity. The registry entry stays.
func (st *SessionStore) Logout() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.currentUser = nil
	st.persistCurrentUserLocked()
}

// Register - appends to the local user list and logs the new user in.
// Duplicate email fails with false, nothing else changes.
func (st *SessionStore) Register(name, email, password string, role models.Role) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, su := range st.users {
		if su.Email == email {
			return false
		}
	}

	u := models.NewUser(name, email, role, st.now())
	st.users = append(st.users, models.StoredUser{User: u, Password: password})
	st.persistUsersLocked()

	st.currentUser = &u
	st.persistCurrentUserLocked()
	return true
}

// RegisteredUsers - count only; the list itself (passwords included)
// never leaves the store.
func (st *SessionStore) RegisteredUsers() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.users)
}
