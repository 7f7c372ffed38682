/*
Package citizens is the in-memory registration store for citizen accounts.

Users are keyed by a sequential "citizen-NNNN" ID with a secondary email
index. Passwords are stored as bcrypt hashes only; the store never returns
or compares plain text itself.
*/
package citizens

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/civista/water-office/auth"
)

var (
	// ErrEmailExists is returned when registering an already-known email.
	ErrEmailExists = errors.New("email already registered")

	// ErrUserNotFound is returned when a citizen lookup misses.
	ErrUserNotFound = errors.New("citizen not found")

	// ErrInvalidCredentials is returned for a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is a registered citizen account. The address fields follow the
// municipal records layout.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	District     string
	Tehsil       string
	Block        string
	HouseNo      string
	CreatedAt    time.Time
}

// Store holds citizen accounts in memory.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*User
	emailIndex map[string]string // email -> user ID
	nextID     int
}

// NewStore creates an empty store. IDs start at citizen-1000.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]*User),
		emailIndex: make(map[string]string),
		nextID:     1000,
	}
}

// Register creates a new citizen account, hashing the password. The email
// must be unused; password strength is a caller (edge) concern.
func (s *Store) Register(fullName, email, password, district, tehsil, block, houseNo string) (User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIndex[email]; exists {
		return User{}, fmt.Errorf("%w: %s", ErrEmailExists, email)
	}

	user := &User{
		ID:           fmt.Sprintf("citizen-%d", s.nextID),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		District:     district,
		Tehsil:       tehsil,
		Block:        block,
		HouseNo:      houseNo,
		CreatedAt:    time.Now().UTC(),
	}
	s.nextID++
	s.users[user.ID] = user
	s.emailIndex[email] = user.ID
	return *user, nil
}

// ByEmail returns the citizen registered under the given email.
func (s *Store) ByEmail(email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *s.users[id], nil
}

// ByID returns the citizen with the given ID.
func (s *Store) ByID(id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *user, nil
}

// VerifyCredentials checks a login attempt. Unknown emails and wrong
// passwords return the same error so responses cannot probe registration.
func (s *Store) VerifyCredentials(email, password string) (User, error) {
	user, err := s.ByEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}
