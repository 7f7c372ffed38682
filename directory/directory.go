/*
Package directory is the emergency-service contact directory, backed by
SQLite.

Contacts are plumbers, electricians, engineers, and municipal offices the
citizen portal surfaces during water emergencies. The directory is
read-mostly: it is seeded once and queried by type, verification state, and
availability. Use ":memory:" (the default) for a throwaway database.

QUERIES:
  Verified:  all verified contacts
  Urgent:    verified, 24/7, emergency-category contacts
  ByType:    contacts of one trade, best-rated first

SEE ALSO:
  - seed.go: sample directory data
*/
package directory

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/civista/water-office/ident"
)

// ErrContactNotFound is returned when a contact ID does not exist.
var ErrContactNotFound = errors.New("contact not found")

// =============================================================================
// TYPES
// =============================================================================

// ContactType is the trade of an emergency contact.
type ContactType string

const (
	TypePlumber            ContactType = "plumber"
	TypeElectrician        ContactType = "electrician"
	TypeCivilEngineer      ContactType = "civil_engineer"
	TypeEmergencyResponder ContactType = "emergency_responder"
	TypeRMCOffice          ContactType = "rmc_office"
)

// ParseContactType converts external string input into a ContactType.
func ParseContactType(s string) (ContactType, error) {
	switch ContactType(s) {
	case TypePlumber, TypeElectrician, TypeCivilEngineer, TypeEmergencyResponder, TypeRMCOffice:
		return ContactType(s), nil
	}
	return "", fmt.Errorf("invalid contact type: %s", s)
}

// ServiceCategory classifies the service a contact provides.
type ServiceCategory string

const (
	CategoryEmergency    ServiceCategory = "emergency"
	CategoryMaintenance  ServiceCategory = "maintenance"
	CategoryConsultation ServiceCategory = "consultation"
	CategoryComplaint    ServiceCategory = "complaint"
)

// ParseServiceCategory converts external string input into a ServiceCategory.
func ParseServiceCategory(s string) (ServiceCategory, error) {
	switch ServiceCategory(s) {
	case CategoryEmergency, CategoryMaintenance, CategoryConsultation, CategoryComplaint:
		return ServiceCategory(s), nil
	}
	return "", fmt.Errorf("invalid service category: %s", s)
}

// Contact is one directory entry.
type Contact struct {
	ID              string
	Name            string
	Type            ContactType
	Phone           string
	Email           string
	Location        string
	Availability    string
	Category        ServiceCategory
	ExperienceYears int
	Rating          float64
	Verified        bool
}

// =============================================================================
// STORE
// =============================================================================

// Store is the SQLite-backed contact directory.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the directory database. An empty path means
// ":memory:".
func Open(path string) (*Store, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open directory database: %w", err)
	}
	// A single connection keeps :memory: databases from evaporating between
	// pool checkouts.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate directory database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		contact_type TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		availability TEXT NOT NULL DEFAULT '24/7',
		service_category TEXT NOT NULL,
		experience_years INTEGER NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		verified INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_contacts_type ON contacts(contact_type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Add inserts a new contact. New contacts always start unverified with a
// zero rating, whatever the caller supplied.
func (s *Store) Add(c Contact) (Contact, error) {
	c.ID = ident.New("CONT")
	c.Rating = 0
	c.Verified = false
	if c.Availability == "" {
		c.Availability = "24/7"
	}

	_, err := s.db.Exec(`
		INSERT INTO contacts (id, name, contact_type, phone, email, location, availability, service_category, experience_years, rating, verified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Phone, c.Email, c.Location, c.Availability,
		string(c.Category), c.ExperienceYears, c.Rating, boolToInt(c.Verified),
	)
	if err != nil {
		return Contact{}, fmt.Errorf("failed to insert contact: %w", err)
	}
	return c, nil
}

// Contact returns one contact by ID.
func (s *Store) Contact(id string) (Contact, error) {
	row := s.db.QueryRow(selectContacts+" WHERE id = ?", id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Contact{}, ErrContactNotFound
	}
	return c, err
}

// All returns every contact in the directory.
func (s *Store) All() ([]Contact, error) {
	return s.query(selectContacts + " ORDER BY name")
}

// Verified returns all verified contacts.
func (s *Store) Verified() ([]Contact, error) {
	return s.query(selectContacts + " WHERE verified = 1 ORDER BY name")
}

// Urgent returns contacts suitable for an active emergency: verified, 24/7
// availability, emergency service category.
func (s *Store) Urgent() ([]Contact, error) {
	return s.query(selectContacts+` WHERE verified = 1 AND availability LIKE '%24/7%' AND service_category = ? ORDER BY rating DESC`, string(CategoryEmergency))
}

// ByType returns the contacts of one trade, best-rated first.
func (s *Store) ByType(t ContactType) ([]Contact, error) {
	return s.query(selectContacts+" WHERE contact_type = ? ORDER BY rating DESC", string(t))
}

// UpdateRating sets a contact's rating, clamped to [0, 5].
func (s *Store) UpdateRating(id string, rating float64) error {
	if rating < 0 {
		rating = 0
	} else if rating > 5 {
		rating = 5
	}
	res, err := s.db.Exec("UPDATE contacts SET rating = ? WHERE id = ?", rating, id)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrContactNotFound
	}
	return nil
}

// =============================================================================
// INTERNAL
// =============================================================================

const selectContacts = `
	SELECT id, name, contact_type, phone, email, location, availability,
	       service_category, experience_years, rating, verified
	FROM contacts`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (Contact, error) {
	var c Contact
	var contactType, category string
	var verified int
	err := row.Scan(&c.ID, &c.Name, &contactType, &c.Phone, &c.Email, &c.Location,
		&c.Availability, &category, &c.ExperienceYears, &c.Rating, &verified)
	if err != nil {
		return Contact{}, err
	}
	c.Type = ContactType(contactType)
	c.Category = ServiceCategory(category)
	c.Verified = verified != 0
	return c, nil
}

func (s *Store) query(q string, args ...any) ([]Contact, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
