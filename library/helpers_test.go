package library

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"testing"
)

// memStore is an in-memory RecordStore.
type memStore struct {
	books []Book
	users []User
	loans []Loan
	saves int
}

func (m *memStore) LoadBooks() ([]Book, error) { return slices.Clone(m.books), nil }
func (m *memStore) LoadUsers() ([]User, error) { return slices.Clone(m.users), nil }
func (m *memStore) LoadLoans() ([]Loan, error) { return slices.Clone(m.loans), nil }
func (m *memStore) Close() error               { return nil }

func (m *memStore) SaveBooks(b []Book) error {
	m.books = slices.Clone(b)
	m.saves++
	return nil
}

func (m *memStore) SaveUsers(u []User) error {
	m.users = slices.Clone(u)
	m.saves++
	return nil
}

func (m *memStore) SaveLoans(l []Loan) error {
	m.loans = slices.Clone(l)
	m.saves++
	return nil
}

var errDiskFull = errors.New("disk full")

// failingStore fails every call.
type failingStore struct{}

func (failingStore) LoadBooks() ([]Book, error) { return nil, errDiskFull }
func (failingStore) LoadUsers() ([]User, error) { return nil, errDiskFull }
func (failingStore) LoadLoans() ([]Loan, error) { return nil, errDiskFull }
func (failingStore) SaveBooks([]Book) error     { return errDiskFull }
func (failingStore) SaveUsers([]User) error     { return errDiskFull }
func (failingStore) SaveLoans([]Loan) error     { return errDiskFull }
func (failingStore) Close() error               { return nil }

// auditRecorder collects audit entries.
type auditRecorder struct {
	entries []string
}

func (r *auditRecorder) Record(description string) error {
	r.entries = append(r.entries, description)
	return nil
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

// newTestCatalog returns an in-memory catalog holding the Dune scenario:
// book B1 and user U1.
func newTestCatalog(t *testing.T) (*Catalog, *memStore, *auditRecorder) {
	t.Helper()
	store := &memStore{}
	audit := &auditRecorder{}
	logger, _ := bufferLogger()
	c := NewCatalog(store, audit, logger)

	if _, err := c.AddBook(NewBook("B1", "Dune", "Herbert", "SciFi", 1965)); err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := c.AddUser(User{UserID: "U1", FirstName: "Ann"}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	return c, store, audit
}
