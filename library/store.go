package library

import "fmt"

// RecordStore persists the catalog's collections. Every Save rewrites the
// whole collection; a Load of a collection that was never saved returns an
// empty result and no error.
type RecordStore interface {
	LoadBooks() ([]Book, error)
	SaveBooks([]Book) error
	LoadUsers() ([]User, error)
	SaveUsers([]User) error
	LoadLoans() ([]Loan, error)
	SaveLoans([]Loan) error
	Close() error
}

// Store drivers accepted by OpenStore.
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)

// OpenStore opens the record store for driver at path. For DriverSQLite path
// is the database file, for DriverJSON the directory holding the documents.
func OpenStore(driver, path string) (RecordStore, error) {
	switch driver {
	case DriverSQLite, "":
		db, err := NewDatabase(path)
		if err != nil {
			return nil, err
		}
		return db, nil
	case DriverJSON:
		js, err := NewJSONStore(path)
		if err != nil {
			return nil, err
		}
		return js, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
