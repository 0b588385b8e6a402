package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONStore keeps each collection as an indented JSON document inside dir.
type JSONStore struct {
	dir string
}

// NewJSONStore creates dir if needed.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &JSONStore{dir: dir}, nil
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) LoadBooks() ([]Book, error) {
	var books []Book
	if err := s.load("books.json", &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (s *JSONStore) SaveBooks(books []Book) error {
	if books == nil {
		books = []Book{}
	}
	return s.save("books.json", books)
}

func (s *JSONStore) LoadUsers() ([]User, error) {
	var users []User
	if err := s.load("users.json", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *JSONStore) SaveUsers(users []User) error {
	if users == nil {
		users = []User{}
	}
	return s.save("users.json", users)
}

func (s *JSONStore) LoadLoans() ([]Loan, error) {
	var loans []Loan
	if err := s.load("loans.json", &loans); err != nil {
		return nil, err
	}
	return loans, nil
}

func (s *JSONStore) SaveLoans(loans []Loan) error {
	if loans == nil {
		loans = []Loan{}
	}
	return s.save("loans.json", loans)
}

func (s *JSONStore) load(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// save writes to a temp file and renames it over the old document, so a
// failed write never leaves a truncated collection behind.
func (s *JSONStore) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(s.dir, name))
}
