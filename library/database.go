package library

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// Database is the SQLite-backed RecordStore.
type Database struct {
	db *sqlx.DB
}

// NewDatabase opens (or creates) the SQLite database at dbPath and applies
// schema migrations.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Database{db: db}, nil
}

// Close closes the DB.
func (d *Database) Close() error { return d.db.Close() }

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.Get(&current, `SELECT value FROM meta WHERE key='schema_version';`)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Loans carry no foreign keys: each collection is rewritten on its own.
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS books (
            id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            genre TEXT NOT NULL,
            year INTEGER NOT NULL,
            format TEXT NOT NULL DEFAULT '',
            is_available BOOLEAN NOT NULL DEFAULT 1
        );`,
		`CREATE TABLE IF NOT EXISTS users (
            user_id TEXT PRIMARY KEY,
            position INTEGER NOT NULL,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS loans (
            user_id TEXT NOT NULL,
            book_id TEXT NOT NULL,
            position INTEGER NOT NULL,
            PRIMARY KEY (user_id, book_id)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Collections
// ---------------------------------------------------------------------------

type bookRow struct {
	Book
	Position int `db:"position"`
}

type userRow struct {
	User
	Position int `db:"position"`
}

type loanRow struct {
	UserID   string `db:"user_id"`
	BookID   string `db:"book_id"`
	Position int    `db:"position"`
}

// rewrite replaces the contents of table with rows in one transaction.
func (d *Database) rewrite(table, insert string, rows []any) error {
	tx, err := d.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for _, row := range rows {
		if _, err := tx.NamedExec(insert, row); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return tx.Commit()
}

func (d *Database) LoadBooks() ([]Book, error) {
	var books []Book
	err := d.db.Select(&books, `SELECT id,title,author,genre,year,format,is_available FROM books ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	return books, nil
}

func (d *Database) SaveBooks(books []Book) error {
	rows := make([]any, len(books))
	for i, b := range books {
		rows[i] = bookRow{Book: b, Position: i}
	}
	return d.rewrite("books", `INSERT INTO books(id,position,title,author,genre,year,format,is_available)
        VALUES(:id,:position,:title,:author,:genre,:year,:format,:is_available)`, rows)
}

func (d *Database) LoadUsers() ([]User, error) {
	var users []User
	if err := d.db.Select(&users, `SELECT user_id,first_name,last_name FROM users ORDER BY position`); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

func (d *Database) SaveUsers(users []User) error {
	rows := make([]any, len(users))
	for i, u := range users {
		rows[i] = userRow{User: u, Position: i}
	}
	return d.rewrite("users", `INSERT INTO users(user_id,position,first_name,last_name)
        VALUES(:user_id,:position,:first_name,:last_name)`, rows)
}

// LoadLoans groups the loan rows back into one Loan per user.
func (d *Database) LoadLoans() ([]Loan, error) {
	var rows []loanRow
	if err := d.db.Select(&rows, `SELECT user_id,book_id,position FROM loans ORDER BY user_id, position`); err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	var loans []Loan
	for _, r := range rows {
		if n := len(loans); n > 0 && loans[n-1].UserID == r.UserID {
			loans[n-1].BookIDs = append(loans[n-1].BookIDs, r.BookID)
			continue
		}
		loans = append(loans, Loan{UserID: r.UserID, BookIDs: []string{r.BookID}})
	}
	return loans, nil
}

func (d *Database) SaveLoans(loans []Loan) error {
	var rows []any
	for _, l := range loans {
		for i, id := range l.BookIDs {
			rows = append(rows, loanRow{UserID: l.UserID, BookID: id, Position: i})
		}
	}
	return d.rewrite("loans", `INSERT INTO loans(user_id,book_id,position) VALUES(:user_id,:book_id,:position)`, rows)
}
