package library

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Catalog owns the books, the users and the borrow ledger. Every mutation is
// written through to the RecordStore and described to the Auditor. Store and
// audit failures are logged and never undo the in-memory change.
type Catalog struct {
	mu     sync.Mutex
	books  []*Book
	users  []*User
	ledger *Ledger

	store RecordStore
	audit Auditor
	log   *slog.Logger
}

// NewCatalog builds a catalog and loads its collections from store. A nil
// store keeps the catalog in memory only; a nil audit drops audit entries.
func NewCatalog(store RecordStore, audit Auditor, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		ledger: NewLedger(),
		store:  store,
		audit:  audit,
		log:    logger,
	}
	c.load()
	return c
}

// ------------------ Loading ------------------

func (c *Catalog) load() {
	if c.store == nil {
		return
	}

	// A collection that fails to load is treated as empty.
	books, err := c.store.LoadBooks()
	if err != nil {
		c.log.Error("load books", "err", fmt.Errorf("%w: %w", ErrPersistence, err))
		books = nil
	}
	for _, b := range books {
		if c.findBook(b.ID) != nil {
			c.log.Warn("skipping duplicate book", "id", b.ID)
			continue
		}
		b.IsAvailable = true
		c.books = append(c.books, &b)
	}

	users, err := c.store.LoadUsers()
	if err != nil {
		c.log.Error("load users", "err", fmt.Errorf("%w: %w", ErrPersistence, err))
		users = nil
	}
	for _, u := range users {
		if c.findUser(u.UserID) != nil {
			c.log.Warn("skipping duplicate user", "id", u.UserID)
			continue
		}
		c.users = append(c.users, &u)
	}

	loans, err := c.store.LoadLoans()
	if err != nil {
		c.log.Error("load loans", "err", fmt.Errorf("%w: %w", ErrPersistence, err))
		loans = nil
	}
	c.restoreLedger(loans)

	c.log.Info("catalog loaded",
		"books", len(c.books), "users", len(c.users), "borrowers", c.ledger.Len())
}

// restoreLedger rebuilds the ledger from persisted loans. Availability is
// derived from the ledger alone, so entries for unknown users or books and
// second claims on the same book are dropped.
func (c *Catalog) restoreLedger(loans []Loan) {
	for _, loan := range loans {
		if c.findUser(loan.UserID) == nil {
			c.log.Warn("dropping loans of unknown user", "user", loan.UserID)
			continue
		}
		for _, id := range loan.BookIDs {
			b := c.findBook(id)
			if b == nil {
				c.log.Warn("dropping loan of unknown book", "user", loan.UserID, "book", id)
				continue
			}
			if err := c.ledger.Borrow(loan.UserID, b); err != nil {
				c.log.Warn("dropping conflicting loan", "user", loan.UserID, "book", id)
			}
		}
	}
}

// ------------------ Persistence helpers ------------------

func (c *Catalog) saveBooks() {
	if c.store == nil {
		return
	}
	if err := c.store.SaveBooks(c.bookSnapshot()); err != nil {
		c.log.Error("save books", "err", fmt.Errorf("%w: %w", ErrPersistence, err))
	}
}

func (c *Catalog) saveUsers() {
	if c.store == nil {
		return
	}
	users := make([]User, len(c.users))
	for i, u := range c.users {
		users[i] = *u
	}
	if err := c.store.SaveUsers(users); err != nil {
		c.log.Error("save users", "err", fmt.Errorf("%w: %w", ErrPersistence, err))
	}
}

func (c *Catalog) saveLoans() {
	if c.store == nil {
		return
	}
	if err := c.store.SaveLoans(c.ledger.Loans()); err != nil {
		c.log.Error("save loans", "err", fmt.Errorf("%w: %w", ErrPersistence, err))
	}
}

func (c *Catalog) record(format string, args ...any) {
	if c.audit == nil {
		return
	}
	desc := fmt.Sprintf(format, args...)
	if err := c.audit.Record(desc); err != nil {
		c.log.Error("audit", "entry", desc, "err", fmt.Errorf("%w: %w", ErrAudit, err))
	}
}

// ------------------ Lookups ------------------

func (c *Catalog) findBook(id string) *Book {
	for _, b := range c.books {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (c *Catalog) findUser(id string) *User {
	for _, u := range c.users {
		if u.UserID == id {
			return u
		}
	}
	return nil
}

func (c *Catalog) bookSnapshot() []Book {
	books := make([]Book, len(c.books))
	for i, b := range c.books {
		books[i] = *b
	}
	return books
}

// newID returns an 8 character id not yet used by exists.
func newID(exists func(string) bool) string {
	for {
		id := strings.ToUpper(uuid.NewString()[:8])
		if !exists(id) {
			return id
		}
	}
}

// FindBook returns a copy of the book with the given id.
func (c *Catalog) FindBook(id string) (Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.findBook(id)
	if b == nil {
		return Book{}, fmt.Errorf("book %s: %w", id, ErrBookNotFound)
	}
	return *b, nil
}

// FindUser returns a copy of the user with the given id.
func (c *Catalog) FindUser(id string) (User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := c.findUser(id)
	if u == nil {
		return User{}, fmt.Errorf("user %s: %w", id, ErrUserNotFound)
	}
	return *u, nil
}

// ------------------ Books ------------------

// AddBook inserts b as an available book. An empty id is replaced by a
// generated one. The stored book is returned.
func (c *Catalog) AddBook(b Book) (Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b.ID == "" {
		b.ID = newID(func(id string) bool { return c.findBook(id) != nil })
	} else if c.findBook(b.ID) != nil {
		return Book{}, fmt.Errorf("book %s: %w", b.ID, ErrDuplicateID)
	}
	b.IsAvailable = true
	c.books = append(c.books, &b)

	c.saveBooks()
	c.record("Added book %s %q by %s", b.ID, b.Title, b.Author)
	return b, nil
}

// RemoveBook deletes the book. A borrowed book cannot be removed.
func (c *Catalog) RemoveBook(id string) (Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.books, func(b *Book) bool { return b.ID == id })
	if i < 0 {
		return Book{}, fmt.Errorf("book %s: %w", id, ErrBookNotFound)
	}
	b := c.books[i]
	if !b.IsAvailable {
		return Book{}, fmt.Errorf("cannot remove %q: %w", b.Title, ErrBookOnLoan)
	}
	c.books = slices.Delete(c.books, i, i+1)

	c.saveBooks()
	c.record("Removed book %s %q", b.ID, b.Title)
	return *b, nil
}

// UpdateBook replaces title, author, genre and year. Id and availability
// are left alone.
func (c *Catalog) UpdateBook(id, title, author, genre string, year int) (Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b := c.findBook(id)
	if b == nil {
		return Book{}, fmt.Errorf("book %s: %w", id, ErrBookNotFound)
	}
	b.Title = title
	b.Author = author
	b.Genre = genre
	b.Year = year

	c.saveBooks()
	c.record("Updated book %s: %q by %s, %s, %d", b.ID, b.Title, b.Author, b.Genre, b.Year)
	return *b, nil
}

// SearchBooks yields, in catalog order, the books whose title or author
// contains keyword, ignoring case.
func (c *Catalog) SearchBooks(keyword string) iter.Seq[Book] {
	return c.matching(func(b *Book) bool {
		return containsFold(b.Title, keyword) || containsFold(b.Author, keyword)
	})
}

// FilterBooks yields the books of genre (ignoring case) and, unless year is
// zero, of that publication year.
func (c *Catalog) FilterBooks(genre string, year int) iter.Seq[Book] {
	return c.matching(func(b *Book) bool {
		return equalFold(b.Genre, genre) && (year == 0 || b.Year == year)
	})
}

// matching snapshots the catalog when the sequence is ranged and filters the
// snapshot lazily, so a consumer may call back into the catalog while ranging.
func (c *Catalog) matching(keep func(*Book) bool) iter.Seq[Book] {
	return func(yield func(Book) bool) {
		c.mu.Lock()
		books := c.bookSnapshot()
		c.mu.Unlock()

		for _, b := range books {
			if keep(&b) && !yield(b) {
				return
			}
		}
	}
}

// ListBooks returns every book in insertion order, or ErrCatalogEmpty.
func (c *Catalog) ListBooks() ([]Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.books) == 0 {
		return nil, ErrCatalogEmpty
	}
	return c.bookSnapshot(), nil
}

// ------------------ Users ------------------

// AddUser registers u. An empty id is replaced by a generated one.
func (c *Catalog) AddUser(u User) (User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if u.UserID == "" {
		u.UserID = newID(func(id string) bool { return c.findUser(id) != nil })
	} else if c.findUser(u.UserID) != nil {
		return User{}, fmt.Errorf("user %s: %w", u.UserID, ErrDuplicateID)
	}
	c.users = append(c.users, &u)

	c.saveUsers()
	c.record("Registered user %s (%s)", u.UserID, u.FullName())
	return u, nil
}

// RemoveUser deletes the user. A user holding books cannot be removed.
func (c *Catalog) RemoveUser(id string) (User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.users, func(u *User) bool { return u.UserID == id })
	if i < 0 {
		return User{}, fmt.Errorf("user %s: %w", id, ErrUserNotFound)
	}
	u := c.users[i]
	if c.ledger.HasLoans(id) {
		return User{}, fmt.Errorf("cannot remove %s: %w", u.FullName(), ErrUserHasLoans)
	}
	c.users = slices.Delete(c.users, i, i+1)

	c.saveUsers()
	c.record("Removed user %s (%s)", u.UserID, u.FullName())
	return *u, nil
}

// ListUsers returns every user in registration order, or ErrNoUsers.
func (c *Catalog) ListUsers() ([]User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.users) == 0 {
		return nil, ErrNoUsers
	}
	users := make([]User, len(c.users))
	for i, u := range c.users {
		users[i] = *u
	}
	return users, nil
}

// ------------------ Circulation ------------------

// BorrowBook lends the book to the user. Checks run in order: user exists,
// book exists, book is available.
func (c *Catalog) BorrowBook(userID, bookID string) (Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	u := c.findUser(userID)
	if u == nil {
		return Book{}, fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}
	b := c.findBook(bookID)
	if b == nil {
		return Book{}, fmt.Errorf("book %s: %w", bookID, ErrBookNotFound)
	}
	if err := c.ledger.Borrow(userID, b); err != nil {
		return Book{}, err
	}

	c.saveBooks()
	c.saveLoans()
	c.record("User %s (%s) borrowed book %s %q", u.UserID, u.FullName(), b.ID, b.Title)
	return *b, nil
}

// ReturnBook takes the book back from the user holding it.
func (c *Catalog) ReturnBook(userID, bookID string) (Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.ledger.Return(userID, bookID)
	if err != nil {
		return Book{}, err
	}

	c.saveBooks()
	c.saveLoans()
	c.record("User %s returned book %s %q", userID, b.ID, b.Title)
	return *b, nil
}

// ListUserBooks returns the books the user holds in borrow order, or
// ErrNothingBorrowed.
func (c *Catalog) ListUserBooks(userID string) ([]Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	held := c.ledger.Held(userID)
	if len(held) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNothingBorrowed)
	}
	books := make([]Book, len(held))
	for i, b := range held {
		books[i] = *b
	}
	return books, nil
}

// Borrower returns the id of the user holding bookID, if any.
func (c *Catalog) Borrower(bookID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ledger.Holder(bookID)
}
