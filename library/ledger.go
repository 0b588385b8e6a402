package library

import (
	"fmt"
	"maps"
	"slices"
)

// Ledger tracks which books each user currently holds. It stores references
// to the catalog's own Book values and keeps Book.IsAvailable in step with
// membership: a book is available iff no entry holds it.
type Ledger struct {
	entries map[string][]*Book
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string][]*Book)}
}

// Borrow moves b from Available to Borrowed and appends it to the user's
// entry, creating the entry on first borrow.
func (l *Ledger) Borrow(userID string, b *Book) error {
	if !b.IsAvailable {
		return fmt.Errorf("%q: %w", b.Title, ErrAlreadyBorrowed)
	}
	b.IsAvailable = false
	l.entries[userID] = append(l.entries[userID], b)
	return nil
}

// Return moves the book from Borrowed back to Available. Only the holder can
// return a book. The user's entry is dropped once it is empty.
func (l *Ledger) Return(userID, bookID string) (*Book, error) {
	held := l.entries[userID]
	if len(held) == 0 {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNoBorrowedBooks)
	}
	i := slices.IndexFunc(held, func(b *Book) bool { return b.ID == bookID })
	if i < 0 {
		return nil, fmt.Errorf("book %s: %w", bookID, ErrBookNotInLedger)
	}
	b := held[i]
	held = slices.Delete(held, i, i+1)
	if len(held) == 0 {
		delete(l.entries, userID)
	} else {
		l.entries[userID] = held
	}
	b.IsAvailable = true
	return b, nil
}

// Held returns the user's books in borrow order.
func (l *Ledger) Held(userID string) []*Book {
	return slices.Clone(l.entries[userID])
}

// HasLoans reports whether the user holds at least one book.
func (l *Ledger) HasLoans(userID string) bool {
	return len(l.entries[userID]) > 0
}

// Holder scans the entries for the user holding bookID.
func (l *Ledger) Holder(bookID string) (string, bool) {
	for userID, held := range l.entries {
		for _, b := range held {
			if b.ID == bookID {
				return userID, true
			}
		}
	}
	return "", false
}

// Loans returns the ledger in persisted form, ordered by user id.
func (l *Ledger) Loans() []Loan {
	loans := make([]Loan, 0, len(l.entries))
	for _, userID := range slices.Sorted(maps.Keys(l.entries)) {
		held := l.entries[userID]
		ids := make([]string, len(held))
		for i, b := range held {
			ids[i] = b.ID
		}
		loans = append(loans, Loan{UserID: userID, BookIDs: ids})
	}
	return loans
}

// Len returns the number of users holding books.
func (l *Ledger) Len() int { return len(l.entries) }
