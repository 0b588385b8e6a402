package library

import "errors"

var (
	ErrDuplicateID     = errors.New("id already exists")
	ErrBookNotFound    = errors.New("book not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrAlreadyBorrowed = errors.New("book is already borrowed")
	ErrNoBorrowedBooks = errors.New("user has no borrowed books")
	ErrBookNotInLedger = errors.New("book is not among the user's borrowed books")

	// ErrBookOnLoan and ErrUserHasLoans guard removals so the ledger never
	// references a removed book or user.
	ErrBookOnLoan   = errors.New("book is currently borrowed")
	ErrUserHasLoans = errors.New("user still holds borrowed books")

	// List signals.
	ErrCatalogEmpty    = errors.New("the library is empty")
	ErrNoUsers         = errors.New("no registered users")
	ErrNothingBorrowed = errors.New("user has not borrowed any books")

	// Logged, never returned from catalog operations.
	ErrPersistence = errors.New("persistence failure")
	ErrAudit       = errors.New("audit failure")
)
