package library

import "fmt"

// Book represents a catalog entry and its current availability.
// Format is empty for printed books and names the file format (EPUB, PDF, ...)
// for electronic ones.
type Book struct {
	ID          string `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Author      string `json:"author" db:"author"`
	Genre       string `json:"genre" db:"genre"`
	Year        int    `json:"year" db:"year"`
	Format      string `json:"format,omitempty" db:"format"`
	IsAvailable bool   `json:"is_available" db:"is_available"`
}

// NewBook returns an available book.
func NewBook(id, title, author, genre string, year int) Book {
	return Book{
		ID:          id,
		Title:       title,
		Author:      author,
		Genre:       genre,
		Year:        year,
		IsAvailable: true,
	}
}

// IsElectronic reports whether the book is an e-book.
func (b Book) IsElectronic() bool { return b.Format != "" }

func (b Book) String() string {
	status := "Available"
	if !b.IsAvailable {
		status = "Borrowed"
	}
	s := fmt.Sprintf("%s: %s by %s (%d) - %s", b.ID, b.Title, b.Author, b.Year, status)
	if b.IsElectronic() {
		s += " [" + b.Format + "]"
	}
	return s
}

// User represents a registered library user.
type User struct {
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	UserID    string `json:"user_id" db:"user_id"`
}

func (u User) String() string {
	return fmt.Sprintf("%s: %s %s", u.UserID, u.FirstName, u.LastName)
}

// FullName joins first and last name.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Loan is the persisted form of a ledger entry: the books a user currently
// holds, in borrow order.
type Loan struct {
	UserID  string   `json:"user_id"`
	BookIDs []string `json:"book_ids"`
}
