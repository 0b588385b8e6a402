package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"library-catalog/library"
)

const menuText = `
 1. Add book            7. Add user
 2. Update book         8. Remove user
 3. Remove book         9. List users
 4. Search books       10. Borrow book
 5. Filter books       11. Return book
 6. List books         12. List user's books
 0. Exit`

// shell is the numbered command loop. It collects raw text, calls the
// catalog and prints the outcome. Prompts are printed only when attached to a
// terminal.
type shell struct {
	sc      *bufio.Scanner
	out     io.Writer
	catalog *library.Catalog
	prompt  bool
}

func newShell(in io.Reader, out io.Writer, catalog *library.Catalog, prompt bool) *shell {
	return &shell{sc: bufio.NewScanner(in), out: out, catalog: catalog, prompt: prompt}
}

func (s *shell) run() {
	if s.prompt {
		fmt.Fprintln(s.out, "Welcome to the Library Catalog!")
	}
	for {
		if s.prompt {
			fmt.Fprintln(s.out, menuText)
		}
		choice, ok := s.ask("\n> ")
		if !ok {
			return
		}

		switch choice {
		case "1":
			s.handleAddBook()
		case "2":
			s.handleUpdateBook()
		case "3":
			s.handleRemoveBook()
		case "4":
			s.handleSearchBooks()
		case "5":
			s.handleFilterBooks()
		case "6":
			s.handleListBooks()
		case "7":
			s.handleAddUser()
		case "8":
			s.handleRemoveUser()
		case "9":
			s.handleListUsers()
		case "10":
			s.handleBorrow()
		case "11":
			s.handleReturn()
		case "12":
			s.handleListUserBooks()
		case "0":
			fmt.Fprintln(s.out, "Goodbye!")
			return
		case "":
		default:
			fmt.Fprintf(s.out, "Unknown option %q.\n", choice)
		}
	}
}

// ask prints label (when prompting) and reads one trimmed line.
func (s *shell) ask(label string) (string, bool) {
	if s.prompt {
		fmt.Fprint(s.out, label)
	}
	if !s.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.sc.Text()), true
}

// askAll reads one line per label, stopping at end of input.
func (s *shell) askAll(labels ...string) ([]string, bool) {
	answers := make([]string, len(labels))
	for i, label := range labels {
		v, ok := s.ask(label)
		if !ok {
			return nil, false
		}
		answers[i] = v
	}
	return answers, true
}

func (s *shell) fail(err error) {
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

// parseYear accepts an empty string as "no year" when optional is set.
func (s *shell) parseYear(raw string, optional bool) (int, bool) {
	if raw == "" && optional {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid year: %s\n", raw)
		return 0, false
	}
	return year, true
}

// ------------------ Books ------------------

func (s *shell) handleAddBook() {
	in, ok := s.askAll("Book ID (empty to generate): ", "Title: ", "Author: ", "Genre: ", "Year: ", "Format (empty for print): ")
	if !ok {
		return
	}
	year, ok := s.parseYear(in[4], false)
	if !ok {
		return
	}
	b := library.NewBook(in[0], in[1], in[2], in[3], year)
	b.Format = strings.ToUpper(in[5])

	added, err := s.catalog.AddBook(b)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Book %q added with ID %s.\n", added.Title, added.ID)
}

func (s *shell) handleUpdateBook() {
	in, ok := s.askAll("Book ID: ", "New title: ", "New author: ", "New genre: ", "New year: ")
	if !ok {
		return
	}
	year, ok := s.parseYear(in[4], false)
	if !ok {
		return
	}
	b, err := s.catalog.UpdateBook(in[0], in[1], in[2], in[3], year)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Book updated: %s\n", b)
}

func (s *shell) handleRemoveBook() {
	id, ok := s.ask("Book ID: ")
	if !ok {
		return
	}
	b, err := s.catalog.RemoveBook(id)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "Book %q removed.\n", b.Title)
}

func (s *shell) handleSearchBooks() {
	keyword, ok := s.ask("Keyword (title or author): ")
	if !ok {
		return
	}
	found := 0
	for b := range s.catalog.SearchBooks(keyword) {
		fmt.Fprintln(s.out, b)
		found++
	}
	if found == 0 {
		fmt.Fprintf(s.out, "No books match %q.\n", keyword)
	}
}

func (s *shell) handleFilterBooks() {
	in, ok := s.askAll("Genre: ", "Year (empty for any): ")
	if !ok {
		return
	}
	year, ok := s.parseYear(in[1], true)
	if !ok {
		return
	}
	found := 0
	for b := range s.catalog.FilterBooks(in[0], year) {
		fmt.Fprintln(s.out, b)
		found++
	}
	if found == 0 {
		fmt.Fprintln(s.out, "No books match the filter.")
	}
}

func (s *shell) handleListBooks() {
	books, err := s.catalog.ListBooks()
	if errors.Is(err, library.ErrCatalogEmpty) {
		fmt.Fprintln(s.out, "The library is empty.")
		return
	}
	fmt.Fprintln(s.out, "Books in the library:")
	for _, b := range books {
		fmt.Fprintln(s.out, b)
	}
}

// ------------------ Users ------------------

func (s *shell) handleAddUser() {
	in, ok := s.askAll("User ID (empty to generate): ", "First name: ", "Last name: ")
	if !ok {
		return
	}
	u, err := s.catalog.AddUser(library.User{UserID: in[0], FirstName: in[1], LastName: in[2]})
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "User %s registered with ID %s.\n", u.FullName(), u.UserID)
}

func (s *shell) handleRemoveUser() {
	id, ok := s.ask("User ID: ")
	if !ok {
		return
	}
	u, err := s.catalog.RemoveUser(id)
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "User %s removed.\n", u.FullName())
}

func (s *shell) handleListUsers() {
	users, err := s.catalog.ListUsers()
	if errors.Is(err, library.ErrNoUsers) {
		fmt.Fprintln(s.out, "No registered users.")
		return
	}
	fmt.Fprintln(s.out, "Registered users:")
	for _, u := range users {
		fmt.Fprintln(s.out, u)
	}
}

// ------------------ Circulation ------------------

func (s *shell) handleBorrow() {
	in, ok := s.askAll("User ID: ", "Book ID: ")
	if !ok {
		return
	}
	b, err := s.catalog.BorrowBook(in[0], in[1])
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "User %s borrowed %q.\n", in[0], b.Title)
}

func (s *shell) handleReturn() {
	in, ok := s.askAll("User ID: ", "Book ID: ")
	if !ok {
		return
	}
	b, err := s.catalog.ReturnBook(in[0], in[1])
	if err != nil {
		s.fail(err)
		return
	}
	fmt.Fprintf(s.out, "User %s returned %q.\n", in[0], b.Title)
}

func (s *shell) handleListUserBooks() {
	id, ok := s.ask("User ID: ")
	if !ok {
		return
	}
	books, err := s.catalog.ListUserBooks(id)
	if errors.Is(err, library.ErrNothingBorrowed) {
		fmt.Fprintf(s.out, "User %s has not borrowed any books.\n", id)
		return
	}
	fmt.Fprintf(s.out, "Books borrowed by %s:\n", id)
	for _, b := range books {
		fmt.Fprintln(s.out, b)
	}
}
