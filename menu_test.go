package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"library-catalog/library"
)

// runShell feeds lines to a non-prompting shell and returns its output.
func runShell(t *testing.T, catalog *library.Catalog, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	newShell(in, &out, catalog, false).run()
	return out.String()
}

func TestShellScenario(t *testing.T) {
	catalog := library.NewCatalog(nil, nil, nil)

	out := runShell(t, catalog,
		"6",
		"1", "B1", "Dune", "Herbert", "SciFi", "1965", "",
		"7", "U1", "Ann", "Lee",
		"10", "U1", "B1",
		"12", "U1",
		"4", "dune",
		"5", "scifi", "1999",
		"11", "U1", "B1",
		"12", "U1",
		"0",
	)

	assert.Contains(t, out, "The library is empty.")
	assert.Contains(t, out, `Book "Dune" added with ID B1.`)
	assert.Contains(t, out, "User Ann Lee registered with ID U1.")
	assert.Contains(t, out, `User U1 borrowed "Dune".`)
	assert.Contains(t, out, "Books borrowed by U1:\nB1: Dune by Herbert (1965) - Borrowed")
	assert.Contains(t, out, "No books match the filter.")
	assert.Contains(t, out, `User U1 returned "Dune".`)
	assert.Contains(t, out, "User U1 has not borrowed any books.")
	assert.True(t, strings.HasSuffix(out, "Goodbye!\n"))
}

func TestShellReportsErrors(t *testing.T) {
	catalog := library.NewCatalog(nil, nil, nil)

	out := runShell(t, catalog,
		"1", "B1", "Dune", "Herbert", "SciFi", "nineteen", "",
		"10", "U9", "B1",
		"11", "U9", "B1",
		"3", "B1",
		"9",
		"42",
	)

	assert.Contains(t, out, "Invalid year: nineteen")
	assert.Contains(t, out, "Error: user U9: user not found")
	assert.Contains(t, out, "Error: user U9: user has no borrowed books")
	assert.Contains(t, out, "Error: book B1: book not found")
	assert.Contains(t, out, "No registered users.")
	assert.Contains(t, out, `Unknown option "42".`)
}

func TestShellUpdateAndList(t *testing.T) {
	catalog := library.NewCatalog(nil, nil, nil)
	_, _ = catalog.AddBook(library.NewBook("B1", "Dune", "Herbert", "SciFi", 1965))

	out := runShell(t, catalog,
		"2", "B1", "Dune", "Frank Herbert", "SciFi", "1966",
		"6",
		"5", "SciFi", "",
	)

	assert.Contains(t, out, "Book updated: B1: Dune by Frank Herbert (1966) - Available")
	assert.Contains(t, out, "Books in the library:\nB1: Dune by Frank Herbert (1966) - Available")
}

func TestShellStopsAtEndOfInput(t *testing.T) {
	catalog := library.NewCatalog(nil, nil, nil)

	// Input ends halfway through an add: nothing is added.
	out := runShell(t, catalog, "1", "B1", "Dune")
	assert.NotContains(t, out, "added")

	_, err := catalog.ListBooks()
	assert.ErrorIs(t, err, library.ErrCatalogEmpty)
}
