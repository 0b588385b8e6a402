package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"library-catalog/config"
	"library-catalog/library"
)

func main() {
	if err := newImportCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var (
		envFile   string
		csvPath   string
		overrides config.Config
	)

	cmd := &cobra.Command{
		Use:          "import_books",
		Short:        "Import books from a CSV file (id,title,author,genre,year[,format])",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Resolve(envFile, overrides)
			if err != nil {
				return err
			}
			logger := cfg.Logger()

			f, err := os.Open(csvPath)
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer f.Close()

			store, err := library.OpenStore(cfg.StoreDriver, cfg.StorePath)
			if err != nil {
				return fmt.Errorf("open record store: %w", err)
			}
			defer store.Close()

			var audit library.Auditor
			if a, err := library.OpenAuditLog(cfg.AuditLog); err != nil {
				logger.Error("open audit log", "err", fmt.Errorf("%w: %w", library.ErrAudit, err))
			} else {
				defer a.Close()
				audit = a
			}

			catalog := library.NewCatalog(store, audit, logger)
			return importBooks(cmd.OutOrStdout(), f, catalog)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "books.csv", "CSV file to import")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "optional file of KEY=value settings")
	cmd.Flags().StringVar(&overrides.StoreDriver, "driver", "", "record store driver: sqlite or json")
	cmd.Flags().StringVar(&overrides.StorePath, "store", "", "database file or JSON directory")
	cmd.Flags().StringVar(&overrides.AuditLog, "audit-log", "", "audit log file")
	cmd.Flags().StringVar(&overrides.LogLevel, "log-level", "", "debug, info, warn or error")
	return cmd
}

// importBooks adds every row of r to catalog and prints a line per row plus
// a summary. A header row is recognised by its non-numeric year column.
func importBooks(out io.Writer, r io.Reader, catalog *library.Catalog) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	successCount := 0
	errorCount := 0

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}

		if line == 1 && isHeader(rec) {
			continue
		}
		book, err := parseRecord(rec)
		if err != nil {
			fmt.Fprintf(out, "Line %d: ERROR - %v\n", line, err)
			errorCount++
			continue
		}

		fmt.Fprintf(out, "Importing: %s by %s... ", book.Title, book.Author)
		added, err := catalog.AddBook(book)
		if err != nil {
			fmt.Fprintf(out, "ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Fprintf(out, "SUCCESS (ID: %s)\n", added.ID)
		successCount++
	}

	fmt.Fprintf(out, "\nImport complete!\n")
	fmt.Fprintf(out, "Successfully imported: %d books\n", successCount)
	fmt.Fprintf(out, "Errors: %d\n", errorCount)
	return nil
}

// isHeader reports whether rec is a full row whose year column is not a number.
func isHeader(rec []string) bool {
	if len(rec) < 5 {
		return false
	}
	_, err := strconv.Atoi(strings.TrimSpace(rec[4]))
	return err != nil
}

func parseRecord(rec []string) (library.Book, error) {
	if len(rec) < 5 {
		return library.Book{}, fmt.Errorf("want at least 5 fields, got %d", len(rec))
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	year, err := strconv.Atoi(rec[4])
	if err != nil {
		return library.Book{}, fmt.Errorf("invalid year %q", rec[4])
	}
	b := library.NewBook(rec[0], rec[1], rec[2], rec[3], year)
	if len(rec) > 5 {
		b.Format = strings.ToUpper(rec[5])
	}
	return b, nil
}
