package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-catalog/config"
	"library-catalog/library"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile   string
		overrides config.Config
	)

	cmd := &cobra.Command{
		Use:          "library",
		Short:        "Manage a local library catalog of books, users and loans",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Resolve(envFile, overrides)
			if err != nil {
				return err
			}
			logger := cfg.Logger()

			catalog, closeAll := openCatalog(cfg, logger)
			defer closeAll()

			interactive := false
			if f, ok := cmd.InOrStdin().(*os.File); ok {
				interactive = term.IsTerminal(int(f.Fd()))
			}
			newShell(cmd.InOrStdin(), cmd.OutOrStdout(), catalog, interactive).run()
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&envFile, "env-file", ".env", "optional file of KEY=value settings")
	flags.StringVar(&overrides.StoreDriver, "driver", "", "record store driver: sqlite or json (env "+config.EnvStoreDriver+")")
	flags.StringVar(&overrides.StorePath, "store", "", "database file or JSON directory (env "+config.EnvStorePath+")")
	flags.StringVar(&overrides.AuditLog, "audit-log", "", "audit log file (env "+config.EnvAuditLog+")")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "debug, info, warn or error (env "+config.EnvLogLevel+")")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return cmd
}

// openCatalog opens the store and audit log named by cfg and loads the
// catalog. A store or audit log that cannot be opened is logged and the
// catalog runs without it.
func openCatalog(cfg config.Config, logger *slog.Logger) (*library.Catalog, func()) {
	var closers []io.Closer

	var store library.RecordStore
	if s, err := library.OpenStore(cfg.StoreDriver, cfg.StorePath); err != nil {
		logger.Error("open record store, changes will not be saved",
			"driver", cfg.StoreDriver, "path", cfg.StorePath,
			"err", fmt.Errorf("%w: %w", library.ErrPersistence, err))
	} else {
		store = s
		closers = append(closers, s)
	}

	var audit library.Auditor
	if a, err := library.OpenAuditLog(cfg.AuditLog); err != nil {
		logger.Error("open audit log, actions will not be audited",
			"path", cfg.AuditLog, "err", fmt.Errorf("%w: %w", library.ErrAudit, err))
	} else {
		audit = a
		closers = append(closers, a)
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warn("close", "err", err)
			}
		}
	}
	return library.NewCatalog(store, audit, logger), closeAll
}
