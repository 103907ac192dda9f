// Package backend opens the entry store and upload store the configuration
// selects. Every binary goes through it so they agree on the wiring.
package backend

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"spendlog/internal/domain/entry"
	"spendlog/internal/infrastructure/memory"
	"spendlog/internal/infrastructure/sheets"
	"spendlog/internal/infrastructure/sqlstore"
	"spendlog/internal/infrastructure/uploads"
	"spendlog/internal/shared/config"
)

// Files stores payslips and serves them back.
type Files interface {
	entry.FileStore
	uploads.Opener
}

// Stores holds the opened backends. Close releases them.
type Stores struct {
	Entries entry.Repository
	Files   Files
	// SQL is set for the database/sql backends.
	SQL *sqlstore.DB
	// Sheets is set for the Google Sheets backend.
	Sheets *sheets.Store
}

func (s *Stores) Close() error {
	if s.Entries == nil {
		return nil
	}
	return s.Entries.Close()
}

// OpenEntries connects to the configured entry store.
func OpenEntries(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Println("Using in-memory store; entries are lost on exit")
		return &Stores{Entries: memory.NewStore()}, nil

	case config.BackendSheets:
		st, err := sheets.Open(ctx, cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID)
		if err != nil {
			return nil, err
		}
		log.Printf("Using Google Sheets store %s", cfg.Sheets.SpreadsheetID)
		return &Stores{Entries: st, Sheets: st}, nil
	}

	dialect, err := sqlstore.DialectFor(cfg.Store.Backend)
	if err != nil {
		return nil, err
	}
	db, err := sqlstore.Open(ctx, dialect, DSN(cfg))
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to %s database", cfg.Store.Backend)
	return &Stores{Entries: sqlstore.NewStore(db), SQL: db}, nil
}

// DSN builds the connection string for the configured SQL backend.
func DSN(cfg *config.Config) string {
	switch cfg.Store.Backend {
	case config.BackendMySQL:
		d := cfg.Database
		return sqlstore.MySQLDSN(d.Host, strconv.Itoa(d.Port), d.User, d.Password, d.DBName)
	case config.BackendSQLite:
		return sqlstore.SQLiteDSN(cfg.SQLite.Path)
	}
	return cfg.Database.ConnectionString()
}

// OpenFiles opens the configured payslip store. now names uploaded files.
func OpenFiles(ctx context.Context, cfg *config.Config, now func() time.Time) (Files, error) {
	switch cfg.Uploads.Backend {
	case config.UploadFirebase:
		fs, err := uploads.NewFirebaseStore(ctx, cfg.Uploads.FirebaseCredentialsFile, cfg.Uploads.FirebaseBucket, now)
		if err != nil {
			return nil, err
		}
		log.Printf("Storing payslips in Firebase bucket %s", cfg.Uploads.FirebaseBucket)
		return fs, nil
	case config.UploadLocal:
		ls, err := uploads.NewLocalStore(cfg.Uploads.Dir, now)
		if err != nil {
			return nil, err
		}
		return ls, nil
	}
	return nil, fmt.Errorf("unsupported upload backend %q", cfg.Uploads.Backend)
}

// Prepare creates whatever the store needs before first use: tables for SQL
// backends, header rows for Sheets. It reports what was done to w.
func (s *Stores) Prepare(ctx context.Context, w io.Writer) error {
	switch {
	case s.SQL != nil:
		if err := sqlstore.Migrate(ctx, s.SQL); err != nil {
			return err
		}
		fmt.Fprintf(w, "Schema ready (%s)\n", s.SQL.Dialect().System)
	case s.Sheets != nil:
		if err := s.Sheets.EnsureHeaders(ctx); err != nil {
			return err
		}
		fmt.Fprintln(w, "Sheet headers ready")
	default:
		fmt.Fprintln(w, "Nothing to prepare for this store")
	}
	return nil
}
