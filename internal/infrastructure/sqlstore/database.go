package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"
)

var dbTracer = otel.Tracer("spendlog.db")

// Dialect captures what differs between the supported SQL backends.
type Dialect struct {
	Driver string // database/sql driver name
	System string // otel db.system attribute
	// Returning is true when INSERT ... RETURNING id is used instead of
	// LastInsertId.
	Returning bool
	// Numbered is true for $1, $2 placeholders.
	Numbered bool
}

var (
	Postgres = Dialect{Driver: "postgres", System: "postgresql", Returning: true, Numbered: true}
	MySQL    = Dialect{Driver: "mysql", System: "mysql"}
	SQLite   = Dialect{Driver: "sqlite", System: "sqlite"}
)

// DialectFor maps a backend name from configuration to its dialect.
func DialectFor(backend string) (Dialect, error) {
	switch strings.ToLower(backend) {
	case "postgres", "postgresql":
		return Postgres, nil
	case "mysql":
		return MySQL, nil
	case "sqlite":
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported sql backend %q", backend)
}

// Rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// DB is a *sql.DB that records a span per statement.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Open connects to dsn with the dialect's driver and verifies the connection.
func Open(ctx context.Context, d Dialect, dsn string) (*DB, error) {
	db, err := sql.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if d == SQLite {
		// One writer at a time keeps SQLite out of SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, dialect: d}, nil
}

// MySQLDSN builds a DSN for the MySQL driver. Times are read back as UTC
// time.Time values and UPDATE reports matched rather than changed rows.
func MySQLDSN(host, port, user, password, name string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + port
	cfg.DBName = name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

// SQLiteDSN returns a DSN for a database file. Times are written in SQLite's
// own sortable format.
func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=busy_timeout(5000)&_time_format=sqlite"
}

func (db *DB) Dialect() Dialect { return db.dialect }

func (db *DB) startSpan(ctx context.Context, name, query string) (context.Context, trace.Span) {
	return dbTracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.system", db.dialect.System),
		attribute.String("db.operation", extractSQLVerb(query)),
		attribute.String("db.statement", sanitizeQuery(query)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// QueryContext rebinds and traces sql.DB.QueryContext.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	query = db.dialect.Rebind(query)
	ctx, span := db.startSpan(ctx, "db.Query", query)
	rows, err := db.DB.QueryContext(ctx, query, args...)
	endSpan(span, err)
	return rows, err
}

// ExecContext rebinds and traces sql.DB.ExecContext.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = db.dialect.Rebind(query)
	ctx, span := db.startSpan(ctx, "db.Exec", query)
	result, err := db.DB.ExecContext(ctx, query, args...)
	endSpan(span, err)
	return result, err
}

// Tx is a traced transaction. Statements are rebound like on DB.
type Tx struct {
	tx   *sql.Tx
	db   *DB
	span trace.Span
}

// BeginTx opens a transaction whose span lasts until Commit or Rollback.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, context.Context, error) {
	ctx, span := dbTracer.Start(ctx, "db.Tx", trace.WithAttributes(
		attribute.String("db.system", db.dialect.System),
	))
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		endSpan(span, err)
		return nil, ctx, err
	}
	return &Tx{tx: tx, db: db, span: span}, ctx, nil
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	query = t.db.dialect.Rebind(query)
	ctx, span := t.db.startSpan(ctx, "db.Exec", query)
	result, err := t.tx.ExecContext(ctx, query, args...)
	endSpan(span, err)
	return result, err
}

// InsertID runs an INSERT and returns the generated id, using RETURNING
// where the dialect has it.
func (t *Tx) InsertID(ctx context.Context, query string, args ...any) (int64, error) {
	if !t.db.dialect.Returning {
		result, err := t.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	query = t.db.dialect.Rebind(query + " RETURNING id")
	ctx, span := t.db.startSpan(ctx, "db.QueryRow", query)
	var id int64
	err := t.tx.QueryRowContext(ctx, query, args...).Scan(&id)
	endSpan(span, err)
	return id, err
}

func (t *Tx) Commit() error {
	if t.span == nil {
		return sql.ErrTxDone
	}
	err := t.tx.Commit()
	endSpan(t.span, err)
	t.span = nil
	return err
}

// Rollback is safe to defer after Commit.
func (t *Tx) Rollback() error {
	if t.span == nil {
		return sql.ErrTxDone
	}
	err := t.tx.Rollback()
	t.span.SetAttributes(attribute.Bool("db.rollback", true))
	endSpan(t.span, err)
	t.span = nil
	return err
}

var (
	stringLiteral  = regexp.MustCompile(`'(?:[^']|'')*'`)
	numericLiteral = regexp.MustCompile(`(^|[^\w$])\d+(?:\.\d+)?`)
	whitespace     = regexp.MustCompile(`\s+`)
)

// sanitizeQuery masks literals so values never end up in traces. Placeholders
// carry no data and are kept.
func sanitizeQuery(q string) string {
	s := stringLiteral.ReplaceAllString(q, "'?'")
	s = numericLiteral.ReplaceAllString(s, "${1}?")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	if len(s) > 256 {
		return s[:256] + "..."
	}
	return s
}

func extractSQLVerb(q string) string {
	fields := strings.Fields(q)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
