package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"

	"spendlog/internal/domain/entry"
)

// MySQL server error numbers that mean the row itself was rejected.
var mysqlConstraintErrors = map[uint16]bool{
	1048: true, // column cannot be null
	1062: true, // duplicate entry
	1264: true, // out of range value
	1406: true, // data too long
	1451: true, // foreign key parent
	1452: true, // foreign key child
	3819: true, // check constraint violated
}

// SQLite primary result codes.
const (
	sqliteBusy       = 5
	sqliteLocked     = 6
	sqliteCantOpen   = 14
	sqliteTooBig     = 18
	sqliteConstraint = 19
)

// classify maps a driver error onto the persistence failure kinds.
func classify(err error) entry.PersistKind {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23", "22":
			return entry.KindConstraintViolation
		case "08", "53", "57":
			return entry.KindStoreUnavailable
		}
		return entry.KindStoreError
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if mysqlConstraintErrors[myErr.Number] {
			return entry.KindConstraintViolation
		}
		return entry.KindStoreError
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqliteConstraint, sqliteTooBig:
			return entry.KindConstraintViolation
		case sqliteBusy, sqliteLocked, sqliteCantOpen:
			return entry.KindStoreUnavailable
		}
		return entry.KindStoreError
	}

	var netErr net.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return entry.KindStoreUnavailable
	}
	return entry.KindStoreError
}

// persistError wraps err for the service. row is the 1-based record of the
// batch being written, or 0 when the failure is not tied to one.
func persistError(err error, row int) error {
	return &entry.PersistError{Kind: classify(err), Row: row, Err: err}
}
