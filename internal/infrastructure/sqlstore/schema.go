package sqlstore

import (
	"context"
	"fmt"
)

// Column limits shared by every dialect. The CHECK constraints make the
// limits hold on SQLite, which does not enforce VARCHAR lengths.
const (
	maxItemLen     = 255
	maxCategoryLen = 100
	maxDetailLen   = 100
	maxSourceLen   = 255
)

var postgresSchema = []string{
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS expenses (
		id BIGSERIAL PRIMARY KEY,
		item VARCHAR(%[1]d) NOT NULL,
		category VARCHAR(%[2]d) NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		payment_mode VARCHAR(20) NOT NULL,
		card_type VARCHAR(%[3]d),
		bank_name VARCHAR(%[3]d),
		upi_provider VARCHAR(%[3]d),
		purchase_date DATE NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`, maxItemLen, maxCategoryLen, maxDetailLen),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS income (
		id BIGSERIAL PRIMARY KEY,
		source VARCHAR(%d) NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		income_date DATE NOT NULL,
		payslip_url TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`, maxSourceLen),
	`CREATE INDEX IF NOT EXISTS idx_expenses_created_at ON expenses (created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_income_created_at ON income (created_at DESC, id DESC)`,
}

var mysqlSchema = []string{
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS expenses (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		item VARCHAR(%[1]d) NOT NULL,
		category VARCHAR(%[2]d) NOT NULL,
		amount DECIMAL(14,2) NOT NULL,
		payment_mode VARCHAR(20) NOT NULL,
		card_type VARCHAR(%[3]d) NULL,
		bank_name VARCHAR(%[3]d) NULL,
		upi_provider VARCHAR(%[3]d) NULL,
		purchase_date DATE NOT NULL,
		remarks TEXT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_expenses_created_at (created_at, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, maxItemLen, maxCategoryLen, maxDetailLen),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS income (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		source VARCHAR(%d) NOT NULL,
		amount DECIMAL(14,2) NOT NULL,
		income_date DATE NOT NULL,
		payslip_url TEXT NULL,
		created_at DATETIME(6) NOT NULL,
		INDEX idx_income_created_at (created_at, id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, maxSourceLen),
}

// SQLite stores amounts as TEXT so decimals round-trip exactly.
var sqliteSchema = []string{
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS expenses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		item TEXT NOT NULL CHECK (length(item) <= %[1]d),
		category TEXT NOT NULL CHECK (length(category) <= %[2]d),
		amount TEXT NOT NULL,
		payment_mode TEXT NOT NULL,
		card_type TEXT CHECK (card_type IS NULL OR length(card_type) <= %[3]d),
		bank_name TEXT CHECK (bank_name IS NULL OR length(bank_name) <= %[3]d),
		upi_provider TEXT CHECK (upi_provider IS NULL OR length(upi_provider) <= %[3]d),
		purchase_date DATE NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL
	)`, maxItemLen, maxCategoryLen, maxDetailLen),
	fmt.Sprintf(`CREATE TABLE IF NOT EXISTS income (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL CHECK (length(source) <= %d),
		amount TEXT NOT NULL,
		income_date DATE NOT NULL,
		payslip_url TEXT,
		created_at DATETIME NOT NULL
	)`, maxSourceLen),
	`CREATE INDEX IF NOT EXISTS idx_expenses_created_at ON expenses (created_at, id)`,
	`CREATE INDEX IF NOT EXISTS idx_income_created_at ON income (created_at, id)`,
}

func schemaFor(d Dialect) []string {
	switch d {
	case Postgres:
		return postgresSchema
	case MySQL:
		return mysqlSchema
	default:
		return sqliteSchema
	}
}

// Migrate creates the expenses and income tables if they do not exist.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range schemaFor(db.dialect) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
