package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Additive only: columns are appended and never dropped, so older binaries keep reading the table.
func applyMigrations(ctx context.Context, db *sql.DB, driver string) error {
	if err := ensureColumn(ctx, db, driver, "kv_entries", "created_at_ms", "BIGINT NOT NULL DEFAULT 0"); err != nil {
		return err
	}
	if err := ensureColumn(ctx, db, driver, "kv_entries", "write_count", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}

	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_kv_entries_updated_at_ms ON kv_entries(updated_at_ms);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func ensureColumn(ctx context.Context, db *sql.DB, driver, table, column, definition string) error {
	if !isSafeIdentifier(table) || !isSafeIdentifier(column) {
		return fmt.Errorf("unsafe identifier: table=%q column=%q", table, column)
	}

	exists, err := columnExists(ctx, db, driver, table, column)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", table, column, definition)
	if driver == "pgx" {
		stmt = fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s;", table, column, definition)
	}
	_, err = db.ExecContext(ctx, stmt)
	return err
}

func columnExists(ctx context.Context, db *sql.DB, driver, table, column string) (bool, error) {
	if driver == "sqlite" {
		return columnExistsSQLite(ctx, db, table, column)
	}
	return columnExistsPostgres(ctx, db, table, column)
}

func columnExistsSQLite(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s);", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func columnExistsPostgres(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	const q = `SELECT 1
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		AND table_name = $1
		AND column_name = $2;`
	var one int
	if err := db.QueryRowContext(ctx, q, table, column).Scan(&one); err != nil {
		if isMissing(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isSafeIdentifier(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !isLetter && !isDigit && r != '_' {
			return false
		}
	}
	return true
}
