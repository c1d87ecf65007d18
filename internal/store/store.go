// Package store handles SQLite dataset access.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/verte-zerg/empdash/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// DefaultTable is the table read when a source does not name one.
const DefaultTable = "employees"

// Store wraps SQLite access for employee datasets.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenExisting opens a database that must already exist.
func OpenExisting(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return Open(path)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ReadTable returns the header and the rows of a table as text cells.
// NULL becomes an empty cell. kinds follows the declared column types and
// is nil when any column type is not one WriteTable produces.
func (s *Store) ReadTable(ctx context.Context, table string) (header []string, out [][]string, kinds []model.Kind, err error) {
	if table == "" {
		table = DefaultTable
	}
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, nil, nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	header, err = rows.Columns()
	if err != nil {
		return nil, nil, nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, nil, nil, err
	}
	kinds = declaredKinds(types)
	for rows.Next() {
		values := make([]any, len(header))
		ptrs := make([]any, len(header))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, nil, err
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = cellText(v)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}
	return header, out, kinds, nil
}

func declaredKinds(types []*sql.ColumnType) []model.Kind {
	kinds := make([]model.Kind, len(types))
	for i, ct := range types {
		switch strings.ToUpper(ct.DatabaseTypeName()) {
		case "INTEGER":
			kinds[i] = model.KindInt
		case "REAL":
			kinds[i] = model.KindFloat
		case "TEXT":
			kinds[i] = model.KindText
		default:
			return nil
		}
	}
	return kinds
}

// WriteTable replaces table with the contents of tbl.
func (s *Store) WriteTable(ctx context.Context, table string, tbl model.Table) (err error) {
	if table == "" {
		table = DefaultTable
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	name := quoteIdent(table)
	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return err
	}
	defs := make([]string, len(tbl.Columns))
	placeholders := make([]string, len(tbl.Columns))
	for i, col := range tbl.Columns {
		defs[i] = quoteIdent(col.Name) + " " + sqlType(col.Kind)
		placeholders[i] = "?"
	}
	if _, err = tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(defs, ", "))); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(placeholders, ", ")))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i := 0; i < tbl.Len(); i++ {
		if _, err = stmt.ExecContext(ctx, tbl.Row(i)...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func sqlType(k model.Kind) string {
	switch k {
	case model.KindInt:
		return "INTEGER"
	case model.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func cellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(val)
	}
}
