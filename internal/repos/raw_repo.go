package repos

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"comparador/internal/domain"
	"comparador/internal/validate"
)

// RawRepo reads whole tables as untyped source records.
type RawRepo struct{ db *sqlx.DB }

func NewRawRepo(db *sqlx.DB) *RawRepo { return &RawRepo{db: db} }

// All returns every row of table in storage order, one RawRecord per row.
func (r *RawRepo) All(ctx context.Context, table string) ([]domain.RawRecord, error) {
	t, ok := validate.Table(table)
	if !ok {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	rows, err := r.db.QueryxContext(ctx, `SELECT * FROM `+t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.RawRecord{}
	for rows.Next() {
		m := map[string]any{}
		if err := rows.MapScan(m); err != nil {
			return nil, err
		}
		rec := make(domain.RawRecord, len(m))
		for k, v := range m {
			rec[k] = domain.Primitive(v)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Import replaces the contents of table with records, creating it with one
// TEXT column per distinct key when needed. Values are stored as text.
func (r *RawRepo) Import(ctx context.Context, table string, records []domain.RawRecord) (int, error) {
	t, ok := validate.Table(table)
	if !ok {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	cols := columns(records)
	if len(cols) == 0 {
		return 0, nil
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quote(c) + ` TEXT`
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quote(c)
	}
	insert := r.db.Rebind(`INSERT INTO ` + t + `(` + strings.Join(quoted, ",") + `) VALUES (` +
		strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",") + `)`)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+t+`(`+strings.Join(defs, ",")+`)`); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
		return 0, err
	}
	stmt, err := tx.PreparexContext(ctx, insert)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, rec := range records {
		args := make([]any, len(cols))
		for i, c := range cols {
			if v, ok := rec.Get(c); ok && v != nil {
				args[i] = domain.Text(v)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, err
		}
	}
	return len(records), tx.Commit()
}

func columns(records []domain.RawRecord) []string {
	seen := map[string]bool{}
	var out []string
	for _, rec := range records {
		for k := range rec {
			if k != "" && !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	slices.Sort(out)
	return out
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
