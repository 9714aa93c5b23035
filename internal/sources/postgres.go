package sources

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"capacity-bknd/internal/models"
)

// PostgresSource reads input tables with arbitrary SELECT statements. Every
// value is scanned as text so the same schema binding and numeric coercion
// apply as for uploaded files.
type PostgresSource struct {
	db bun.IDB
}

func NewPostgresSource(db bun.IDB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Query runs query and returns its result set as a Table named name.
func (s *PostgresSource) Query(ctx context.Context, name, query string) (*models.Table, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s table: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s columns: %w", name, err)
	}

	t := &models.Table{Name: name, Header: cols}
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", name, err)
		}

		row := make([]string, len(cols))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			}
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", name, err)
	}
	return t, nil
}
