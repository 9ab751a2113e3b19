package store

import (
	"context"
	"fmt"

	"github.com/tannerhall/sift/internal/process"
	"github.com/tannerhall/sift/internal/querysql"
)

// Search executes a compiled query and returns its rows as records.
func (s *Store) Search(ctx context.Context, q querysql.CompiledQuery) ([]process.Record, error) {
	return s.Rows(ctx, q.Text, q.Params)
}

// Rows executes parameterized query text directly. Its signature matches
// process.ExecuteFunc, so a store method can be injected straight into
// EstimateCount.
func (s *Store) Rows(ctx context.Context, query string, params []any) ([]process.Record, error) {
	rows, err := s.db.QueryxContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	var out []process.Record
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, normalizeRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// normalizeRow converts driver byte slices to strings. The evaluator's
// coercions accept both, but string values keep JSON output and test
// diffs readable.
func normalizeRow(row map[string]any) process.Record {
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			row[k] = string(b)
		}
	}
	return process.Record(row)
}
