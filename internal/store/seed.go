package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tannerhall/sift/internal/filter"
	"github.com/tannerhall/sift/internal/process"
	"github.com/tannerhall/sift/internal/schema"
)

// Insert writes one record into the content type's table. Only registry
// fields (plus id) are stored; anything else in the record is ignored.
// A missing id is assigned a fresh UUIDv7, and the stored id is returned.
func (s *Store) Insert(ctx context.Context, ct filter.ContentType, rec process.Record) (string, error) {
	spec, err := s.tableSpec(string(ct))
	if err != nil {
		return "", err
	}

	id := rec.ID()
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}

	columns := []string{"id"}
	values := []any{id}
	for _, field := range spec.Fields() {
		v, ok := rec[field.Name]
		if !ok {
			continue
		}
		columns = append(columns, field.Column)
		values = append(values, v)
	}

	// Column names come from the registry, never from the record.
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.Table,
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "))

	if _, err := s.db.ExecContext(ctx, stmt, values...); err != nil {
		return "", fmt.Errorf("insert into %s: %w", spec.Table, err)
	}
	return id, nil
}

// SeedCSV loads headered CSV rows into the content type's table and
// returns the number of records inserted.
//
// Headers map to registry field names; columns the registry does not know
// (the original archive exports carry extras like photo_file) are skipped.
// Values are coerced by field kind: numbers parse as floats, booleans
// accept true/false/1/0, text and dates load as-is. Blank cells leave the
// column unset.
func (s *Store) SeedCSV(ctx context.Context, ct filter.ContentType, r io.Reader) (int, error) {
	spec, err := s.tableSpec(string(ct))
	if err != nil {
		return 0, err
	}

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return 0, fmt.Errorf("seed %s: empty input", spec.Name)
	}
	if err != nil {
		return 0, fmt.Errorf("seed %s: read header: %w", spec.Name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	inserted := 0
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return inserted, fmt.Errorf("seed %s: line %d: %w", spec.Name, line+1, err)
		}
		line++

		rec := make(process.Record)
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			name := header[i]
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if name == "id" {
				rec["id"] = cell
				continue
			}
			field, ok := spec.Field(name)
			if !ok {
				continue
			}
			value, err := coerceCell(field, cell)
			if err != nil {
				return inserted, fmt.Errorf("seed %s: line %d, column %s: %w", spec.Name, line, name, err)
			}
			rec[name] = value
		}

		if _, err := s.Insert(ctx, ct, rec); err != nil {
			return inserted, fmt.Errorf("seed %s: line %d: %w", spec.Name, line, err)
		}
		inserted++
	}

	return inserted, nil
}

// coerceCell converts one CSV cell per its field kind.
func coerceCell(field schema.FieldSpec, cell string) (any, error) {
	switch field.Kind {
	case schema.KindNumber:
		n, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", cell)
		}
		return n, nil
	case schema.KindBool:
		switch strings.ToLower(cell) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a boolean", cell)
	default:
		return cell, nil
	}
}
