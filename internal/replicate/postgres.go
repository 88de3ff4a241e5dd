package replicate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// PostgresStore implements RemoteStore against a Postgres connection. One
// store wraps one connection, established fresh per batch and used
// strictly sequentially.
type PostgresStore struct {
	conn *pgx.Conn
}

// ConnectPostgres opens a connection from a DSN
// ("host=... port=... user=... password=... dbname=... sslmode=...").
func ConnectPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return &PostgresStore{conn: conn}, nil
}

// PostgresOpener returns an Opener producing a fresh connection per batch.
func PostgresOpener(dsn string) Opener {
	return func(ctx context.Context) (RemoteStore, error) {
		return ConnectPostgres(ctx, dsn)
	}
}

// Close closes the connection.
func (p *PostgresStore) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}

// Insert inserts a row, resolving uniqueness conflicts per the policy:
// DO NOTHING for idempotent hash-keyed tables (a skipped insert returns a
// nil row), DO UPDATE on every column for last-writer-wins tables.
func (p *PostgresStore) Insert(ctx context.Context, table string, row map[string]any, policy ConflictPolicy) (map[string]any, error) {
	columns := sortedColumns(row)

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), quotedList(columns), placeholders(len(columns)))

	if policy.Overwrite {
		sb.WriteString(" ON CONFLICT (")
		sb.WriteString(quotedList(policy.Columns))
		sb.WriteString(") DO UPDATE SET ")
		for i, col := range columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s = EXCLUDED.%s", quoteIdent(col), quoteIdent(col))
		}
	} else {
		sb.WriteString(" ON CONFLICT (")
		sb.WriteString(quotedList(policy.Columns))
		sb.WriteString(") DO NOTHING")
	}
	sb.WriteString(" RETURNING *")

	args := make([]any, len(columns))
	for i, col := range columns {
		args[i] = row[col]
	}

	rows, err := p.queryMaps(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, nil // DO NOTHING skipped the insert; the row already exists
	}
	return rows[0], nil
}

// UpdatedAt reads the LWW timestamp for a row.
func (p *PostgresStore) UpdatedAt(ctx context.Context, table string, id any) (int64, bool, error) {
	var ts pgtype.Int8
	query := fmt.Sprintf("SELECT updated_at FROM %s WHERE id = $1", quoteIdent(table))
	err := p.conn.QueryRow(ctx, query, id).Scan(&ts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return ts.Int64, true, nil
}

// Fetch returns a row by id, or nil when absent.
func (p *PostgresStore) Fetch(ctx context.Context, table string, id any) (map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", quoteIdent(table))
	rows, err := p.queryMaps(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("fetch from %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Update overwrites the given columns of the row with the given id.
func (p *PostgresStore) Update(ctx context.Context, table string, id any, row map[string]any) (map[string]any, error) {
	columns := sortedColumns(row)

	var sb strings.Builder
	fmt.Fprintf(&sb, "UPDATE %s SET ", quoteIdent(table))
	args := make([]any, 0, len(columns)+1)
	args = append(args, id)
	for i, col := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s = $%d", quoteIdent(col), i+2)
		args = append(args, row[col])
	}
	sb.WriteString(" WHERE id = $1 RETURNING *")

	rows, err := p.queryMaps(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Delete removes a row by id. Absent rows are not an error.
func (p *PostgresStore) Delete(ctx context.Context, table string, id uuid.UUID) (map[string]any, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1 RETURNING *", quoteIdent(table))
	rows, err := p.queryMaps(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("delete from %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// queryMaps runs a query and translates every returned row into map form
// using the type-aware column reader.
func (p *PostgresStore) queryMaps(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := p.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	fds := rows.FieldDescriptions()
	for rows.Next() {
		m, err := scanRowMap(rows, fds)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// scanRowMap reads one row into a map of plain JSON-compatible values,
// dispatching on each column's type OID: identifier, text, small/large
// integer, boolean, document, string list, identifier list, floating
// point, with a string fallback for unrecognized column kinds.
func scanRowMap(rows pgx.Rows, fds []pgconn.FieldDescription) (map[string]any, error) {
	dests := make([]any, len(fds))
	for i, fd := range fds {
		switch fd.DataTypeOID {
		case pgtype.UUIDOID:
			dests[i] = &pgtype.UUID{}
		case pgtype.TextOID, pgtype.VarcharOID, pgtype.BPCharOID:
			dests[i] = &pgtype.Text{}
		case pgtype.Int2OID, pgtype.Int4OID:
			dests[i] = &pgtype.Int4{}
		case pgtype.Int8OID:
			dests[i] = &pgtype.Int8{}
		case pgtype.BoolOID:
			dests[i] = &pgtype.Bool{}
		case pgtype.JSONBOID, pgtype.JSONOID:
			dests[i] = new([]byte)
		case pgtype.TextArrayOID, pgtype.VarcharArrayOID:
			dests[i] = new([]string)
		case pgtype.UUIDArrayOID:
			dests[i] = new([]uuid.UUID)
		case pgtype.Float4OID, pgtype.Float8OID:
			dests[i] = &pgtype.Float8{}
		default:
			dests[i] = &pgtype.Text{}
		}
	}

	if err := rows.Scan(dests...); err != nil {
		return nil, err
	}

	m := make(map[string]any, len(fds))
	for i, fd := range fds {
		m[fd.Name] = readColumn(dests[i])
	}
	return m, nil
}

func readColumn(dest any) any {
	switch v := dest.(type) {
	case *pgtype.UUID:
		if !v.Valid {
			return nil
		}
		return uuid.UUID(v.Bytes).String()
	case *pgtype.Text:
		if !v.Valid {
			return nil
		}
		return v.String
	case *pgtype.Int4:
		if !v.Valid {
			return nil
		}
		return int64(v.Int32)
	case *pgtype.Int8:
		if !v.Valid {
			return nil
		}
		return v.Int64
	case *pgtype.Bool:
		if !v.Valid {
			return nil
		}
		return v.Bool
	case *pgtype.Float8:
		if !v.Valid {
			return nil
		}
		return v.Float64
	case *[]byte:
		if *v == nil {
			return nil
		}
		var doc any
		if err := json.Unmarshal(*v, &doc); err != nil {
			return string(*v)
		}
		return doc
	case *[]string:
		if *v == nil {
			return nil
		}
		return *v
	case *[]uuid.UUID:
		if *v == nil {
			return nil
		}
		strs := make([]string, len(*v))
		for i, id := range *v {
			strs[i] = id.String()
		}
		return strs
	default:
		return nil
	}
}

// sortedColumns returns the row's column names in deterministic order so
// generated SQL is stable across calls (and cacheable by pgx).
func sortedColumns(row map[string]any) []string {
	columns := make([]string, 0, len(row))
	for col := range row {
		columns = append(columns, col)
	}
	sort.Strings(columns)
	return columns
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quotedList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}
