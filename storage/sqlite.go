// Package storage provides persistent graph stores.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/c360studio/pedigraph/graph"
)

// SQLiteStore is a graph.Store backed by a SQLite database file. Triples are
// returned in insertion order.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

var _ graph.Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Single writer.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Add inserts t unless it is already present.
func (s *SQLiteStore) Add(ctx context.Context, t graph.Triple) (bool, error) {
	if s.db == nil {
		return false, graph.ErrClosed
	}
	if err := t.Validate(); err != nil {
		return false, err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO triples (s_kind, s, p, o_kind, o, o_datatype, o_lang) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int(t.Subject.Kind), t.Subject.Value, t.Predicate.Value,
		int(t.Object.Kind), t.Object.Value, t.Object.Datatype, t.Object.Lang)
	if err != nil {
		return false, fmt.Errorf("inserting triple: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("inserting triple: %w", err)
	}
	return n > 0, nil
}

// Remove deletes every triple matching p.
func (s *SQLiteStore) Remove(ctx context.Context, p graph.Pattern) (int, error) {
	if s.db == nil {
		return 0, graph.ErrClosed
	}
	where, args := whereClause(p)
	res, err := s.db.ExecContext(ctx, "DELETE FROM triples"+where, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting triples: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting triples: %w", err)
	}
	return int(n), nil
}

// Match returns the triples matching p in insertion order.
func (s *SQLiteStore) Match(ctx context.Context, p graph.Pattern) ([]graph.Triple, error) {
	if s.db == nil {
		return nil, graph.ErrClosed
	}
	where, args := whereClause(p)
	rows, err := s.db.QueryContext(ctx,
		"SELECT s_kind, s, p, o_kind, o, o_datatype, o_lang FROM triples"+where+" ORDER BY seq", args...)
	if err != nil {
		return nil, fmt.Errorf("querying triples: %w", err)
	}
	defer rows.Close()

	var out []graph.Triple
	for rows.Next() {
		var (
			sKind, oKind int
			t            graph.Triple
		)
		if err := rows.Scan(&sKind, &t.Subject.Value, &t.Predicate.Value,
			&oKind, &t.Object.Value, &t.Object.Datatype, &t.Object.Lang); err != nil {
			return nil, fmt.Errorf("scanning triple: %w", err)
		}
		t.Subject.Kind = graph.TermKind(sKind)
		t.Predicate.Kind = graph.KindIRI
		t.Object.Kind = graph.TermKind(oKind)
		out = append(out, t)
	}
	return out, rows.Err()
}

// Len returns the number of stored triples.
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, graph.ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM triples").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting triples: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func whereClause(p graph.Pattern) (string, []any) {
	var conds []string
	var args []any
	if p.Subject != nil {
		conds = append(conds, "s_kind = ?", "s = ?")
		args = append(args, int(p.Subject.Kind), p.Subject.Value)
	}
	if p.Predicate != nil {
		if p.Predicate.Kind != graph.KindIRI {
			// Predicates are always IRIs, so nothing can match.
			return " WHERE 0", nil
		}
		conds = append(conds, "p = ?")
		args = append(args, p.Predicate.Value)
	}
	if p.Object != nil {
		conds = append(conds, "o_kind = ?", "o = ?", "o_datatype = ?", "o_lang = ?")
		args = append(args, int(p.Object.Kind), p.Object.Value, p.Object.Datatype, p.Object.Lang)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
