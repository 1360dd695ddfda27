// Package store persists canonical papers, their provenance, and
// consolidation instructions. Canonical data lives in git-versionable
// JSONL; SQLite is the query layer rebuilt from it.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mila-iqia/bibmerge/internal/cluster"
	"github.com/mila-iqia/bibmerge/internal/paper"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// ProvenanceRow is one collected candidate as persisted: the raw record
// plus where it came from and how much it was trusted.
type ProvenanceRow struct {
	Key         string          `json:"key"`
	Seq         int             `json:"seq"`
	Origin      string          `json:"origin"`
	Weight      float64         `json:"weight"`
	Fingerprint string          `json:"fingerprint"`
	Record      json.RawMessage `json:"record"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			key TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			abstract TEXT,
			venue TEXT,
			pub_year INTEGER,
			pub_month INTEGER,
			pub_day INTEGER,
			citation_count INTEGER,
			links_json TEXT,
			topics_json TEXT,
			authors_json TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS provenance (
			key TEXT NOT NULL,
			seq INTEGER NOT NULL,
			origin TEXT NOT NULL,
			weight REAL NOT NULL,
			fingerprint TEXT NOT NULL,
			record_json TEXT NOT NULL,
			PRIMARY KEY (key, seq)
		);

		CREATE TABLE IF NOT EXISTS merge_instructions (
			representative TEXT PRIMARY KEY,
			output_class TEXT,
			label TEXT,
			members_json TEXT NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertPaper writes a canonical paper, replacing any previous version
// under the same key.
func (d *DB) UpsertPaper(p paper.Paper) error {
	linksJSON, err := json.Marshal(p.Links)
	if err != nil {
		return fmt.Errorf("encoding links for %s: %w", p.Key, err)
	}
	topicsJSON, err := json.Marshal(p.Topics)
	if err != nil {
		return fmt.Errorf("encoding topics for %s: %w", p.Key, err)
	}
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors for %s: %w", p.Key, err)
	}

	_, err = d.db.Exec(`
		INSERT INTO papers (key, title, abstract, venue, pub_year, pub_month, pub_day,
			citation_count, links_json, topics_json, authors_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			title = excluded.title,
			abstract = excluded.abstract,
			venue = excluded.venue,
			pub_year = excluded.pub_year,
			pub_month = excluded.pub_month,
			pub_day = excluded.pub_day,
			citation_count = excluded.citation_count,
			links_json = excluded.links_json,
			topics_json = excluded.topics_json,
			authors_json = excluded.authors_json
	`, p.Key, p.Title, p.Abstract, p.Venue,
		p.Published.Year, p.Published.Month, p.Published.Day,
		p.CitationCount, string(linksJSON), string(topicsJSON), string(authorsJSON))
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", p.Key, err)
	}
	return nil
}

// GetByKey returns the canonical paper for a key, or nil if absent.
func (d *DB) GetByKey(key string) (*paper.Paper, error) {
	row := d.db.QueryRow(`
		SELECT key, title, abstract, venue, pub_year, pub_month, pub_day,
			citation_count, links_json, topics_json, authors_json
		FROM papers WHERE key = ?`, key)

	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPapers returns every canonical paper, ordered by key.
func (d *DB) ListPapers() ([]paper.Paper, error) {
	rows, err := d.db.Query(`
		SELECT key, title, abstract, venue, pub_year, pub_month, pub_day,
			citation_count, links_json, topics_json, authors_json
		FROM papers ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for scanPaper.
type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(s scanner) (*paper.Paper, error) {
	var p paper.Paper
	var linksJSON, topicsJSON, authorsJSON sql.NullString
	err := s.Scan(&p.Key, &p.Title, &p.Abstract, &p.Venue,
		&p.Published.Year, &p.Published.Month, &p.Published.Day,
		&p.CitationCount, &linksJSON, &topicsJSON, &authorsJSON)
	if err != nil {
		return nil, err
	}

	if linksJSON.Valid && linksJSON.String != "" {
		if err := json.Unmarshal([]byte(linksJSON.String), &p.Links); err != nil {
			return nil, fmt.Errorf("decoding links for %s: %w", p.Key, err)
		}
	}
	if topicsJSON.Valid && topicsJSON.String != "" {
		if err := json.Unmarshal([]byte(topicsJSON.String), &p.Topics); err != nil {
			return nil, fmt.Errorf("decoding topics for %s: %w", p.Key, err)
		}
	}
	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors for %s: %w", p.Key, err)
		}
	}
	return &p, nil
}

// AppendProvenance records the collected candidates of one working set.
// Rows are keyed by (key, seq); re-folding the same batch overwrites
// identical positions rather than duplicating them.
func (d *DB) AppendProvenance(rows []ProvenanceRow) error {
	stmt, err := d.db.Prepare(`
		INSERT OR REPLACE INTO provenance (key, seq, origin, weight, fingerprint, record_json)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing provenance insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Key, r.Seq, r.Origin, r.Weight, r.Fingerprint, string(r.Record)); err != nil {
			return fmt.Errorf("inserting provenance %s/%d: %w", r.Key, r.Seq, err)
		}
	}
	return nil
}

// Provenance returns the collected candidates for a key in fold order.
func (d *DB) Provenance(key string) ([]ProvenanceRow, error) {
	rows, err := d.db.Query(`
		SELECT key, seq, origin, weight, fingerprint, record_json
		FROM provenance WHERE key = ? ORDER BY seq`, key)
	if err != nil {
		return nil, fmt.Errorf("querying provenance: %w", err)
	}
	defer rows.Close()

	var out []ProvenanceRow
	for rows.Next() {
		var r ProvenanceRow
		var record string
		if err := rows.Scan(&r.Key, &r.Seq, &r.Origin, &r.Weight, &r.Fingerprint, &record); err != nil {
			return nil, err
		}
		r.Record = json.RawMessage(record)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveInstructions persists consolidation instructions, replacing any
// previous instruction for the same representative.
func (d *DB) SaveInstructions(instructions []cluster.Instruction) error {
	stmt, err := d.db.Prepare(`
		INSERT OR REPLACE INTO merge_instructions (representative, output_class, label, members_json)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing instruction insert: %w", err)
	}
	defer stmt.Close()

	for _, ins := range instructions {
		membersJSON, err := json.Marshal(ins.Members)
		if err != nil {
			return fmt.Errorf("encoding members for %s: %w", ins.Representative, err)
		}
		if _, err := stmt.Exec(ins.Representative, ins.OutputClass, ins.Label, string(membersJSON)); err != nil {
			return fmt.Errorf("inserting instruction %s: %w", ins.Representative, err)
		}
	}
	return nil
}

// ListInstructions returns every stored consolidation instruction,
// ordered by representative.
func (d *DB) ListInstructions() ([]cluster.Instruction, error) {
	rows, err := d.db.Query(`
		SELECT representative, output_class, label, members_json
		FROM merge_instructions ORDER BY representative`)
	if err != nil {
		return nil, fmt.Errorf("querying instructions: %w", err)
	}
	defer rows.Close()

	var out []cluster.Instruction
	for rows.Next() {
		var ins cluster.Instruction
		var membersJSON string
		if err := rows.Scan(&ins.Representative, &ins.OutputClass, &ins.Label, &membersJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(membersJSON), &ins.Members); err != nil {
			return nil, fmt.Errorf("decoding members for %s: %w", ins.Representative, err)
		}
		out = append(out, ins)
	}
	return out, rows.Err()
}
