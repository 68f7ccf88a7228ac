// Package store persists extraction outcomes to SQLite so repeated runs
// over the same documents can be inspected and compared later. The pipeline
// works without it; persistence is strictly opt-in.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/katyLiminche/pdf-parser-app/model"
)

// Schema for the extraction history tables. Applied by Open.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	filename TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);

CREATE TABLE IF NOT EXISTS reports (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id INTEGER NOT NULL REFERENCES documents(id),
	page_count INTEGER NOT NULL,
	total_chars INTEGER NOT NULL,
	tables_found INTEGER NOT NULL,
	method TEXT NOT NULL,
	ocr_triggered INTEGER NOT NULL,
	ocr_additions INTEGER NOT NULL,
	avg_confidence REAL NOT NULL,
	overall_quality REAL NOT NULL,
	text_score REAL NOT NULL,
	table_score REAL NOT NULL,
	doc_types TEXT NOT NULL,
	issues TEXT NOT NULL,
	duration_us INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_document ON reports(document_id);
`

// Store persists extraction metadata to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save records one extraction run for the given file and returns the new
// report's id. A document row is created per path on first save and reused
// afterwards.
func (s *Store) Save(ctx context.Context, path string, meta *model.ExtractionMeta) (int64, error) {
	docID, err := s.documentID(ctx, path)
	if err != nil {
		return 0, err
	}

	docTypes, err := json.Marshal(meta.DocumentType)
	if err != nil {
		return 0, fmt.Errorf("marshal document types: %w", err)
	}
	issues, err := json.Marshal(meta.Validation.Issues)
	if err != nil {
		return 0, fmt.Errorf("marshal issues: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO reports
		(document_id, page_count, total_chars, tables_found, method,
		 ocr_triggered, ocr_additions, avg_confidence,
		 overall_quality, text_score, table_score,
		 doc_types, issues, duration_us, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		docID, meta.PageCount, meta.TotalChars, meta.TablesFound, meta.Method,
		boolToInt(meta.OCR.Triggered), meta.OCR.Additions, meta.OCR.AverageConfidence,
		meta.Validation.OverallQuality, meta.Validation.TextScore, meta.Validation.TableScore,
		string(docTypes), string(issues), meta.Duration.Microseconds(), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	return res.LastInsertId()
}

// Report is one persisted extraction outcome.
type Report struct {
	ID             int64
	Path           string
	PageCount      int
	TotalChars     int
	TablesFound    int
	Method         string
	OCRTriggered   bool
	OCRAdditions   int
	AvgConfidence  float64
	OverallQuality float64
	TextScore      float64
	TableScore     float64
	DocumentType   model.DocumentTypeScores
	Issues         []string
	Duration       time.Duration
	CreatedAt      time.Time
}

// LastReport returns the most recent report for the given file, or
// sql.ErrNoRows when the file was never saved.
func (s *Store) LastReport(ctx context.Context, path string) (*Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT r.id, d.path, r.page_count, r.total_chars,
		r.tables_found, r.method, r.ocr_triggered, r.ocr_additions, r.avg_confidence,
		r.overall_quality, r.text_score, r.table_score, r.doc_types, r.issues,
		r.duration_us, r.created_at
		FROM reports r JOIN documents d ON d.id = r.document_id
		WHERE d.path = ? ORDER BY r.id DESC LIMIT 1`, path)
	return scanReport(row)
}

// History returns the most recent reports across all documents, newest
// first, capped at limit.
func (s *Store) History(ctx context.Context, limit int) ([]*Report, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT r.id, d.path, r.page_count, r.total_chars,
		r.tables_found, r.method, r.ocr_triggered, r.ocr_additions, r.avg_confidence,
		r.overall_quality, r.text_score, r.table_score, r.doc_types, r.issues,
		r.duration_us, r.created_at
		FROM reports r JOIN documents d ON d.id = r.document_id
		ORDER BY r.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (s *Store) documentID(ctx context.Context, path string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM documents WHERE path = ?`, path).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO documents (path, filename, created_at) VALUES (?, ?, ?)`,
		path, filepath.Base(path), time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("insert document: %w", err)
	}
	return res.LastInsertId()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*Report, error) {
	var rep Report
	var triggered int
	var docTypes, issues string
	var durationUS, createdAt int64

	err := row.Scan(&rep.ID, &rep.Path, &rep.PageCount, &rep.TotalChars,
		&rep.TablesFound, &rep.Method, &triggered, &rep.OCRAdditions, &rep.AvgConfidence,
		&rep.OverallQuality, &rep.TextScore, &rep.TableScore, &docTypes, &issues,
		&durationUS, &createdAt)
	if err != nil {
		return nil, err
	}

	rep.OCRTriggered = triggered != 0
	rep.Duration = time.Duration(durationUS) * time.Microsecond
	rep.CreatedAt = time.Unix(createdAt, 0)
	if err := json.Unmarshal([]byte(docTypes), &rep.DocumentType); err != nil {
		return nil, fmt.Errorf("unmarshal document types: %w", err)
	}
	if err := json.Unmarshal([]byte(issues), &rep.Issues); err != nil {
		return nil, fmt.Errorf("unmarshal issues: %w", err)
	}
	return &rep, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
