// Package storage persists documents and their asset records in sqlite.
// Sections travel as a JSON column; assets are keyed by (document, role) so
// a single image can be regenerated and overwritten independently.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"crimson/pkg/schema"
)

// ErrNotFound is returned for lookups of unknown documents.
var ErrNotFound = errors.New("not found")

const ddl = `
CREATE TABLE IF NOT EXISTS documents (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	sections        TEXT NOT NULL,
	seo_title       TEXT NOT NULL DEFAULT '',
	seo_description TEXT NOT NULL DEFAULT '',
	hero_prompt     TEXT NOT NULL DEFAULT '',
	appearance      TEXT NOT NULL DEFAULT '',
	face            TEXT NOT NULL DEFAULT '',
	quote           TEXT NOT NULL DEFAULT '',
	city            TEXT NOT NULL DEFAULT '',
	intensity       INTEGER NOT NULL DEFAULT 5,
	story_type      TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS assets (
	document_id TEXT NOT NULL,
	role        TEXT NOT NULL,
	prompt      TEXT NOT NULL,
	path        TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (document_id, role)
);
`

type Store struct {
	db *sqlx.DB
}

// Open opens (and if needed initializes) the database at path. Use
// ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// modernc sqlite allows one writer; serialize through a single conn
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type documentRow struct {
	ID             string    `db:"id"`
	Title          string    `db:"title"`
	Sections       string    `db:"sections"`
	SEOTitle       string    `db:"seo_title"`
	SEODescription string    `db:"seo_description"`
	HeroPrompt     string    `db:"hero_prompt"`
	Appearance     string    `db:"appearance"`
	Face           string    `db:"face"`
	Quote          string    `db:"quote"`
	City           string    `db:"city"`
	Intensity      int       `db:"intensity"`
	StoryType      string    `db:"story_type"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r *documentRow) document() (*schema.Document, error) {
	var sections []schema.Section
	if err := json.Unmarshal([]byte(r.Sections), &sections); err != nil {
		return nil, fmt.Errorf("decoding sections of %s: %w", r.ID, err)
	}
	return &schema.Document{
		ID:             r.ID,
		Title:          r.Title,
		Sections:       sections,
		SEOTitle:       r.SEOTitle,
		SEODescription: r.SEODescription,
		HeroPrompt:     r.HeroPrompt,
		Appearance:     r.Appearance,
		Face:           r.Face,
		Quote:          r.Quote,
		City:           r.City,
		Intensity:      r.Intensity,
		StoryType:      schema.StoryType(r.StoryType),
		CreatedAt:      r.CreatedAt,
	}, nil
}

func (s *Store) CreateDocument(ctx context.Context, doc *schema.Document) error {
	sections, err := json.Marshal(doc.Sections)
	if err != nil {
		return fmt.Errorf("encoding sections: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, title, sections, seo_title, seo_description, hero_prompt,
			 appearance, face, quote, city, intensity, story_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, string(sections), doc.SEOTitle, doc.SEODescription,
		doc.HeroPrompt, doc.Appearance, doc.Face, doc.Quote, doc.City,
		doc.Intensity, string(doc.StoryType), doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, id string) (*schema.Document, error) {
	var row documentRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM documents WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading document %s: %w", id, err)
	}
	return row.document()
}

func (s *Store) ListDocuments(ctx context.Context, limit int) ([]*schema.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []documentRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT * FROM documents ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	docs := make([]*schema.Document, 0, len(rows))
	for i := range rows {
		doc, err := rows[i].document()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *Store) UpsertAsset(ctx context.Context, asset *schema.Asset) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (document_id, role, prompt, path, error)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (document_id, role) DO UPDATE SET
			prompt = excluded.prompt,
			path   = excluded.path,
			error  = excluded.error`,
		asset.DocumentID, asset.Role, asset.Prompt, asset.Path, asset.Error)
	if err != nil {
		return fmt.Errorf("upserting asset %s/%s: %w", asset.DocumentID, asset.Role, err)
	}
	return nil
}

// ListAssets returns a document's assets ordered hero, portrait, then by
// section index.
func (s *Store) ListAssets(ctx context.Context, documentID string) ([]schema.Asset, error) {
	var assets []schema.Asset
	err := s.db.SelectContext(ctx, &assets, `
		SELECT document_id, role, prompt, path, error FROM assets
		WHERE document_id = ?
		ORDER BY CASE role
			WHEN 'hero' THEN -2
			WHEN 'portrait' THEN -1
			ELSE CAST(role AS INTEGER)
		END`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing assets of %s: %w", documentID, err)
	}
	return assets, nil
}

func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("deleting assets of %s: %w", id, err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting document %s: %w", id, err)
	}
	return nil
}
