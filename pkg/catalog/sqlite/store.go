// Package sqlite mirrors the character catalog into a local SQLite file so
// the CLI and server can answer queries without the hosted store.
//
// Rows keep the hosted layout (heights in meters); category membership is
// a join table ordered by position, so the primary category stays first.
package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/heightcompare/pkg/catalog"
	"github.com/matzehuels/heightcompare/pkg/errors"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS categories (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	path TEXT NOT NULL DEFAULT '',
	pid  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS characters (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	height             REAL NOT NULL,
	media_type         TEXT NOT NULL DEFAULT '',
	media_url          TEXT NOT NULL DEFAULT '',
	thumbnail_url      TEXT NOT NULL DEFAULT '',
	color              TEXT NOT NULL DEFAULT '',
	color_customizable INTEGER NOT NULL DEFAULT 0,
	color_property     TEXT NOT NULL DEFAULT '',
	order_num          INTEGER NOT NULL DEFAULT 0,
	gender             TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	source             TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS character_categories (
	character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
	category_id  INTEGER NOT NULL,
	position     INTEGER NOT NULL,
	PRIMARY KEY (character_id, position)
);

CREATE INDEX IF NOT EXISTS idx_cc_category ON character_categories(category_id);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const characterColumns = `c.id, c.name, c.height, c.media_type, c.media_url, c.thumbnail_url,
	c.color, c.color_customizable, c.color_property, c.order_num, c.gender, c.description, c.source`

// Store is a [catalog.Source] over a SQLite database.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Sync replaces every row with the contents of src in one transaction and
// returns the number of characters written.
func (s *Store) Sync(ctx context.Context, src catalog.Source) (int, error) {
	return catalog.Sync(ctx, s, src)
}

// Replace overwrites the catalog with chars and cats.
func (s *Store) Replace(ctx context.Context, chars []catalog.Character, cats []catalog.Category) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"character_categories", "characters", "categories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("sqlite: clear %s: %w", table, err)
		}
	}

	catStmt, err := tx.PrepareContext(ctx, `INSERT INTO categories (id, name, path, pid) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare category insert: %w", err)
	}
	defer catStmt.Close()
	for _, c := range cats {
		if _, err := catStmt.ExecContext(ctx, c.ID, c.Name, c.Path, c.ParentID); err != nil {
			return fmt.Errorf("sqlite: insert category %d: %w", c.ID, err)
		}
	}

	charStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO characters (id, name, height, media_type, media_url, thumbnail_url,
			color, color_customizable, color_property, order_num, gender, description, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare character insert: %w", err)
	}
	defer charStmt.Close()
	linkStmt, err := tx.PrepareContext(ctx, `INSERT INTO character_categories (character_id, category_id, position) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("sqlite: prepare link insert: %w", err)
	}
	defer linkStmt.Close()

	for _, c := range chars {
		r := catalog.ToRecord(c)
		if _, err := charStmt.ExecContext(ctx, r.ID, r.Name, r.Height, r.MediaType, r.MediaURL, r.ThumbnailURL,
			r.Color, r.ColorCustomizable, r.ColorProperty, r.OrderNum, r.Gender, r.Description, r.Source); err != nil {
			return fmt.Errorf("sqlite: insert character %s: %w", r.ID, err)
		}
		for pos, id := range r.CatIDs {
			if _, err := linkStmt.ExecContext(ctx, r.ID, id, pos); err != nil {
				return fmt.Errorf("sqlite: insert category link: %w", err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('synced_at', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("sqlite: record sync time: %w", err)
	}
	return tx.Commit()
}

// SyncedAt returns when the last Sync or Replace committed (zero if never).
func (s *Store) SyncedAt(ctx context.Context) (time.Time, error) {
	var v string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'synced_at'`).Scan(&v)
	if stderrors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: synced_at: %w", err)
	}
	return time.Parse(time.RFC3339, v)
}

// Categories returns every category ordered by ID.
func (s *Store) Categories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, path, pid FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: categories: %w", err)
	}
	defer rows.Close()
	var out []catalog.Category
	for rows.Next() {
		var r catalog.CategoryRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Path, &r.PID); err != nil {
			return nil, err
		}
		out = append(out, catalog.FromCategoryRecord(r))
	}
	return out, rows.Err()
}

// query selects characters with an optional SQL tail (joins, WHERE, ORDER,
// LIMIT) and converts them.
func (s *Store) query(ctx context.Context, tail string, args ...any) ([]catalog.Character, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT "+characterColumns+" FROM characters c "+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: characters: %w", err)
	}
	var recs []catalog.Record
	for rows.Next() {
		var r catalog.Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Height, &r.MediaType, &r.MediaURL, &r.ThumbnailURL,
			&r.Color, &r.ColorCustomizable, &r.ColorProperty, &r.OrderNum, &r.Gender, &r.Description, &r.Source); err != nil {
			rows.Close()
			return nil, err
		}
		recs = append(recs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachCategories(ctx, recs); err != nil {
		return nil, err
	}
	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FromRecords(recs, cats), nil
}

func (s *Store) attachCategories(ctx context.Context, recs []catalog.Record) error {
	if len(recs) == 0 {
		return nil
	}
	index := make(map[string]int, len(recs))
	ids := make([]any, len(recs))
	for i, r := range recs {
		index[r.ID] = i
		ids[i] = r.ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	rows, err := s.conn.QueryContext(ctx,
		`SELECT character_id, category_id FROM character_categories
		 WHERE character_id IN (`+placeholders+`) ORDER BY character_id, position`, ids...)
	if err != nil {
		return fmt.Errorf("sqlite: category links: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			charID string
			catID  int
		)
		if err := rows.Scan(&charID, &catID); err != nil {
			return err
		}
		i := index[charID]
		recs[i].CatIDs = append(recs[i].CatIDs, catID)
	}
	return rows.Err()
}

// Characters returns every character ordered by name.
func (s *Store) Characters(ctx context.Context) ([]catalog.Character, error) {
	return s.query(ctx, "ORDER BY c.name")
}

// ByCategory returns characters linked to category id at any position.
func (s *Store) ByCategory(ctx context.Context, id int) ([]catalog.Character, error) {
	return s.query(ctx, `WHERE c.id IN (SELECT character_id FROM character_categories WHERE category_id = ?)
		ORDER BY c.name`, id)
}

// Search matches names by case-insensitive substring.
func (s *Store) Search(ctx context.Context, q string, limit int) ([]catalog.Character, error) {
	if limit <= 0 {
		limit = -1
	}
	pattern := "%" + escapeLike(q) + "%"
	return s.query(ctx, `WHERE c.name LIKE ? ESCAPE '\' ORDER BY c.name LIMIT ?`, pattern, limit)
}

// Random returns up to n characters in random order.
func (s *Store) Random(ctx context.Context, n int) ([]catalog.Character, error) {
	if n <= 0 {
		return nil, nil
	}
	return s.query(ctx, "ORDER BY random() LIMIT ?", n)
}

// ByID returns one character or a CHARACTER_NOT_FOUND error.
func (s *Store) ByID(ctx context.Context, id string) (catalog.Character, error) {
	chars, err := s.query(ctx, "WHERE c.id = ?", id)
	if err != nil {
		return catalog.Character{}, err
	}
	if len(chars) == 0 {
		return catalog.Character{}, errors.New(errors.ErrCodeCharacterNotFound, "character %q not found", id)
	}
	return chars[0], nil
}

// Stats summarizes every stored character.
func (s *Store) Stats(ctx context.Context) (catalog.Stats, error) {
	chars, err := s.Characters(ctx)
	if err != nil {
		return catalog.Stats{}, err
	}
	return catalog.ComputeStats(chars), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

var (
	_ catalog.Source   = (*Store)(nil)
	_ catalog.Replacer = (*Store)(nil)
)
