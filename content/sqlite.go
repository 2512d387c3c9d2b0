package content

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the default backend: one local database file, one table
// per collection.
type SQLiteStore struct {
	db  *sql.DB
	now Clock
}

// NewSQLiteStore opens (or creates) the SQLite database at path, ensures the
// data directory exists, and creates the tables.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	o := buildOptions(opts)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// WAL lets the public pages read while the admin writes; the busy
	// timeout makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "configure sqlite")
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLiteStore{db: db, now: o.now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ensure schema")
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    markdown TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS photos (
    id TEXT PRIMARY KEY,
    src TEXT NOT NULL,
    description TEXT NOT NULL,
    original_name TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS publications (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    authors TEXT NOT NULL,
    venue TEXT NOT NULL,
    year INTEGER NOT NULL,
    abstract TEXT NOT NULL DEFAULT '',
    pdf_url TEXT NOT NULL DEFAULT '',
    doi_url TEXT NOT NULL DEFAULT '',
    code_url TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_date ON posts(date DESC, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_photos_created ON photos(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_publications_year ON publications(year DESC, created_at DESC);
`)
	return err
}

func (s *SQLiteStore) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, date, excerpt, markdown, created_at FROM posts ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query posts")
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		var created int64
		if err := rows.Scan(&p.ID, &p.Title, &p.Date, &p.Excerpt, &p.Markdown, &created); err != nil {
			return nil, errors.Wrap(err, "scan post")
		}
		p.CreatedAt = time.Unix(0, created).UTC()
		posts = append(posts, p)
	}
	return posts, errors.Wrap(rows.Err(), "iterate posts")
}

func (s *SQLiteStore) CreatePost(ctx context.Context, p Post) (Post, error) {
	if err := p.Validate(); err != nil {
		return Post{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO posts (id, title, date, excerpt, markdown, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Date, p.Excerpt, p.Markdown, p.CreatedAt.UnixNano())
	if err != nil {
		return Post{}, errors.Wrap(err, "insert post")
	}
	return p, nil
}

func (s *SQLiteStore) DeletePost(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return errors.Wrap(err, "delete post")
}

func (s *SQLiteStore) ListPhotos(ctx context.Context) ([]Photo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, src, description, original_name, created_at FROM photos ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query photos")
	}
	defer rows.Close()

	var photos []Photo
	for rows.Next() {
		var p Photo
		var created int64
		if err := rows.Scan(&p.ID, &p.Src, &p.Description, &p.OriginalName, &created); err != nil {
			return nil, errors.Wrap(err, "scan photo")
		}
		p.CreatedAt = time.Unix(0, created).UTC()
		photos = append(photos, p)
	}
	return photos, errors.Wrap(rows.Err(), "iterate photos")
}

func (s *SQLiteStore) CreatePhoto(ctx context.Context, p Photo) (Photo, error) {
	if err := p.Validate(); err != nil {
		return Photo{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO photos (id, src, description, original_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Src, p.Description, p.OriginalName, p.CreatedAt.UnixNano())
	if err != nil {
		return Photo{}, errors.Wrap(err, "insert photo")
	}
	return p, nil
}

func (s *SQLiteStore) DeletePhoto(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	return errors.Wrap(err, "delete photo")
}

func (s *SQLiteStore) ListPublications(ctx context.Context) ([]Publication, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, authors, venue, year, abstract, pdf_url, doi_url, code_url, created_at
		FROM publications ORDER BY year DESC, created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query publications")
	}
	defer rows.Close()

	var pubs []Publication
	for rows.Next() {
		var p Publication
		var created int64
		if err := rows.Scan(&p.ID, &p.Title, &p.Authors, &p.Venue, &p.Year,
			&p.Abstract, &p.PDFURL, &p.DOIURL, &p.CodeURL, &created); err != nil {
			return nil, errors.Wrap(err, "scan publication")
		}
		p.CreatedAt = time.Unix(0, created).UTC()
		pubs = append(pubs, p)
	}
	return pubs, errors.Wrap(rows.Err(), "iterate publications")
}

func (s *SQLiteStore) CreatePublication(ctx context.Context, p Publication) (Publication, error) {
	if err := p.Validate(); err != nil {
		return Publication{}, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = s.now()
	_, err := s.db.ExecContext(ctx, `INSERT INTO publications
		(id, title, authors, venue, year, abstract, pdf_url, doi_url, code_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, p.Authors, p.Venue, p.Year, p.Abstract, p.PDFURL, p.DOIURL, p.CodeURL, p.CreatedAt.UnixNano())
	if err != nil {
		return Publication{}, errors.Wrap(err, "insert publication")
	}
	return p, nil
}

func (s *SQLiteStore) DeletePublication(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM publications WHERE id = ?`, id)
	return errors.Wrap(err, "delete publication")
}
