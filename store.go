package policydesk

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides CRUD operations for articles
// and uploaded cover images.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during a write; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    slug TEXT PRIMARY KEY,
    id TEXT NOT NULL,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    image TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    author_avatar TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS articles_date ON articles (date DESC);
CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

const articleColumns = `slug, id, title, date, category, summary, content, image, author, author_avatar, published`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (Article, error) {
	var a Article
	var image string
	var published int
	if err := row.Scan(&a.Slug, &a.ID, &a.Title, &a.Date, &a.Category, &a.Summary, &a.Content,
		&image, &a.Author, &a.AuthorAvatar, &published); err != nil {
		return Article{}, err
	}
	if image != "" {
		a.Image = image
	}
	a.Link = "/articles/" + a.Slug
	a.Published = published == 1
	return a, nil
}

func (s *Store) queryArticles(query string, args ...any) ([]Article, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListArticles returns published articles ordered by date descending.
// A non-empty category filters the result.
func (s *Store) ListArticles(category string) ([]Article, error) {
	if category == "" {
		return s.queryArticles(`SELECT ` + articleColumns + ` FROM articles WHERE published = 1 ORDER BY date DESC`)
	}
	return s.queryArticles(`SELECT `+articleColumns+` FROM articles WHERE published = 1 AND category = ? ORDER BY date DESC`,
		strings.TrimSpace(category))
}

// ListAllArticles returns every article, drafts included, newest first.
func (s *Store) ListAllArticles() ([]Article, error) {
	return s.queryArticles(`SELECT ` + articleColumns + ` FROM articles ORDER BY date DESC`)
}

// ListCategories returns the sorted distinct categories of published articles.
func (s *Store) ListCategories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT category FROM articles WHERE published = 1 AND category != ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(result)
	return result, nil
}

// GetArticle returns a single published article by slug.
func (s *Store) GetArticle(slug string) (Article, error) {
	return scanArticle(s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = ? AND published = 1`, slug))
}

// GetArticleAny returns an article by slug regardless of published status (for admin).
func (s *Store) GetArticleAny(slug string) (Article, error) {
	return scanArticle(s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug))
}

// SaveArticle upserts an article. Sequence-shaped image fields are stored as
// JSON text.
func (s *Store) SaveArticle(a Article) error {
	image, err := encodeImageField(a.Image)
	if err != nil {
		return fmt.Errorf("encode image field for %s: %w", a.Slug, err)
	}
	published := 0
	if a.Published {
		published = 1
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO articles (`+articleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Slug, a.ID, a.Title, a.Date, strings.TrimSpace(a.Category), a.Summary, a.Content,
		image, a.Author, a.AuthorAvatar, published)
	return err
}

// SaveArticles upserts many articles in one transaction.
func (s *Store) SaveArticles(articles []Article) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO articles (` + articleColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, a := range articles {
		image, err := encodeImageField(a.Image)
		if err != nil {
			return fmt.Errorf("encode image field for %s: %w", a.Slug, err)
		}
		published := 0
		if a.Published {
			published = 1
		}
		if _, err := stmt.Exec(a.Slug, a.ID, a.Title, a.Date, strings.TrimSpace(a.Category), a.Summary, a.Content,
			image, a.Author, a.AuthorAvatar, published); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteArticle removes an article by slug.
func (s *Store) DeleteArticle(slug string) error {
	_, err := s.db.Exec(`DELETE FROM articles WHERE slug = ?`, slug)
	return err
}

// SaveImage records metadata for an uploaded cover image.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// ListImages returns uploaded images, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ImageExists reports whether an image with filename is recorded.
func (s *Store) ImageExists(filename string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(1) FROM images WHERE filename = ?`, filename).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteImage removes image metadata by filename.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}

// encodeImageField flattens an image field to the text stored in SQLite.
func encodeImageField(v any) (string, error) {
	switch f := v.(type) {
	case nil:
		return "", nil
	case string:
		return f, nil
	case *string:
		if f == nil {
			return "", nil
		}
		return *f, nil
	default:
		b, err := json.Marshal(f)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
