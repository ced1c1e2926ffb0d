package impactful

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	// SQLite's lower() only folds ASCII; fold applies the same Unicode
	// lowering that likePattern uses on the query side.
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1, foldValue)
}

func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Store is the content repository. It speaks to SQLite by default and to
// Postgres when opened with a postgres:// URL. Queries are written with ?
// placeholders and rebound for the active driver.
type Store struct {
	db       *sqlx.DB
	postgres bool
	now      func() time.Time
}

// NewStore opens (or creates) the database behind dsn and runs schema
// migrations. A dsn starting with postgres:// or postgresql:// selects
// Postgres; anything else is a SQLite file path.
func NewStore(dsn string) (*Store, error) {
	if isPostgresDSN(dsn) {
		db, err := sqlx.Open("pgx", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
		return newStore(db, true)
	}

	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed during writes; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	return newStore(db, false)
}

func newStore(db *sqlx.DB, postgres bool) (*Store, error) {
	s := &Store{db: db, postgres: postgres, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func isPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func (s *Store) ddl(stmt string) string {
	r := strings.NewReplacer(
		"{{pk}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{ts}}", "DATETIME",
		"{{bool}}", "INTEGER",
	)
	if s.postgres {
		r = strings.NewReplacer(
			"{{pk}}", "BIGSERIAL PRIMARY KEY",
			"{{ts}}", "TIMESTAMPTZ",
			"{{bool}}", "BOOLEAN",
		)
	}
	return r.Replace(stmt)
}

var baseSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id {{pk}},
    username TEXT NOT NULL UNIQUE,
    password TEXT NOT NULL,
    is_admin {{bool}} NOT NULL DEFAULT FALSE
)`,
	`CREATE TABLE IF NOT EXISTS posts (
    id {{pk}},
    title TEXT NOT NULL,
    content TEXT NOT NULL,
    date_posted {{ts}} NOT NULL,
    image_file TEXT,
    is_carousel {{bool}} NOT NULL DEFAULT FALSE
)`,
	`CREATE TABLE IF NOT EXISTS books (
    id {{pk}},
    title TEXT NOT NULL,
    author TEXT,
    description TEXT,
    category TEXT,
    file_path TEXT NOT NULL,
    date_uploaded {{ts}} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS videos (
    id {{pk}},
    title TEXT NOT NULL,
    description TEXT,
    file_path TEXT NOT NULL,
    date_uploaded {{ts}} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS about (
    id {{pk}},
    founder_name TEXT NOT NULL,
    founder_bio TEXT NOT NULL,
    founder_image TEXT,
    mission TEXT,
    vision TEXT,
    last_updated {{ts}} NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS visitors (
    id {{pk}},
    total BIGINT NOT NULL DEFAULT 0
)`,
	`CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
}

// migrations run in order; migrations[i] brings the schema to version i+1.
var migrations = [][]string{
	{},
	{
		`CREATE INDEX IF NOT EXISTS idx_posts_carousel_date ON posts(is_carousel, date_posted)`,
		`CREATE INDEX IF NOT EXISTS idx_books_date ON books(date_uploaded)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_date ON videos(date_uploaded)`,
	},
}

func (s *Store) ensureSchema() error {
	for _, stmt := range baseSchema {
		if _, err := s.db.Exec(s.ddl(stmt)); err != nil {
			return err
		}
	}
	return s.migrate()
}

// migrate applies incremental migrations based on the version stored in
// the settings table.
func (s *Store) migrate() error {
	ctx := context.Background()
	verStr, err := s.GetSetting(ctx, "schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	for i := version; i < len(migrations); i++ {
		for _, stmt := range migrations[i] {
			if _, err := s.db.Exec(s.ddl(stmt)); err != nil {
				return fmt.Errorf("migration %d: %w", i+1, err)
			}
		}
		if err := s.SetSetting(ctx, "schema_version", strconv.Itoa(i+1)); err != nil {
			return err
		}
	}
	return nil
}

// GetSetting returns the value for key, or "" when unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, s.db.Rebind(`SELECT value FROM settings WHERE key = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting upserts key.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO settings (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value`), key, value)
	return err
}

// notFound translates sql.ErrNoRows into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// likePattern builds a case-insensitive substring pattern, escaping LIKE
// metacharacters with a backslash.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// fold wraps a column in the case folding that matches likePattern.
// Postgres' lower() is already Unicode aware.
func (s *Store) fold(col string) string {
	if s.postgres {
		return "lower(" + col + ")"
	}
	return "fold(" + col + ")"
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ---- posts ----

const postColumns = `id, title, content, COALESCE(image_file, '') AS image_file, is_carousel, date_posted`

// CreatePost inserts p and returns it with ID and DatePosted set.
func (s *Store) CreatePost(ctx context.Context, p Post) (Post, error) {
	p.DatePosted = s.timestamp()
	err := s.db.GetContext(ctx, &p.ID, s.db.Rebind(`INSERT INTO posts (title, content, date_posted, image_file, is_carousel)
VALUES (?, ?, ?, ?, ?) RETURNING id`), p.Title, p.Content, p.DatePosted, nullString(p.ImageFile), p.IsCarousel)
	if err != nil {
		return Post{}, err
	}
	return p, nil
}

// UpdatePost overwrites the editable columns of p.
func (s *Store) UpdatePost(ctx context.Context, p Post) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE posts SET title = ?, content = ?, image_file = ?, is_carousel = ? WHERE id = ?`),
		p.Title, p.Content, nullString(p.ImageFile), p.IsCarousel, p.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// GetPost returns a single post by ID.
func (s *Store) GetPost(ctx context.Context, id int64) (Post, error) {
	var p Post
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+postColumns+` FROM posts WHERE id = ?`), id)
	return p, notFound(err)
}

// DeletePost removes a post and returns the removed row.
func (s *Store) DeletePost(ctx context.Context, id int64) (Post, error) {
	p, err := s.GetPost(ctx, id)
	if err != nil {
		return Post{}, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return Post{}, err
	}
	return p, checkAffected(res)
}

// ListPosts returns every post, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := s.db.SelectContext(ctx, &posts, `SELECT `+postColumns+` FROM posts ORDER BY date_posted DESC, id DESC`)
	return posts, err
}

// ListCarouselPosts returns posts flagged for the homepage banner, newest first.
func (s *Store) ListCarouselPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := s.db.SelectContext(ctx, &posts, s.db.Rebind(`SELECT `+postColumns+` FROM posts WHERE is_carousel = ? ORDER BY date_posted DESC, id DESC`), true)
	return posts, err
}

// ListLatestPosts returns up to limit non-carousel posts, newest first.
func (s *Store) ListLatestPosts(ctx context.Context, limit int) ([]Post, error) {
	var posts []Post
	err := s.db.SelectContext(ctx, &posts, s.db.Rebind(`SELECT `+postColumns+` FROM posts WHERE is_carousel = ? ORDER BY date_posted DESC, id DESC LIMIT ?`), false, limit)
	return posts, err
}

// SearchPosts matches q case-insensitively against title and content.
// An empty query matches nothing.
func (s *Store) SearchPosts(ctx context.Context, q string) ([]Post, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	pattern := likePattern(q)
	var posts []Post
	err := s.db.SelectContext(ctx, &posts, s.db.Rebind(`SELECT `+postColumns+` FROM posts
WHERE `+s.fold("title")+` LIKE ? ESCAPE '\' OR `+s.fold("content")+` LIKE ? ESCAPE '\'
ORDER BY date_posted DESC, id DESC`), pattern, pattern)
	return posts, err
}

// CountPosts returns the number of posts.
func (s *Store) CountPosts(ctx context.Context) (int, error) {
	return s.count(ctx, "posts")
}

// ---- books ----

const bookColumns = `id, title, COALESCE(author, '') AS author, COALESCE(description, '') AS description,
COALESCE(category, '') AS category, file_path, date_uploaded`

// CreateBook inserts b and returns it with ID and DateUploaded set.
func (s *Store) CreateBook(ctx context.Context, b Book) (Book, error) {
	b.DateUploaded = s.timestamp()
	err := s.db.GetContext(ctx, &b.ID, s.db.Rebind(`INSERT INTO books (title, author, description, category, file_path, date_uploaded)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		b.Title, nullString(b.Author), nullString(b.Description), nullString(b.Category), b.FilePath, b.DateUploaded)
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

// UpdateBook overwrites the editable columns of b.
func (s *Store) UpdateBook(ctx context.Context, b Book) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE books SET title = ?, author = ?, description = ?, category = ?, file_path = ? WHERE id = ?`),
		b.Title, nullString(b.Author), nullString(b.Description), nullString(b.Category), b.FilePath, b.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// GetBook returns a single book by ID.
func (s *Store) GetBook(ctx context.Context, id int64) (Book, error) {
	var b Book
	err := s.db.GetContext(ctx, &b, s.db.Rebind(`SELECT `+bookColumns+` FROM books WHERE id = ?`), id)
	return b, notFound(err)
}

// DeleteBook removes a book and returns the removed row.
func (s *Store) DeleteBook(ctx context.Context, id int64) (Book, error) {
	b, err := s.GetBook(ctx, id)
	if err != nil {
		return Book{}, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM books WHERE id = ?`), id)
	if err != nil {
		return Book{}, err
	}
	return b, checkAffected(res)
}

// ListBooks returns books newest first. limit <= 0 returns all of them.
func (s *Store) ListBooks(ctx context.Context, limit int) ([]Book, error) {
	var books []Book
	query := `SELECT ` + bookColumns + ` FROM books ORDER BY date_uploaded DESC, id DESC`
	var err error
	if limit > 0 {
		err = s.db.SelectContext(ctx, &books, s.db.Rebind(query+` LIMIT ?`), limit)
	} else {
		err = s.db.SelectContext(ctx, &books, query)
	}
	return books, err
}

// SearchBooks matches q case-insensitively against title and author.
// An empty query matches nothing.
func (s *Store) SearchBooks(ctx context.Context, q string) ([]Book, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}
	pattern := likePattern(q)
	var books []Book
	err := s.db.SelectContext(ctx, &books, s.db.Rebind(`SELECT `+bookColumns+` FROM books
WHERE `+s.fold("title")+` LIKE ? ESCAPE '\' OR `+s.fold("COALESCE(author, '')")+` LIKE ? ESCAPE '\'
ORDER BY date_uploaded DESC, id DESC`), pattern, pattern)
	return books, err
}

// CountBooks returns the number of books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	return s.count(ctx, "books")
}

// ---- videos ----

const videoColumns = `id, title, COALESCE(description, '') AS description, file_path, date_uploaded`

// CreateVideo inserts v and returns it with ID and DateUploaded set.
func (s *Store) CreateVideo(ctx context.Context, v Video) (Video, error) {
	v.DateUploaded = s.timestamp()
	err := s.db.GetContext(ctx, &v.ID, s.db.Rebind(`INSERT INTO videos (title, description, file_path, date_uploaded)
VALUES (?, ?, ?, ?) RETURNING id`), v.Title, nullString(v.Description), v.FilePath, v.DateUploaded)
	if err != nil {
		return Video{}, err
	}
	return v, nil
}

// UpdateVideo overwrites the editable columns of v.
func (s *Store) UpdateVideo(ctx context.Context, v Video) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE videos SET title = ?, description = ?, file_path = ? WHERE id = ?`),
		v.Title, nullString(v.Description), v.FilePath, v.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// GetVideo returns a single video by ID.
func (s *Store) GetVideo(ctx context.Context, id int64) (Video, error) {
	var v Video
	err := s.db.GetContext(ctx, &v, s.db.Rebind(`SELECT `+videoColumns+` FROM videos WHERE id = ?`), id)
	return v, notFound(err)
}

// DeleteVideo removes a video and returns the removed row.
func (s *Store) DeleteVideo(ctx context.Context, id int64) (Video, error) {
	v, err := s.GetVideo(ctx, id)
	if err != nil {
		return Video{}, err
	}
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM videos WHERE id = ?`), id)
	if err != nil {
		return Video{}, err
	}
	return v, checkAffected(res)
}

// ListVideos returns videos newest first. limit <= 0 returns all of them.
func (s *Store) ListVideos(ctx context.Context, limit int) ([]Video, error) {
	var videos []Video
	query := `SELECT ` + videoColumns + ` FROM videos ORDER BY date_uploaded DESC, id DESC`
	var err error
	if limit > 0 {
		err = s.db.SelectContext(ctx, &videos, s.db.Rebind(query+` LIMIT ?`), limit)
	} else {
		err = s.db.SelectContext(ctx, &videos, query)
	}
	return videos, err
}

// CountVideos returns the number of videos.
func (s *Store) CountVideos(ctx context.Context) (int, error) {
	return s.count(ctx, "videos")
}

func (s *Store) count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table)
	return n, err
}

// ---- about ----

const aboutColumns = `id, founder_name, founder_bio, COALESCE(founder_image, '') AS founder_image,
COALESCE(mission, '') AS mission, COALESCE(vision, '') AS vision, last_updated`

// GetAbout returns the first About row.
func (s *Store) GetAbout(ctx context.Context) (About, error) {
	var a About
	err := s.db.GetContext(ctx, &a, `SELECT `+aboutColumns+` FROM about ORDER BY id LIMIT 1`)
	return a, notFound(err)
}

// CreateAbout inserts a and returns it with ID and LastUpdated set.
func (s *Store) CreateAbout(ctx context.Context, a About) (About, error) {
	return createAbout(ctx, s.db, s.timestamp(), a)
}

func createAbout(ctx context.Context, q sqlx.ExtContext, now time.Time, a About) (About, error) {
	a.LastUpdated = now
	err := sqlx.GetContext(ctx, q, &a.ID, q.Rebind(`INSERT INTO about (founder_name, founder_bio, founder_image, mission, vision, last_updated)
VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		a.FounderName, a.FounderBio, nullString(a.FounderImage), nullString(a.Mission), nullString(a.Vision), a.LastUpdated)
	if err != nil {
		return About{}, err
	}
	return a, nil
}

// SaveAbout overwrites every column of a and refreshes LastUpdated.
func (s *Store) SaveAbout(ctx context.Context, a About) (About, error) {
	a.LastUpdated = s.timestamp()
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE about SET founder_name = ?, founder_bio = ?, founder_image = ?, mission = ?, vision = ?, last_updated = ? WHERE id = ?`),
		a.FounderName, a.FounderBio, nullString(a.FounderImage), nullString(a.Mission), nullString(a.Vision), a.LastUpdated, a.ID)
	if err != nil {
		return About{}, err
	}
	return a, checkAffected(res)
}

// ---- users ----

const userColumns = `id, username, password, is_admin`

// GetUserByUsername looks up an account by its unique username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	return u, notFound(err)
}

// GetUser looks up an account by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	return u, notFound(err)
}

// CreateUser inserts u. PasswordHash must already be hashed.
func (s *Store) CreateUser(ctx context.Context, u User) (User, error) {
	return createUser(ctx, s.db, u)
}

func createUser(ctx context.Context, q sqlx.ExtContext, u User) (User, error) {
	err := sqlx.GetContext(ctx, q, &u.ID, q.Rebind(`INSERT INTO users (username, password, is_admin) VALUES (?, ?, ?) RETURNING id`),
		u.Username, u.PasswordHash, u.IsAdmin)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UpdatePassword replaces the stored hash for a user.
func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET password = ? WHERE id = ?`), hash, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// ---- visitors ----

// VisitorCount returns the current visitor total.
func (s *Store) VisitorCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `SELECT total FROM visitors ORDER BY id LIMIT 1`)
	return n, notFound(err)
}

// IncrementVisitors bumps the counter and returns the new total.
func (s *Store) IncrementVisitors(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.GetContext(ctx, &n, `UPDATE visitors SET total = total + 1
WHERE id = (SELECT MIN(id) FROM visitors) RETURNING total`)
	return n, notFound(err)
}
