package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when a content id has no record.
var ErrNotFound = errors.New("content not found")

const contentColumns = `id, title, description, category, featured, thumbnail, source, video_url, file_size, created_at`

type SQLiteStorage struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sqlx.Connect("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStorage{db: db, now: time.Now}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.db.DB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// ListContent returns every record, newest first.
func (s *SQLiteStorage) ListContent(ctx context.Context) ([]ContentItem, error) {
	items := []ContentItem{}
	err := s.db.SelectContext(ctx, &items,
		`SELECT `+contentColumns+` FROM content ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SQLiteStorage) GetContent(ctx context.Context, id string) (*ContentItem, error) {
	var item ContentItem
	err := s.db.GetContext(ctx, &item, `SELECT `+contentColumns+` FROM content WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateContent stores a new record under a fresh id and returns it.
func (s *SQLiteStorage) CreateContent(ctx context.Context, n NewContent) (*ContentItem, error) {
	item := &ContentItem{
		ID:          uuid.NewString(),
		Title:       n.Title,
		Description: n.Description,
		Category:    n.Category,
		Featured:    n.Featured,
		Thumbnail:   n.Thumbnail,
		Source:      n.Source,
		VideoURL:    n.VideoURL,
		FileSize:    n.FileSize,
		CreatedAt:   s.now().UTC(),
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO content (`+contentColumns+`)
		VALUES (:id, :title, :description, :category, :featured, :thumbnail, :source, :video_url, :file_size, :created_at)
	`, item)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// DeleteContent removes a record. It returns ErrNotFound when id is absent.
func (s *SQLiteStorage) DeleteContent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM content WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats returns the number of records and the sum of recorded file sizes.
// sized counts the records that carry a size.
func (s *SQLiteStorage) Stats(ctx context.Context) (total int, sized int, bytes int64, err error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT COUNT(*),
		       COUNT(CASE WHEN file_size > 0 THEN 1 END),
		       COALESCE(SUM(file_size), 0)
		FROM content
	`)
	err = row.Scan(&total, &sized, &bytes)
	return total, sized, bytes, err
}
