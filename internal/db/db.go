// Package db implements store.Store on database/sql for SQLite and Postgres.
package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "imagemarket/internal/errors"
	"imagemarket/internal/models"
	"imagemarket/internal/store"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported driver names.
const (
	DriverSQLite3  = "sqlite3"  // mattn/go-sqlite3 (cgo)
	DriverSQLite   = "sqlite"   // modernc.org/sqlite (pure Go)
	DriverPostgres = "postgres" // lib/pq
)

type DB struct {
	*sql.DB
	driver string
	ids    *store.IDGenerator
}

var _ store.Store = (*DB)(nil)

// Init opens the database, creates missing tables and, when seed is set and
// the catalogue is empty, inserts the demo uploads.
func Init(driver, dsn string, seed bool) (*DB, error) {
	switch driver {
	case DriverSQLite3, DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver != DriverPostgres {
		// SQLite allows a single writer.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	db := &DB{DB: conn, driver: driver, ids: store.NewIDGenerator()}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.observeIDs(); err != nil {
		conn.Close()
		return nil, err
	}
	if seed {
		if err := db.seed(); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return db, nil
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS uploads (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			thumbnail TEXT NOT NULL DEFAULT '',
			is_user_upload BOOLEAN NOT NULL DEFAULT TRUE,
			user_id TEXT NOT NULL,
			price_cents BIGINT NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT 'other',
			filename TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_user_id ON uploads(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_uploads_category ON uploads(category)`,
		`CREATE TABLE IF NOT EXISTS entitlements (
			user_id TEXT NOT NULL,
			image_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			source TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			price_cents BIGINT NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL,
			PRIMARY KEY (user_id, image_id, kind)
		)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (db *DB) observeIDs() error {
	rows, err := db.Query(`SELECT id FROM uploads`)
	if err != nil {
		return fmt.Errorf("failed to read upload ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan upload id: %w", err)
		}
		db.ids.Observe(id)
	}
	return rows.Err()
}

func (db *DB) seed() error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM uploads`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count uploads: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, u := range store.DemoUploads() {
		if _, err := db.CreateUpload(context.Background(), u); err != nil {
			return fmt.Errorf("failed to seed upload %s: %w", u.ID, err)
		}
		db.ids.Observe(u.ID)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const uploadColumns = `id, title, description, url, thumbnail, is_user_upload, user_id, price_cents, category, filename, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUpload(row rowScanner) (models.Upload, error) {
	var (
		u       models.Upload
		cents   int64
		created int64
	)
	err := row.Scan(&u.ID, &u.Title, &u.Description, &u.URL, &u.Thumbnail, &u.IsUserUpload,
		&u.UserID, &cents, &u.Category, &u.Filename, &created)
	if err != nil {
		return models.Upload{}, err
	}
	u.Price = models.Price(cents)
	u.CreatedAt = time.Unix(0, created).UTC()
	return u, nil
}

func (db *DB) ListUploads(ctx context.Context, filter models.UploadFilter) ([]models.Upload, error) {
	query := `SELECT ` + uploadColumns + ` FROM uploads WHERE 1=1`
	var args []any
	if filter.UserID != "" {
		query += ` AND user_id = ?`
		args = append(args, filter.UserID)
	}
	if filter.Category != "" && filter.Category != models.CategoryAll {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	query += ` ORDER BY created_at, id`

	rows, err := db.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, apperrors.Internal("failed to list uploads", err)
	}
	defer rows.Close()

	uploads := []models.Upload{}
	for rows.Next() {
		u, err := scanUpload(rows)
		if err != nil {
			return nil, apperrors.Internal("failed to scan upload", err)
		}
		// q is matched in Go with the same folding matcher as the memory store.
		if filter.Matches(u) {
			uploads = append(uploads, u)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to list uploads", err)
	}
	return uploads, nil
}

func (db *DB) GetUpload(ctx context.Context, id string) (models.Upload, error) {
	return getUpload(ctx, db.DB, db.rebind, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getUpload(ctx context.Context, q queryRower, rebind func(string) string, id string) (models.Upload, error) {
	row := q.QueryRowContext(ctx, rebind(`SELECT `+uploadColumns+` FROM uploads WHERE id = ?`), id)
	u, err := scanUpload(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return models.Upload{}, apperrors.NotFound("Image not found")
		}
		return models.Upload{}, apperrors.Internal("failed to get upload", err)
	}
	return u, nil
}

func (db *DB) CreateUpload(ctx context.Context, upload models.Upload) (models.Upload, error) {
	if upload.ID == "" {
		upload.ID = db.ids.Next()
	}
	if upload.CreatedAt.IsZero() {
		upload.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO uploads (` + uploadColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`
	res, err := db.ExecContext(ctx, db.rebind(query),
		upload.ID, upload.Title, upload.Description, upload.URL, upload.Thumbnail, upload.IsUserUpload,
		upload.UserID, upload.Price.Cents(), upload.Category, upload.Filename, upload.CreatedAt.UnixNano())
	if err != nil {
		return models.Upload{}, apperrors.Internal("failed to create upload", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Upload{}, apperrors.Internal("failed to create upload", err)
	}
	if n == 0 {
		return models.Upload{}, apperrors.Validation("upload id already exists")
	}
	return upload, nil
}

func (db *DB) UpdateUpload(ctx context.Context, id string, patch models.UploadPatch) (models.Upload, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.Upload{}, apperrors.Internal("failed to begin update", err)
	}
	defer tx.Rollback()

	current, err := getUpload(ctx, tx, db.rebind, id)
	if err != nil {
		return models.Upload{}, err
	}
	updated := patch.Apply(current)

	query := `UPDATE uploads SET title = ?, description = ?, url = ?, thumbnail = ?, price_cents = ?, category = ?, filename = ? WHERE id = ?`
	_, err = tx.ExecContext(ctx, db.rebind(query),
		updated.Title, updated.Description, updated.URL, updated.Thumbnail, updated.Price.Cents(),
		updated.Category, updated.Filename, id)
	if err != nil {
		return models.Upload{}, apperrors.Internal("failed to update upload", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Upload{}, apperrors.Internal("failed to commit update", err)
	}
	return updated, nil
}

func (db *DB) DeleteUpload(ctx context.Context, id string) error {
	result, err := db.ExecContext(ctx, db.rebind(`DELETE FROM uploads WHERE id = ?`), id)
	if err != nil {
		return apperrors.Internal("failed to delete upload", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return apperrors.Internal("failed to delete upload", err)
	}
	if n == 0 {
		return apperrors.NotFound("Image not found")
	}
	return nil
}

const entitlementColumns = `user_id, image_id, kind, source, title, price_cents, created_at`

func scanEntitlement(row rowScanner) (models.Entitlement, error) {
	var (
		e       models.Entitlement
		kind    string
		source  string
		cents   int64
		created int64
	)
	if err := row.Scan(&e.UserID, &e.ImageID, &kind, &source, &e.Title, &cents, &created); err != nil {
		return models.Entitlement{}, err
	}
	e.Kind = models.EntitlementKind(kind)
	e.Source = models.ImageSource(source)
	e.Price = models.Price(cents)
	e.CreatedAt = time.Unix(0, created).UTC()
	return e, nil
}

func (db *DB) RecordEntitlement(ctx context.Context, e models.Entitlement) (models.Entitlement, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO entitlements (` + entitlementColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, image_id, kind) DO NOTHING`
	_, err := db.ExecContext(ctx, db.rebind(query),
		e.UserID, e.ImageID, string(e.Kind), string(e.Source), e.Title, e.Price.Cents(), e.CreatedAt.UnixNano())
	if err != nil {
		return models.Entitlement{}, apperrors.Internal("failed to record entitlement", err)
	}

	row := db.QueryRowContext(ctx,
		db.rebind(`SELECT `+entitlementColumns+` FROM entitlements WHERE user_id = ? AND image_id = ? AND kind = ?`),
		e.UserID, e.ImageID, string(e.Kind))
	stored, err := scanEntitlement(row)
	if err != nil {
		return models.Entitlement{}, apperrors.Internal("failed to read entitlement", err)
	}
	return stored, nil
}

func (db *DB) ListEntitlements(ctx context.Context, userID string, kind models.EntitlementKind) ([]models.Entitlement, error) {
	rows, err := db.QueryContext(ctx,
		db.rebind(`SELECT `+entitlementColumns+` FROM entitlements WHERE user_id = ? AND kind = ? ORDER BY created_at, image_id`),
		userID, string(kind))
	if err != nil {
		return nil, apperrors.Internal("failed to list entitlements", err)
	}
	defer rows.Close()

	out := []models.Entitlement{}
	for rows.Next() {
		e, err := scanEntitlement(rows)
		if err != nil {
			return nil, apperrors.Internal("failed to scan entitlement", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Internal("failed to list entitlements", err)
	}
	return out, nil
}

func (db *DB) HasEntitlement(ctx context.Context, userID, imageID string, kind models.EntitlementKind) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		db.rebind(`SELECT COUNT(*) FROM entitlements WHERE user_id = ? AND image_id = ? AND kind = ?`),
		userID, imageID, string(kind)).Scan(&count)
	if err != nil {
		return false, apperrors.Internal("failed to check entitlement", err)
	}
	return count > 0, nil
}
