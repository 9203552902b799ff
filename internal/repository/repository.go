package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/resume-parser-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	// Create inserts rec and reports false when a record with the same
	// (sha256, content_type) already exists.
	Create(ctx context.Context, rec *models.ResumeRecord) (bool, error)
	GetByID(ctx context.Context, id string) (*models.ResumeRecord, error)
	FindByHash(ctx context.Context, sha256, contentType string) (*models.ResumeRecord, error)
	List(ctx context.Context, limit, offset int) ([]models.ResumeRecord, error)
	SetArchiveKey(ctx context.Context, id, key string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// resumeRow mirrors the resumes table; links are stored as a JSON array.
type resumeRow struct {
	ID          string         `db:"id"`
	Filename    string         `db:"filename"`
	ContentType string         `db:"content_type"`
	FileSize    int64          `db:"file_size"`
	SHA256      string         `db:"sha256"`
	RawText     string         `db:"raw_text"`
	Links       string         `db:"links"`
	ArchiveKey  sql.NullString `db:"archive_key"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r resumeRow) toRecord() (*models.ResumeRecord, error) {
	rec := &models.ResumeRecord{
		ID:          r.ID,
		Filename:    r.Filename,
		ContentType: r.ContentType,
		FileSize:    r.FileSize,
		SHA256:      r.SHA256,
		RawText:     r.RawText,
		Links:       []string{},
		CreatedAt:   r.CreatedAt,
	}
	if r.ArchiveKey.Valid {
		key := r.ArchiveKey.String
		rec.ArchiveKey = &key
	}
	if r.Links != "" {
		if err := json.Unmarshal([]byte(r.Links), &rec.Links); err != nil {
			return nil, fmt.Errorf("failed to decode links for %s: %w", r.ID, err)
		}
	}
	return rec, nil
}

const selectColumns = `id, filename, content_type, file_size, sha256, raw_text, links, archive_key, created_at`

func (r *repository) Create(ctx context.Context, rec *models.ResumeRecord) (bool, error) {
	links := rec.Links
	if links == nil {
		links = []string{}
	}
	linksJSON, err := json.Marshal(links)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO resumes (id, filename, content_type, file_size, sha256, raw_text, links, archive_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sha256, content_type) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Filename,
		rec.ContentType,
		rec.FileSize,
		rec.SHA256,
		rec.RawText,
		string(linksJSON),
		rec.ArchiveKey,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.ResumeRecord, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM resumes WHERE id = ?`, id)
}

func (r *repository) FindByHash(ctx context.Context, sha256, contentType string) (*models.ResumeRecord, error) {
	return r.getOne(ctx, `SELECT `+selectColumns+` FROM resumes WHERE sha256 = ? AND content_type = ?`, sha256, contentType)
}

// getOne returns nil, nil when no row matches.
func (r *repository) getOne(ctx context.Context, query string, args ...any) (*models.ResumeRecord, error) {
	var row resumeRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toRecord()
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]models.ResumeRecord, error) {
	var rows []resumeRow
	query := `SELECT ` + selectColumns + ` FROM resumes ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, err
	}

	records := make([]models.ResumeRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (r *repository) SetArchiveKey(ctx context.Context, id, key string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE resumes SET archive_key = ? WHERE id = ?`, key, id)
	return err
}
