package models

import (
	"time"
)

// ParseRequest is one uploaded document, held only for the request.
type ParseRequest struct {
	File        []byte
	Filename    string
	ContentType string
}

type ParseResponse struct {
	RawText  string   `json:"raw_text"`
	Links    []string `json:"links"`
	FileType string   `json:"file_type"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// ResumeRecord is the stored outcome of a successful parse. The uploaded
// file itself is never stored.
type ResumeRecord struct {
	ID          string    `json:"id" db:"id"`
	Filename    string    `json:"filename" db:"filename"`
	ContentType string    `json:"file_type" db:"content_type"`
	FileSize    int64     `json:"file_size" db:"file_size"`
	SHA256      string    `json:"sha256" db:"sha256"`
	RawText     string    `json:"raw_text,omitempty" db:"raw_text"`
	Links       []string  `json:"links" db:"-"`
	ArchiveKey  *string   `json:"archive_key,omitempty" db:"archive_key"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ResumeSummary is the list view of a ResumeRecord.
type ResumeSummary struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"file_type"`
	FileSize    int64     `json:"file_size"`
	Links       []string  `json:"links"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *ResumeRecord) Summary() ResumeSummary {
	return ResumeSummary{
		ID:          r.ID,
		Filename:    r.Filename,
		ContentType: r.ContentType,
		FileSize:    r.FileSize,
		Links:       r.Links,
		CreatedAt:   r.CreatedAt,
	}
}
