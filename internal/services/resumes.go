package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BerylCAtieno/resume-parser-api/internal/config"
	"github.com/BerylCAtieno/resume-parser-api/internal/extractor"
	"github.com/BerylCAtieno/resume-parser-api/internal/metrics"
	"github.com/BerylCAtieno/resume-parser-api/internal/models"
	"github.com/BerylCAtieno/resume-parser-api/internal/repository"
	"github.com/BerylCAtieno/resume-parser-api/internal/storage"
	"github.com/BerylCAtieno/resume-parser-api/internal/utils"

	"github.com/gabriel-vasile/mimetype"
)

type ResumeService interface {
	Parse(ctx context.Context, req *models.ParseRequest) (*models.ParseResponse, error)
	GetResume(ctx context.Context, id string) (*models.ResumeRecord, error)
	ListResumes(ctx context.Context, limit, offset int) ([]models.ResumeSummary, error)
	ExportResume(ctx context.Context, id string) ([]byte, error)
}

type resumeService struct {
	cfg     *config.Config
	repo    repository.Repository
	storage storage.Storage
	metrics *metrics.Metrics
	logger  *utils.Logger
}

// NewService wires the parse pipeline. repo and store may be nil, which
// disables parse records and result archiving respectively.
func NewService(cfg *config.Config, repo repository.Repository, store storage.Storage, m *metrics.Metrics, logger *utils.Logger) ResumeService {
	return &resumeService{
		cfg:     cfg,
		repo:    repo,
		storage: store,
		metrics: m,
		logger:  logger,
	}
}

func (s *resumeService) Parse(ctx context.Context, req *models.ParseRequest) (*models.ParseResponse, error) {
	logger := utils.LoggerFrom(ctx, s.logger)

	extract, ok := extractor.ForContentType(req.ContentType)
	if !ok {
		logger.Warn("Unsupported content type", "content_type", req.ContentType, "filename", req.Filename)
		s.metrics.ObserveExtraction(req.ContentType, metrics.OutcomeUnsupported, 0, 0)
		return nil, utils.NewBadRequestError("Unsupported file type")
	}

	if s.cfg.VerifyContent {
		detected := mimetype.Detect(req.File)
		if !detected.Is(req.ContentType) {
			logger.Warn("Declared content type does not match content",
				"content_type", req.ContentType,
				"detected", detected.String(),
				"filename", req.Filename)
			s.metrics.ObserveExtraction(req.ContentType, metrics.OutcomeMismatch, 0, 0)
			return nil, utils.NewUnsupportedMediaError("File content does not match declared type")
		}
	}

	start := time.Now()
	result, err := s.extractFromTempFile(req, extract)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		var parseErr *extractor.ParseError
		if errors.As(err, &parseErr) {
			logger.Warn("Failed to parse document", "error", err, "content_type", req.ContentType, "filename", req.Filename)
			s.metrics.ObserveExtraction(req.ContentType, metrics.OutcomeParseError, elapsed, 0)
			return nil, utils.NewUnprocessableError("Failed to parse document").WithCause(err)
		}
		logger.Error("Failed to stage upload", "error", err, "filename", req.Filename)
		return nil, utils.NewInternalError("Internal server error").WithCause(err)
	}

	s.metrics.ObserveExtraction(req.ContentType, metrics.OutcomeSuccess, elapsed, len(result.Links))

	logger.Info("Document parsed",
		"filename", req.Filename,
		"content_type", req.ContentType,
		"pages", result.Pages,
		"text_length", len(result.Text),
		"links", len(result.Links))

	resp := &models.ParseResponse{
		RawText:  result.Text,
		Links:    result.Links,
		FileType: req.ContentType,
	}

	s.record(ctx, req, resp)

	return resp, nil
}

// extractFromTempFile stages the upload in a temporary file for the
// extractor and removes it on every path.
func (s *resumeService) extractFromTempFile(req *models.ParseRequest, extract extractor.Func) (*extractor.Result, error) {
	tmp, err := os.CreateTemp(s.cfg.TempDir, "resume-*"+suffixFor(req.ContentType))
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(req.File); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return extract(tmp.Name())
}

// suffixFor is the temp file extension for a supported content type.
func suffixFor(contentType string) string {
	switch contentType {
	case extractor.ContentTypePDF:
		return ".pdf"
	case extractor.ContentTypeDOCX:
		return ".docx"
	}
	return ""
}

// record stores the parse result and archives it when configured. It
// never fails the request; problems are only logged.
func (s *resumeService) record(ctx context.Context, req *models.ParseRequest, resp *models.ParseResponse) {
	if s.repo == nil {
		return
	}
	logger := utils.LoggerFrom(ctx, s.logger)

	sum := sha256.Sum256(req.File)
	hash := hex.EncodeToString(sum[:])

	rec := &models.ResumeRecord{
		ID:          utils.GenerateID(),
		Filename:    req.Filename,
		ContentType: req.ContentType,
		FileSize:    int64(len(req.File)),
		SHA256:      hash,
		RawText:     resp.RawText,
		Links:       resp.Links,
		CreatedAt:   time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		logger.Error("Failed to save parse record", "error", err, "filename", req.Filename)
		return
	}
	if !created {
		if existing, err := s.repo.FindByHash(ctx, hash, req.ContentType); err == nil && existing != nil {
			logger.Debug("Parse record already exists", "id", existing.ID, "sha256", hash)
		}
		return
	}

	if s.storage == nil {
		return
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		logger.Error("Failed to encode parse result", "error", err, "id", rec.ID)
		return
	}

	key := storage.ResultKey(rec.ID)
	if err := s.storage.Upload(ctx, key, payload, "application/json"); err != nil {
		logger.Error("Failed to archive parse result", "error", err, "id", rec.ID, "key", key)
		return
	}

	if err := s.repo.SetArchiveKey(ctx, rec.ID, key); err != nil {
		logger.Error("Failed to save archive key", "error", err, "id", rec.ID)
		// Attempt to cleanup S3
		_ = s.storage.Delete(ctx, key)
	}
}

func (s *resumeService) GetResume(ctx context.Context, id string) (*models.ResumeRecord, error) {
	if s.repo == nil {
		return nil, utils.NewNotFoundError("Resume not found")
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		utils.LoggerFrom(ctx, s.logger).Error("Failed to get resume", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve resume")
	}
	if rec == nil {
		return nil, utils.NewNotFoundError("Resume not found")
	}

	return rec, nil
}

func (s *resumeService) ListResumes(ctx context.Context, limit, offset int) ([]models.ResumeSummary, error) {
	if s.repo == nil {
		return []models.ResumeSummary{}, nil
	}

	records, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		utils.LoggerFrom(ctx, s.logger).Error("Failed to list resumes", "error", err)
		return nil, utils.NewInternalError("Failed to list resumes")
	}

	summaries := make([]models.ResumeSummary, 0, len(records))
	for i := range records {
		summaries = append(summaries, records[i].Summary())
	}
	return summaries, nil
}

func (s *resumeService) ExportResume(ctx context.Context, id string) ([]byte, error) {
	rec, err := s.GetResume(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.storage == nil || rec.ArchiveKey == nil {
		return nil, utils.NewNotFoundError("Export not available")
	}

	data, err := s.storage.Download(ctx, *rec.ArchiveKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewNotFoundError("Export not available")
	}
	if err != nil {
		utils.LoggerFrom(ctx, s.logger).Error("Failed to download archived result", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to export resume")
	}

	return data, nil
}
