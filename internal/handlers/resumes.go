package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/BerylCAtieno/resume-parser-api/internal/models"
	"github.com/BerylCAtieno/resume-parser-api/internal/services"
	"github.com/BerylCAtieno/resume-parser-api/internal/utils"
	"github.com/gorilla/mux"
)

const (
	// formOverhead is the slack allowed on top of the file cap for the
	// multipart envelope.
	formOverhead = 1 << 20

	defaultListLimit = 20
	maxListLimit     = 100
)

type ResumeHandler struct {
	service        services.ResumeService
	maxUploadBytes int64
	logger         *utils.Logger
}

func NewResumeHandler(service services.ResumeService, maxUploadBytes int64, logger *utils.Logger) *ResumeHandler {
	return &ResumeHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

func (h *ResumeHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, models.HealthResponse{Status: "ok"})
}

func (h *ResumeHandler) ParseResume(w http.ResponseWriter, r *http.Request) {
	limit := h.maxUploadBytes + formOverhead

	// Reject oversized requests before reading the body
	if r.ContentLength > limit {
		h.respondError(w, r, utils.NewPayloadTooLargeError("File too large"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.respondError(w, r, utils.NewPayloadTooLargeError("File too large"))
			return
		}
		h.respondError(w, r, utils.NewBadRequestError("Invalid form data").WithCause(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondError(w, r, utils.NewInternalError("Internal server error").WithCause(err))
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		h.respondError(w, r, utils.NewPayloadTooLargeError("File too large"))
		return
	}

	// Dispatch and file_type use the declared string exactly as sent.
	contentType := header.Header.Get("Content-Type")

	utils.LoggerFrom(r.Context(), h.logger).Debug("File upload received",
		"filename", header.Filename,
		"content_type", contentType,
		"size", len(data))

	resp, err := h.service.Parse(r.Context(), &models.ParseRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, resp)
}

func (h *ResumeHandler) ListResumes(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultListLimit)
	if err != nil || limit < 1 || limit > maxListLimit {
		h.respondError(w, r, utils.NewBadRequestError("limit must be between 1 and 100"))
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		h.respondError(w, r, utils.NewBadRequestError("offset must be a non-negative integer"))
		return
	}

	summaries, err := h.service.ListResumes(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, summaries)
}

func (h *ResumeHandler) GetResume(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.service.GetResume(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, rec)
}

func (h *ResumeHandler) ExportResume(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	data, err := h.service.ExportResume(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="parsed_resume.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		utils.LoggerFrom(r.Context(), h.logger).Error("Failed to write export", "error", err, "id", id)
	}
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func (h *ResumeHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		utils.LoggerFrom(r.Context(), h.logger).Error("Failed to encode JSON response", "error", err)
	}
}

func (h *ResumeHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode
		message = appErr.Message
	}

	logger := utils.LoggerFrom(r.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("Request error", "status", status, "error", err)
	} else {
		logger.Warn("Request error", "status", status, "error", err)
	}

	h.respondJSON(w, r, status, models.ErrorResponse{Error: message})
}
