package router

import (
	"net/http"

	"github.com/BerylCAtieno/resume-parser-api/internal/config"
	"github.com/BerylCAtieno/resume-parser-api/internal/handlers"
	"github.com/BerylCAtieno/resume-parser-api/internal/metrics"
	"github.com/BerylCAtieno/resume-parser-api/internal/middleware"
	"github.com/BerylCAtieno/resume-parser-api/internal/services"
	"github.com/BerylCAtieno/resume-parser-api/internal/utils"

	"github.com/gorilla/mux"
)

func NewRouter(cfg *config.Config, resumeService services.ResumeService, m *metrics.Metrics, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Recovery(logger))

	resumeHandler := handlers.NewResumeHandler(resumeService, cfg.MaxUploadBytes(), logger)

	// Routes
	r.HandleFunc("/health", resumeHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/parse", resumeHandler.ParseResume).Methods(http.MethodPost)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	// Parse records
	if cfg.RecordsEnabled() {
		r.HandleFunc("/resumes", resumeHandler.ListResumes).Methods(http.MethodGet)
		r.HandleFunc("/resumes/{id}", resumeHandler.GetResume).Methods(http.MethodGet)
		r.HandleFunc("/resumes/{id}/export", resumeHandler.ExportResume).Methods(http.MethodGet)
	}

	// CORS wraps the router so preflight requests are answered before
	// route matching.
	return middleware.CORS(cfg.CORSAllowOrigins)(r)
}
