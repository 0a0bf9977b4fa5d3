package server

import (
	_ "embed"
	"net/http"

	"github.com/cloo-solutions/resumechat/internal/api/handlers"
	"github.com/cloo-solutions/resumechat/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

//go:embed web/index.html
var indexPage []byte

const defaultMaxBodyBytes int64 = 10 * 1024 * 1024

type RouterConfig struct {
	ResumeHandler *handlers.ResumeHandler
	HealthHandler *handlers.HealthHandler
	Logger        zerolog.Logger
	MaxBodyBytes  int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBody))

	r.Get("/", servePage)
	r.Get("/health", cfg.HealthHandler.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/resumes", cfg.ResumeHandler.Upload)
		r.Post("/chat", cfg.ResumeHandler.Chat)

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/{id}", cfg.ResumeHandler.GetSession)
			r.Delete("/{id}", cfg.ResumeHandler.DeleteSession)
		})
	})

	return r
}

func servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(indexPage)
}
