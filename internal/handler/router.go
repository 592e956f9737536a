package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	interviewHandler "github.com/voiceprep/interview-agent/internal/handler/interview"
	middlewarePkg "github.com/voiceprep/interview-agent/internal/middleware"
	"github.com/voiceprep/interview-agent/internal/questionbank"
	interviewService "github.com/voiceprep/interview-agent/internal/service/interview"
	speechService "github.com/voiceprep/interview-agent/internal/service/speech"
	"github.com/voiceprep/interview-agent/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(sessions *interviewService.Service, bank *questionbank.Bank, speechSvc *speechService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	sessionHandler := interviewHandler.New(sessions, bank)

	r.Route("/api", func(api chi.Router) {
		sessionHandler.RegisterRoutes(api)

		api.Get("/speech/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]any{
				"configured": speechSvc != nil,
			})
		})
	})

	return r
}
