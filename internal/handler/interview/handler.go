package interview

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/voiceprep/interview-agent/internal/service/evaluation"
	interviewService "github.com/voiceprep/interview-agent/internal/service/interview"
	"github.com/voiceprep/interview-agent/pkg/utils"
)

// maxAudioBytes caps one recorded answer. A minute of 16kHz mono PCM is
// under 2MB, so 10MB leaves room for uncompressed formats.
const maxAudioBytes = 10 << 20

// RoleLister exposes the roles the question bank can open an interview for.
type RoleLister interface {
	Roles() []string
}

// Handler exposes the interview session over HTTP.
type Handler struct {
	sessions *interviewService.Service
	roles    RoleLister
}

// New creates the interview handler.
func New(sessions *interviewService.Service, roles RoleLister) *Handler {
	return &Handler{sessions: sessions, roles: roles}
}

// RegisterRoutes mounts the interview endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/interview", func(r chi.Router) {
		r.Get("/roles", h.handleRoles)
		r.Post("/start", h.handleStart)
		r.Post("/answer", h.handleAnswer)
		r.Post("/stop", h.handleStop)
		r.Get("/status", h.handleStatus)
	})
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{"roles": h.roles.Roles()})
}

type startRequest struct {
	Role string `json:"role"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.sessions.ConfirmRole(r.Context(), req.Role)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

type answerRequest struct {
	Text string `json:"text"`
}

// handleAnswer accepts a typed answer as JSON or a recorded one as
// multipart form data with an "audio" file part.
func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		h.handleAudioAnswer(w, r)
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.sessions.SubmitAnswer(r.Context(), req.Text)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleAudioAnswer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "audio file part is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "failed to read audio")
		return
	}

	format := r.FormValue("format")
	if format == "" {
		format = formatFromFilename(header.Filename)
	}

	result, err := h.sessions.SubmitAudio(r.Context(), audio, format)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleStop(w http.ResponseWriter, r *http.Request) {
	report, err := h.sessions.RequestStop(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.sessions.Status())
}

// respondServiceError maps session errors to HTTP statuses. Client mistakes
// are 4xx, collaborator failures are 5xx.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interviewService.ErrRoleRequired):
		utils.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interviewService.ErrAlreadyActive),
		errors.Is(err, interviewService.ErrNoSession),
		errors.Is(err, interviewService.ErrTurnInFlight):
		utils.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, interviewService.ErrNotConfigured):
		utils.RespondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, interviewService.ErrCommunication),
		errors.Is(err, evaluation.ErrInvalidFeedback):
		utils.RespondError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("[interview] unexpected error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, "internal error")
	}
}

func formatFromFilename(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i+1 < len(name) {
		return strings.ToLower(name[i+1:])
	}
	return "wav"
}
