// Package api implements the HTTP surface: the public chat endpoint with SSE
// streaming, the job intro endpoint, and the bearer-protected admin API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jbruckner/talktome/internal/chat"
	"github.com/jbruckner/talktome/internal/i18n"
	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/model"
	"github.com/jbruckner/talktome/internal/profile"
)

const maxRequestBodySize = 1 << 20 // 1MB

const sessionCookie = "talktome_session"

// PublicDeps wires the public handler.
type PublicDeps struct {
	Orchestrator *chat.Orchestrator
	Jobs         *jobs.Manager
	Profile      *profile.Manager
}

// NewPublicHandler returns the unauthenticated HTTP surface. The returned
// router has room left at "/" for mounting the server-rendered site pages.
func NewPublicHandler(deps PublicDeps) chi.Router {
	r := chi.NewRouter()

	r.Get("/health", handleHealth)
	r.Post("/api/chat", handleChat(deps))
	r.Get("/api/jobs/{id}/intro", handleIntro(deps))
	r.Get("/api/jobs/{id}/history", handleHistory(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type chatRequest struct {
	JobID   string `json:"jobId"`
	Message string `json:"message"`
}

// handleChat runs one turn and streams the reply as SSE: zero or more `delta`
// events with partial text, then exactly one `message` event with the
// committed assistant reply, or one `error` event. Errors detected before any
// delta was flushed are reported as plain HTTP errors instead.
func handleChat(deps PublicDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.JobID == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "jobId is required")
			return
		}

		sessionID, setCookie := sessionID(r)
		if setCookie != nil {
			http.SetCookie(w, setCookie)
		}

		stream := newSSEWriter(w)
		msg, err := deps.Orchestrator.Turn(r.Context(), sessionID, req.JobID, req.Message, func(delta string) {
			stream.event("delta", map[string]string{"text": delta})
		})
		if err != nil {
			code, errType := classifyTurnError(err)
			if stream.started {
				stream.event("error", map[string]any{
					"error": map[string]string{"message": err.Error(), "type": errType},
				})
				return
			}
			httpError(w, code, errType, "%v", err)
			return
		}

		stream.event("message", msg)
	}
}

func classifyTurnError(err error) (int, string) {
	switch {
	case errors.Is(err, jobs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, chat.ErrTurnInFlight):
		return http.StatusConflict, "turn_in_flight"
	case errors.Is(err, chat.ErrEmptyUtterance):
		return http.StatusBadRequest, "invalid_request_error"
	case errors.Is(err, chat.ErrToolMismatch), errors.Is(err, model.ErrUnavailable):
		return http.StatusBadGateway, "model_error"
	default:
		return http.StatusBadGateway, "model_error"
	}
}

// sessionID returns the visitor's session id, minting a new cookie when none
// is present.
func sessionID(r *http.Request) (string, *http.Cookie) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	id := uuid.New().String()
	return id, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// sseWriter lazily switches the response to an SSE stream on first event so
// pre-stream failures can still use plain HTTP status codes.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	started bool
}

func newSSEWriter(w http.ResponseWriter) *sseWriter {
	flusher, _ := w.(http.Flusher)
	return &sseWriter{w: w, flusher: flusher}
}

func (s *sseWriter) event(name string, payload any) {
	if !s.started {
		s.w.Header().Set("Content-Type", "text/event-stream")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.Header().Set("Connection", "keep-alive")
		s.started = true
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data)
	if s.flusher != nil {
		s.flusher.Flush()
	}
}

type introResponse struct {
	Company   string   `json:"company"`
	Position  string   `json:"position"`
	Language  string   `json:"language"`
	Greeting  string   `json:"greeting"`
	Questions []string `json:"questions"`
}

// handleIntro returns the localized greeting and suggested opening questions
// for a job's chat page.
func handleIntro(deps PublicDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := deps.Jobs.Resolve(chi.URLParam(r, "id"))
		if errors.Is(err, jobs.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading job: %v", err)
			return
		}

		p, err := deps.Profile.Get()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading profile: %v", err)
			return
		}

		tr := i18n.T(job.Language)
		questions := job.DefaultQuestions
		if len(questions) == 0 {
			questions = tr.DefaultQuestions
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(introResponse{
			Company:  job.Company,
			Position: job.Position,
			Language: string(job.Language),
			Greeting: fmt.Sprintf("%s %s. %s %s.",
				tr.Hello, p.Name, tr.AskMeQuestions, job.Position),
			Questions: questions,
		})
	}
}

// handleHistory returns the display history of the visitor's conversation for
// a job. Visitors without a session get an empty history.
func handleHistory(deps PublicDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "id")
		if _, err := deps.Jobs.Resolve(jobID); errors.Is(err, jobs.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "job not found")
			return
		} else if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading job: %v", err)
			return
		}

		history := []chat.ClientMessage{}
		if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
			for _, m := range deps.Orchestrator.History(c.Value, jobID) {
				history = append(history, chat.ClientMessage{ID: m.ID, Role: m.Role, Display: m.Display})
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(history)
	}
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
