package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jbruckner/talktome/internal/importer"
	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/profile"
)

const maxImportBodySize = 10 << 20 // 10MB

// AdminDeps wires the bearer-protected management API.
type AdminDeps struct {
	Jobs     *jobs.Manager
	Profile  *profile.Manager
	Importer *importer.Importer
	Token    string
}

// NewAdminHandler returns the management API. All routes require the bearer
// token.
func NewAdminHandler(deps AdminDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(BearerAuth(deps.Token))

	r.Get("/jobs", handleListJobs(deps))
	r.Put("/jobs/{id}", handleSaveJob(deps))
	r.Get("/jobs/{id}", handleGetJob(deps))
	r.Delete("/jobs/{id}", handleDeleteJob(deps))
	r.Post("/jobs/{id}/enable", handleSetJobEnabled(deps, true))
	r.Post("/jobs/{id}/disable", handleSetJobEnabled(deps, false))

	r.Get("/profile", handleGetProfile(deps))
	r.Patch("/profile", handlePatchProfile(deps))
	r.Put("/profile", handleImportProfile(deps))
	r.Post("/profile/import-cv", handleImportCV(deps))
	r.Post("/profile/import-url", handleImportURL(deps))

	return r
}

func handleListJobs(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Admin sees disabled jobs too.
		list, err := deps.Jobs.List()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "listing jobs: %v", err)
			return
		}
		if list == nil {
			list = []jobs.Job{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(list)
	}
}

func handleSaveJob(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		defer r.Body.Close()

		var job jobs.Job
		if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		job.ID = chi.URLParam(r, "id")

		if err := deps.Jobs.Save(job); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "saving job: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": job.ID, "status": "saved"})
	}
}

func handleGetJob(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := deps.Jobs.Get(chi.URLParam(r, "id"))
		if errors.Is(err, jobs.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading job: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(job)
	}
}

func handleDeleteJob(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Jobs.Delete(chi.URLParam(r, "id"))
		if errors.Is(err, jobs.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "deleting job: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "deleted"})
	}
}

func handleSetJobEnabled(deps AdminDeps, enabled bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := deps.Jobs.SetEnabled(chi.URLParam(r, "id"), enabled)
		if errors.Is(err, jobs.ErrNotFound) {
			httpError(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "updating job: %v", err)
			return
		}
		status := "disabled"
		if enabled {
			status = "enabled"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}

func handleGetProfile(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := deps.Profile.Get()
		if err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "loading profile: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	}
}

func handlePatchProfile(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var fields map[string]any
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		for key, value := range fields {
			if err := deps.Profile.SetField(key, value); err != nil {
				httpError(w, http.StatusInternalServerError, "api_error", "setting field %q: %v", key, err)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "updated"})
	}
}

func handleImportProfile(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxImportBodySize)
		var p profile.Profile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}

		if err := deps.Profile.Import(p); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "importing profile: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "imported"})
	}
}

type importCVRequest struct {
	// Content is the base64-encoded PDF.
	Content string `json:"content"`
}

// handleImportCV extracts the text of a CV PDF and stores it as additional
// candidate facts under the cv.extra profile key.
func handleImportCV(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxImportBodySize)
		var req importCVRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		raw, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid base64 content")
			return
		}

		text, err := deps.Importer.FromPDF(raw)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "extracting pdf text: %v", err)
			return
		}
		if err := deps.Profile.SetField("cv.extra", text); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "storing extracted text: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "imported", "chars": len(text)})
	}
}

type importURLRequest struct {
	URL string `json:"url"`
}

// handleImportURL fetches a portfolio page and stores its visible text under
// the cv.extra profile key.
func handleImportURL(deps AdminDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		var req importURLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
			return
		}
		if req.URL == "" {
			httpError(w, http.StatusBadRequest, "invalid_request_error", "url is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		text, err := deps.Importer.FromURL(ctx, req.URL)
		if err != nil {
			httpError(w, http.StatusBadGateway, "api_error", "fetching url: %v", err)
			return
		}
		if err := deps.Profile.SetField("cv.extra", text); err != nil {
			httpError(w, http.StatusInternalServerError, "api_error", "storing extracted text: %v", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "imported", "chars": len(text)})
	}
}
