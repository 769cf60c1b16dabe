// Package site renders the public micro-site pages for a job application:
// overview, CV, cover letter, and the chat shell. Markdown content (job
// description, cover letter paragraphs) is rendered through goldmark.
package site

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jbruckner/talktome/internal/i18n"
	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/profile"
)

//go:embed templates/*.html
var templateFS embed.FS

// JobResolver resolves public job ids. Implemented by jobs.Manager.
type JobResolver interface {
	Resolve(id string) (jobs.Job, error)
}

// ProfileSource supplies the candidate profile. Implemented by
// profile.Manager.
type ProfileSource interface {
	Get() (profile.Profile, error)
}

// Site renders the per-job pages.
type Site struct {
	jobs      JobResolver
	profiles  ProfileSource
	templates *template.Template
	markdown  goldmark.Markdown
}

// New parses the embedded templates and returns a Site.
func New(jobResolver JobResolver, profiles ProfileSource) (*Site, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Site{
		jobs:      jobResolver,
		profiles:  profiles,
		templates: t,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}, nil
}

// Routes returns the page routes, keyed by job id.
func (s *Site) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/{id}", s.page("overview.html"))
	r.Get("/{id}/cv", s.page("cv.html"))
	r.Get("/{id}/letter", s.page("letter.html"))
	r.Get("/{id}/talk", s.page("talk.html"))
	return r
}

// pageData is the template context shared by all pages.
type pageData struct {
	Job     jobs.Job
	Profile profile.Profile
	T       i18n.Translations

	// DescriptionHTML is the job description rendered from markdown.
	DescriptionHTML template.HTML

	// LetterParagraphs are the cover letter paragraphs rendered from markdown.
	LetterParagraphs []template.HTML

	// Questions are the suggested chat openers.
	Questions []string
}

func (s *Site) page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := s.jobs.Resolve(chi.URLParam(r, "id"))
		if errors.Is(err, jobs.ErrNotFound) {
			s.renderNotFound(w)
			return
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		p, err := s.profiles.Get()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		data, err := s.buildPageData(job, p)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func (s *Site) buildPageData(job jobs.Job, p profile.Profile) (pageData, error) {
	tr := i18n.T(job.Language)

	descHTML, err := s.renderMarkdown(job.Description)
	if err != nil {
		return pageData{}, err
	}

	var paragraphs []template.HTML
	if job.CoverLetter != nil {
		for _, para := range job.CoverLetter.Paragraphs {
			h, err := s.renderMarkdown(para)
			if err != nil {
				return pageData{}, err
			}
			paragraphs = append(paragraphs, h)
		}
	}

	questions := job.DefaultQuestions
	if len(questions) == 0 {
		questions = tr.DefaultQuestions
	}

	return pageData{
		Job:              job,
		Profile:          p,
		T:                tr,
		DescriptionHTML:  descHTML,
		LetterParagraphs: paragraphs,
		Questions:        questions,
	}, nil
}

func (s *Site) renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// renderNotFound renders the localized 404 page. Language is unknown for an
// unknown job, so the default (German) table is used.
func (s *Site) renderNotFound(w http.ResponseWriter) {
	tr := i18n.T(i18n.German)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	s.templates.ExecuteTemplate(w, "notfound.html", map[string]any{"T": tr})
}
