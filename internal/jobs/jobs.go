// Package jobs provides typed access to job application entries. Each entry
// pins the interface language for its pages and its assistant persona.
package jobs

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jbruckner/talktome/internal/i18n"
	"github.com/jbruckner/talktome/internal/storage"
)

// ErrNotFound is returned for unknown job ids and, on public surfaces, for
// disabled jobs.
var ErrNotFound = errors.New("job not found")

// Job is one job application entry.
type Job struct {
	ID          string        `json:"id"`
	Company     string        `json:"company"`
	Position    string        `json:"position"`
	Description string        `json:"description"` // markdown
	CompanyLogo string        `json:"companyLogo,omitempty"`
	Language    i18n.Language `json:"language"`
	Enabled     bool          `json:"enabled"`

	// DefaultQuestions overrides the localized suggestion chips when set.
	DefaultQuestions []string `json:"defaultQuestions,omitempty"`

	// Award, when present, enables the award card tool for this job.
	Award *Award `json:"award,omitempty"`

	CoverLetter *CoverLetter `json:"coverLetter,omitempty"`
}

// Award is a job-specific award video shown by the award card.
type Award struct {
	Title       string `json:"title"`
	VideoURL    string `json:"videoUrl"`
	Description string `json:"description"`
}

// CoverLetter is the per-job cover letter content.
type CoverLetter struct {
	Recipient  Recipient `json:"recipient"`
	Date       string    `json:"date"`
	Subject    string    `json:"subject"`
	Greeting   string    `json:"greeting"`
	Paragraphs []string  `json:"paragraphs"`
	Closing    string    `json:"closing"`
	Signature  string    `json:"signature"`
}

// Recipient is the cover letter addressee.
type Recipient struct {
	Name    string `json:"name,omitempty"`
	Title   string `json:"title,omitempty"`
	Company string `json:"company"`
	Address string `json:"address,omitempty"`
}

// Store defines the storage operations the Manager needs.
// Implemented by storage.Store.
type Store interface {
	SaveJob(storage.Job) error
	GetJob(id string) (storage.Job, error)
	ListJobs() ([]storage.Job, error)
	SetJobEnabled(id string, enabled bool) error
	DeleteJob(id string) error
}

// Manager decodes stored job rows into typed entries.
type Manager struct {
	store Store
}

// NewManager creates a Manager over the given store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Resolve returns the enabled job with the given id. Disabled and unknown
// ids both yield ErrNotFound: a withdrawn application looks identical to one
// that never existed.
func (m *Manager) Resolve(id string) (Job, error) {
	j, err := m.Get(id)
	if err != nil {
		return Job{}, err
	}
	if !j.Enabled {
		return Job{}, ErrNotFound
	}
	return j, nil
}

// Get returns the job with the given id regardless of its enabled flag.
// Used by the admin surface.
func (m *Manager) Get(id string) (Job, error) {
	row, err := m.store.GetJob(id)
	if errors.Is(err, storage.ErrNotFound) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("loading job %q: %w", id, err)
	}
	return decode(row)
}

// List returns all jobs, including disabled ones.
func (m *Manager) List() ([]Job, error) {
	rows, err := m.store.ListJobs()
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	out := make([]Job, 0, len(rows))
	for _, row := range rows {
		j, err := decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}

// Save validates and persists a job entry.
func (m *Manager) Save(j Job) error {
	if j.ID == "" {
		return errors.New("job id is required")
	}
	if j.Company == "" || j.Position == "" {
		return errors.New("company and position are required")
	}
	j.Language = i18n.Parse(string(j.Language))

	row, err := encode(j)
	if err != nil {
		return err
	}
	if err := m.store.SaveJob(row); err != nil {
		return fmt.Errorf("saving job %q: %w", j.ID, err)
	}
	return nil
}

// SetEnabled flips the enabled flag.
func (m *Manager) SetEnabled(id string, enabled bool) error {
	err := m.store.SetJobEnabled(id, enabled)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Delete removes a job entry.
func (m *Manager) Delete(id string) error {
	err := m.store.DeleteJob(id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func decode(row storage.Job) (Job, error) {
	j := Job{
		ID:          row.ID,
		Company:     row.Company,
		Position:    row.Position,
		Description: row.Description,
		CompanyLogo: row.CompanyLogo,
		Language:    i18n.Parse(row.Language),
		Enabled:     row.Enabled,
	}
	if row.DefaultQuestions != "" && row.DefaultQuestions != "[]" {
		if err := json.Unmarshal([]byte(row.DefaultQuestions), &j.DefaultQuestions); err != nil {
			return Job{}, fmt.Errorf("decoding default questions of job %q: %w", row.ID, err)
		}
	}
	if row.Award != "" {
		var a Award
		if err := json.Unmarshal([]byte(row.Award), &a); err != nil {
			return Job{}, fmt.Errorf("decoding award of job %q: %w", row.ID, err)
		}
		j.Award = &a
	}
	if row.CoverLetter != "" {
		var cl CoverLetter
		if err := json.Unmarshal([]byte(row.CoverLetter), &cl); err != nil {
			return Job{}, fmt.Errorf("decoding cover letter of job %q: %w", row.ID, err)
		}
		j.CoverLetter = &cl
	}
	return j, nil
}

func encode(j Job) (storage.Job, error) {
	row := storage.Job{
		ID:          j.ID,
		Company:     j.Company,
		Position:    j.Position,
		Description: j.Description,
		CompanyLogo: j.CompanyLogo,
		Language:    string(j.Language),
		Enabled:     j.Enabled,
	}
	questions := j.DefaultQuestions
	if questions == nil {
		questions = []string{}
	}
	b, err := json.Marshal(questions)
	if err != nil {
		return storage.Job{}, fmt.Errorf("encoding default questions: %w", err)
	}
	row.DefaultQuestions = string(b)

	if j.Award != nil {
		b, err := json.Marshal(j.Award)
		if err != nil {
			return storage.Job{}, fmt.Errorf("encoding award: %w", err)
		}
		row.Award = string(b)
	}
	if j.CoverLetter != nil {
		b, err := json.Marshal(j.CoverLetter)
		if err != nil {
			return storage.Job{}, fmt.Errorf("encoding cover letter: %w", err)
		}
		row.CoverLetter = string(b)
	}
	return row, nil
}
