package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Job is one job application entry as stored. Structured fields
// (default questions, award, cover letter) are kept as JSON text columns and
// decoded into typed values by the jobs package.
type Job struct {
	ID               string
	Company          string
	Position         string
	Description      string // markdown
	CompanyLogo      string
	Language         string
	Enabled          bool
	DefaultQuestions string // JSON array stored as text
	Award            string // JSON object stored as text, empty when absent
	CoverLetter      string // JSON object stored as text, empty when absent
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
