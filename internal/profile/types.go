// Package profile holds the candidate's structured application data: the
// facts the persona is compiled from and the contact/project details the
// structured cards render.
package profile

// Profile is the candidate's full application profile.
type Profile struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Avatar  string `json:"avatar"`

	LinkedIn string `json:"linkedin"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`

	// Skills by category, e.g. "frontend" → ["React", "Next.js"].
	Skills map[string][]string `json:"skills"`

	// Languages maps language name to proficiency, e.g. "german" → "native".
	Languages map[string]string `json:"languages"`

	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Awards     []Award      `json:"awards"`
	Projects   []Project    `json:"projects"`

	// ExtraFacts is free text imported from a CV PDF or portfolio page,
	// appended to the persona verbatim.
	ExtraFacts string `json:"extra_facts,omitempty"`
}

// Experience is one work experience entry.
type Experience struct {
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Period      string   `json:"period"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Highlights  []string `json:"highlights"`
}

// Education is one education entry.
type Education struct {
	Period      string `json:"period"`
	Institution string `json:"institution"`
	Location    string `json:"location"`
	Degree      string `json:"degree"`
	Thesis      string `json:"thesis,omitempty"`
}

// Award is a distinction awarded to the candidate.
type Award struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Project is one portfolio project.
type Project struct {
	Name        string `json:"name"`
	Logo        string `json:"logo,omitempty"`
	URL         string `json:"url"`
	Description string `json:"description"`
}
