package persona

import (
	"strings"
	"testing"

	"github.com/jbruckner/talktome/internal/i18n"
	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/model"
	"github.com/jbruckner/talktome/internal/profile"
)

func testProfile() profile.Profile {
	return profile.Profile{
		Name:     "Jan Bruckner",
		Title:    "Full-Stack Developer",
		Summary:  "Baut Webprodukte mit Fokus auf Developer Experience.",
		LinkedIn: "https://linkedin.com/in/jbruckner",
		Skills: map[string][]string{
			"Backend":  {"Go", "PostgreSQL"},
			"Frontend": {"TypeScript", "React"},
		},
		Languages: map[string]string{
			"Deutsch":  "Muttersprache",
			"Englisch": "Fließend",
		},
		Experience: []profile.Experience{
			{Title: "Senior Engineer", Company: "baito", Period: "2021-2024",
				Location: "Berlin", Description: "Job platform", Highlights: []string{"Launched matching engine"}},
		},
		Education: []profile.Education{
			{Degree: "B.Sc. Informatik", Institution: "TU Berlin", Location: "Berlin", Period: "2014-2018"},
		},
		Projects: []profile.Project{
			{Name: "baito", URL: "https://baito.de", Description: "Job platform"},
		},
		ExtraFacts: "Mag Kaffee.",
	}
}

func testJob() jobs.Job {
	return jobs.Job{
		ID:          "acme",
		Company:     "ACME GmbH",
		Position:    "Senior Backend Engineer",
		Description: "Wir suchen einen erfahrenen Backend-Entwickler.",
		Language:    i18n.German,
		Enabled:     true,
	}
}

func testTools() []model.ToolDecl {
	return []model.ToolDecl{
		{Name: "showContactCard", Description: "Zeigt eine Kontaktkarte an."},
		{Name: "showProjects", Description: "Zeigt alle Projekte an."},
	}
}

func TestCompileDeterministic(t *testing.T) {
	p, job, tools := testProfile(), testJob(), testTools()

	first := Compile(p, job, tools)
	for i := 0; i < 20; i++ {
		if got := Compile(p, job, tools); got != first {
			t.Fatal("same inputs produced different prompt text")
		}
	}
}

func TestCompileContainsAllFacts(t *testing.T) {
	out := Compile(testProfile(), testJob(), testTools())

	for _, want := range []string{
		"Jan Bruckner",
		"Full-Stack Developer",
		"https://linkedin.com/in/jbruckner",
		"Go, PostgreSQL",
		"Deutsch: Muttersprache",
		"Senior Engineer",
		"Launched matching engine",
		"B.Sc. Informatik",
		"baito",
		"Mag Kaffee.",
		"ACME GmbH",
		"Senior Backend Engineer",
		"Wir suchen einen erfahrenen Backend-Entwickler.",
		"showContactCard",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGermanLanguageRule(t *testing.T) {
	out := Compile(testProfile(), testJob(), nil)
	if !strings.Contains(out, "Antworte auf Deutsch") {
		t.Error("German job missing German language rule")
	}
	if !strings.Contains(out, "## Über den Kandidaten") {
		t.Error("German headings missing")
	}
}

func TestEnglishJobPinsEnglish(t *testing.T) {
	job := testJob()
	job.Language = i18n.English

	out := Compile(testProfile(), job, nil)
	if !strings.Contains(out, "Always answer in English") {
		t.Error("English job missing the pinned-language rule")
	}
	if strings.Contains(out, "Über den Kandidaten") {
		t.Error("German heading in English prompt")
	}
	if !strings.Contains(out, "## About the candidate") {
		t.Error("English headings missing")
	}
}

func TestEmptySectionsOmitted(t *testing.T) {
	p := profile.Profile{Name: "Jan", Title: "Dev", Summary: "Kurz."}
	out := Compile(p, testJob(), nil)

	for _, heading := range []string{"### Skills", "### Sprachen", "### Projekte", "### Weitere Fakten"} {
		if strings.Contains(out, heading) {
			t.Errorf("empty section %q rendered", heading)
		}
	}
}

func TestNoToolsNoToolSection(t *testing.T) {
	out := Compile(testProfile(), testJob(), nil)
	if strings.Contains(out, "## Verfügbare Tools") {
		t.Error("tool section rendered without tools")
	}
}
