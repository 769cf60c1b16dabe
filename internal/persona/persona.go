// Package persona compiles the assistant's system prompt for one job
// context: candidate facts, job facts, task rules, and tool-usage hints.
// Compilation is a pure function of its inputs: the same profile, job and
// tool set always yield byte-identical prompt text.
package persona

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jbruckner/talktome/internal/i18n"
	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/model"
	"github.com/jbruckner/talktome/internal/profile"
)

type sections struct {
	intro        string
	aboutHeading string
	name         string
	title        string
	summary      string
	skills       string
	languages    string
	experience   string
	education    string
	awards       string
	projects     string
	extraFacts   string
	jobHeading   string
	company      string
	position     string
	description  string
	taskHeading  string
	taskRules    []string
	languageRule string
	toolsHeading string
	toolsIntro   string
	experienceAt string
}

func germanSections(name string) sections {
	return sections{
		intro: fmt.Sprintf("Du bist ein hilfreicher Assistent, der Fragen über den Bewerber %s beantwortet. "+
			"Du sprichst im Namen von %s und hilfst dem Hiring Manager, mehr über den Kandidaten und seine Eignung für die Stelle zu erfahren.", name, name),
		aboutHeading: "## Über den Kandidaten",
		name:         "Name",
		title:        "Titel",
		summary:      "Zusammenfassung",
		skills:       "### Skills",
		languages:    "### Sprachen",
		experience:   "### Berufserfahrung",
		education:    "### Ausbildung",
		awards:       "### Auszeichnungen",
		projects:     "### Projekte",
		extraFacts:   "### Weitere Fakten",
		jobHeading:   "## Über die Stelle",
		company:      "Unternehmen",
		position:     "Position",
		description:  "Stellenbeschreibung",
		taskHeading:  "## Deine Aufgabe",
		taskRules: []string{
			"Sei freundlich, professionell und authentisch",
			"Hebe relevante Erfahrungen und Skills hervor, die zur Stelle passen",
			"Sei ehrlich über Fähigkeiten und Erfahrungen",
			"Beziehe dich konkret auf die Anforderungen der Stelle",
			"Halte die Antworten prägnant aber informativ",
		},
		languageRule: "Antworte auf Deutsch, es sei denn, der Hiring Manager schreibt auf Englisch",
		toolsHeading: "## Verfügbare Tools",
		toolsIntro:   "Du hast Zugriff auf folgende Tools:",
		experienceAt: "bei",
	}
}

func englishSections(name string) sections {
	return sections{
		intro: fmt.Sprintf("You are a helpful assistant answering questions about the applicant %s. "+
			"You speak on behalf of %s and help the hiring manager learn more about the candidate and their fit for the role.", name, name),
		aboutHeading: "## About the candidate",
		name:         "Name",
		title:        "Title",
		summary:      "Summary",
		skills:       "### Skills",
		languages:    "### Languages",
		experience:   "### Work experience",
		education:    "### Education",
		awards:       "### Awards",
		projects:     "### Projects",
		extraFacts:   "### Additional facts",
		jobHeading:   "## About the role",
		company:      "Company",
		position:     "Position",
		description:  "Job description",
		taskHeading:  "## Your task",
		taskRules: []string{
			"Be friendly, professional and authentic",
			"Highlight relevant experience and skills that match the role",
			"Be honest about abilities and experience",
			"Refer concretely to the requirements of the role",
			"Keep answers concise but informative",
		},
		languageRule: "Always answer in English",
		toolsHeading: "## Available tools",
		toolsIntro:   "You have access to the following tools:",
		experienceAt: "at",
	}
}

// Compile builds the system prompt for one job context. The caller resolves
// the job first; Compile itself never fails.
func Compile(p profile.Profile, job jobs.Job, tools []model.ToolDecl) string {
	var s sections
	if job.Language == i18n.English {
		s = englishSections(p.Name)
	} else {
		s = germanSections(p.Name)
	}

	var sb strings.Builder
	sb.WriteString(s.intro)
	sb.WriteString("\n\n")

	sb.WriteString(s.aboutHeading)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s: %s\n", s.name, p.Name)
	fmt.Fprintf(&sb, "%s: %s\n", s.title, p.Title)
	fmt.Fprintf(&sb, "%s: %s\n", s.summary, p.Summary)
	if p.LinkedIn != "" {
		fmt.Fprintf(&sb, "LinkedIn: %s\n", p.LinkedIn)
	}

	if len(p.Skills) > 0 {
		sb.WriteString("\n")
		sb.WriteString(s.skills)
		sb.WriteString("\n")
		for _, category := range sortedKeys(p.Skills) {
			fmt.Fprintf(&sb, "- %s: %s\n", category, strings.Join(p.Skills[category], ", "))
		}
	}

	if len(p.Languages) > 0 {
		sb.WriteString("\n")
		sb.WriteString(s.languages)
		sb.WriteString("\n")
		for _, lang := range sortedKeys(p.Languages) {
			fmt.Fprintf(&sb, "- %s: %s\n", lang, p.Languages[lang])
		}
	}

	if len(p.Experience) > 0 {
		sb.WriteString("\n")
		sb.WriteString(s.experience)
		sb.WriteString("\n")
		for _, exp := range p.Experience {
			fmt.Fprintf(&sb, "\n**%s** %s %s (%s)\n", exp.Title, s.experienceAt, exp.Company, exp.Period)
			fmt.Fprintf(&sb, "%s - %s\n", exp.Location, exp.Description)
			for _, h := range exp.Highlights {
				fmt.Fprintf(&sb, "- %s\n", h)
			}
		}
	}

	if len(p.Education) > 0 {
		sb.WriteString("\n")
		sb.WriteString(s.education)
		sb.WriteString("\n")
		for _, edu := range p.Education {
			fmt.Fprintf(&sb, "- **%s** – %s, %s (%s)\n", edu.Degree, edu.Institution, edu.Location, edu.Period)
		}
	}

	if len(p.Awards) > 0 {
		sb.WriteString("\n")
		sb.WriteString(s.awards)
		sb.WriteString("\n")
		for _, a := range p.Awards {
			fmt.Fprintf(&sb, "- **%s**: %s\n", a.Title, a.Description)
		}
	}

	if len(p.Projects) > 0 {
		sb.WriteString("\n")
		sb.WriteString(s.projects)
		sb.WriteString("\n")
		for _, proj := range p.Projects {
			fmt.Fprintf(&sb, "- **%s** (%s): %s\n", proj.Name, proj.URL, proj.Description)
		}
	}

	if p.ExtraFacts != "" {
		sb.WriteString("\n")
		sb.WriteString(s.extraFacts)
		sb.WriteString("\n")
		sb.WriteString(p.ExtraFacts)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(s.jobHeading)
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s: %s\n", s.company, job.Company)
	fmt.Fprintf(&sb, "%s: %s\n", s.position, job.Position)
	fmt.Fprintf(&sb, "%s:\n%s\n", s.description, job.Description)

	sb.WriteString("\n")
	sb.WriteString(s.taskHeading)
	sb.WriteString("\n\n")
	for _, rule := range s.taskRules {
		fmt.Fprintf(&sb, "- %s\n", rule)
	}
	fmt.Fprintf(&sb, "- %s\n", s.languageRule)

	if len(tools) > 0 {
		sb.WriteString("\n")
		sb.WriteString(s.toolsHeading)
		sb.WriteString("\n\n")
		sb.WriteString(s.toolsIntro)
		sb.WriteString("\n")
		for _, t := range tools {
			fmt.Fprintf(&sb, "\n**%s**: %s\n", t.Name, t.Description)
		}
	}

	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
