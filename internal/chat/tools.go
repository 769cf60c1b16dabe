package chat

import (
	"fmt"
	"strings"

	"github.com/jbruckner/talktome/internal/i18n"
	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/model"
	"github.com/jbruckner/talktome/internal/profile"
)

// Tool names as declared to the model.
const (
	ToolContactCard = "showContactCard"
	ToolProjects    = "showProjects"
	ToolAward       = "showAward"
)

// Tool is one structured card the model may select instead of free text.
// Invoke takes no arguments (all cards render static profile data); the
// zero-argument contract is declared on the wire so a parameter schema can be
// added later without changing the protocol.
type Tool struct {
	Name        string
	Description string
	Invoke      func() (ack string, payload DisplayPayload)
}

// Registry is the declared tool set for one (job, language) context. Tool
// selection is the model's decision, guided by the trigger hints in the
// descriptions; the registry only dispatches names it declared.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds the tool set for a job: contact card and project list
// always, the award video only when the job carries one. Acknowledgement and
// intro strings follow the job's pinned language.
func NewRegistry(p profile.Profile, job jobs.Job) *Registry {
	tr := i18n.T(job.Language)
	r := &Registry{tools: make(map[string]Tool)}

	r.add(Tool{
		Name:        ToolContactCard,
		Description: contactDescription(job.Language),
		Invoke: func() (string, DisplayPayload) {
			return tr.ContactAck, DisplayPayload{
				Kind:  KindContact,
				Intro: tr.ContactIntro,
				Contact: &ContactCard{
					Name:        p.Name,
					Title:       p.Title,
					Avatar:      p.Avatar,
					LinkedInURL: p.LinkedIn,
					Email:       p.Email,
					Phone:       p.Phone,
				},
			}
		},
	})

	r.add(Tool{
		Name:        ToolProjects,
		Description: projectsDescription(job.Language, p.Projects),
		Invoke: func() (string, DisplayPayload) {
			return tr.ProjectsAck, DisplayPayload{
				Kind:     KindProjects,
				Intro:    tr.ProjectsIntro,
				Projects: p.Projects,
			}
		},
	})

	if job.Award != nil {
		award := *job.Award
		r.add(Tool{
			Name:        ToolAward,
			Description: awardDescription(job.Language, award.Title),
			Invoke: func() (string, DisplayPayload) {
				return tr.AwardAck, DisplayPayload{
					Kind:  KindAward,
					Intro: tr.AwardIntro,
					Award: &AwardCard{
						Title:       award.Title,
						VideoURL:    award.VideoURL,
						Description: award.Description,
					},
				}
			},
		})
	}

	return r
}

func (r *Registry) add(t Tool) {
	r.order = append(r.order, t.Name)
	r.tools[t.Name] = t
}

// Lookup returns the tool with the given name, if declared.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Decls returns the declarations passed to the model, in declaration order.
func (r *Registry) Decls() []model.ToolDecl {
	out := make([]model.ToolDecl, len(r.order))
	for i, name := range r.order {
		t := r.tools[name]
		out[i] = model.ToolDecl{Name: t.Name, Description: t.Description}
	}
	return out
}

// Tool descriptions double as prompt-side trigger hints. They are written in
// the job's language, matching the persona.

func contactDescription(lang i18n.Language) string {
	if lang == i18n.English {
		return "Shows a contact card with email, phone and LinkedIn so the user can get in touch. " +
			"Use this tool when the user asks for contact options, email, phone, connecting, or the LinkedIn profile."
	}
	return "Zeigt eine Kontaktkarte mit E-Mail, Telefon und LinkedIn an, damit der Nutzer Kontakt aufnehmen kann. " +
		"Verwende dieses Tool wenn der Nutzer nach Kontaktmöglichkeiten, E-Mail, Telefon, Vernetzung oder dem LinkedIn-Profil fragt."
}

func projectsDescription(lang i18n.Language, projects []profile.Project) string {
	names := make([]string, 0, len(projects))
	for _, p := range projects {
		names = append(names, p.Name)
	}
	joined := strings.Join(names, ", ")

	if lang == i18n.English {
		d := "Shows an overview of all of the candidate's projects. " +
			"Use this tool when the user asks about projects, portfolio, or work samples"
		if joined != "" {
			d += fmt.Sprintf(", or asks about %s", joined)
		}
		return d + "."
	}
	d := "Zeigt eine Übersicht aller Projekte des Kandidaten an. " +
		"Verwende dieses Tool wenn der Nutzer nach Projekten, Portfolio oder Arbeitsproben fragt"
	if joined != "" {
		d += fmt.Sprintf(" oder nach %s fragt", joined)
	}
	return d + "."
}

func awardDescription(lang i18n.Language, title string) string {
	if lang == i18n.English {
		return fmt.Sprintf("Shows a video about the %q award the candidate received. "+
			"Use this tool when the user asks about awards, prizes or distinctions.", title)
	}
	return fmt.Sprintf("Zeigt ein Video zur Auszeichnung %q des Kandidaten. "+
		"Verwende dieses Tool wenn der Nutzer nach Awards, Preisen oder Auszeichnungen fragt.", title)
}
