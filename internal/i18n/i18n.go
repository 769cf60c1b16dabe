// Package i18n holds the site's UI strings and canned assistant responses in
// German and English. Each job pins one language; everything rendered for that
// job follows it.
package i18n

import "strings"

// Language selects a translation table. German is the default.
type Language string

const (
	German  Language = "german"
	English Language = "english"
)

// Parse normalizes a language string. ISO codes are accepted; unknown values
// fall back to German, the site's default.
func Parse(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english", "en":
		return English
	default:
		return German
	}
}

// Translations is the full string table for one language.
type Translations struct {
	// Page navigation and titles.
	Overview    string
	Resume      string
	CoverLetter string
	Chat        string
	TalkToMe    string

	// Talk page.
	JobNotFound            string
	JobNotFoundDescription string
	ChatWith               string
	AskQuestion            string
	Hello                  string
	AskMeQuestions         string
	ChatToLearnMore        string

	// Suggested openers shown before the first turn. A job may override them.
	DefaultQuestions []string

	// Transcript-facing acknowledgements for tool turns. These are what the
	// model sees as its own prior reply, kept deliberately short.
	ContactAck  string
	ProjectsAck string
	AwardAck    string

	// Display-facing intro sentences rendered above the cards.
	ContactIntro  string
	ProjectsIntro string
	AwardIntro    string
}

var german = Translations{
	Overview:    "Übersicht",
	Resume:      "Lebenslauf",
	CoverLetter: "Anschreiben",
	Chat:        "Chat",
	TalkToMe:    "Sprich mit mir",

	JobNotFound:            "Job nicht gefunden",
	JobNotFoundDescription: "Diese Bewerbung existiert nicht.",
	ChatWith:               "Chat mit",
	AskQuestion:            "Stellen Sie mir eine Frage...",
	Hello:                  "Hallo! Ich bin",
	AskMeQuestions:         "Stellen Sie mir Fragen über meine Erfahrung, Skills und meine Eignung für die Position als",
	ChatToLearnMore:        "Chatte mit mir um mehr zu erfahren",

	DefaultQuestions: []string{
		"Was sind deine Stärken?",
		"Erzähl mir von deiner Erfahrung",
		"Zeig mir deine Projekte",
		"Lass uns connecten!",
	},

	ContactAck:  "Hier sind meine Kontaktdaten:",
	ProjectsAck: "Hier sind meine Projekte:",
	AwardAck:    "Hier ist ein Video zu meiner Auszeichnung:",

	ContactIntro:  "Sehr gerne! Hier sind meine Kontaktdaten – Sie können mich jederzeit erreichen:",
	ProjectsIntro: "Hier sind einige meiner wichtigsten Projekte, die ich entwickelt habe:",
	AwardIntro:    "Ja, über diese Auszeichnung freue ich mich besonders:",
}

var english = Translations{
	Overview:    "Overview",
	Resume:      "Resume",
	CoverLetter: "Cover Letter",
	Chat:        "Chat",
	TalkToMe:    "Talk to me",

	JobNotFound:            "Job not found",
	JobNotFoundDescription: "This application does not exist.",
	ChatWith:               "Chat with",
	AskQuestion:            "Ask me a question...",
	Hello:                  "Hello! I'm",
	AskMeQuestions:         "Ask me questions about my experience, skills and my fit for the position as",
	ChatToLearnMore:        "Chat to me to learn more",

	DefaultQuestions: []string{
		"What are your strengths?",
		"Tell me about your experience",
		"Show me your projects",
		"Let's connect!",
	},

	ContactAck:  "Here are my contact details:",
	ProjectsAck: "Here are my projects:",
	AwardAck:    "Here is a video about my award:",

	ContactIntro:  "Of course! Here are my contact details – feel free to reach out anytime:",
	ProjectsIntro: "Here are some of my key projects that I've developed:",
	AwardIntro:    "Yes, I'm especially proud of this award:",
}

// T returns the translation table for lang.
func T(lang Language) Translations {
	if lang == English {
		return english
	}
	return german
}
