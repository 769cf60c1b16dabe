// Package chat implements the conversational assistant core: bounded
// per-session conversation state, the structured-card tool registry, and the
// turn orchestrator that drives one user utterance through the model to a
// committed assistant reply.
package chat

import (
	"github.com/google/uuid"

	"github.com/jbruckner/talktome/internal/model"
	"github.com/jbruckner/talktome/internal/profile"
)

// PayloadKind discriminates DisplayPayload variants.
type PayloadKind string

const (
	KindText     PayloadKind = "text"
	KindContact  PayloadKind = "contact"
	KindProjects PayloadKind = "projects"
	KindAward    PayloadKind = "award"
)

// DisplayPayload is the UI-facing content of a message: plain text or one of
// the structured cards. It is never sent to the model.
type DisplayPayload struct {
	Kind PayloadKind `json:"kind"`

	// Text is the message body for KindText.
	Text string `json:"text,omitempty"`

	// Intro is the localized sentence rendered above a card.
	Intro string `json:"intro,omitempty"`

	Contact  *ContactCard      `json:"contact,omitempty"`
	Projects []profile.Project `json:"projects,omitempty"`
	Award    *AwardCard        `json:"award,omitempty"`
}

// ContactCard carries the data of the contact structured card.
type ContactCard struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Avatar      string `json:"avatar,omitempty"`
	LinkedInURL string `json:"linkedinUrl,omitempty"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
}

// AwardCard carries the data of the award video card.
type AwardCard struct {
	Title       string `json:"title"`
	VideoURL    string `json:"videoUrl"`
	Description string `json:"description,omitempty"`
}

// Message is one conversational turn entry. Transcript is the plain text sent
// to the model as context; Display is what the user sees. For tool-originated
// assistant turns Transcript is a short canned acknowledgement while Display
// carries the full card, keeping prompt size bounded as the conversation
// grows.
type Message struct {
	ID         string         `json:"id"`
	Role       model.Role     `json:"role"`
	Transcript string         `json:"-"`
	Display    DisplayPayload `json:"display"`
}

// ClientMessage is the turn result handed back to the caller for rendering.
type ClientMessage struct {
	ID      string         `json:"id"`
	Role    model.Role     `json:"role"`
	Display DisplayPayload `json:"display"`
}

// NewTextMessage creates a message whose transcript and display content are
// the same plain text.
func NewTextMessage(role model.Role, text string) Message {
	return Message{
		ID:         uuid.New().String(),
		Role:       role,
		Transcript: text,
		Display:    DisplayPayload{Kind: KindText, Text: text},
	}
}
