package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/model"
	"github.com/jbruckner/talktome/internal/persona"
	"github.com/jbruckner/talktome/internal/profile"
)

var (
	// ErrTurnInFlight is returned when a second turn is submitted while one
	// is still being processed for the same session.
	ErrTurnInFlight = errors.New("turn already in flight")

	// ErrToolMismatch is returned when the model selects a tool that was not
	// declared. The turn fails rather than guessing.
	ErrToolMismatch = errors.New("model selected undeclared tool")

	// ErrEmptyUtterance is returned for blank input.
	ErrEmptyUtterance = errors.New("empty utterance")
)

// JobResolver resolves a public job id. Implemented by jobs.Manager.
type JobResolver interface {
	Resolve(id string) (jobs.Job, error)
}

// ProfileSource supplies the candidate profile. Implemented by
// profile.Manager.
type ProfileSource interface {
	Get() (profile.Profile, error)
}

// Orchestrator drives one user utterance through a full turn:
//
//	Idle → AwaitingModel → {Streaming | ToolSelected} → Committed
//
// The user message is appended before the model call (phase 1); the assistant
// message is appended exactly once after the call resolves (phase 2). A turn
// that fails between the phases keeps the user message and commits nothing
// else, so a retry reuses it as context.
type Orchestrator struct {
	jobs     JobResolver
	profiles ProfileSource
	provider model.Streamer
	sessions *Sessions
}

// NewOrchestrator wires the turn orchestrator.
func NewOrchestrator(jobs JobResolver, profiles ProfileSource, provider model.Streamer, sessions *Sessions) *Orchestrator {
	return &Orchestrator{
		jobs:     jobs,
		profiles: profiles,
		provider: provider,
		sessions: sessions,
	}
}

// Turn processes one user utterance for (sessionID, jobID). Partial text is
// delivered through onDelta (may be nil) while the model streams; the
// returned ClientMessage is the committed assistant reply.
//
// An unknown or disabled job yields jobs.ErrNotFound before anything is
// appended. A concurrent turn on the same session yields ErrTurnInFlight.
func (o *Orchestrator) Turn(ctx context.Context, sessionID, jobID, utterance string, onDelta func(string)) (ClientMessage, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return ClientMessage{}, ErrEmptyUtterance
	}

	// Resolve everything that can fail before touching conversation state.
	job, err := o.jobs.Resolve(jobID)
	if err != nil {
		return ClientMessage{}, err
	}
	prof, err := o.profiles.Get()
	if err != nil {
		return ClientMessage{}, fmt.Errorf("loading profile: %w", err)
	}

	sess := o.sessions.Get(sessionID, jobID)
	if !sess.BeginTurn() {
		return ClientMessage{}, ErrTurnInFlight
	}
	defer sess.EndTurn()

	registry := NewRegistry(prof, job)
	system := persona.Compile(prof, job, registry.Decls())

	// Phase 1: commit the user message. It is not rolled back on failure;
	// user input is never silently lost.
	sess.Conv.Append(NewTextMessage(model.RoleUser, utterance))

	req := model.Request{
		System:   system,
		Messages: sess.Conv.Transcript(),
		Tools:    registry.Decls(),
	}

	result, err := o.provider.StreamTurn(ctx, req, onDelta)
	if err != nil {
		slog.Warn("model call failed, turn not committed",
			"job", jobID, "session", sessionID, "error", err)
		return ClientMessage{}, err
	}
	// A cancelled turn must not commit, even if the provider returned a
	// result instead of propagating the cancellation.
	if err := ctx.Err(); err != nil {
		return ClientMessage{}, err
	}

	// Phase 2: resolve the terminal branch and commit exactly one assistant
	// message.
	var reply Message
	switch result.Kind {
	case model.ResultText:
		reply = NewTextMessage(model.RoleAssistant, result.Text)

	case model.ResultToolCall:
		tool, ok := registry.Lookup(result.ToolName)
		if !ok {
			slog.Error("model selected undeclared tool",
				"job", jobID, "tool", result.ToolName)
			return ClientMessage{}, fmt.Errorf("%w: %q", ErrToolMismatch, result.ToolName)
		}
		ack, payload := tool.Invoke()
		reply = NewTextMessage(model.RoleAssistant, ack)
		reply.Display = payload

	default:
		return ClientMessage{}, fmt.Errorf("%w: unknown result kind %d", model.ErrUnavailable, result.Kind)
	}

	sess.Conv.Append(reply)

	return ClientMessage{ID: reply.ID, Role: reply.Role, Display: reply.Display}, nil
}

// History returns the display history of a session. Reading does not create
// a session.
func (o *Orchestrator) History(sessionID, jobID string) []Message {
	sess, ok := o.sessions.Peek(sessionID, jobID)
	if !ok {
		return nil
	}
	return sess.Conv.Messages()
}
