// Package model defines the boundary to the external text-generation
// service. One model call either streams free text to completion or selects
// exactly one declared tool; the orchestrator dispatches on the returned
// tagged Result and never sees provider wire formats.
package model

import (
	"context"
	"errors"
)

// ErrUnavailable wraps any provider-side failure (network, timeout, malformed
// output). A turn that hits it fails without committing an assistant message.
var ErrUnavailable = errors.New("model unavailable")

// Role of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TurnMessage is one plain-text transcript entry sent as model context.
type TurnMessage struct {
	Role    Role
	Content string
}

// ToolDecl declares a capability the model may select instead of free text.
// Tools currently take no arguments; the declaration still carries an (empty)
// parameter schema so the wire format keeps the argument slot.
type ToolDecl struct {
	Name        string
	Description string
}

// Request is one model call: compiled persona, full prior transcript plus the
// new user utterance, and the declared tool set.
type Request struct {
	System   string
	Messages []TurnMessage
	Tools    []ToolDecl
}

// ResultKind discriminates the Result variants.
type ResultKind int

const (
	// ResultText means the model generated free text; Text holds the final
	// aggregate.
	ResultText ResultKind = iota
	// ResultToolCall means the model selected a tool; ToolName holds its name.
	ResultToolCall
)

// Result is the terminal outcome of one model call.
type Result struct {
	Kind     ResultKind
	Text     string
	ToolName string
}

// Streamer issues one model call. onDelta is invoked for each partial text
// fragment as it arrives and may be nil; fragments are render hints only, the
// authoritative text is Result.Text. Implementations must honour ctx
// cancellation and wrap failures in ErrUnavailable.
type Streamer interface {
	StreamTurn(ctx context.Context, req Request, onDelta func(string)) (Result, error)
}
