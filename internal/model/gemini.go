package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const streamingTimeout = 300 * time.Second

// Gemini is a Streamer backed by the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini streamer for the given model name
// (e.g. "gemini-2.0-flash").
func NewGemini(ctx context.Context, apiKey, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: modelName}, nil
}

// StreamTurn implements Streamer. A function-call part from the model ends the
// stream as a tool selection; otherwise text fragments are forwarded to
// onDelta and aggregated into the final Result.
func (g *Gemini) StreamTurn(ctx context.Context, req Request, onDelta func(string)) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, streamingTimeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				// Zero-argument contract; the empty object schema keeps the
				// argument slot declared for future parameterized tools.
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: map[string]*genai.Schema{},
				},
			}
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	var sb strings.Builder
	for resp, err := range g.client.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
		if err != nil {
			return Result{}, fmt.Errorf("%w: streaming generation: %v", ErrUnavailable, err)
		}
		if calls := resp.FunctionCalls(); len(calls) > 0 {
			return Result{Kind: ResultToolCall, ToolName: calls[0].Name}, nil
		}
		if text := resp.Text(); text != "" {
			sb.WriteString(text)
			if onDelta != nil {
				onDelta(text)
			}
		}
	}

	return Result{Kind: ResultText, Text: sb.String()}, nil
}
