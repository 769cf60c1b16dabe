package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jbruckner/talktome/internal/chat"
	"github.com/jbruckner/talktome/internal/i18n"
	"github.com/jbruckner/talktome/internal/jobs"
	"github.com/jbruckner/talktome/internal/model"
	"github.com/jbruckner/talktome/internal/profile"
	"github.com/jbruckner/talktome/internal/storage"
)

// scriptedStreamer is a deterministic model provider for handler tests.
type scriptedStreamer struct {
	deltas []string
	result model.Result
	err    error
}

func (s *scriptedStreamer) StreamTurn(ctx context.Context, req model.Request, onDelta func(string)) (model.Result, error) {
	for _, d := range s.deltas {
		if onDelta != nil {
			onDelta(d)
		}
	}
	return s.result, s.err
}

func newTestPublicDeps(t *testing.T, provider model.Streamer) PublicDeps {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jobMgr := jobs.NewManager(store)
	profileMgr := profile.NewManager(store)

	if err := jobMgr.Save(jobs.Job{
		ID:       "acme",
		Company:  "ACME GmbH",
		Position: "Senior Backend Engineer",
		Language: i18n.German,
		Enabled:  true,
	}); err != nil {
		t.Fatalf("seeding job: %v", err)
	}
	if err := profileMgr.Import(profile.Profile{
		Name:  "Jan Bruckner",
		Title: "Full-Stack Developer",
		Email: "jan@example.com",
	}); err != nil {
		t.Fatalf("seeding profile: %v", err)
	}

	sessions := chat.NewSessions(time.Hour)
	return PublicDeps{
		Orchestrator: chat.NewOrchestrator(jobMgr, profileMgr, provider, sessions),
		Jobs:         jobMgr,
		Profile:      profileMgr,
	}
}

func postChat(t *testing.T, h http.Handler, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	h.ServeHTTP(rr, req)
	return rr
}

func TestChatStreamsDeltasAndMessage(t *testing.T) {
	provider := &scriptedStreamer{
		deltas: []string{"Hallo", "!"},
		result: model.Result{Kind: model.ResultText, Text: "Hallo!"},
	}
	h := NewPublicHandler(newTestPublicDeps(t, provider))

	rr := postChat(t, h, `{"jobId":"acme","message":"Hi"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rr.Body.String()
	if strings.Count(body, "event: delta") != 2 {
		t.Errorf("expected 2 delta events, body:\n%s", body)
	}
	if strings.Count(body, "event: message") != 1 {
		t.Errorf("expected exactly one message event, body:\n%s", body)
	}
	if !strings.Contains(body, `"text":"Hallo!"`) {
		t.Errorf("final message missing, body:\n%s", body)
	}

	// A session cookie is minted on the first turn.
	found := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("no session cookie set")
	}
}

func TestChatUnknownJob404(t *testing.T) {
	h := NewPublicHandler(newTestPublicDeps(t, &scriptedStreamer{}))

	rr := postChat(t, h, `{"jobId":"ghost","message":"Hi"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	var body struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	if body.Error.Type != "not_found" {
		t.Errorf("error type = %q", body.Error.Type)
	}
}

func TestChatDisabledJob404(t *testing.T) {
	deps := newTestPublicDeps(t, &scriptedStreamer{
		result: model.Result{Kind: model.ResultText, Text: "ok"},
	})
	if err := deps.Jobs.SetEnabled("acme", false); err != nil {
		t.Fatalf("disabling job: %v", err)
	}
	h := NewPublicHandler(deps)

	rr := postChat(t, h, `{"jobId":"acme","message":"Hi"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestChatModelFailure502(t *testing.T) {
	h := NewPublicHandler(newTestPublicDeps(t, &scriptedStreamer{err: model.ErrUnavailable}))

	rr := postChat(t, h, `{"jobId":"acme","message":"Hi"}`)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
}

func TestChatFailureAfterDeltasIsSSEError(t *testing.T) {
	// Deltas already flushed, so the failure must arrive as an error event on
	// the open stream, not as an HTTP status.
	h := NewPublicHandler(newTestPublicDeps(t, &scriptedStreamer{
		deltas: []string{"Hal"},
		err:    model.ErrUnavailable,
	}))

	rr := postChat(t, h, `{"jobId":"acme","message":"Hi"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (stream already started)", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "event: error") {
		t.Errorf("missing error event, body:\n%s", body)
	}
	if strings.Contains(body, "event: message") {
		t.Errorf("message event after failure, body:\n%s", body)
	}
}

func TestChatEmptyMessage400(t *testing.T) {
	h := NewPublicHandler(newTestPublicDeps(t, &scriptedStreamer{}))

	rr := postChat(t, h, `{"jobId":"acme","message":"   "}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestChatReusesSessionCookie(t *testing.T) {
	provider := &scriptedStreamer{result: model.Result{Kind: model.ResultText, Text: "ok"}}
	deps := newTestPublicDeps(t, provider)
	h := NewPublicHandler(deps)

	first := postChat(t, h, `{"jobId":"acme","message":"Erste"}`)
	var session *http.Cookie
	for _, c := range first.Result().Cookies() {
		if c.Name == sessionCookie {
			session = c
		}
	}
	if session == nil {
		t.Fatal("no session cookie on first turn")
	}

	second := postChat(t, h, `{"jobId":"acme","message":"Zweite"}`, session)
	if second.Code != http.StatusOK {
		t.Fatalf("second turn status = %d", second.Code)
	}
	for _, c := range second.Result().Cookies() {
		if c.Name == sessionCookie {
			t.Error("second turn minted a new session cookie")
		}
	}

	// Both turns landed in the same conversation.
	history := deps.Orchestrator.History(session.Value, "acme")
	if len(history) != 4 {
		t.Errorf("history length = %d, want 4", len(history))
	}
}

func TestIntro(t *testing.T) {
	h := NewPublicHandler(newTestPublicDeps(t, &scriptedStreamer{}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/acme/intro", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var resp introResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Company != "ACME GmbH" || resp.Language != "german" {
		t.Errorf("intro = %+v", resp)
	}
	if !strings.Contains(resp.Greeting, "Jan Bruckner") {
		t.Errorf("greeting = %q", resp.Greeting)
	}
	if len(resp.Questions) == 0 {
		t.Error("no suggested questions")
	}
}

func TestIntroUnknownJob404(t *testing.T) {
	h := NewPublicHandler(newTestPublicDeps(t, &scriptedStreamer{}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/ghost/intro", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestHistoryWithoutSessionIsEmpty(t *testing.T) {
	h := NewPublicHandler(newTestPublicDeps(t, &scriptedStreamer{}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/acme/history", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := strings.TrimSpace(rr.Body.String()); got != "[]" {
		t.Errorf("body = %q, want empty list", got)
	}
}
