package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jbruckner/talktome/internal/config"
	"github.com/jbruckner/talktome/internal/jobs"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":{"message":"not found","type":"not_found"}}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestJobSave(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PUT /jobs/acme": `{"id":"acme","status":"saved"}`,
	})

	client := ts.client()
	job := map[string]any{
		"company":  "ACME GmbH",
		"position": "Backend Engineer",
		"language": "german",
		"enabled":  true,
	}

	resp, err := client.put(ctx, "/jobs/acme", job)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["status"] != "saved" {
		t.Errorf("status = %q, want saved", result["status"])
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Method != "PUT" || r.Path != "/jobs/acme" {
		t.Errorf("request = %s %s, want PUT /jobs/acme", r.Method, r.Path)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var sent map[string]any
	if err := json.Unmarshal([]byte(r.Body), &sent); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if sent["company"] != "ACME GmbH" {
		t.Errorf("body.company = %v, want ACME GmbH", sent["company"])
	}
}

func TestJobAddCommand_MissingArgs(t *testing.T) {
	defer rootCmd.SetArgs(nil)

	rootCmd.SetArgs([]string{"job", "add", "acme"})
	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing args")
	}
	if !strings.Contains(err.Error(), "required") {
		t.Errorf("error = %q, want it to mention 'required'", err.Error())
	}
}

func TestJobList(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /jobs": `[{"id":"acme","company":"ACME GmbH","position":"Backend Engineer","language":"german","enabled":true},
			{"id":"globex","company":"Globex","position":"Platform Engineer","language":"english","enabled":false}]`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/jobs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var list []jobs.Job
	if err := decodeJSON(resp, &list); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(list) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(list))
	}
	if list[0].ID != "acme" || !list[0].Enabled {
		t.Errorf("first job = %+v, want enabled acme", list[0])
	}
	if list[1].Enabled {
		t.Error("globex should be disabled")
	}
}

func TestJobEnable(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /jobs/acme/enable": `{"status":"enabled"}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/jobs/acme/enable", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["status"] != "enabled" {
		t.Errorf("status = %q, want enabled", result["status"])
	}
}

func TestProfileSet(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PATCH /profile": `{"status":"updated"}`,
	})

	client := ts.client()
	resp, err := client.patch(ctx, "/profile", map[string]any{"title": "Full-Stack Developer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result map[string]string
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result["status"] != "updated" {
		t.Errorf("status = %q, want updated", result["status"])
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	var sent map[string]any
	if err := json.Unmarshal([]byte(ts.requests[0].Body), &sent); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if sent["title"] != "Full-Stack Developer" {
		t.Errorf("body.title = %v, want Full-Stack Developer", sent["title"])
	}
}

func TestImportCVEncodesBase64(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /profile/import-cv": `{"status":"imported","chars":42}`,
	})

	client := ts.client()
	resp, err := client.post(ctx, "/profile/import-cv", map[string]string{"content": "JVBERi0xLjQ="})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Status string `json:"status"`
		Chars  int    `json:"chars"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result.Chars != 42 {
		t.Errorf("chars = %d, want 42", result.Chars)
	}
}

func TestStatusCommand_Running(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /health": `{"status":"ok"}`,
	})

	client := ts.client()
	resp, err := client.get(ctx, "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status code = %d, want 200", resp.StatusCode)
	}
}

func TestStatusCommand_Stopped(t *testing.T) {
	ts := newTestServer(t, map[string]string{})
	ts.server.Close()

	client := ts.client()
	_, err := client.get(ctx, "/health")
	if err == nil {
		t.Fatal("expected error for stopped server")
	}
	if !strings.Contains(err.Error(), "not reachable") {
		t.Errorf("error = %q, want it to mention 'not reachable'", err.Error())
	}
}

func TestNoColorFlag(t *testing.T) {
	old := noColor
	defer func() { noColor = old }()

	noColor = true
	result := colorize(colorGreen, "test message")
	if strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=true should not contain ANSI codes, got %q", result)
	}
	if result != "test message" {
		t.Errorf("result = %q, want %q", result, "test message")
	}

	noColor = false
	result = colorize(colorGreen, "test message")
	if !strings.Contains(result, "\033[") {
		t.Errorf("colorize with noColor=false should contain ANSI codes, got %q", result)
	}
}

func TestAPIClientAuth(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"GET /health": `{"status":"ok"}`,
	})

	client := ts.client()
	client.token = "my-secret-token"

	_, err := client.get(ctx, "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	if ts.requests[0].Auth != "Bearer my-secret-token" {
		t.Errorf("auth = %q, want 'Bearer my-secret-token'", ts.requests[0].Auth)
	}
}

func TestDecodeJSON_ErrorResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":{"message":"unauthorized","type":"auth_error"}}`))
	}))
	defer ts.Close()

	client := &apiClient{
		baseURL:    ts.URL,
		token:      "bad-token",
		httpClient: ts.Client(),
	}

	resp, err := client.get(ctx, "/profile")
	if err != nil {
		t.Fatalf("unexpected transport error: %v", err)
	}

	var result any
	err = decodeJSON(resp, &result)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %q, want it to contain '401'", err.Error())
	}
}

func TestConfigShowAll(t *testing.T) {
	cfg := config.Config{}
	cfg.Server.Port = 4000
	cfg.Model.Name = "gemini-2.0-flash"
	cfg.Model.APIKey = "secret"

	keys := config.ShowAll(cfg)
	if len(keys) == 0 {
		t.Fatal("expected non-empty keys from ShowAll")
	}

	found := false
	for _, k := range keys {
		if k.Key == "server.port" && k.Value == "4000" {
			found = true
		}
		if strings.Contains(k.Value, "secret") {
			t.Errorf("secret leaked through ShowAll: %s = %s", k.Key, k.Value)
		}
	}
	if !found {
		t.Error("expected to find server.port=4000 in ShowAll output")
	}
}
