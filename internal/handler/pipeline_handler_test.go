package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Suhaib3100/multi-format-ai-agents/internal/action"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/agent"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/anomaly"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/extraction"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/memory"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/rules"
	"github.com/Suhaib3100/multi-format-ai-agents/internal/service"
)

type fixedText struct{ text string }

func (f fixedText) GetText(data []byte) (string, error) { return f.text, nil }

func newTestServer(t *testing.T, port *extraction.FakePort) *httptest.Server {
	t.Helper()
	now, err := time.Parse(time.RFC3339, "2026-03-01T12:00:00Z")
	if err != nil {
		t.Fatalf("parse clock: %v", err)
	}
	ruleSource := func() *rules.Ruleset { return rules.Default() }
	detector := anomaly.NewDetector(ruleSource, anomaly.WithClock(func() time.Time { return now }))

	registry := agent.NewRegistry(
		agent.NewEmailAgent(port, ruleSource, zap.NewNop()),
		agent.NewJSONAgent(detector, zap.NewNop()),
		agent.NewPDFAgent(fixedText{text: "Service agreement, no monetary terms."}, port, ruleSource, zap.NewNop()),
	)
	pipeline := service.NewPipelineService(
		registry,
		action.NewRouter(action.WithIDGenerator(func() string { return "fixed" })),
		memory.NewMemStore(),
		service.Sinks{},
		zap.NewNop(),
	)

	h := NewPipelineHandler(pipeline, zap.NewNop())
	srv := httptest.NewServer(NewRouter(h, zap.NewNop()))
	t.Cleanup(srv.Close)
	return srv
}

func decodeResponse(t *testing.T, resp *http.Response) Response {
	t.Helper()
	defer resp.Body.Close()
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestProcessJSONEvent(t *testing.T) {
	srv := newTestServer(t, extraction.NewFakePort())

	body := `{"json_data": "{\"event_type\":\"fraud_attempt\",\"timestamp\":\"2026-03-01T11:00:00Z\",\"source\":\"payments\",\"data\":{\"id\":\"e\",\"user_id\":\"u\",\"amount\":50000}}"}`
	resp := postJSON(t, srv.URL+"/api/v1/process", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	out := decodeResponse(t, resp)
	if !out.Success {
		t.Fatalf("response = %+v", out)
	}

	record, _ := out.Data.(map[string]any)
	if record["source"] != "json" {
		t.Fatalf("record source = %v", record["source"])
	}
	trigger, _ := record["action_triggered"].(map[string]any)
	if trigger["route"] != action.RouteRiskAlertCritical {
		t.Fatalf("action_triggered = %v", record["action_triggered"])
	}
}

func TestProcessEmail(t *testing.T) {
	port := extraction.NewFakePort().Respond("business emails", map[string]any{"tone": "angry"})
	srv := newTestServer(t, port)

	resp := postJSON(t, srv.URL+"/api/v1/process", `{"email_content": "This is outrageous!"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	out := decodeResponse(t, resp)
	record, _ := out.Data.(map[string]any)
	trigger, _ := record["action_triggered"].(map[string]any)
	if trigger["route"] != action.RouteCRMEscalate {
		t.Fatalf("action_triggered = %v", record["action_triggered"])
	}
}

func TestProcessRejectsBadRequests(t *testing.T) {
	srv := newTestServer(t, extraction.NewFakePort())

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"empty body fields", "application/json", `{}`, http.StatusBadRequest},
		{"invalid json body", "application/json", `{{{`, http.StatusBadRequest},
		{"wrong content type", "text/plain", `hello`, http.StatusBadRequest},
		{"malformed event payload", "application/json", `{"json_data": "not json"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/v1/process", tt.contentType, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			out := decodeResponse(t, resp)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%+v)", resp.StatusCode, tt.wantStatus, out)
			}
			if out.Success {
				t.Fatalf("response = %+v, want failure", out)
			}
		})
	}
}

func TestProcessExtractionFailureIs502(t *testing.T) {
	port := extraction.NewFakePort()
	port.Fail = true
	srv := newTestServer(t, port)

	resp := postJSON(t, srv.URL+"/api/v1/process", `{"email_content": "hello"}`)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestProcessPDFUpload(t *testing.T) {
	port := extraction.NewFakePort().Respond("business documents", map[string]any{
		"document_type": "agreement",
	})
	srv := newTestServer(t, port)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "contract.pdf")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write([]byte("%PDF-1.4 fake"))
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/process/pdf", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	out := decodeResponse(t, resp)
	record, _ := out.Data.(map[string]any)
	if record["source"] != "pdf" {
		t.Fatalf("record source = %v", record["source"])
	}
}

func TestProcessPDFMissingFile(t *testing.T) {
	srv := newTestServer(t, extraction.NewFakePort())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	resp, err := http.Post(srv.URL+"/api/v1/process/pdf", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestActivityEndpoints(t *testing.T) {
	port := extraction.NewFakePort().Respond("business emails", map[string]any{"tone": "polite"})
	srv := newTestServer(t, port)

	// Empty list first.
	resp, err := http.Get(srv.URL + "/api/v1/activity")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	out := decodeResponse(t, resp)
	if list, ok := out.Data.([]any); !ok || len(list) != 0 {
		t.Fatalf("empty list = %v", out.Data)
	}

	postJSON(t, srv.URL+"/api/v1/process", `{"email_content": "hello"}`).Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/activity/1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	out = decodeResponse(t, resp)
	record, _ := out.Data.(map[string]any)
	if record["id"] != float64(1) {
		t.Fatalf("record id = %v", record["id"])
	}

	// Unknown id and bad id formats.
	resp, _ = http.Get(srv.URL + "/api/v1/activity/42")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = http.Get(srv.URL + "/api/v1/activity/abc")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, extraction.NewFakePort())
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
