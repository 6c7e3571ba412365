package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/flightdeck/pkg/cache"
	"github.com/matzehuels/flightdeck/pkg/errors"
	"github.com/matzehuels/flightdeck/pkg/panel"
)

func TestExtractJSONPlain(t *testing.T) {
	raw := `{"success": true, "message": "done"}`
	if got := ExtractJSON(raw); got != raw {
		t.Errorf("plain JSON should pass through: %q", got)
	}
}

func TestExtractJSONFenced(t *testing.T) {
	raw := "```json\n{\"success\": true, \"message\": \"done\"}\n```"
	want := `{"success": true, "message": "done"}`
	if got := ExtractJSON(raw); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractJSONSkipsSchemaEcho(t *testing.T) {
	// Local models sometimes repeat the schema before answering. The
	// schema spells "success": boolean, so the value anchor must land on
	// the second object.
	raw := `Here is the schema:
{"success": boolean, "message": string}
And my answer:
{"success": false, "message": "cannot hide altitude"}`

	got := ExtractJSON(raw)
	var res Result
	if err := json.Unmarshal([]byte(got), &res); err != nil {
		t.Fatalf("extracted text is not JSON: %v (%q)", err, got)
	}
	if res.Success || res.Message != "cannot hide altitude" {
		t.Errorf("wrong object extracted: %+v", res)
	}
}

func TestExtractJSONNestedBraces(t *testing.T) {
	raw := `{"success": true, "message": "ok", "updatedConfig": {"theme": "dark", "components": []}}`
	if got := ExtractJSON(raw); got != raw {
		t.Errorf("nested object truncated: %q", got)
	}
}

func TestExtractJSONLongestFallback(t *testing.T) {
	raw := `{"a": 1} some prose {"theme": "dark", "components": []} trailing`
	want := `{"theme": "dark", "components": []}`
	if got := ExtractJSON(raw); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseResultEmpty(t *testing.T) {
	if _, err := ParseResult("   "); errors.GetCode(err) != errors.ErrCodeAgentResponse {
		t.Errorf("empty content should be an agent response error: %v", err)
	}
	if _, err := ParseResult("no json here at all"); err == nil {
		t.Error("non-JSON content should error")
	}
}

func TestApplyAcceptsValidUpdate(t *testing.T) {
	current := panel.DefaultState()
	update := current
	update.Theme = panel.ThemeLight

	merged, res := Apply(current, Result{Success: true, Message: "ok", UpdatedConfig: &update})
	if !res.Success {
		t.Fatalf("valid update rejected: %s", res.Message)
	}
	if merged.Theme != panel.ThemeLight {
		t.Errorf("update not applied: %s", merged.Theme)
	}
	if res.UpdatedConfig == nil || res.UpdatedConfig.Theme != panel.ThemeLight {
		t.Error("result should carry the merged state")
	}
}

func TestApplyRejectsUnsafeUpdate(t *testing.T) {
	current := panel.DefaultState()
	update := panel.DefaultState()
	for i := range update.Components {
		if update.Components[i].ID == panel.InstrumentAltitude {
			update.Components[i].Visible = false
		}
	}

	merged, res := Apply(current, Result{Success: true, UpdatedConfig: &update})
	if res.Success {
		t.Fatal("hiding a core instrument must be rejected")
	}
	if res.UpdatedConfig != nil {
		t.Error("rejection should not carry a state")
	}
	if err := merged.Validate(); err != nil {
		t.Errorf("state after rejection must stay valid: %v", err)
	}
}

func TestApplyPassesThroughRejection(t *testing.T) {
	current := panel.DefaultState()
	merged, res := Apply(current, Reject("no"))
	if res.Success || res.Message != "no" {
		t.Errorf("rejection altered: %+v", res)
	}
	if merged.Theme != current.Theme || len(merged.Components) != len(current.Components) {
		t.Error("rejection must keep the current state")
	}
}

// fakeModel serves a canned chat completions response and counts calls.
func fakeModel(t *testing.T, verdict Result) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	content, err := json.Marshal(verdict)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header: %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Temperature != 0 {
			t.Errorf("temperature should be 0, got %v", req.Temperature)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": string(content)}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClient(baseURL string, c cache.Cache) *Client {
	return NewClient(ClientConfig{BaseURL: baseURL, APIKey: "test-key", Model: "test-model"}, c)
}

func TestClientAdjust(t *testing.T) {
	current := panel.DefaultState()
	update := current
	update.Theme = panel.ThemeLight

	srv, _ := fakeModel(t, Result{Success: true, Message: "switched theme", UpdatedConfig: &update})
	client := newTestClient(srv.URL, cache.NewNullCache())

	res, err := client.Adjust(context.Background(), "switch to light theme", current)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if !res.Success || res.UpdatedConfig == nil {
		t.Fatalf("unexpected verdict: %+v", res)
	}
	if res.UpdatedConfig.Theme != panel.ThemeLight {
		t.Errorf("theme not updated: %s", res.UpdatedConfig.Theme)
	}
}

func TestClientAdjustEnforcesSafety(t *testing.T) {
	current := panel.DefaultState()
	update := panel.DefaultState()
	for i := range update.Components {
		if update.Components[i].ID == panel.InstrumentRPM {
			update.Components[i].Zone = panel.ZoneSecondary
		}
	}

	// The fake model claims success while demoting a core instrument.
	srv, _ := fakeModel(t, Result{Success: true, Message: "moved rpm", UpdatedConfig: &update})
	client := newTestClient(srv.URL, cache.NewNullCache())

	res, err := client.Adjust(context.Background(), "move rpm down", current)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if res.Success {
		t.Error("unsafe model output must be converted to a rejection")
	}
}

func TestClientAdjustCaches(t *testing.T) {
	current := panel.DefaultState()
	update := current
	update.Theme = panel.ThemeLight

	srv, calls := fakeModel(t, Result{Success: true, Message: "switched theme", UpdatedConfig: &update})
	client := newTestClient(srv.URL, cache.NewMemoryCache())

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := client.Adjust(ctx, "switch to light theme", current)
		if err != nil {
			t.Fatalf("Adjust %d: %v", i, err)
		}
		if !res.Success {
			t.Fatalf("Adjust %d rejected: %s", i, res.Message)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 upstream call, got %d", got)
	}

	// A different command misses the cache.
	if _, err := client.Adjust(ctx, "use the light theme please", current); err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("expected 2 upstream calls, got %d", got)
	}
}

func TestClientAdjustDoesNotCacheRejections(t *testing.T) {
	current := panel.DefaultState()
	srv, calls := fakeModel(t, Reject("cannot hide altitude"))
	client := newTestClient(srv.URL, cache.NewMemoryCache())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		res, err := client.Adjust(ctx, "hide altitude", current)
		if err != nil {
			t.Fatalf("Adjust %d: %v", i, err)
		}
		if res.Success {
			t.Fatalf("Adjust %d: rejection expected", i)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("rejections must not be served from cache, got %d upstream calls", got)
	}
}

func TestClientAdjustRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	verdict, _ := json.Marshal(Reject("no"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": string(verdict)}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, cache.NewNullCache())
	res, err := client.Adjust(context.Background(), "hide fuel", panel.DefaultState())
	if err != nil {
		t.Fatalf("Adjust should recover from a transient 502: %v", err)
	}
	if res.Success {
		t.Errorf("unexpected verdict: %+v", res)
	}
	if calls.Load() < 2 {
		t.Errorf("expected a retry, got %d calls", calls.Load())
	}
}

func TestClientAdjustAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL, cache.NewNullCache())
	_, err := client.Adjust(context.Background(), "hide fuel", panel.DefaultState())
	if errors.GetCode(err) != errors.ErrCodeAgentUnavailable {
		t.Errorf("expected AGENT_UNAVAILABLE, got %v", err)
	}
}

func TestClientAdjustUnconfigured(t *testing.T) {
	client := NewClient(ClientConfig{}, nil)
	_, err := client.Adjust(context.Background(), "hide fuel", panel.DefaultState())
	if errors.GetCode(err) != errors.ErrCodeAgentUnavailable {
		t.Errorf("expected AGENT_UNAVAILABLE, got %v", err)
	}
}

func TestClientAdjustInvalidCommand(t *testing.T) {
	srv, calls := fakeModel(t, Reject("no"))
	client := newTestClient(srv.URL, cache.NewNullCache())

	_, err := client.Adjust(context.Background(), "   ", panel.DefaultState())
	if errors.GetCode(err) != errors.ErrCodeInvalidCommand {
		t.Errorf("expected INVALID_COMMAND, got %v", err)
	}
	_, err = client.Adjust(context.Background(), strings.Repeat("x", errors.MaxCommandLength+1), panel.DefaultState())
	if errors.GetCode(err) != errors.ErrCodeInvalidCommand {
		t.Errorf("expected INVALID_COMMAND, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("invalid commands must not reach the model, got %d calls", calls.Load())
	}
}

func TestBuildPromptContainsStateAndCommand(t *testing.T) {
	prompt, err := BuildPrompt("hide fuel", panel.DefaultState())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"hide fuel"`, `"altitude"`, "Current UI State:", "Flight Cockpit Interface Agent"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
