package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := newServer(gocas.NewSolver(gocas.DefaultOptions()), log, 5*time.Second)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

const factorCall = `{"tool":"factor","params":{"expr":{"type":"add","terms":[` +
	`{"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":"2"}},` +
	`{"type":"num","value":"-1"}]}}}`

// ============================================================
// HTTP server tests
// ============================================================

func TestServe_Health(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestServe_RequestIDEchoed(t *testing.T) {
	ts := testServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-Id"))
}

func TestServe_Tool(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Post(ts.URL+"/tool", "application/json", strings.NewReader(factorCall))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out gocas.ToolResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Empty(t, out.Error)
	n, err := gocas.FromJSON(out.Result.(map[string]interface{}))
	require.NoError(t, err)
	x := gocas.S("x")
	want := gocas.MulOf(gocas.AddOf(x, gocas.N(1)), gocas.Sub(x, gocas.N(1)))
	assert.True(t, want.Equal(n), n.String())
}

func TestServe_ToolErrors(t *testing.T) {
	ts := testServer(t)
	for _, body := range []string{`{not json`, factorCall + `{}`, `{"tool":"factor","bogus":1}`} {
		resp, err := http.Post(ts.URL+"/tool", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}

	resp, err := http.Get(ts.URL + "/tool")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServe_ToolFailureIsOK(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Post(ts.URL+"/tool", "application/json", strings.NewReader(`{"tool":"frobnicate","params":{}}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var out gocas.ToolResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Contains(t, out.Error, "unknown tool")
}

func TestServe_ToolPanicRecovered(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := newServer(gocas.NewSolver(gocas.DefaultOptions()), log, 5*time.Second)
	s.handle = func(gocas.ToolRequest) gocas.ToolResponse { panic("boom") }
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)

	resp, err := http.Post(ts.URL+"/tool", "application/json", strings.NewReader(factorCall))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out gocas.ToolResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "internal error: boom", out.Error)

	health, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestServe_Schema(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Get(ts.URL + "/schema")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, gocas.ToolSpec(), string(b))
}

func TestServe_Metrics(t *testing.T) {
	ts := testServer(t)
	resp, err := http.Post(ts.URL+"/tool", "application/json", strings.NewReader(factorCall))
	require.NoError(t, err)
	resp.Body.Close()
	resp, err = http.Post(ts.URL+"/tool", "application/json", strings.NewReader(`{"tool":"frobnicate","params":{}}`))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(b)
	assert.Contains(t, text, `gocas_tool_calls_total{status="ok",tool="factor"} 1`)
	assert.Contains(t, text, `gocas_tool_calls_total{status="error",tool="unknown"} 1`)
	assert.Contains(t, text, "gocas_factor_cache_entries")
}

// ============================================================
// CLI tests
// ============================================================

func TestCLI_Factor(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"factor", `{"type":"add","terms":[{"type":"pow","base":{"type":"sym","name":"x"},"exp":{"type":"num","value":"2"}},{"type":"num","value":"-1"}]}`})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "x + 1")
	assert.Contains(t, out.String(), "x - 1")
}

func TestReadInput(t *testing.T) {
	b, err := readInput(strings.NewReader("from stdin"), "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", string(b))

	b, err = readInput(nil, `{"type":"sym","name":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"sym","name":"x"}`, string(b))

	_, err = readInput(nil, "@/does/not/exist.json")
	assert.Error(t, err)
}
