package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spv-projection/internal/config"
	"spv-projection/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	svc := config.Service{CORSOrigins: []string{"*"}}
	return NewRouter(svc, nil, st)
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decode(t, w)
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, w.Body.String())
	return e["code"].(string)
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCatalogEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodGet, "/api/v1/defaults", "")
	require.Equal(t, http.StatusOK, w.Code)
	var f config.File
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	s, err := f.Resolve()
	require.NoError(t, err)
	assert.Equal(t, config.Default().SeedEquity, s.SeedEquity)
	assert.Equal(t, config.Default().LoanRate, s.LoanRate)

	w = do(t, r, http.MethodGet, "/api/v1/stress-tests", "")
	require.Equal(t, http.StatusOK, w.Code)
	tests := decode(t, w)["stress_tests"].([]any)
	assert.Len(t, tests, 8)
}

func TestRunProjection(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/projection", `{"config":{"settings":{}}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["id"])
	assert.Contains(t, []any{"completed", "completed_with_warnings"}, body["status"])
	rng := body["range"].(map[string]any)
	assert.Contains(t, rng, "min")
	assert.Contains(t, rng, "max")
	assert.NotContains(t, rng["base"], "ledger")
	assert.NotContains(t, body, "ledger")

	w = do(t, r, http.MethodPost, "/api/v1/projection",
		`{"config":{"settings":{"retirement_year":5,"forecast_period":2}},"options":{"include_ledger":true}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["ledger"], 8)
}

func TestRunProjection_InvalidConfig(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/projection", `{"config":{"settings":{"ltv":150,"term_years":0}}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	e := body["error"].(map[string]any)
	assert.Equal(t, "INVALID_CONFIG", e["code"])
	fields := e["details"].(map[string]any)["fields"].([]any)
	assert.Len(t, fields, 2)

	w = do(t, r, http.MethodPost, "/api/v1/projection", `{"config":{"base_file":"/etc/passwd"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONFIG", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/projection", `{"config":{"stress_tests":[{"id":"meteor"}]}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONFIG", errorCode(t, w))

	w = do(t, r, http.MethodPost, "/api/v1/projection", `{"config":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func TestCompareProjections(t *testing.T) {
	r := newTestRouter(t)
	body := `{
		"base": {"settings": {}},
		"variations": [
			{"name": "base", "config": {}},
			{"name": "crash", "config": {"stress_tests": [{"id": "property-crash", "start_year": 5, "duration": 5}]}},
			{"name": "growth", "config": {"settings": {"price_growth": 4}}},
			{"name": "broken", "config": {"settings": {"unit_price": -1}}}
		]
	}`
	w := do(t, r, http.MethodPost, "/api/v1/projection/compare", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	comparison := resp["comparison"].([]any)
	require.Len(t, comparison, 3)
	names := make([]string, len(comparison))
	for i, c := range comparison {
		names[i] = c.(map[string]any)["name"].(string)
	}
	assert.Equal(t, []string{"growth", "base", "crash"}, names)

	skipped := resp["skipped"].([]any)
	require.Len(t, skipped, 1)
	assert.Equal(t, "broken", skipped[0].(map[string]any)["name"])
}

func TestRenderReport(t *testing.T) {
	r := newTestRouter(t)
	req := `{"config":{"name":"Plan A","settings":{}}}`

	w := do(t, r, http.MethodPost, "/api/v1/projection/report", req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, w.Body.String(), "# Plan A")

	w = do(t, r, http.MethodPost, "/api/v1/projection/report?format=html", req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<table>")

	w = do(t, r, http.MethodPost, "/api/v1/projection/report?format=json", req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Plan A", decode(t, w)["name"])

	w = do(t, r, http.MethodPost, "/api/v1/projection/report?format=pdf", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScenarioLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPut, "/api/v1/scenarios/retire-early",
		`{"config":{"settings":{"retirement_year":15}},"run":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode(t, w)
	assert.Equal(t, "retire-early", saved["name"])
	assert.Equal(t, true, saved["has_results"])

	w = do(t, r, http.MethodGet, "/api/v1/scenarios", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["scenarios"], 1)

	w = do(t, r, http.MethodGet, "/api/v1/scenarios/retire-early", "")
	require.Equal(t, http.StatusOK, w.Code)
	sc := decode(t, w)
	assert.Equal(t, saved["id"], sc["id"])
	assert.Equal(t, 15.0, sc["settings"].(map[string]any)["retirement_year"])

	w = do(t, r, http.MethodDelete, "/api/v1/scenarios/retire-early", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/scenarios/retire-early", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))

	w = do(t, r, http.MethodPut, "/api/v1/scenarios/bad", `{"config":{"settings":{"ltv":101}}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projection", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	r := NewRouter(config.Service{CORSOrigins: []string{"*"}, StaticDir: dir}, nil, nil)

	w := do(t, r, http.MethodGet, "/plans/42", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app")

	w = do(t, r, http.MethodGet, "/api/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// no store, no scenario routes
	w = do(t, r, http.MethodGet, "/api/v1/scenarios", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
