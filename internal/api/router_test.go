package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/probelab/beliefd/internal/domain"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	return NewApp(t.TempDir(), zap.NewNop())
}

func doJSON(t *testing.T, app *App, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func createModel(t *testing.T, app *App, body map[string]any) domain.MentalModel {
	t.Helper()
	rec := doJSON(t, app, http.MethodPost, "/v1/models/", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[domain.MentalModel](t, rec)
}

func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(t)
	rec := doJSON(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[map[string]string](t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	doJSON(t, app, http.MethodGet, "/health", nil)

	rec := doJSON(t, app, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.GreaterOrEqual(t, body["request_count"].(float64), 1.0)
	assert.Contains(t, body, "uptime_seconds")
}

func TestModelLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	m := createModel(t, app, map[string]any{
		"title":      "Login retries on 5xx",
		"domain":     "software_QA",
		"tags":       []string{"login"},
		"confidence": 0.5,
	})
	require.NotEqual(t, uuid.Nil, m.ID)

	rec := doJSON(t, app, http.MethodGet, "/v1/models/"+m.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app, http.MethodPost, "/v1/models/"+m.ID.String()+"/reinforce", map[string]any{
		"evidence_ids": []string{"obs-2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[domain.MentalModel](t, rec)
	assert.InDelta(t, 0.55, got.Confidence, 1e-9)
	assert.Len(t, got.UpdateHistory, 2)

	rec = doJSON(t, app, http.MethodPost, "/v1/models/"+m.ID.String()+"/deprecate", map[string]any{
		"reason": "superseded",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody[domain.MentalModel](t, rec)
	assert.Equal(t, domain.StatusDeprecated, got.Status)

	rec = doJSON(t, app, http.MethodGet, "/v1/models/?status=deprecated", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody[map[string]any](t, rec)
	assert.Equal(t, 1.0, listing["count"])
}

func TestModelValidationOverHTTP(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app, http.MethodPost, "/v1/models/", map[string]any{"domain": "general"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, app, http.MethodGet, "/v1/models/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, app, http.MethodGet, "/v1/models/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCandidatesOverHTTP(t *testing.T) {
	app := newTestApp(t)
	createModel(t, app, map[string]any{
		"title":      "Login retries on 5xx",
		"domain":     "software_QA",
		"tags":       []string{"login"},
		"confidence": 0.8,
	})

	rec := doJSON(t, app, http.MethodPost, "/v1/models/candidates", map[string]any{
		"observation": map[string]any{
			"id":       "obs-1",
			"summary":  "login retries observed",
			"entities": []string{"login"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Candidates []struct {
			Title     string  `json:"title"`
			Relevance float64 `json:"relevance"`
		} `json:"candidates"`
		Novel bool `json:"novel"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Candidates, 1)
	assert.Equal(t, "Login retries on 5xx", body.Candidates[0].Title)
	assert.Greater(t, body.Candidates[0].Relevance, 0.5)
	assert.False(t, body.Novel)
}

func TestEdgesOverHTTP(t *testing.T) {
	app := newTestApp(t)
	a := createModel(t, app, map[string]any{"title": "Belief A", "confidence": 0.5})
	b := createModel(t, app, map[string]any{"title": "Belief B", "confidence": 0.5})

	rec := doJSON(t, app, http.MethodPost, "/v1/edges/", map[string]any{
		"from_model": a.ID.String(),
		"to_model":   b.ID.String(),
		"relation":   "depends_on",
		"weight":     0.7,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	edge := decodeBody[domain.GraphEdge](t, rec)

	rec = doJSON(t, app, http.MethodPost, "/v1/edges/"+edge.ID.String()+"/strengthen", map[string]any{"delta": 0.2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 0.9, decodeBody[domain.GraphEdge](t, rec).Weight, 1e-9)

	rec = doJSON(t, app, http.MethodGet, fmt.Sprintf("/v1/edges/?a=%s&b=%s", b.ID, a.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, edge.ID, decodeBody[domain.GraphEdge](t, rec).ID)

	rec = doJSON(t, app, http.MethodGet, "/v1/edges/?dependencies="+a.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody[map[string]any](t, rec)
	assert.Equal(t, 1.0, listing["count"])

	rec = doJSON(t, app, http.MethodDelete, "/v1/models/"+a.ID.String()+"/edges", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[map[string]int](t, rec)["removed"])

	rec = doJSON(t, app, http.MethodGet, "/v1/edges/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing = decodeBody[map[string]any](t, rec)
	assert.Equal(t, 0.0, listing["count"])
}

func TestPlanCacheOverHTTP(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app, http.MethodPost, "/v1/plans/", map[string]any{
		"plan": []map[string]any{
			{"description": "open login page", "result": map[string]any{"passed": true}},
			{"description": "submit credentials", "result": map[string]any{"passed": true}},
		},
		"url":    "https://www.example.com/login",
		"goal":   "Test login flow",
		"run_id": "run-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decodeBody[domain.CachedPlan](t, rec)
	assert.Equal(t, "example.com", entry.URLDomain)

	rec = doJSON(t, app, http.MethodPost, "/v1/plans/find", map[string]any{
		"url":  "https://example.com/login",
		"goal": "login flow testing",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var match struct {
		Entry domain.CachedPlan `json:"entry"`
		Score float64           `json:"score"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, entry.ID, match.Entry.ID)
	assert.GreaterOrEqual(t, match.Score, 0.4)

	rec = doJSON(t, app, http.MethodPost, "/v1/plans/"+entry.ID.String()+"/reuse", map[string]any{
		"passed": 1, "failed": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, app, http.MethodPost, "/v1/plans/find", map[string]any{
		"url":  "https://unrelated.org/",
		"goal": "something else entirely",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, app, http.MethodPost, "/v1/plans/", map[string]any{
		"plan": []map[string]any{},
		"url":  "https://example.com",
		"goal": "empty",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPerceiveOverHTTP(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app, http.MethodPost, "/v1/perceive", map[string]any{
		"content":      "2024-01-15 10:00:00 ERROR connection refused\n",
		"content_type": "log",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Chunks []struct {
			Content  string `json:"content"`
			Salience struct {
				Score float64 `json:"score"`
				Rule  string  `json:"rule"`
			} `json:"salience"`
		} `json:"chunks"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "error", body.Chunks[0].Salience.Rule)
	assert.Equal(t, 0.9, body.Chunks[0].Salience.Score)
}

func TestObservationsReadOnlyView(t *testing.T) {
	app := newTestApp(t)

	rec := doJSON(t, app, http.MethodGet, "/v1/observations/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody[map[string]any](t, rec)
	assert.Equal(t, 0.0, listing["count"])

	rec = doJSON(t, app, http.MethodGet, "/v1/observations/obs-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
