package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tenon/pkg/cache"
	"github.com/matzehuels/tenon/pkg/diagram"
	"github.com/matzehuels/tenon/pkg/pipeline"
	"github.com/matzehuels/tenon/pkg/solver"
	"github.com/matzehuels/tenon/pkg/store"
)

func newTestServer() *Server {
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
	return NewServer(runner, store.NewMemoryStore(), logger)
}

func boxDefinition() diagram.Definition {
	return diagram.Definition{
		Name: "box",
		Variables: []diagram.VariableDef{
			{Name: "left", Value: 0, Strength: "strong"},
			{Name: "right", Value: 10, Strength: "strong"},
			{Name: "mid", Value: 0, Strength: "weak"},
		},
		Constraints: []diagram.ConstraintDef{
			{Kind: diagram.KindCenter, A: "left", B: "right", Center: "mid"},
		},
	}
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestServer().Router(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSolveInline(t *testing.T) {
	router := newTestServer().Router()

	manifest, err := diagram.Encode(&diagram.Definition{
		Name: "box",
		Variables: []diagram.VariableDef{
			{Name: "left", Value: 0, Strength: "strong"},
			{Name: "right", Value: 10, Strength: "strong"},
			{Name: "mid", Value: 0, Strength: "weak"},
		},
		Constraints: []diagram.ConstraintDef{
			{Kind: diagram.KindCenter, A: "left", B: "right", Center: "mid"},
		},
	}, diagram.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/solve", map[string]any{
		"manifest":        string(manifest),
		"manifest_format": "json",
		"sets":            map[string]float64{"right": 20},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Solution map[string]float64 `json:"solution"`
		Cached   bool               `json:"cached"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if math.Abs(resp.Solution["mid"]-10) >= solver.Tolerance {
		t.Errorf("mid = %g, want 10", resp.Solution["mid"])
	}
}

func TestSolveInlineBadManifest(t *testing.T) {
	rec := doJSON(t, newTestServer().Router(), http.MethodPost, "/api/v1/solve", map[string]any{
		"manifest":        `{"variables": []}`,
		"manifest_format": "json",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "INVALID_MANIFEST") {
		t.Errorf("body should carry the error code: %s", rec.Body.String())
	}
}

func TestDiagramCRUD(t *testing.T) {
	router := newTestServer().Router()

	// Create
	rec := doJSON(t, router, http.MethodPost, "/api/v1/diagrams", map[string]any{
		"definition": boxDefinition(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created store.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}

	// Get
	rec = doJSON(t, router, http.MethodGet, "/api/v1/diagrams/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	// List
	rec = doJSON(t, router, http.MethodGet, "/api/v1/diagrams", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), created.ID.String()) {
		t.Error("list should include the created diagram")
	}

	// Solve stored diagram
	rec = doJSON(t, router, http.MethodPost,
		fmt.Sprintf("/api/v1/diagrams/%s/solve", created.ID), map[string]any{
			"sets": map[string]float64{"right": 30},
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("solve status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var solved struct {
		Solution map[string]float64 `json:"solution"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &solved); err != nil {
		t.Fatal(err)
	}
	if math.Abs(solved.Solution["mid"]-15) >= solver.Tolerance {
		t.Errorf("mid = %g, want 15", solved.Solution["mid"])
	}

	// The solution is persisted on the document.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/diagrams/"+created.ID.String(), nil)
	var fetched store.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatal(err)
	}
	if math.Abs(fetched.Solution["mid"]-15) >= solver.Tolerance {
		t.Errorf("persisted mid = %g, want 15", fetched.Solution["mid"])
	}

	// Delete
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/diagrams/"+created.ID.String(), nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/diagrams/"+created.ID.String(), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
}

func TestDiagramNotFound(t *testing.T) {
	rec := doJSON(t, newTestServer().Router(), http.MethodGet,
		"/api/v1/diagrams/00000000-0000-0000-0000-000000000001", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "DIAGRAM_NOT_FOUND") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDiagramBadID(t *testing.T) {
	rec := doJSON(t, newTestServer().Router(), http.MethodGet, "/api/v1/diagrams/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateDiagramInvalid(t *testing.T) {
	def := boxDefinition()
	def.Constraints[0].Center = "missing"
	rec := doJSON(t, newTestServer().Router(), http.MethodPost, "/api/v1/diagrams", map[string]any{
		"definition": def,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body = %s", rec.Code, rec.Body.String())
	}
}

func TestRequestIDHeader(t *testing.T) {
	rec := doJSON(t, newTestServer().Router(), http.MethodGet, "/healthz", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("response should carry X-Request-ID")
	}
}

func TestRequestIDPreserved(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	newTestServer().Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}
