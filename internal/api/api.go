// Package api implements the HTTP API server.
//
// Routes:
//
//	GET    /healthz                  liveness probe
//	POST   /api/v1/solve             solve an inline manifest
//	POST   /api/v1/diagrams          create a diagram document
//	GET    /api/v1/diagrams          list diagram documents
//	GET    /api/v1/diagrams/{id}     fetch one document
//	POST   /api/v1/diagrams/{id}/solve  solve a stored diagram and persist the solution
//	DELETE /api/v1/diagrams/{id}     delete a document
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/tenon/pkg/diagram"
	"github.com/matzehuels/tenon/pkg/errors"
	"github.com/matzehuels/tenon/pkg/httputil"
	"github.com/matzehuels/tenon/pkg/pipeline"
	"github.com/matzehuels/tenon/pkg/store"
)

// Server carries the API's dependencies.
type Server struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger
}

// NewServer creates a server. A nil store falls back to an in-memory
// store; a nil logger falls back to the default logger.
func NewServer(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Runner: runner, Store: st, Logger: logger}
}

// Router builds the chi router with middleware and all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/solve", s.handleSolve)
		r.Route("/diagrams", func(r chi.Router) {
			r.Post("/", s.handleCreateDiagram)
			r.Get("/", s.handleListDiagrams)
			r.Get("/{id}", s.handleGetDiagram)
			r.Post("/{id}/solve", s.handleSolveDiagram)
			r.Delete("/{id}", s.handleDeleteDiagram)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// solveRequest is the body for POST /api/v1/solve.
type solveRequest struct {
	Manifest       string             `json:"manifest"`
	ManifestFormat string             `json:"manifest_format"`
	Sets           map[string]float64 `json:"sets,omitempty"`
	Formats        []string           `json:"formats,omitempty"`
	Detailed       bool               `json:"detailed,omitempty"`
	Refresh        bool               `json:"refresh,omitempty"`
}

// solveResponse is the body for solve endpoints.
type solveResponse struct {
	Solution    map[string]float64 `json:"solution"`
	Diagnostics []string           `json:"diagnostics,omitempty"`
	Artifacts   map[string]string  `json:"artifacts,omitempty"` // format -> content (DOT/SVG as text)
	Cached      bool               `json:"cached"`
	SolveTimeMS int64              `json:"solve_time_ms"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := s.Runner.Execute(r.Context(), pipeline.Options{
		Manifest:       req.Manifest,
		ManifestFormat: req.ManifestFormat,
		Sets:           req.Sets,
		Formats:        req.Formats,
		Detailed:       req.Detailed,
		Refresh:        req.Refresh,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toSolveResponse(result))
}

func toSolveResponse(result *pipeline.Result) solveResponse {
	resp := solveResponse{
		Solution:    result.Solution,
		Diagnostics: result.Diagnostics,
		Cached:      result.CacheInfo.SolutionHit,
		SolveTimeMS: result.Stats.SolveTime.Milliseconds(),
	}
	if len(result.Artifacts) > 0 {
		resp.Artifacts = make(map[string]string, len(result.Artifacts))
		for format, data := range result.Artifacts {
			resp.Artifacts[format] = string(data)
		}
	}
	return resp
}

// createDiagramRequest is the body for POST /api/v1/diagrams.
type createDiagramRequest struct {
	Definition diagram.Definition `json:"definition"`
}

func (s *Server) handleCreateDiagram(w http.ResponseWriter, r *http.Request) {
	var req createDiagramRequest
	if err := httputil.ReadJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Definition.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc := store.NewDocument(req.Definition)
	if err := s.Store.Put(r.Context(), doc); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleListDiagrams(w http.ResponseWriter, r *http.Request) {
	docs, err := s.Store.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"diagrams": docs})
}

func (s *Server) handleGetDiagram(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDiagram(w, r)
	if err != nil {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, doc)
}

// solveDiagramRequest is the body for POST /api/v1/diagrams/{id}/solve.
type solveDiagramRequest struct {
	Sets    map[string]float64 `json:"sets,omitempty"`
	Refresh bool               `json:"refresh,omitempty"`
}

func (s *Server) handleSolveDiagram(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDiagram(w, r)
	if err != nil {
		return
	}

	var req solveDiagramRequest
	if r.ContentLength > 0 {
		if err := httputil.ReadJSON(w, r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	manifest, err := diagram.Encode(&doc.Definition, diagram.FormatJSON)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := s.Runner.Execute(r.Context(), pipeline.Options{
		Manifest:       string(manifest),
		ManifestFormat: string(diagram.FormatJSON),
		Sets:           req.Sets,
		Refresh:        req.Refresh,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	doc.Solution = result.Solution
	doc.UpdatedAt = time.Now().UTC()
	if err := s.Store.Put(r.Context(), doc); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toSolveResponse(result))
}

func (s *Server) handleDeleteDiagram(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadDiagram fetches the document addressed by the {id} URL parameter,
// writing the error response itself on failure.
func (s *Server) loadDiagram(w http.ResponseWriter, r *http.Request) (*store.Document, error) {
	id, err := parseID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, err
	}
	doc, err := s.Store.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return nil, err
	}
	return doc, nil
}

func parseID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid diagram id: %q", raw)
	}
	return id, nil
}
