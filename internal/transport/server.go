// Package transport exposes the meta-context engine over HTTP: callers
// upsert knowledge objects, manage lanes, request a synthesized working
// memory payload, and ask an LLM a question with that working memory as the
// system prompt.
package transport

import (
	"net/http"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"metacontext/internal/metacontext"
	"metacontext/internal/version"
)

// Server exposes HTTP endpoints over a single engine Context.
type Server struct {
	ctx   *metacontext.Context
	llm   anthropic.Client
	model string
	mux   *http.ServeMux
}

// NewServer wires a Server around ctx. llmModel selects the Anthropic model
// used by /api/v1/context/completion.
func NewServer(ctx *metacontext.Context, llm anthropic.Client, llmModel string) *Server {
	s := &Server{ctx: ctx, llm: llm, model: llmModel, mux: http.NewServeMux()}
	s.registerRoutes()
	return s
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.mux.HandleFunc("POST /api/v1/goals", s.handleUpsertGoal)
	s.mux.HandleFunc("POST /api/v1/constraints", s.handleUpsertConstraint)
	s.mux.HandleFunc("POST /api/v1/assumptions", s.handleUpsertAssumption)
	s.mux.HandleFunc("POST /api/v1/evidence", s.handleIngestEvidence)
	s.mux.HandleFunc("POST /api/v1/questions", s.handleUpsertQuestion)
	s.mux.HandleFunc("POST /api/v1/decisions", s.handleUpsertDecision)

	s.mux.HandleFunc("PUT /api/v1/lanes/{laneID}", s.handleEnsureLane)
	s.mux.HandleFunc("POST /api/v1/lanes/{laneID}/status", s.handleSetLaneStatus)
	s.mux.HandleFunc("POST /api/v1/lanes/{laneID}/pin", s.handlePinInLane)
	s.mux.HandleFunc("POST /api/v1/lanes/{laneID}/unpin", s.handleUnpinInLane)
	s.mux.HandleFunc("GET /api/v1/lanes", s.handleListLanes)
	s.mux.HandleFunc("POST /api/v1/lanes/refresh", s.handleRefreshLanes)

	s.mux.HandleFunc("GET /api/v1/context", s.handleGetContextPayload)
	s.mux.HandleFunc("POST /api/v1/context/completion", s.handleCompletion)
}
