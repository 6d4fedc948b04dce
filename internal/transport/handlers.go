package transport

import (
	"encoding/json"
	"errors"
	"net/http"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"metacontext/internal/metacontext"
	"metacontext/internal/version"
)

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": version.Version})
}

func (s *Server) handleUpsertGoal(w http.ResponseWriter, r *http.Request) {
	var p metacontext.GoalPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.ctx.UpsertGoal(p)
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpsertConstraint(w http.ResponseWriter, r *http.Request) {
	var p metacontext.ConstraintPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.ctx.UpsertConstraint(p)
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpsertAssumption(w http.ResponseWriter, r *http.Request) {
	var p metacontext.AssumptionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.ctx.UpsertAssumption(p)
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleIngestEvidence(w http.ResponseWriter, r *http.Request) {
	var p metacontext.EvidencePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.ctx.IngestEvidence(p)
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpsertQuestion(w http.ResponseWriter, r *http.Request) {
	var p metacontext.QuestionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.ctx.UpsertQuestion(p)
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpsertDecision(w http.ResponseWriter, r *http.Request) {
	var p metacontext.DecisionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.ctx.UpsertDecision(p)
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleEnsureLane(w http.ResponseWriter, r *http.Request) {
	laneID := r.PathValue("laneID")
	var body struct {
		Name   string                  `json:"name"`
		Policy metacontext.WindowPolicy `json:"policy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	policy := body.Policy
	if policy == (metacontext.WindowPolicy{}) {
		policy = metacontext.DefaultLaneWindowPolicy()
	}
	snap, err := s.ctx.EnsureLane(laneID, body.Name, policy)
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetLaneStatus(w http.ResponseWriter, r *http.Request) {
	laneID := r.PathValue("laneID")
	var body struct {
		Status metacontext.LaneStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	snap, err := s.ctx.SetLaneStatus(laneID, body.Status)
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handlePinInLane(w http.ResponseWriter, r *http.Request) {
	s.handleSetPin(w, r, true)
}

func (s *Server) handleUnpinInLane(w http.ResponseWriter, r *http.Request) {
	s.handleSetPin(w, r, false)
}

func (s *Server) handleSetPin(w http.ResponseWriter, r *http.Request, pinned bool) {
	laneID := r.PathValue("laneID")
	var ref metacontext.Ref
	if err := json.NewDecoder(r.Body).Decode(&ref); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var snap metacontext.LaneSnapshot
	var err error
	if pinned {
		snap, err = s.ctx.PinInLane(laneID, ref)
	} else {
		snap, err = s.ctx.UnpinInLane(laneID, ref)
	}
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleListLanes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"lanes": s.ctx.LaneList()})
}

func (s *Server) handleRefreshLanes(w http.ResponseWriter, r *http.Request) {
	snaps, err := s.ctx.RefreshAllLanes()
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	if _, err := s.ctx.MergeLanesToActiveWindow(); err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"lanes": snaps})
}

func (s *Server) handleGetContextPayload(w http.ResponseWriter, r *http.Request) {
	budget := 4000
	if v := r.URL.Query().Get("token_budget"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			budget = n
		}
	}
	payload, err := s.ctx.BuildLLMContextPayload(r.Context(), metacontext.SynthesisOptions{TokenBudget: budget})
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCompletion(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt      string `json:"prompt"`
		TokenBudget int    `json:"token_budget"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if body.TokenBudget <= 0 {
		body.TokenBudget = 4000
	}
	payload, err := s.ctx.BuildLLMContextPayload(r.Context(), metacontext.SynthesisOptions{TokenBudget: body.TokenBudget})
	if err != nil {
		respondError(w, statusFromError(err), err)
		return
	}

	resp, err := s.llm.Messages.New(r.Context(), anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: payload.WorkingMemory.Text},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(body.Prompt)),
		},
	})
	if err != nil {
		respondError(w, http.StatusBadGateway, err)
		return
	}

	var text string
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += tb.Text
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"completion": text,
		"context":    payload,
	})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, metacontext.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, metacontext.ErrUnknownLane), errors.Is(err, metacontext.ErrUnknownRef):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func parsePositiveInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, errInvalidInt
		}
		n = n*10 + int(r-'0')
	}
	if n <= 0 {
		return 0, errInvalidInt
	}
	return n, nil
}

var errInvalidInt = errors.New("transport: not a positive integer")
