package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/voyager/internal/extract"
	"github.com/MikeSquared-Agency/voyager/internal/planner"
	"github.com/MikeSquared-Agency/voyager/internal/sse"
)

const (
	eventChunk = "chunk"
	eventDone  = "done"
	eventError = "error"
)

type budgetResponse struct {
	Text    string               `json:"text"`
	Summary string               `json:"summary"`
	Rows    []extract.SummaryRow `json:"rows"`
}

type tripResponse struct {
	Text      string                 `json:"text"`
	Itinerary []extract.DayItinerary `json:"itinerary"`
	Summary   string                 `json:"summary"`
	Rows      []extract.SummaryRow   `json:"rows"`
}

type musicResponse struct {
	Text string `json:"text"`
}

func budgetResult(text string) any {
	summary := extract.ExtractSummary(text)
	return budgetResponse{Text: text, Summary: summary, Rows: extract.SummaryRows(summary)}
}

func tripResult(text string) any {
	summary := extract.ExtractSummary(text)
	return tripResponse{
		Text:      text,
		Itinerary: extract.ParseItinerary(text),
		Summary:   summary,
		Rows:      extract.SummaryRows(summary),
	}
}

func musicResult(text string) any {
	return musicResponse{Text: text}
}

func (s *Server) estimateBudget(w http.ResponseWriter, r *http.Request) {
	var req planner.BudgetRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	text, err := s.planner.EstimateBudget(r.Context(), req)
	if err != nil {
		s.writePlanError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgetResult(text))
}

func (s *Server) planTrip(w http.ResponseWriter, r *http.Request) {
	var req planner.TripRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	text, err := s.planner.PlanTrip(r.Context(), req)
	if err != nil {
		s.writePlanError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripResult(text))
}

func (s *Server) recommendMusic(w http.ResponseWriter, r *http.Request) {
	var req planner.MusicRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	text, err := s.planner.RecommendMusic(r.Context(), req)
	if err != nil {
		s.writePlanError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, musicResult(text))
}

type validator interface {
	Validate() error
}

// decodeValid decodes and validates a plan request, writing the 400 or 422
// response itself when it returns false.
func decodeValid(w http.ResponseWriter, r *http.Request, req validator) bool {
	if err := decodeJSON(r.Body, req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	if err := req.Validate(); err != nil {
		var fe planner.FieldErrors
		if errors.As(err, &fe) {
			writeFieldErrors(w, fe)
		} else {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return false
	}
	return true
}

func (s *Server) streamBudget(w http.ResponseWriter, r *http.Request) {
	var req planner.BudgetRequest
	if !decodeValid(w, r, &req) {
		return
	}
	s.relay(w, r, planner.TaskBudget, planner.BudgetPrompt(req), budgetResult)
}

func (s *Server) streamTrip(w http.ResponseWriter, r *http.Request) {
	var req planner.TripRequest
	if !decodeValid(w, r, &req) {
		return
	}
	s.relay(w, r, planner.TaskTrip, planner.TripPrompt(req), tripResult)
}

func (s *Server) streamMusic(w http.ResponseWriter, r *http.Request) {
	var req planner.MusicRequest
	if !decodeValid(w, r, &req) {
		return
	}
	s.relay(w, r, planner.TaskMusic, planner.MusicPrompt(req), musicResult)
}

// relay runs one generation and forwards every chunk to the client as a
// "chunk" event, then a single "done" event carrying result(text) as JSON,
// or an "error" event.
func (s *Server) relay(w http.ResponseWriter, r *http.Request, task planner.Task, prompt string, result func(string) any) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var writeErr error
	send := func(e sse.Event) {
		if writeErr != nil {
			return
		}
		if writeErr = sse.WriteEvent(w, e); writeErr != nil {
			s.logger.Warn("stream client gone", "path", r.URL.Path, "error", writeErr)
			return
		}
		flusher.Flush()
	}

	text, err := s.planner.Run(r.Context(), task, prompt, func(chunk string) {
		send(sse.Event{Type: eventChunk, Data: chunk})
	})
	if err != nil {
		s.logger.Error("plan stream failed", "task", task, "error", err)
		send(sse.Event{Type: eventError, Data: upstreamFailure})
		return
	}

	payload, err := json.Marshal(result(text))
	if err != nil {
		send(sse.Event{Type: eventError, Data: "failed to encode result"})
		return
	}
	send(sse.Event{Type: eventDone, Data: string(payload)})
}
