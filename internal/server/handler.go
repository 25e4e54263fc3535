package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"caselaw/internal/domain"
	"caselaw/internal/usecase"
)

type searchResponse struct {
	Query   string              `json:"query"`
	Mode    string              `json:"mode"`
	Total   uint64              `json:"total"`
	Offset  int                 `json:"offset"`
	Limit   int                 `json:"limit"`
	Results []domain.CaseResult `json:"results"`
}

type caseResponse struct {
	ID   uint32      `json:"id"`
	Case domain.Case `json:"case"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := usecase.SearchRequest{Text: q.Get("search")}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			s.writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		req.Offset = offset
	}
	if v := q.Get("export"); v != "" {
		export, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "export must be a boolean")
			return
		}
		req.Export = export
	}
	mode, err := domain.ParseQueryMode(q.Get("mode"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Mode = mode

	if req.Export && !s.exports.Allow() {
		w.Header().Set("Retry-After", "1")
		s.writeError(w, http.StatusTooManyRequests, "export rate limit exceeded")
		return
	}

	ctx := r.Context()
	page, err := s.engine.Search(ctx, req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	results, err := s.asm.Assemble(ctx, page.Hits)
	if err != nil {
		s.logger.Error("failed to assemble results", "query", page.Query, "error", err)
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	if req.Export {
		name := usecase.ExportFilename(page.Query, page.Total, page.Limit, page.Offset)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		if err := usecase.Export(w, results); err != nil {
			s.logger.Error("failed to write export", "query", page.Query, "error", err)
		}
		return
	}

	// Listings carry the preview; the full text is served by /case/{id}.
	for i := range results {
		results[i].Case.FullText = ""
	}
	s.writeJSON(w, http.StatusOK, searchResponse{
		Query:   page.Query,
		Mode:    mode.String(),
		Total:   page.Total,
		Offset:  page.Offset,
		Limit:   page.Limit,
		Results: results,
	})
}

func (s *Server) handleCase(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "id must be a positive integer")
		return
	}
	c, err := s.asm.Case(r.Context(), uint32(id))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, caseResponse{ID: uint32(id), Case: c})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusCode maps domain errors onto HTTP statuses.
func statusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrModeUnavailable), errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	code := statusCode(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	s.writeError(w, code, msg)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
