package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/docgrep/internal/discover"
	"github.com/dgallion1/docgrep/internal/match"
	"github.com/dgallion1/docgrep/internal/parser"
	"github.com/dgallion1/docgrep/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const maxRequestBytes = 1 << 20

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req pipeline.SearchRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Pattern == "" {
		jsonError(w, "pattern is required", http.StatusBadRequest)
		return
	}

	re, err := match.Compile(req.Pattern)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	for _, suf := range req.Suffixes {
		if !parser.IsSupportedExtension("x" + suf) {
			jsonError(w, fmt.Sprintf("unsupported suffix: %s", suf), http.StatusBadRequest)
			return
		}
	}

	var paths []string
	for _, p := range req.Paths {
		resolved, err := discover.Confine(s.cfg.SearchRoot, p)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, discover.ErrOutsideRoot) {
				status = http.StatusBadRequest
			}
			jsonError(w, err.Error(), status)
			return
		}
		paths = append(paths, resolved)
	}

	job := pipeline.NewJob(req, re, paths)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.log.Info("search queued", "job_id", job.ID, "pattern", req.Pattern, "paths", len(paths))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/search/%s", job.ID),
	})
}

func (s *Server) handleSearchStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
