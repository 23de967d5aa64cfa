package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/specsift/specsift/internal/csi"
	"github.com/specsift/specsift/internal/sections"
)

// handleDivisionSections returns the assembled per-section content for one
// division of a finished job.
func (s *Server) handleDivisionSections(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	division := chi.URLParam(r, "division")
	if !csi.ValidDivision(division) {
		jsonError(w, "unknown division code: "+division, http.StatusBadRequest)
		return
	}
	doc, _, _, _ := job.Results()
	if doc == nil {
		jsonError(w, "results not ready", http.StatusConflict)
		return
	}

	secs := sections.Assemble(doc.Pages, division)
	pageCount := 0
	for i := range secs {
		pageCount += secs[i].PageCount
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"division":             division,
		"division_name":        csi.DivisionNames[division],
		"page_count":           pageCount,
		"use_section_analysis": sections.UseSectionAnalysis(pageCount, len(secs)),
		"sections":             secs,
	})
}

// handleDivisionExtract runs the downstream extraction fan-out for one
// division. It is synchronous; the fan-out's own timeouts bound the request.
func (s *Server) handleDivisionExtract(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	division := chi.URLParam(r, "division")
	if !csi.ValidDivision(division) {
		jsonError(w, "unknown division code: "+division, http.StatusBadRequest)
		return
	}

	result, err := s.orchestrator.ExtractDivision(r.Context(), job, division)
	if err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
