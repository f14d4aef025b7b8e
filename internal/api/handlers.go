package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/cheatcodes/internal/engine"
	"github.com/vytor/cheatcodes/internal/errors"
	"github.com/vytor/cheatcodes/internal/logger"
	"github.com/vytor/cheatcodes/internal/models"
	"github.com/vytor/cheatcodes/internal/services"
)

// HealthChecker reports whether a dependency can serve traffic.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

type Server struct {
	ProfileService services.ProfileService
	CoachService   services.CoachService
	Health         HealthChecker
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

func parseSection(raw string) (models.Section, error) {
	s, err := models.ParseSection(raw)
	if err != nil {
		return "", errors.NewInvalidInputError("section", err.Error())
	}
	return s, nil
}

func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewBadRequestError("invalid " + key + ": " + raw)
	}
	return n, nil
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, models.NewLegend())
}

type useRequest struct {
	TechniqueID string `json:"technique_id"`
	Name        string `json:"name"`
	Section     string `json:"section"`
}

func (s *Server) handleUse(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req useRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	section, err := parseSection(req.Section)
	if err != nil {
		handleError(w, r, err)
		return
	}

	in := engine.UseInput{
		TechniqueID: strings.TrimSpace(req.TechniqueID),
		Name:        strings.TrimSpace(req.Name),
		Section:     section,
	}
	out, err := s.CoachService.UseTechnique(r.Context(), profile.ID, in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}

type createTechniqueRequest struct {
	Section      string `json:"section"`
	Name         string `json:"name"`
	ConfirmMerge bool   `json:"confirm_merge"`
}

func (s *Server) handleCreateTechnique(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())

	var req createTechniqueRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	section, err := parseSection(req.Section)
	if err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.CoachService.CreateTechnique(r.Context(), profile.ID, section, req.Name, req.ConfirmMerge)
	if err != nil {
		handleError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, r, status, res)
}

func (s *Server) handleListTechniques(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	q := r.URL.Query()

	filter := models.TechniqueFilter{
		ProfileID: profile.ID,
		State:     models.SlotStateKind(q.Get("state")),
		Query:     q.Get("q"),
		OrderBy:   q.Get("order"),
		OrderDir:  "DESC",
	}
	if q.Get("dir") == "asc" {
		filter.OrderDir = "ASC"
	}
	if raw := q.Get("section"); raw != "" {
		section, err := parseSection(raw)
		if err != nil {
			handleError(w, r, err)
			return
		}
		filter.Section = section
	}
	var err error
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		handleError(w, r, err)
		return
	}

	techniques, total, err := s.CoachService.ListTechniques(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if techniques == nil {
		techniques = []models.ManagedTechnique{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"techniques": techniques,
		"total":      total,
	})
}

func (s *Server) handleTechniqueHistory(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	techniqueID := chi.URLParam(r, "tid")

	entries, err := s.CoachService.UsageHistory(r.Context(), profile.ID, techniqueID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.UsageEntry{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"technique_id": techniqueID,
		"usage":        entries,
	})
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	res, err := s.CoachService.ArchiveTechnique(r.Context(), profile.ID, chi.URLParam(r, "tid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleReactivate(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	res, err := s.CoachService.ReactivateTechnique(r.Context(), profile.ID, chi.URLParam(r, "tid"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleRadar(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	radar, err := s.CoachService.Radar(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, radar)
}

func (s *Server) handleHolds(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	holds, err := s.CoachService.Holds(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, holds)
}

func (s *Server) handleMaintenance(w http.ResponseWriter, r *http.Request) {
	profile := profileFromContext(r.Context())
	out, err := s.CoachService.Sweep(r.Context(), profile.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}
