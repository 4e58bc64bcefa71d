/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/airwavefm/airwave/internal/models"
)

// adminRoutes mounts the operator write surface. Callers reach here
// only through the JWT middleware.
func (a *API) adminRoutes(r chi.Router) {
	r.Route("/tracks", func(r chi.Router) {
		r.Post("/", a.handleTrackCreate)
		r.Put("/{trackID}", a.handleTrackUpdate)
		r.Delete("/{trackID}", a.handleTrackDelete)
	})
	r.Post("/ads", a.handleAdSave)
	r.Post("/traffic", a.handleTrafficSave)
	r.Post("/voices", a.handleVoiceSave)
	r.Post("/programs", a.handleProgramSave)
	r.Delete("/programs/{programID}", a.handleProgramDelete)
	r.Post("/slots", a.handleSlotSave)
}

type trackRequest struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	MediaURL    string `json:"media_url"`
	CoverArtURL string `json:"cover_art_url"`
	Genre       string `json:"genre"`
	Mood        string `json:"mood"`
	Tempo       int    `json:"tempo"`
	DurationSec int    `json:"duration_sec"`
	ReleaseDate string `json:"release_date"`
}

func (req *trackRequest) toModel() *models.Track {
	return &models.Track{
		Title:       req.Title,
		Artist:      req.Artist,
		Album:       req.Album,
		MediaURL:    req.MediaURL,
		CoverArtURL: req.CoverArtURL,
		Genre:       req.Genre,
		Mood:        req.Mood,
		Tempo:       req.Tempo,
		Duration:    time.Duration(req.DurationSec) * time.Second,
		ReleaseDate: req.ReleaseDate,
	}
}

func (req *trackRequest) validate() string {
	if req.Title == "" || req.Artist == "" {
		return "title_and_artist_required"
	}
	if req.MediaURL == "" {
		return "media_url_required"
	}
	if req.DurationSec < 0 {
		return "invalid_duration"
	}
	return ""
}

func (a *API) handleTrackCreate(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	track := req.toModel()
	if err := a.store.CreateTrack(r.Context(), track); err != nil {
		a.logger.Error().Err(err).Msg("track create failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, track)
}

func (a *API) handleTrackUpdate(w http.ResponseWriter, r *http.Request) {
	trackID := chi.URLParam(r, "trackID")
	existing, err := a.store.Track(r.Context(), trackID)
	if err != nil {
		writeError(w, http.StatusNotFound, "track_not_found")
		return
	}

	var req trackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if code := req.validate(); code != "" {
		writeError(w, http.StatusBadRequest, code)
		return
	}

	track := req.toModel()
	track.ID = existing.ID
	if err := a.store.UpdateTrack(r.Context(), track); err != nil {
		a.logger.Error().Err(err).Msg("track update failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, track)
}

func (a *API) handleTrackDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "trackID")
	if a.broadcast != nil && a.broadcast.InRotation(id) {
		writeError(w, http.StatusConflict, "track_in_rotation")
		return
	}
	if err := a.store.DeleteTrack(r.Context(), id); err != nil {
		a.logger.Error().Err(err).Msg("track delete failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAdSave(w http.ResponseWriter, r *http.Request) {
	var ad models.Advertisement
	if err := json.NewDecoder(r.Body).Decode(&ad); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if ad.Title == "" || ad.Content == "" {
		writeError(w, http.StatusBadRequest, "title_and_content_required")
		return
	}

	if err := a.store.SaveAdvertisement(r.Context(), &ad); err != nil {
		a.logger.Error().Err(err).Msg("ad save failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, ad)
}

type trafficSaveRequest struct {
	Region  string                 `json:"region"`
	Updates []models.TrafficUpdate `json:"updates"`
}

func (a *API) handleTrafficSave(w http.ResponseWriter, r *http.Request) {
	var req trafficSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	for i := range req.Updates {
		req.Updates[i].Region = req.Region
		req.Updates[i].Active = true
	}

	if err := a.store.ReplaceTraffic(r.Context(), req.Region, req.Updates); err != nil {
		a.logger.Error().Err(err).Msg("traffic save failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"region": req.Region, "updates": len(req.Updates)})
}

func (a *API) handleVoiceSave(w http.ResponseWriter, r *http.Request) {
	var profile models.VoiceProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if profile.Name == "" || profile.VoiceID == "" {
		writeError(w, http.StatusBadRequest, "name_and_voice_id_required")
		return
	}

	if err := a.store.SaveVoiceProfile(r.Context(), &profile); err != nil {
		a.logger.Error().Err(err).Msg("voice profile save failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (a *API) handleProgramSave(w http.ResponseWriter, r *http.Request) {
	var program models.Program
	if err := json.NewDecoder(r.Body).Decode(&program); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if program.Title == "" {
		writeError(w, http.StatusBadRequest, "title_required")
		return
	}

	if err := a.store.SaveProgram(r.Context(), &program); err != nil {
		a.logger.Error().Err(err).Msg("program save failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusCreated, program)
}

func (a *API) handleProgramDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteProgram(r.Context(), chi.URLParam(r, "programID")); err != nil {
		a.logger.Error().Err(err).Msg("program delete failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleSlotSave(w http.ResponseWriter, r *http.Request) {
	var slot models.TimeSlot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if slot.ProgramID == "" || slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
		writeError(w, http.StatusBadRequest, "invalid_slot")
		return
	}
	slot.Active = true

	if err := a.store.SaveTimeSlot(r.Context(), &slot); err != nil {
		// Overlap and inverted-window rejections come back as plain
		// errors from the store; surface them as client errors.
		writeError(w, http.StatusConflict, "slot_rejected")
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}
