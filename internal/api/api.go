/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package api exposes the station over HTTP: listener-facing state,
// playback intents, chat, feed and guide endpoints, plus the JWT-gated
// admin write surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/auth"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/playback"
	"github.com/airwavefm/airwave/internal/schedule"
	"github.com/airwavefm/airwave/internal/store"
)

const (
	defaultFeedLimit    = 20
	defaultHistoryLimit = 20
	maxListLimit        = 100
)

// Broadcast is the playback surface the API drives.
type Broadcast interface {
	TogglePlayPause(ctx context.Context) error
	NextTrack(ctx context.Context) error
	PreviousTrack(ctx context.Context) error
	AddUserMessage(ctx context.Context, message string) string
	InRotation(id string) bool
	Snapshot() playback.Status
}

// API exposes HTTP handlers.
type API struct {
	store     *store.Store
	broadcast Broadcast
	guide     *schedule.Guide
	authn     *auth.Authenticator
	jwtSecret []byte
	bus       *events.Bus
	logger    zerolog.Logger
}

// New creates the API router wrapper.
func New(st *store.Store, broadcast Broadcast, guide *schedule.Guide, authn *auth.Authenticator,
	jwtSecret []byte, bus *events.Bus, logger zerolog.Logger) *API {

	return &API{
		store:     st,
		broadcast: broadcast,
		guide:     guide,
		authn:     authn,
		jwtSecret: jwtSecret,
		bus:       bus,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Routes mounts API routes on the provided router.
func (a *API) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", a.handleHealth)

		// Listener-facing endpoints (no auth required)
		r.Get("/state", a.handleState)
		r.Get("/queue", a.handleQueue)
		r.Get("/feed", a.handleFeed)
		r.Get("/history", a.handleHistory)

		r.Post("/intent/play", a.handleIntentPlay)
		r.Post("/intent/next", a.handleIntentNext)
		r.Post("/intent/previous", a.handleIntentPrevious)
		r.Post("/chat", a.handleChat)

		r.Get("/schedule", a.handleScheduleDay)
		r.Get("/schedule/now", a.handleScheduleNow)

		r.Get("/tracks", a.handleTracksList)
		r.Get("/weather", a.handleWeather)
		r.Get("/traffic", a.handleTraffic)
		r.Get("/news", a.handleNews)
		r.Get("/ads", a.handleAds)

		r.Post("/auth/login", a.handleLogin)

		// Operator writes
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware(a.jwtSecret))
			pr.Route("/admin", a.adminRoutes)
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.broadcast.Snapshot())
}

func (a *API) handleQueue(w http.ResponseWriter, r *http.Request) {
	st := a.broadcast.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"current": st.CurrentTrack,
		"queue":   st.Queue,
	})
}

func (a *API) handleFeed(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, defaultFeedLimit)

	feed := a.broadcast.Snapshot().Feed
	if len(feed) == 0 {
		// Fresh process: fall back to the persisted feed.
		stored, err := a.store.RecentContentItems(r.Context(), limit)
		if err == nil {
			feed = stored
		}
	}
	if len(feed) > limit {
		feed = feed[:limit]
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": feed})
}

func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	plays, err := a.store.RecentPlays(r.Context(), queryLimit(r, defaultHistoryLimit))
	if err != nil {
		a.logger.Error().Err(err).Msg("history query failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plays": plays})
}

func (a *API) handleIntentPlay(w http.ResponseWriter, r *http.Request) {
	if err := a.broadcast.TogglePlayPause(r.Context()); err != nil {
		a.logger.Warn().Err(err).Msg("play intent failed")
		writeError(w, http.StatusConflict, "playback_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, a.broadcast.Snapshot())
}

func (a *API) handleIntentNext(w http.ResponseWriter, r *http.Request) {
	if err := a.broadcast.NextTrack(r.Context()); err != nil {
		a.logger.Warn().Err(err).Msg("next intent failed")
		writeError(w, http.StatusConflict, "playback_unavailable")
		return
	}
	// A dropped request (advance already in flight) also lands here;
	// the returned snapshot tells the client what actually happened.
	writeJSON(w, http.StatusOK, a.broadcast.Snapshot())
}

func (a *API) handleIntentPrevious(w http.ResponseWriter, r *http.Request) {
	if err := a.broadcast.PreviousTrack(r.Context()); err != nil {
		a.logger.Warn().Err(err).Msg("previous intent failed")
		writeError(w, http.StatusConflict, "playback_unavailable")
		return
	}
	writeJSON(w, http.StatusOK, a.broadcast.Snapshot())
}

func (a *API) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message_required")
		return
	}
	if len(req.Message) > 500 {
		writeError(w, http.StatusBadRequest, "message_too_long")
		return
	}

	response := a.broadcast.AddUserMessage(r.Context(), req.Message)
	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (a *API) handleScheduleDay(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	day := int(now.Weekday())
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed > 6 {
			writeError(w, http.StatusBadRequest, "invalid_day")
			return
		}
		day = parsed
	}

	entries, err := a.guide.Day(r.Context(), day, now)
	if err != nil {
		a.logger.Error().Err(err).Msg("schedule query failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"day": day, "entries": entries})
}

func (a *API) handleScheduleNow(w http.ResponseWriter, r *http.Request) {
	current, err := a.guide.Current(r.Context(), time.Now())
	if err != nil {
		a.logger.Error().Err(err).Msg("current program query failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (a *API) handleTracksList(w http.ResponseWriter, r *http.Request) {
	tracks, err := a.store.FetchTracks(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("track list failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tracks": tracks})
}

func (a *API) handleWeather(w http.ResponseWriter, r *http.Request) {
	forecast, err := a.store.FetchWeather(r.Context(), r.URL.Query().Get("location"))
	if err != nil {
		a.logger.Error().Err(err).Msg("weather query failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func (a *API) handleTraffic(w http.ResponseWriter, r *http.Request) {
	updates, err := a.store.FetchTraffic(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		a.logger.Error().Err(err).Msg("traffic query failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updates": updates})
}

func (a *API) handleNews(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "general"
	}
	articles, err := a.store.FetchNews(r.Context(), category, queryLimit(r, 10))
	if err != nil {
		a.logger.Error().Err(err).Msg("news query failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

func (a *API) handleAds(w http.ResponseWriter, r *http.Request) {
	ads, err := a.store.FetchAds(r.Context())
	if err != nil {
		a.logger.Error().Err(err).Msg("ad list failed")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ads": ads})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	token, err := a.authn.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials")
			return
		}
		a.logger.Error().Err(err).Msg("login failed")
		writeError(w, http.StatusInternalServerError, "auth_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func queryLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return fallback
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
