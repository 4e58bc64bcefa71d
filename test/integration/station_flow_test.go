/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

//go:build integration

// Package integration runs the station end to end against an in-memory
// database: seed a catalog, start the broadcast over HTTP, talk to the
// DJ and push an operator write through the admin API.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/airwavefm/airwave/internal/api"
	"github.com/airwavefm/airwave/internal/audio"
	"github.com/airwavefm/airwave/internal/auth"
	"github.com/airwavefm/airwave/internal/chat"
	"github.com/airwavefm/airwave/internal/db"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/models"
	"github.com/airwavefm/airwave/internal/playback"
	"github.com/airwavefm/airwave/internal/schedule"
	"github.com/airwavefm/airwave/internal/speech"
	"github.com/airwavefm/airwave/internal/store"
	"github.com/airwavefm/airwave/internal/textgen"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func seedCatalog(t *testing.T, st *store.Store) {
	t.Helper()

	for i := 1; i <= 3; i++ {
		track := &models.Track{
			Title:    fmt.Sprintf("Track %d", i),
			Artist:   "Integration Artist",
			MediaURL: fmt.Sprintf("https://media.example.com/t%d.mp3", i),
			Duration: 3 * time.Minute,
		}
		if err := st.CreateTrack(context.Background(), track); err != nil {
			t.Fatalf("seed track %d: %v", i, err)
		}
	}
}

func TestStationFlow(t *testing.T) {
	logger := zerolog.Nop()
	database := setupTestDB(t)
	bus := events.NewBus()
	st := store.New(database, nil, bus, logger)
	seedCatalog(t, st)

	fc := audio.NewFakeClock(time.Now())
	engine := audio.NewEngine(logger, audio.WithClock(fc))
	gen := &textgen.TemplateGenerator{StationName: "Integration FM"}
	voice := &speech.Static{}

	sess := playback.New(playback.Config{
		StationName: "Integration FM",
		MinPlay:     30 * time.Second,
	}, st, gen, voice, engine, bus, fc, logger)
	if err := sess.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize session: %v", err)
	}

	responder := chat.NewResponder(st, gen, voice, engine, bus, logger)
	sess.SetChatResponder(responder.Respond)

	secret := []byte("integration-secret")
	authn := auth.NewAuthenticator(st, secret, auth.DefaultTokenTTL)
	if err := authn.Bootstrap(context.Background(), "ops@example.com", "opening-night"); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}

	guide := schedule.NewGuide(st, logger)
	a := api.New(st, sess, guide, authn, secret, bus, logger)

	r := chi.NewRouter()
	a.Routes(r)
	server := httptest.NewServer(r)
	defer server.Close()

	// Start the broadcast.
	resp, err := http.Post(server.URL+"/api/v1/intent/play", "application/json", nil)
	if err != nil {
		t.Fatalf("play intent: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("play intent status=%d, want 200", resp.StatusCode)
	}

	var state struct {
		IsPlaying    bool `json:"is_playing"`
		CurrentTrack *struct {
			Title string
		} `json:"current_track"`
		Queue []json.RawMessage `json:"queue"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !state.IsPlaying {
		t.Fatalf("expected broadcast to be playing")
	}
	if state.CurrentTrack == nil {
		t.Fatalf("expected a current track")
	}
	if len(state.Queue) != 2 {
		t.Fatalf("queue length=%d, want 2", len(state.Queue))
	}

	// Talk to the DJ.
	body, _ := json.Marshal(map[string]string{"message": "play something upbeat"})
	resp, err = http.Post(server.URL+"/api/v1/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status=%d, want 200", resp.StatusCode)
	}
	var chatResp map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		t.Fatalf("decode chat response: %v", err)
	}
	if chatResp["response"] == "" {
		t.Fatalf("expected a DJ response")
	}

	// Operator login and a catalog write.
	body, _ = json.Marshal(map[string]string{"email": "ops@example.com", "password": "opening-night"})
	resp, err = http.Post(server.URL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status=%d, want 200", resp.StatusCode)
	}
	var login map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login["token"] == "" {
		t.Fatalf("expected a token")
	}

	body, _ = json.Marshal(map[string]any{
		"title":        "Late Addition",
		"artist":       "Integration Artist",
		"media_url":    "https://media.example.com/late.mp3",
		"duration_sec": 240,
	})
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/v1/admin/tracks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+login["token"])
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create track: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create track status=%d, want 201", resp.StatusCode)
	}

	// The new track lands in the public catalog.
	resp, err = http.Get(server.URL + "/api/v1/tracks")
	if err != nil {
		t.Fatalf("list tracks: %v", err)
	}
	defer resp.Body.Close()
	var catalog struct {
		Tracks []models.Track `json:"tracks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if len(catalog.Tracks) != 4 {
		t.Fatalf("catalog size=%d, want 4", len(catalog.Tracks))
	}
	found := false
	for _, track := range catalog.Tracks {
		if track.Title == "Late Addition" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Late Addition in the catalog")
	}
}
