/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package playback is the station's orchestration core. A Session owns
// the authoritative broadcast state (current track, queue, history,
// DJ-speaking) and drives the advance sequence: pick the next track,
// generate and speak a DJ intro, then hand the media to the audio
// layer. The director loop in director.go advances on each track's
// completion signal.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/audio"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/models"
	"github.com/airwavefm/airwave/internal/speech"
	"github.com/airwavefm/airwave/internal/telemetry"
	"github.com/airwavefm/airwave/internal/textgen"
)

// State is the session's orchestration state.
type State int

const (
	StateIdle State = iota
	StateAdvancing
	StateIntroSpeaking
	StateTrackPlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAdvancing:
		return "advancing"
	case StateIntroSpeaking:
		return "intro_speaking"
	case StateTrackPlaying:
		return "track_playing"
	default:
		return "unknown"
	}
}

// ContentSource is the slice of the store the session needs.
type ContentSource interface {
	FetchTracks(ctx context.Context) ([]models.Track, error)
	SaveContentItem(ctx context.Context, item *models.ContentItem) error
	SavePlayHistory(ctx context.Context, entry *models.PlayHistory) error
}

// Config tunes session behavior.
type Config struct {
	StationName string
	MinPlay     time.Duration // Tracks ending earlier than this loop in place
	FeedLimit   int           // In-memory activity feed cap
	Welcome     bool          // Speak a welcome sequence on first play
}

const (
	defaultFeedLimit = 50
	fallbackDuration = 3 * time.Minute // Tracks with unknown length
)

// Session is the playback orchestrator. Construct with New; all
// collaborators are injected, nothing is global.
type Session struct {
	cfg    Config
	store  ContentSource
	gen    textgen.Generator
	voice  speech.Synthesizer
	engine *audio.Engine
	bus    *events.Bus
	clock  audio.Clock
	logger zerolog.Logger

	// started hands fresh media handles to the director loop.
	started chan *audio.Handle

	mu         sync.Mutex
	state      State
	current    *models.Track
	queue      queue
	history    stack
	playing    bool
	djSpeaking bool
	lastError  string
	welcomed   bool
	feed       []models.ContentItem
	handle     *audio.Handle
	trackStart time.Time
	looped     bool
	listeners  int

	chatRespond func(ctx context.Context, message string) string
}

// New creates a session. clock may be nil for wall time.
func New(cfg Config, store ContentSource, gen textgen.Generator, voice speech.Synthesizer,
	engine *audio.Engine, bus *events.Bus, clock audio.Clock, logger zerolog.Logger) *Session {

	if cfg.FeedLimit <= 0 {
		cfg.FeedLimit = defaultFeedLimit
	}
	if clock == nil {
		clock = audio.RealClock{}
	}

	return &Session{
		cfg:       cfg,
		store:     store,
		gen:       gen,
		voice:     voice,
		engine:    engine,
		bus:       bus,
		clock:     clock,
		logger:    logger.With().Str("component", "playback").Logger(),
		started:   make(chan *audio.Handle, 4),
		listeners: 1000 + rand.Intn(3001),
	}
}

// SetChatResponder wires the chat side-channel used by AddUserMessage.
func (s *Session) SetChatResponder(fn func(ctx context.Context, message string) string) {
	s.chatRespond = fn
}

// Initialize loads the initial queue. On store failure the session
// stays Idle with the error surfaced for the UI; a later play attempt
// retries.
func (s *Session) Initialize(ctx context.Context) error {
	tracks, err := s.store.FetchTracks(ctx)
	if err != nil {
		s.setError(fmt.Sprintf("could not load tracks: %v", err))
		return fmt.Errorf("initialize: %w", err)
	}
	if len(tracks) == 0 {
		s.setError("no tracks available")
		return errors.New("initialize: store returned no tracks")
	}

	s.mu.Lock()
	s.queue.Append(tracks...)
	s.lastError = ""
	queued := s.queue.Len()
	s.mu.Unlock()

	s.logger.Info().Int("queued", queued).Msg("initial queue loaded")
	return nil
}

// TogglePlayPause flips playback. From Idle it starts the broadcast,
// including the one-time welcome sequence.
func (s *Session) TogglePlayPause(ctx context.Context) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return s.startBroadcast(ctx)
	}

	if s.playing {
		s.playing = false
		h := s.handle
		s.mu.Unlock()
		if h != nil {
			h.Pause()
		}
		s.publishState()
		return nil
	}

	s.playing = true
	h := s.handle
	s.mu.Unlock()

	if h != nil {
		if err := h.Play(); err != nil {
			s.logger.Warn().Err(err).Msg("resume failed, advancing instead")
			return s.NextTrack(ctx)
		}
	}
	s.publishState()
	return nil
}

// startBroadcast runs the first-play path: optional welcome sequence,
// then the first advance.
func (s *Session) startBroadcast(ctx context.Context) error {
	s.mu.Lock()
	speakWelcome := s.cfg.Welcome && !s.welcomed
	s.welcomed = true
	s.mu.Unlock()

	if speakWelcome {
		text := s.gen.Welcome(ctx, s.cfg.StationName)
		s.appendContentItem(ctx, models.ContentItem{
			Type:    models.ContentAnnouncement,
			Content: text,
		})
		if url := s.voice.Synthesize(ctx, text, "welcome"); url != "" {
			s.setDJSpeaking(true)
			s.speak(ctx, url, speechDuration(text))
			s.setDJSpeaking(false)
		}
		telemetry.DJSegmentsTotal.WithLabelValues("welcome").Inc()
	}

	return s.NextTrack(ctx)
}

// NextTrack runs the advance sequence. Re-entrant calls while an
// advance or intro is in flight are dropped silently; the caller
// re-issues intent if it still wants the skip.
func (s *Session) NextTrack(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateAdvancing || s.state == StateIntroSpeaking {
		s.mu.Unlock()
		s.logger.Debug().Msg("advance already in flight, request dropped")
		return nil
	}
	s.state = StateAdvancing
	oldHandle := s.handle
	s.handle = nil
	prev := s.current
	prevStart := s.trackStart
	prevLooped := s.looped
	s.mu.Unlock()

	s.publishState()

	if oldHandle != nil {
		oldHandle.Release()
	}
	if prev != nil {
		s.recordPlay(ctx, prev, prevStart, prevLooped)
	}

	// Refill only when empty, no dedup against history.
	s.mu.Lock()
	needRefill := s.queue.Empty()
	s.mu.Unlock()
	if needRefill {
		tracks, err := s.store.FetchTracks(ctx)
		if err != nil {
			s.setError(fmt.Sprintf("could not load tracks: %v", err))
			return fmt.Errorf("advance: refill: %w", err)
		}
		s.mu.Lock()
		s.queue.Append(tracks...)
		s.mu.Unlock()
	}

	s.mu.Lock()
	next, ok := s.queue.Pop()
	if !ok {
		s.mu.Unlock()
		s.setError("no tracks available")
		return errors.New("advance: queue empty after refill")
	}
	if prev != nil {
		s.history.Push(*prev)
	}
	s.current = &next
	s.playing = true
	s.djSpeaking = true
	s.lastError = ""
	s.mu.Unlock()

	intro := s.gen.TrackIntro(ctx, &next, prev)
	s.appendContentItem(ctx, models.ContentItem{
		Type:           models.ContentAnnouncement,
		Content:        intro,
		Title:          next.Title,
		Artist:         next.Artist,
		RelatedTrackID: next.ID,
	})
	telemetry.DJSegmentsTotal.WithLabelValues("intro").Inc()

	if url := s.voice.Synthesize(ctx, intro, "intro"); url != "" {
		s.speak(ctx, url, speechDuration(intro))
	}

	s.mu.Lock()
	s.djSpeaking = false
	s.mu.Unlock()
	s.publishDJSpeaking(false)

	return s.startCurrent(ctx)
}

// PreviousTrack pops history into the current slot. No intro plays on
// the way back; the displaced track returns to the queue head.
func (s *Session) PreviousTrack(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateAdvancing || s.state == StateIntroSpeaking {
		s.mu.Unlock()
		s.logger.Debug().Msg("advance in flight, previous dropped")
		return nil
	}
	last, ok := s.history.Pop()
	if !ok {
		s.mu.Unlock()
		return nil
	}
	s.state = StateAdvancing
	oldHandle := s.handle
	s.handle = nil
	if s.current != nil {
		s.queue.PushFront(*s.current)
	}
	s.current = &last
	s.playing = true
	s.mu.Unlock()

	if oldHandle != nil {
		oldHandle.Release()
	}

	return s.startCurrent(ctx)
}

// speak plays one DJ clip to completion. Every terminal outcome counts
// as "finished speaking"; a failed bind or play just skips the clip.
func (s *Session) speak(ctx context.Context, url string, duration time.Duration) {
	h, err := s.engine.Bind(ctx, url, duration)
	if err != nil {
		s.logger.Debug().Err(err).Str("url", url).Msg("speech clip bind failed, skipping")
		return
	}
	defer h.Release()

	s.mu.Lock()
	prior := s.state
	s.state = StateIntroSpeaking
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.state == StateIntroSpeaking {
			s.state = prior
		}
		s.mu.Unlock()
	}()
	s.publishDJSpeaking(true)

	if err := h.Play(); err != nil {
		return
	}

	select {
	case <-ctx.Done():
	case <-h.Done():
	}
}

// startCurrent binds and plays the current track's media and hands the
// handle to the director loop.
func (s *Session) startCurrent(ctx context.Context) error {
	s.mu.Lock()
	current := s.current
	s.mu.Unlock()
	if current == nil {
		return nil
	}

	duration := current.Duration
	if duration <= 0 {
		duration = fallbackDuration
	}

	h, err := s.engine.Bind(ctx, current.MediaURL, duration)
	if err == nil {
		err = h.Play()
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("track", current.Title).Msg("track playback failed")
		s.setError(fmt.Sprintf("could not play %q: %v", current.Title, err))
		return fmt.Errorf("start track: %w", err)
	}

	s.mu.Lock()
	s.handle = h
	s.state = StateTrackPlaying
	s.trackStart = s.clock.Now()
	s.looped = false
	s.mu.Unlock()

	telemetry.TracksPlayedTotal.Inc()
	s.publishNowPlaying(current)

	select {
	case s.started <- h:
	default:
		s.logger.Warn().Msg("director busy, started signal dropped")
	}
	return nil
}

// AddUserMessage records a listener message and hands it to the chat
// side-channel. The DJ response text is returned; failures degrade to
// an apology inside the responder, never an error here.
func (s *Session) AddUserMessage(ctx context.Context, message string) string {
	s.appendContentItem(ctx, models.ContentItem{
		Type:    models.ContentMessage,
		Content: message,
	})

	if s.chatRespond == nil {
		return ""
	}
	return s.chatRespond(ctx, message)
}

// SaveContentItem lands an externally produced item (weather, news,
// traffic, sponsor spots) on the live feed alongside the session's own
// announcements.
func (s *Session) SaveContentItem(ctx context.Context, item *models.ContentItem) error {
	s.appendContentItem(ctx, *item)
	return nil
}

func (s *Session) recordPlay(ctx context.Context, track *models.Track, startedAt time.Time, looped bool) {
	if startedAt.IsZero() {
		return
	}
	entry := &models.PlayHistory{
		TrackID:   track.ID,
		Title:     track.Title,
		Artist:    track.Artist,
		StartedAt: startedAt,
		EndedAt:   s.clock.Now(),
		Looped:    looped,
	}
	if err := s.store.SavePlayHistory(ctx, entry); err != nil {
		s.logger.Debug().Err(err).Msg("play history write failed")
	}
}

// appendContentItem prepends to the in-memory feed and persists the
// entry fire-and-forget.
func (s *Session) appendContentItem(ctx context.Context, item models.ContentItem) {
	if item.Timestamp.IsZero() {
		item.Timestamp = s.clock.Now()
	}

	if err := s.store.SaveContentItem(ctx, &item); err != nil {
		s.logger.Debug().Err(err).Msg("content item write failed")
	}

	s.mu.Lock()
	s.feed = append([]models.ContentItem{item}, s.feed...)
	if len(s.feed) > s.cfg.FeedLimit {
		s.feed = s.feed[:s.cfg.FeedLimit]
	}
	s.mu.Unlock()
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.state = StateIdle
	s.playing = false
	s.lastError = msg
	s.mu.Unlock()
	s.publishState()
	if s.bus != nil {
		s.bus.Publish(events.EventHealth, events.Payload{
			"component": "playback",
			"status":    "degraded",
			"error":     msg,
		})
	}
}

func (s *Session) setDJSpeaking(speaking bool) {
	s.mu.Lock()
	s.djSpeaking = speaking
	s.mu.Unlock()
	s.publishDJSpeaking(speaking)
}

// Status is a point-in-time copy of session state for the API layer.
type Status struct {
	State         string               `json:"state"`
	CurrentTrack  *models.Track        `json:"current_track"`
	Queue         []models.Track       `json:"queue"`
	HistoryDepth  int                  `json:"history_depth"`
	IsPlaying     bool                 `json:"is_playing"`
	IsDJSpeaking  bool                 `json:"is_dj_speaking"`
	ListenerCount int                  `json:"listener_count"`
	Position      time.Duration        `json:"position_ns"`
	Error         string               `json:"error,omitempty"`
	Feed          []models.ContentItem `json:"feed"`
}

// InRotation reports whether the track is on air or queued to play.
func (s *Session) InRotation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID == id {
		return true
	}
	return s.queue.Contains(id)
}

// Snapshot returns the session state for UI consumption.
func (s *Session) Snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current *models.Track
	if s.current != nil {
		c := *s.current
		current = &c
	}

	var position time.Duration
	if s.handle != nil {
		position = s.handle.Position()
	}

	feed := make([]models.ContentItem, len(s.feed))
	copy(feed, s.feed)

	return Status{
		State:         s.state.String(),
		CurrentTrack:  current,
		Queue:         s.queue.Snapshot(),
		HistoryDepth:  s.history.Len(),
		IsPlaying:     s.playing,
		IsDJSpeaking:  s.djSpeaking,
		ListenerCount: s.listeners,
		Position:      position,
		Error:         s.lastError,
		Feed:          feed,
	}
}

// Event publishing.

func (s *Session) publishState() {
	if s.bus == nil {
		return
	}
	s.mu.Lock()
	payload := events.Payload{
		"state":      s.state.String(),
		"is_playing": s.playing,
	}
	if s.lastError != "" {
		payload["error"] = s.lastError
	}
	s.mu.Unlock()
	s.bus.Publish(events.EventStateChange, payload)
}

func (s *Session) publishDJSpeaking(speaking bool) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.EventDJSpeaking, events.Payload{
		"speaking": speaking,
		"source":   "session",
	})
}

func (s *Session) publishNowPlaying(track *models.Track) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.EventNowPlaying, events.Payload{
		"track_id":  track.ID,
		"title":     track.Title,
		"artist":    track.Artist,
		"cover_art": track.CoverArtURL,
		"duration":  track.Duration.Seconds(),
	})
}

// speechDuration estimates clip length from the script, roughly 2.5
// words per second with a floor for very short lines.
func speechDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	d := time.Duration(float64(words)/2.5*float64(time.Second)) + time.Second
	if d < 3*time.Second {
		d = 3 * time.Second
	}
	return d
}
