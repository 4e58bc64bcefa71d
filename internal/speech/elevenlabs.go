/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/airwavefm/airwave/internal/storage"
	"github.com/airwavefm/airwave/internal/telemetry"
)

// DefaultFallbackClipURL plays when synthesis fails and no custom
// fallback is configured.
const DefaultFallbackClipURL = "https://assets.mixkit.co/sfx/preview/mixkit-simple-countdown-922.mp3"

// ElevenLabsConfig configures the text-to-speech backend.
type ElevenLabsConfig struct {
	Endpoint    string // e.g. https://api.elevenlabs.io/v1
	APIKey      string
	VoiceID     string
	FallbackURL string // Defaults to DefaultFallbackClipURL
}

// ElevenLabsSynthesizer renders clips through the ElevenLabs API and
// persists them to clip storage.
type ElevenLabsSynthesizer struct {
	config  ElevenLabsConfig
	client  *http.Client
	storage *storage.Service
	logger  zerolog.Logger

	mu      sync.RWMutex
	voiceID string
}

var _ Synthesizer = (*ElevenLabsSynthesizer)(nil)

// NewElevenLabs creates the ElevenLabs-backed synthesizer.
func NewElevenLabs(cfg ElevenLabsConfig, store *storage.Service, logger zerolog.Logger) *ElevenLabsSynthesizer {
	if cfg.FallbackURL == "" {
		cfg.FallbackURL = DefaultFallbackClipURL
	}
	if cfg.APIKey == "" {
		logger.Warn().Msg("speech API key not set, DJ segments will be text-only")
	}
	return &ElevenLabsSynthesizer{
		config:  cfg,
		client:  &http.Client{Timeout: 30 * time.Second, Transport: otelhttp.NewTransport(http.DefaultTransport)},
		storage: store,
		logger:  logger.With().Str("component", "speech").Logger(),
		voiceID: cfg.VoiceID,
	}
}

// SetVoice switches the synthesis voice. Safe to call while clips are
// being rendered; in-flight requests finish on the old voice.
func (s *ElevenLabsSynthesizer) SetVoice(voiceID string) {
	if voiceID == "" {
		return
	}
	s.mu.Lock()
	s.voiceID = voiceID
	s.mu.Unlock()
}

// Voice returns the active synthesis voice ID.
func (s *ElevenLabsSynthesizer) Voice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voiceID
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize renders the text to a stored clip and returns its URL.
// Missing credentials return "" (skip speech); any failure after that
// returns the fallback clip so the handoff still has audio.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text, kind string) string {
	if s.config.APIKey == "" || s.Voice() == "" {
		telemetry.SpeechRequestsTotal.WithLabelValues("skipped").Inc()
		return ""
	}

	start := time.Now()
	url := s.synthesize(ctx, text, kind)
	telemetry.SpeechSynthesisDuration.Observe(time.Since(start).Seconds())

	if url == "" {
		telemetry.SpeechRequestsTotal.WithLabelValues("fallback").Inc()
		return s.config.FallbackURL
	}
	telemetry.SpeechRequestsTotal.WithLabelValues("ok").Inc()
	return url
}

func (s *ElevenLabsSynthesizer) synthesize(ctx context.Context, text, kind string) string {
	body, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return ""
	}

	endpoint := strings.TrimRight(s.config.Endpoint, "/") + "/text-to-speech/" + s.Voice()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("speech synthesis request failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		s.logger.Warn().
			Int("status", resp.StatusCode).
			Str("kind", kind).
			Str("body", string(snippet)).
			Msg("speech synthesis API error")
		return ""
	}

	clipID := uuid.NewString()
	path, err := s.storage.Store(ctx, kind, clipID, resp.Body)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("storing synthesized clip failed")
		return ""
	}

	return s.storage.URL(path)
}
