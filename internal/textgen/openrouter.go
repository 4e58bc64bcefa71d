/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/airwavefm/airwave/internal/models"
	"github.com/airwavefm/airwave/internal/telemetry"
)

const systemPrompt = "You are an AI DJ for a radio station. Your responses should be engaging, informative, and conversational."

// OpenRouterConfig configures the chat-completions backend.
type OpenRouterConfig struct {
	Endpoint    string // e.g. https://openrouter.ai/api/v1
	APIKey      string
	Model       string
	StationName string
	Persona     string // Optional voice profile personality, appended to the system prompt
}

// OpenRouterGenerator generates copy through an OpenRouter-compatible
// chat-completions API, degrading to templates on any failure.
type OpenRouterGenerator struct {
	config    OpenRouterConfig
	client    *http.Client
	templates *TemplateGenerator
	logger    zerolog.Logger
}

var _ Generator = (*OpenRouterGenerator)(nil)

// NewOpenRouter creates the chat-completions backed generator.
func NewOpenRouter(cfg OpenRouterConfig, logger zerolog.Logger) *OpenRouterGenerator {
	if cfg.APIKey == "" {
		logger.Warn().Msg("text generation API key not set, using template copy")
	}
	return &OpenRouterGenerator{
		config: cfg,
		client: &http.Client{
			Timeout:   20 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		templates: &TemplateGenerator{StationName: cfg.StationName},
		logger:    logger.With().Str("component", "textgen").Logger(),
	}
}

// SetPersona updates the persona folded into the system prompt.
func (g *OpenRouterGenerator) SetPersona(persona string) {
	g.config.Persona = persona
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete runs one chat completion. It returns "" on any failure so
// callers fall through to templates.
func (g *OpenRouterGenerator) complete(ctx context.Context, prompt string) string {
	if g.config.APIKey == "" {
		return ""
	}

	system := systemPrompt
	if g.config.Persona != "" {
		system += " Your persona: " + g.config.Persona
	}

	body, err := json.Marshal(chatRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   150,
		Temperature: 0.7,
	})
	if err != nil {
		return ""
	}

	url := strings.TrimRight(g.config.Endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ""
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	req.Header.Set("X-Title", g.config.StationName)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn().Err(err).Msg("text generation request failed")
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.logger.Warn().
			Int("status", resp.StatusCode).
			Str("body", string(snippet)).
			Msg("text generation API error")
		return ""
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		g.logger.Warn().Err(err).Msg("text generation response decode failed")
		return ""
	}
	if len(parsed.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content)
}

// generate runs the completion and falls back to a template line.
func (g *OpenRouterGenerator) generate(ctx context.Context, prompt string, fallback func() string) string {
	if text := g.complete(ctx, prompt); text != "" {
		telemetry.TextGenRequestsTotal.WithLabelValues("ok").Inc()
		return text
	}
	telemetry.TextGenRequestsTotal.WithLabelValues("fallback").Inc()
	return fallback()
}

func (g *OpenRouterGenerator) TrackIntro(ctx context.Context, track *models.Track, previous *models.Track) string {
	return g.generate(ctx, trackIntroPrompt(track, previous), func() string {
		return g.templates.TrackIntro(ctx, track, previous)
	})
}

func (g *OpenRouterGenerator) NewsUpdate(ctx context.Context, headlines []models.NewsArticle) string {
	return g.generate(ctx, newsPrompt(headlines), func() string {
		return g.templates.NewsUpdate(ctx, headlines)
	})
}

func (g *OpenRouterGenerator) WeatherReport(ctx context.Context, forecast *models.WeatherForecast) string {
	return g.generate(ctx, weatherPrompt(forecast), func() string {
		return g.templates.WeatherReport(ctx, forecast)
	})
}

func (g *OpenRouterGenerator) TrafficReport(ctx context.Context, updates []models.TrafficUpdate) string {
	return g.generate(ctx, trafficPrompt(updates), func() string {
		return g.templates.TrafficReport(ctx, updates)
	})
}

func (g *OpenRouterGenerator) AdRead(ctx context.Context, ad *models.Advertisement) string {
	return g.generate(ctx, adPrompt(ad), func() string {
		return g.templates.AdRead(ctx, ad)
	})
}

func (g *OpenRouterGenerator) Announcement(ctx context.Context) string {
	return g.generate(ctx, announcementPrompt(), func() string {
		return g.templates.Announcement(ctx)
	})
}

func (g *OpenRouterGenerator) Welcome(ctx context.Context, stationName string) string {
	return g.generate(ctx, welcomePrompt(stationName), func() string {
		return g.templates.Welcome(ctx, stationName)
	})
}

func (g *OpenRouterGenerator) ListenerReply(ctx context.Context, message string) string {
	return g.generate(ctx, listenerReplyPrompt(message), func() string {
		return g.templates.ListenerReply(ctx, message)
	})
}
