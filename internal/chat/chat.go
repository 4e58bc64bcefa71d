/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package chat handles listener messages: the DJ acknowledges every
// message on air, no matter how the text or speech backends are
// feeling. Responses are persisted next to the message they answer.
package chat

import (
	"context"
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

// apologyReply covers the case where even the template layer yields
// nothing; the listener always hears something back.
const apologyReply = "Thanks for your message! We're having a little trouble in the studio right now, but keep those messages coming!"

// MessageStore is the slice of the store the responder needs.
type MessageStore interface {
	SaveUserMessage(ctx context.Context, msg *models.UserMessage) error
	MarkMessageProcessed(ctx context.Context, id, response string) error
}

// Responder turns listener messages into on-air DJ replies.
type Responder struct {
	store  MessageStore
	gen    textgen.Generator
	voice  speech.Synthesizer
	engine *audio.Engine
	bus    *events.Bus
	logger zerolog.Logger

	mu       sync.Mutex
	speaking bool
}

func NewResponder(store MessageStore, gen textgen.Generator, voice speech.Synthesizer,
	engine *audio.Engine, bus *events.Bus, logger zerolog.Logger) *Responder {

	return &Responder{
		store:  store,
		gen:    gen,
		voice:  voice,
		engine: engine,
		bus:    bus,
		logger: logger.With().Str("component", "chat").Logger(),
	}
}

// Respond records the message, produces the DJ's reply and voices it
// when a clip can be had. It never fails: a broken backend degrades to
// a canned apology so the listener is always acknowledged.
func (r *Responder) Respond(ctx context.Context, message string) string {
	msg := &models.UserMessage{
		Type:    classify(message),
		Content: message,
	}
	if err := r.store.SaveUserMessage(ctx, msg); err != nil {
		r.logger.Warn().Err(err).Msg("message write failed")
	}
	telemetry.ChatMessagesTotal.WithLabelValues(string(msg.Type)).Inc()

	reply := r.gen.ListenerReply(ctx, message)
	if strings.TrimSpace(reply) == "" {
		reply = apologyReply
	}

	if err := r.store.MarkMessageProcessed(ctx, msg.ID, reply); err != nil {
		r.logger.Warn().Err(err).Msg("response write failed")
	}

	if r.bus != nil {
		r.bus.Publish(events.EventChatResponse, events.Payload{
			"message":  message,
			"response": reply,
			"type":     string(msg.Type),
		})
	}

	if url := r.voice.Synthesize(ctx, reply, "chat"); url != "" {
		r.speakAsync(url, reply)
	}
	return reply
}

// Speaking reports whether a chat reply clip is currently on air.
func (r *Responder) Speaking() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speaking
}

// publishSpeaking mirrors the speaking flag onto the bus so clients
// can tell a chat reply apart from the session DJ's own segments.
func (r *Responder) publishSpeaking(speaking bool) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(events.EventDJSpeaking, events.Payload{
		"speaking": speaking,
		"source":   "chat",
	})
}

// speakAsync plays the reply clip off the request path. Overlapping
// replies are dropped rather than queued; the next message gets the
// mic instead.
func (r *Responder) speakAsync(url, text string) {
	r.mu.Lock()
	if r.speaking {
		r.mu.Unlock()
		r.logger.Debug().Msg("reply clip dropped, DJ already speaking")
		return
	}
	r.speaking = true
	r.mu.Unlock()
	r.publishSpeaking(true)

	go func() {
		defer func() {
			r.mu.Lock()
			r.speaking = false
			r.mu.Unlock()
			r.publishSpeaking(false)
		}()

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		h, err := r.engine.Bind(ctx, url, clipDuration(text))
		if err != nil {
			r.logger.Debug().Err(err).Msg("reply clip bind failed")
			return
		}
		defer h.Release()
		if err := h.Play(); err != nil {
			return
		}
		select {
		case <-ctx.Done():
		case <-h.Done():
		}
	}()
}

// classify flags likely song requests so the programming side can pick
// them up later.
func classify(message string) models.UserMessageType {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "play ") || strings.Contains(lower, "request") {
		return models.MessageRequest
	}
	return models.MessageChat
}

func clipDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	d := time.Duration(float64(words)/2.5*float64(time.Second)) + time.Second
	if d < 3*time.Second {
		d = 3 * time.Second
	}
	return d
}
