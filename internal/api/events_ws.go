/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	ws "nhooyr.io/websocket"

	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/telemetry"
)

// streamedEvents is what listeners see over the WebSocket.
var streamedEvents = []events.EventType{
	events.EventNowPlaying,
	events.EventDJSpeaking,
	events.EventStateChange,
	events.EventContentItem,
	events.EventListenerStats,
	events.EventChatResponse,
	events.EventHealth,
	events.EventBulletinWeather,
	events.EventBulletinTraffic,
	events.EventBulletinNews,
	events.EventBulletinAd,
}

// EventStream pushes bus events to WebSocket clients.
type EventStream struct {
	bus    *events.Bus
	logger zerolog.Logger
}

func NewEventStream(bus *events.Bus, logger zerolog.Logger) *EventStream {
	return &EventStream{
		bus:    bus,
		logger: logger.With().Str("component", "event_stream").Logger(),
	}
}

type streamMessage struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      events.Payload `json:"data,omitempty"`
}

// HandleWebSocket upgrades the connection and relays events until the
// client goes away.
func (s *EventStream) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.Accept(w, r, &ws.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.Close(ws.StatusInternalError, "server error")

	telemetry.EventStreamClients.Inc()
	defer telemetry.EventStreamClients.Dec()

	ctx := r.Context()
	merged := make(chan streamMessage, 32)

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, eventType := range streamedEvents {
		sub := s.bus.Subscribe(eventType)
		go func(eventType events.EventType, sub events.Subscriber) {
			defer s.bus.Unsubscribe(eventType, sub)
			for {
				select {
				case <-subCtx.Done():
					return
				case payload, ok := <-sub:
					if !ok {
						return
					}
					select {
					case merged <- streamMessage{
						Type:      string(eventType),
						Timestamp: time.Now(),
						Data:      payload,
					}:
					default:
						// Slow client, drop rather than stall the bus.
					}
				}
			}
		}(eventType, sub)
	}

	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("event stream connected")

	for {
		select {
		case <-ctx.Done():
			conn.Close(ws.StatusNormalClosure, "")
			return
		case msg := <-merged:
			raw, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, 10*time.Second)
			err = conn.Write(writeCtx, ws.MessageText, raw)
			writeCancel()
			if err != nil {
				s.logger.Debug().Err(err).Msg("event stream client gone")
				return
			}
		}
	}
}
