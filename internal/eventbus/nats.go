/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package eventbus bridges the in-process event bus onto NATS so other
// station services (widgets, archival, external dashboards) can follow
// the broadcast without holding an HTTP connection open.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/events"
)

const (
	subjectPrefix  = "airwave.events."
	connectTimeout = 5 * time.Second
)

// relayedEvents is the set of event types worth broadcasting beyond
// the process. Cache invalidation stays local.
var relayedEvents = []events.EventType{
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

// Bridge relays local bus events to NATS subjects.
type Bridge struct {
	conn   *nats.Conn
	bus    *events.Bus
	logger zerolog.Logger
	subs   []events.Subscriber
	done   chan struct{}
}

// Connect dials NATS and wires the relay. The bridge is optional: the
// caller skips it entirely when no URL is configured.
func Connect(url string, bus *events.Bus, logger zerolog.Logger) (*Bridge, error) {
	conn, err := nats.Connect(url,
		nats.Name("airwave"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	b := &Bridge{
		conn:   conn,
		bus:    bus,
		logger: logger.With().Str("component", "eventbus").Logger(),
		done:   make(chan struct{}),
	}
	b.logger.Info().Str("url", url).Msg("connected to NATS")
	return b, nil
}

// Run relays events until ctx is canceled.
func (b *Bridge) Run(ctx context.Context) error {
	for _, eventType := range relayedEvents {
		sub := b.bus.Subscribe(eventType)
		b.subs = append(b.subs, sub)
		go b.relay(ctx, eventType, sub)
	}

	<-ctx.Done()
	close(b.done)
	for i, eventType := range relayedEvents {
		b.bus.Unsubscribe(eventType, b.subs[i])
	}
	return ctx.Err()
}

func (b *Bridge) relay(ctx context.Context, eventType events.EventType, sub events.Subscriber) {
	subject := subjectPrefix + string(eventType)
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-sub:
			if !ok {
				return
			}
			raw, err := json.Marshal(payload)
			if err != nil {
				b.logger.Warn().Err(err).Str("subject", subject).Msg("event marshal failed")
				continue
			}
			if err := b.conn.Publish(subject, raw); err != nil {
				b.logger.Warn().Err(err).Str("subject", subject).Msg("event relay failed")
			}
		}
	}
}

// Healthy reports whether the NATS connection is up.
func (b *Bridge) Healthy() bool {
	return b != nil && b.conn != nil && b.conn.Status() == nats.CONNECTED
}

// Close drains and closes the connection.
func (b *Bridge) Close() {
	if b == nil || b.conn == nil {
		return
	}
	b.logger.Info().Msg("closing NATS connection")
	_ = b.conn.Drain()
	b.conn.Close()
}
