/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package events is the station's in-process pubsub. Publishing never
// blocks: a subscriber that cannot keep up misses events.
package events

import "sync"

// EventType enumerates event categories.
type EventType string

const (
	EventNowPlaying    EventType = "now_playing"
	EventDJSpeaking    EventType = "dj_speaking"
	EventStateChange   EventType = "state_change"
	EventContentItem   EventType = "content_item"
	EventListenerStats EventType = "listener_stats"
	EventChatResponse  EventType = "chat_response"
	EventHealth        EventType = "health"

	// Bulletin events
	EventBulletinWeather EventType = "bulletin.weather"
	EventBulletinTraffic EventType = "bulletin.traffic"
	EventBulletinNews    EventType = "bulletin.news"
	EventBulletinAd      EventType = "bulletin.ad"

	// Cache invalidation events
	EventTrackUpdated    EventType = "cache.track_updated"
	EventTrackDeleted    EventType = "cache.track_deleted"
	EventProgramUpdated  EventType = "cache.program_updated"
	EventProgramDeleted  EventType = "cache.program_deleted"
	EventVoiceUpdated    EventType = "cache.voice_updated"
	EventScheduleUpdated EventType = "cache.schedule_updated"
)

// Payload generic event payload.
type Payload map[string]any

// Subscriber receives event payloads.
type Subscriber chan Payload

// Bus routes payloads to subscribers by event type.
type Bus struct {
	mu   sync.RWMutex
	subs map[EventType]map[Subscriber]struct{}
}

// NewBus creates an event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[EventType]map[Subscriber]struct{})}
}

// Subscribe registers a buffered subscriber channel for the event type.
func (b *Bus) Subscribe(eventType EventType) Subscriber {
	ch := make(Subscriber, 8)
	b.mu.Lock()
	if b.subs[eventType] == nil {
		b.subs[eventType] = make(map[Subscriber]struct{})
	}
	b.subs[eventType][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Publish delivers payload to every subscriber of the event type
// without blocking.
func (b *Bus) Publish(eventType EventType, payload Payload) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[eventType] {
		select {
		case sub <- payload:
		default:
		}
	}
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus) Unsubscribe(eventType EventType, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[eventType]; ok {
		if _, member := set[sub]; member {
			delete(set, sub)
			close(sub)
		}
	}
}
