/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/audio"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/models"
	"github.com/airwavefm/airwave/internal/speech"
	"github.com/airwavefm/airwave/internal/textgen"
)

type fakeMessages struct {
	mu        sync.Mutex
	saved     []models.UserMessage
	responses map[string]string
	saveErr   error
}

func (f *fakeMessages) SaveUserMessage(ctx context.Context, msg *models.UserMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if msg.ID == "" {
		msg.ID = "msg-1"
	}
	f.saved = append(f.saved, *msg)
	return nil
}

func (f *fakeMessages) MarkMessageProcessed(ctx context.Context, id, response string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.responses == nil {
		f.responses = make(map[string]string)
	}
	f.responses[id] = response
	return nil
}

func testResponder(store MessageStore, voice speech.Synthesizer) *Responder {
	fc := audio.NewFakeClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	engine := audio.NewEngine(zerolog.Nop(), audio.WithClock(fc))
	return NewResponder(store, &textgen.TemplateGenerator{StationName: "Airwave FM"},
		voice, engine, events.NewBus(), zerolog.Nop())
}

func TestRespondPersistsMessageAndReply(t *testing.T) {
	fm := &fakeMessages{}
	r := testResponder(fm, &speech.Static{})

	reply := r.Respond(context.Background(), "loving the show today!")
	if reply == "" {
		t.Fatal("Respond() returned empty reply")
	}

	fm.mu.Lock()
	defer fm.mu.Unlock()
	if len(fm.saved) != 1 {
		t.Fatalf("saved %d messages, want 1", len(fm.saved))
	}
	if fm.saved[0].Type != models.MessageChat {
		t.Errorf("type = %q, want chat", fm.saved[0].Type)
	}
	if fm.responses[fm.saved[0].ID] != reply {
		t.Errorf("stored response = %q, want %q", fm.responses[fm.saved[0].ID], reply)
	}
}

func TestRespondClassifiesSongRequests(t *testing.T) {
	fm := &fakeMessages{}
	r := testResponder(fm, &speech.Static{})

	r.Respond(context.Background(), "Can you play some jazz next?")

	fm.mu.Lock()
	defer fm.mu.Unlock()
	if fm.saved[0].Type != models.MessageRequest {
		t.Errorf("type = %q, want request", fm.saved[0].Type)
	}
}

func TestRespondSurvivesStoreFailure(t *testing.T) {
	fm := &fakeMessages{saveErr: errors.New("disk full")}
	r := testResponder(fm, &speech.Static{})

	if reply := r.Respond(context.Background(), "hello"); reply == "" {
		t.Error("Respond() returned empty reply on store failure")
	}
}

func TestRespondPublishesChatEvent(t *testing.T) {
	fm := &fakeMessages{}
	bus := events.NewBus()
	sub := bus.Subscribe(events.EventChatResponse)

	fc := audio.NewFakeClock(time.Now())
	engine := audio.NewEngine(zerolog.Nop(), audio.WithClock(fc))
	r := NewResponder(fm, &textgen.TemplateGenerator{}, &speech.Static{}, engine, bus, zerolog.Nop())

	reply := r.Respond(context.Background(), "what's this song?")

	select {
	case payload := <-sub:
		if payload["response"] != reply {
			t.Errorf("event response = %v, want %q", payload["response"], reply)
		}
	case <-time.After(time.Second):
		t.Fatal("no chat_response event published")
	}
}

func TestOverlappingRepliesAreDropped(t *testing.T) {
	fm := &fakeMessages{}
	r := testResponder(fm, &speech.Static{ClipURL: "https://media.test/reply.mp3"})

	r.Respond(context.Background(), "first message here")
	if !r.Speaking() {
		t.Fatal("Speaking() = false right after a voiced reply")
	}

	// Second reply while the first clip plays: accepted and persisted,
	// but no second clip queued.
	r.Respond(context.Background(), "second message here")

	fm.mu.Lock()
	saved := len(fm.saved)
	fm.mu.Unlock()
	if saved != 2 {
		t.Errorf("saved %d messages, want 2", saved)
	}
}

func TestVoicedReplyPublishesSpeakingEvents(t *testing.T) {
	fm := &fakeMessages{}
	bus := events.NewBus()
	sub := bus.Subscribe(events.EventDJSpeaking)

	fc := audio.NewFakeClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	engine := audio.NewEngine(zerolog.Nop(), audio.WithClock(fc))
	r := NewResponder(fm, &textgen.TemplateGenerator{StationName: "Airwave FM"},
		&speech.Static{ClipURL: "https://media.test/reply.mp3"}, engine, bus, zerolog.Nop())

	r.Respond(context.Background(), "shoutout to the night shift")

	select {
	case payload := <-sub:
		if payload["speaking"] != true || payload["source"] != "chat" {
			t.Errorf("start payload = %v, want speaking=true source=chat", payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no speaking=true event for the reply clip")
	}

	// Run the clip out; the goroutine clears the flag and mirrors it.
	deadline := time.Now().Add(2 * time.Second)
	for {
		fc.Advance(10 * time.Second)
		select {
		case payload := <-sub:
			if payload["speaking"] != false || payload["source"] != "chat" {
				t.Errorf("end payload = %v, want speaking=false source=chat", payload)
			}
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("no speaking=false event after the reply clip ended")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
