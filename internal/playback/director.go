/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playback

import (
	"context"
	"math/rand"
	"time"

	"github.com/airwavefm/airwave/internal/audio"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/telemetry"
)

const listenerStatsInterval = 30 * time.Second

// Run is the director loop. It watches the active track handle and
// applies the advance policy on completion: tracks that end before the
// minimum play duration replay in place, and if the replay fails the
// director waits out the remainder before advancing. Manual stops
// never auto-advance. Run blocks until ctx is canceled.
func (s *Session) Run(ctx context.Context) error {
	stats := time.NewTicker(listenerStatsInterval)
	defer stats.Stop()
	s.publishListeners()

	var h *audio.Handle
	for {
		var done <-chan audio.Outcome
		if h != nil {
			done = h.Done()
		}

		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()

		case next := <-s.started:
			h = next

		case <-stats.C:
			s.driftListeners()
			s.publishListeners()

		case outcome := <-done:
			h = s.onTrackComplete(ctx, h, outcome)
		}
	}
}

// onTrackComplete applies the advance policy to a finished track.
// Returns the handle the director should keep watching, or nil when
// the track is done with (a later started signal delivers the next
// handle).
func (s *Session) onTrackComplete(ctx context.Context, h *audio.Handle, outcome audio.Outcome) *audio.Handle {
	switch outcome.Cause {
	case audio.CauseStopped:
		// Listener hit pause or a skip released the handle.
		return nil

	case audio.CauseError:
		s.logger.Warn().Err(outcome.Err).Msg("track errored, advancing")
		s.advance(ctx)
		return nil
	}

	// Natural end. Short plays loop in place so the station never
	// machine-guns through a playlist of stingers.
	s.mu.Lock()
	elapsed := s.clock.Now().Sub(s.trackStart)
	minPlay := s.cfg.MinPlay
	s.mu.Unlock()

	if minPlay > 0 && elapsed < minPlay {
		if err := h.Play(); err == nil {
			s.mu.Lock()
			s.looped = true
			s.mu.Unlock()
			telemetry.TracksLoopedTotal.Inc()
			s.logger.Debug().Dur("elapsed", elapsed).Msg("track ended early, looping")
			return h
		}

		// Replay failed. Hold the slot until the minimum elapses,
		// then advance no matter what.
		remainder := minPlay - elapsed
		s.logger.Debug().Dur("remainder", remainder).Msg("replay failed, waiting out minimum")
		wait := make(chan struct{})
		timer := s.clock.AfterFunc(remainder, func() { close(wait) })
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-wait:
		}
	}

	s.advance(ctx)
	return nil
}

// advance runs NextTrack off the director's critical path; errors are
// surfaced through session state, not the loop.
func (s *Session) advance(ctx context.Context) {
	if err := s.NextTrack(ctx); err != nil {
		s.logger.Error().Err(err).Msg("auto-advance failed")
	}
}

func (s *Session) shutdown() {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.state = StateIdle
	s.playing = false
	s.mu.Unlock()
	if h != nil {
		h.Release()
	}
}

// driftListeners nudges the simulated audience by up to ±100, clamped
// to the 1000..4000 band the station reports.
func (s *Session) driftListeners() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners += randDrift()
	if s.listeners < 1000 {
		s.listeners = 1000
	}
	if s.listeners > 4000 {
		s.listeners = 4000
	}
}

func randDrift() int {
	return rand.Intn(201) - 100
}

func (s *Session) publishListeners() {
	s.mu.Lock()
	count := s.listeners
	s.mu.Unlock()

	telemetry.ListenerCount.Set(float64(count))
	if s.bus != nil {
		s.bus.Publish(events.EventListenerStats, events.Payload{"count": count})
	}
}
