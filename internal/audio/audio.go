/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package audio simulates a playout element for remote audio assets.
// The station has no local sound device: a bound handle tracks a
// clip's playhead against the clock and reports completion on a
// channel, which is what the playback director sequences on.
package audio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is a handle's lifecycle position.
type State int

const (
	StateLoading State = iota
	StateReady
	StatePlaying
	StateEnded
	StateErrored
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StateEnded:
		return "ended"
	case StateErrored:
		return "errored"
	case StateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// Cause explains why a play completed.
type Cause int

const (
	CauseEnded Cause = iota // Playhead reached the clip duration
	CauseStopped
	CauseError
)

// Outcome is delivered on the handle's Done channel once per play.
type Outcome struct {
	Cause     Cause
	PlayedFor time.Duration
	Err       error
}

var (
	ErrEmptyURL     = errors.New("audio: empty media URL")
	ErrInvalidState = errors.New("audio: invalid state transition")
	ErrReleased     = errors.New("audio: handle released")
)

// Engine binds media URLs into playable handles and carries the
// station's output settings. Volume and mute are process-wide and
// orthogonal: mute silences the output without touching the level,
// and both survive across binds.
type Engine struct {
	clock  Clock
	probe  *http.Client // nil disables URL probing
	logger zerolog.Logger

	mu     sync.Mutex
	volume float64
	muted  bool
	bound  map[*Handle]struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock swaps the engine clock, used by tests.
func WithClock(clock Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithProbe enables a HEAD request on Bind to catch dead URLs early.
func WithProbe(client *http.Client) Option {
	return func(e *Engine) { e.probe = client }
}

// NewEngine creates an audio engine.
func NewEngine(logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		clock:  RealClock{},
		logger: logger.With().Str("component", "audio").Logger(),
		volume: 1.0,
		bound:  make(map[*Handle]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetVolume sets the output level, clamped to [0, 1]. The level applies
// to every bound handle and to handles bound later; with nothing bound
// only the stored setting changes.
func (e *Engine) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	e.mu.Lock()
	e.volume = level
	muted := e.muted
	handles := make([]*Handle, 0, len(e.bound))
	for h := range e.bound {
		handles = append(handles, h)
	}
	e.mu.Unlock()

	for _, h := range handles {
		h.setGain(level, muted)
	}
	e.logger.Debug().Float64("volume", level).Msg("output level set")
}

// SetMuted silences or restores the output. The stored volume is kept,
// so unmuting returns to the previous level.
func (e *Engine) SetMuted(muted bool) {
	e.mu.Lock()
	e.muted = muted
	volume := e.volume
	handles := make([]*Handle, 0, len(e.bound))
	for h := range e.bound {
		handles = append(handles, h)
	}
	e.mu.Unlock()

	for _, h := range handles {
		h.setGain(volume, muted)
	}
	e.logger.Debug().Bool("muted", muted).Msg("mute set")
}

// Volume returns the stored output level.
func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// Muted reports whether the output is muted.
func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

func (e *Engine) unbind(h *Handle) {
	e.mu.Lock()
	delete(e.bound, h)
	e.mu.Unlock()
}

// Handle is one bound clip. All methods are safe for concurrent use.
type Handle struct {
	url      string
	duration time.Duration
	clock    Clock
	engine   *Engine
	logger   zerolog.Logger

	mu        sync.Mutex
	state     State
	playStart time.Time
	played    time.Duration // Play time of the finished segment
	timer     Timer
	done      chan Outcome
	volume    float64
	muted     bool
}

// Bind loads a media URL and returns a ready handle. The duration is
// the clip length the playhead runs against.
func (e *Engine) Bind(ctx context.Context, url string, duration time.Duration) (*Handle, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	if duration <= 0 {
		return nil, fmt.Errorf("audio: non-positive duration %v", duration)
	}

	if e.probe != nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return nil, fmt.Errorf("audio: probe request: %w", err)
		}
		resp, err := e.probe.Do(req)
		if err != nil {
			return nil, fmt.Errorf("audio: probe %s: %w", url, err)
		}
		resp.Body.Close()
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("audio: probe %s: status %d", url, resp.StatusCode)
		}
	}

	e.mu.Lock()
	h := &Handle{
		url:      url,
		duration: duration,
		clock:    e.clock,
		engine:   e,
		logger:   e.logger,
		state:    StateReady,
		done:     make(chan Outcome, 4),
		volume:   e.volume,
		muted:    e.muted,
	}
	e.bound[h] = struct{}{}
	e.mu.Unlock()

	e.logger.Debug().Str("url", url).Dur("duration", duration).Msg("media bound")
	return h, nil
}

// URL returns the bound media URL.
func (h *Handle) URL() string { return h.url }

// Duration returns the clip length.
func (h *Handle) Duration() time.Duration { return h.duration }

// Done delivers one Outcome per play.
func (h *Handle) Done() <-chan Outcome { return h.done }

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Gain returns the clip's effective output level, zero when muted.
func (h *Handle) Gain() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.muted {
		return 0
	}
	return h.volume
}

func (h *Handle) setGain(volume float64, muted bool) {
	h.mu.Lock()
	h.volume = volume
	h.muted = muted
	h.mu.Unlock()
}

// Position returns the playhead offset within the current or last play.
func (h *Handle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StatePlaying {
		return h.clock.Now().Sub(h.playStart)
	}
	return h.played
}

// Play starts the playhead. From Ready it resumes at the paused offset,
// from Ended it replays the clip from the start.
func (h *Handle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case StateReady:
		if h.played >= h.duration {
			h.played = 0
		}
	case StateEnded:
		h.played = 0
	case StateReleased:
		return ErrReleased
	default:
		return fmt.Errorf("%w: play from %s", ErrInvalidState, h.state)
	}

	h.state = StatePlaying
	h.playStart = h.clock.Now()
	h.timer = h.clock.AfterFunc(h.duration-h.played, h.onElapsed)
	return nil
}

// Pause halts the playhead keeping its offset, so a later Play resumes
// where it left off. Pausing a non-playing handle is a no-op.
func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != StatePlaying {
		return
	}
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.played += h.clock.Now().Sub(h.playStart)
	h.state = StateReady
}

// onElapsed fires when the playhead reaches the clip duration.
func (h *Handle) onElapsed() {
	h.complete(CauseEnded, nil)
}

// Stop halts playback and delivers a CauseStopped outcome. Stopping a
// handle that is not playing is a no-op.
func (h *Handle) Stop() {
	h.complete(CauseStopped, nil)
}

// Fail aborts playback with an error outcome.
func (h *Handle) Fail(err error) {
	h.complete(CauseError, err)
}

func (h *Handle) complete(cause Cause, err error) {
	h.mu.Lock()
	if h.state != StatePlaying {
		h.mu.Unlock()
		return
	}

	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}

	h.played += h.clock.Now().Sub(h.playStart)
	if cause == CauseEnded && h.played > h.duration {
		h.played = h.duration
	}

	switch cause {
	case CauseError:
		h.state = StateErrored
	default:
		h.state = StateEnded
	}

	outcome := Outcome{Cause: cause, PlayedFor: h.played, Err: err}
	h.mu.Unlock()

	select {
	case h.done <- outcome:
	default:
		h.logger.Warn().Str("url", h.url).Msg("completion dropped, done channel full")
	}
}

// Release stops playback and frees the handle. Any waiter receives a
// stopped outcome, and later calls on the handle fail.
func (h *Handle) Release() {
	h.Stop()

	h.mu.Lock()
	if h.state == StateReleased {
		h.mu.Unlock()
		return
	}
	h.state = StateReleased
	h.mu.Unlock()

	h.engine.unbind(h)
}
