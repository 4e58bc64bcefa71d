/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package schedule resolves the weekly program guide: what's on air
// now, how far through it is, and what follows.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/cache"
	"github.com/airwavefm/airwave/internal/models"
)

// GuideStore is the store slice the guide needs.
type GuideStore interface {
	Schedule(ctx context.Context, dayOfWeek int) ([]cache.CachedSlot, error)
	CurrentProgram(ctx context.Context, now time.Time) (*models.Program, error)
}

// Entry is one resolved guide row.
type Entry struct {
	Slot    models.TimeSlot `json:"slot"`
	Program models.Program  `json:"program"`
	OnAir   bool            `json:"on_air"`
}

// NowPlaying describes the current slot with its progress.
type NowPlaying struct {
	Program     models.Program  `json:"program"`
	Slot        models.TimeSlot `json:"slot"`
	ProgressPct float64         `json:"progress_pct"`
	Next        *models.Program `json:"next,omitempty"`
}

// Guide answers program-guide queries against the store.
type Guide struct {
	store  GuideStore
	logger zerolog.Logger
}

func NewGuide(store GuideStore, logger zerolog.Logger) *Guide {
	return &Guide{store: store, logger: logger.With().Str("component", "schedule").Logger()}
}

// Day returns the guide for one weekday, sorted by start time, with
// the on-air slot flagged when the day is today.
func (g *Guide) Day(ctx context.Context, dayOfWeek int, now time.Time) ([]Entry, error) {
	slots, err := g.store.Schedule(ctx, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("guide day %d: %w", dayOfWeek, err)
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Slot.StartTime < slots[j].Slot.StartTime
	})

	hhmm := now.Format("15:04")
	today := int(now.Weekday()) == dayOfWeek

	entries := make([]Entry, 0, len(slots))
	for _, s := range slots {
		entries = append(entries, Entry{
			Slot:    s.Slot,
			Program: s.Program,
			OnAir:   today && inWindow(s.Slot, hhmm),
		})
	}
	return entries, nil
}

// Current resolves the slot on air at now, with progress through the
// window and the program that follows it today.
func (g *Guide) Current(ctx context.Context, now time.Time) (*NowPlaying, error) {
	slots, err := g.store.Schedule(ctx, int(now.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("guide current: %w", err)
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Slot.StartTime < slots[j].Slot.StartTime
	})

	hhmm := now.Format("15:04")
	for i, s := range slots {
		if !inWindow(s.Slot, hhmm) {
			continue
		}

		current := &NowPlaying{
			Program:     s.Program,
			Slot:        s.Slot,
			ProgressPct: progress(s.Slot, now),
		}
		if i+1 < len(slots) {
			next := slots[i+1].Program
			current.Next = &next
		}
		return current, nil
	}

	// Off-grid time falls back to the store's default programming.
	program, err := g.store.CurrentProgram(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("guide current: %w", err)
	}
	return &NowPlaying{Program: *program}, nil
}

func inWindow(slot models.TimeSlot, hhmm string) bool {
	return slot.StartTime <= hhmm && hhmm < slot.EndTime
}

// progress returns how far now sits inside the slot window, 0-100.
func progress(slot models.TimeSlot, now time.Time) float64 {
	start, okStart := minutesOfDay(slot.StartTime)
	end, okEnd := minutesOfDay(slot.EndTime)
	if !okStart || !okEnd || end <= start {
		return 0
	}

	at := now.Hour()*60 + now.Minute()
	if at <= start {
		return 0
	}
	if at >= end {
		return 100
	}
	return float64(at-start) / float64(end-start) * 100
}

func minutesOfDay(hhmm string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
