/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package playback

import "github.com/airwavefm/airwave/internal/models"

// queue is the FIFO of upcoming tracks. The current track is never a
// member; it is popped out before playback starts.
type queue struct {
	items []models.Track
}

func (q *queue) Len() int { return len(q.items) }

func (q *queue) Empty() bool { return len(q.items) == 0 }

// Append adds tracks to the tail. No dedup: refills take whatever the
// store has.
func (q *queue) Append(tracks ...models.Track) {
	q.items = append(q.items, tracks...)
}

// PushFront puts a track at the head, used when backward navigation
// displaces the current track.
func (q *queue) PushFront(track models.Track) {
	q.items = append([]models.Track{track}, q.items...)
}

// Pop removes and returns the head.
func (q *queue) Pop() (models.Track, bool) {
	if len(q.items) == 0 {
		return models.Track{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

// Contains reports whether a track ID is queued.
func (q *queue) Contains(id string) bool {
	for _, t := range q.items {
		if t.ID == id {
			return true
		}
	}
	return false
}

// Snapshot copies the queued tracks.
func (q *queue) Snapshot() []models.Track {
	out := make([]models.Track, len(q.items))
	copy(out, q.items)
	return out
}

// stack holds played tracks for backward navigation.
type stack struct {
	items []models.Track
}

func (s *stack) Len() int { return len(s.items) }

func (s *stack) Push(track models.Track) {
	s.items = append(s.items, track)
}

func (s *stack) Pop() (models.Track, bool) {
	if len(s.items) == 0 {
		return models.Track{}, false
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, true
}
