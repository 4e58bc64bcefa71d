/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package speech turns DJ copy into playable audio clips. Synthesis is
// best-effort: without credentials it opts out entirely, and a backend
// failure yields the configured fallback clip instead of an error.
package speech

import (
	"context"
)

// Synthesizer renders text to a hosted audio clip.
//
// The returned URL is "" when synthesis is unavailable, which callers
// treat as "announce in text only". Implementations never return errors;
// a failed render resolves to a fallback clip URL (possibly also "").
type Synthesizer interface {
	Synthesize(ctx context.Context, text, kind string) string
}

// Static returns a fixed URL for every request. Useful in tests and as
// a silence backend.
type Static struct {
	ClipURL string
}

var _ Synthesizer = (*Static)(nil)

func (s *Static) Synthesize(ctx context.Context, text, kind string) string {
	return s.ClipURL
}
