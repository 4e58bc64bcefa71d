/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package eventbus

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/events"
)

func TestConnectFailsFastWithoutServer(t *testing.T) {
	_, err := Connect("nats://127.0.0.1:1", events.NewBus(), zerolog.Nop())
	if err == nil {
		t.Fatal("Connect() to unreachable server returned nil error")
	}
}

func TestNilBridgeIsSafe(t *testing.T) {
	var b *Bridge
	if b.Healthy() {
		t.Error("nil bridge reports healthy")
	}
	b.Close()
}
