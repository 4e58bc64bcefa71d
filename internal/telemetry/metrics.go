/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics.
var (
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "airwave_api_request_duration_seconds",
		Help:    "HTTP request latency by method, endpoint and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airwave_api_requests_total",
		Help: "Total HTTP requests by method, endpoint and status.",
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airwave_api_active_connections",
		Help: "In-flight HTTP requests.",
	})
)

// Database metrics.
var (
	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "airwave_db_query_duration_seconds",
		Help:    "Database operation latency by operation and table.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"operation", "table"})

	DatabaseErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airwave_db_errors_total",
		Help: "Database errors by operation and kind.",
	}, []string{"operation", "kind"})

	DatabaseConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airwave_db_connections_active",
		Help: "Open database connections.",
	})
)

// Station metrics.
var (
	TracksPlayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airwave_tracks_played_total",
		Help: "Tracks handed to playback since process start.",
	})

	TracksLoopedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "airwave_tracks_looped_total",
		Help: "Tracks replayed to satisfy the minimum play duration.",
	})

	DJSegmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airwave_dj_segments_total",
		Help: "DJ speech segments by kind (intro, news, weather, traffic, ad, reply).",
	}, []string{"kind"})

	TextGenRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airwave_textgen_requests_total",
		Help: "Text generation attempts by outcome (ok, fallback).",
	}, []string{"outcome"})

	SpeechRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airwave_speech_requests_total",
		Help: "Speech synthesis attempts by outcome (ok, fallback, skipped).",
	}, []string{"outcome"})

	SpeechSynthesisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "airwave_speech_synthesis_duration_seconds",
		Help:    "Wall time spent synthesizing one speech clip.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	ListenerCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airwave_listeners",
		Help: "Current simulated listener count.",
	})

	ChatMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airwave_chat_messages_total",
		Help: "Listener chat messages by type (message, request).",
	}, []string{"type"})

	BulletinRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airwave_bulletin_runs_total",
		Help: "Bulletin worker executions by kind.",
	}, []string{"kind"})

	CacheOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "airwave_cache_operations_total",
		Help: "Cache operations by result (hit, miss, error, bypass).",
	}, []string{"result"})

	EventStreamClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "airwave_event_stream_clients",
		Help: "Connected websocket event stream clients.",
	})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
