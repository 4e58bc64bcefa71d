/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package server assembles the station: database, cache, playback
// session, bulletin scheduler, HTTP API and the event bridge.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/airwavefm/airwave/internal/api"
	"github.com/airwavefm/airwave/internal/audio"
	"github.com/airwavefm/airwave/internal/auth"
	"github.com/airwavefm/airwave/internal/bulletin"
	"github.com/airwavefm/airwave/internal/cache"
	"github.com/airwavefm/airwave/internal/chat"
	"github.com/airwavefm/airwave/internal/config"
	"github.com/airwavefm/airwave/internal/db"
	"github.com/airwavefm/airwave/internal/eventbus"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/playback"
	"github.com/airwavefm/airwave/internal/schedule"
	"github.com/airwavefm/airwave/internal/speech"
	"github.com/airwavefm/airwave/internal/storage"
	"github.com/airwavefm/airwave/internal/store"
	"github.com/airwavefm/airwave/internal/telemetry"
	"github.com/airwavefm/airwave/internal/textgen"
)

// Server wires every station component together and owns their lifecycle.
type Server struct {
	cfg    *config.Config
	logger zerolog.Logger

	router     chi.Router
	httpServer *http.Server

	database *gorm.DB
	cache    *cache.Cache
	bus      *events.Bus
	store    *store.Store
	storage  *storage.Service
	voice    *speech.ElevenLabsSynthesizer // nil when the station runs silent
	session  *playback.Session
	chat     *chat.Responder
	bulletin *bulletin.Scheduler
	guide    *schedule.Guide
	authn    *auth.Authenticator
	api      *api.API
	stream   *api.EventStream
	bridge   *eventbus.Bridge

	// closers run in reverse registration order during Close.
	closers []func() error

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New builds the full component graph and the HTTP router. The returned
// server is already running its background workers; call Close to stop
// them.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger.With().Str("component", "server").Logger(),
		router: chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeadersMiddleware)
	s.router.Use(telemetry.TracingMiddleware("airwave-api"))
	s.router.Use(telemetry.MetricsMiddleware)
	// Timeouts apply to plain API calls only; WebSocket upgrades stay open.
	s.router.Use(func(next http.Handler) http.Handler {
		timeout := middleware.Timeout(60 * time.Second)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}
			timeout(next).ServeHTTP(w, r)
		})
	})

	if err := s.initDependencies(); err != nil {
		return nil, err
	}
	s.configureRoutes()
	s.startBackgroundWorkers()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// HTTPServer exposes the configured http.Server for the caller to run.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

func (s *Server) initDependencies() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Database: the station keeps broadcasting from the built-in sample
	// catalog when the database is missing or unreachable.
	database, err := db.Connect(s.cfg)
	if err != nil {
		s.logger.Warn().Err(err).Msg("database unavailable, running on sample data")
	} else {
		if err := db.Migrate(database); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		if err := db.RegisterCallbacks(database); err != nil {
			s.logger.Warn().Err(err).Msg("database telemetry callbacks not registered")
		}
		s.database = database
		s.DeferClose(func() error { return db.Close(database) })
	}

	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = s.cfg.RedisAddr
	cacheCfg.RedisPassword = s.cfg.RedisPassword
	cacheCfg.RedisDB = s.cfg.RedisDB
	contentCache, err := cache.New(cacheCfg, s.logger)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cache unavailable, reads go straight to the database")
	} else {
		s.cache = contentCache
		s.DeferClose(contentCache.Close)
	}

	s.bus = events.NewBus()
	s.store = store.New(s.database, s.cache, s.bus, s.logger)

	clipStore, err := storage.NewService(s.cfg, s.logger)
	if err != nil {
		return fmt.Errorf("initialize clip storage: %w", err)
	}
	s.storage = clipStore

	profile, err := s.store.ActiveVoiceProfile(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("voice profile lookup failed, using defaults")
	}

	var gen textgen.Generator
	if s.cfg.TextGenAPIKey != "" {
		persona := ""
		if profile != nil {
			persona = profile.Personality
		}
		gen = textgen.NewOpenRouter(textgen.OpenRouterConfig{
			Endpoint:    s.cfg.TextGenEndpoint,
			APIKey:      s.cfg.TextGenAPIKey,
			Model:       s.cfg.TextGenModel,
			StationName: s.cfg.StationName,
			Persona:     persona,
		}, s.logger)
	} else {
		gen = &textgen.TemplateGenerator{StationName: s.cfg.StationName}
	}

	var voice speech.Synthesizer
	if s.cfg.SpeechAPIKey != "" {
		voiceID := s.cfg.SpeechVoiceID
		if profile != nil && profile.VoiceID != "" {
			voiceID = profile.VoiceID
		}
		s.voice = speech.NewElevenLabs(speech.ElevenLabsConfig{
			Endpoint:    s.cfg.SpeechEndpoint,
			APIKey:      s.cfg.SpeechAPIKey,
			VoiceID:     voiceID,
			FallbackURL: s.cfg.SpeechFallbackURL,
		}, clipStore, s.logger)
		voice = s.voice
	} else {
		// Silent station voice: intros and bulletins stay text-only.
		voice = &speech.Static{}
	}

	engine := audio.NewEngine(s.logger)

	s.session = playback.New(playback.Config{
		StationName: s.cfg.StationName,
		MinPlay:     s.cfg.MinPlayDuration(),
		Welcome:     true,
	}, s.store, gen, voice, engine, s.bus, nil, s.logger)
	if err := s.session.Initialize(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("catalog preload failed, queue fills on first play")
	}

	s.chat = chat.NewResponder(s.store, gen, voice, engine, s.bus, s.logger)
	s.session.SetChatResponder(s.chat.Respond)

	var weatherGW *bulletin.WeatherGateway
	if s.cfg.WeatherAPIKey != "" {
		weatherGW = bulletin.NewWeatherGateway(s.cfg.WeatherEndpoint, s.cfg.WeatherAPIKey, s.logger)
	}
	var newsGW *bulletin.NewsGateway
	if s.cfg.NewsAPIKey != "" {
		newsGW = bulletin.NewNewsGateway(s.cfg.NewsEndpoint, s.cfg.NewsAPIKey, s.logger)
	}
	var trafficGW *bulletin.TrafficGateway
	if s.cfg.TrafficEndpoint != "" && s.cfg.TrafficAPIKey != "" {
		trafficGW = bulletin.NewTrafficGateway(s.cfg.TrafficEndpoint, s.cfg.TrafficAPIKey, s.logger)
	}
	source := bulletin.NewSource(weatherGW, newsGW, trafficGW, s.store, s.logger)
	s.bulletin = bulletin.NewScheduler(bulletin.Config{
		Location: s.cfg.WeatherPlace,
		Region:   s.cfg.StationRegion,
	}, source, gen, voice, s.session, s.bus, nil, s.logger)

	s.guide = schedule.NewGuide(s.store, s.logger)
	if s.cfg.SeedFile != "" {
		if err := schedule.Seed(ctx, s.cfg.SeedFile, s.store, s.logger); err != nil {
			s.logger.Warn().Err(err).Str("path", s.cfg.SeedFile).Msg("programming seed failed")
		}
	}

	s.authn = auth.NewAuthenticator(s.store, []byte(s.cfg.JWTSigningKey), auth.DefaultTokenTTL)
	if s.cfg.AdminEmail != "" && s.cfg.AdminPassword != "" {
		if err := s.authn.Bootstrap(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword); err != nil {
			s.logger.Warn().Err(err).Msg("admin bootstrap failed")
		}
	}

	s.api = api.New(s.store, s.session, s.guide, s.authn, []byte(s.cfg.JWTSigningKey), s.bus, s.logger)
	s.stream = api.NewEventStream(s.bus, s.logger)

	if s.cfg.NATSURL != "" {
		bridge, err := eventbus.Connect(s.cfg.NATSURL, s.bus, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Str("url", s.cfg.NATSURL).Msg("event bridge unavailable, events stay in-process")
		} else {
			s.bridge = bridge
			s.DeferClose(func() error {
				bridge.Close()
				return nil
			})
		}
	}

	return nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Method(http.MethodGet, "/metrics", telemetry.Handler())

	s.router.Group(func(r chi.Router) {
		r.Use(auth.Middleware([]byte(s.cfg.JWTSigningKey)))
		r.Get("/ws/events", s.stream.HandleWebSocket)
	})

	// Synthesized clips are served straight off disk for the filesystem
	// backend; S3 clips carry their own public URLs.
	if s.cfg.S3Bucket == "" {
		fs := http.StripPrefix("/media/", http.FileServer(http.Dir(s.cfg.MediaRoot)))
		s.router.Get("/media/*", fs.ServeHTTP)
	}

	s.api.Routes(s.router)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "unavailable"
	if s.database != nil {
		dbStatus = "ok"
	}
	cacheStatus := "unavailable"
	if s.cache != nil && s.cache.IsAvailable() {
		cacheStatus = "ok"
	}
	bridgeStatus := "disabled"
	if s.bridge != nil {
		bridgeStatus = "disconnected"
		if s.bridge.Healthy() {
			bridgeStatus = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":%q,"database":%q,"cache":%q,"event_bridge":%q}`,
		status, dbStatus, cacheStatus, bridgeStatus)
}

func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		if err := s.session.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("playback director stopped")
		}
	}()

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		if err := s.bulletin.Run(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("bulletin scheduler stopped")
		}
	}()

	if s.bridge != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			if err := s.bridge.Run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error().Err(err).Msg("event bridge stopped")
			}
		}()
	}

	if s.voice != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			s.watchVoiceUpdates(ctx)
		}()
	}

	if s.database != nil {
		s.bgWG.Add(1)
		go func() {
			defer s.bgWG.Done()
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					db.UpdateConnectionMetrics(s.database)
				}
			}
		}()
	}
}

// watchVoiceUpdates switches the DJ voice live when an operator saves
// a new active profile, without restarting the station.
func (s *Server) watchVoiceUpdates(ctx context.Context) {
	sub := s.bus.Subscribe(events.EventVoiceUpdated)
	defer s.bus.Unsubscribe(events.EventVoiceUpdated, sub)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub:
			profile, err := s.store.ActiveVoiceProfile(ctx)
			if err != nil || profile == nil || profile.VoiceID == "" {
				continue
			}
			s.voice.SetVoice(profile.VoiceID)
			s.logger.Info().Str("voice_id", profile.VoiceID).Msg("DJ voice switched")
		}
	}
}

func (s *Server) stopBackgroundWorkers() {
	if s.bgCancel != nil {
		s.bgCancel()
	}

	done := make(chan struct{})
	go func() {
		s.bgWG.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		s.logger.Warn().Msg("background workers did not stop in time")
	}
}

// DeferClose registers a cleanup function to run during Close.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close stops background workers and releases resources in reverse
// registration order.
func (s *Server) Close() error {
	s.stopBackgroundWorkers()

	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; base-uri 'self'")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}
