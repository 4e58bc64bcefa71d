/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package bulletin runs the station's periodic programming: weather,
// traffic during commute hours, an hourly news bulletin and sponsor
// rotation. Each run resolves fresh data, scripts it, synthesizes a
// clip when possible and lands in the content feed plus the event bus.
package bulletin

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/audio"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/models"
	"github.com/airwavefm/airwave/internal/speech"
	"github.com/airwavefm/airwave/internal/telemetry"
	"github.com/airwavefm/airwave/internal/textgen"
)

// Config tunes bulletin cadence. Zero values take the broadcast
// defaults below.
type Config struct {
	Location     string
	Region       string
	NewsCategory string

	WeatherInitial  time.Duration // First weather update after start
	WeatherInterval time.Duration
	TrafficInterval time.Duration // Commute-window checks
	NewsInitial     time.Duration
	NewsInterval    time.Duration
	AdInterval      time.Duration
	AdCooldown      time.Duration // Minimum spacing between sponsor spots
}

const (
	defaultWeatherInitial  = 5 * time.Minute
	defaultWeatherInterval = 30 * time.Minute
	defaultTrafficInterval = 15 * time.Minute
	defaultNewsInitial     = 15 * time.Minute
	defaultNewsInterval    = time.Hour
	defaultAdInterval      = 10 * time.Minute
	defaultAdCooldown      = 5 * time.Minute

	newsHeadlineLimit = 3
)

func (c *Config) applyDefaults() {
	if c.NewsCategory == "" {
		c.NewsCategory = "general"
	}
	if c.WeatherInitial <= 0 {
		c.WeatherInitial = defaultWeatherInitial
	}
	if c.WeatherInterval <= 0 {
		c.WeatherInterval = defaultWeatherInterval
	}
	if c.TrafficInterval <= 0 {
		c.TrafficInterval = defaultTrafficInterval
	}
	if c.NewsInitial <= 0 {
		c.NewsInitial = defaultNewsInitial
	}
	if c.NewsInterval <= 0 {
		c.NewsInterval = defaultNewsInterval
	}
	if c.AdInterval <= 0 {
		c.AdInterval = defaultAdInterval
	}
	if c.AdCooldown <= 0 {
		c.AdCooldown = defaultAdCooldown
	}
}

// ContentSink receives finished bulletins.
type ContentSink interface {
	SaveContentItem(ctx context.Context, item *models.ContentItem) error
}

// Scheduler drives the bulletin timers.
type Scheduler struct {
	cfg    Config
	source *Source
	gen    textgen.Generator
	voice  speech.Synthesizer
	sink   ContentSink
	bus    *events.Bus
	clock  audio.Clock
	logger zerolog.Logger

	adIndex int
	lastAd  time.Time
}

func NewScheduler(cfg Config, source *Source, gen textgen.Generator, voice speech.Synthesizer,
	sink ContentSink, bus *events.Bus, clock audio.Clock, logger zerolog.Logger) *Scheduler {

	cfg.applyDefaults()
	if clock == nil {
		clock = audio.RealClock{}
	}
	return &Scheduler{
		cfg:    cfg,
		source: source,
		gen:    gen,
		voice:  voice,
		sink:   sink,
		bus:    bus,
		clock:  clock,
		logger: logger.With().Str("component", "bulletin").Logger(),
	}
}

// Run blocks until ctx is canceled, firing bulletins on their
// schedules. Traffic gets an immediate commute-window check on start,
// matching drive-time expectations.
func (s *Scheduler) Run(ctx context.Context) error {
	weatherInitial := time.NewTimer(s.cfg.WeatherInitial)
	defer weatherInitial.Stop()
	weatherTick := time.NewTicker(s.cfg.WeatherInterval)
	defer weatherTick.Stop()
	trafficTick := time.NewTicker(s.cfg.TrafficInterval)
	defer trafficTick.Stop()
	newsInitial := time.NewTimer(s.cfg.NewsInitial)
	defer newsInitial.Stop()
	newsTick := time.NewTicker(s.cfg.NewsInterval)
	defer newsTick.Stop()
	adTick := time.NewTicker(s.cfg.AdInterval)
	defer adTick.Stop()

	s.RunTraffic(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-weatherInitial.C:
			s.RunWeather(ctx)
		case <-weatherTick.C:
			s.RunWeather(ctx)
		case <-trafficTick.C:
			s.RunTraffic(ctx)
		case <-newsInitial.C:
			s.RunNews(ctx)
		case <-newsTick.C:
			s.RunNews(ctx)
		case <-adTick.C:
			s.RunAd(ctx)
		}
	}
}

// RunWeather produces one weather bulletin.
func (s *Scheduler) RunWeather(ctx context.Context) {
	forecast, err := s.source.Weather(ctx, s.cfg.Location)
	if err != nil || forecast == nil {
		s.logger.Warn().Err(err).Msg("weather bulletin skipped, no data")
		return
	}

	script := s.gen.WeatherReport(ctx, forecast)
	clip := s.voice.Synthesize(ctx, script, "weather")
	s.publish(ctx, "weather", events.EventBulletinWeather, models.ContentItem{
		Type:    models.ContentNews,
		Title:   "Weather Update",
		Content: script,
	}, events.Payload{
		"script":    script,
		"clip_url":  clip,
		"location":  forecast.Location,
		"condition": forecast.Condition,
		"temp_c":    forecast.TemperatureC,
	})
}

// RunTraffic produces a traffic bulletin when inside a commute window
// (07:00-09:59 and 16:00-18:59 local) and incidents exist.
func (s *Scheduler) RunTraffic(ctx context.Context) {
	if !commuteWindow(s.clock.Now()) {
		return
	}

	updates, err := s.source.Traffic(ctx, s.cfg.Region)
	if err != nil {
		s.logger.Warn().Err(err).Msg("traffic bulletin skipped")
		return
	}
	if len(updates) == 0 {
		s.logger.Debug().Msg("no traffic incidents, bulletin skipped")
		return
	}

	script := s.gen.TrafficReport(ctx, updates)
	clip := s.voice.Synthesize(ctx, script, "traffic")
	s.publish(ctx, "traffic", events.EventBulletinTraffic, models.ContentItem{
		Type:    models.ContentNews,
		Title:   "Traffic Update",
		Content: script,
	}, events.Payload{
		"script":    script,
		"clip_url":  clip,
		"region":    s.cfg.Region,
		"incidents": len(updates),
	})
}

// RunNews produces one news bulletin from the freshest headlines.
func (s *Scheduler) RunNews(ctx context.Context) {
	headlines, err := s.source.News(ctx, s.cfg.NewsCategory, newsHeadlineLimit)
	if err != nil || len(headlines) == 0 {
		s.logger.Warn().Err(err).Msg("news bulletin skipped, no headlines")
		return
	}

	script := s.gen.NewsUpdate(ctx, headlines)
	clip := s.voice.Synthesize(ctx, script, "news")
	s.publish(ctx, "news", events.EventBulletinNews, models.ContentItem{
		Type:    models.ContentNews,
		Title:   "News Bulletin",
		Content: script,
	}, events.Payload{
		"script":   script,
		"clip_url": clip,
		"category": s.cfg.NewsCategory,
		"headline": headlines[0].Title,
	})
}

// RunAd rotates to the next sponsor spot, respecting the cooldown.
// Spots with pre-produced audio keep it; the rest get a DJ read.
func (s *Scheduler) RunAd(ctx context.Context) {
	now := s.clock.Now()
	if !s.lastAd.IsZero() && now.Sub(s.lastAd) < s.cfg.AdCooldown {
		return
	}

	ads, err := s.source.Ads(ctx)
	if err != nil || len(ads) == 0 {
		return
	}

	ad := ads[s.adIndex%len(ads)]
	s.adIndex++
	s.lastAd = now

	script := s.gen.AdRead(ctx, &ad)
	clip := ad.AudioURL
	if clip == "" {
		clip = s.voice.Synthesize(ctx, script, "ad")
	}
	s.publish(ctx, "ad", events.EventBulletinAd, models.ContentItem{
		Type:    models.ContentAnnouncement,
		Title:   ad.Title,
		Content: script,
	}, events.Payload{
		"script":   script,
		"clip_url": clip,
		"ad_id":    ad.ID,
		"title":    ad.Title,
		"image":    ad.ImageURL,
	})
}

func (s *Scheduler) publish(ctx context.Context, kind string, event events.EventType,
	item models.ContentItem, payload events.Payload) {

	item.Timestamp = s.clock.Now()
	if err := s.sink.SaveContentItem(ctx, &item); err != nil {
		s.logger.Warn().Err(err).Str("kind", kind).Msg("bulletin feed write failed")
	}
	if s.bus != nil {
		s.bus.Publish(event, payload)
	}
	telemetry.BulletinRunsTotal.WithLabelValues(kind).Inc()
	s.logger.Info().Str("kind", kind).Msg("bulletin aired")
}

// commuteWindow reports whether t falls in morning or evening drive
// time (hours 7-9 and 16-18 inclusive).
func commuteWindow(t time.Time) bool {
	hour := t.Hour()
	return (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 18)
}
