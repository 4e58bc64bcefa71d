/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based caching layer for frequently accessed data.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/models"
	"github.com/airwavefm/airwave/internal/telemetry"
)

// Default TTL values for different cache types
const (
	DefaultTrackListTTL = 10 * time.Minute
	DefaultWeatherTTL   = 15 * time.Minute
	DefaultNewsTTL      = 10 * time.Minute
	DefaultTrafficTTL   = 5 * time.Minute
	DefaultScheduleTTL  = 1 * time.Hour
	DefaultAdListTTL    = 30 * time.Minute
)

// Key prefixes for Redis cache
const (
	KeyTrackList = "airwave:cache:tracks"
	KeyWeather   = "airwave:cache:weather:"  // + location
	KeyNews      = "airwave:cache:news:"     // + category
	KeyTraffic   = "airwave:cache:traffic:"  // + region
	KeySchedule  = "airwave:cache:schedule:" // + day_of_week
	KeyAdList    = "airwave:cache:ads"
)

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// TTL overrides
	TrackListTTL time.Duration
	WeatherTTL   time.Duration
	NewsTTL      time.Duration
	TrafficTTL   time.Duration
	ScheduleTTL  time.Duration
	AdListTTL    time.Duration

	// Fallback behavior
	DisableOnError bool // If true, disable caching on Redis errors
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		TrackListTTL:   DefaultTrackListTTL,
		WeatherTTL:     DefaultWeatherTTL,
		NewsTTL:        DefaultNewsTTL,
		TrafficTTL:     DefaultTrafficTTL,
		ScheduleTTL:    DefaultScheduleTTL,
		AdListTTL:      DefaultAdListTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool // Circuit breaker state
}

// New creates a new cache instance.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// handleError handles Redis errors with circuit breaker logic.
func (c *Cache) handleError(err error, operation string) {
	if err == nil || err == redis.Nil {
		return
	}

	telemetry.CacheOperationsTotal.WithLabelValues("error").Inc()
	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// get retrieves a value from cache and unmarshals it.
func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if !c.IsAvailable() {
		telemetry.CacheOperationsTotal.WithLabelValues("bypass").Inc()
		return false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		telemetry.CacheOperationsTotal.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		c.handleError(err, "get")
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("failed to unmarshal cached value")
		return false, nil
	}

	telemetry.CacheOperationsTotal.WithLabelValues("hit").Inc()
	return true, nil
}

// set stores a value in cache with TTL.
func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	return nil
}

// delete removes a key from cache.
func (c *Cache) delete(ctx context.Context, key string) error {
	if !c.IsAvailable() {
		return nil
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}

	return nil
}

// deletePattern deletes all keys matching a pattern.
func (c *Cache) deletePattern(ctx context.Context, pattern string) error {
	if !c.IsAvailable() {
		return nil
	}

	// Use SCAN to find keys (safer than KEYS for production)
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.handleError(err, "scan")
			return err
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.handleError(err, "delete_batch")
				return err
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

// Track caching methods

// GetTrackList retrieves the cached playable track catalog.
func (c *Cache) GetTrackList(ctx context.Context) ([]models.Track, bool) {
	var tracks []models.Track
	found, err := c.get(ctx, KeyTrackList, &tracks)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Int("count", len(tracks)).Msg("track list cache hit")
	return tracks, true
}

// SetTrackList caches the playable track catalog.
func (c *Cache) SetTrackList(ctx context.Context, tracks []models.Track) error {
	c.logger.Debug().Int("count", len(tracks)).Msg("caching track list")
	return c.set(ctx, KeyTrackList, tracks, c.config.TrackListTTL)
}

// InvalidateTrackList removes the track catalog from cache.
func (c *Cache) InvalidateTrackList(ctx context.Context) error {
	c.logger.Debug().Msg("invalidating track list cache")
	return c.delete(ctx, KeyTrackList)
}

// Weather caching methods

// GetWeather retrieves a cached forecast for a location.
func (c *Cache) GetWeather(ctx context.Context, location string) (*models.WeatherForecast, bool) {
	var forecast models.WeatherForecast
	found, err := c.get(ctx, KeyWeather+location, &forecast)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("location", location).Msg("weather cache hit")
	return &forecast, true
}

// SetWeather caches a forecast for a location.
func (c *Cache) SetWeather(ctx context.Context, forecast *models.WeatherForecast) error {
	c.logger.Debug().Str("location", forecast.Location).Msg("caching weather forecast")
	return c.set(ctx, KeyWeather+forecast.Location, forecast, c.config.WeatherTTL)
}

// News caching methods

// GetNews retrieves cached headlines for a category.
func (c *Cache) GetNews(ctx context.Context, category string) ([]models.NewsArticle, bool) {
	var articles []models.NewsArticle
	found, err := c.get(ctx, KeyNews+category, &articles)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("category", category).Int("count", len(articles)).Msg("news cache hit")
	return articles, true
}

// SetNews caches headlines for a category.
func (c *Cache) SetNews(ctx context.Context, category string, articles []models.NewsArticle) error {
	c.logger.Debug().Str("category", category).Int("count", len(articles)).Msg("caching news")
	return c.set(ctx, KeyNews+category, articles, c.config.NewsTTL)
}

// Traffic caching methods

// GetTraffic retrieves cached incidents for a region.
func (c *Cache) GetTraffic(ctx context.Context, region string) ([]models.TrafficUpdate, bool) {
	var updates []models.TrafficUpdate
	found, err := c.get(ctx, KeyTraffic+region, &updates)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Str("region", region).Int("count", len(updates)).Msg("traffic cache hit")
	return updates, true
}

// SetTraffic caches incidents for a region.
func (c *Cache) SetTraffic(ctx context.Context, region string, updates []models.TrafficUpdate) error {
	c.logger.Debug().Str("region", region).Int("count", len(updates)).Msg("caching traffic updates")
	return c.set(ctx, KeyTraffic+region, updates, c.config.TrafficTTL)
}

// Schedule caching methods

// CachedSlot pairs a time slot with its resolved program.
type CachedSlot struct {
	Slot    models.TimeSlot `json:"slot"`
	Program models.Program  `json:"program"`
}

// GetDaySchedule retrieves the cached schedule for a weekday.
func (c *Cache) GetDaySchedule(ctx context.Context, dayOfWeek int) ([]CachedSlot, bool) {
	var slots []CachedSlot
	found, err := c.get(ctx, fmt.Sprintf("%s%d", KeySchedule, dayOfWeek), &slots)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Int("day", dayOfWeek).Int("count", len(slots)).Msg("schedule cache hit")
	return slots, true
}

// SetDaySchedule caches the schedule for a weekday.
func (c *Cache) SetDaySchedule(ctx context.Context, dayOfWeek int, slots []CachedSlot) error {
	c.logger.Debug().Int("day", dayOfWeek).Int("count", len(slots)).Msg("caching day schedule")
	return c.set(ctx, fmt.Sprintf("%s%d", KeySchedule, dayOfWeek), slots, c.config.ScheduleTTL)
}

// InvalidateSchedule removes all cached day schedules.
func (c *Cache) InvalidateSchedule(ctx context.Context) error {
	c.logger.Debug().Msg("invalidating schedule cache")
	return c.deletePattern(ctx, KeySchedule+"*")
}

// Advertisement caching methods

// GetAdList retrieves the cached active advertisements.
func (c *Cache) GetAdList(ctx context.Context) ([]models.Advertisement, bool) {
	var ads []models.Advertisement
	found, err := c.get(ctx, KeyAdList, &ads)
	if err != nil || !found {
		return nil, false
	}
	c.logger.Debug().Int("count", len(ads)).Msg("ad list cache hit")
	return ads, true
}

// SetAdList caches the active advertisements.
func (c *Cache) SetAdList(ctx context.Context, ads []models.Advertisement) error {
	c.logger.Debug().Int("count", len(ads)).Msg("caching ad list")
	return c.set(ctx, KeyAdList, ads, c.config.AdListTTL)
}

// InvalidateAdList removes the ad rotation from cache.
func (c *Cache) InvalidateAdList(ctx context.Context) error {
	c.logger.Debug().Msg("invalidating ad list cache")
	return c.delete(ctx, KeyAdList)
}

// FlushAll removes all cached data (use sparingly).
func (c *Cache) FlushAll(ctx context.Context) error {
	c.logger.Warn().Msg("flushing all cache data")
	return c.deletePattern(ctx, "airwave:cache:*")
}
