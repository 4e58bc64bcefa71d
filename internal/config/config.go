/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	BaseURL     string // Public base URL (e.g., http://radio.example.com:8080)
	DBBackend   DatabaseBackend
	DBDSN       string
	MediaRoot   string // Local directory for synthesized speech clips
	SeedFile    string // Optional YAML seed (schedule + voice profiles)

	StationName   string
	StationRegion string // Region for traffic bulletins
	WeatherPlace  string // Location for weather bulletins

	JWTSigningKey string

	// Text generation gateway
	TextGenEndpoint string
	TextGenAPIKey   string
	TextGenModel    string

	// Speech synthesis gateway
	SpeechEndpoint    string
	SpeechAPIKey      string
	SpeechVoiceID     string
	SpeechFallbackURL string // Played when synthesis fails mid-request

	// External bulletin data feeds
	WeatherEndpoint string
	WeatherAPIKey   string
	NewsEndpoint    string
	NewsAPIKey      string
	TrafficEndpoint string
	TrafficAPIKey   string

	// Optional bootstrap admin, created at startup when both are set
	AdminEmail    string
	AdminPassword string

	// Playback tuning
	MinPlaySeconds int // Tracks reporting "ended" earlier than this are looped

	// S3 storage for synthesized clips (falls back to MediaRoot when unset)
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string // For S3-compatible services (MinIO, Spaces, etc.)
	S3PublicBaseURL   string // Optional CDN URL
	S3UsePathStyle    bool   // Required for MinIO

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	// Redis (cache + distributed event fanout)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// NATS event bridge (optional, in-memory bus when unset)
	NATSURL string

	InstanceID string

	BulletinInterval time.Duration // Base cadence for the bulletin scheduler tick
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("AIRWAVE_ENV", "development"),
		HTTPBind:    getEnv("AIRWAVE_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("AIRWAVE_HTTP_PORT", 8080),
		BaseURL:     getEnv("AIRWAVE_BASE_URL", ""),
		DBBackend:   DatabaseBackend(getEnv("AIRWAVE_DB_BACKEND", string(DatabaseSQLite))),
		DBDSN:       getEnv("AIRWAVE_DB_DSN", ""),
		MediaRoot:   getEnv("AIRWAVE_MEDIA_ROOT", "./media"),
		SeedFile:    getEnv("AIRWAVE_SEED_FILE", ""),

		StationName:   getEnv("AIRWAVE_STATION_NAME", "Airwave FM"),
		StationRegion: getEnv("AIRWAVE_STATION_REGION", "downtown"),
		WeatherPlace:  getEnv("AIRWAVE_WEATHER_LOCATION", "London"),

		JWTSigningKey: getEnv("AIRWAVE_JWT_SIGNING_KEY", ""),

		TextGenEndpoint: getEnv("AIRWAVE_TEXTGEN_ENDPOINT", "https://openrouter.ai/api/v1"),
		TextGenAPIKey:   getEnv("AIRWAVE_TEXTGEN_API_KEY", ""),
		TextGenModel:    getEnv("AIRWAVE_TEXTGEN_MODEL", "google/gemini-2.5-pro-exp-03-25:free"),

		SpeechEndpoint:    getEnv("AIRWAVE_SPEECH_ENDPOINT", "https://api.elevenlabs.io/v1"),
		SpeechAPIKey:      getEnv("AIRWAVE_SPEECH_API_KEY", ""),
		SpeechVoiceID:     getEnv("AIRWAVE_SPEECH_VOICE_ID", "pNInz6obpgDQGcFmaJgB"),
		SpeechFallbackURL: getEnv("AIRWAVE_SPEECH_FALLBACK_URL", ""),

		WeatherEndpoint: getEnv("AIRWAVE_WEATHER_ENDPOINT", "https://api.weatherapi.com/v1"),
		WeatherAPIKey:   getEnv("AIRWAVE_WEATHER_API_KEY", ""),
		NewsEndpoint:    getEnv("AIRWAVE_NEWS_ENDPOINT", "https://newsapi.org/v2"),
		NewsAPIKey:      getEnv("AIRWAVE_NEWS_API_KEY", ""),
		TrafficEndpoint: getEnv("AIRWAVE_TRAFFIC_ENDPOINT", ""),
		TrafficAPIKey:   getEnv("AIRWAVE_TRAFFIC_API_KEY", ""),

		AdminEmail:    getEnv("AIRWAVE_ADMIN_EMAIL", ""),
		AdminPassword: getEnv("AIRWAVE_ADMIN_PASSWORD", ""),

		MinPlaySeconds: getEnvInt("AIRWAVE_MIN_PLAY_SECONDS", 30),

		S3AccessKeyID:     getEnvAny([]string{"AIRWAVE_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID"}, ""),
		S3SecretAccessKey: getEnvAny([]string{"AIRWAVE_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY"}, ""),
		S3Region:          getEnvAny([]string{"AIRWAVE_S3_REGION", "AWS_REGION"}, "us-east-1"),
		S3Bucket:          getEnvAny([]string{"AIRWAVE_S3_BUCKET", "S3_BUCKET"}, ""),
		S3Endpoint:        getEnvAny([]string{"AIRWAVE_S3_ENDPOINT", "S3_ENDPOINT"}, ""),
		S3PublicBaseURL:   getEnvAny([]string{"AIRWAVE_S3_PUBLIC_BASE_URL", "S3_PUBLIC_BASE_URL"}, ""),
		S3UsePathStyle:    getEnvBool("AIRWAVE_S3_USE_PATH_STYLE", false),

		TracingEnabled:    getEnvBool("AIRWAVE_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("AIRWAVE_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("AIRWAVE_TRACING_SAMPLE_RATE", 1.0),

		RedisAddr:     getEnv("AIRWAVE_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("AIRWAVE_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("AIRWAVE_REDIS_DB", 0),

		NATSURL: getEnv("AIRWAVE_NATS_URL", ""),

		InstanceID: getEnv("AIRWAVE_INSTANCE_ID", ""),

		BulletinInterval: time.Duration(getEnvInt("AIRWAVE_BULLETIN_TICK_SECONDS", 60)) * time.Second,
	}

	if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
		return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
	}

	if cfg.DBDSN == "" {
		if cfg.DBBackend == DatabaseSQLite {
			cfg.DBDSN = "file:airwave.db?_fk=1"
		} else {
			return nil, fmt.Errorf("AIRWAVE_DB_DSN must be provided for backend %q", cfg.DBBackend)
		}
	}

	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("AIRWAVE_JWT_SIGNING_KEY must be provided")
	}

	if strings.EqualFold(cfg.Environment, "production") {
		if len(cfg.JWTSigningKey) < 16 {
			return nil, fmt.Errorf("AIRWAVE_JWT_SIGNING_KEY must be at least 16 bytes in production")
		}
	}

	if cfg.MinPlaySeconds < 0 {
		return nil, fmt.Errorf("AIRWAVE_MIN_PLAY_SECONDS must not be negative")
	}

	return cfg, nil
}

// MinPlayDuration returns the minimum effective playback time for a track.
func (c *Config) MinPlayDuration() time.Duration {
	return time.Duration(c.MinPlaySeconds) * time.Second
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "true" || v == "1" || v == "yes" {
			return true
		}
		if v == "false" || v == "0" || v == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}
