/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package models

import (
	"time"
)

// Track is an audio asset playable by the station.
// Tracks are immutable once fetched; rows are replaced, never mutated in place.
type Track struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Title       string `gorm:"index"`
	Artist      string `gorm:"index"`
	Album       string
	MediaURL    string
	CoverArtURL string
	Genre       string `gorm:"type:varchar(64)"`
	Mood        string `gorm:"type:varchar(64)"`
	Tempo       int
	Duration    time.Duration
	ReleaseDate string `gorm:"type:varchar(16)"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ReleaseYear extracts the year component of ReleaseDate, if present.
func (t Track) ReleaseYear() string {
	if len(t.ReleaseDate) >= 4 {
		return t.ReleaseDate[:4]
	}
	return ""
}

// ContentItemType enumerates activity feed entry categories.
type ContentItemType string

const (
	ContentAnnouncement ContentItemType = "announcement"
	ContentNews         ContentItemType = "news"
	ContentTrack        ContentItemType = "track"
	ContentMessage      ContentItemType = "message"
)

// ContentItem is an append-only activity feed entry.
type ContentItem struct {
	ID             string          `gorm:"type:uuid;primaryKey"`
	Type           ContentItemType `gorm:"type:varchar(16);index"`
	Content        string          `gorm:"type:text"`
	Title          string
	Artist         string
	RelatedTrackID string    `gorm:"type:uuid"`
	Timestamp      time.Time `gorm:"index"`
}

// UserMessageType distinguishes chat messages from song requests.
type UserMessageType string

const (
	MessageChat    UserMessageType = "message"
	MessageRequest UserMessageType = "request"
)

// UserMessage records a listener interaction and the DJ's response.
type UserMessage struct {
	ID        string          `gorm:"type:uuid;primaryKey"`
	Type      UserMessageType `gorm:"type:varchar(16)"`
	Content   string          `gorm:"type:text"`
	Response  string          `gorm:"type:text"`
	Processed bool
	CreatedAt time.Time
}

// VoiceProfile describes a DJ persona bound to a synthesis voice.
type VoiceProfile struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Name        string `gorm:"uniqueIndex"`
	VoiceID     string `gorm:"type:varchar(64)"`
	Personality string `gorm:"type:text"`
	Style       string `gorm:"type:varchar(64)"`
	Active      bool   `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Advertisement is a sponsor spot rotated between tracks.
type Advertisement struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Title     string
	Content   string `gorm:"type:text"`
	ImageURL  string
	AudioURL  string
	Duration  time.Duration
	Active    bool `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewsArticle is a cached headline used for news bulletins.
type NewsArticle struct {
	ID          string `gorm:"type:uuid;primaryKey"`
	Title       string
	Source      string
	Category    string `gorm:"type:varchar(32);index"`
	Summary     string `gorm:"type:text"`
	Content     string `gorm:"type:text"`
	URL         string
	ImageURL    string
	PublishedAt time.Time `gorm:"index"`
	Active      bool      `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TrafficSeverity orders traffic incidents from mild to severe.
type TrafficSeverity string

const (
	TrafficLow    TrafficSeverity = "low"
	TrafficMedium TrafficSeverity = "medium"
	TrafficHigh   TrafficSeverity = "high"
	TrafficSevere TrafficSeverity = "severe"
)

// TrafficUpdate is an active traffic incident for a region.
type TrafficUpdate struct {
	ID             string          `gorm:"type:uuid;primaryKey"`
	Region         string          `gorm:"index"`
	Severity       TrafficSeverity `gorm:"type:varchar(16)"`
	Description    string          `gorm:"type:text"`
	AffectedRoutes string          `gorm:"type:text"` // Comma separated route names
	StartsAt       time.Time
	EndsAt         time.Time
	Active         bool `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// WeatherForecast caches one location's current conditions plus daily outlook.
type WeatherForecast struct {
	ID            string `gorm:"type:uuid;primaryKey"`
	Location      string `gorm:"index"`
	TemperatureC  float64
	Condition     string
	Humidity      int
	WindKPH       float64
	WindDirection string `gorm:"type:varchar(8)"`
	Precipitation float64
	Daily         []DailyForecast `gorm:"serializer:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time `gorm:"index"`
}

// DailyForecast is one day of outlook inside a WeatherForecast.
type DailyForecast struct {
	Date         string  `json:"date"`
	MaxTempC     float64 `json:"max_temp_c"`
	MinTempC     float64 `json:"min_temp_c"`
	Condition    string  `json:"condition"`
	ChanceOfRain int     `json:"chance_of_rain"`
}

// ProgramType enumerates schedule slot categories.
type ProgramType string

const (
	ProgramMusic    ProgramType = "music"
	ProgramNews     ProgramType = "news"
	ProgramPodcast  ProgramType = "podcast"
	ProgramRequests ProgramType = "requests"
	ProgramWeather  ProgramType = "weather"
	ProgramTraffic  ProgramType = "traffic"
)

// Program is a named show hosted by a DJ persona.
type Program struct {
	ID          string      `gorm:"type:uuid;primaryKey"`
	Type        ProgramType `gorm:"type:varchar(16)"`
	Title       string      `gorm:"index"`
	Description string      `gorm:"type:text"`
	HostID      string      `gorm:"type:uuid"` // VoiceProfile reference
	ImageURL    string
	Active      bool `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimeSlot places a program on the weekly grid.
type TimeSlot struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	ProgramID string `gorm:"type:uuid;index"`
	DayOfWeek int    `gorm:"index"` // 0 = Sunday
	StartTime string `gorm:"type:varchar(5)"` // "HH:MM"
	EndTime   string `gorm:"type:varchar(5)"`
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlayHistory records executed playback for the now-playing archive.
type PlayHistory struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	TrackID   string `gorm:"type:uuid;index"`
	Title     string
	Artist    string
	StartedAt time.Time `gorm:"index"`
	EndedAt   time.Time
	Looped    bool // Set when the minimum play duration forced a replay
}

// AdminUser is an operator account for the write API.
type AdminUser struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
