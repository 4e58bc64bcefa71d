/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package store

import (
	"time"

	"github.com/airwavefm/airwave/internal/cache"
	"github.com/airwavefm/airwave/internal/models"
)

// Built-in sample content. Served whenever the database is absent,
// unreachable, or empty so the station never goes silent.

func mockTracks() []models.Track {
	now := time.Now()
	return []models.Track{
		{
			ID:          "a1f4c2e0-0000-4000-8000-000000000001",
			Title:       "Guitar Instrumental",
			Artist:      "Sound Effects",
			Album:       "Free Audio Collection",
			MediaURL:    "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3",
			CoverArtURL: "https://picsum.photos/seed/track1/300/300",
			Genre:       "Acoustic",
			Mood:        "Relaxing",
			Tempo:       120,
			Duration:    372 * time.Second,
			ReleaseDate: "2023-01-01",
			CreatedAt:   now,
		},
		{
			ID:          "a1f4c2e0-0000-4000-8000-000000000002",
			Title:       "Electronic Beat",
			Artist:      "Sound Library",
			Album:       "Royalty Free Music",
			MediaURL:    "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-3.mp3",
			CoverArtURL: "https://picsum.photos/seed/track2/300/300",
			Genre:       "Electronic",
			Mood:        "Energetic",
			Tempo:       140,
			Duration:    380 * time.Second,
			ReleaseDate: "2023-02-15",
			CreatedAt:   now,
		},
		{
			ID:          "a1f4c2e0-0000-4000-8000-000000000003",
			Title:       "Ambient Melody",
			Artist:      "Audio Archive",
			Album:       "Background Music",
			MediaURL:    "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-8.mp3",
			CoverArtURL: "https://picsum.photos/seed/track3/300/300",
			Genre:       "Ambient",
			Mood:        "Calm",
			Tempo:       90,
			Duration:    395 * time.Second,
			ReleaseDate: "2023-03-20",
			CreatedAt:   now,
		},
	}
}

func mockProgram() models.Program {
	return models.Program{
		ID:          "b2e5d3f1-0000-4000-8000-000000000001",
		Type:        models.ProgramMusic,
		Title:       "Morning Beats",
		Description: "Start your day with the latest hits and positive energy",
		ImageURL:    "https://picsum.photos/seed/program1/400/400",
		Active:      true,
	}
}

func mockSchedule(dayOfWeek int) []cache.CachedSlot {
	program := mockProgram()
	return []cache.CachedSlot{
		{
			Slot: models.TimeSlot{
				ID:        "c3f6e4a2-0000-4000-8000-000000000001",
				ProgramID: program.ID,
				DayOfWeek: dayOfWeek,
				StartTime: "00:00",
				EndTime:   "24:00",
				Active:    true,
			},
			Program: program,
		},
	}
}

func mockVoiceProfile() models.VoiceProfile {
	return models.VoiceProfile{
		ID:          "d4a7f5b3-0000-4000-8000-000000000001",
		Name:        "Alex",
		VoiceID:     "pNInz6obpgDQGcFmaJgB",
		Personality: "Friendly and energetic DJ who loves electronic music",
		Style:       "Upbeat and enthusiastic",
		Active:      true,
	}
}

func mockAdvertisements() []models.Advertisement {
	return []models.Advertisement{
		{
			ID:       "e5b8a6c4-0000-4000-8000-000000000001",
			Title:    "Summer Music Festival",
			Content:  "Join us for the biggest music event of the summer! Featuring top artists and amazing food.",
			ImageURL: "https://picsum.photos/seed/ad1/800/400",
			Duration: 30 * time.Second,
			Active:   true,
		},
		{
			ID:       "e5b8a6c4-0000-4000-8000-000000000002",
			Title:    "New Headphones Release",
			Content:  "Experience music like never before with our new noise-cancelling headphones.",
			ImageURL: "https://picsum.photos/seed/ad2/800/400",
			Duration: 20 * time.Second,
			Active:   true,
		},
	}
}

func mockNews(category string) []models.NewsArticle {
	if category == "" {
		category = "general"
	}
	now := time.Now()
	return []models.NewsArticle{
		{
			ID:          "f6c9b7d5-0000-4000-8000-000000000001",
			Title:       "Local Music Venue Reopens After Renovation",
			Source:      "City Tribune",
			Category:    category,
			Summary:     "The downtown concert hall welcomes audiences back this weekend with a sold-out opening night.",
			PublishedAt: now.Add(-2 * time.Hour),
			Active:      true,
		},
		{
			ID:          "f6c9b7d5-0000-4000-8000-000000000002",
			Title:       "Streaming Numbers Hit Record High This Quarter",
			Source:      "Music Weekly",
			Category:    category,
			Summary:     "Independent artists account for a growing share of total listening hours.",
			PublishedAt: now.Add(-5 * time.Hour),
			Active:      true,
		},
	}
}

func mockTraffic(region string) []models.TrafficUpdate {
	now := time.Now()
	return []models.TrafficUpdate{
		{
			ID:             "a7d0c8e6-0000-4000-8000-000000000001",
			Region:         region,
			Severity:       models.TrafficMedium,
			Description:    "Construction causing delays of approximately 15 minutes",
			AffectedRoutes: "Downtown Main Street",
			StartsAt:       now.Add(-time.Hour),
			EndsAt:         now.Add(3 * time.Hour),
			Active:         true,
		},
		{
			ID:             "a7d0c8e6-0000-4000-8000-000000000002",
			Region:         region,
			Severity:       models.TrafficHigh,
			Description:    "Major accident blocking two lanes, expect significant delays",
			AffectedRoutes: "Highway 101 Northbound",
			StartsAt:       now.Add(-30 * time.Minute),
			EndsAt:         now.Add(time.Hour),
			Active:         true,
		},
	}
}

func mockWeather(location string) models.WeatherForecast {
	now := time.Now()
	return models.WeatherForecast{
		ID:            "b8e1d9f7-0000-4000-8000-000000000001",
		Location:      location,
		TemperatureC:  21,
		Condition:     "Partly cloudy",
		Humidity:      55,
		WindKPH:       12,
		WindDirection: "SW",
		Precipitation: 0,
		Daily: []models.DailyForecast{
			{Date: now.Format("2006-01-02"), MaxTempC: 24, MinTempC: 15, Condition: "Partly cloudy", ChanceOfRain: 10},
			{Date: now.AddDate(0, 0, 1).Format("2006-01-02"), MaxTempC: 22, MinTempC: 14, Condition: "Light rain", ChanceOfRain: 60},
			{Date: now.AddDate(0, 0, 2).Format("2006-01-02"), MaxTempC: 25, MinTempC: 16, Condition: "Sunny", ChanceOfRain: 0},
		},
		UpdatedAt: now,
	}
}
