/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package textgen produces the DJ's spoken copy: track introductions,
// bulletins and listener replies. Generation never fails — when the
// model is unreachable a canned template stands in.
package textgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/airwavefm/airwave/internal/models"
)

// Generator writes DJ copy. Implementations must always return usable
// text; backend failures degrade to templates instead of erroring.
type Generator interface {
	TrackIntro(ctx context.Context, track *models.Track, previous *models.Track) string
	NewsUpdate(ctx context.Context, headlines []models.NewsArticle) string
	WeatherReport(ctx context.Context, forecast *models.WeatherForecast) string
	TrafficReport(ctx context.Context, updates []models.TrafficUpdate) string
	AdRead(ctx context.Context, ad *models.Advertisement) string
	Announcement(ctx context.Context) string
	Welcome(ctx context.Context, stationName string) string
	ListenerReply(ctx context.Context, message string) string
}

// Prompt builders shared by backends.

func trackIntroPrompt(track, previous *models.Track) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a brief and engaging introduction for the song %q by %s.", track.Title, track.Artist)
	if track.Genre != "" {
		fmt.Fprintf(&b, " The genre is %s.", track.Genre)
	}
	if year := track.ReleaseYear(); year != "" {
		fmt.Fprintf(&b, " It was released in %s.", year)
	}
	if previous != nil {
		fmt.Fprintf(&b, " The previous song was %q by %s.", previous.Title, previous.Artist)
	}
	b.WriteString(" Keep it concise (30-50 words) and conversational, as if you're a radio DJ speaking to listeners.")
	return b.String()
}

func newsPrompt(headlines []models.NewsArticle) string {
	var b strings.Builder
	b.WriteString("Create a brief news update for a radio station.")
	if len(headlines) > 0 {
		b.WriteString(" Base it on these headlines:")
		for i, article := range headlines {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, " %q (%s).", article.Title, article.Source)
		}
	}
	b.WriteString(" Keep it concise (30-50 words) and conversational.")
	return b.String()
}

func weatherPrompt(forecast *models.WeatherForecast) string {
	return fmt.Sprintf(
		"Create a brief weather report for a radio station. Current conditions in %s: %s, %.0f degrees Celsius, humidity %d%%, wind %.0f km/h %s. Keep it concise (30-50 words) and conversational.",
		forecast.Location, forecast.Condition, forecast.TemperatureC,
		forecast.Humidity, forecast.WindKPH, forecast.WindDirection,
	)
}

func trafficPrompt(updates []models.TrafficUpdate) string {
	var b strings.Builder
	b.WriteString("Create a brief traffic report for a radio station.")
	for i, update := range updates {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, " %s: %s (%s severity).", update.AffectedRoutes, update.Description, update.Severity)
	}
	b.WriteString(" Keep it concise (30-50 words) and conversational.")
	return b.String()
}

func adPrompt(ad *models.Advertisement) string {
	return fmt.Sprintf(
		"Read this sponsor message as an enthusiastic radio DJ: %q — %s. Keep it concise (30-50 words) and conversational.",
		ad.Title, ad.Content,
	)
}

func announcementPrompt() string {
	return "Create a brief radio station announcement. It could be about upcoming features, listener appreciation, or general radio station information. Keep it concise (30-50 words) and conversational."
}

func welcomePrompt(stationName string) string {
	return fmt.Sprintf(
		"Create a warm welcome message for listeners who just tuned in to %s. Introduce yourself as the station's DJ and tease the music coming up. Keep it concise (30-50 words) and conversational.",
		stationName,
	)
}

func listenerReplyPrompt(message string) string {
	return fmt.Sprintf(
		"A listener has sent this message: %q. Create a brief, friendly response as if you're a radio DJ. Be enthusiastic and engaging. Make sure to reference the FULL content of their message in your response.",
		message,
	)
}
