/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package textgen

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/airwavefm/airwave/internal/models"
)

// Canned copy used whenever the model backend is unavailable. Selection
// hashes the input so the same track or message always gets the same
// line, which keeps replays stable.

var templateTrackIntros = []string{
	"Alright music lovers! Get ready for an absolute BANGER coming your way! This track is guaranteed to get your energy up and your feet moving! Let's crank up the volume!",
	"Oh WOW! I'm super excited to play this next masterpiece for you! It's been blowing up the charts and I just KNOW you're going to love every second of it! Let's dive in!",
	"Hold onto your headphones, because this next track is about to take you on an incredible musical journey! The beat, the melody, the vibe - it's all PERFECTION! Here we go!",
	"I've been waiting ALL DAY to play this next track for you! It's got that special something that makes it absolutely irresistible! Turn it up and let yourself feel the rhythm!",
	"This next song? Absolute FIRE! I can't stop playing it on repeat, and I bet you'll be doing the same! Get ready for a mind-blowing musical experience!",
	"Coming in HOT with this next track that's been dominating the airwaves! The energy is unmatched and the production is stellar! You're in for a treat!",
	"I'm literally bouncing in my chair right now because I get to share THIS incredible song with you! It's the definition of a perfect track! Let's enjoy it together!",
}

var templateNewsUpdates = []string{
	"In music news today, several artists have announced new tour dates for the summer. Stay tuned for more details!",
	"The music charts are seeing some exciting new entries this week, with several debut albums making a splash.",
	"A major music festival has just announced its lineup for next year, featuring some of the biggest names in the industry.",
	"Award season is approaching, and nominations for the major music awards have been announced.",
	"Several classic albums are getting special anniversary re-releases with bonus content for fans.",
}

var templateAnnouncements = []string{
	"You're listening to AI Radio, where we bring you the best music all day, every day.",
	"Thanks for tuning in to AI Radio. We appreciate all our listeners!",
	"Don't forget to check out our website for playlists and upcoming features.",
	"AI Radio - your number one source for the latest hits and greatest classics.",
	"Stay tuned for more great music and updates throughout the day on AI Radio.",
}

var templateListenerReplies = []string{
	"BOOM! Thanks for your COMPLETE message! I've read EVERY WORD and I'm totally here for it! Keep those awesome messages coming, and enjoy the EPIC music!",
	"You're AMAZING for sending that message! I've got your FULL request and I'm on it! Let's keep this awesome music flowing just for YOU!",
	"WOW! I absolutely LOVE hearing from listeners like you! Your complete message means the world to me! Keep that energy up as we dive into more incredible tracks!",
	"OH YEAH! Your message just made my day! I've got EVERYTHING you said and I'm all about it! Let's keep this incredible radio experience going strong!",
	"You're what makes this radio station AWESOME! Thanks for your complete message - every word matters to us! Keep those vibes high as we continue with more fantastic music!",
}

// pickTemplate deterministically selects one line for a seed.
func pickTemplate(templates []string, seed string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return templates[int(h.Sum32())%len(templates)]
}

// TemplateGenerator serves canned copy only. It backs the OpenRouter
// client's failure path and runs standalone when no API key is set.
type TemplateGenerator struct {
	StationName string
}

var _ Generator = (*TemplateGenerator)(nil)

func (g *TemplateGenerator) TrackIntro(_ context.Context, track *models.Track, _ *models.Track) string {
	return pickTemplate(templateTrackIntros, track.ID+track.Title)
}

func (g *TemplateGenerator) NewsUpdate(_ context.Context, headlines []models.NewsArticle) string {
	seed := "news"
	if len(headlines) > 0 {
		seed = headlines[0].ID
	}
	return pickTemplate(templateNewsUpdates, seed)
}

func (g *TemplateGenerator) WeatherReport(_ context.Context, forecast *models.WeatherForecast) string {
	return fmt.Sprintf("Here's your weather update for %s: currently %s with a temperature of %.0f degrees. Back to the music!",
		forecast.Location, forecast.Condition, forecast.TemperatureC)
}

func (g *TemplateGenerator) TrafficReport(_ context.Context, updates []models.TrafficUpdate) string {
	if len(updates) == 0 {
		return "Good news on the roads - traffic is flowing smoothly out there right now. Keep it locked right here!"
	}
	update := updates[0]
	return fmt.Sprintf("Quick traffic check: %s on %s. Plan a little extra time and stay safe out there!",
		update.Description, update.AffectedRoutes)
}

func (g *TemplateGenerator) AdRead(_ context.Context, ad *models.Advertisement) string {
	return fmt.Sprintf("A quick word from our sponsors: %s. %s", ad.Title, ad.Content)
}

func (g *TemplateGenerator) Announcement(_ context.Context) string {
	return pickTemplate(templateAnnouncements, "announcement")
}

func (g *TemplateGenerator) Welcome(_ context.Context, stationName string) string {
	if stationName == "" {
		stationName = g.StationName
	}
	return fmt.Sprintf("Welcome to %s! I'm your AI DJ, and I've got an amazing lineup of music coming your way. Sit back, turn it up, and enjoy the ride!", stationName)
}

func (g *TemplateGenerator) ListenerReply(_ context.Context, message string) string {
	return pickTemplate(templateListenerReplies, message)
}
