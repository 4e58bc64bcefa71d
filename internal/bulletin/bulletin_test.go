/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package bulletin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/audio"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/models"
	"github.com/airwavefm/airwave/internal/speech"
	"github.com/airwavefm/airwave/internal/textgen"
)

type fakeStore struct {
	weather *models.WeatherForecast
	news    []models.NewsArticle
	traffic []models.TrafficUpdate
	ads     []models.Advertisement

	savedWeather *models.WeatherForecast
	savedNews    []models.NewsArticle
	savedTraffic []models.TrafficUpdate
	items        []models.ContentItem
}

func (f *fakeStore) FetchWeather(ctx context.Context, location string) (*models.WeatherForecast, error) {
	return f.weather, nil
}

func (f *fakeStore) SaveWeather(ctx context.Context, forecast *models.WeatherForecast) error {
	f.savedWeather = forecast
	return nil
}

func (f *fakeStore) FetchNews(ctx context.Context, category string, limit int) ([]models.NewsArticle, error) {
	return f.news, nil
}

func (f *fakeStore) ReplaceNews(ctx context.Context, category string, articles []models.NewsArticle) error {
	f.savedNews = articles
	return nil
}

func (f *fakeStore) FetchTraffic(ctx context.Context, region string) ([]models.TrafficUpdate, error) {
	return f.traffic, nil
}

func (f *fakeStore) ReplaceTraffic(ctx context.Context, region string, updates []models.TrafficUpdate) error {
	f.savedTraffic = updates
	return nil
}

func (f *fakeStore) FetchAds(ctx context.Context) ([]models.Advertisement, error) {
	return f.ads, nil
}

func (f *fakeStore) SaveContentItem(ctx context.Context, item *models.ContentItem) error {
	f.items = append(f.items, *item)
	return nil
}

func testScheduler(fs *fakeStore, source *Source, clock audio.Clock, cfg Config) *Scheduler {
	return NewScheduler(cfg, source, &textgen.TemplateGenerator{}, &speech.Static{},
		fs, events.NewBus(), clock, zerolog.Nop())
}

func TestWeatherGatewayParsesForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Berlin" {
			t.Errorf("q = %q, want Berlin", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"location": {"name": "Berlin"},
			"current": {
				"temp_c": 21.5, "humidity": 40, "wind_kph": 12, "wind_dir": "NW",
				"precip_mm": 0.2, "condition": {"text": "Partly cloudy"}
			},
			"forecast": {"forecastday": [
				{"date": "2026-08-29", "day": {
					"maxtemp_c": 24, "mintemp_c": 14, "daily_chance_of_rain": 20,
					"condition": {"text": "Sunny"}
				}}
			]}
		}`))
	}))
	defer srv.Close()

	g := NewWeatherGateway(srv.URL, "key-1", zerolog.Nop())
	forecast, err := g.Fetch(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if forecast.Condition != "Partly cloudy" || forecast.TemperatureC != 21.5 {
		t.Errorf("forecast = %+v", forecast)
	}
	if len(forecast.Daily) != 1 || forecast.Daily[0].Condition != "Sunny" {
		t.Errorf("daily = %+v", forecast.Daily)
	}
}

func TestNewsGatewayParsesHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok", "articles": [
			{"source": {"name": "Test Wire"}, "title": "Local fair opens",
			 "description": "Gates open at nine.", "url": "https://news.test/1"}
		]}`))
	}))
	defer srv.Close()

	g := NewNewsGateway(srv.URL, "key-1", zerolog.Nop())
	articles, err := g.Fetch(context.Background(), "general", 3)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(articles) != 1 || articles[0].Source != "Test Wire" || articles[0].Category != "general" {
		t.Errorf("articles = %+v", articles)
	}
}

func TestSourceFallsBackToStoreOnAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fs := &fakeStore{weather: &models.WeatherForecast{Location: "Berlin", Condition: "Cached"}}
	source := NewSource(NewWeatherGateway(srv.URL, "key-1", zerolog.Nop()), nil, nil, fs, zerolog.Nop())

	forecast, err := source.Weather(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("Weather() error = %v", err)
	}
	if forecast.Condition != "Cached" {
		t.Errorf("condition = %q, want cached forecast", forecast.Condition)
	}
}

func TestSourceCachesFreshWeather(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"location": {"name": "Berlin"}, "current": {"temp_c": 18, "condition": {"text": "Clear"}}}`))
	}))
	defer srv.Close()

	fs := &fakeStore{}
	source := NewSource(NewWeatherGateway(srv.URL, "key-1", zerolog.Nop()), nil, nil, fs, zerolog.Nop())

	forecast, err := source.Weather(context.Background(), "Berlin")
	if err != nil {
		t.Fatalf("Weather() error = %v", err)
	}
	if forecast.Condition != "Clear" {
		t.Errorf("condition = %q", forecast.Condition)
	}
	if fs.savedWeather == nil || fs.savedWeather.Condition != "Clear" {
		t.Error("fresh forecast not written back to the store")
	}
}

func TestCommuteWindow(t *testing.T) {
	cases := []struct {
		hour int
		want bool
	}{
		{6, false},
		{7, true},
		{9, true},
		{10, false},
		{15, false},
		{16, true},
		{18, true},
		{19, false},
		{23, false},
	}
	for _, tc := range cases {
		at := time.Date(2026, 8, 29, tc.hour, 30, 0, 0, time.UTC)
		if got := commuteWindow(at); got != tc.want {
			t.Errorf("commuteWindow(%02d:30) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestTrafficBulletinOnlyDuringCommute(t *testing.T) {
	fs := &fakeStore{traffic: []models.TrafficUpdate{{
		Region: "metro", Severity: models.TrafficHigh,
		Description: "Stalled truck", AffectedRoutes: "Highway 101",
	}}}
	source := NewSource(nil, nil, nil, fs, zerolog.Nop())

	midday := audio.NewFakeClock(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
	s := testScheduler(fs, source, midday, Config{Region: "metro"})
	s.RunTraffic(context.Background())
	if len(fs.items) != 0 {
		t.Fatalf("traffic bulletin aired at midday: %+v", fs.items)
	}

	morning := audio.NewFakeClock(time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC))
	s = testScheduler(fs, source, morning, Config{Region: "metro"})
	s.RunTraffic(context.Background())
	if len(fs.items) != 1 || fs.items[0].Title != "Traffic Update" {
		t.Fatalf("items = %+v, want one traffic bulletin", fs.items)
	}
}

func TestTrafficBulletinSkipsWhenQuiet(t *testing.T) {
	fs := &fakeStore{}
	source := NewSource(nil, nil, nil, fs, zerolog.Nop())
	morning := audio.NewFakeClock(time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC))

	s := testScheduler(fs, source, morning, Config{Region: "metro"})
	s.RunTraffic(context.Background())
	if len(fs.items) != 0 {
		t.Errorf("bulletin aired with no incidents: %+v", fs.items)
	}
}

func TestNewsBulletinLandsInFeed(t *testing.T) {
	fs := &fakeStore{news: []models.NewsArticle{{
		ID: "a-1", Title: "Local fair opens", Source: "Test Wire",
	}}}
	source := NewSource(nil, nil, nil, fs, zerolog.Nop())

	s := testScheduler(fs, source, audio.NewFakeClock(time.Now()), Config{})
	s.RunNews(context.Background())

	if len(fs.items) != 1 {
		t.Fatalf("items = %d, want 1", len(fs.items))
	}
	if fs.items[0].Type != models.ContentNews || fs.items[0].Content == "" {
		t.Errorf("item = %+v", fs.items[0])
	}
}

func TestAdRotationRespectsCooldown(t *testing.T) {
	fs := &fakeStore{ads: []models.Advertisement{
		{ID: "ad-1", Title: "Summer Music Festival", Content: "Three days of live music."},
		{ID: "ad-2", Title: "New Headphones Release", Content: "Hear every detail."},
	}}
	source := NewSource(nil, nil, nil, fs, zerolog.Nop())
	fc := audio.NewFakeClock(time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))

	s := testScheduler(fs, source, fc, Config{AdCooldown: 5 * time.Minute})

	s.RunAd(context.Background())
	if len(fs.items) != 1 || fs.items[0].Title != "Summer Music Festival" {
		t.Fatalf("items = %+v, want first ad", fs.items)
	}

	// Inside the cooldown nothing airs.
	fc.Advance(2 * time.Minute)
	s.RunAd(context.Background())
	if len(fs.items) != 1 {
		t.Fatalf("ad aired inside cooldown: %+v", fs.items)
	}

	// Past the cooldown the rotation moves to the next spot.
	fc.Advance(4 * time.Minute)
	s.RunAd(context.Background())
	if len(fs.items) != 2 || fs.items[1].Title != "New Headphones Release" {
		t.Fatalf("items = %+v, want rotation to second ad", fs.items)
	}
}

func TestWeatherBulletinUsesScript(t *testing.T) {
	fs := &fakeStore{weather: &models.WeatherForecast{
		Location: "Berlin", Condition: "Clear", TemperatureC: 18,
		Humidity: 50, WindKPH: 10, WindDirection: "NW",
	}}
	source := NewSource(nil, nil, nil, fs, zerolog.Nop())

	s := testScheduler(fs, source, audio.NewFakeClock(time.Now()), Config{Location: "Berlin"})
	s.RunWeather(context.Background())

	if len(fs.items) != 1 {
		t.Fatalf("items = %d, want 1", len(fs.items))
	}
	if fs.items[0].Title != "Weather Update" || fs.items[0].Content == "" {
		t.Errorf("item = %+v", fs.items[0])
	}
}
