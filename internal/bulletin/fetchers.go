/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package bulletin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/airwavefm/airwave/internal/models"
)

const fetchTimeout = 10 * time.Second

func newGatewayClient() *http.Client {
	return &http.Client{
		Timeout:   fetchTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// WeatherGateway pulls current conditions and a short outlook from a
// weatherapi.com compatible endpoint.
type WeatherGateway struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   zerolog.Logger
}

func NewWeatherGateway(endpoint, apiKey string, logger zerolog.Logger) *WeatherGateway {
	return &WeatherGateway{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   newGatewayClient(),
		logger:   logger.With().Str("component", "weather_gateway").Logger(),
	}
}

type weatherAPIResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
		Humidity int     `json:"humidity"`
		WindKPH  float64 `json:"wind_kph"`
		WindDir  string  `json:"wind_dir"`
		PrecipMM float64 `json:"precip_mm"`
	} `json:"current"`
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC     float64 `json:"maxtemp_c"`
				MinTempC     float64 `json:"mintemp_c"`
				ChanceOfRain int     `json:"daily_chance_of_rain"`
				Condition    struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

func (g *WeatherGateway) Fetch(ctx context.Context, location string) (*models.WeatherForecast, error) {
	q := url.Values{}
	q.Set("key", g.apiKey)
	q.Set("q", location)
	q.Set("days", "3")

	var payload weatherAPIResponse
	if err := g.getJSON(ctx, g.endpoint+"/forecast.json?"+q.Encode(), &payload); err != nil {
		return nil, err
	}

	forecast := &models.WeatherForecast{
		ID:            uuid.NewString(),
		Location:      payload.Location.Name,
		TemperatureC:  payload.Current.TempC,
		Condition:     payload.Current.Condition.Text,
		Humidity:      payload.Current.Humidity,
		WindKPH:       payload.Current.WindKPH,
		WindDirection: payload.Current.WindDir,
		Precipitation: payload.Current.PrecipMM,
	}
	if forecast.Location == "" {
		forecast.Location = location
	}
	for _, day := range payload.Forecast.ForecastDay {
		forecast.Daily = append(forecast.Daily, models.DailyForecast{
			Date:         day.Date,
			MaxTempC:     day.Day.MaxTempC,
			MinTempC:     day.Day.MinTempC,
			Condition:    day.Day.Condition.Text,
			ChanceOfRain: day.Day.ChanceOfRain,
		})
	}
	return forecast, nil
}

func (g *WeatherGateway) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("weather api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather api: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// NewsGateway pulls headlines from a newsapi.org compatible endpoint.
type NewsGateway struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   zerolog.Logger
}

func NewNewsGateway(endpoint, apiKey string, logger zerolog.Logger) *NewsGateway {
	return &NewsGateway{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   newGatewayClient(),
		logger:   logger.With().Str("component", "news_gateway").Logger(),
	}
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Content     string    `json:"content"`
		URL         string    `json:"url"`
		ImageURL    string    `json:"urlToImage"`
		PublishedAt time.Time `json:"publishedAt"`
	} `json:"articles"`
}

func (g *NewsGateway) Fetch(ctx context.Context, category string, limit int) ([]models.NewsArticle, error) {
	q := url.Values{}
	q.Set("category", category)
	q.Set("pageSize", strconv.Itoa(limit))
	q.Set("apiKey", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/top-headlines?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("news api: status %d", resp.StatusCode)
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("news api: decode: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("news api: status %q", payload.Status)
	}

	articles := make([]models.NewsArticle, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, models.NewsArticle{
			ID:          uuid.NewString(),
			Title:       a.Title,
			Source:      a.Source.Name,
			Category:    category,
			Summary:     a.Description,
			Content:     a.Content,
			URL:         a.URL,
			ImageURL:    a.ImageURL,
			PublishedAt: a.PublishedAt,
			Active:      true,
		})
	}
	return articles, nil
}

// TrafficGateway pulls active incidents for a region.
type TrafficGateway struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   zerolog.Logger
}

func NewTrafficGateway(endpoint, apiKey string, logger zerolog.Logger) *TrafficGateway {
	return &TrafficGateway{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   newGatewayClient(),
		logger:   logger.With().Str("component", "traffic_gateway").Logger(),
	}
}

type trafficAPIResponse struct {
	Incidents []struct {
		Severity    string    `json:"severity"`
		Description string    `json:"description"`
		Routes      string    `json:"routes"`
		StartsAt    time.Time `json:"starts_at"`
		EndsAt      time.Time `json:"ends_at"`
	} `json:"incidents"`
}

func (g *TrafficGateway) Fetch(ctx context.Context, region string) ([]models.TrafficUpdate, error) {
	q := url.Values{}
	q.Set("region", region)
	q.Set("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"/incidents?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("traffic api: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("traffic api: status %d", resp.StatusCode)
	}

	var payload trafficAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("traffic api: decode: %w", err)
	}

	updates := make([]models.TrafficUpdate, 0, len(payload.Incidents))
	for _, inc := range payload.Incidents {
		updates = append(updates, models.TrafficUpdate{
			ID:             uuid.NewString(),
			Region:         region,
			Severity:       models.TrafficSeverity(inc.Severity),
			Description:    inc.Description,
			AffectedRoutes: inc.Routes,
			StartsAt:       inc.StartsAt,
			EndsAt:         inc.EndsAt,
			Active:         true,
		})
	}
	return updates, nil
}

// SourceStore is the persistence slice the bulletin source needs.
type SourceStore interface {
	FetchWeather(ctx context.Context, location string) (*models.WeatherForecast, error)
	SaveWeather(ctx context.Context, forecast *models.WeatherForecast) error
	FetchNews(ctx context.Context, category string, limit int) ([]models.NewsArticle, error)
	ReplaceNews(ctx context.Context, category string, articles []models.NewsArticle) error
	FetchTraffic(ctx context.Context, region string) ([]models.TrafficUpdate, error)
	ReplaceTraffic(ctx context.Context, region string, updates []models.TrafficUpdate) error
	FetchAds(ctx context.Context) ([]models.Advertisement, error)
}

// Source resolves bulletin data: live API first, then whatever the
// store has cached. A nil gateway (no API key configured) reads the
// store directly.
type Source struct {
	weather *WeatherGateway
	news    *NewsGateway
	traffic *TrafficGateway
	store   SourceStore
	logger  zerolog.Logger
}

func NewSource(weather *WeatherGateway, news *NewsGateway, traffic *TrafficGateway,
	store SourceStore, logger zerolog.Logger) *Source {

	return &Source{
		weather: weather,
		news:    news,
		traffic: traffic,
		store:   store,
		logger:  logger.With().Str("component", "bulletin_source").Logger(),
	}
}

func (s *Source) Weather(ctx context.Context, location string) (*models.WeatherForecast, error) {
	if s.weather != nil {
		forecast, err := s.weather.Fetch(ctx, location)
		if err == nil {
			if saveErr := s.store.SaveWeather(ctx, forecast); saveErr != nil {
				s.logger.Warn().Err(saveErr).Msg("weather cache write failed")
			}
			return forecast, nil
		}
		s.logger.Warn().Err(err).Msg("weather api failed, using cached data")
	}
	return s.store.FetchWeather(ctx, location)
}

func (s *Source) News(ctx context.Context, category string, limit int) ([]models.NewsArticle, error) {
	if s.news != nil {
		articles, err := s.news.Fetch(ctx, category, limit)
		if err == nil && len(articles) > 0 {
			if saveErr := s.store.ReplaceNews(ctx, category, articles); saveErr != nil {
				s.logger.Warn().Err(saveErr).Msg("news cache write failed")
			}
			return articles, nil
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("news api failed, using cached data")
		}
	}
	return s.store.FetchNews(ctx, category, limit)
}

func (s *Source) Traffic(ctx context.Context, region string) ([]models.TrafficUpdate, error) {
	if s.traffic != nil {
		updates, err := s.traffic.Fetch(ctx, region)
		if err == nil {
			if saveErr := s.store.ReplaceTraffic(ctx, region, updates); saveErr != nil {
				s.logger.Warn().Err(saveErr).Msg("traffic cache write failed")
			}
			return updates, nil
		}
		s.logger.Warn().Err(err).Msg("traffic api failed, using cached data")
	}
	return s.store.FetchTraffic(ctx, region)
}

func (s *Source) Ads(ctx context.Context) ([]models.Advertisement, error) {
	return s.store.FetchAds(ctx)
}
