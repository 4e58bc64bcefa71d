/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package store is the station's content gateway: tracks, programming,
// bulletins, listener messages and the activity feed. Reads degrade to
// built-in sample data so the station keeps broadcasting when the
// database is missing or unreachable.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/airwavefm/airwave/internal/cache"
	"github.com/airwavefm/airwave/internal/events"
	"github.com/airwavefm/airwave/internal/models"
)

// Store provides station content access with caching and mock fallback.
type Store struct {
	db     *gorm.DB // nil means mock-only mode
	cache  *cache.Cache
	bus    *events.Bus
	logger zerolog.Logger
}

// New creates a content store. db may be nil, in which case every read
// serves sample data and writes are dropped.
func New(db *gorm.DB, c *cache.Cache, bus *events.Bus, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		cache:  c,
		bus:    bus,
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// FetchTracks returns the playable catalog. Never returns an empty slice:
// a missing or empty catalog falls back to the sample tracks.
func (s *Store) FetchTracks(ctx context.Context) ([]models.Track, error) {
	if s.cache != nil {
		if tracks, ok := s.cache.GetTrackList(ctx); ok {
			return tracks, nil
		}
	}

	if s.db == nil {
		return mockTracks(), nil
	}

	var tracks []models.Track
	if err := s.db.WithContext(ctx).Order("created_at").Find(&tracks).Error; err != nil {
		s.logger.Warn().Err(err).Msg("track query failed, serving sample catalog")
		return mockTracks(), nil
	}
	if len(tracks) == 0 {
		return mockTracks(), nil
	}

	if s.cache != nil {
		_ = s.cache.SetTrackList(ctx, tracks)
	}
	return tracks, nil
}

// Track returns one track by ID, checking the catalog cache first.
func (s *Store) Track(ctx context.Context, id string) (*models.Track, error) {
	tracks, err := s.FetchTracks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tracks {
		if tracks[i].ID == id {
			return &tracks[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// CreateTrack inserts a track and invalidates the catalog cache.
func (s *Store) CreateTrack(ctx context.Context, track *models.Track) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}
	if track.ID == "" {
		track.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Create(track).Error; err != nil {
		return fmt.Errorf("create track: %w", err)
	}
	s.invalidateTracks(ctx)
	return nil
}

// UpdateTrack persists track changes and invalidates the catalog cache.
func (s *Store) UpdateTrack(ctx context.Context, track *models.Track) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}
	if err := s.db.WithContext(ctx).Save(track).Error; err != nil {
		return fmt.Errorf("update track: %w", err)
	}
	s.invalidateTracks(ctx)
	return nil
}

// DeleteTrack removes a track and invalidates the catalog cache.
func (s *Store) DeleteTrack(ctx context.Context, id string) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}
	if err := s.db.WithContext(ctx).Delete(&models.Track{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete track: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.InvalidateTrackList(ctx)
	}
	if s.bus != nil {
		s.bus.Publish(events.EventTrackDeleted, events.Payload{"id": id})
	}
	return nil
}

func (s *Store) invalidateTracks(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateTrackList(ctx)
	}
	if s.bus != nil {
		s.bus.Publish(events.EventTrackUpdated, events.Payload{})
	}
}

var errDatabaseUnavailable = errors.New("database unavailable")

// Schedule returns the resolved program slots for one weekday, ordered by
// start time.
func (s *Store) Schedule(ctx context.Context, dayOfWeek int) ([]cache.CachedSlot, error) {
	if s.cache != nil {
		if slots, ok := s.cache.GetDaySchedule(ctx, dayOfWeek); ok {
			return slots, nil
		}
	}

	if s.db == nil {
		return mockSchedule(dayOfWeek), nil
	}

	var timeSlots []models.TimeSlot
	if err := s.db.WithContext(ctx).
		Where("day_of_week = ? AND active", dayOfWeek).
		Order("start_time").
		Find(&timeSlots).Error; err != nil {
		s.logger.Warn().Err(err).Int("day", dayOfWeek).Msg("schedule query failed, serving sample schedule")
		return mockSchedule(dayOfWeek), nil
	}

	resolved := make([]cache.CachedSlot, 0, len(timeSlots))
	for _, slot := range timeSlots {
		var program models.Program
		if err := s.db.WithContext(ctx).First(&program, "id = ?", slot.ProgramID).Error; err != nil {
			continue
		}
		resolved = append(resolved, cache.CachedSlot{Slot: slot, Program: program})
	}

	if len(resolved) == 0 {
		return mockSchedule(dayOfWeek), nil
	}

	if s.cache != nil {
		_ = s.cache.SetDaySchedule(ctx, dayOfWeek, resolved)
	}
	return resolved, nil
}

// CurrentProgram resolves the program on air at the given time. Falls
// back to the sample program when nothing is scheduled.
func (s *Store) CurrentProgram(ctx context.Context, now time.Time) (*models.Program, error) {
	slots, err := s.Schedule(ctx, int(now.Weekday()))
	if err != nil {
		return nil, err
	}

	hhmm := now.Format("15:04")
	for _, entry := range slots {
		if entry.Slot.StartTime <= hhmm && hhmm < entry.Slot.EndTime {
			program := entry.Program
			return &program, nil
		}
	}

	program := mockProgram()
	return &program, nil
}

// SaveProgram upserts a program and invalidates the schedule cache.
func (s *Store) SaveProgram(ctx context.Context, program *models.Program) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Save(program).Error; err != nil {
		return fmt.Errorf("save program: %w", err)
	}
	s.invalidateSchedule(ctx)
	return nil
}

// DeleteProgram removes a program and its time slots, then invalidates
// the schedule cache.
func (s *Store) DeleteProgram(ctx context.Context, id string) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("program_id = ?", id).Delete(&models.TimeSlot{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Program{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.InvalidateSchedule(ctx)
	}
	if s.bus != nil {
		s.bus.Publish(events.EventProgramDeleted, events.Payload{"id": id})
	}
	return nil
}

// SaveTimeSlot upserts a time slot and invalidates the schedule cache.
// Overlap with an existing active slot on the same day is rejected.
func (s *Store) SaveTimeSlot(ctx context.Context, slot *models.TimeSlot) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}
	if slot.EndTime <= slot.StartTime {
		return fmt.Errorf("time slot end %q must be after start %q", slot.EndTime, slot.StartTime)
	}
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}

	var overlapping int64
	if err := s.db.WithContext(ctx).Model(&models.TimeSlot{}).
		Where("day_of_week = ? AND active AND id <> ? AND start_time < ? AND ? < end_time",
			slot.DayOfWeek, slot.ID, slot.EndTime, slot.StartTime).
		Count(&overlapping).Error; err != nil {
		return fmt.Errorf("check slot overlap: %w", err)
	}
	if overlapping > 0 {
		return fmt.Errorf("time slot %s-%s overlaps an existing slot on day %d",
			slot.StartTime, slot.EndTime, slot.DayOfWeek)
	}

	if err := s.db.WithContext(ctx).Save(slot).Error; err != nil {
		return fmt.Errorf("save time slot: %w", err)
	}
	s.invalidateSchedule(ctx)
	return nil
}

func (s *Store) invalidateSchedule(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateSchedule(ctx)
	}
	if s.bus != nil {
		s.bus.Publish(events.EventScheduleUpdated, events.Payload{})
	}
}

// ActiveVoiceProfile returns the preferred DJ persona. Falls back to the
// built-in persona when none is configured.
func (s *Store) ActiveVoiceProfile(ctx context.Context) (*models.VoiceProfile, error) {
	if s.db == nil {
		profile := mockVoiceProfile()
		return &profile, nil
	}

	var profile models.VoiceProfile
	err := s.db.WithContext(ctx).Where("active").Order("updated_at DESC").First(&profile).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Msg("voice profile query failed, using built-in persona")
		}
		fallback := mockVoiceProfile()
		return &fallback, nil
	}
	return &profile, nil
}

// SaveVoiceProfile upserts a DJ persona.
func (s *Store) SaveVoiceProfile(ctx context.Context, profile *models.VoiceProfile) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return fmt.Errorf("save voice profile: %w", err)
	}
	if s.bus != nil {
		s.bus.Publish(events.EventVoiceUpdated, events.Payload{"id": profile.ID})
	}
	return nil
}

// FetchAds returns the active sponsor rotation, sample ads when empty.
func (s *Store) FetchAds(ctx context.Context) ([]models.Advertisement, error) {
	if s.cache != nil {
		if ads, ok := s.cache.GetAdList(ctx); ok {
			return ads, nil
		}
	}

	if s.db == nil {
		return mockAdvertisements(), nil
	}

	var ads []models.Advertisement
	if err := s.db.WithContext(ctx).Where("active").Find(&ads).Error; err != nil {
		s.logger.Warn().Err(err).Msg("ad query failed, serving sample ads")
		return mockAdvertisements(), nil
	}
	if len(ads) == 0 {
		return mockAdvertisements(), nil
	}

	if s.cache != nil {
		_ = s.cache.SetAdList(ctx, ads)
	}
	return ads, nil
}

// SaveAdvertisement upserts an ad and invalidates the rotation cache.
func (s *Store) SaveAdvertisement(ctx context.Context, ad *models.Advertisement) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}
	if ad.ID == "" {
		ad.ID = uuid.NewString()
	}
	if err := s.db.WithContext(ctx).Save(ad).Error; err != nil {
		return fmt.Errorf("save advertisement: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.InvalidateAdList(ctx)
	}
	return nil
}

// FetchNews returns recent headlines for a category, newest first.
func (s *Store) FetchNews(ctx context.Context, category string, limit int) ([]models.NewsArticle, error) {
	if s.cache != nil {
		if articles, ok := s.cache.GetNews(ctx, category); ok {
			return articles, nil
		}
	}

	if s.db == nil {
		return mockNews(category), nil
	}

	q := s.db.WithContext(ctx).Where("active").Order("published_at DESC").Limit(limit)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var articles []models.NewsArticle
	if err := q.Find(&articles).Error; err != nil {
		s.logger.Warn().Err(err).Str("category", category).Msg("news query failed, serving sample headlines")
		return mockNews(category), nil
	}
	if len(articles) == 0 {
		return mockNews(category), nil
	}

	if s.cache != nil {
		_ = s.cache.SetNews(ctx, category, articles)
	}
	return articles, nil
}

// ReplaceNews swaps the stored headlines for a category.
func (s *Store) ReplaceNews(ctx context.Context, category string, articles []models.NewsArticle) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category = ?", category).Delete(&models.NewsArticle{}).Error; err != nil {
			return err
		}
		for i := range articles {
			if articles[i].ID == "" {
				articles[i].ID = uuid.NewString()
			}
			articles[i].Category = category
			articles[i].Active = true
		}
		if len(articles) == 0 {
			return nil
		}
		return tx.Create(&articles).Error
	})
	if err != nil {
		return fmt.Errorf("replace news: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetNews(ctx, category, articles)
	}
	return nil
}

// FetchTraffic returns active incidents for a region, worst first.
func (s *Store) FetchTraffic(ctx context.Context, region string) ([]models.TrafficUpdate, error) {
	if s.cache != nil {
		if updates, ok := s.cache.GetTraffic(ctx, region); ok {
			return updates, nil
		}
	}

	if s.db == nil {
		return mockTraffic(region), nil
	}

	var updates []models.TrafficUpdate
	if err := s.db.WithContext(ctx).
		Where("region = ? AND active", region).
		Order("created_at DESC").
		Find(&updates).Error; err != nil {
		s.logger.Warn().Err(err).Str("region", region).Msg("traffic query failed, serving sample incidents")
		return mockTraffic(region), nil
	}
	if len(updates) == 0 {
		return mockTraffic(region), nil
	}

	if s.cache != nil {
		_ = s.cache.SetTraffic(ctx, region, updates)
	}
	return updates, nil
}

// ReplaceTraffic swaps the stored incidents for a region.
func (s *Store) ReplaceTraffic(ctx context.Context, region string, updates []models.TrafficUpdate) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("region = ?", region).Delete(&models.TrafficUpdate{}).Error; err != nil {
			return err
		}
		for i := range updates {
			if updates[i].ID == "" {
				updates[i].ID = uuid.NewString()
			}
			updates[i].Region = region
			updates[i].Active = true
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Create(&updates).Error
	})
	if err != nil {
		return fmt.Errorf("replace traffic: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetTraffic(ctx, region, updates)
	}
	return nil
}

// FetchWeather returns the stored forecast for a location, sample
// conditions when none exists.
func (s *Store) FetchWeather(ctx context.Context, location string) (*models.WeatherForecast, error) {
	if s.cache != nil {
		if forecast, ok := s.cache.GetWeather(ctx, location); ok {
			return forecast, nil
		}
	}

	if s.db == nil {
		forecast := mockWeather(location)
		return &forecast, nil
	}

	var forecast models.WeatherForecast
	err := s.db.WithContext(ctx).Where("location = ?", location).Order("updated_at DESC").First(&forecast).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("location", location).Msg("weather query failed, serving sample forecast")
		}
		fallback := mockWeather(location)
		return &fallback, nil
	}

	if s.cache != nil {
		_ = s.cache.SetWeather(ctx, &forecast)
	}
	return &forecast, nil
}

// SaveWeather upserts the forecast for a location and refreshes the cache.
func (s *Store) SaveWeather(ctx context.Context, forecast *models.WeatherForecast) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location = ?", forecast.Location).Delete(&models.WeatherForecast{}).Error; err != nil {
			return err
		}
		if forecast.ID == "" {
			forecast.ID = uuid.NewString()
		}
		return tx.Create(forecast).Error
	})
	if err != nil {
		return fmt.Errorf("save weather: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.SetWeather(ctx, forecast)
	}
	return nil
}

// SaveContentItem appends an entry to the activity feed. Feed writes are
// best-effort: with no database the entry is only broadcast.
func (s *Store) SaveContentItem(ctx context.Context, item *models.ContentItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = time.Now()
	}

	if s.bus != nil {
		s.bus.Publish(events.EventContentItem, events.Payload{
			"id":      item.ID,
			"type":    string(item.Type),
			"content": item.Content,
			"title":   item.Title,
			"artist":  item.Artist,
		})
	}

	if s.db == nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		s.logger.Warn().Err(err).Str("type", string(item.Type)).Msg("content item write failed")
		return nil
	}
	return nil
}

// RecentContentItems returns the newest feed entries, newest first.
func (s *Store) RecentContentItems(ctx context.Context, limit int) ([]models.ContentItem, error) {
	if s.db == nil {
		return []models.ContentItem{}, nil
	}

	var items []models.ContentItem
	if err := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&items).Error; err != nil {
		s.logger.Warn().Err(err).Msg("content feed query failed")
		return []models.ContentItem{}, nil
	}
	return items, nil
}

// SaveUserMessage records a listener interaction.
func (s *Store) SaveUserMessage(ctx context.Context, msg *models.UserMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if s.db == nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		s.logger.Warn().Err(err).Msg("user message write failed")
		return nil
	}
	return nil
}

// MarkMessageProcessed attaches the DJ response to a stored message.
func (s *Store) MarkMessageProcessed(ctx context.Context, id, response string) error {
	if s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Model(&models.UserMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{"processed": true, "response": response}).Error
}

// SavePlayHistory records an executed playback.
func (s *Store) SavePlayHistory(ctx context.Context, entry *models.PlayHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if s.db == nil {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		s.logger.Warn().Err(err).Msg("play history write failed")
		return nil
	}
	return nil
}

// RecentPlays returns the latest play history entries, newest first.
func (s *Store) RecentPlays(ctx context.Context, limit int) ([]models.PlayHistory, error) {
	if s.db == nil {
		return []models.PlayHistory{}, nil
	}

	var plays []models.PlayHistory
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&plays).Error; err != nil {
		return nil, fmt.Errorf("play history query: %w", err)
	}
	return plays, nil
}

// AdminByEmail returns the operator account for an email address.
func (s *Store) AdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	if s.db == nil {
		return nil, errDatabaseUnavailable
	}

	var admin models.AdminUser
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// CreateAdmin inserts an operator account.
func (s *Store) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	if s.db == nil {
		return errDatabaseUnavailable
	}
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(admin).Error
}
