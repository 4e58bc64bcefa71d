/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package db

import (
	"fmt"

	"github.com/airwavefm/airwave/internal/models"
	"gorm.io/gorm"
)

// Migrate applies database schema migrations using GORM auto-migrate.
func Migrate(database *gorm.DB) error {
	if err := database.AutoMigrate(
		// Catalog
		&models.Track{},
		&models.VoiceProfile{},
		&models.Advertisement{},

		// Activity feed and listener interaction
		&models.ContentItem{},
		&models.UserMessage{},
		&models.PlayHistory{},

		// Bulletin sources
		&models.NewsArticle{},
		&models.TrafficUpdate{},
		&models.WeatherForecast{},

		// Programming guide
		&models.Program{},
		&models.TimeSlot{},

		// Operators
		&models.AdminUser{},
	); err != nil {
		return err
	}

	if err := applyPostgresSlotOverlapGuard(database); err != nil {
		return err
	}

	return nil
}

// applyPostgresSlotOverlapGuard rejects overlapping time slots on the same
// weekday at the database level. Other backends rely on the API validation.
func applyPostgresSlotOverlapGuard(database *gorm.DB) error {
	if database.Dialector.Name() != "postgres" {
		return nil
	}

	stmt := `
CREATE OR REPLACE FUNCTION prevent_time_slot_overlap()
RETURNS trigger
LANGUAGE plpgsql
AS $$
BEGIN
  IF NEW.end_time <= NEW.start_time THEN
    RAISE EXCEPTION 'time slot end must be after start'
      USING ERRCODE = '23514';
  END IF;

  IF EXISTS (
    SELECT 1
    FROM time_slots ts
    WHERE ts.day_of_week = NEW.day_of_week
      AND ts.id <> NEW.id
      AND ts.active
      AND ts.start_time < NEW.end_time
      AND NEW.start_time < ts.end_time
  ) THEN
    RAISE EXCEPTION 'overlapping time slots are not allowed on day %', NEW.day_of_week
      USING ERRCODE = '23514';
  END IF;

  RETURN NEW;
END;
$$;

DROP TRIGGER IF EXISTS trg_prevent_time_slot_overlap ON time_slots;

CREATE TRIGGER trg_prevent_time_slot_overlap
BEFORE INSERT OR UPDATE OF day_of_week, start_time, end_time
ON time_slots
FOR EACH ROW
EXECUTE FUNCTION prevent_time_slot_overlap();
`
	if err := database.Exec(stmt).Error; err != nil {
		return fmt.Errorf("apply postgres slot overlap guard: %w", err)
	}

	return nil
}
