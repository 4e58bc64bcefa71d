/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package schedule

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/airwavefm/airwave/internal/models"
)

// SeedStore is the store slice the seed loader writes through.
type SeedStore interface {
	SaveProgram(ctx context.Context, program *models.Program) error
	SaveTimeSlot(ctx context.Context, slot *models.TimeSlot) error
	SaveVoiceProfile(ctx context.Context, profile *models.VoiceProfile) error
}

type seedFile struct {
	VoiceProfiles []seedVoiceProfile `yaml:"voice_profiles"`
	Programs      []seedProgram      `yaml:"programs"`
	Schedule      []seedSlot         `yaml:"schedule"`
}

type seedVoiceProfile struct {
	Name        string `yaml:"name"`
	VoiceID     string `yaml:"voice_id"`
	Personality string `yaml:"personality"`
	Style       string `yaml:"style"`
	Active      bool   `yaml:"active"`
}

type seedProgram struct {
	Title       string `yaml:"title"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
}

type seedSlot struct {
	Program   string `yaml:"program"` // References a program by title
	DayOfWeek int    `yaml:"day_of_week"`
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
}

// Seed loads station programming from a YAML file. Slot entries
// reference programs by title; unknown references fail the load.
// Individual slot rejections (overlaps) are logged and skipped so one
// bad row doesn't block the rest of the grid.
func Seed(ctx context.Context, path string, store SeedStore, logger zerolog.Logger) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("seed: parse %s: %w", path, err)
	}

	log := logger.With().Str("component", "seed").Str("path", path).Logger()

	for _, vp := range file.VoiceProfiles {
		profile := &models.VoiceProfile{
			Name:        vp.Name,
			VoiceID:     vp.VoiceID,
			Personality: vp.Personality,
			Style:       vp.Style,
			Active:      vp.Active,
		}
		if err := store.SaveVoiceProfile(ctx, profile); err != nil {
			return fmt.Errorf("seed: voice profile %q: %w", vp.Name, err)
		}
	}

	programIDs := make(map[string]string, len(file.Programs))
	for _, p := range file.Programs {
		program := &models.Program{
			Type:        models.ProgramType(p.Type),
			Title:       p.Title,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Active:      true,
		}
		if err := store.SaveProgram(ctx, program); err != nil {
			return fmt.Errorf("seed: program %q: %w", p.Title, err)
		}
		programIDs[p.Title] = program.ID
	}

	seeded := 0
	for _, s := range file.Schedule {
		programID, ok := programIDs[s.Program]
		if !ok {
			return fmt.Errorf("seed: slot references unknown program %q", s.Program)
		}
		slot := &models.TimeSlot{
			ProgramID: programID,
			DayOfWeek: s.DayOfWeek,
			StartTime: s.Start,
			EndTime:   s.End,
			Active:    true,
		}
		if err := store.SaveTimeSlot(ctx, slot); err != nil {
			log.Warn().Err(err).Str("program", s.Program).Msg("slot skipped")
			continue
		}
		seeded++
	}

	log.Info().
		Int("voice_profiles", len(file.VoiceProfiles)).
		Int("programs", len(file.Programs)).
		Int("slots", seeded).
		Msg("seed loaded")
	return nil
}
