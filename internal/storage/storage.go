/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package storage persists synthesized speech clips and other generated media.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/config"
)

// Storage interface abstracts file storage operations.
type Storage interface {
	Store(ctx context.Context, kind, clipID string, file io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
	CheckAccess(ctx context.Context) error
}

// Service manages generated media storage.
type Service struct {
	storage Storage
	logger  zerolog.Logger
}

// NewService creates a storage service using filesystem or S3 backend based on config.
func NewService(cfg *config.Config, logger zerolog.Logger) (*Service, error) {
	var backend Storage

	if cfg.S3Bucket != "" {
		s3cfg := S3Config{
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
			UsePathStyle:    cfg.S3UsePathStyle,
		}

		if s3cfg.AccessKeyID == "" || s3cfg.SecretAccessKey == "" {
			logger.Warn().Msg("S3 credentials not configured, some operations may fail")
		}

		s3Storage, err := NewS3Storage(context.Background(), s3cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		backend = s3Storage
	} else {
		backend = NewFilesystemStorage(cfg.MediaRoot, cfg.BaseURL, logger)
	}

	return &Service{
		storage: backend,
		logger:  logger,
	}, nil
}

// Store saves a generated clip and returns the storage path.
func (s *Service) Store(ctx context.Context, kind, clipID string, file io.Reader) (string, error) {
	path, err := s.storage.Store(ctx, kind, clipID, file)
	if err != nil {
		s.logger.Error().Err(err).
			Str("kind", kind).
			Str("clip_id", clipID).
			Msg("clip store failed")
		return "", fmt.Errorf("store clip: %w", err)
	}

	s.logger.Debug().
		Str("kind", kind).
		Str("clip_id", clipID).
		Str("path", path).
		Msg("clip stored")

	return path, nil
}

// Delete removes a clip from storage.
func (s *Service) Delete(ctx context.Context, path string) error {
	if err := s.storage.Delete(ctx, path); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("clip delete failed")
		return fmt.Errorf("delete clip: %w", err)
	}
	return nil
}

// URL returns the accessible URL for a stored clip.
func (s *Service) URL(path string) string {
	return s.storage.URL(path)
}

// CheckStorageAccess verifies that the storage backend is accessible.
func (s *Service) CheckStorageAccess() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.storage.CheckAccess(ctx)
}

// buildClipPath constructs a hierarchical storage path for a generated clip.
func buildClipPath(kind, clipID, extension string) string {
	// Structure: kind/clip_id[0:2]/clip_id.ext — keeps any one directory small.
	if len(clipID) < 2 {
		return filepath.Join(kind, clipID+extension)
	}
	return filepath.Join(kind, clipID[0:2], clipID+extension)
}
