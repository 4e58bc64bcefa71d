/*
Copyright (C) 2026 Airwave FM

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// FilesystemStorage implements Storage using local filesystem.
type FilesystemStorage struct {
	rootDir string
	baseURL string
	logger  zerolog.Logger
}

// NewFilesystemStorage creates a filesystem-based storage backend.
// Stored clips are served under baseURL+"/media/".
func NewFilesystemStorage(rootDir, baseURL string, logger zerolog.Logger) *FilesystemStorage {
	return &FilesystemStorage{
		rootDir: rootDir,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Store saves a clip to the local filesystem.
func (fs *FilesystemStorage) Store(ctx context.Context, kind, clipID string, file io.Reader) (string, error) {
	relativePath := buildClipPath(kind, clipID, ".mp3")
	fullPath := filepath.Join(fs.rootDir, relativePath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create directories: %w", err)
	}

	dest, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dest.Close()

	if _, err := io.Copy(dest, file); err != nil {
		os.Remove(fullPath) // Clean up on failure
		return "", fmt.Errorf("write file: %w", err)
	}

	fs.logger.Debug().
		Str("path", fullPath).
		Str("kind", kind).
		Str("clip_id", clipID).
		Msg("filesystem storage: clip stored")

	// Relative path goes in the database; the media root is joined on read.
	return relativePath, nil
}

// Delete removes a clip from the filesystem.
func (fs *FilesystemStorage) Delete(ctx context.Context, path string) error {
	fullPath := filepath.Join(fs.rootDir, path)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}

	fs.logger.Debug().Str("path", fullPath).Msg("filesystem storage: clip deleted")
	return nil
}

// URL returns the public URL for a stored clip.
func (fs *FilesystemStorage) URL(path string) string {
	return fs.baseURL + "/media/" + filepath.ToSlash(path)
}

// CheckAccess verifies the storage directory exists and is accessible.
func (fs *FilesystemStorage) CheckAccess(ctx context.Context) error {
	info, err := os.Stat(fs.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("media root directory does not exist: %s", fs.rootDir)
		}
		return fmt.Errorf("cannot access media root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("media root is not a directory: %s", fs.rootDir)
	}
	return nil
}
