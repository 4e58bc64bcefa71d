package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/config"
)

func TestNewServiceSelectsBackend(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name     string
		s3Bucket string
		wantS3   bool
	}{
		{name: "filesystem storage when no bucket", s3Bucket: "", wantS3: false},
		{name: "s3 storage when bucket configured", s3Bucket: "airwave-clips", wantS3: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				MediaRoot: t.TempDir(),
				BaseURL:   "http://localhost:8080",
				S3Bucket:  tt.s3Bucket,
				S3Region:  "us-east-1",
			}

			svc, err := NewService(cfg, logger)
			if err != nil {
				t.Fatalf("NewService() error = %v", err)
			}
			if svc.storage == nil {
				t.Fatal("NewService() storage is nil")
			}

			if tt.wantS3 {
				if _, ok := svc.storage.(*S3Storage); !ok {
					t.Errorf("NewService() storage type = %T, want *S3Storage", svc.storage)
				}
			} else {
				if _, ok := svc.storage.(*FilesystemStorage); !ok {
					t.Errorf("NewService() storage type = %T, want *FilesystemStorage", svc.storage)
				}
			}
		})
	}
}

func TestBuildClipPath(t *testing.T) {
	tests := []struct {
		name      string
		kind      string
		clipID    string
		extension string
		expected  string
	}{
		{
			name:      "standard path",
			kind:      "intro",
			clipID:    "abcd1234",
			extension: ".mp3",
			expected:  filepath.Join("intro", "ab", "abcd1234.mp3"),
		},
		{
			name:      "short clip id",
			kind:      "news",
			clipID:    "x",
			extension: ".mp3",
			expected:  filepath.Join("news", "x.mp3"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildClipPath(tt.kind, tt.clipID, tt.extension)
			if got != tt.expected {
				t.Errorf("buildClipPath() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFilesystemStorageRoundTrip(t *testing.T) {
	root := t.TempDir()
	fs := NewFilesystemStorage(root, "http://localhost:8080/", zerolog.Nop())
	ctx := context.Background()

	path, err := fs.Store(ctx, "intro", "deadbeef", strings.NewReader("audio-bytes"))
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, path))
	if err != nil {
		t.Fatalf("read stored clip: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Errorf("stored clip = %q, want %q", data, "audio-bytes")
	}

	url := fs.URL(path)
	if url != "http://localhost:8080/media/intro/de/deadbeef.mp3" {
		t.Errorf("URL() = %q", url)
	}

	if err := fs.Delete(ctx, path); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, path)); !os.IsNotExist(err) {
		t.Errorf("clip still exists after delete")
	}

	// Deleting a missing clip is not an error.
	if err := fs.Delete(ctx, path); err != nil {
		t.Errorf("Delete() on missing clip = %v", err)
	}
}

func TestFilesystemCheckAccess(t *testing.T) {
	fs := NewFilesystemStorage(t.TempDir(), "http://localhost:8080", zerolog.Nop())
	if err := fs.CheckAccess(context.Background()); err != nil {
		t.Errorf("CheckAccess() = %v", err)
	}

	missing := NewFilesystemStorage("/nonexistent/airwave-media", "http://localhost:8080", zerolog.Nop())
	if err := missing.CheckAccess(context.Background()); err == nil {
		t.Error("CheckAccess() on missing root should fail")
	}
}
