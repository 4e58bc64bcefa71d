package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/config"
	"github.com/airwavefm/airwave/internal/storage"
)

func testStorage(t *testing.T) *storage.Service {
	t.Helper()
	svc, err := storage.NewService(&config.Config{
		MediaRoot: t.TempDir(),
		BaseURL:   "http://localhost:8080",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("storage.NewService() error = %v", err)
	}
	return svc
}

func TestSynthesizeSkipsWithoutCredentials(t *testing.T) {
	s := NewElevenLabs(ElevenLabsConfig{
		Endpoint: "http://127.0.0.1:1",
		VoiceID:  "voice-1",
	}, testStorage(t), zerolog.Nop())

	if url := s.Synthesize(context.Background(), "hello listeners", "intro"); url != "" {
		t.Errorf("Synthesize() without key = %q, want empty", url)
	}
}

func TestSynthesizeStoresClip(t *testing.T) {
	var gotKey, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	s := NewElevenLabs(ElevenLabsConfig{
		Endpoint: server.URL,
		APIKey:   "xi-key",
		VoiceID:  "voice-1",
	}, testStorage(t), zerolog.Nop())

	url := s.Synthesize(context.Background(), "up next, a classic", "intro")
	if !strings.HasPrefix(url, "http://localhost:8080/media/intro/") {
		t.Errorf("Synthesize() = %q, want stored clip URL", url)
	}
	if gotKey != "xi-key" {
		t.Errorf("xi-api-key = %q", gotKey)
	}
	if gotPath != "/text-to-speech/voice-1" {
		t.Errorf("request path = %q", gotPath)
	}
}

func TestSynthesizeFallsBackOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewElevenLabs(ElevenLabsConfig{
		Endpoint:    server.URL,
		APIKey:      "xi-key",
		VoiceID:     "voice-1",
		FallbackURL: "https://cdn.example.com/fallback.mp3",
	}, testStorage(t), zerolog.Nop())

	url := s.Synthesize(context.Background(), "weather coming up", "weather")
	if url != "https://cdn.example.com/fallback.mp3" {
		t.Errorf("Synthesize() = %q, want fallback clip", url)
	}
}

func TestSynthesizeDefaultsFallbackURL(t *testing.T) {
	s := NewElevenLabs(ElevenLabsConfig{
		Endpoint: "http://127.0.0.1:1", // Connection refused
		APIKey:   "xi-key",
		VoiceID:  "voice-1",
	}, testStorage(t), zerolog.Nop())

	url := s.Synthesize(context.Background(), "news time", "news")
	if url != DefaultFallbackClipURL {
		t.Errorf("Synthesize() = %q, want default fallback", url)
	}
}

func TestSetVoiceSwitchesSynthesisVoice(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	s := NewElevenLabs(ElevenLabsConfig{
		Endpoint: server.URL,
		APIKey:   "xi-key",
		VoiceID:  "voice-1",
	}, testStorage(t), zerolog.Nop())

	s.SetVoice("voice-2")
	if got := s.Voice(); got != "voice-2" {
		t.Fatalf("Voice() = %q after SetVoice, want voice-2", got)
	}

	s.Synthesize(context.Background(), "and now for something new", "intro")
	if gotPath != "/text-to-speech/voice-2" {
		t.Errorf("request path = %q, want the switched voice", gotPath)
	}

	// Blank IDs never clobber the active voice.
	s.SetVoice("")
	if got := s.Voice(); got != "voice-2" {
		t.Errorf("Voice() = %q after blank SetVoice, want voice-2", got)
	}
}
