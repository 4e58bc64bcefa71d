package textgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/airwavefm/airwave/internal/models"
)

func testTrack() *models.Track {
	return &models.Track{
		ID:          "t-1",
		Title:       "Electric Sunset",
		Artist:      "Nova Drive",
		Genre:       "Synthwave",
		ReleaseDate: "2024-06-01",
	}
}

func TestTrackIntroPromptIncludesContext(t *testing.T) {
	prev := &models.Track{ID: "t-0", Title: "First Light", Artist: "Dawn Chorus"}
	prompt := trackIntroPrompt(testTrack(), prev)

	for _, want := range []string{"Electric Sunset", "Nova Drive", "Synthwave", "2024", "First Light"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q: %s", want, prompt)
		}
	}
}

func TestTemplateSelectionIsDeterministic(t *testing.T) {
	g := &TemplateGenerator{StationName: "Airwave FM"}
	ctx := context.Background()
	track := testTrack()

	first := g.TrackIntro(ctx, track, nil)
	second := g.TrackIntro(ctx, track, nil)
	if first != second {
		t.Errorf("same track produced different intros: %q vs %q", first, second)
	}
	if first == "" {
		t.Fatal("template intro is empty")
	}

	reply := g.ListenerReply(ctx, "hello from the night shift")
	if reply != g.ListenerReply(ctx, "hello from the night shift") {
		t.Error("same message produced different replies")
	}
}

func TestOpenRouterUsesAPIResponse(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Up next, a certified classic!  "}}]}`))
	}))
	defer server.Close()

	g := NewOpenRouter(OpenRouterConfig{
		Endpoint:    server.URL,
		APIKey:      "test-key",
		Model:       "test-model",
		StationName: "Airwave FM",
	}, zerolog.Nop())

	intro := g.TrackIntro(context.Background(), testTrack(), nil)
	if intro != "Up next, a certified classic!" {
		t.Errorf("TrackIntro() = %q", intro)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestOpenRouterFallsBackOnServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := NewOpenRouter(OpenRouterConfig{
		Endpoint:    server.URL,
		APIKey:      "test-key",
		Model:       "test-model",
		StationName: "Airwave FM",
	}, zerolog.Nop())

	intro := g.TrackIntro(context.Background(), testTrack(), nil)
	if intro == "" {
		t.Fatal("TrackIntro() returned empty text on backend failure")
	}

	reply := g.ListenerReply(context.Background(), "can you play some jazz?")
	if reply == "" {
		t.Fatal("ListenerReply() returned empty text on backend failure")
	}
}

func TestOpenRouterWithoutKeySkipsNetwork(t *testing.T) {
	g := NewOpenRouter(OpenRouterConfig{
		Endpoint:    "http://127.0.0.1:1", // Unreachable on purpose
		Model:       "test-model",
		StationName: "Airwave FM",
	}, zerolog.Nop())

	if text := g.Announcement(context.Background()); text == "" {
		t.Fatal("Announcement() returned empty text without API key")
	}
}
