package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abray/moodfm/internal/shared"
	internaltesting "github.com/abray/moodfm/internal/testing"
)

// newStubAPI starts a server that answers both the token exchange and the
// search call, and returns a SpotifyService pointed at it.
func newStubAPI(t *testing.T, searchStatus int, searchBody string) (*SpotifyService, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"stub-token","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer stub-token" {
			t.Errorf("expected bearer token on search request, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(searchStatus)
		fmt.Fprint(w, searchBody)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService("test_client_id", "test_client_secret", shared.NewLogger(nil))
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	srv.conf.TokenURL = server.URL + "/api/token"
	srv.baseURL = server.URL

	return srv, server
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService("test_client_id", "test_client_secret", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			if _, err := NewSpotifyService("", "test_client_secret", nil); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			if _, err := NewSpotifyService("test_client_id", "", nil); !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("TracksForMood", func(t *testing.T) {
		t.Run("Maps Search Results", func(t *testing.T) {
			body := `{"tracks":{"items":[
				{"name":"Sunny Side","artists":[{"name":"The Examples"}],"external_urls":{"spotify":"https://open.spotify.com/track/1"}},
				{"name":"Blue Hour","artists":[],"external_urls":{"spotify":"https://open.spotify.com/track/2"}}
			]}}`
			srv, server := newStubAPI(t, http.StatusOK, body)

			tracks := srv.TracksForMood(context.Background(), "happy")
			if len(tracks) != 2 {
				t.Fatalf("expected 2 tracks, got %d", len(tracks))
			}
			if tracks[0].Title != "Sunny Side" || tracks[0].Artist != "The Examples" {
				t.Errorf("unexpected first track: %+v", tracks[0])
			}
			if !strings.HasPrefix(tracks[0].URL, "https://open.spotify.com/") {
				t.Errorf("unexpected track url %q", tracks[0].URL)
			}
			if tracks[1].Artist != "" {
				t.Errorf("expected empty artist for item without artists, got %q", tracks[1].Artist)
			}

			_ = server
		})

		t.Run("Empty Mood", func(t *testing.T) {
			srv, _ := newStubAPI(t, http.StatusOK, `{"tracks":{"items":[]}}`)
			if tracks := srv.TracksForMood(context.Background(), ""); len(tracks) != 0 {
				t.Errorf("expected no tracks for empty mood, got %d", len(tracks))
			}
		})

		t.Run("Empty Result Set", func(t *testing.T) {
			srv, _ := newStubAPI(t, http.StatusOK, `{"tracks":{"items":[]}}`)
			tracks := srv.TracksForMood(context.Background(), "calm")
			if tracks == nil {
				t.Fatal("expected empty slice, got nil")
			}
			if len(tracks) != 0 {
				t.Errorf("expected 0 tracks, got %d", len(tracks))
			}
		})

		t.Run("Malformed Response", func(t *testing.T) {
			srv, _ := newStubAPI(t, http.StatusOK, `{"tracks":`)
			if tracks := srv.TracksForMood(context.Background(), "calm"); len(tracks) != 0 {
				t.Errorf("expected 0 tracks, got %d", len(tracks))
			}
		})

		t.Run("Non 2xx Search", func(t *testing.T) {
			srv, _ := newStubAPI(t, http.StatusTooManyRequests, `{"error":{"status":429}}`)
			if tracks := srv.TracksForMood(context.Background(), "calm"); len(tracks) != 0 {
				t.Errorf("expected 0 tracks, got %d", len(tracks))
			}
		})

		t.Run("Network Error", func(t *testing.T) {
			srv, err := NewSpotifyService("test_client_id", "test_client_secret", shared.NewLogger(nil))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}
			srv.httpClient = &http.Client{
				Transport: internaltesting.NewMockRoundTripper(nil, errors.New("connection refused")),
			}

			tracks := srv.TracksForMood(context.Background(), "stressed")
			if len(tracks) != 0 {
				t.Errorf("expected 0 tracks on network error, got %d", len(tracks))
			}
		})

		t.Run("Token Exchange Failure", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			}))
			t.Cleanup(server.Close)

			srv, err := NewSpotifyService("test_client_id", "bad_secret", shared.NewLogger(nil))
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}
			srv.conf.TokenURL = server.URL + "/api/token"
			srv.baseURL = server.URL

			if tracks := srv.TracksForMood(context.Background(), "sad"); len(tracks) != 0 {
				t.Errorf("expected 0 tracks on token failure, got %d", len(tracks))
			}
		})

		t.Run("Caps Result Count", func(t *testing.T) {
			var items []string
			for i := 0; i < maxTracks+3; i++ {
				items = append(items, fmt.Sprintf(`{"name":"Track %d","artists":[{"name":"A"}],"external_urls":{"spotify":"https://open.spotify.com/track/%d"}}`, i, i))
			}
			body := fmt.Sprintf(`{"tracks":{"items":[%s]}}`, strings.Join(items, ","))

			srv, _ := newStubAPI(t, http.StatusOK, body)
			tracks := srv.TracksForMood(context.Background(), "energetic")
			if len(tracks) != maxTracks {
				t.Errorf("expected %d tracks, got %d", maxTracks, len(tracks))
			}
		})
	})

	t.Run("Recommender Interface", func(t *testing.T) {
		srv, err := NewSpotifyService("test_client_id", "test_client_secret", nil)
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		var _ Recommender = srv
	})
}

func TestFallbackTracks(t *testing.T) {
	tracks := FallbackTracks()
	if len(tracks) != 1 {
		t.Fatalf("expected a single fallback track, got %d", len(tracks))
	}
	if tracks[0].Title != "Default Song" || tracks[0].Artist != "Unknown" {
		t.Errorf("unexpected fallback track: %+v", tracks[0])
	}
	if tracks[0].URL != "https://open.spotify.com/" {
		t.Errorf("unexpected fallback url: %s", tracks[0].URL)
	}
}
