// Spotify implementation of [Recommender]
//
// Uses the OAuth2 client-credentials grant; no user-specific authorization
// is involved. Response shapes based on
// https://developer.spotify.com/documentation/web-api/reference/search
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/abray/moodfm/internal/models"
	"github.com/abray/moodfm/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// searchQualifier is appended to the mood keyword to bias search
	// results toward playlists and tracks tagged by feel.
	searchQualifier = " mood"

	// maxTracks bounds how many result items are mapped onto the page.
	maxTracks = 12
)

// searchResponse mirrors the slice of the search payload we render.
type searchResponse struct {
	Tracks struct {
		Items []searchItem `json:"items"`
	} `json:"tracks"`
}

type searchItem struct {
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// SpotifyService implements [Recommender] against the Spotify Web API.
//
// A bearer token is exchanged per call rather than cached; the extra round
// trip is acceptable at this traffic level and keeps the client stateless.
type SpotifyService struct {
	conf       *clientcredentials.Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	baseURL    string
}

// NewSpotifyService creates a new Spotify recommender with the given
// client-credentials pair. Fails fast when either half is missing so the
// caller can surface a clear configuration message.
func NewSpotifyService(clientID, clientSecret string, logger *log.Logger) (*SpotifyService, error) {
	if clientID == "" {
		return nil, fmt.Errorf("missing client id: %w", shared.ErrMissingCredentials)
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("missing client secret: %w", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		conf:       conf,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
		logger:     logger,
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// TracksForMood obtains a bearer token and searches for tracks matching the
// mood keyword. Every failure mode, from the token exchange to a malformed
// payload, degrades to an empty slice; a token failure and a search failure
// are indistinguishable to the caller.
func (s *SpotifyService) TracksForMood(ctx context.Context, mood string) []models.Track {
	if mood == "" {
		return []models.Track{}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Warn("rate limiter interrupted", "err", err)
		return []models.Track{}
	}

	// Route the token exchange through the same client as the search call
	// so both share transport configuration.
	tokenCtx := context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.conf.Token(tokenCtx)
	if err != nil {
		s.logger.Warn("spotify token exchange failed", "err", err)
		return []models.Track{}
	}

	query := url.Values{}
	query.Set("q", mood+searchQualifier)
	query.Set("type", "track")
	query.Set("limit", fmt.Sprint(maxTracks))

	endpoint := fmt.Sprintf("%s/search?%s", s.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		s.logger.Warn("failed to build search request", "err", err)
		return []models.Track{}
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("spotify search request failed", "err", err)
		return []models.Track{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("spotify search returned non-2xx", "status", resp.StatusCode)
		return []models.Track{}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		s.logger.Warn("failed to decode search response", "err", err)
		return []models.Track{}
	}

	tracks := []models.Track{}
	for _, item := range payload.Tracks.Items {
		if item.Name == "" {
			continue
		}

		track := models.Track{
			Title: item.Name,
			URL:   item.ExternalURLs.Spotify,
		}
		if len(item.Artists) > 0 {
			track.Artist = item.Artists[0].Name
		}

		tracks = append(tracks, track)
		if len(tracks) == maxTracks {
			break
		}
	}

	return tracks
}
