// package services defines interface Recommender for mood-keyed playlist
// suggestions backed by an external HTTP API
package services

import (
	"context"

	"github.com/abray/moodfm/internal/models"
)

// Recommender turns a mood keyword into a list of track suggestions.
type Recommender interface {
	// TracksForMood searches the backing service for tracks matching the
	// mood keyword. Any failure degrades to an empty slice; callers decide
	// whether to substitute fallback content.
	TracksForMood(ctx context.Context, mood string) []models.Track

	// Name returns the name of the backing service (e.g. "Spotify")
	Name() string
}

// FallbackTracks returns the static playlist shown when the recommender
// produces nothing. Handlers pair it with a user-visible notice.
func FallbackTracks() []models.Track {
	return []models.Track{
		{Title: "Default Song", Artist: "Unknown", URL: "https://open.spotify.com/"},
	}
}
