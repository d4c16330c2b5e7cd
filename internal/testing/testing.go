// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"

	"github.com/abray/moodfm/internal/models"
)

// MockRecommender is a test double for [services.Recommender]
type MockRecommender struct {
	Tracks []models.Track
}

func (m *MockRecommender) TracksForMood(ctx context.Context, mood string) []models.Track {
	if m.Tracks == nil {
		return []models.Track{}
	}
	return m.Tracks
}

func (m *MockRecommender) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
