// README: Destination resolver backed by Google Places text search.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// Place represents a simplified location result.
type Place struct {
	Name    string
	Address string
	PlaceID string
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
}

// NewPlacesService creates a new PlacesService with the given API Key.
func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// Resolve turns a free-text destination from a travel query into the top
// matching place's canonical name. Used best effort by the ask service; an
// empty result set is an error so callers fall back to the raw text.
func (s *PlacesService) Resolve(ctx context.Context, name string) (string, error) {
	place, err := s.Search(ctx, name)
	if err != nil {
		return "", err
	}
	return place.Name, nil
}

// Search returns the top place matching the query.
func (s *PlacesService) Search(ctx context.Context, query string) (*Place, error) {
	resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Language: "en",
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("no place found for %q", query)
	}

	top := resp.Results[0]
	return &Place{
		Name:    top.Name,
		Address: top.FormattedAddress,
		PlaceID: top.PlaceID,
	}, nil
}
