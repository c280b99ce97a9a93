package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcloughlin/geohash"
)

const (
	googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

	// ~38m cells: alerts raised within the same cell share one lookup.
	addressCachePrecision = 8
)

// Geocoder reverse-geocodes coordinates with the Google Maps Geocoding API.
type Geocoder struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *AddressCache
}

type googleGeocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

func NewGeocoder(apiKey string, cache *AddressCache) *Geocoder {
	return &Geocoder{
		apiKey:  apiKey,
		baseURL: googleGeocodeURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		cache:   cache,
	}
}

// ReverseGeocode returns the formatted address closest to lat/lng.
func (g *Geocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	key := geohash.EncodeWithPrecision(lat, lng, addressCachePrecision)
	if g.cache != nil {
		if address, ok := g.cache.Get(key); ok {
			return address, nil
		}
	}

	params := url.Values{}
	params.Add("latlng", fmt.Sprintf("%f,%f", lat, lng))
	params.Add("key", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status code %d", resp.StatusCode)
	}

	var result googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Status != "OK" {
		return "", fmt.Errorf("geocoding API returned status: %s %s", result.Status, result.ErrorMessage)
	}
	if len(result.Results) == 0 {
		return "", fmt.Errorf("no results found")
	}

	address := result.Results[0].FormattedAddress
	if g.cache != nil {
		g.cache.Set(key, address)
	}
	return address, nil
}
