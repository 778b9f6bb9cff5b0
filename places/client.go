// Package places talks to the Google Maps web service for the admin
// placement flow: autocomplete, place details and reverse geocoding.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"sweetmap/models"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"
	// CountryRestriction limits autocomplete to Taiwan.
	CountryRestriction = "country:tw"
	// DefaultPhotoPath is where the API serves place photos without
	// exposing the provider key.
	DefaultPhotoPath = "/places/photo"
	photoMaxWidth    = 800
	photoMaxHeight   = 600
)

var ErrNoResults = errors.New("no results found")

type Prediction struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

type Place struct {
	PlaceID          string        `json:"placeId"`
	Name             string        `json:"name"`
	FormattedAddress string        `json:"formattedAddress"`
	Location         models.LatLng `json:"location"`
	Photos           []string      `json:"photos"`
}

type Client struct {
	apiKey     string
	baseURL    string
	language   string
	photoProxy string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpClient = h } }

func WithLanguage(lang string) Option { return func(c *Client) { c.language = lang } }

// WithPhotoProxy sets the URL PhotoURL points clients at, usually the
// public address of the photo route.
func WithPhotoProxy(u string) Option { return func(c *Client) { c.photoProxy = u } }

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		language:   "ja",
		photoProxy: DefaultPhotoPath,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if c.apiKey == "" {
		return errors.New("GOOGLE_MAPS_API_KEY not set")
	}
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps api returned HTTP %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(status, message string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS":
		return ErrNoResults
	}
	if message != "" {
		return fmt.Errorf("API error: %s (%s)", status, message)
	}
	return fmt.Errorf("API error: %s", status)
}

// Autocomplete returns place predictions for input inside Taiwan.
func (c *Client) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	var result struct {
		Predictions []struct {
			PlaceID     string `json:"place_id"`
			Description string `json:"description"`
		} `json:"predictions"`
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	params := url.Values{}
	params.Set("input", input)
	params.Set("components", CountryRestriction)
	if err := c.get(ctx, "/place/autocomplete/json", params, &result); err != nil {
		return nil, err
	}
	if err := checkStatus(result.Status, result.ErrorMessage); err != nil {
		if errors.Is(err, ErrNoResults) {
			return []Prediction{}, nil
		}
		return nil, err
	}
	out := make([]Prediction, 0, len(result.Predictions))
	for _, p := range result.Predictions {
		out = append(out, Prediction{PlaceID: p.PlaceID, Description: p.Description})
	}
	return out, nil
}

// Details looks up a place's name, location and photo URLs.
func (c *Client) Details(ctx context.Context, placeID string) (Place, error) {
	var result struct {
		Result struct {
			Name             string `json:"name"`
			FormattedAddress string `json:"formatted_address"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
			Photos []struct {
				PhotoReference string `json:"photo_reference"`
			} `json:"photos"`
		} `json:"result"`
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,geometry,photos,formatted_address")
	if err := c.get(ctx, "/place/details/json", params, &result); err != nil {
		return Place{}, err
	}
	if err := checkStatus(result.Status, result.ErrorMessage); err != nil {
		return Place{}, err
	}
	p := Place{
		PlaceID:          placeID,
		Name:             result.Result.Name,
		FormattedAddress: result.Result.FormattedAddress,
		Location:         models.LatLng{Lat: result.Result.Geometry.Location.Lat, Lng: result.Result.Geometry.Location.Lng},
		Photos:           make([]string, 0, len(result.Result.Photos)),
	}
	for _, ph := range result.Result.Photos {
		p.Photos = append(p.Photos, c.PhotoURL(ph.PhotoReference))
	}
	return p, nil
}

// PhotoURL is the client-facing URL of a place photo. It goes through the
// photo proxy so the provider key never leaves the server.
func (c *Client) PhotoURL(reference string) string {
	return c.photoProxy + "?ref=" + url.QueryEscape(reference)
}

// Photo fetches a place photo from the provider. The caller closes the body.
func (c *Client) Photo(ctx context.Context, reference string) (io.ReadCloser, string, error) {
	if c.apiKey == "" {
		return nil, "", errors.New("GOOGLE_MAPS_API_KEY not set")
	}
	params := url.Values{}
	params.Set("maxwidth", strconv.Itoa(photoMaxWidth))
	params.Set("maxheight", strconv.Itoa(photoMaxHeight))
	params.Set("photo_reference", reference)
	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/place/photo?"+params.Encode(), nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, "", ErrNoResults
	case resp.StatusCode != http.StatusOK:
		resp.Body.Close()
		return nil, "", fmt.Errorf("maps api returned HTTP %d", resp.StatusCode)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// Reverse resolves coordinates to the nearest formatted address.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (string, error) {
	var result struct {
		Results []struct {
			FormattedAddress string `json:"formatted_address"`
		} `json:"results"`
		Status       string `json:"status"`
		ErrorMessage string `json:"error_message"`
	}
	params := url.Values{}
	params.Set("latlng", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	if err := c.get(ctx, "/geocode/json", params, &result); err != nil {
		return "", err
	}
	if err := checkStatus(result.Status, result.ErrorMessage); err != nil {
		return "", err
	}
	if len(result.Results) == 0 {
		return "", ErrNoResults
	}
	return result.Results[0].FormattedAddress, nil
}
