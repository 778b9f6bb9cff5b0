package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"sweetmap/middleware"
	"sweetmap/places"
	apierrors "sweetmap/utils/errors"
)

type PlacesClient interface {
	Autocomplete(ctx context.Context, input string) ([]places.Prediction, error)
	Details(ctx context.Context, placeID string) (places.Place, error)
	Reverse(ctx context.Context, lat, lng float64) (string, error)
	Photo(ctx context.Context, reference string) (io.ReadCloser, string, error)
}

// PlacesHandler proxies the maps provider for the admin placement flow.
type PlacesHandler struct {
	client PlacesClient
}

func NewPlacesHandler(client PlacesClient) *PlacesHandler {
	return &PlacesHandler{client: client}
}

func placesError(err error) error {
	if errors.Is(err, places.ErrNoResults) {
		return apierrors.ErrNotFound
	}
	return apierrors.Wrap(err, "PLACES_ERROR", "Maps provider request failed", http.StatusBadGateway)
}

func (h *PlacesHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	input := strings.TrimSpace(r.URL.Query().Get("input"))
	if input == "" {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	preds, err := h.client.Autocomplete(r.Context(), input)
	if err != nil {
		middleware.WriteError(w, placesError(err))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"predictions": preds})
}

func (h *PlacesHandler) Details(w http.ResponseWriter, r *http.Request) {
	place, err := h.client.Details(r.Context(), mux.Vars(r)["placeID"])
	if err != nil {
		middleware.WriteError(w, placesError(err))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, place)
}

func (h *PlacesHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	addr, err := h.client.Reverse(r.Context(), lat, lng)
	if err != nil {
		middleware.WriteError(w, placesError(err))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"formattedAddress": addr})
}

// Photo streams a place photo so clients never see the provider key. It is
// public because picked photos end up as store images.
func (h *PlacesHandler) Photo(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if ref == "" {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	body, contentType, err := h.client.Photo(r.Context(), ref)
	if err != nil {
		middleware.WriteError(w, placesError(err))
		return
	}
	defer body.Close()
	if contentType == "" {
		contentType = "image/jpeg"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}
