package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"sweetmap/filter"
	"sweetmap/livedata"
	"sweetmap/middleware"
	"sweetmap/models"
	"sweetmap/services"
	apierrors "sweetmap/utils/errors"
)

const defaultNearbyRadiusKm = 2.0

// Catalog is the live, read-only view of stores and genres.
type Catalog interface {
	Snapshot() livedata.Snapshot
	Store(id string) (models.Store, bool)
	Ready() bool
}

type NearbyFinder interface {
	Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]services.NearbyStore, error)
}

type StoreHandler struct {
	catalog Catalog
	stores  *services.StoreService
	geo     NearbyFinder
}

// StoreResponse is a store plus what a client needs to draw and link it.
type StoreResponse struct {
	models.Store
	Marker        models.MarkerAppearance `json:"marker"`
	GenreNames    []string                `json:"genreNames"`
	DirectionsURL string                  `json:"directionsUrl"`
	EmbedURLs     []string                `json:"embedUrls"`
}

type StoreListResponse struct {
	Stores []StoreResponse `json:"stores"`
	Count  int             `json:"count"`
}

type NearbyStoresResponse struct {
	NearbyStores []services.NearbyStore `json:"nearbyStores"`
	Count        int                    `json:"count"`
	Lat          float64                `json:"lat"`
	Lng          float64                `json:"lng"`
	RadiusKm     float64                `json:"radiusKm"`
}

func NewStoreHandler(catalog Catalog, stores *services.StoreService, geo NearbyFinder) *StoreHandler {
	return &StoreHandler{catalog: catalog, stores: stores, geo: geo}
}

func toStoreResponse(s models.Store, genres []models.Genre) StoreResponse {
	embeds := make([]string, len(s.Videos))
	for i, v := range s.Videos {
		embeds[i] = models.EmbedURL(v)
	}
	return StoreResponse{
		Store:         s,
		Marker:        models.AppearanceFor(s, genres),
		GenreNames:    models.GenreLabels(s.Genres, genres),
		DirectionsURL: s.DirectionsURL(),
		EmbedURLs:     embeds,
	}
}

// splitList parses "a,b,,c" into [a b c].
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Ready() {
		middleware.WriteError(w, apierrors.ErrLoading)
		return
	}
	snap := h.catalog.Snapshot()
	eligible := filter.ByGenres(snap.Stores, splitList(r.URL.Query().Get("genres")))

	resp := StoreListResponse{Stores: make([]StoreResponse, 0, len(eligible)), Count: len(eligible)}
	for _, s := range eligible {
		resp.Stores = append(resp.Stores, toStoreResponse(s, snap.Genres))
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

func (h *StoreHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	if !h.catalog.Ready() {
		middleware.WriteError(w, apierrors.ErrLoading)
		return
	}
	s, ok := h.catalog.Store(mux.Vars(r)["id"])
	if !ok {
		middleware.WriteError(w, apierrors.ErrNotFound)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, toStoreResponse(s, h.catalog.Snapshot().Genres))
}

func (h *StoreHandler) GetNearbyStores(w http.ResponseWriter, r *http.Request) {
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
	radius := defaultNearbyRadiusKm
	if raw := r.URL.Query().Get("radius"); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			middleware.WriteError(w, apierrors.ErrInvalidInput)
			return
		}
	}
	if !models.ValidCoordinates(lat, lng) {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}

	nearby, err := h.geo.Nearby(r.Context(), lat, lng, radius)
	if err != nil {
		middleware.WriteError(w, apierrors.Wrap(err, "GEO_ERROR", "Failed to search nearby stores", http.StatusInternalServerError))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, NearbyStoresResponse{
		NearbyStores: nearby,
		Count:        len(nearby),
		Lat:          lat,
		Lng:          lng,
		RadiusKm:     radius,
	})
}

func (h *StoreHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var draft models.StoreDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	draft.ID = ""
	h.save(w, r, draft, http.StatusCreated)
}

func (h *StoreHandler) UpdateStore(w http.ResponseWriter, r *http.Request) {
	var draft models.StoreDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	draft.ID = mux.Vars(r)["id"]
	h.save(w, r, draft, http.StatusOK)
}

func (h *StoreHandler) save(w http.ResponseWriter, r *http.Request, draft models.StoreDraft, status int) {
	store, err := h.stores.Save(r.Context(), draft)
	if err != nil {
		middleware.WriteError(w, contentError(err, "Failed to save store"))
		return
	}
	middleware.WriteJSON(w, status, store)
}

func (h *StoreHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	if err := h.stores.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		middleware.WriteError(w, contentError(err, "Failed to delete store"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// contentError maps admin write failures to API errors. Anything that is
// not a validation or lookup failure is reported as a plain 500.
func contentError(err error, message string) error {
	switch {
	case errors.Is(err, models.ErrMissingRequired):
		return apierrors.Validation(err)
	case errors.Is(err, services.ErrNotFound):
		return apierrors.ErrNotFound
	default:
		return apierrors.Wrap(err, "DB_ERROR", message, http.StatusInternalServerError)
	}
}
