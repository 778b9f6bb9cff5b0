package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"sweetmap/middleware"
	"sweetmap/models"
	"sweetmap/services"
	apierrors "sweetmap/utils/errors"
)

type GenreHandler struct {
	catalog Catalog
	genres  *services.GenreService
}

func NewGenreHandler(catalog Catalog, genres *services.GenreService) *GenreHandler {
	return &GenreHandler{catalog: catalog, genres: genres}
}

func (h *GenreHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres := h.catalog.Snapshot().Genres
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"genres": genres, "count": len(genres)})
}

func (h *GenreHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var genre models.Genre
	if err := json.NewDecoder(r.Body).Decode(&genre); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	genre.ID = ""
	h.save(w, r, genre, http.StatusCreated)
}

func (h *GenreHandler) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	var genre models.Genre
	if err := json.NewDecoder(r.Body).Decode(&genre); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	genre.ID = mux.Vars(r)["id"]
	h.save(w, r, genre, http.StatusOK)
}

func (h *GenreHandler) save(w http.ResponseWriter, r *http.Request, genre models.Genre, status int) {
	saved, err := h.genres.Save(r.Context(), genre)
	if err != nil {
		middleware.WriteError(w, contentError(err, "Failed to save genre"))
		return
	}
	middleware.WriteJSON(w, status, saved)
}

func (h *GenreHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	if err := h.genres.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		middleware.WriteError(w, contentError(err, "Failed to delete genre"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
