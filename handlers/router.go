package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sweetmap/middleware"
)

type RouterConfig struct {
	Logger         *zap.Logger
	JWTSecret      string
	AllowedOrigins []string

	Health *HealthHandler
	Stores *StoreHandler
	Genres *GenreHandler
	Auth   *AuthHandler
	Places *PlacesHandler
	Stats  *StatsHandler
	Views  *ViewHandler
}

// NewRouter wires every route. Admin writes sit behind the JWT middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware(logger))
	r.Use(middleware.LoggingMiddleware(logger))

	r.HandleFunc("/healthz", cfg.Health.Healthz).Methods("GET")

	// Stores and genres
	r.HandleFunc("/stores", cfg.Stores.ListStores).Methods("GET")
	r.HandleFunc("/stores/nearby", cfg.Stores.GetNearbyStores).Methods("GET")
	r.HandleFunc("/stores/{id}", cfg.Stores.GetStore).Methods("GET")
	r.HandleFunc("/genres", cfg.Genres.ListGenres).Methods("GET")
	r.HandleFunc("/settings/logo", cfg.Auth.GetLogo).Methods("GET")
	r.HandleFunc("/places/photo", cfg.Places.Photo).Methods("GET")

	// Device stats
	r.HandleFunc("/stats", cfg.Stats.GetStats).Methods("GET")
	r.HandleFunc("/stats/{kind}/{storeID}/toggle", cfg.Stats.Toggle).Methods("POST")

	// Map views
	viewRouter := r.PathPrefix("/views").Subrouter()
	viewRouter.HandleFunc("", cfg.Views.CreateView).Methods("POST")
	viewRouter.HandleFunc("/{id}", cfg.Views.GetView).Methods("GET")
	viewRouter.HandleFunc("/{id}", cfg.Views.DeleteView).Methods("DELETE")
	viewRouter.HandleFunc("/{id}/filter", cfg.Views.SetFilter).Methods("PUT")
	viewRouter.HandleFunc("/{id}/clusters", cfg.Views.GetClusters).Methods("GET")
	viewRouter.HandleFunc("/{id}/clusters/click", cfg.Views.ClickCluster).Methods("POST")
	viewRouter.HandleFunc("/{id}/locate", cfg.Views.Locate).Methods("POST")
	viewRouter.HandleFunc("/{id}/events", cfg.Views.Dispatch).Methods("POST")
	viewRouter.HandleFunc("/{id}/draft", cfg.Views.PatchDraft).Methods("PATCH")

	r.HandleFunc("/admin/login", cfg.Auth.Login).Methods("POST")

	// Admin routes
	adminRouter := r.PathPrefix("/admin").Subrouter()
	adminRouter.Use(middleware.JWTMiddleware(cfg.JWTSecret))
	adminRouter.HandleFunc("/stores", cfg.Stores.CreateStore).Methods("POST")
	adminRouter.HandleFunc("/stores/{id}", cfg.Stores.UpdateStore).Methods("PUT")
	adminRouter.HandleFunc("/stores/{id}", cfg.Stores.DeleteStore).Methods("DELETE")
	adminRouter.HandleFunc("/genres", cfg.Genres.CreateGenre).Methods("POST")
	adminRouter.HandleFunc("/genres/{id}", cfg.Genres.UpdateGenre).Methods("PUT")
	adminRouter.HandleFunc("/genres/{id}", cfg.Genres.DeleteGenre).Methods("DELETE")
	adminRouter.HandleFunc("/password", cfg.Auth.ChangePassword).Methods("PUT")
	adminRouter.HandleFunc("/logo", cfg.Auth.UploadLogo).Methods("POST")
	adminRouter.HandleFunc("/places/autocomplete", cfg.Places.Autocomplete).Methods("GET")
	adminRouter.HandleFunc("/places/reverse", cfg.Places.Reverse).Methods("GET")
	adminRouter.HandleFunc("/places/{placeID}", cfg.Places.Details).Methods("GET")

	return middleware.CORSMiddleware(cfg.AllowedOrigins)(r)
}
