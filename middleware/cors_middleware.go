package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORSMiddleware allows the web client origins, including the headers the
// admin and stats endpoints read.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Authorization", DeviceIDHeader},
		AllowCredentials: true,
	})
	return c.Handler
}
