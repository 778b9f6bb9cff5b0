// Package config reads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr             string
	MongoURI         string
	MongoDatabase    string
	StoreCollection  string
	GenreCollection  string
	AdminCollection  string
	MongoTimeout     time.Duration
	RedisAddr        string
	RedisDB          int
	JWTSecret        string
	AllowedOrigins   []string
	GoogleMapsAPIKey string
	S3Bucket         string
	AWSRegion        string
	MediaBaseURL     string
	PublicBaseURL    string
	ClusterRadiusPx  float64
	ShutdownTimeout  time.Duration
}

// Load reads a .env file when present and then the process environment.
func Load() (Config, error) {
	// missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(envOrDefault("REDIS_DB", "0"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}
	radius, err := strconv.ParseFloat(envOrDefault("CLUSTER_RADIUS_PX", "60"), 64)
	if err != nil || radius <= 0 {
		return Config{}, fmt.Errorf("invalid CLUSTER_RADIUS_PX value %q", os.Getenv("CLUSTER_RADIUS_PX"))
	}
	timeout := 10 * time.Second
	if v := os.Getenv("MONGO_CONNECT_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			timeout = parsed
		}
	}

	cfg := Config{
		Addr:             envOrDefault("HTTP_ADDR", ":8080"),
		MongoURI:         envOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:    envOrDefault("MONGO_DB", "taiwan_sweets"),
		StoreCollection:  envOrDefault("STORE_COLLECTION", "stores"),
		GenreCollection:  envOrDefault("GENRE_COLLECTION", "genres"),
		AdminCollection:  envOrDefault("ADMIN_COLLECTION", "admin"),
		MongoTimeout:     timeout,
		RedisAddr:        envOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisDB:          redisDB,
		JWTSecret:        strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AllowedOrigins:   parseList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		GoogleMapsAPIKey: strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY")),
		S3Bucket:         strings.TrimSpace(os.Getenv("S3_BUCKET")),
		AWSRegion:        envOrDefault("AWS_REGION", "ap-northeast-1"),
		MediaBaseURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("MEDIA_BASE_URL")), "/"),
		PublicBaseURL:    strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/"),
		ClusterRadiusPx:  radius,
		ShutdownTimeout:  10 * time.Second,
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET environment variable is not set")
	}
	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
