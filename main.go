package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sweetmap/blob"
	"sweetmap/config"
	"sweetmap/handlers"
	"sweetmap/livedata"
	"sweetmap/mapview"
	"sweetmap/models"
	"sweetmap/places"
	"sweetmap/services"
	"sweetmap/stats"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sweetmap",
	Short: "Taiwan dessert shop map backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, seedCmd, statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func connectMongo(ctx context.Context, cfg config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connection failed: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	logger.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
	return client, nil
}

func serve(ctx context.Context, cfg config.Config) error {
	client, err := connectMongo(ctx, cfg)
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDatabase)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	feed := livedata.NewFeed(livedata.NewMongoSource(db, cfg.StoreCollection, cfg.GenreCollection, logger), logger.Named("livedata"))
	// subscribe before the feed starts so no snapshot is missed
	geo := services.NewGeoService(rdb, feed, logger.Named("geo"))
	defer geo.Follow(feed)()
	registry := mapview.NewRegistry(feed, cfg.ClusterRadiusPx, logger.Named("mapview"))
	defer registry.Close()

	feedDone := make(chan struct{})
	go func() {
		defer close(feedDone)
		feed.Run(ctx)
	}()

	settings := services.NewMongoSettings(db.Collection(cfg.AdminCollection))
	auth := services.NewAuthService(settings, cfg.JWTSecret, logger.Named("auth"))
	if err := auth.EnsurePassword(ctx); err != nil {
		return err
	}

	var uploader services.Uploader
	if cfg.S3Bucket != "" {
		s3u, err := blob.NewS3Uploader(cfg.AWSRegion, cfg.S3Bucket, cfg.MediaBaseURL, logger.Named("blob"))
		if err != nil {
			return err
		}
		uploader = s3u
	} else {
		logger.Warn("S3_BUCKET not set, logo upload disabled")
	}
	if cfg.GoogleMapsAPIKey == "" {
		logger.Warn("GOOGLE_MAPS_API_KEY not set, places search will fail")
	}

	storageFor := func(deviceID string) stats.Storage {
		return stats.NewRedisStorage(rdb, deviceID)
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:         logger.Named("http"),
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Health: handlers.NewHealthHandler(feed, map[string]handlers.HealthCheck{
			"mongo": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		}),
		Stores: handlers.NewStoreHandler(feed,
			services.NewStoreService(services.NewMongoRepository[models.Store](db.Collection(cfg.StoreCollection)), logger.Named("stores")), geo),
		Genres: handlers.NewGenreHandler(feed,
			services.NewGenreService(services.NewMongoRepository[models.Genre](db.Collection(cfg.GenreCollection)), logger.Named("genres"))),
		Auth:   handlers.NewAuthHandler(auth, services.NewAdminService(settings, uploader, logger.Named("admin"))),
		Places: handlers.NewPlacesHandler(places.NewClient(cfg.GoogleMapsAPIKey,
			places.WithPhotoProxy(cfg.PublicBaseURL+places.DefaultPhotoPath))),
		Stats:  handlers.NewStatsHandler(storageFor, logger.Named("stats")),
		Views:  handlers.NewViewHandler(registry, storageFor, logger.Named("mapview")),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	<-feedDone
	return nil
}
