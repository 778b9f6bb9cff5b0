package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sweetmap/config"
	"sweetmap/models"
	"sweetmap/services"
)

var seedFile string

// seedData is the layout of a seed file.
type seedData struct {
	Genres []models.Genre `json:"genres"`
	Stores []models.Store `json:"stores"`
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load genres and stores from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readSeedFile(seedFile)
		if err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		client, err := connectMongo(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		db := client.Database(cfg.MongoDatabase)

		stores := services.NewStoreService(services.NewMongoRepository[models.Store](db.Collection(cfg.StoreCollection)), logger)
		genres := services.NewGenreService(services.NewMongoRepository[models.Genre](db.Collection(cfg.GenreCollection)), logger)
		return seed(ctx, data, stores, genres)
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "data/seed.json", "seed file path")
}

func readSeedFile(path string) (seedData, error) {
	f, err := os.Open(path)
	if err != nil {
		return seedData{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	var data seedData
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return seedData{}, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return data, nil
}

// seed writes every record through the services so the same validation
// applies. Records with an id keep it.
func seed(ctx context.Context, data seedData, stores *services.StoreService, genres *services.GenreService) error {
	for _, g := range data.Genres {
		if _, err := genres.Save(ctx, g); err != nil {
			return fmt.Errorf("genre %q: %w", g.NameJP, err)
		}
	}
	for _, s := range data.Stores {
		if _, err := stores.Save(ctx, models.DraftFromStore(s)); err != nil {
			return fmt.Errorf("store %q: %w", s.NameJP, err)
		}
	}
	logger.Info("seed complete", zap.Int("genres", len(data.Genres)), zap.Int("stores", len(data.Stores)))
	return nil
}
