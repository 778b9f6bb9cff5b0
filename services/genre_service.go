package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"sweetmap/models"
)

type GenreService struct {
	repo   Repository[models.Genre]
	logger *zap.Logger
}

func NewGenreService(repo Repository[models.Genre], logger *zap.Logger) *GenreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenreService{repo: repo, logger: logger}
}

func (s *GenreService) List(ctx context.Context) ([]models.Genre, error) {
	return s.repo.FindAll(ctx)
}

func (s *GenreService) Get(ctx context.Context, id string) (models.Genre, error) {
	return s.repo.FindByID(ctx, id)
}

// Save validates and writes a genre; an empty id creates one.
func (s *GenreService) Save(ctx context.Context, genre models.Genre) (models.Genre, error) {
	if err := genre.Validate(); err != nil {
		return models.Genre{}, err
	}
	genre.Color = strings.TrimSpace(genre.Color)
	if genre.ID == "" {
		genre.ID = primitive.NewObjectID().Hex()
	}
	if err := s.repo.Upsert(ctx, genre.ID, genre); err != nil {
		s.logger.Error("failed to save genre", zap.String("genre_id", genre.ID), zap.Error(err))
		return models.Genre{}, err
	}
	s.logger.Info("genre saved", zap.String("genre_id", genre.ID))
	return genre, nil
}

// Delete removes a genre. Stores that still reference it keep the dangling id.
func (s *GenreService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to delete genre", zap.String("genre_id", id), zap.Error(err))
		}
		return err
	}
	s.logger.Info("genre deleted", zap.String("genre_id", id))
	return nil
}
