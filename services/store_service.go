package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"sweetmap/models"
)

type StoreService struct {
	repo   Repository[models.Store]
	logger *zap.Logger
}

func NewStoreService(repo Repository[models.Store], logger *zap.Logger) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreService{repo: repo, logger: logger}
}

func (s *StoreService) List(ctx context.Context) ([]models.Store, error) {
	stores, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range stores {
		stores[i] = stores[i].Normalize()
	}
	return stores, nil
}

func (s *StoreService) Get(ctx context.Context, id string) (models.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return models.Store{}, err
	}
	return store.Normalize(), nil
}

// Save validates the draft and writes it. A draft without an id creates a
// new store; otherwise the stored record is overwritten in full.
func (s *StoreService) Save(ctx context.Context, draft models.StoreDraft) (models.Store, error) {
	if err := draft.Validate(); err != nil {
		return models.Store{}, err
	}
	store := draft.Store()
	created := store.ID == ""
	if created {
		store.ID = primitive.NewObjectID().Hex()
	}
	if err := s.repo.Upsert(ctx, store.ID, store); err != nil {
		s.logger.Error("failed to save store", zap.String("store_id", store.ID), zap.Error(err))
		return models.Store{}, err
	}
	s.logger.Info("store saved", zap.String("store_id", store.ID), zap.Bool("created", created))
	return store, nil
}

func (s *StoreService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to delete store", zap.String("store_id", id), zap.Error(err))
		}
		return err
	}
	s.logger.Info("store deleted", zap.String("store_id", id))
	return nil
}
