package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Uploader stores a blob and returns a URL for it.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.ReadSeeker) (string, error)
}

// AdminService manages site settings other than the password.
type AdminService struct {
	settings Settings
	uploader Uploader
	logger   *zap.Logger
	now      func() time.Time
}

func NewAdminService(settings Settings, uploader Uploader, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{settings: settings, uploader: uploader, logger: logger, now: time.Now}
}

// LogoURL returns the current logo, or "" when none was uploaded.
func (s *AdminService) LogoURL(ctx context.Context) (string, error) {
	url, err := s.settings.Get(ctx, SettingLogoURL)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return url, err
}

// UploadLogo stores the image under a timestamped key and points the logo
// setting at it.
func (s *AdminService) UploadLogo(ctx context.Context, contentType string, body io.ReadSeeker) (string, error) {
	if s.uploader == nil {
		return "", errors.New("blob storage is not configured")
	}
	key := fmt.Sprintf("admin/logo_%d", s.now().UnixMilli())
	url, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		s.logger.Error("logo upload failed", zap.String("key", key), zap.Error(err))
		return "", err
	}
	if err := s.settings.Set(ctx, SettingLogoURL, url); err != nil {
		s.logger.Error("failed to save logo url", zap.String("key", key), zap.Error(err))
		return "", err
	}
	s.logger.Info("logo updated", zap.String("key", key))
	return url, nil
}
