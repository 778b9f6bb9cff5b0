package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	apierrors "sweetmap/utils/errors"
)

const (
	DefaultAdminPassword = "admin123"
	MinPasswordLength    = 4
	AdminTokenTTL        = 24 * time.Hour
	AdminRole            = "admin"
)

var (
	ErrWrongPassword    = errors.New("パスワードが違います")
	ErrPasswordTooShort = errors.New("4文字以上入力してください")
)

// AuthService is the admin password gate. The password is compared as a
// plain string; the gate only hides the admin UI.
type AuthService struct {
	settings  Settings
	jwtSecret string
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthService(settings Settings, jwtSecret string, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{settings: settings, jwtSecret: jwtSecret, logger: logger, now: time.Now}
}

// EnsurePassword writes the default password when none is stored yet.
func (s *AuthService) EnsurePassword(ctx context.Context) error {
	stored, err := s.settings.Get(ctx, SettingPassword)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err == nil && stored != "" {
		return nil
	}
	if err := s.settings.Set(ctx, SettingPassword, DefaultAdminPassword); err != nil {
		s.logger.Error("failed to write default admin password", zap.Error(err))
		return err
	}
	s.logger.Info("default admin password written")
	return nil
}

// Login checks password and returns a signed admin token.
func (s *AuthService) Login(ctx context.Context, password string) (string, error) {
	stored, err := s.settings.Get(ctx, SettingPassword)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrWrongPassword
		}
		return "", err
	}
	// an empty stored password counts as unset
	if stored == "" || password != stored {
		s.logger.Warn("admin login rejected")
		return "", ErrWrongPassword
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": AdminRole,
		"iat":  s.now().Unix(),
		"exp":  s.now().Add(AdminTokenTTL).Unix(),
	})
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", apierrors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}
	s.logger.Info("admin logged in")
	return tokenString, nil
}

// ChangePassword overwrites the stored password.
func (s *AuthService) ChangePassword(ctx context.Context, password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if err := s.settings.Set(ctx, SettingPassword, password); err != nil {
		s.logger.Error("failed to change admin password", zap.Error(err))
		return err
	}
	s.logger.Info("admin password changed")
	return nil
}

// ParseToken verifies an admin token and returns its role claim.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	return ParseAdminToken(tokenString, s.jwtSecret)
}

// ParseAdminToken verifies tokenString against secret.
func ParseAdminToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", apierrors.ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", apierrors.ErrUnauthorized
	}
	role, ok := claims["role"].(string)
	if !ok || role != AdminRole {
		return "", apierrors.ErrUnauthorized
	}
	return role, nil
}
