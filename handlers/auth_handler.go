package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"sweetmap/middleware"
	"sweetmap/services"
	apierrors "sweetmap/utils/errors"
)

const maxLogoBytes = 10 << 20

type AuthHandler struct {
	auth  *services.AuthService
	admin *services.AdminService
}

func NewAuthHandler(auth *services.AuthService, admin *services.AdminService) *AuthHandler {
	return &AuthHandler{auth: auth, admin: admin}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	token, err := h.auth.Login(r.Context(), input.Password)
	if err != nil {
		if errors.Is(err, services.ErrWrongPassword) {
			middleware.WriteError(w, apierrors.NewAPIError("INVALID_CREDENTIALS", err.Error(), http.StatusUnauthorized))
			return
		}
		middleware.WriteError(w, apierrors.Wrap(err, "LOGIN_ERROR", "Failed to login", http.StatusInternalServerError))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), input.Password); err != nil {
		if errors.Is(err, services.ErrPasswordTooShort) {
			middleware.WriteError(w, apierrors.Validation(err))
			return
		}
		middleware.WriteError(w, apierrors.Wrap(err, "DB_ERROR", "Failed to change password", http.StatusInternalServerError))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) GetLogo(w http.ResponseWriter, r *http.Request) {
	url, err := h.admin.LogoURL(r.Context())
	if err != nil {
		middleware.WriteError(w, apierrors.Wrap(err, "DB_ERROR", "Failed to load logo", http.StatusInternalServerError))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"logoUrl": url})
}

// UploadLogo takes the image from the multipart "file" field.
func (h *AuthHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes)
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, apierrors.NewAPIError("INVALID_INPUT", "file is required", http.StatusBadRequest))
		return
	}
	defer file.Close()

	url, err := h.admin.UploadLogo(r.Context(), header.Header.Get("Content-Type"), file)
	if err != nil {
		middleware.WriteError(w, apierrors.Wrap(err, "UPLOAD_ERROR", "Failed to upload logo", http.StatusInternalServerError))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"logoUrl": url})
}
