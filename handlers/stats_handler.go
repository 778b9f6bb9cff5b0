package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sweetmap/middleware"
	"sweetmap/models"
	"sweetmap/stats"
	apierrors "sweetmap/utils/errors"
)

// StorageFor returns the stats storage of one device.
type StorageFor func(deviceID string) stats.Storage

type StatsHandler struct {
	storageFor StorageFor
	logger     *zap.Logger
}

func NewStatsHandler(storageFor StorageFor, logger *zap.Logger) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{storageFor: storageFor, logger: logger}
}

func (h *StatsHandler) load(r *http.Request) (*stats.Store, bool) {
	device := strings.TrimSpace(r.Header.Get(middleware.DeviceIDHeader))
	if device == "" {
		return nil, false
	}
	return stats.Load(r.Context(), h.storageFor(device), h.logger.With(zap.String("device_id", device))), true
}

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, ok := h.load(r)
	if !ok {
		middleware.WriteError(w, apierrors.ErrMissingDevice)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, st.Stats())
}

func (h *StatsHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, err := models.ParseStatKind(vars["kind"])
	if err != nil {
		middleware.WriteError(w, apierrors.NewAPIError("INVALID_INPUT", err.Error(), http.StatusBadRequest))
		return
	}
	st, ok := h.load(r)
	if !ok {
		middleware.WriteError(w, apierrors.ErrMissingDevice)
		return
	}
	updated, err := st.Toggle(r.Context(), kind, vars["storeID"])
	if err != nil {
		middleware.WriteError(w, apierrors.Wrap(err, "STORAGE_ERROR", "Failed to save stats", http.StatusInternalServerError))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}
