package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sweetmap/mapview"
	"sweetmap/markers"
	"sweetmap/middleware"
	"sweetmap/models"
	"sweetmap/stats"
	apierrors "sweetmap/utils/errors"
)

// ViewHandler exposes server-side map sessions. A view opened with an
// X-Device-ID header shows that device's favorite and visited badges.
type ViewHandler struct {
	registry   *mapview.Registry
	storageFor StorageFor
	logger     *zap.Logger
}

func NewViewHandler(registry *mapview.Registry, storageFor StorageFor, logger *zap.Logger) *ViewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewHandler{registry: registry, storageFor: storageFor, logger: logger}
}

// refreshStats reloads the bound device's stats so badges follow toggles made
// after the view was opened.
func (h *ViewHandler) refreshStats(r *http.Request, v *mapview.View) {
	device := v.DeviceID()
	if device == "" || h.storageFor == nil {
		return
	}
	st := stats.Load(r.Context(), h.storageFor(device), h.logger.With(zap.String("device_id", device)))
	v.SetUserStats(st.Stats())
}

func (h *ViewHandler) view(w http.ResponseWriter, r *http.Request) (*mapview.View, bool) {
	v, ok := h.registry.Get(mux.Vars(r)["id"])
	if !ok {
		middleware.WriteError(w, apierrors.NewAPIError("VIEW_NOT_FOUND", "Map view not found", http.StatusNotFound))
	}
	return v, ok
}

func viewError(err error) error {
	switch {
	case errors.Is(err, mapview.ErrInvalidTransition):
		return apierrors.NewAPIError("INVALID_TRANSITION", err.Error(), http.StatusConflict)
	case errors.Is(err, mapview.ErrUnknownStore), errors.Is(err, markers.ErrClusterNotFound):
		return apierrors.NewAPIError("NOT_FOUND", err.Error(), http.StatusNotFound)
	default:
		return apierrors.Wrap(err, "VIEW_ERROR", "Map view update failed", http.StatusInternalServerError)
	}
}

// decodeOptional decodes a JSON body into v, accepting an empty body.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *ViewHandler) CreateView(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Width  int      `json:"width"`
		Height int      `json:"height"`
		Genres []string `json:"genres"`
	}
	if err := decodeOptional(r, &input); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	v := h.registry.Create()
	if device := strings.TrimSpace(r.Header.Get(middleware.DeviceIDHeader)); device != "" {
		v.BindDevice(device)
		h.refreshStats(r, v)
	}
	if input.Width > 0 && input.Height > 0 {
		v.SetViewport(input.Width, input.Height)
	}
	if len(input.Genres) > 0 {
		v.SetFilter(input.Genres)
	}
	middleware.WriteJSON(w, http.StatusCreated, v.State())
}

func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.view(w, r); ok {
		h.refreshStats(r, v)
		middleware.WriteJSON(w, http.StatusOK, v.State())
	}
}

func (h *ViewHandler) DeleteView(w http.ResponseWriter, r *http.Request) {
	if !h.registry.Delete(mux.Vars(r)["id"]) {
		middleware.WriteError(w, apierrors.NewAPIError("VIEW_NOT_FOUND", "Map view not found", http.StatusNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ViewHandler) SetFilter(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	var input struct {
		Genres []string `json:"genres"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	v.SetFilter(input.Genres)
	middleware.WriteJSON(w, http.StatusOK, v.State())
}

func (h *ViewHandler) GetClusters(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	zoom, err := strconv.Atoi(r.URL.Query().Get("zoom"))
	if err != nil || zoom < 0 || zoom > models.MaxZoom {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	h.refreshStats(r, v)
	clusters := v.Clusters(zoom)
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"zoom": zoom, "clusters": clusters, "count": len(clusters)})
}

func (h *ViewHandler) ClickCluster(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	var input struct {
		ClusterID string `json:"clusterId"`
		Zoom      int    `json:"zoom"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ClusterID == "" {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	cam, err := v.ClickCluster(input.ClusterID, input.Zoom)
	if err != nil {
		middleware.WriteError(w, viewError(err))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, cam)
}

func (h *ViewHandler) Locate(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	var input models.LatLng
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || !models.ValidCoordinates(input.Lat, input.Lng) {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, v.Locate(input.Lat, input.Lng))
}

func (h *ViewHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	var ev mapview.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	st, err := v.Dispatch(ev)
	if err != nil {
		middleware.WriteError(w, viewError(err))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, st)
}

type videoPatch struct {
	Slot int    `json:"slot"`
	URL  string `json:"url"`
}

// draftPatch edits the open admin form. Nil fields are left as they are.
type draftPatch struct {
	NameJP        *string     `json:"nameJP"`
	NameCH        *string     `json:"nameCH"`
	DescriptionJP *string     `json:"descriptionJP"`
	DescriptionCH *string     `json:"descriptionCH"`
	AddressJP     *string     `json:"addressJP"`
	AddressCH     *string     `json:"addressCH"`
	CustomIconURL *string     `json:"customIconUrl"`
	ToggleGenre   string      `json:"toggleGenre"`
	ToggleImage   string      `json:"toggleImage"`
	Video         *videoPatch `json:"video"`
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (h *ViewHandler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	v, ok := h.view(w, r)
	if !ok {
		return
	}
	var patch draftPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		middleware.WriteError(w, apierrors.ErrInvalidInput)
		return
	}
	if patch.Video != nil && (patch.Video.Slot < 0 || patch.Video.Slot >= models.VideoSlots) {
		middleware.WriteError(w, apierrors.NewAPIError("INVALID_INPUT", "video slot out of range", http.StatusBadRequest))
		return
	}
	open := v.UpdateDraft(func(d *models.StoreDraft) {
		setIf(&d.NameJP, patch.NameJP)
		setIf(&d.NameCH, patch.NameCH)
		setIf(&d.DescriptionJP, patch.DescriptionJP)
		setIf(&d.DescriptionCH, patch.DescriptionCH)
		setIf(&d.AddressJP, patch.AddressJP)
		setIf(&d.AddressCH, patch.AddressCH)
		setIf(&d.CustomIconURL, patch.CustomIconURL)
		if patch.ToggleGenre != "" {
			d.ToggleGenre(patch.ToggleGenre)
		}
		if patch.ToggleImage != "" {
			d.ToggleImage(patch.ToggleImage)
		}
		if patch.Video != nil {
			_ = d.SetVideo(patch.Video.Slot, patch.Video.URL)
		}
	})
	if !open {
		middleware.WriteError(w, apierrors.NewAPIError("NO_DRAFT", "No store is being edited", http.StatusConflict))
		return
	}
	middleware.WriteJSON(w, http.StatusOK, v.State())
}
