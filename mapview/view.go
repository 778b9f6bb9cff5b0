// Package mapview holds the per-client map state: genre filter, marker
// overlay, interaction mode and the admin draft.
package mapview

import (
	"sync"

	"go.uber.org/zap"

	"sweetmap/filter"
	"sweetmap/livedata"
	"sweetmap/markers"
	"sweetmap/models"
)

// State is the serializable view of a map session.
type State struct {
	ID              string             `json:"id"`
	Mode            Mode               `json:"mode"`
	Genres          []string           `json:"selectedGenres"`
	Eligible        []string           `json:"eligibleStoreIds"`
	Active          []string           `json:"activeMarkerIds"`
	SelectedStore   string             `json:"selectedStoreId,omitempty"`
	TempPin         *models.LatLng     `json:"tempPin,omitempty"`
	Draft           *models.StoreDraft `json:"draft,omitempty"`
	SuggestedPhotos []string           `json:"suggestedPhotos,omitempty"`
	Camera          models.Camera      `json:"camera"`
	DeviceID        string             `json:"deviceId,omitempty"`
	Favorites       []string           `json:"favorites"`
	Visited         []string           `json:"visited"`
}

// View is one client's map. All methods are safe for concurrent use; the
// view serializes them so the synchronizer sees notifications in order.
type View struct {
	id     string
	logger *zap.Logger

	mu         sync.Mutex
	mode       Mode
	selected   []string
	snapshot   livedata.Snapshot
	eligible   []models.Store
	clusterer  *markers.Clusterer
	markerSync *markers.Synchronizer
	renderer   *markers.Renderer

	selectedStore   string
	tempPin         *models.LatLng
	draft           *models.StoreDraft
	suggestedPhotos []string
	camera          models.Camera

	deviceID  string
	userStats models.UserStats
}

func newView(id string, snap livedata.Snapshot, radiusPx float64, logger *zap.Logger) *View {
	clusterer := markers.NewClusterer(radiusPx)
	synchronizer := markers.NewSynchronizer(clusterer, logger.With(zap.String("view_id", id)))
	v := &View{
		id:         id,
		logger:     logger,
		mode:       Browsing,
		clusterer:  clusterer,
		markerSync: synchronizer,
		renderer:   markers.NewRenderer(synchronizer),
		camera:     models.Camera{Center: models.TaiwanCenter, Zoom: models.DefaultZoom},
		userStats:  models.EmptyStats(),
	}
	v.snapshot = snap
	v.renderLocked()
	return v
}

func (v *View) ID() string { return v.id }

func (v *View) renderLocked() {
	v.eligible = filter.ByGenres(v.snapshot.Stores, v.selected)
	v.renderer.Render(v.eligible, v.snapshot.Genres)
	if v.selectedStore != "" && !v.hasStoreLocked(v.selectedStore) {
		v.selectedStore = ""
	}
}

func (v *View) hasStoreLocked(id string) bool {
	for _, s := range v.snapshot.Stores {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (v *View) storeLocked(id string) (models.Store, bool) {
	for _, s := range v.snapshot.Stores {
		if s.ID == id {
			return s, true
		}
	}
	return models.Store{}, false
}

// Update applies a new data snapshot and re-renders. Snapshots older than
// the one already shown are ignored.
func (v *View) Update(snap livedata.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if snap.Version < v.snapshot.Version {
		return
	}
	v.snapshot = snap
	v.renderLocked()
}

// SetFilter replaces the genre selection and returns the eligible stores.
func (v *View) SetFilter(genres []string) []models.Store {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = append([]string(nil), genres...)
	v.renderLocked()
	return append([]models.Store(nil), v.eligible...)
}

// Eligible returns the stores passing the current filter.
func (v *View) Eligible() []models.Store {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Store(nil), v.eligible...)
}

// SetViewport sets the client's map size in pixels.
func (v *View) SetViewport(w, h int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clusterer.SetViewport(w, h)
}

// BindDevice ties the view to a device so markers carry its badges.
func (v *View) BindDevice(deviceID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.deviceID = deviceID
}

func (v *View) DeviceID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.deviceID
}

// SetUserStats replaces the favorites and visited lists used for badges.
func (v *View) SetUserStats(st models.UserStats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.userStats = st
}

// Clusters returns the overlay's markers grouped at zoom. Single markers are
// copies carrying the device's favorite and visited badges.
func (v *View) Clusters(zoom int) []markers.Cluster {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.camera.Zoom = zoom
	clusters := v.clusterer.Clusters(zoom)
	for i := range clusters {
		if clusters[i].Marker == nil {
			continue
		}
		m := *clusters[i].Marker
		m.Favorite = v.userStats.Has(models.StatFavorites, m.StoreID)
		m.Visited = v.userStats.Has(models.StatVisited, m.StoreID)
		clusters[i].Marker = &m
	}
	return clusters
}

// ClickCluster moves the camera to fit the clicked aggregate.
func (v *View) ClickCluster(clusterID string, zoom int) (models.Camera, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	cam, err := v.clusterer.ClickCluster(clusterID, zoom)
	if err != nil {
		return models.Camera{}, err
	}
	v.camera = cam
	return cam, nil
}

// Locate pans to the user's position.
func (v *View) Locate(lat, lng float64) models.Camera {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.camera = models.Camera{Center: models.LatLng{Lat: lat, Lng: lng}, Zoom: models.LocateZoom}
	return v.camera
}

// Dispatch runs one mode transition. On error the view is left unchanged.
func (v *View) Dispatch(ev Event) (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.applyLocked(ev); err != nil {
		return v.stateLocked(), err
	}
	v.logger.Debug("view event", zap.String("view_id", v.id), zap.String("event", string(ev.Type)), zap.String("mode", string(v.mode)))
	return v.stateLocked(), nil
}

func (v *View) applyLocked(ev Event) error {
	switch ev.Type {
	case EnterAdmin:
		if v.mode != Browsing {
			return invalid(v.mode, ev.Type)
		}
		v.mode = Placing
		v.selectedStore = ""

	case ExitAdmin:
		v.mode = Browsing
		v.tempPin = nil
		v.draft = nil
		v.suggestedPhotos = nil

	case MapClick:
		switch v.mode {
		case Browsing:
			return nil
		case Placing:
			v.placeLocked(ev.Lat, ev.Lng, "", nil)
		case Editing:
			v.draft.SetLocation(ev.Lat, ev.Lng)
			v.tempPin = &models.LatLng{Lat: ev.Lat, Lng: ev.Lng}
		}

	case PlaceSelected:
		if v.mode != Placing {
			return invalid(v.mode, ev.Type)
		}
		v.placeLocked(ev.Lat, ev.Lng, ev.Name, ev.Photos)
		v.camera = models.Camera{Center: models.LatLng{Lat: ev.Lat, Lng: ev.Lng}, Zoom: models.PlaceZoom}

	case MarkerClick:
		s, ok := v.storeLocked(ev.StoreID)
		if !ok {
			return ErrUnknownStore
		}
		if v.mode == Browsing {
			v.selectedStore = s.ID
			return nil
		}
		v.editLocked(s)

	case EditStore:
		if v.mode != Placing {
			return invalid(v.mode, ev.Type)
		}
		s, ok := v.storeLocked(ev.StoreID)
		if !ok {
			return ErrUnknownStore
		}
		v.editLocked(s)

	case FinishEdit:
		if v.mode != Editing {
			return invalid(v.mode, ev.Type)
		}
		v.mode = Placing
		v.draft = nil
		v.tempPin = nil
		v.suggestedPhotos = nil

	default:
		return invalid(v.mode, ev.Type)
	}
	return nil
}

// placeLocked moves the pin and the open draft to lat/lng, starting a draft
// if none is open. The name and suggested photos are only replaced when new
// ones are given.
func (v *View) placeLocked(lat, lng float64, name string, photos []string) {
	v.tempPin = &models.LatLng{Lat: lat, Lng: lng}
	if v.draft == nil {
		v.draft = &models.StoreDraft{Genres: []string{}, Images: []string{}, Videos: []string{}}
	}
	v.draft.SetLocation(lat, lng)
	if name != "" {
		v.draft.NameJP = name
	}
	if len(photos) > 0 {
		v.suggestedPhotos = append([]string(nil), photos...)
	}
}

func (v *View) editLocked(s models.Store) {
	draft := models.DraftFromStore(s)
	v.mode = Editing
	v.draft = &draft
	v.tempPin = nil
	v.suggestedPhotos = nil
}

// Draft returns a copy of the admin draft, if any.
func (v *View) Draft() (models.StoreDraft, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.draft == nil {
		return models.StoreDraft{}, false
	}
	return *v.draft, true
}

// UpdateDraft lets the caller edit the draft in place while it is open.
func (v *View) UpdateDraft(fn func(*models.StoreDraft)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.draft == nil {
		return false
	}
	fn(v.draft)
	return true
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *View) stateLocked() State {
	st := State{
		ID:              v.id,
		Mode:            v.mode,
		Genres:          append([]string{}, v.selected...),
		Eligible:        filter.IDs(v.eligible),
		Active:          v.markerSync.Active(),
		SelectedStore:   v.selectedStore,
		SuggestedPhotos: append([]string(nil), v.suggestedPhotos...),
		Camera:          v.camera,
		DeviceID:        v.deviceID,
		Favorites:       append([]string{}, v.userStats.Favorites...),
		Visited:         append([]string{}, v.userStats.Visited...),
	}
	if v.tempPin != nil {
		pin := *v.tempPin
		st.TempPin = &pin
	}
	if v.draft != nil {
		d := *v.draft
		st.Draft = &d
	}
	return st
}
