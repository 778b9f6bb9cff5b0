package mapview

import (
	"errors"
	"fmt"
)

// Mode is what a click on the map means.
type Mode string

const (
	Browsing Mode = "browsing"
	Placing  Mode = "placing"
	Editing  Mode = "editing"
)

// EventType names a user action dispatched to a view.
type EventType string

const (
	EnterAdmin    EventType = "enter_admin"
	ExitAdmin     EventType = "exit_admin"
	MapClick      EventType = "map_click"
	PlaceSelected EventType = "place_selected"
	MarkerClick   EventType = "marker_click"
	EditStore     EventType = "edit_store"
	FinishEdit    EventType = "finish_edit"
)

// Event carries the action and whatever it needs.
type Event struct {
	Type    EventType `json:"type"`
	Lat     float64   `json:"lat,omitempty"`
	Lng     float64   `json:"lng,omitempty"`
	StoreID string    `json:"storeId,omitempty"`
	Name    string    `json:"name,omitempty"`
	Photos  []string  `json:"photos,omitempty"`
}

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrUnknownStore      = errors.New("unknown store")
)

func invalid(mode Mode, ev EventType) error {
	return fmt.Errorf("%w: %s in %s mode", ErrInvalidTransition, ev, mode)
}
