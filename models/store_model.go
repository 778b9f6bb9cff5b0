package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	MaxStoreGenres = 4
	MaxStoreImages = 4
	VideoSlots     = 4
)

// ErrMissingRequired is returned when a draft lacks a field the admin form requires.
var ErrMissingRequired = errors.New("必須項目を入力してください")

type Store struct {
	ID            string   `json:"id" bson:"_id,omitempty"`
	NameJP        string   `json:"nameJP" bson:"nameJP"`
	NameCH        string   `json:"nameCH" bson:"nameCH"`
	DescriptionJP string   `json:"descriptionJP,omitempty" bson:"descriptionJP,omitempty"`
	DescriptionCH string   `json:"descriptionCH,omitempty" bson:"descriptionCH,omitempty"`
	Lat           float64  `json:"lat" bson:"lat"`
	Lng           float64  `json:"lng" bson:"lng"`
	Genres        []string `json:"genres" bson:"genres"`
	Images        []string `json:"images" bson:"images"`
	Videos        []string `json:"videos" bson:"videos"`
	CustomIconURL string   `json:"customIconUrl,omitempty" bson:"customIconUrl,omitempty"`
	AddressJP     string   `json:"addressJP,omitempty" bson:"addressJP,omitempty"`
	AddressCH     string   `json:"addressCH,omitempty" bson:"addressCH,omitempty"`
}

// Normalize replaces missing list fields with empty lists.
func (s Store) Normalize() Store {
	if s.Genres == nil {
		s.Genres = []string{}
	}
	if s.Images == nil {
		s.Images = []string{}
	}
	if s.Videos == nil {
		s.Videos = []string{}
	}
	return s
}

// HasGenre reports whether the store is tagged with genreID.
func (s Store) HasGenre(genreID string) bool {
	for _, g := range s.Genres {
		if g == genreID {
			return true
		}
	}
	return false
}

// DirectionsURL links to Google Maps route search towards the store.
func (s Store) DirectionsURL() string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%v,%v", s.Lat, s.Lng)
}

// StoreDraft is the admin form state. Lat/Lng stay nil until a location is picked.
type StoreDraft struct {
	ID            string   `json:"id,omitempty"`
	NameJP        string   `json:"nameJP"`
	NameCH        string   `json:"nameCH"`
	DescriptionJP string   `json:"descriptionJP,omitempty"`
	DescriptionCH string   `json:"descriptionCH,omitempty"`
	Lat           *float64 `json:"lat"`
	Lng           *float64 `json:"lng"`
	Genres        []string `json:"genres"`
	Images        []string `json:"images"`
	Videos        []string `json:"videos"`
	CustomIconURL string   `json:"customIconUrl,omitempty"`
	AddressJP     string   `json:"addressJP,omitempty"`
	AddressCH     string   `json:"addressCH,omitempty"`
}

// DraftFromStore copies a stored record into an editable draft.
func DraftFromStore(s Store) StoreDraft {
	lat, lng := s.Lat, s.Lng
	return StoreDraft{
		ID:            s.ID,
		NameJP:        s.NameJP,
		NameCH:        s.NameCH,
		DescriptionJP: s.DescriptionJP,
		DescriptionCH: s.DescriptionCH,
		Lat:           &lat,
		Lng:           &lng,
		Genres:        append([]string{}, s.Genres...),
		Images:        append([]string{}, s.Images...),
		Videos:        append([]string{}, s.Videos...),
		CustomIconURL: s.CustomIconURL,
		AddressJP:     s.AddressJP,
		AddressCH:     s.AddressCH,
	}
}

// SetLocation sets the draft coordinates.
func (d *StoreDraft) SetLocation(lat, lng float64) {
	d.Lat = &lat
	d.Lng = &lng
}

// ToggleGenre adds or removes a genre. Adding past MaxStoreGenres is ignored.
func (d *StoreDraft) ToggleGenre(genreID string) {
	d.Genres = toggleCapped(d.Genres, genreID, MaxStoreGenres)
}

// ToggleImage adds or removes an image URL. Adding past MaxStoreImages is ignored.
func (d *StoreDraft) ToggleImage(imageURL string) {
	d.Images = toggleCapped(d.Images, imageURL, MaxStoreImages)
}

// SetVideo fills one of the fixed video slots. An empty url clears the slot.
func (d *StoreDraft) SetVideo(slot int, videoURL string) error {
	if slot < 0 || slot >= VideoSlots {
		return fmt.Errorf("video slot %d out of range", slot)
	}
	for len(d.Videos) < VideoSlots {
		d.Videos = append(d.Videos, "")
	}
	d.Videos[slot] = strings.TrimSpace(videoURL)
	return nil
}

// Validate blocks submission when nameJP or the coordinates are missing.
// Zero coordinates count as missing, as in the admin form.
func (d StoreDraft) Validate() error {
	if strings.TrimSpace(d.NameJP) == "" || d.Lat == nil || d.Lng == nil || *d.Lat == 0 || *d.Lng == 0 {
		return ErrMissingRequired
	}
	return nil
}

// Store converts a validated draft into a full record for upsert.
func (d StoreDraft) Store() Store {
	s := Store{
		ID:            d.ID,
		NameJP:        d.NameJP,
		NameCH:        d.NameCH,
		DescriptionJP: d.DescriptionJP,
		DescriptionCH: d.DescriptionCH,
		Genres:        d.Genres,
		Images:        d.Images,
		Videos:        d.Videos,
		CustomIconURL: d.CustomIconURL,
		AddressJP:     d.AddressJP,
		AddressCH:     d.AddressCH,
	}
	if d.Lat != nil {
		s.Lat = *d.Lat
	}
	if d.Lng != nil {
		s.Lng = *d.Lng
	}
	return s.Normalize()
}

func toggleCapped(list []string, value string, max int) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	if len(list) >= max {
		return list
	}
	return append(list, value)
}

// VideoID extracts a YouTube video id from a watch URL or a short link.
func VideoID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.Contains(raw, "v=") {
		if u, err := url.Parse(raw); err == nil {
			if v := u.Query().Get("v"); v != "" {
				return v
			}
		}
		after := strings.SplitN(raw, "v=", 2)[1]
		return strings.SplitN(after, "&", 2)[0]
	}
	parts := strings.Split(raw, "/")
	return parts[len(parts)-1]
}

// EmbedURL returns the embeddable player URL, or "" for an unset slot.
func EmbedURL(raw string) string {
	id := VideoID(raw)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}
