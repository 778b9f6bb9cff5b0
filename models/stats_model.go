package models

import "fmt"

// StatKind names one of the two user stat lists.
type StatKind string

const (
	StatVisited   StatKind = "visited"
	StatFavorites StatKind = "favorites"
)

func ParseStatKind(s string) (StatKind, error) {
	switch StatKind(s) {
	case StatVisited, StatFavorites:
		return StatKind(s), nil
	}
	return "", fmt.Errorf("unknown stat kind %q", s)
}

// UserStats is device-local visited/favorite tracking.
type UserStats struct {
	Visited   []string `json:"visited"`
	Favorites []string `json:"favorites"`
}

func EmptyStats() UserStats {
	return UserStats{Visited: []string{}, Favorites: []string{}}
}

func (u UserStats) list(kind StatKind) []string {
	if kind == StatVisited {
		return u.Visited
	}
	return u.Favorites
}

func (u UserStats) Has(kind StatKind, id string) bool {
	for _, v := range u.list(kind) {
		if v == id {
			return true
		}
	}
	return false
}

// Toggle returns a copy with id added to or removed from the kind's list.
func (u UserStats) Toggle(kind StatKind, id string) UserStats {
	current := u.list(kind)
	updated := make([]string, 0, len(current)+1)
	found := false
	for _, v := range current {
		if v == id {
			found = true
			continue
		}
		updated = append(updated, v)
	}
	if !found {
		updated = append(updated, id)
	}
	if kind == StatVisited {
		u.Visited = updated
	} else {
		u.Favorites = updated
	}
	return u
}
