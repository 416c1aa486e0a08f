package models

import (
	"fmt"
	"time"
)

type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

func NewLocation(name string, now time.Time) Location {
	return Location{
		ID:       fmt.Sprintf("loc_%d", now.UnixMilli()),
		Name:     name,
		IsActive: true,
	}
}

// DefaultLocations - seeded on first run when the store has none.
func DefaultLocations() []Location {
	return []Location{
		{ID: "entrance", Name: "Entrance", IsActive: true},
		{ID: "castle", Name: "Castle", IsActive: true},
		{ID: "waterfall", Name: "Waterfall", IsActive: true},
		{ID: "themeRide", Name: "Theme Ride", IsActive: true},
	}
}
