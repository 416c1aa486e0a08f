package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusOperator  Status = "ready-for-operator"
	StatusCompleted Status = "completed"
)

// Statuses written by the previous kiosk generation. Normalized on load.
const (
	legacyActive    Status = "Active"
	legacyCompleted Status = "Completed"
)

func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusOperator, StatusCompleted:
		return true
	}
	return false
}

// Terminal - completed sessions are the first to go under storage pressure.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

// NormalizeStatus maps legacy status values onto the current set.
func NormalizeStatus(s Status) Status {
	switch s {
	case legacyActive:
		return StatusPending
	case legacyCompleted:
		return StatusCompleted
	}
	return s
}

type Photo struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	Edited     bool       `json:"edited"`
	Timestamp  time.Time  `json:"timestamp"`
	LastEdited *time.Time `json:"lastEdited,omitempty"`
}

// UnlimitedCap mirrors the old kiosk UI, which treated "unlimited" as 999.
const UnlimitedCap = 999

// BundleCount - photo allowance for a bundle. The stored form is either
// a number or the string "unlimited".
type BundleCount struct {
	Unlimited bool
	Value     int
}

func (c BundleCount) MarshalJSON() ([]byte, error) {
	if c.Unlimited {
		return json.Marshal("unlimited")
	}
	return json.Marshal(c.Value)
}

func (c *BundleCount) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "unlimited" {
			*c = BundleCount{Unlimited: true}
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("bundle count %q: %w", s, err)
		}
		*c = BundleCount{Value: n}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = BundleCount{Value: n}
	return nil
}

// Cap - the effective maximum number of photos.
func (c BundleCount) Cap() int {
	if c.Unlimited {
		return UnlimitedCap
	}
	return c.Value
}

type Bundle struct {
	Name  string      `json:"name"`
	Count BundleCount `json:"count"`
	Price float64     `json:"price"`
}

// Session - one customer's photo-capture engagement at a location.
// Deleted is a soft-delete flag; the entry stays in the collection.
type Session struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	Date       time.Time `json:"date"`
	Status     Status    `json:"status"`
	SessionKey string    `json:"sessionKey"`
	Photos     []Photo   `json:"photos"`
	Bundle     *Bundle   `json:"bundle,omitempty"`
	Deleted    bool      `json:"deleted,omitempty"`
}

func NewSession(id, name, location, sessionKey string, now time.Time) Session {
	return Session{
		ID:         id,
		Name:       name,
		Location:   location,
		Date:       now,
		Status:     StatusPending,
		SessionKey: sessionKey,
		Photos:     []Photo{},
	}
}

// Clone - deep copy. Photos and Bundle are owned by the store, so
// everything handed out crosses this boundary as a copy.
func (s Session) Clone() Session {
	out := s
	out.Photos = make([]Photo, len(s.Photos))
	copy(out.Photos, s.Photos)
	for i, p := range s.Photos {
		if p.LastEdited != nil {
			t := *p.LastEdited
			out.Photos[i].LastEdited = &t
		}
	}
	if s.Bundle != nil {
		b := *s.Bundle
		out.Bundle = &b
	}
	return out
}
