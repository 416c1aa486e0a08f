// Package retention holds the pure session filters used by cleanup and
// by the storage degradation ladder. Every filter is plain set
// membership over the input slice: no filter mutates its input, and
// composing filters is just intersection.
package retention

import (
	"time"

	"github.com/MDharunPrasad/photo-kiosk/internal/models"
)

// ByMaxAge keeps sessions no older than maxAge. A session exactly
// maxAge old is still kept; one millisecond past it is evicted.
func ByMaxAge(sessions []models.Session, maxAge time.Duration, now time.Time) []models.Session {
	return filter(sessions, func(s models.Session) bool {
		return now.Sub(s.Date) <= maxAge
	})
}

// ByDateRange is a deletion filter: it keeps sessions OUTSIDE [start, end].
func ByDateRange(sessions []models.Session, start, end time.Time) []models.Session {
	return filter(sessions, func(s models.Session) bool {
		return s.Date.Before(start) || s.Date.After(end)
	})
}

// ByMonth keeps sessions whose date does not fall in the given month.
// Month is 0-based January, matching the stored kiosk payloads.
func ByMonth(sessions []models.Session, month, year int) []models.Session {
	return filter(sessions, func(s models.Session) bool {
		return int(s.Date.Month())-1 != month || s.Date.Year() != year
	})
}

// ExcludeDeleted keeps sessions without the soft-delete flag.
func ExcludeDeleted(sessions []models.Session) []models.Session {
	return filter(sessions, func(s models.Session) bool {
		return !s.Deleted
	})
}

// ExcludeID hard-removes one session. Soft delete flips the flag instead.
func ExcludeID(sessions []models.Session, id string) []models.Session {
	return filter(sessions, func(s models.Session) bool {
		return s.ID != id
	})
}

// KeepRecentOrActive keeps sessions that are still in progress, plus
// terminal ones newer than keepFor. This is the eviction step: a pending
// session survives no matter how old it is.
func KeepRecentOrActive(sessions []models.Session, keepFor time.Duration, now time.Time) []models.Session {
	return filter(sessions, func(s models.Session) bool {
		return !s.Status.Terminal() || now.Sub(s.Date) <= keepFor
	})
}

// OnlyActive keeps non-terminal sessions. Last rung of the ladder.
func OnlyActive(sessions []models.Session) []models.Session {
	return filter(sessions, func(s models.Session) bool {
		return !s.Status.Terminal()
	})
}

func filter(sessions []models.Session, keep func(models.Session) bool) []models.Session {
	out := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
