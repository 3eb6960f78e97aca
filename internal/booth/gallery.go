package booth

import (
	"time"

	"photobooth-app/internal/models"
)

// DefaultGalleryLimit matches how many strips the photobook page shows.
const DefaultGalleryLimit = 50

// SessionLister is the query surface the gallery needs from the row
// store.
type SessionLister interface {
	ListSessions(userID *string, limit int, start, end *time.Time) ([]*models.StripSession, error)
	DistinctCaptureDates(userID *string) ([]time.Time, error)
}

// DateFilter narrows the photobook by capture date. Zero fields mean
// no constraint at that granularity; Month and Day only apply when the
// coarser fields are set.
type DateFilter struct {
	Year  int
	Month time.Month
	Day   int
}

// Range converts the filter to a half-open [start, end) interval, or
// (nil, nil) for an unconstrained filter.
func (f DateFilter) Range() (start, end *time.Time) {
	if f.Year == 0 {
		return nil, nil
	}
	var s, e time.Time
	switch {
	case f.Month != 0 && f.Day != 0:
		s = time.Date(f.Year, f.Month, f.Day, 0, 0, 0, 0, time.UTC)
		e = s.AddDate(0, 0, 1)
	case f.Month != 0:
		s = time.Date(f.Year, f.Month, 1, 0, 0, 0, 0, time.UTC)
		e = s.AddDate(0, 1, 0)
	default:
		s = time.Date(f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		e = s.AddDate(1, 0, 0)
	}
	return &s, &e
}

// Gallery serves the photobook: a user's saved sessions, newest first,
// optionally narrowed by date. Anonymous visitors see only anonymous
// sessions; signed-in users see only their own.
type Gallery struct {
	db SessionLister
}

func NewGallery(db SessionLister) *Gallery {
	return &Gallery{db: db}
}

func (g *Gallery) List(userID *string, limit int, filter DateFilter) ([]*models.StripSession, error) {
	if limit <= 0 {
		limit = DefaultGalleryLimit
	}
	start, end := filter.Range()
	return g.db.ListSessions(userID, limit, start, end)
}

// FilterOptions describes the year/month/day choices the photobook
// filter dropdowns offer, derived from the dates sessions were
// actually captured on.
type FilterOptions struct {
	Years  []int        `json:"years"`
	Months []time.Month `json:"months"`
	Days   []int        `json:"days"`
	Dates  []time.Time  `json:"-"`
}

// FilterOptionsFor computes the dropdown choices for the identity's
// sessions, constrained by whatever the filter already pins down.
func (g *Gallery) FilterOptionsFor(userID *string, filter DateFilter) (*FilterOptions, error) {
	dates, err := g.db.DistinctCaptureDates(userID)
	if err != nil {
		return nil, err
	}

	opts := &FilterOptions{Dates: dates}
	seenYears := map[int]bool{}
	seenMonths := map[time.Month]bool{}
	seenDays := map[int]bool{}
	for _, d := range dates {
		if !seenYears[d.Year()] {
			seenYears[d.Year()] = true
			opts.Years = append(opts.Years, d.Year())
		}
		if filter.Year != 0 && d.Year() != filter.Year {
			continue
		}
		if !seenMonths[d.Month()] {
			seenMonths[d.Month()] = true
			opts.Months = append(opts.Months, d.Month())
		}
		if filter.Month != 0 && d.Month() != filter.Month {
			continue
		}
		if !seenDays[d.Day()] {
			seenDays[d.Day()] = true
			opts.Days = append(opts.Days, d.Day())
		}
	}
	return opts, nil
}
