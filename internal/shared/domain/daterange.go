package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDateSpan est retournée pour une période mal formée
var ErrInvalidDateSpan = errors.New("invalid date span")

// DateSpan représente une période de jours calendaires, bornes incluses.
// Value Object: immuable, validé à la création, dates normalisées à minuit UTC.
type DateSpan struct {
	start time.Time
	end   time.Time
}

// CivilDate tronque un instant au jour calendaire (minuit UTC)
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewDateSpan crée une période [start, end]
func NewDateSpan(start, end time.Time) (DateSpan, error) {
	start, end = CivilDate(start), CivilDate(end)
	if end.Before(start) {
		return DateSpan{}, fmt.Errorf("%w: %s is after %s", ErrInvalidDateSpan,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return DateSpan{start: start, end: end}, nil
}

// NewDateSpanYearsBack couvre `yearsBack` années civiles complètes avant
// l'année de `today`, puis l'année en cours jusqu'à hier inclus.
func NewDateSpanYearsBack(yearsBack int, today time.Time) (DateSpan, error) {
	if yearsBack < 0 {
		return DateSpan{}, fmt.Errorf("%w: years back cannot be negative (%d)", ErrInvalidDateSpan, yearsBack)
	}
	today = CivilDate(today)
	start := time.Date(today.Year()-yearsBack, time.January, 1, 0, 0, 0, 0, time.UTC)
	return NewDateSpan(start, today.AddDate(0, 0, -1))
}

// Start retourne le premier jour
func (s DateSpan) Start() time.Time {
	return s.start
}

// End retourne le dernier jour (inclus)
func (s DateSpan) End() time.Time {
	return s.end
}

// Days retourne le nombre de jours de la période
func (s DateSpan) Days() int {
	return int(s.end.Sub(s.start).Hours()/24) + 1
}

// Dates retourne tous les jours de la période, dans l'ordre
func (s DateSpan) Dates() []time.Time {
	dates := make([]time.Time, 0, s.Days())
	for d := s.start; !d.After(s.end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
