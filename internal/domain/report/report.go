package report

import (
	"fmt"
	"sort"
	"time"

	"epi_notifier/internal/domain/equipment"
)

// Status is the derived urgency classification of one record: either already
// expired, or due in DaysLeft whole days (DaysLeft >= 0, 0 meaning today).
type Status struct {
	Expired  bool
	DaysLeft int
}

// Label renders the status the way it appears in the notification table.
func (s Status) Label() string {
	if s.Expired {
		return "EXPIRED"
	}
	if s.DaysLeft == 1 {
		return "Due in 1 day"
	}
	return fmt.Sprintf("Due in %d days", s.DaysLeft)
}

// Item pairs one equipment record with its urgency status.
type Item struct {
	Record equipment.Record
	Status Status
}

// Report is the aggregate for one notifier run: the relevant records of the
// current calendar period, ordered by expiry date. It is built once per run,
// never mutated, and discarded after dispatch.
type Report struct {
	PeriodLabel string
	GeneratedAt time.Time
	Items       []Item
}

// Empty reports whether the report carries no items. An empty report is not
// dispatched.
func (r Report) Empty() bool {
	return len(r.Items) == 0
}

// Build classifies and orders the given records into a period report.
// It is a pure function: deterministic for a given record set and clock value,
// with no I/O. Items are sorted by expiry date ascending, ties broken by
// holder name.
func Build(records []equipment.Record, now time.Time) Report {
	today := Midnight(now)

	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, Item{Record: rec, Status: Classify(rec.ExpiryDate, today)})
	}

	sort.SliceStable(items, func(i, j int) bool {
		di, dj := Midnight(items[i].Record.ExpiryDate), Midnight(items[j].Record.ExpiryDate)
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return items[i].Record.HolderName < items[j].Record.HolderName
	})

	return Report{
		PeriodLabel: PeriodLabel(now),
		GeneratedAt: now,
		Items:       items,
	}
}

// Classify derives the urgency status of an expiry date relative to today.
// Both values are normalized to midnight before subtraction so the
// days-remaining count is exact at date precision.
func Classify(expiry, today time.Time) Status {
	days := int(Midnight(expiry).Sub(Midnight(today)) / (24 * time.Hour))
	if days < 0 {
		return Status{Expired: true}
	}
	return Status{DaysLeft: days}
}

// PeriodLabel returns the calendar month and year of t, e.g. "June 2024".
func PeriodLabel(t time.Time) string {
	return t.Format("January 2006")
}

// Midnight truncates t to its calendar date in UTC. Using UTC makes day
// arithmetic immune to DST transitions.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
