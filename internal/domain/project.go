package domain

import "time"

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Project is a time-boxed piece of work.
type Project struct {
	ID          int64
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
}

// IsActive reports whether the project's end date is strictly after the
// calendar day of now.
func (p Project) IsActive(now time.Time) bool {
	return DateOf(p.EndDate).After(DateOf(now))
}

// DateOf truncates t to midnight UTC of its calendar day in t's location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
