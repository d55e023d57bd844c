package date

import (
	"fmt"
	"strings"
	"time"
)

// Period is a standard reporting period.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// ParsePeriod accepts both adjective and noun forms ("monthly", "month").
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "yearly", "year":
		return Yearly, nil
	}
	return Daily, fmt.Errorf("unknown period %q", s)
}

// StartOf returns the first day of the period containing d. Weeks start on
// Monday.
func (d Date) StartOf(p Period) Date {
	switch p {
	case Weekly:
		offset := (int(d.Weekday()) + 6) % 7
		return d.Add(-offset)
	case Monthly:
		return New(d.y, d.m, 1)
	case Quarterly:
		return New(d.y, (d.m-1)/3*3+1, 1)
	case Yearly:
		return New(d.y, time.January, 1)
	}
	return d
}

// EndOf returns the last day of the period containing d.
func (d Date) EndOf(p Period) Date {
	switch p {
	case Weekly:
		return d.StartOf(Weekly).Add(6)
	case Monthly:
		return New(d.y, d.m+1, 0)
	case Quarterly:
		return New(d.y, (d.m-1)/3*3+4, 0)
	case Yearly:
		return New(d.y+1, time.January, 0)
	}
	return d
}

// Range is an inclusive range of days.
type Range struct{ From, To Date }

// NewRange returns the range between from and to, swapping them if needed.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Range returns the period p containing d.
func (p Period) Range(d Date) Range { return Range{From: d.StartOf(p), To: d.EndOf(p)} }

// Contains reports whether d is within r, boundaries included. A zero
// boundary is open.
func (r Range) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	return r.To.IsZero() || !d.After(r.To)
}

// Identifier is a short label of r: "2025-W03", "2025-07", "2025-Q3",
// "2025", or "from_to" for non standard ranges.
func (r Range) Identifier() string {
	switch {
	case r.From == r.To:
		return r.From.String()
	case r == Weekly.Range(r.From):
		y, w := r.From.Time().ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case r == Monthly.Range(r.From):
		return r.From.Time().Format("2006-01")
	case r == Quarterly.Range(r.From):
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case r == Yearly.Range(r.From):
		return fmt.Sprintf("%d", r.From.Year())
	}
	return fmt.Sprintf("%s_%s", r.From, r.To)
}
