// Package date handles calendar days for the trade journal and price series.
package date

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readFormat = "2006-1-2" // lenient, accepts 2025-7-1

// Format is the ISO-8601 layout dates are written with.
const Format = "2006-01-02"

// Date is a calendar day, with no time of day and no location.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date, so New(2025, 2, 30) is March 2nd.
func New(year int, month time.Month, day int) Date {
	y, m, d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return Date{y, m, d}
}

// Of returns the day t falls on, in t's own location.
func Of(t time.Time) Date { return New(t.Date()) }

// Today is the current local day.
func Today() Date { return Of(time.Now()) }

func (d Date) Year() int             { return d.y }
func (d Date) Month() time.Month     { return d.m }
func (d Date) Day() int              { return d.d }
func (d Date) Weekday() time.Weekday { return d.Time().Weekday() }
func (d Date) IsZero() bool          { return d == Date{} }

// Time is midnight UTC on d.
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }
func (d Date) After(x Date) bool  { return d.Time().After(x.Time()) }

// Add moves d by days.
func (d Date) Add(days int) Date { return New(d.y, d.m, d.d+days) }

// AddMonth moves d by months, normalizing overflowing days.
func (d Date) AddMonth(months int) Date { return New(d.y, d.m+time.Month(months), d.d) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(Format)
}

var relativeRE = regexp.MustCompile(`^([+-])(\d+)([dwmqy])$`)

// Parse reads an ISO date ("2025-07-01", "2025-7-1"), "today", or a date
// relative to today such as "-1w" or "+3m".
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "today" || s == "0d" {
		return Today(), nil
	}
	if m := relativeRE.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return Date{}, fmt.Errorf("invalid relative date %q: %w", s, err)
		}
		if m[1] == "-" {
			n = -n
		}
		today := Today()
		switch m[3] {
		case "d":
			return today.Add(n), nil
		case "w":
			return today.Add(7 * n), nil
		case "m":
			return today.AddMonth(n), nil
		case "q":
			return today.AddMonth(3 * n), nil
		default:
			return today.AddMonth(12 * n), nil
		}
	}
	t, err := time.Parse(readFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, Format, err)
	}
	return Of(t), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

// Value stores the date as a midnight UTC timestamp.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time(), nil
}

// Scan reads a date column returned either as a time or as text.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = Of(v.UTC())
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		return fmt.Errorf("cannot scan %T into a date", src)
	}
	return nil
}

func (d *Date) scanText(s string) error {
	if len(s) > len(Format) {
		s = s[:len(Format)]
	}
	v, err := time.Parse(Format, s)
	if err != nil {
		return fmt.Errorf("cannot scan %q into a date: %w", s, err)
	}
	*d = Of(v)
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
	_ driver.Valuer    = Date{}
)
