package analytics

import (
	"errors"
	"fmt"
	"time"
)

// TimeRange selects both the reporting window and the trend granularity.
type TimeRange string

const (
	RangeDay   TimeRange = "day"
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"

	DefaultTimeRange = RangeWeek
)

var ErrInvalidTimeRange = errors.New("invalid time range")

// ParseTimeRange accepts day, week, month or year. An empty string selects
// DefaultTimeRange.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(s); r {
	case "":
		return DefaultTimeRange, nil
	case RangeDay, RangeWeek, RangeMonth, RangeYear:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q (want day, week, month or year)", ErrInvalidTimeRange, s)
}

// WindowStart steps back one range length from t in calendar terms: one day,
// seven days, one month or one year.
func (r TimeRange) WindowStart(t time.Time) time.Time {
	switch r {
	case RangeDay:
		return t.AddDate(0, 0, -1)
	case RangeMonth:
		return t.AddDate(0, -1, 0)
	case RangeYear:
		return t.AddDate(-1, 0, 0)
	default:
		return t.AddDate(0, 0, -7)
	}
}

type granularity int

const (
	byHour granularity = iota
	byDay
	byMonth
)

// buckets returns the trend granularity and number of buckets for r.
func (r TimeRange) buckets() (granularity, int) {
	switch r {
	case RangeDay:
		return byHour, 24
	case RangeMonth:
		return byDay, 30
	case RangeYear:
		return byMonth, 12
	default:
		return byDay, 7
	}
}

func (g granularity) truncate(t time.Time) time.Time {
	switch g {
	case byHour:
		return t.Add(-time.Duration(t.Minute())*time.Minute -
			time.Duration(t.Second())*time.Second -
			time.Duration(t.Nanosecond()))
	case byDay:
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	default:
		y, m, _ := t.Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	}
}

// step moves a truncated bucket start n buckets forward (or back when n < 0).
func (g granularity) step(t time.Time, n int) time.Time {
	switch g {
	case byHour:
		return t.Add(time.Duration(n) * time.Hour)
	case byDay:
		return t.AddDate(0, 0, n)
	default:
		return t.AddDate(0, n, 0)
	}
}

func (g granularity) label(t time.Time) string {
	switch g {
	case byHour:
		return t.Format("2006-01-02T15:00")
	case byDay:
		return t.Format("2006-01-02")
	default:
		return t.Format("2006-01")
	}
}
