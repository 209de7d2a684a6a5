package billing

import (
	"fmt"
	"time"
)

// Period identifies one monthly invoicing cycle.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

func (p Period) After(other Period) bool {
	return other.Before(p)
}

// PeriodsBetween enumerates every period in the inclusive range
// [start, end] in chronological order; empty when start is after end.
func PeriodsBetween(start, end Period) []Period {
	if start.After(end) {
		return nil
	}
	var periods []Period
	for p := start; !p.After(end); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}
