package billing

import "time"

// MissingPeriods returns the ordered periods in [start, today's period]
// that are absent from `paid`. It is a pure function of its inputs; a
// start period in the future yields an empty result.
func MissingPeriods(start Period, paid []Period, today time.Time) []Period {
	paidSet := make(map[Period]struct{}, len(paid))
	for _, p := range paid {
		paidSet[p] = struct{}{}
	}

	var missing []Period
	for _, p := range PeriodsBetween(start, PeriodOf(today)) {
		if _, ok := paidSet[p]; !ok {
			missing = append(missing, p)
		}
	}
	return missing
}
