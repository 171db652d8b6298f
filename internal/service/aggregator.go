package service

import (
	"sort"

	"powerplant_project/internal/domain"
)

// ComputeRangeReport selects the batteries whose postcode lies in the closed
// interval [start, end], sorts them by name and totals their capacity.
//
// Postcodes compare as plain strings, so "620" falls inside ["6050", "6200"].
// A start greater than end yields an empty report. The input slice is not
// modified.
func ComputeRangeReport(batteries []domain.Battery, start, end string) domain.RangeReport {
	inRange := make([]domain.Battery, 0)
	for _, b := range batteries {
		if start <= b.Postcode && b.Postcode <= end {
			inRange = append(inRange, b)
		}
	}

	sort.SliceStable(inRange, func(i, j int) bool {
		return inRange[i].Name < inRange[j].Name
	})

	total := 0
	for _, b := range inRange {
		total += b.Capacity
	}

	average := 0.0
	if len(inRange) > 0 {
		average = float64(total) / float64(len(inRange))
	}

	return domain.RangeReport{
		BatteriesInRange:    inRange,
		TotalWattCapacity:   total,
		AverageWattCapacity: average,
	}
}
