package dashboard

import "github.com/Radite/CaicosCompass-Backend-Prod-sub000/internal/core/temporal"

// Resolution thresholds: wider windows read coarser buckets so response
// size stays bounded. Applied consistently so identical requests are
// reproducible.
const (
	monthlyWindowDays = 180
	weeklyWindowDays  = 60
)

// GranularityForWindow maps a requested day-count window to the granularity
// used for its range query.
func GranularityForWindow(days int) temporal.Granularity {
	switch {
	case days > monthlyWindowDays:
		return temporal.Monthly
	case days > weeklyWindowDays:
		return temporal.Weekly
	default:
		return temporal.Daily
	}
}
