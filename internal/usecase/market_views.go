package usecase

import (
	"sort"
	"strings"

	"FinDash/internal/domain/models"
)

// Market views over aggregated snapshots.
const (
	ViewAll       = "all"
	ViewHottest   = "hottest"
	ViewColdest   = "coldest"
	ViewPriceUp   = "priceUp"
	ViewPriceDown = "priceDown"
	ViewRentals   = "rentals"
)

const (
	viewLimit    = 10
	rentalsLimit = 12
)

// SelectView filters snapshots by search and then sorts and trims them for
// view. Unknown views behave like ViewAll. The input slice is not modified.
func SelectView(snapshots []models.MarketSnapshot, view, search string) []models.MarketSnapshot {
	out := filterSnapshots(snapshots, search)

	var (
		less  func(a, b models.MarketSnapshot) bool
		limit int
	)
	switch view {
	case ViewHottest:
		less, limit = func(a, b models.MarketSnapshot) bool { return a.SalesVolume > b.SalesVolume }, viewLimit
	case ViewColdest:
		less, limit = func(a, b models.MarketSnapshot) bool { return a.SalesVolume < b.SalesVolume }, viewLimit
	case ViewPriceUp:
		less, limit = func(a, b models.MarketSnapshot) bool { return a.PriceChangePercent > b.PriceChangePercent }, viewLimit
	case ViewPriceDown:
		less, limit = func(a, b models.MarketSnapshot) bool { return a.PriceChangePercent < b.PriceChangePercent }, viewLimit
	case ViewRentals:
		less, limit = func(a, b models.MarketSnapshot) bool { return a.RentDemandScore > b.RentDemandScore }, rentalsLimit
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// filterSnapshots matches city or state case-insensitively and zip as a substring.
func filterSnapshots(snapshots []models.MarketSnapshot, search string) []models.MarketSnapshot {
	search = strings.TrimSpace(search)
	out := make([]models.MarketSnapshot, 0, len(snapshots))
	if search == "" {
		return append(out, snapshots...)
	}
	needle := strings.ToLower(search)
	for _, s := range snapshots {
		if strings.Contains(strings.ToLower(s.City), needle) ||
			strings.Contains(strings.ToLower(s.State), needle) ||
			strings.Contains(s.ZipCode, search) {
			out = append(out, s)
		}
	}
	return out
}
