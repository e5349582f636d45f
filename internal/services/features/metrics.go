package features

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"FinDash/internal/domain/models"

	"github.com/shopspring/decimal"
)

const (
	// OccupancyFloor and OccupancyCeil bound the synthetic occupancy rate, [floor, ceil).
	OccupancyFloor = 95.0
	OccupancyCeil  = 98.0

	rentChangeRatio   = 0.1
	rentChangePercent = 10.0
)

// OccupancyFunc returns an occupancy rate for a location.
type OccupancyFunc func(loc models.Location) float64

// RandomOccupancy returns a concurrency-safe OccupancyFunc drawing uniformly from [95, 98).
func RandomOccupancy(seed int64) OccupancyFunc {
	var mu sync.Mutex
	r := rand.New(rand.NewSource(seed))
	return func(models.Location) float64 {
		mu.Lock()
		defer mu.Unlock()
		return OccupancyFloor + r.Float64()*(OccupancyCeil-OccupancyFloor)
	}
}

// DefaultOccupancy seeds RandomOccupancy from the clock.
func DefaultOccupancy() OccupancyFunc {
	return RandomOccupancy(time.Now().UnixNano())
}

// MeanListPrice is the arithmetic mean of list_price, or 0 for no listings.
func MeanListPrice(props []models.Property) float64 {
	if len(props) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range props {
		sum += p.ListPrice
	}
	return sum / float64(len(props))
}

// RentalYield is the annualized rent-to-price ratio in percent.
func RentalYield(monthlyRent, price float64) float64 {
	if monthlyRent <= 0 || price <= 0 {
		return 0
	}
	return monthlyRent * 12 / price * 100
}

// PercentOf returns part/whole*100, or 0 when whole is 0.
func PercentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// DemandScore maps an occupancy rate onto [0, 100].
func DemandScore(occupancy float64) int {
	score := int(Round(occupancy * (100.0 / OccupancyCeil)))
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}

// Round rounds half away from zero to an integer value.
func Round(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	f, _ := decimal.NewFromFloat(v).Round(0).Float64()
	return f
}

// Derive builds a snapshot from vendor trends and rental listings.
// Recomputing with the same inputs and occupancy yields the same snapshot.
func Derive(loc models.Location, trends models.MarketTrends, rentals []models.Property, occupancy float64) models.MarketSnapshot {
	rent := MeanListPrice(rentals)
	price := trends.MedianListingPrice

	return models.MarketSnapshot{
		ZipCode:            loc.ZipCode,
		City:               loc.City,
		State:              loc.State,
		MedianPrice:        price,
		PriceChange:        trends.MedianListingPriceMM,
		PriceChangePercent: PercentOf(trends.MedianListingPriceMM, price),
		SalesVolume:        trends.ActiveListingCount,
		SalesChange:        trends.NewListingCount - trends.PendingListingCount,
		SalesChangePercent: trends.PendingRatio * 100,
		DaysOnMarket:       trends.MedianDaysOnMarket,
		InventoryCount:     trends.TotalListingCount,
		MedianRent:         Round(rent),
		RentChange:         Round(rent * rentChangeRatio),
		RentChangePercent:  rentChangePercent,
		RentalYield:        RentalYield(rent, price),
		OccupancyRate:      occupancy,
		RentDemandScore:    DemandScore(occupancy),
		MedianPriceLabel:   PriceLabel(price),
	}
}

var (
	million  = decimal.NewFromInt(1_000_000)
	thousand = decimal.NewFromInt(1_000)
)

// PriceLabel renders a price as $1.25M or $450K.
func PriceLabel(price float64) string {
	d := decimal.NewFromFloat(price)
	if d.GreaterThanOrEqual(million) {
		return "$" + d.Div(million).StringFixed(2) + "M"
	}
	return "$" + d.Div(thousand).StringFixed(0) + "K"
}

// RevenueLabel renders revenue in whole millions, e.g. $1250M.
func RevenueLabel(revenue float64) string {
	return "$" + decimal.NewFromFloat(revenue).Div(million).StringFixed(0) + "M"
}

// EPSSurprise is (actual-estimate)/estimate*100 and is nil unless both are non-zero.
func EPSSurprise(actual, estimate *float64) *float64 {
	if actual == nil || estimate == nil || *actual == 0 || *estimate == 0 {
		return nil
	}
	v := (*actual - *estimate) / *estimate * 100
	return &v
}
