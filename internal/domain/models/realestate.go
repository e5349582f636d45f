package models

import "time"

// Location is a tracked market. ZipCode is the unique key.
type Location struct {
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required,len=2"`
	ZipCode string `json:"zipCode" validate:"required,numeric,len=5"`
}

// MarketSnapshot is the cached and aggregated statistics for one ZIP code.
// Percent fields are derived from vendor figures, see features.Derive.
type MarketSnapshot struct {
	ZipCode            string  `json:"zipCode"`
	City               string  `json:"city"`
	State              string  `json:"state"`
	MedianPrice        float64 `json:"medianPrice"`
	PriceChange        float64 `json:"priceChange"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	SalesVolume        int     `json:"salesVolume"`
	SalesChange        int     `json:"salesChange"`
	SalesChangePercent float64 `json:"salesChangePercent"`
	DaysOnMarket       float64 `json:"daysOnMarket"`
	InventoryCount     int     `json:"inventoryCount"`
	MedianRent         float64 `json:"medianRent"`
	RentChange         float64 `json:"rentChange"`
	RentChangePercent  float64 `json:"rentChangePercent"`
	RentalYield        float64 `json:"rentalYield"`
	OccupancyRate      float64 `json:"occupancyRate"`
	RentDemandScore    int     `json:"rentDemandScore"`
	MedianPriceLabel   string  `json:"medianPriceLabel,omitempty"`
}

// CacheEntry is a snapshot plus the time it was fetched from the vendor.
type CacheEntry struct {
	Snapshot  MarketSnapshot `json:"snapshot"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// MarketTrends is the first element of data.market_trends from the vendor.
type MarketTrends struct {
	MedianListingPrice        float64 `json:"median_listing_price"`
	MedianListingPriceMM      float64 `json:"median_listing_price_mm"`
	MedianListingPriceYY      float64 `json:"median_listing_price_yy"`
	ActiveListingCount        int     `json:"active_listing_count"`
	MedianDaysOnMarket        float64 `json:"median_days_on_market"`
	NewListingCount           int     `json:"new_listing_count"`
	PriceIncreasedCount       int     `json:"price_increased_count"`
	PriceReducedCount         int     `json:"price_reduced_count"`
	PendingListingCount       int     `json:"pending_listing_count"`
	MedianListingPricePerSqft float64 `json:"median_listing_price_per_square_foot"`
	MedianSquareFeet          float64 `json:"median_square_feet"`
	AverageListingPrice       float64 `json:"average_listing_price"`
	TotalListingCount         int     `json:"total_listing_count"`
	PendingRatio              float64 `json:"pending_ratio"`
	Month                     string  `json:"month"`
	Year                      int     `json:"year"`
}

// Property is one listing from data.home_search.results.
type Property struct {
	Location struct {
		Address struct {
			City       string `json:"city"`
			State      string `json:"state"`
			PostalCode string `json:"postal_code"`
		} `json:"address"`
	} `json:"location"`
	ListPrice          float64 `json:"list_price"`
	PriceReducedAmount float64 `json:"price_reduced_amount,omitempty"`
	LastSoldPrice      float64 `json:"last_sold_price,omitempty"`
	Description        struct {
		Beds  float64 `json:"beds,omitempty"`
		Baths float64 `json:"baths,omitempty"`
		Sqft  float64 `json:"sqft,omitempty"`
		Type  string  `json:"type,omitempty"`
	} `json:"description"`
	ListDate     string `json:"list_date,omitempty"`
	LastSoldDate string `json:"last_sold_date,omitempty"`
	Status       string `json:"status,omitempty"`
}

// OutcomeStatus tells why a location is or is not in an aggregation result.
type OutcomeStatus string

const (
	OutcomeCached  OutcomeStatus = "cached"
	OutcomeFresh   OutcomeStatus = "fresh"
	OutcomeNoData  OutcomeStatus = "no_data"
	OutcomeError   OutcomeStatus = "error"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// LocationOutcome records the result of one location in an aggregation call.
type LocationOutcome struct {
	ZipCode string        `json:"zipCode"`
	City    string        `json:"city"`
	Status  OutcomeStatus `json:"status"`
	Error   string        `json:"error,omitempty"`
}

// AggregateReport is the snapshot list plus one outcome per input location.
type AggregateReport struct {
	Snapshots []MarketSnapshot  `json:"snapshots"`
	Outcomes  []LocationOutcome `json:"outcomes"`
	Timestamp time.Time         `json:"timestamp"`
}

// SnapshotEvent is the envelope published to snapshot sinks.
type SnapshotEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Snapshot  MarketSnapshot `json:"snapshot"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

const SnapshotEventType = "realestate.snapshot.refreshed"
