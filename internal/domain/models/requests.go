package models

// Requests for HTTP endpoints. Defined in domain for consistency and reuse.

type MarketsRequest struct {
	View string `query:"view" json:"view" default:"hottest" validate:"oneof=all hottest coldest priceUp priceDown rentals"`
	Q    string `query:"q" json:"q" validate:"max=64"`
}

type AggregateRequest struct {
	Locations []Location `json:"locations" validate:"required,min=1,max=50,dive"`
}

type MoversRequest struct {
	Industry string `query:"industry" json:"industry" default:"technology" validate:"required,max=32"`
}

type EarningsRequest struct {
	From string `query:"from" json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type CryptoRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=100"`
}
