package usecase

import (
	"fmt"
	"testing"

	"FinDash/internal/domain/models"
)

func viewFixture() []models.MarketSnapshot {
	return []models.MarketSnapshot{
		{ZipCode: "78701", City: "Austin", State: "TX", SalesVolume: 120, PriceChangePercent: 1.1, RentDemandScore: 98},
		{ZipCode: "80202", City: "Denver", State: "CO", SalesVolume: 80, PriceChangePercent: -0.5, RentDemandScore: 97},
		{ZipCode: "98101", City: "Seattle", State: "WA", SalesVolume: 200, PriceChangePercent: 2.4, RentDemandScore: 99},
		{ZipCode: "75201", City: "Dallas", State: "TX", SalesVolume: 150, PriceChangePercent: 0.2, RentDemandScore: 96},
	}
}

func zips(ss []models.MarketSnapshot) string {
	out := ""
	for _, s := range ss {
		out += s.ZipCode + " "
	}
	return out
}

func TestSelectView(t *testing.T) {
	cases := []struct {
		view, search, want string
	}{
		{ViewAll, "", "78701 80202 98101 75201 "},
		{ViewHottest, "", "98101 75201 78701 80202 "},
		{ViewColdest, "", "80202 78701 75201 98101 "},
		{ViewPriceUp, "", "98101 78701 75201 80202 "},
		{ViewPriceDown, "", "80202 75201 78701 98101 "},
		{ViewRentals, "", "98101 78701 80202 75201 "},
		{ViewHottest, "tx", "75201 78701 "},
		{ViewAll, "dEnV", "80202 "},
		{ViewAll, "981", "98101 "},
		{"bogus", "", "78701 80202 98101 75201 "},
	}
	for _, tc := range cases {
		t.Run(tc.view+"/"+tc.search, func(t *testing.T) {
			if got := zips(SelectView(viewFixture(), tc.view, tc.search)); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSelectViewLimits(t *testing.T) {
	many := make([]models.MarketSnapshot, 20)
	for i := range many {
		many[i] = models.MarketSnapshot{ZipCode: fmt.Sprintf("%05d", i), SalesVolume: i, RentDemandScore: i}
	}
	if n := len(SelectView(many, ViewHottest, "")); n != 10 {
		t.Fatalf("hottest: expected 10, got %d", n)
	}
	if n := len(SelectView(many, ViewRentals, "")); n != 12 {
		t.Fatalf("rentals: expected 12, got %d", n)
	}
	if n := len(SelectView(many, ViewAll, "")); n != 20 {
		t.Fatalf("all: expected 20, got %d", n)
	}
	if many[0].ZipCode != "00000" {
		t.Fatal("input must not be reordered")
	}
}
