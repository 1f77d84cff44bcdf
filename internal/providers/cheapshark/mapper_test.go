package cheapshark

import (
	"encoding/json"
	"testing"
)

func TestMapDealBuildsRedirectURL(t *testing.T) {
	deal := mapDeal(dealResponse{
		GameID:      "146",
		Title:       "Celeste",
		SalePrice:   "4.99",
		NormalPrice: "19.99",
		Savings:     "75.037519",
		ReleaseDate: "2018-01-25",
		StoreID:     "1",
		DealID:      "xyz789",
	})

	if deal.ExternalGameID != "146" || deal.Title != "Celeste" {
		t.Fatalf("unexpected identity fields %+v", deal)
	}
	if deal.SalePrice != 4.99 || deal.NormalPrice != 19.99 {
		t.Fatalf("unexpected prices %+v", deal)
	}
	if deal.RedirectURL != redirectBaseURL+"xyz789" {
		t.Fatalf("unexpected redirect URL %s", deal.RedirectURL)
	}
}

func TestMapDealOmitsRedirectWithoutDealID(t *testing.T) {
	deal := mapDeal(dealResponse{GameID: "146", Title: "Celeste"})
	if deal.RedirectURL != "" {
		t.Fatalf("expected empty redirect URL, got %s", deal.RedirectURL)
	}
}

func TestParsePriceDefaultsOnBadInput(t *testing.T) {
	cases := []struct {
		input    string
		expected float64
	}{
		{"", 0},
		{"abc", 0},
		{"-1.50", 0},
		{"14.99", 14.99},
		{"0", 0},
	}

	for _, c := range cases {
		if got := parsePrice(c.input); got != c.expected {
			t.Fatalf("parsePrice(%q): expected %v, got %v", c.input, c.expected, got)
		}
	}
}

func TestFlexibleDateUnmarshal(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{`null`, ""},
		{`""`, ""},
		{`0`, ""},
		{`-100`, ""},
		{`1487894400`, "2017-02-24"},
		{`"2018-01-25"`, "2018-01-25"},
	}

	for _, c := range cases {
		var d flexibleDate
		if err := json.Unmarshal([]byte(c.input), &d); err != nil {
			t.Fatalf("unmarshal %s: unexpected error %v", c.input, err)
		}
		if string(d) != c.expected {
			t.Fatalf("unmarshal %s: expected %q, got %q", c.input, c.expected, d)
		}
	}
}
