package cheapshark

import (
	"strconv"

	"game-deals-service/internal/domain/deals"
)

func mapDeal(d dealResponse) deals.Deal {
	redirect := ""
	if d.DealID != "" {
		redirect = redirectBaseURL + d.DealID
	}
	return deals.Deal{
		ExternalGameID: d.GameID,
		Title:          d.Title,
		ReleaseDate:    string(d.ReleaseDate),
		StoreID:        d.StoreID,
		DealID:         d.DealID,
		SalePrice:      parsePrice(d.SalePrice),
		NormalPrice:    parsePrice(d.NormalPrice),
		Savings:        parsePrice(d.Savings),
		RedirectURL:    redirect,
	}
}

// parsePrice converts the upstream's string-encoded prices; missing or
// malformed values default to 0 so one bad row never fails the pipeline.
func parsePrice(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
