package deals

// Deal is one raw row from the deals catalog. One external game usually has
// several rows, one per store carrying it.
type Deal struct {
	ExternalGameID string  `json:"externalGameId"`
	Title          string  `json:"title"`
	ReleaseDate    string  `json:"releaseDate,omitempty"` // YYYY-MM-DD, may be empty
	StoreID        string  `json:"storeId,omitempty"`
	DealID         string  `json:"dealId,omitempty"`
	SalePrice      float64 `json:"salePrice"`
	NormalPrice    float64 `json:"normalPrice"`
	Savings        float64 `json:"savings,omitempty"`
	RedirectURL    string  `json:"redirectUrl,omitempty"`
}

// Candidate is the slice of a Deal that matters for title matching.
// Candidates are deduplicated by ExternalGameID before matching.
type Candidate struct {
	ExternalGameID string `json:"externalGameId"`
	Title          string `json:"title"`
	ReleaseDate    string `json:"releaseDate,omitempty"`
}

// StoreOffer is one store's price for a matched external game.
type StoreOffer struct {
	StoreID         string   `json:"storeId"`
	StoreName       string   `json:"storeName"`
	Price           float64  `json:"price"`
	OriginalPrice   *float64 `json:"originalPrice,omitempty"`
	DiscountPercent int      `json:"discountPercent,omitempty"`
	DealID          string   `json:"dealId,omitempty"`
	RedirectURL     string   `json:"redirectUrl,omitempty"`
}

// PriceInfo is the externally visible enrichment result for one canonical
// game. A nil *PriceInfo means "confirmed no match"; a nil BestPrice inside
// a non-nil PriceInfo never happens in practice but is kept as a pointer so
// renderers can distinguish "no price" from a zero price.
type PriceInfo struct {
	BestPrice       *float64     `json:"bestPrice"`
	OriginalPrice   *float64     `json:"originalPrice,omitempty"`
	DiscountPercent int          `json:"discountPercent,omitempty"`
	MatchScore      float64      `json:"matchScore"`
	MatchStrategy   string       `json:"matchStrategy"`
	StoreName       string       `json:"storeName,omitempty"`
	Offers          []StoreOffer `json:"offers,omitempty"` // ascending by price
}

// Candidates collapses per-store deal rows to one matching candidate per
// external game, keeping first-seen order.
func Candidates(rows []Deal) []Candidate {
	seen := make(map[string]struct{}, len(rows))
	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ExternalGameID]; ok {
			continue
		}
		seen[row.ExternalGameID] = struct{}{}
		candidates = append(candidates, Candidate{
			ExternalGameID: row.ExternalGameID,
			Title:          row.Title,
			ReleaseDate:    row.ReleaseDate,
		})
	}
	return candidates
}
