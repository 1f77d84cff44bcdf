package cheapshark

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type dealResponse struct {
	GameID       string       `json:"gameID"`
	Title        string       `json:"title"`
	InternalName string       `json:"internalName"`
	SalePrice    string       `json:"salePrice"`
	NormalPrice  string       `json:"normalPrice"`
	Savings      string       `json:"savings"`
	ReleaseDate  flexibleDate `json:"releaseDate"`
	DealRating   string       `json:"dealRating"`
	StoreID      string       `json:"storeID"`
	DealID       string       `json:"dealID"`
}

type storeResponse struct {
	StoreID   string `json:"storeID"`
	StoreName string `json:"storeName"`
	IsActive  int    `json:"isActive"`
}

// flexibleDate absorbs the upstream's two release-date encodings: a unix
// timestamp in seconds (0 meaning unknown) or a preformatted date string.
// It normalizes both to YYYY-MM-DD once, at the boundary.
type flexibleDate string

func (d *flexibleDate) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		*d = ""
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = flexibleDate(s)
		return nil
	}

	seconds, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		// Unparsable dates degrade to "unknown" rather than failing
		// the whole payload.
		*d = ""
		return nil
	}
	if seconds <= 0 {
		*d = ""
		return nil
	}
	*d = flexibleDate(time.Unix(seconds, 0).UTC().Format("2006-01-02"))
	return nil
}
