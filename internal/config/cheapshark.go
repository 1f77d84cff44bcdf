package config

const (
	envCheapSharkBaseURL  = "CHEAPSHARK_BASE_URL"
	envCheapSharkPageSize = "CHEAPSHARK_PAGE_SIZE"

	defaultCheapSharkBaseURL = "https://www.cheapshark.com/api/1.0"
)

// CheapSharkConfig controls how we talk to the CheapShark API.
type CheapSharkConfig struct {
	BaseURL  string
	PageSize int
}

func loadCheapShark() CheapSharkConfig {
	return CheapSharkConfig{
		BaseURL:  envOrDefault(envCheapSharkBaseURL, defaultCheapSharkBaseURL),
		PageSize: intEnvOrDefault(envCheapSharkPageSize, 0),
	}
}
