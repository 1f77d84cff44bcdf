package cheapshark

import "time"

const (
	defaultBaseURL     = "https://www.cheapshark.com/api/1.0"
	defaultPageSize    = 50
	maxPageSize        = 60
	defaultHTTPTimeout = 10 * time.Second

	redirectBaseURL = "https://www.cheapshark.com/redirect?dealID="
)

// ProviderName identifies this provider in logs and metrics.
const ProviderName = "cheapshark"
