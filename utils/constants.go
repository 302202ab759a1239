package utils

import (
	"time"
)

// Session and cache time constants
const (
	// QuoteSessionTTL is the time-to-live for persisted quote sessions (24 hours)
	QuoteSessionTTL = 24 * time.Hour

	// CatalogCacheTTL is the time-to-live for the warm catalog copy in Redis (7 days)
	CatalogCacheTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Upstream client constants
const (
	// DefaultUpstreamTimeout bounds a single request to the quoting service
	DefaultUpstreamTimeout = 30 * time.Second

	// QuoteSubmitTimeout bounds a quote computation round trip
	QuoteSubmitTimeout = 60 * time.Second
)
