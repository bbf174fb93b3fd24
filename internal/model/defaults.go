package model

import "time"

// Shared defaults used by both the console and watcher binaries.
const (
	DefaultAPIBase            = "http://127.0.0.1:8080/api"
	DefaultRefreshInterval    = 30 * time.Second
	DefaultSettleDelay        = 1500 * time.Millisecond
	DefaultVisibilityDebounce = 1 * time.Second
	DefaultOptionsMaxRetries  = 3
	DefaultOptionsRetryDelay  = 1 * time.Second
	DefaultOptionsTimeout     = 10 * time.Second
	DefaultRequestTimeout     = 30 * time.Second
	DefaultRateLimit          = 10.0 // requests per second
	DefaultRateBurst          = 20
)
