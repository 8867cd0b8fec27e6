package models

import "time"

// SystemMetrics is a lightweight snapshot of runtime counters for the
// operational status endpoint.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	ChargesPosted            uint64    `json:"charges_posted"`
	CalculationsTotal        uint64    `json:"calculations_total"`
	GatewayAttempts          uint64    `json:"gateway_attempts"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
