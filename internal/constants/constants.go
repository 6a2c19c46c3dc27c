package constants

import "time"

var CacheTTL = struct {
	TitleMetadata time.Duration
	References    time.Duration
}{
	TitleMetadata: 6 * time.Hour,
	References:    1 * time.Hour,
}

var APIConfig = struct {
	OMDBBaseURL      string
	OMDBTimeout      time.Duration
	ScraperTimeout   time.Duration
	EnrichTimeout    time.Duration
	MaxSearchLength  int
	MaxRefsPerSource int
}{
	OMDBBaseURL:      "http://www.omdbapi.com/",
	OMDBTimeout:      10 * time.Second,
	ScraperTimeout:   15 * time.Second,
	EnrichTimeout:    15 * time.Second,
	MaxSearchLength:  100, // OMDB rejects very long title queries
	MaxRefsPerSource: 3,
}

var AIInputLimits = struct {
	MaxTitleLength int
}{
	MaxTitleLength: 200, // keeps a single liked title from dominating the prompt
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
	HealthCheckTimeout  time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        30 * time.Second,
	RateLimitTimeout:    1 * time.Hour, // dedicated timeout for 429 responses
	HealthCheckInterval: 10 * time.Minute,
	HealthCheckTimeout:  10 * time.Second,
}

var RedisConfig = struct {
	ReadyTimeout time.Duration
}{
	ReadyTimeout: 5 * time.Second,
}

var EnrichConfig = struct {
	Concurrency int
}{
	Concurrency: 4,
}
