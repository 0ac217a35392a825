package models

import "errors"

// Sentinel errors for the recommendation domain. Callers match them with
// errors.Is at component boundaries; the API layer maps them to HTTP status
// codes.
var (
	// ErrSourceUnavailable indicates a remote data dependency is unreachable
	// or returned a non-2xx response.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNotFound indicates a referenced entity id does not exist. Never retried.
	ErrNotFound = errors.New("not found")

	// ErrNoEligibleProducts indicates a recommendation cannot proceed because
	// the product list is empty.
	ErrNoEligibleProducts = errors.New("no eligible products")

	// ErrAIGenerationFailed indicates the AI generation path failed. It is
	// internal to the engine: every occurrence is recovered by the
	// deterministic fallback strategy and never surfaced to callers.
	ErrAIGenerationFailed = errors.New("ai generation failed")

	// ErrEmptyPortfolio indicates the analyzer was asked to analyze a user
	// with no persisted allocation items.
	ErrEmptyPortfolio = errors.New("portfolio is empty")
)
