// Package source provides access to the upstream bank-product, youth-policy
// and user-profile services. A Gateway is constructed once in either live or
// mock mode; the mode never changes afterwards and live mode never silently
// degrades to mock data.
package source

import (
	"context"

	"github.com/youthfin/yofin/internal/models"
)

// Mode identifies which implementation backs a Gateway.
type Mode string

const (
	ModeLive Mode = "live"
	ModeMock Mode = "mock"
)

// Gateway fetches canonical records from the upstream services.
type Gateway interface {
	// FetchProducts returns bank products matching the filter, in source order.
	FetchProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)

	// FetchPolicies returns youth policies matching the filter, in source order.
	FetchPolicies(ctx context.Context, filter models.PolicyFilter) ([]models.Policy, error)

	// FetchUserProfile returns the profile for userID, or ErrNotFound.
	FetchUserProfile(ctx context.Context, userID string) (*models.UserProfile, error)

	// Mode reports which implementation is serving requests.
	Mode() Mode
}
