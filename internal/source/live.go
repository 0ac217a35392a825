package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/youthfin/yofin/internal/models"
	"github.com/youthfin/yofin/internal/normalize"
)

// DefaultTimeout bounds every remote fetch when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// LiveGateway fetches records over HTTP from the product service and the
// user service. Responses pass through the normalizer, so upstream schema
// dialects never leak past this package.
type LiveGateway struct {
	productBaseURL string
	userBaseURL    string
	client         *http.Client
	logger         *slog.Logger
}

// NewLiveGateway creates a gateway against the given service base URLs.
func NewLiveGateway(productBaseURL, userBaseURL string, timeout time.Duration, logger *slog.Logger) *LiveGateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LiveGateway{
		productBaseURL: strings.TrimSuffix(productBaseURL, "/"),
		userBaseURL:    strings.TrimSuffix(userBaseURL, "/"),
		client:         &http.Client{Timeout: timeout},
		logger:         logger,
	}
}

// Mode reports ModeLive.
func (g *LiveGateway) Mode() Mode {
	return ModeLive
}

// FetchProducts retrieves bank products from the product service and
// normalizes them into canonical records.
func (g *LiveGateway) FetchProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	endpoint := g.productBaseURL + "/products"
	startTime := time.Now()

	payload, err := g.getJSON(ctx, endpoint)
	if err != nil {
		g.logger.Error("failed to fetch bank products", "url", endpoint, "error", err)
		return nil, err
	}

	records := normalize.ExtractList(payload, normalize.KindProduct)
	products := normalize.Products(records)

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}

	g.logger.Info("fetched bank products",
		"url", endpoint,
		"count", len(out),
		"total", len(products),
		"duration_ms", time.Since(startTime).Milliseconds())
	return out, nil
}

// FetchPolicies retrieves youth policies from the product service and
// normalizes them into canonical records.
func (g *LiveGateway) FetchPolicies(ctx context.Context, filter models.PolicyFilter) ([]models.Policy, error) {
	endpoint := g.productBaseURL + "/policies"
	startTime := time.Now()

	payload, err := g.getJSON(ctx, endpoint)
	if err != nil {
		g.logger.Error("failed to fetch youth policies", "url", endpoint, "error", err)
		return nil, err
	}

	records := normalize.ExtractList(payload, normalize.KindPolicy)
	policies := normalize.Policies(records)

	out := make([]models.Policy, 0, len(policies))
	for _, p := range policies {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}

	g.logger.Info("fetched youth policies",
		"url", endpoint,
		"count", len(out),
		"total", len(policies),
		"duration_ms", time.Since(startTime).Milliseconds())
	return out, nil
}

// FetchUserProfile retrieves a single profile from the user service. An
// upstream 404 maps to ErrNotFound; every other failure maps to
// ErrSourceUnavailable.
func (g *LiveGateway) FetchUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	endpoint := g.userBaseURL + "/users/" + url.PathEscape(userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("failed to fetch user profile", "url", endpoint, "error", err)
		return nil, fmt.Errorf("%w: user service: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: user service returned status %d", models.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", models.ErrSourceUnavailable, err)
	}

	doc := body
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		doc = envelope.Data
	}

	var profile models.UserProfile
	if err := json.Unmarshal(doc, &profile); err != nil {
		return nil, fmt.Errorf("%w: invalid profile payload: %v", models.ErrSourceUnavailable, err)
	}
	if profile.UserID == "" {
		profile.UserID = userID
	}

	g.logger.Info("fetched user profile", "url", endpoint, "user_id", profile.UserID)
	return &profile, nil
}

// getJSON performs a GET against endpoint and decodes the response body.
// Transport failures, non-200 statuses and malformed bodies all map to
// ErrSourceUnavailable.
func (g *LiveGateway) getJSON(ctx context.Context, endpoint string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", models.ErrSourceUnavailable, endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", models.ErrSourceUnavailable, err)
	}

	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON from %s: %v", models.ErrSourceUnavailable, endpoint, err)
	}
	return payload, nil
}
