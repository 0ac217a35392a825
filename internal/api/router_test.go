package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"log/slog"

	"github.com/youthfin/yofin/internal/auth"
	"github.com/youthfin/yofin/internal/engine"
	"github.com/youthfin/yofin/internal/metrics"
	"github.com/youthfin/yofin/internal/models"
	"github.com/youthfin/yofin/internal/preprocess"
	"github.com/youthfin/yofin/internal/source"
)

type fakeProductStore struct {
	products map[string]models.Product
}

func (s *fakeProductStore) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range s.products {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeProductStore) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	p, ok := s.products[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *fakeProductStore) Create(ctx context.Context, product models.Product) error {
	s.products[product.ProductCode] = product
	return nil
}

func (s *fakeProductStore) Update(ctx context.Context, product models.Product) error {
	if _, ok := s.products[product.ProductCode]; !ok {
		return fmt.Errorf("product %s: %w", product.ProductCode, models.ErrNotFound)
	}
	s.products[product.ProductCode] = product
	return nil
}

func (s *fakeProductStore) Deactivate(ctx context.Context, code string) error {
	if _, ok := s.products[code]; !ok {
		return fmt.Errorf("product %s: %w", code, models.ErrNotFound)
	}
	delete(s.products, code)
	return nil
}

type fakePolicyStore struct {
	policies map[string]models.Policy
}

func (s *fakePolicyStore) List(ctx context.Context, filter models.PolicyFilter) ([]models.Policy, error) {
	out := []models.Policy{}
	for _, p := range s.policies {
		if filter.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakePolicyStore) GetByCode(ctx context.Context, code string) (*models.Policy, error) {
	p, ok := s.policies[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *fakePolicyStore) Create(ctx context.Context, policy models.Policy) error {
	s.policies[policy.PolicyCode] = policy
	return nil
}

func (s *fakePolicyStore) Update(ctx context.Context, policy models.Policy) error {
	if _, ok := s.policies[policy.PolicyCode]; !ok {
		return fmt.Errorf("policy %s: %w", policy.PolicyCode, models.ErrNotFound)
	}
	s.policies[policy.PolicyCode] = policy
	return nil
}

func (s *fakePolicyStore) Deactivate(ctx context.Context, code string) error {
	if _, ok := s.policies[code]; !ok {
		return fmt.Errorf("policy %s: %w", code, models.ErrNotFound)
	}
	delete(s.policies, code)
	return nil
}

type fakePortfolioStore struct {
	items map[string][]models.AllocationItem
}

func (s *fakePortfolioStore) AddForUser(ctx context.Context, userID string, items []models.AllocationItem) error {
	s.items[userID] = append(s.items[userID], items...)
	return nil
}

func (s *fakePortfolioStore) ListByUser(ctx context.Context, userID string) ([]models.AllocationItem, error) {
	return s.items[userID], nil
}

// fakeSaver hands each saved recommendation to the test over a channel so
// the asynchronous persistence can be awaited.
type fakeSaver struct {
	ch chan models.Recommendation
}

func (s *fakeSaver) Save(ctx context.Context, rec models.Recommendation) error {
	select {
	case s.ch <- rec:
	default:
	}
	return nil
}

type fakeHistoryStore struct {
	entries  map[string][]models.RecommendationHistory
	gotLimit int
}

func (s *fakeHistoryStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.RecommendationHistory, error) {
	s.gotLimit = limit
	return s.entries[userID], nil
}

type fakeInferenceLogStore struct {
	logs      []models.InferenceLog
	stats     models.InferenceLogStats
	gotFilter models.InferenceLogFilter
}

func (s *fakeInferenceLogStore) List(ctx context.Context, filter models.InferenceLogFilter) ([]models.InferenceLog, error) {
	s.gotFilter = filter
	out := make([]models.InferenceLog, 0, len(s.logs))
	for _, entry := range s.logs {
		if filter.Provider != "" && entry.Provider != filter.Provider {
			continue
		}
		if filter.Status != "" && entry.Status != filter.Status {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *fakeInferenceLogStore) GetStats(ctx context.Context) (*models.InferenceLogStats, error) {
	return &s.stats, nil
}

type fakePreprocessor struct {
	dir    string
	report *preprocess.Report
}

func (p *fakePreprocessor) Run(ctx context.Context, dir string) (*preprocess.Report, error) {
	p.dir = dir
	return p.report, nil
}

type testEnv struct {
	mux        *http.ServeMux
	products   *fakeProductStore
	policies   *fakePolicyStore
	portfolios *fakePortfolioStore
	saver      *fakeSaver
	history    *fakeHistoryStore
	inference  *fakeInferenceLogStore
	pre        *fakePreprocessor
	authCfg    auth.Config
}

func testCollector(t *testing.T) *metrics.Collector {
	t.Helper()
	collector, err := metrics.NewCollector()
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	return collector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		products: &fakeProductStore{products: map[string]models.Product{
			"BANK001": {ProductCode: "BANK001", ProductName: "Fixed-Term Deposit", ProductType: models.ProductTypeDeposit, BankName: "KB Kookmin Bank", InterestRate: 3.5, RiskLevel: 1},
			"BANK004": {ProductCode: "BANK004", ProductName: "Equity Growth Fund", ProductType: models.ProductTypeFund, BankName: "Woori Bank", InterestRate: 7.0, RiskLevel: 4},
		}},
		policies: &fakePolicyStore{policies: map[string]models.Policy{
			"YOUTH001": {PolicyCode: "YOUTH001", PolicyName: "Youth Savings Subsidy", TargetAgeMin: 19, TargetAgeMax: 34, BenefitAmount: 5_000_000},
			"YOUTH003": {PolicyCode: "YOUTH003", PolicyName: "Youth Starter Account", TargetAgeMin: 18, TargetAgeMax: 29, BenefitAmount: 1_000_000},
			"SENIOR01": {PolicyCode: "SENIOR01", PolicyName: "Retirement Top-Up", TargetAgeMin: 60, TargetAgeMax: 99, BenefitAmount: 2_000_000},
		}},
		portfolios: &fakePortfolioStore{items: map[string][]models.AllocationItem{
			"user1": {
				{ProductCode: "BANK001", ProductName: "Fixed-Term Deposit", AllocationPercentage: 40, InvestmentAmount: 4_000_000},
				{ProductCode: "BANK002", ProductName: "Installment Savings", AllocationPercentage: 60, InvestmentAmount: 6_000_000},
			},
		}},
		saver: &fakeSaver{ch: make(chan models.Recommendation, 1)},
		history: &fakeHistoryStore{entries: map[string][]models.RecommendationHistory{
			"user1": {
				{ID: "h1", UserID: "user1", Payload: json.RawMessage(`{"total_investment_amount":10000000}`), Strategy: string(models.StrategyFallback), Confidence: 0.85},
				{ID: "h2", UserID: "user1", Payload: json.RawMessage(`{"total_investment_amount":9000000}`), Strategy: string(models.StrategyAI), ModelName: "gpt-4o-mini", Confidence: 0.9},
			},
		}},
		inference: &fakeInferenceLogStore{
			logs: []models.InferenceLog{
				{ID: "i1", Provider: "openai", Model: "gpt-4o-mini", Operation: "recommendation", TokensUsed: 1200, Status: "success"},
				{ID: "i2", Provider: "openai", Model: "gpt-4o-mini", Operation: "field_mapping", TokensUsed: 300, Status: "error"},
				{ID: "i3", Provider: "gemini", Model: "gemini-2.0-flash", Operation: "recommendation", TokensUsed: 900, Status: "success"},
			},
			stats: models.InferenceLogStats{TotalCalls: 3, TotalTokens: 2400, SuccessfulCalls: 2, FailedCalls: 1, AvgLatencyMs: 850},
		},
		pre: &fakePreprocessor{report: &preprocess.Report{
			Files:    []preprocess.FileReport{{File: "01_products.json", Kind: "product", Mode: "rule", Loaded: 5, Normalized: 5, Upserted: 5}},
			Loaded:   5, Normalized: 5, Upserted: 5,
		}},
		authCfg: auth.Config{JWTSecret: "test-secret", AdminPassword: "letmein", TokenDuration: time.Hour},
	}

	env.mux = http.NewServeMux()
	SetupRoutes(env.mux, source.NewMockGateway(), engine.New(nil, logger), env.products, env.policies, env.portfolios, env.saver, env.history, env.inference, env.pre, "data/seed", testCollector(t), env.authCfg, "", logger)
	return env
}

func (env *testEnv) authToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("admin", env.authCfg.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)
	return rr
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
}

func TestRecommendRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/v1/portfolio/recommend", map[string]string{"user_id": "user1"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var rec models.Recommendation
	decodeInto(t, rr, &rec)
	if rec.UserID != "user1" {
		t.Errorf("UserID = %q, want user1", rec.UserID)
	}
	if rec.Strategy != models.StrategyFallback {
		t.Errorf("Strategy = %q, want %q", rec.Strategy, models.StrategyFallback)
	}
	if len(rec.Items) == 0 {
		t.Fatal("expected allocation items")
	}

	total := 0.0
	for _, item := range rec.Items {
		total += item.AllocationPercentage
	}
	if total < 99.9 || total > 100.1 {
		t.Errorf("allocation sum = %.2f, want 100", total)
	}

	select {
	case saved := <-env.saver.ch:
		if saved.UserID != "user1" {
			t.Errorf("persisted UserID = %q, want user1", saved.UserID)
		}
		if saved.ID != rec.ID {
			t.Errorf("persisted ID = %q, want %q", saved.ID, rec.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("recommendation was not persisted")
	}
}

func TestRecommendRouteInlineProfile(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{
		"profile": map[string]interface{}{
			"user_id":        "visitor",
			"age":            27,
			"total_assets":   5_000_000,
			"risk_tolerance": 4,
		},
	}
	rr := env.do(t, http.MethodPost, "/api/v1/portfolio/recommend", body, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var rec models.Recommendation
	decodeInto(t, rr, &rec)
	if rec.UserID != "visitor" {
		t.Errorf("UserID = %q, want visitor", rec.UserID)
	}
	if rec.TotalInvestmentAmount != 5_000_000 {
		t.Errorf("TotalInvestmentAmount = %.0f, want 5000000", rec.TotalInvestmentAmount)
	}
}

func TestRecommendRouteErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		method     string
		body       interface{}
		wantStatus int
	}{
		{"unknown user", http.MethodPost, map[string]string{"user_id": "ghost"}, http.StatusNotFound},
		{"empty body", http.MethodPost, map[string]string{}, http.StatusBadRequest},
		{"negative assets", http.MethodPost, map[string]interface{}{"profile": map[string]interface{}{"total_assets": -1}}, http.StatusBadRequest},
		{"wrong method", http.MethodGet, nil, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, "/api/v1/portfolio/recommend", tt.body, "")
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestRecommendRouteRejectsMalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/portfolio/recommend", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	env.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestPortfolioRoutes(t *testing.T) {
	env := newTestEnv(t)

	t.Run("get portfolio", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/v1/portfolio/user1", nil, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var resp PortfolioResponse
		decodeInto(t, rr, &resp)
		if resp.UserID != "user1" || resp.Count != 2 {
			t.Errorf("got user %q count %d, want user1 count 2", resp.UserID, resp.Count)
		}
	})

	t.Run("get empty portfolio", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/v1/portfolio/user2", nil, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var resp PortfolioResponse
		decodeInto(t, rr, &resp)
		if resp.Count != 0 || resp.Items == nil {
			t.Errorf("want empty list, got %+v", resp)
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/v1/portfolio/", nil, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})

	t.Run("add items requires auth", func(t *testing.T) {
		body := AddItemsRequest{Items: []models.AllocationItem{{ProductCode: "BANK004", AllocationPercentage: 100, InvestmentAmount: 1_000_000}}}
		rr := env.do(t, http.MethodPost, "/api/v1/portfolio/user1/items", body, "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("add items", func(t *testing.T) {
		body := AddItemsRequest{Items: []models.AllocationItem{{ProductCode: "BANK004", AllocationPercentage: 100, InvestmentAmount: 1_000_000}}}
		rr := env.do(t, http.MethodPost, "/api/v1/portfolio/user1/items", body, env.authToken(t))
		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		if got := len(env.portfolios.items["user1"]); got != 3 {
			t.Errorf("stored items = %d, want 3", got)
		}
	})

	t.Run("add invalid items", func(t *testing.T) {
		body := AddItemsRequest{Items: []models.AllocationItem{{AllocationPercentage: 100}}}
		rr := env.do(t, http.MethodPost, "/api/v1/portfolio/user1/items", body, env.authToken(t))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})
}

func TestAnalysisRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/v1/portfolio/analysis/user1", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var analysis models.PortfolioAnalysis
	decodeInto(t, rr, &analysis)
	if analysis.UserID != "user1" {
		t.Errorf("UserID = %q, want user1", analysis.UserID)
	}
	if analysis.TotalValue != 10_000_000 {
		t.Errorf("TotalValue = %.0f, want 10000000", analysis.TotalValue)
	}
	if len(analysis.SectorAllocation) == 0 {
		t.Error("expected sector allocation")
	}

	empty := env.do(t, http.MethodGet, "/api/v1/portfolio/analysis/user2", nil, "")
	if empty.Code != http.StatusNotFound {
		t.Errorf("empty portfolio status = %d, want 404", empty.Code)
	}
	if !strings.Contains(empty.Body.String(), "Portfolio is empty") {
		t.Errorf("body = %q, want empty-portfolio message", empty.Body.String())
	}
}

func TestProductRoutes(t *testing.T) {
	env := newTestEnv(t)
	token := env.authToken(t)

	t.Run("list", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/v1/products", nil, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var resp ProductsResponse
		decodeInto(t, rr, &resp)
		if resp.Count != 2 {
			t.Errorf("Count = %d, want 2", resp.Count)
		}
	})

	t.Run("list with type filter", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/v1/products?type=deposit", nil, "")
		var resp ProductsResponse
		decodeInto(t, rr, &resp)
		if resp.Count != 1 || resp.Products[0].ProductCode != "BANK001" {
			t.Errorf("got %+v, want only BANK001", resp.Products)
		}
	})

	t.Run("get by code", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/v1/products/BANK001", nil, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var product models.Product
		decodeInto(t, rr, &product)
		if product.ProductName != "Fixed-Term Deposit" {
			t.Errorf("ProductName = %q", product.ProductName)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/v1/products/NOPE", nil, "")
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})

	t.Run("create requires auth", func(t *testing.T) {
		body := models.Product{ProductCode: "BANK009", ProductName: "New Deposit", ProductType: models.ProductTypeDeposit, RiskLevel: 1}
		rr := env.do(t, http.MethodPost, "/api/v1/products", body, "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rr.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		body := models.Product{ProductCode: "BANK009", ProductName: "New Deposit", ProductType: models.ProductTypeDeposit, BankName: "Hana Bank", InterestRate: 3.0, RiskLevel: 1}
		rr := env.do(t, http.MethodPost, "/api/v1/products", body, token)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		if _, ok := env.products.products["BANK009"]; !ok {
			t.Error("product was not stored")
		}
	})

	t.Run("create duplicate", func(t *testing.T) {
		body := models.Product{ProductCode: "BANK001", ProductName: "Duplicate", RiskLevel: 1}
		rr := env.do(t, http.MethodPost, "/api/v1/products", body, token)
		if rr.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rr.Code)
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		body := models.Product{ProductCode: "BANK010", RiskLevel: 1}
		rr := env.do(t, http.MethodPost, "/api/v1/products", body, token)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "product_name") {
			t.Errorf("body = %q, want product_name mention", rr.Body.String())
		}
	})

	t.Run("update takes code from path", func(t *testing.T) {
		body := models.Product{ProductCode: "IGNORED", ProductName: "Fixed-Term Deposit Plus", ProductType: models.ProductTypeDeposit, InterestRate: 3.8, RiskLevel: 1}
		rr := env.do(t, http.MethodPut, "/api/v1/products/BANK001", body, token)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		var updated models.Product
		decodeInto(t, rr, &updated)
		if updated.ProductCode != "BANK001" {
			t.Errorf("ProductCode = %q, want BANK001", updated.ProductCode)
		}
		if env.products.products["BANK001"].InterestRate != 3.8 {
			t.Errorf("rate not updated: %+v", env.products.products["BANK001"])
		}
	})

	t.Run("delete", func(t *testing.T) {
		rr := env.do(t, http.MethodDelete, "/api/v1/products/BANK004", nil, token)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		after := env.do(t, http.MethodGet, "/api/v1/products/BANK004", nil, "")
		if after.Code != http.StatusNotFound {
			t.Errorf("status after delete = %d, want 404", after.Code)
		}
	})

	t.Run("delete missing", func(t *testing.T) {
		rr := env.do(t, http.MethodDelete, "/api/v1/products/GHOST", nil, token)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})
}

func TestPolicyRoutes(t *testing.T) {
	env := newTestEnv(t)
	token := env.authToken(t)

	t.Run("list with age filter", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/v1/policies?age=25", nil, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var resp PoliciesResponse
		decodeInto(t, rr, &resp)
		if resp.Count != 2 {
			t.Errorf("Count = %d, want 2 youth policies", resp.Count)
		}
		for _, p := range resp.Policies {
			if p.PolicyCode == "SENIOR01" {
				t.Error("age filter leaked SENIOR01")
			}
		}
	})

	t.Run("invalid age", func(t *testing.T) {
		rr := env.do(t, http.MethodGet, "/api/v1/policies?age=abc", nil, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})

	t.Run("create invalid age range", func(t *testing.T) {
		body := models.Policy{PolicyCode: "YOUTH009", PolicyName: "Backwards", TargetAgeMin: 30, TargetAgeMax: 20}
		rr := env.do(t, http.MethodPost, "/api/v1/policies", body, token)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})

	t.Run("create and get", func(t *testing.T) {
		body := models.Policy{PolicyCode: "YOUTH009", PolicyName: "Housing Deposit Support", TargetAgeMin: 19, TargetAgeMax: 39, BenefitAmount: 3_000_000}
		rr := env.do(t, http.MethodPost, "/api/v1/policies", body, token)
		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
		}
		got := env.do(t, http.MethodGet, "/api/v1/policies/YOUTH009", nil, "")
		if got.Code != http.StatusOK {
			t.Errorf("get status = %d", got.Code)
		}
	})
}

func TestUserRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/v1/users/user1", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var profile models.UserProfile
	decodeInto(t, rr, &profile)
	if profile.UserID != "user1" || profile.Age != 25 {
		t.Errorf("got %+v, want user1 age 25", profile)
	}

	missing := env.do(t, http.MethodGet, "/api/v1/users/ghost", nil, "")
	if missing.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", missing.Code)
	}
}

func TestHistoryRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/v1/recommendations/user1/history", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp HistoryResponse
	decodeInto(t, rr, &resp)
	if resp.Count != 2 {
		t.Errorf("Count = %d, want 2", resp.Count)
	}

	env.do(t, http.MethodGet, "/api/v1/recommendations/user1/history?limit=5", nil, "")
	if env.history.gotLimit != 5 {
		t.Errorf("limit passed = %d, want 5", env.history.gotLimit)
	}

	bad := env.do(t, http.MethodGet, "/api/v1/recommendations/user1/history?limit=abc", nil, "")
	if bad.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", bad.Code)
	}

	noSuffix := env.do(t, http.MethodGet, "/api/v1/recommendations/user1", nil, "")
	if noSuffix.Code != http.StatusNotFound {
		t.Errorf("status without /history = %d, want 404", noSuffix.Code)
	}
}

func TestAdminPreprocessRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/v1/admin/preprocess", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/v1/admin/preprocess", nil, env.authToken(t))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if env.pre.dir != "data/seed" {
		t.Errorf("preprocess dir = %q, want data/seed", env.pre.dir)
	}

	var report preprocess.Report
	decodeInto(t, rr, &report)
	if report.Upserted != 5 {
		t.Errorf("Upserted = %d, want 5", report.Upserted)
	}
}

func TestInferenceLogRoutes(t *testing.T) {
	env := newTestEnv(t)
	token := env.authToken(t)

	rr := env.do(t, http.MethodGet, "/api/v1/admin/inference-logs", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/api/v1/admin/inference-logs", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp InferenceLogsResponse
	decodeInto(t, rr, &resp)
	if resp.Count != 3 {
		t.Errorf("Count = %d, want 3", resp.Count)
	}

	rr = env.do(t, http.MethodGet, "/api/v1/admin/inference-logs?provider=openai&status=success&limit=10", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("filtered status = %d, body %s", rr.Code, rr.Body.String())
	}
	decodeInto(t, rr, &resp)
	if resp.Count != 1 || resp.Logs[0].ID != "i1" {
		t.Errorf("filtered logs = %+v, want only i1", resp.Logs)
	}
	if env.inference.gotFilter.Limit != 10 {
		t.Errorf("limit passed through = %d, want 10", env.inference.gotFilter.Limit)
	}

	rr = env.do(t, http.MethodGet, "/api/v1/admin/inference-logs?limit=abc", nil, token)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid limit status = %d, want 400", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/api/v1/admin/inference-logs/stats", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("stats status = %d, body %s", rr.Code, rr.Body.String())
	}
	var stats models.InferenceLogStats
	decodeInto(t, rr, &stats)
	if stats.TotalCalls != 3 || stats.FailedCalls != 1 {
		t.Errorf("stats = %+v, want 3 calls with 1 failure", stats)
	}
}

func TestLoginRoute(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Password: "letmein"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var resp LoginResponse
	decodeInto(t, rr, &resp)
	if resp.Token == "" {
		t.Error("expected a token")
	}

	validate := env.do(t, http.MethodGet, "/api/auth/validate", nil, resp.Token)
	if validate.Code != http.StatusOK {
		t.Errorf("validate status = %d, want 200", validate.Code)
	}

	wrong := env.do(t, http.MethodPost, "/api/auth/login", LoginRequest{Password: "wrong"}, "")
	if wrong.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", wrong.Code)
	}
}

func TestRoutesWithoutDatabase(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authCfg := auth.Config{JWTSecret: "test-secret", AdminPassword: "letmein", TokenDuration: time.Hour}

	mux := http.NewServeMux()
	SetupRoutes(mux, source.NewMockGateway(), engine.New(nil, logger), nil, nil, nil, nil, nil, nil, nil, "data/seed", testCollector(t), authCfg, "", logger)

	env := &testEnv{mux: mux, authCfg: authCfg}

	for _, path := range []string{"/api/v1/products", "/api/v1/products/BANK001", "/api/v1/policies", "/api/v1/portfolio/user1", "/api/v1/recommendations/user1/history"} {
		rr := env.do(t, http.MethodGet, path, nil, "")
		if rr.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, rr.Code)
		}
	}

	// The gateway-backed flow keeps working without persistence
	rr := env.do(t, http.MethodPost, "/api/v1/portfolio/recommend", map[string]string{"user_id": "user1"}, "")
	if rr.Code != http.StatusOK {
		t.Errorf("recommend status = %d, want 200 (body %s)", rr.Code, rr.Body.String())
	}

	admin := env.do(t, http.MethodPost, "/api/v1/admin/preprocess", nil, env.authToken(t))
	if admin.Code != http.StatusServiceUnavailable {
		t.Errorf("admin status = %d, want 503", admin.Code)
	}

	logs := env.do(t, http.MethodGet, "/api/v1/admin/inference-logs", nil, env.authToken(t))
	if logs.Code != http.StatusServiceUnavailable {
		t.Errorf("inference logs status = %d, want 503", logs.Code)
	}
}

func TestPreflightRequests(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/v1/portfolio/recommend", "/api/v1/products", "/api/v1/unknown"} {
		rr := env.do(t, http.MethodOptions, path, nil, "")
		if rr.Code != http.StatusOK {
			t.Errorf("OPTIONS %s = %d, want 200", path, rr.Code)
		}
		if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Errorf("OPTIONS %s missing CORS origin header", path)
		}
	}
}
