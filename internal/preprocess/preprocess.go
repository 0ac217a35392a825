// Package preprocess loads seed files of bank products and youth policies,
// maps them onto the canonical schema and upserts them through the
// repositories. Two modes: rule (table-driven normalization only) and ai
// (model-assisted field mapping that falls back to rule mode on any model
// failure, so a bad provider never blocks seeding).
package preprocess

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/youthfin/yofin/internal/engine"
	"github.com/youthfin/yofin/internal/metrics"
	"github.com/youthfin/yofin/internal/models"
	"github.com/youthfin/yofin/internal/normalize"
)

// Mode selects how seed records are mapped onto the canonical schema.
type Mode string

const (
	ModeRule Mode = "rule"
	ModeAI   Mode = "ai"
)

// operationFieldMapping labels mapping calls in the inference log.
const operationFieldMapping = "preprocess_mapping"

// FieldMapper asks a model for a source-to-canonical field mapping.
// *engine.AIClient satisfies it.
type FieldMapper interface {
	Complete(ctx context.Context, operation, system, prompt string) (string, error)
}

// ProductStore and PolicyStore are the write surfaces preprocessing needs.
// The database repositories implement them.
type ProductStore interface {
	UpsertBatch(ctx context.Context, products []models.Product) error
}

type PolicyStore interface {
	UpsertBatch(ctx context.Context, policies []models.Policy) error
}

// FileReport describes the outcome for one seed file.
type FileReport struct {
	File       string `json:"file"`
	Kind       string `json:"kind"`
	Mode       string `json:"mode"`
	Loaded     int    `json:"loaded"`
	Normalized int    `json:"normalized"`
	Upserted   int    `json:"upserted"`
	Skipped    int    `json:"skipped"`
	Error      string `json:"error,omitempty"`
}

// Report aggregates the outcome of one preprocessing run.
type Report struct {
	Files      []FileReport `json:"files"`
	Loaded     int          `json:"loaded"`
	Normalized int          `json:"normalized"`
	Upserted   int          `json:"upserted"`
	Skipped    int          `json:"skipped"`
	DurationMS int64        `json:"duration_ms"`
}

// Service runs the preprocessing pipeline.
type Service struct {
	products  ProductStore
	policies  PolicyStore
	mapper    FieldMapper
	mode      Mode
	collector *metrics.Collector
	logger    *slog.Logger
}

// New creates a preprocessing service. A nil mapper forces rule mode even
// when ai mode is requested.
func New(products ProductStore, policies PolicyStore, mapper FieldMapper, mode Mode, collector *metrics.Collector, logger *slog.Logger) *Service {
	if mode == "" {
		mode = ModeRule
	}
	return &Service{
		products:  products,
		policies:  policies,
		mapper:    mapper,
		mode:      mode,
		collector: collector,
		logger:    logger,
	}
}

// Run processes every *.json file under dir in name order.
func (s *Service) Run(ctx context.Context, dir string) (*Report, error) {
	start := time.Now()

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list seed files: %w", err)
	}
	sort.Strings(files)

	if len(files) == 0 {
		s.logger.Warn("no seed files found", "dir", dir)
	}

	report := &Report{Files: make([]FileReport, 0, len(files))}
	for _, file := range files {
		fr := s.processFile(ctx, file)
		report.Files = append(report.Files, fr)
		report.Loaded += fr.Loaded
		report.Normalized += fr.Normalized
		report.Upserted += fr.Upserted
		report.Skipped += fr.Skipped

		s.logger.Info("processed seed file",
			"file", fr.File,
			"kind", fr.Kind,
			"mode", fr.Mode,
			"loaded", fr.Loaded,
			"upserted", fr.Upserted,
			"skipped", fr.Skipped)
	}
	report.DurationMS = time.Since(start).Milliseconds()

	s.collector.AddPreprocessed("loaded", report.Loaded)
	s.collector.AddPreprocessed("normalized", report.Normalized)
	s.collector.AddPreprocessed("upserted", report.Upserted)
	s.collector.AddPreprocessed("skipped", report.Skipped)

	return report, nil
}

func (s *Service) processFile(ctx context.Context, path string) FileReport {
	fr := FileReport{File: filepath.Base(path), Mode: string(ModeRule)}

	data, err := os.ReadFile(path)
	if err != nil {
		fr.Error = fmt.Sprintf("failed to read file: %v", err)
		return fr
	}

	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		fr.Error = fmt.Sprintf("invalid JSON: %v", err)
		return fr
	}

	kind, rawList := detectKind(fr.File, payload)
	fr.Kind = string(kind)
	fr.Loaded = len(rawList)
	if len(rawList) == 0 {
		return fr
	}

	var mapping map[string]string
	if s.mode == ModeAI && s.mapper != nil {
		mapping, err = s.mapWithModel(ctx, kind, rawList)
		if err != nil {
			s.logger.Warn("field mapping failed, using rule mode",
				"file", fr.File,
				"error", err)
		} else {
			fr.Mode = string(ModeAI)
		}
	}

	if kind == normalize.KindPolicy {
		policies := normalizePolicies(rawList, mapping)
		fr.Normalized = len(policies)
		fr.Skipped = fr.Loaded - fr.Normalized
		if len(policies) == 0 {
			return fr
		}
		if err := s.policies.UpsertBatch(ctx, policies); err != nil {
			fr.Error = fmt.Sprintf("failed to upsert policies: %v", err)
			return fr
		}
		fr.Upserted = len(policies)
		return fr
	}

	products := normalizeProducts(rawList, mapping)
	fr.Normalized = len(products)
	fr.Skipped = fr.Loaded - fr.Normalized
	if len(products) == 0 {
		return fr
	}
	if err := s.products.UpsertBatch(ctx, products); err != nil {
		fr.Error = fmt.Sprintf("failed to upsert products: %v", err)
		return fr
	}
	fr.Upserted = len(products)
	return fr
}

// detectKind resolves the entity type of a seed file. A filename hint wins;
// otherwise both container resolutions are probed and the one that yields
// records is taken.
func detectKind(name string, payload interface{}) (normalize.EntityKind, []interface{}) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "polic"):
		return normalize.KindPolicy, normalize.ExtractList(payload, normalize.KindPolicy)
	case strings.Contains(lower, "product"):
		return normalize.KindProduct, normalize.ExtractList(payload, normalize.KindProduct)
	}

	if list := normalize.ExtractList(payload, normalize.KindProduct); len(list) > 0 {
		return normalize.KindProduct, list
	}
	return normalize.KindPolicy, normalize.ExtractList(payload, normalize.KindPolicy)
}

// normalizeProducts converts raw records to canonical products, dropping
// records without a usable code. A non-nil mapping translates source keys
// first; the untouched record is preserved under Raw either way.
func normalizeProducts(rawList []interface{}, mapping map[string]string) []models.Product {
	out := make([]models.Product, 0, len(rawList))
	for _, entry := range rawList {
		raw, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		source := raw
		if mapping != nil {
			source = applyMapping(raw, mapping)
		}
		product := normalize.Product(source)
		product.Raw = raw
		if product.ProductCode == "" {
			continue
		}
		out = append(out, product)
	}
	return out
}

func normalizePolicies(rawList []interface{}, mapping map[string]string) []models.Policy {
	out := make([]models.Policy, 0, len(rawList))
	for _, entry := range rawList {
		raw, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		source := raw
		if mapping != nil {
			source = applyMapping(raw, mapping)
		}
		policy := normalize.Policy(source)
		policy.Raw = raw
		if policy.PolicyCode == "" {
			continue
		}
		out = append(out, policy)
	}
	return out
}

// applyMapping builds a canonical-keyed record from the mapping. Unmapped
// canonical fields stay absent so normalization applies its defaults.
func applyMapping(raw map[string]interface{}, mapping map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(mapping))
	for canonical, sourceKey := range mapping {
		if sourceKey == "" {
			continue
		}
		if v, ok := raw[sourceKey]; ok {
			out[canonical] = v
		}
	}
	return out
}

// mapWithModel asks the model for a field mapping based on one sample record.
// One call covers the whole file; record values never round-trip through the
// model.
func (s *Service) mapWithModel(ctx context.Context, kind normalize.EntityKind, rawList []interface{}) (map[string]string, error) {
	sample := firstObject(rawList)
	if sample == nil {
		return nil, fmt.Errorf("no object records to sample")
	}

	text, err := s.mapper.Complete(ctx, operationFieldMapping, mappingSystemPrompt, buildMappingPrompt(kind, sample))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Mapping map[string]string `json:"mapping"`
	}
	if err := json.Unmarshal([]byte(engine.ExtractJSON(text)), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse mapping response: %w", err)
	}
	if len(resp.Mapping) == 0 {
		return nil, fmt.Errorf("model returned an empty mapping")
	}

	return resp.Mapping, nil
}

func firstObject(rawList []interface{}) map[string]interface{} {
	for _, entry := range rawList {
		if m, ok := entry.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

const mappingSystemPrompt = `CRITICAL: You MUST output ONLY valid JSON. Do not include any text before or after the JSON object. Do not wrap it in markdown code blocks.

You map field names from an arbitrary financial data schema onto a canonical schema. Respond with {"mapping": {...}} where every key is a canonical field name and every value is the exact name of the source field holding that data, or "" when the source record has no such field. Never invent source field names.`

var (
	canonicalProductFields = []string{
		"product_code", "product_name", "product_type", "bank_name",
		"interest_rate", "min_amount", "max_amount", "term_months",
		"risk_level", "features", "target_customers",
	}
	canonicalPolicyFields = []string{
		"policy_code", "policy_name", "target_age_min", "target_age_max",
		"benefit_amount", "requirements", "application_period", "policy_type",
		"description",
	}
)

func buildMappingPrompt(kind normalize.EntityKind, sample map[string]interface{}) string {
	fields := canonicalProductFields
	if kind == normalize.KindPolicy {
		fields = canonicalPolicyFields
	}

	sampleJSON, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		sampleJSON = []byte("{}")
	}

	return fmt.Sprintf("Canonical fields:\n%s\n\nSample source record:\n%s\n\nRespond with the JSON mapping only.",
		strings.Join(fields, ", "), sampleJSON)
}
