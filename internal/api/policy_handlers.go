package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/youthfin/yofin/internal/models"
)

// PolicyHandler handles youth policy catalog requests
type PolicyHandler struct {
	store  PolicyStore
	logger *slog.Logger
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(store PolicyStore, logger *slog.Logger) *PolicyHandler {
	return &PolicyHandler{
		store:  store,
		logger: logger,
	}
}

// PoliciesResponse represents the policy list response
type PoliciesResponse struct {
	Policies []models.Policy `json:"policies"`
	Count    int             `json:"count"`
}

// ListPolicies handles GET /api/v1/policies
func (h *PolicyHandler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	filter := models.PolicyFilter{
		PolicyType: r.URL.Query().Get("type"),
	}

	if ageStr := r.URL.Query().Get("age"); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil || age < 0 {
			http.Error(w, "Invalid age parameter", http.StatusBadRequest)
			return
		}
		filter.Age = &age
	}

	policies, err := h.store.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, "failed to list policies", err)
		return
	}

	if policies == nil {
		policies = []models.Policy{}
	}

	writeJSON(w, http.StatusOK, PoliciesResponse{
		Policies: policies,
		Count:    len(policies),
	})
}

// GetPolicy handles GET /api/v1/policies/{code}
func (h *PolicyHandler) GetPolicy(w http.ResponseWriter, r *http.Request, code string) {
	policy, err := h.store.GetByCode(r.Context(), code)
	if err != nil {
		respondError(w, h.logger, "failed to get policy", err)
		return
	}

	if policy == nil {
		http.Error(w, "Policy not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, policy)
}

// CreatePolicy handles POST /api/v1/policies
func (h *PolicyHandler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	var policy models.Policy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := ValidatePolicy(&policy); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Check for duplicates before inserting
	existing, err := h.store.GetByCode(r.Context(), policy.PolicyCode)
	if err != nil {
		respondError(w, h.logger, "failed to check for existing policy", err)
		return
	}
	if existing != nil {
		http.Error(w, "Policy with this code already exists", http.StatusConflict)
		return
	}

	if err := h.store.Create(r.Context(), policy); err != nil {
		respondError(w, h.logger, "failed to create policy", err)
		return
	}

	h.logger.Info("policy created", "code", policy.PolicyCode)
	writeJSON(w, http.StatusCreated, policy)
}

// UpdatePolicy handles PUT /api/v1/policies/{code}
func (h *PolicyHandler) UpdatePolicy(w http.ResponseWriter, r *http.Request, code string) {
	var policy models.Policy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// The path is authoritative for the policy code
	policy.PolicyCode = code

	if err := ValidatePolicy(&policy); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.Update(r.Context(), policy); err != nil {
		respondError(w, h.logger, "failed to update policy", err)
		return
	}

	h.logger.Info("policy updated", "code", code)
	writeJSON(w, http.StatusOK, policy)
}

// DeletePolicy handles DELETE /api/v1/policies/{code}
func (h *PolicyHandler) DeletePolicy(w http.ResponseWriter, r *http.Request, code string) {
	if err := h.store.Deactivate(r.Context(), code); err != nil {
		respondError(w, h.logger, "failed to deactivate policy", err)
		return
	}

	h.logger.Info("policy deactivated", "code", code)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "policy_code": code})
}
