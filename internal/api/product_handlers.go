package api

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/youthfin/yofin/internal/models"
)

// ProductHandler handles bank product catalog requests
type ProductHandler struct {
	store  ProductStore
	logger *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(store ProductStore, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		store:  store,
		logger: logger,
	}
}

// ProductsResponse represents the product list response
type ProductsResponse struct {
	Products []models.Product `json:"products"`
	Count    int              `json:"count"`
}

// ListProducts handles GET /api/v1/products
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := models.ProductFilter{
		ProductType: r.URL.Query().Get("type"),
		BankName:    r.URL.Query().Get("bank"),
	}

	products, err := h.store.List(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, "failed to list products", err)
		return
	}

	if products == nil {
		products = []models.Product{}
	}

	writeJSON(w, http.StatusOK, ProductsResponse{
		Products: products,
		Count:    len(products),
	})
}

// GetProduct handles GET /api/v1/products/{code}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request, code string) {
	product, err := h.store.GetByCode(r.Context(), code)
	if err != nil {
		respondError(w, h.logger, "failed to get product", err)
		return
	}

	if product == nil {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /api/v1/products
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := ValidateProduct(&product); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Check for duplicates before inserting
	existing, err := h.store.GetByCode(r.Context(), product.ProductCode)
	if err != nil {
		respondError(w, h.logger, "failed to check for existing product", err)
		return
	}
	if existing != nil {
		http.Error(w, "Product with this code already exists", http.StatusConflict)
		return
	}

	if err := h.store.Create(r.Context(), product); err != nil {
		respondError(w, h.logger, "failed to create product", err)
		return
	}

	h.logger.Info("product created", "code", product.ProductCode)
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/{code}
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request, code string) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// The path is authoritative for the product code
	product.ProductCode = code

	if err := ValidateProduct(&product); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.store.Update(r.Context(), product); err != nil {
		respondError(w, h.logger, "failed to update product", err)
		return
	}

	h.logger.Info("product updated", "code", code)
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/{code}. Products are
// deactivated rather than removed so existing portfolios keep resolving.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request, code string) {
	if err := h.store.Deactivate(r.Context(), code); err != nil {
		respondError(w, h.logger, "failed to deactivate product", err)
		return
	}

	h.logger.Info("product deactivated", "code", code)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "product_code": code})
}
