package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/youthfin/yofin/internal/models"
)

// ProductRepository handles bank product database operations. Deletes are
// soft: rows flip is_active and reads filter on it.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product. A duplicate product code surfaces as a
// unique-constraint error.
func (r *ProductRepository) Create(ctx context.Context, product models.Product) error {
	rawJSON, err := marshalRaw(product.Raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw payload: %w", err)
	}

	query := `
		INSERT INTO bank_products (
			id, product_code, product_name, product_type, bank_name, interest_rate,
			min_amount, max_amount, term_months, risk_level, features,
			target_customers, raw_data, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE, NOW(), NOW())
	`

	_, err = r.db.ExecContext(ctx, query,
		uuid.New().String(),
		product.ProductCode,
		product.ProductName,
		product.ProductType,
		product.BankName,
		product.InterestRate,
		product.MinAmount,
		product.MaxAmount,
		product.TermMonths,
		product.RiskLevel,
		pq.Array(product.Features),
		product.TargetCustomers,
		rawJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Upsert inserts the product or refreshes an existing row with the same
// code. The is_active flag is left untouched on update so a soft-deleted
// product does not silently come back through a refresh.
func (r *ProductRepository) Upsert(ctx context.Context, product models.Product) error {
	rawJSON, err := marshalRaw(product.Raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw payload: %w", err)
	}

	query := `
		INSERT INTO bank_products (
			id, product_code, product_name, product_type, bank_name, interest_rate,
			min_amount, max_amount, term_months, risk_level, features,
			target_customers, raw_data, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE, NOW(), NOW())
		ON CONFLICT (product_code) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			product_type = EXCLUDED.product_type,
			bank_name = EXCLUDED.bank_name,
			interest_rate = EXCLUDED.interest_rate,
			min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount,
			term_months = EXCLUDED.term_months,
			risk_level = EXCLUDED.risk_level,
			features = EXCLUDED.features,
			target_customers = EXCLUDED.target_customers,
			raw_data = EXCLUDED.raw_data,
			updated_at = NOW()
	`

	_, err = r.db.ExecContext(ctx, query,
		uuid.New().String(),
		product.ProductCode,
		product.ProductName,
		product.ProductType,
		product.BankName,
		product.InterestRate,
		product.MinAmount,
		product.MaxAmount,
		product.TermMonths,
		product.RiskLevel,
		pq.Array(product.Features),
		product.TargetCustomers,
		rawJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", product.ProductCode, err)
	}

	return nil
}

// UpsertBatch upserts multiple products in a single transaction.
func (r *ProductRepository) UpsertBatch(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bank_products (
			id, product_code, product_name, product_type, bank_name, interest_rate,
			min_amount, max_amount, term_months, risk_level, features,
			target_customers, raw_data, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE, NOW(), NOW())
		ON CONFLICT (product_code) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			product_type = EXCLUDED.product_type,
			bank_name = EXCLUDED.bank_name,
			interest_rate = EXCLUDED.interest_rate,
			min_amount = EXCLUDED.min_amount,
			max_amount = EXCLUDED.max_amount,
			term_months = EXCLUDED.term_months,
			risk_level = EXCLUDED.risk_level,
			features = EXCLUDED.features,
			target_customers = EXCLUDED.target_customers,
			raw_data = EXCLUDED.raw_data,
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, product := range products {
		rawJSON, err := marshalRaw(product.Raw)
		if err != nil {
			return fmt.Errorf("failed to marshal raw payload for %s: %w", product.ProductCode, err)
		}

		_, err = stmt.ExecContext(ctx,
			uuid.New().String(),
			product.ProductCode,
			product.ProductName,
			product.ProductType,
			product.BankName,
			product.InterestRate,
			product.MinAmount,
			product.MaxAmount,
			product.TermMonths,
			product.RiskLevel,
			pq.Array(product.Features),
			product.TargetCustomers,
			rawJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", product.ProductCode, err)
		}
	}

	return tx.Commit()
}

// List retrieves active products, optionally narrowed by type and bank.
func (r *ProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := `
		SELECT product_code, product_name, product_type, bank_name, interest_rate,
		       min_amount, max_amount, term_months, risk_level, features,
		       target_customers, raw_data, created_at, updated_at
		FROM bank_products
		WHERE is_active = TRUE
	`
	args := []interface{}{}
	argPos := 1

	if filter.ProductType != "" {
		query += fmt.Sprintf(" AND product_type = $%d", argPos)
		args = append(args, filter.ProductType)
		argPos++
	}

	if filter.BankName != "" {
		query += fmt.Sprintf(" AND bank_name = $%d", argPos)
		args = append(args, filter.BankName)
	}

	query += " ORDER BY product_code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}

	return products, rows.Err()
}

// GetByCode retrieves a single active product, or nil when absent.
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*models.Product, error) {
	query := `
		SELECT product_code, product_name, product_type, bank_name, interest_rate,
		       min_amount, max_amount, term_months, risk_level, features,
		       target_customers, raw_data, created_at, updated_at
		FROM bank_products
		WHERE product_code = $1 AND is_active = TRUE
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return product, nil
}

// Update rewrites an existing product's fields.
func (r *ProductRepository) Update(ctx context.Context, product models.Product) error {
	rawJSON, err := marshalRaw(product.Raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw payload: %w", err)
	}

	query := `
		UPDATE bank_products SET
			product_name = $2,
			product_type = $3,
			bank_name = $4,
			interest_rate = $5,
			min_amount = $6,
			max_amount = $7,
			term_months = $8,
			risk_level = $9,
			features = $10,
			target_customers = $11,
			raw_data = $12,
			updated_at = NOW()
		WHERE product_code = $1 AND is_active = TRUE
	`

	result, err := r.db.ExecContext(ctx, query,
		product.ProductCode,
		product.ProductName,
		product.ProductType,
		product.BankName,
		product.InterestRate,
		product.MinAmount,
		product.MaxAmount,
		product.TermMonths,
		product.RiskLevel,
		pq.Array(product.Features),
		product.TargetCustomers,
		rawJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ProductCode, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product %s: %w", product.ProductCode, models.ErrNotFound)
	}

	return nil
}

// Deactivate soft-deletes a product.
func (r *ProductRepository) Deactivate(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE bank_products SET is_active = FALSE, updated_at = NOW() WHERE product_code = $1 AND is_active = TRUE",
		code,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate product %s: %w", code, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product %s: %w", code, models.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var product models.Product
	var rawJSON []byte

	err := row.Scan(
		&product.ProductCode,
		&product.ProductName,
		&product.ProductType,
		&product.BankName,
		&product.InterestRate,
		&product.MinAmount,
		&product.MaxAmount,
		&product.TermMonths,
		&product.RiskLevel,
		pq.Array(&product.Features),
		&product.TargetCustomers,
		&rawJSON,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if len(rawJSON) > 0 {
		if err := json.Unmarshal(rawJSON, &product.Raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raw payload: %w", err)
		}
	}

	return &product, nil
}

// marshalRaw serializes the preserved source record, or nil when there is
// none so the column stays NULL.
func marshalRaw(raw map[string]interface{}) (interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return b, nil
}
