package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/youthfin/yofin/internal/models"
)

// PolicyRepository handles youth policy database operations. Deletes are
// soft, like products.
type PolicyRepository struct {
	db *sql.DB
}

// NewPolicyRepository creates a new policy repository.
func NewPolicyRepository(db *sql.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Create inserts a new policy.
func (r *PolicyRepository) Create(ctx context.Context, policy models.Policy) error {
	rawJSON, err := marshalRaw(policy.Raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw payload: %w", err)
	}

	query := `
		INSERT INTO youth_policies (
			id, policy_code, policy_name, target_age_min, target_age_max,
			benefit_amount, requirements, application_period, policy_type,
			description, raw_data, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, NOW(), NOW())
	`

	_, err = r.db.ExecContext(ctx, query,
		uuid.New().String(),
		policy.PolicyCode,
		policy.PolicyName,
		policy.TargetAgeMin,
		policy.TargetAgeMax,
		policy.BenefitAmount,
		policy.Requirements,
		policy.ApplicationPeriod,
		policy.PolicyType,
		policy.Description,
		rawJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to create policy: %w", err)
	}

	return nil
}

// Upsert inserts the policy or refreshes an existing row with the same code,
// leaving is_active untouched on update.
func (r *PolicyRepository) Upsert(ctx context.Context, policy models.Policy) error {
	rawJSON, err := marshalRaw(policy.Raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw payload: %w", err)
	}

	query := `
		INSERT INTO youth_policies (
			id, policy_code, policy_name, target_age_min, target_age_max,
			benefit_amount, requirements, application_period, policy_type,
			description, raw_data, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, NOW(), NOW())
		ON CONFLICT (policy_code) DO UPDATE SET
			policy_name = EXCLUDED.policy_name,
			target_age_min = EXCLUDED.target_age_min,
			target_age_max = EXCLUDED.target_age_max,
			benefit_amount = EXCLUDED.benefit_amount,
			requirements = EXCLUDED.requirements,
			application_period = EXCLUDED.application_period,
			policy_type = EXCLUDED.policy_type,
			description = EXCLUDED.description,
			raw_data = EXCLUDED.raw_data,
			updated_at = NOW()
	`

	_, err = r.db.ExecContext(ctx, query,
		uuid.New().String(),
		policy.PolicyCode,
		policy.PolicyName,
		policy.TargetAgeMin,
		policy.TargetAgeMax,
		policy.BenefitAmount,
		policy.Requirements,
		policy.ApplicationPeriod,
		policy.PolicyType,
		policy.Description,
		rawJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert policy %s: %w", policy.PolicyCode, err)
	}

	return nil
}

// UpsertBatch upserts multiple policies in a single transaction.
func (r *PolicyRepository) UpsertBatch(ctx context.Context, policies []models.Policy) error {
	if len(policies) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO youth_policies (
			id, policy_code, policy_name, target_age_min, target_age_max,
			benefit_amount, requirements, application_period, policy_type,
			description, raw_data, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, NOW(), NOW())
		ON CONFLICT (policy_code) DO UPDATE SET
			policy_name = EXCLUDED.policy_name,
			target_age_min = EXCLUDED.target_age_min,
			target_age_max = EXCLUDED.target_age_max,
			benefit_amount = EXCLUDED.benefit_amount,
			requirements = EXCLUDED.requirements,
			application_period = EXCLUDED.application_period,
			policy_type = EXCLUDED.policy_type,
			description = EXCLUDED.description,
			raw_data = EXCLUDED.raw_data,
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, policy := range policies {
		rawJSON, err := marshalRaw(policy.Raw)
		if err != nil {
			return fmt.Errorf("failed to marshal raw payload for %s: %w", policy.PolicyCode, err)
		}

		_, err = stmt.ExecContext(ctx,
			uuid.New().String(),
			policy.PolicyCode,
			policy.PolicyName,
			policy.TargetAgeMin,
			policy.TargetAgeMax,
			policy.BenefitAmount,
			policy.Requirements,
			policy.ApplicationPeriod,
			policy.PolicyType,
			policy.Description,
			rawJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert policy %s: %w", policy.PolicyCode, err)
		}
	}

	return tx.Commit()
}

// List retrieves active policies, optionally narrowed by age membership and
// policy type. Age membership is inclusive on both ends.
func (r *PolicyRepository) List(ctx context.Context, filter models.PolicyFilter) ([]models.Policy, error) {
	query := `
		SELECT policy_code, policy_name, target_age_min, target_age_max,
		       benefit_amount, requirements, application_period, policy_type,
		       description, raw_data, created_at, updated_at
		FROM youth_policies
		WHERE is_active = TRUE
	`
	args := []interface{}{}
	argPos := 1

	if filter.Age != nil {
		query += fmt.Sprintf(" AND target_age_min <= $%d AND target_age_max >= $%d", argPos, argPos)
		args = append(args, *filter.Age)
		argPos++
	}

	if filter.PolicyType != "" {
		query += fmt.Sprintf(" AND policy_type = $%d", argPos)
		args = append(args, filter.PolicyType)
	}

	query += " ORDER BY policy_code"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query policies: %w", err)
	}
	defer rows.Close()

	var policies []models.Policy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, *policy)
	}

	return policies, rows.Err()
}

// GetByCode retrieves a single active policy, or nil when absent.
func (r *PolicyRepository) GetByCode(ctx context.Context, code string) (*models.Policy, error) {
	query := `
		SELECT policy_code, policy_name, target_age_min, target_age_max,
		       benefit_amount, requirements, application_period, policy_type,
		       description, raw_data, created_at, updated_at
		FROM youth_policies
		WHERE policy_code = $1 AND is_active = TRUE
	`

	policy, err := scanPolicy(r.db.QueryRowContext(ctx, query, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return policy, nil
}

// Update rewrites an existing policy's fields.
func (r *PolicyRepository) Update(ctx context.Context, policy models.Policy) error {
	rawJSON, err := marshalRaw(policy.Raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw payload: %w", err)
	}

	query := `
		UPDATE youth_policies SET
			policy_name = $2,
			target_age_min = $3,
			target_age_max = $4,
			benefit_amount = $5,
			requirements = $6,
			application_period = $7,
			policy_type = $8,
			description = $9,
			raw_data = $10,
			updated_at = NOW()
		WHERE policy_code = $1 AND is_active = TRUE
	`

	result, err := r.db.ExecContext(ctx, query,
		policy.PolicyCode,
		policy.PolicyName,
		policy.TargetAgeMin,
		policy.TargetAgeMax,
		policy.BenefitAmount,
		policy.Requirements,
		policy.ApplicationPeriod,
		policy.PolicyType,
		policy.Description,
		rawJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to update policy %s: %w", policy.PolicyCode, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("policy %s: %w", policy.PolicyCode, models.ErrNotFound)
	}

	return nil
}

// Deactivate soft-deletes a policy.
func (r *PolicyRepository) Deactivate(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE youth_policies SET is_active = FALSE, updated_at = NOW() WHERE policy_code = $1 AND is_active = TRUE",
		code,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate policy %s: %w", code, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("policy %s: %w", code, models.ErrNotFound)
	}

	return nil
}

func scanPolicy(row rowScanner) (*models.Policy, error) {
	var policy models.Policy
	var rawJSON []byte

	err := row.Scan(
		&policy.PolicyCode,
		&policy.PolicyName,
		&policy.TargetAgeMin,
		&policy.TargetAgeMax,
		&policy.BenefitAmount,
		&policy.Requirements,
		&policy.ApplicationPeriod,
		&policy.PolicyType,
		&policy.Description,
		&rawJSON,
		&policy.CreatedAt,
		&policy.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan policy: %w", err)
	}

	if len(rawJSON) > 0 {
		if err := json.Unmarshal(rawJSON, &policy.Raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raw payload: %w", err)
		}
	}

	return &policy, nil
}
