package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
)

type expertiseRepository struct {
	db *sqlx.DB
}

func NewExpertiseRepository(db *sqlx.DB) repository.ExpertiseRepository {
	return &expertiseRepository{db: db}
}

func (r *expertiseRepository) Create(ctx context.Context, expertise *model.Expertise) error {
	query := `
		INSERT INTO expertises (
			id, route_sheet_id, patient_id, patient_name, iin, position, department,
			verdict, health_group, occupational_disease, recommendations,
			referral_issued, commission_date, expert_id, expert_name,
			created_at, updated_at
		) VALUES (
			:id, :route_sheet_id, :patient_id, :patient_name, :iin, :position, :department,
			:verdict, :health_group, :occupational_disease, :recommendations,
			:referral_issued, :commission_date, :expert_id, :expert_name,
			:created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, expertise); err != nil {
		return fmt.Errorf("failed to create expertise: %w", err)
	}
	return nil
}

func (r *expertiseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Expertise, error) {
	var expertise model.Expertise
	err := r.db.GetContext(ctx, &expertise, `SELECT * FROM expertises WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("expertise not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get expertise: %w", err)
	}
	return &expertise, nil
}

func (r *expertiseRepository) GetByRouteSheet(ctx context.Context, routeSheetID uuid.UUID) (*model.Expertise, error) {
	var expertise model.Expertise
	err := r.db.GetContext(ctx, &expertise,
		`SELECT * FROM expertises WHERE route_sheet_id = $1 LIMIT 1`, routeSheetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("expertise not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get expertise by route sheet: %w", err)
	}
	return &expertise, nil
}

func (r *expertiseRepository) Update(ctx context.Context, expertise *model.Expertise) error {
	query := `
		UPDATE expertises SET
			verdict = :verdict,
			health_group = :health_group,
			occupational_disease = :occupational_disease,
			recommendations = :recommendations,
			referral_issued = :referral_issued,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, expertise)
	if err != nil {
		return fmt.Errorf("failed to update expertise: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("expertise not found")
	}
	return nil
}

func (r *expertiseRepository) List(ctx context.Context, filter repository.ExpertiseFilter) ([]*model.Expertise, error) {
	query := `SELECT * FROM expertises WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.PatientID != "" {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filter.PatientID)
		argCount++
	}
	if filter.Department != "" {
		query += fmt.Sprintf(" AND department = $%d", argCount)
		args = append(args, filter.Department)
		argCount++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND commission_date >= $%d", argCount)
		args = append(args, *filter.From)
		argCount++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND commission_date <= $%d", argCount)
		args = append(args, *filter.To)
		argCount++
	}
	query += " ORDER BY commission_date DESC, created_at DESC"

	expertises := []*model.Expertise{}
	if err := r.db.SelectContext(ctx, &expertises, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list expertises: %w", err)
	}
	return expertises, nil
}
