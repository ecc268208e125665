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

type medicalTestRepository struct {
	db *sqlx.DB
}

func NewMedicalTestRepository(db *sqlx.DB) repository.MedicalTestRepository {
	return &medicalTestRepository{db: db}
}

func (r *medicalTestRepository) Create(ctx context.Context, test *model.MedicalTest) error {
	query := `
		INSERT INTO medical_tests (
			id, route_sheet_id, patient_id, patient_name, kind, name, status,
			result, completed_at, created_at, updated_at
		) VALUES (
			:id, :route_sheet_id, :patient_id, :patient_name, :kind, :name, :status,
			:result, :completed_at, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, test); err != nil {
		return fmt.Errorf("failed to create medical test: %w", err)
	}
	return nil
}

func (r *medicalTestRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalTest, error) {
	var test model.MedicalTest
	err := r.db.GetContext(ctx, &test, `SELECT * FROM medical_tests WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("medical test not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get medical test: %w", err)
	}
	return &test, nil
}

func (r *medicalTestRepository) Update(ctx context.Context, test *model.MedicalTest) error {
	query := `
		UPDATE medical_tests SET
			status = :status,
			result = :result,
			completed_at = :completed_at,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, test)
	if err != nil {
		return fmt.Errorf("failed to update medical test: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("medical test not found")
	}
	return nil
}

func (r *medicalTestRepository) ListByRouteSheet(ctx context.Context, routeSheetID uuid.UUID, kind model.TestKind) ([]*model.MedicalTest, error) {
	tests := []*model.MedicalTest{}
	err := r.db.SelectContext(ctx, &tests,
		`SELECT * FROM medical_tests WHERE route_sheet_id = $1 AND kind = $2 ORDER BY created_at`,
		routeSheetID, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical tests: %w", err)
	}
	return tests, nil
}

func (r *medicalTestRepository) List(ctx context.Context, kind model.TestKind) ([]*model.MedicalTest, error) {
	tests := []*model.MedicalTest{}
	err := r.db.SelectContext(ctx, &tests,
		`SELECT * FROM medical_tests WHERE kind = $1 ORDER BY created_at DESC`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list medical tests: %w", err)
	}
	return tests, nil
}

// CountUnfinished counts tests still blocking the commission
func (r *medicalTestRepository) CountUnfinished(ctx context.Context, routeSheetID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM medical_tests WHERE route_sheet_id = $1 AND status <> 'completed'`,
		routeSheetID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unfinished tests: %w", err)
	}
	return count, nil
}
