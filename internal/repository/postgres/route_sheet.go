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

type routeSheetRepository struct {
	db *sqlx.DB
}

func NewRouteSheetRepository(db *sqlx.DB) repository.RouteSheetRepository {
	return &routeSheetRepository{db: db}
}

func (r *routeSheetRepository) Create(ctx context.Context, sheet *model.RouteSheet) error {
	query := `
		INSERT INTO route_sheets (
			id, clinic_id, calendar_plan_id, patient_id, patient_name, iin,
			position, department, visit_date, services, created_at, updated_at
		) VALUES (
			:id, :clinic_id, :calendar_plan_id, :patient_id, :patient_name, :iin,
			:position, :department, :visit_date, :services, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, sheet); err != nil {
		return fmt.Errorf("failed to create route sheet: %w", err)
	}
	return nil
}

func (r *routeSheetRepository) Get(ctx context.Context, id uuid.UUID) (*model.RouteSheet, error) {
	var sheet model.RouteSheet
	err := r.db.GetContext(ctx, &sheet, `SELECT * FROM route_sheets WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("route sheet not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get route sheet: %w", err)
	}
	return &sheet, nil
}

func (r *routeSheetRepository) Update(ctx context.Context, sheet *model.RouteSheet) error {
	query := `
		UPDATE route_sheets SET
			services = :services,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, sheet)
	if err != nil {
		return fmt.Errorf("failed to update route sheet: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("route sheet not found")
	}
	return nil
}

func (r *routeSheetRepository) List(ctx context.Context, filter repository.RouteSheetFilter) ([]*model.RouteSheet, error) {
	query := `SELECT * FROM route_sheets WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.ClinicID != nil {
		query += fmt.Sprintf(" AND clinic_id = $%d", argCount)
		args = append(args, *filter.ClinicID)
		argCount++
	}
	if filter.PatientID != "" {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filter.PatientID)
		argCount++
	}
	if filter.VisitDate != nil {
		query += fmt.Sprintf(" AND visit_date = $%d", argCount)
		args = append(args, *filter.VisitDate)
		argCount++
	}
	query += " ORDER BY created_at DESC"

	sheets := []*model.RouteSheet{}
	if err := r.db.SelectContext(ctx, &sheets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list route sheets: %w", err)
	}
	return sheets, nil
}

func (r *routeSheetRepository) GetByPatientAndDate(ctx context.Context, patientID string, visit model.Date) (*model.RouteSheet, error) {
	var sheet model.RouteSheet
	err := r.db.GetContext(ctx, &sheet,
		`SELECT * FROM route_sheets WHERE patient_id = $1 AND visit_date = $2 LIMIT 1`,
		patientID, visit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("route sheet not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get route sheet by patient and date: %w", err)
	}
	return &sheet, nil
}
