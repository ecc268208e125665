package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
)

type calendarPlanRepository struct {
	db *sqlx.DB
}

func NewCalendarPlanRepository(db *sqlx.DB) repository.CalendarPlanRepository {
	return &calendarPlanRepository{db: db}
}

func (r *calendarPlanRepository) Create(ctx context.Context, plan *model.CalendarPlan) error {
	query := `
		INSERT INTO calendar_plans (
			id, contract_id, status, start_date, end_date, employee_ids,
			departments_info, harmful_factors, selected_doctors,
			clinic_name, employer_name, clinic_representative,
			employer_representative, rejection_reason, created_at, updated_at
		) VALUES (
			:id, :contract_id, :status, :start_date, :end_date, :employee_ids,
			:departments_info, :harmful_factors, :selected_doctors,
			:clinic_name, :employer_name, :clinic_representative,
			:employer_representative, :rejection_reason, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("failed to create calendar plan: %w", err)
	}
	return nil
}

func (r *calendarPlanRepository) Get(ctx context.Context, id uuid.UUID) (*model.CalendarPlan, error) {
	var plan model.CalendarPlan
	err := r.db.GetContext(ctx, &plan, `SELECT * FROM calendar_plans WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("calendar plan not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get calendar plan: %w", err)
	}
	return &plan, nil
}

func (r *calendarPlanRepository) Update(ctx context.Context, plan *model.CalendarPlan) error {
	query := `
		UPDATE calendar_plans SET
			status = :status,
			start_date = :start_date,
			end_date = :end_date,
			employee_ids = :employee_ids,
			departments_info = :departments_info,
			harmful_factors = :harmful_factors,
			selected_doctors = :selected_doctors,
			clinic_name = :clinic_name,
			employer_name = :employer_name,
			clinic_representative = :clinic_representative,
			employer_representative = :employer_representative,
			rejection_reason = :rejection_reason,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, plan)
	if err != nil {
		return fmt.Errorf("failed to update calendar plan: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("calendar plan not found")
	}
	return nil
}

func (r *calendarPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calendar_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar plan: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("calendar plan not found")
	}
	return nil
}

func (r *calendarPlanRepository) List(ctx context.Context, filter repository.CalendarPlanFilter) ([]*model.CalendarPlan, error) {
	query := `SELECT * FROM calendar_plans WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.ContractID != nil {
		query += fmt.Sprintf(" AND contract_id = $%d", argCount)
		args = append(args, *filter.ContractID)
		argCount++
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argCount))
			args = append(args, status)
			argCount++
		}
		query += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ", "))
	}
	query += " ORDER BY created_at DESC"

	plans := []*model.CalendarPlan{}
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list calendar plans: %w", err)
	}
	return plans, nil
}
