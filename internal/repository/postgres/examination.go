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

type examinationRepository struct {
	db *sqlx.DB
}

func NewExaminationRepository(db *sqlx.DB) repository.ExaminationRepository {
	return &examinationRepository{db: db}
}

func (r *examinationRepository) Create(ctx context.Context, exam *model.DoctorExamination) error {
	query := `
		INSERT INTO doctor_examinations (
			id, route_sheet_id, patient_id, patient_name, doctor_id, doctor_name,
			specialization, conclusion, complaints, diagnosis, notes, exam_date,
			created_at, updated_at
		) VALUES (
			:id, :route_sheet_id, :patient_id, :patient_name, :doctor_id, :doctor_name,
			:specialization, :conclusion, :complaints, :diagnosis, :notes, :exam_date,
			:created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("failed to create examination: %w", err)
	}
	return nil
}

func (r *examinationRepository) Get(ctx context.Context, id uuid.UUID) (*model.DoctorExamination, error) {
	var exam model.DoctorExamination
	err := r.db.GetContext(ctx, &exam, `SELECT * FROM doctor_examinations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("examination not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get examination: %w", err)
	}
	return &exam, nil
}

func (r *examinationRepository) Update(ctx context.Context, exam *model.DoctorExamination) error {
	query := `
		UPDATE doctor_examinations SET
			conclusion = :conclusion,
			complaints = :complaints,
			diagnosis = :diagnosis,
			notes = :notes,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, exam)
	if err != nil {
		return fmt.Errorf("failed to update examination: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("examination not found")
	}
	return nil
}

func (r *examinationRepository) List(ctx context.Context, filter repository.ExaminationFilter) ([]*model.DoctorExamination, error) {
	query := `SELECT * FROM doctor_examinations WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.PatientID != "" {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filter.PatientID)
		argCount++
	}
	if filter.DoctorID != nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, *filter.DoctorID)
		argCount++
	}
	if filter.RouteSheetID != nil {
		query += fmt.Sprintf(" AND route_sheet_id = $%d", argCount)
		args = append(args, *filter.RouteSheetID)
		argCount++
	}
	query += " ORDER BY exam_date DESC, created_at DESC"

	exams := []*model.DoctorExamination{}
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list examinations: %w", err)
	}
	return exams, nil
}
