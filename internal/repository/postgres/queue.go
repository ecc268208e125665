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

type queueRepository struct {
	db *sqlx.DB
}

func NewQueueRepository(db *sqlx.DB) repository.QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Create(ctx context.Context, entry *model.QueueEntry) error {
	query := `
		INSERT INTO patient_queue (
			id, route_sheet_id, patient_id, patient_name, service_name,
			specialization, doctor_id, cabinet, queue_number, status, priority,
			queue_date, called_at, started_at, completed_at, created_at, updated_at
		) VALUES (
			:id, :route_sheet_id, :patient_id, :patient_name, :service_name,
			:specialization, :doctor_id, :cabinet, :queue_number, :status, :priority,
			:queue_date, :called_at, :started_at, :completed_at, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to create queue entry: %w", err)
	}
	return nil
}

func (r *queueRepository) Get(ctx context.Context, id uuid.UUID) (*model.QueueEntry, error) {
	var entry model.QueueEntry
	err := r.db.GetContext(ctx, &entry, `SELECT * FROM patient_queue WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("queue entry not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get queue entry: %w", err)
	}
	return &entry, nil
}

func (r *queueRepository) Update(ctx context.Context, entry *model.QueueEntry) error {
	query := `
		UPDATE patient_queue SET
			status = :status,
			priority = :priority,
			called_at = :called_at,
			started_at = :started_at,
			completed_at = :completed_at,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return fmt.Errorf("failed to update queue entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("queue entry not found")
	}
	return nil
}

func (r *queueRepository) ListForDate(ctx context.Context, date model.Date, filter repository.QueueFilter) ([]*model.QueueEntry, error) {
	query := `SELECT * FROM patient_queue WHERE queue_date = $1`
	args := []interface{}{date}
	argCount := 2

	if filter.DoctorID != nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, *filter.DoctorID)
		argCount++
	}
	if filter.Specialization != "" {
		query += fmt.Sprintf(" AND specialization = $%d", argCount)
		args = append(args, filter.Specialization)
		argCount++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filter.Status)
		argCount++
	}
	query += ` ORDER BY CASE WHEN priority = 'urgent' THEN 0 ELSE 1 END, queue_number`

	entries := []*model.QueueEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list queue entries: %w", err)
	}
	return entries, nil
}

// FindActive returns the patient's live entry for a service, if any.
// Completed and skipped entries do not count.
func (r *queueRepository) FindActive(ctx context.Context, patientID, serviceName string, date model.Date) (*model.QueueEntry, error) {
	var entry model.QueueEntry
	err := r.db.GetContext(ctx, &entry,
		`SELECT * FROM patient_queue
		 WHERE patient_id = $1 AND service_name = $2 AND queue_date = $3
		   AND status IN ('waiting', 'called', 'in_progress')
		 LIMIT 1`,
		patientID, serviceName, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("queue entry not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find active queue entry: %w", err)
	}
	return &entry, nil
}

// NextNumber issues the next queue number for the day, starting at 1
func (r *queueRepository) NextNumber(ctx context.Context, date model.Date) (int, error) {
	var number int
	err := r.db.GetContext(ctx, &number,
		`SELECT COALESCE(MAX(queue_number), 0) + 1 FROM patient_queue WHERE queue_date = $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to get next queue number: %w", err)
	}
	return number, nil
}
