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

type contractRepository struct {
	db *sqlx.DB
}

func NewContractRepository(db *sqlx.DB) repository.ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) Create(ctx context.Context, contract *model.Contract) error {
	query := `
		INSERT INTO contracts (
			id, clinic_id, employer_id, clinic_name, employer_name, employer_bin,
			employer_phone, number, contract_date, amount, people_count,
			execution_date, status, notes, rejection_reason,
			employer_approved_at, sent_at, executed_at, created_at, updated_at
		) VALUES (
			:id, :clinic_id, :employer_id, :clinic_name, :employer_name, :employer_bin,
			:employer_phone, :number, :contract_date, :amount, :people_count,
			:execution_date, :status, :notes, :rejection_reason,
			:employer_approved_at, :sent_at, :executed_at, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, contract); err != nil {
		return fmt.Errorf("failed to create contract: %w", err)
	}
	return nil
}

func (r *contractRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var contract model.Contract
	err := r.db.GetContext(ctx, &contract, `SELECT * FROM contracts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contract not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	return &contract, nil
}

func (r *contractRepository) Update(ctx context.Context, contract *model.Contract) error {
	query := `
		UPDATE contracts SET
			employer_id = :employer_id,
			clinic_name = :clinic_name,
			employer_name = :employer_name,
			employer_bin = :employer_bin,
			employer_phone = :employer_phone,
			number = :number,
			contract_date = :contract_date,
			amount = :amount,
			people_count = :people_count,
			execution_date = :execution_date,
			status = :status,
			notes = :notes,
			rejection_reason = :rejection_reason,
			employer_approved_at = :employer_approved_at,
			sent_at = :sent_at,
			executed_at = :executed_at,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, contract)
	if err != nil {
		return fmt.Errorf("failed to update contract: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("contract not found")
	}
	return nil
}

func (r *contractRepository) List(ctx context.Context, filter repository.ContractFilter) ([]*model.Contract, error) {
	query := `SELECT * FROM contracts WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.ClinicID != nil {
		query += fmt.Sprintf(" AND clinic_id = $%d", argCount)
		args = append(args, *filter.ClinicID)
		argCount++
	}
	if filter.EmployerID != nil {
		query += fmt.Sprintf(" AND employer_id = $%d", argCount)
		args = append(args, *filter.EmployerID)
		argCount++
	}
	if filter.EmployerBIN != "" {
		query += fmt.Sprintf(" AND regexp_replace(employer_bin, '\\D', '', 'g') = regexp_replace($%d, '\\D', '', 'g')", argCount)
		args = append(args, filter.EmployerBIN)
		argCount++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filter.Status)
		argCount++
	}
	query += " ORDER BY created_at DESC"

	contracts := []*model.Contract{}
	if err := r.db.SelectContext(ctx, &contracts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}

func (r *contractRepository) AddHistory(ctx context.Context, entry *model.ContractHistoryEntry) error {
	query := `
		INSERT INTO contract_history (
			id, contract_id, action, user_id, user_role, user_name,
			comment, old_status, new_status, changes, created_at
		) VALUES (
			:id, :contract_id, :action, :user_id, :user_role, :user_name,
			:comment, :old_status, :new_status, :changes, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to add contract history: %w", err)
	}
	return nil
}

func (r *contractRepository) ListHistory(ctx context.Context, contractID uuid.UUID) ([]*model.ContractHistoryEntry, error) {
	entries := []*model.ContractHistoryEntry{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM contract_history WHERE contract_id = $1 ORDER BY created_at DESC`, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contract history: %w", err)
	}
	return entries, nil
}
