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

type contingentRepository struct {
	db *sqlx.DB
}

func NewContingentRepository(db *sqlx.DB) repository.ContingentRepository {
	return &contingentRepository{db: db}
}

const contingentInsert = `
	INSERT INTO contingent_employees (
		id, owner_id, contract_id, full_name, birth_date, gender, department,
		position, total_experience, position_experience, last_examination_date,
		next_examination_date, harmful_factors, iin, phone, notes,
		requires_examination, quarter, created_at, updated_at
	) VALUES (
		:id, :owner_id, :contract_id, :full_name, :birth_date, :gender, :department,
		:position, :total_experience, :position_experience, :last_examination_date,
		:next_examination_date, :harmful_factors, :iin, :phone, :notes,
		:requires_examination, :quarter, :created_at, :updated_at
	)`

func (r *contingentRepository) Create(ctx context.Context, employee *model.ContingentEmployee) error {
	if _, err := r.db.NamedExecContext(ctx, contingentInsert, employee); err != nil {
		return fmt.Errorf("failed to create contingent employee: %w", err)
	}
	return nil
}

// BulkCreate inserts imported rows in one transaction so a failed
// import leaves no partial contingent behind.
func (r *contingentRepository) BulkCreate(ctx context.Context, employees []*model.ContingentEmployee) error {
	if len(employees) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, employee := range employees {
		if _, err := tx.NamedExecContext(ctx, contingentInsert, employee); err != nil {
			return fmt.Errorf("failed to insert contingent employee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *contingentRepository) Get(ctx context.Context, id uuid.UUID) (*model.ContingentEmployee, error) {
	var employee model.ContingentEmployee
	err := r.db.GetContext(ctx, &employee, `SELECT * FROM contingent_employees WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contingent employee not found: %w", err)
		}
		return nil, fmt.Errorf("failed to get contingent employee: %w", err)
	}
	return &employee, nil
}

func (r *contingentRepository) Update(ctx context.Context, employee *model.ContingentEmployee) error {
	query := `
		UPDATE contingent_employees SET
			contract_id = :contract_id,
			full_name = :full_name,
			birth_date = :birth_date,
			gender = :gender,
			department = :department,
			position = :position,
			total_experience = :total_experience,
			position_experience = :position_experience,
			last_examination_date = :last_examination_date,
			next_examination_date = :next_examination_date,
			harmful_factors = :harmful_factors,
			iin = :iin,
			phone = :phone,
			notes = :notes,
			requires_examination = :requires_examination,
			quarter = :quarter,
			updated_at = NOW()
		WHERE id = :id`

	result, err := r.db.NamedExecContext(ctx, query, employee)
	if err != nil {
		return fmt.Errorf("failed to update contingent employee: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("contingent employee not found")
	}
	return nil
}

func (r *contingentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contingent_employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contingent employee: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("contingent employee not found")
	}
	return nil
}

func (r *contingentRepository) DeleteAllForOwner(ctx context.Context, ownerID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contingent_employees WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("failed to delete contingent for owner: %w", err)
	}
	return nil
}

func (r *contingentRepository) DeleteForContract(ctx context.Context, contractID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contingent_employees WHERE contract_id = $1`, contractID); err != nil {
		return fmt.Errorf("failed to delete contingent for contract: %w", err)
	}
	return nil
}

func (r *contingentRepository) List(ctx context.Context, filter repository.ContingentFilter) ([]*model.ContingentEmployee, error) {
	query := `SELECT * FROM contingent_employees WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argCount)
		args = append(args, *filter.OwnerID)
		argCount++
	}
	if filter.ContractID != nil {
		query += fmt.Sprintf(" AND contract_id = $%d", argCount)
		args = append(args, *filter.ContractID)
		argCount++
	}
	if filter.Department != "" {
		query += fmt.Sprintf(" AND department = $%d", argCount)
		args = append(args, filter.Department)
		argCount++
	}
	query += " ORDER BY full_name"

	employees := []*model.ContingentEmployee{}
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list contingent employees: %w", err)
	}
	return employees, nil
}

func (r *contingentRepository) CountForContract(ctx context.Context, contractID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM contingent_employees WHERE contract_id = $1`, contractID)
	if err != nil {
		return 0, fmt.Errorf("failed to count contingent employees: %w", err)
	}
	return count, nil
}

func (r *contingentRepository) FindByIIN(ctx context.Context, iin string) (*model.ContingentEmployee, error) {
	var employee model.ContingentEmployee
	err := r.db.GetContext(ctx, &employee,
		`SELECT * FROM contingent_employees WHERE iin = $1 LIMIT 1`, iin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contingent employee not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find contingent employee by iin: %w", err)
	}
	return &employee, nil
}

func (r *contingentRepository) FindByPhone(ctx context.Context, phone string) (*model.ContingentEmployee, error) {
	var employee model.ContingentEmployee
	err := r.db.GetContext(ctx, &employee,
		`SELECT * FROM contingent_employees
		 WHERE regexp_replace(phone, '\D', '', 'g') = regexp_replace($1, '\D', '', 'g')
		   AND phone <> ''
		 LIMIT 1`, phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contingent employee not found: %w", err)
		}
		return nil, fmt.Errorf("failed to find contingent employee by phone: %w", err)
	}
	return &employee, nil
}

func (r *contingentRepository) SearchByName(ctx context.Context, name string) ([]*model.ContingentEmployee, error) {
	employees := []*model.ContingentEmployee{}
	err := r.db.SelectContext(ctx, &employees,
		`SELECT * FROM contingent_employees WHERE full_name ILIKE '%' || $1 || '%' ORDER BY full_name`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search contingent employees: %w", err)
	}
	return employees, nil
}
