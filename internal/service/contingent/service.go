// Package contingent manages the lists of workers subject to
// examinations: CRUD, Excel bulk import, the downloadable template and
// QR identification.
package contingent

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/profmed/crm-api/internal/excel"
	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/qr"
	"github.com/profmed/crm-api/internal/repository"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

// ConflictExistingContingent is the structured conflict kind returned
// when an import targets a contract that already has employees and the
// caller did not ask to replace them.
const ConflictExistingContingent = "CONFLICT_EXISTING_CONTINGENT"

type Service struct {
	employees repository.ContingentRepository
	contracts repository.ContractRepository
}

func NewService(employees repository.ContingentRepository, contracts repository.ContractRepository) *Service {
	return &Service{employees: employees, contracts: contracts}
}

func (s *Service) Create(ctx context.Context, actor model.Actor, req *model.CreateContingentRequest) (*model.ContingentEmployee, error) {
	if req.ContractID != nil {
		if err := s.requireUsableContract(ctx, *req.ContractID); err != nil {
			return nil, err
		}
	}

	employee := &model.ContingentEmployee{
		Base:                model.NewBase(),
		OwnerID:             actor.ID,
		ContractID:          req.ContractID,
		FullName:            req.FullName,
		BirthDate:           req.BirthDate,
		Gender:              req.Gender,
		Department:          req.Department,
		Position:            req.Position,
		TotalExperience:     req.TotalExperience,
		PositionExperience:  req.PositionExperience,
		LastExamDate:        req.LastExamDate,
		HarmfulFactors:      req.HarmfulFactors,
		IIN:                 req.IIN,
		Phone:               req.Phone,
		Notes:               req.Notes,
		RequiresExamination: req.RequiresExamination,
		Quarter:             req.Quarter,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to create contingent employee: %w", err)
	}
	return employee, nil
}

func (s *Service) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.ContingentEmployee, error) {
	employee, err := s.employees.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("contingent employee", err)
	}
	return employee, nil
}

func (s *Service) List(ctx context.Context, actor model.Actor, contractID *uuid.UUID, department string) ([]*model.ContingentEmployee, error) {
	filter := repository.ContingentFilter{Department: department}
	if contractID != nil {
		filter.ContractID = contractID
	} else {
		filter.OwnerID = &actor.ID
	}
	return s.employees.List(ctx, filter)
}

func (s *Service) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req *model.UpdateContingentRequest) (*model.ContingentEmployee, error) {
	employee, err := s.requireOwned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		employee.FullName = *req.FullName
	}
	if req.BirthDate != nil {
		employee.BirthDate = *req.BirthDate
	}
	if req.Gender != nil {
		employee.Gender = *req.Gender
	}
	if req.Department != nil {
		employee.Department = *req.Department
	}
	if req.Position != nil {
		employee.Position = *req.Position
	}
	if req.TotalExperience != nil {
		employee.TotalExperience = *req.TotalExperience
	}
	if req.PositionExperience != nil {
		employee.PositionExperience = *req.PositionExperience
	}
	if req.LastExamDate != nil {
		employee.LastExamDate = req.LastExamDate
	}
	if req.HarmfulFactors != nil {
		employee.HarmfulFactors = *req.HarmfulFactors
	}
	if req.IIN != nil {
		employee.IIN = *req.IIN
	}
	if req.Phone != nil {
		employee.Phone = *req.Phone
	}
	if req.Notes != nil {
		employee.Notes = *req.Notes
	}
	if req.RequiresExamination != nil {
		employee.RequiresExamination = *req.RequiresExamination
	}
	if req.Quarter != nil {
		employee.Quarter = *req.Quarter
	}

	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to update contingent employee: %w", err)
	}
	return employee, nil
}

func (s *Service) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if _, err := s.requireOwned(ctx, actor, id); err != nil {
		return err
	}
	return s.employees.Delete(ctx, id)
}

func (s *Service) DeleteAll(ctx context.Context, actor model.Actor) error {
	return s.employees.DeleteAllForOwner(ctx, actor.ID)
}

// Import parses an uploaded workbook into contingent rows. Importing
// into a contract that already holds N employees fails with a
// structured 409 unless replaceExisting is set, in which case the old
// rows are removed first. Duplicates inside the file and against the
// database are skipped by IIN or by (name, birth date).
func (s *Service) Import(ctx context.Context, actor model.Actor, contractID *uuid.UUID, r io.Reader, replaceExisting bool) (*model.ImportResult, error) {
	if contractID != nil {
		if err := s.requireUsableContract(ctx, *contractID); err != nil {
			return nil, err
		}
		count, err := s.employees.CountForContract(ctx, *contractID)
		if err != nil {
			return nil, fmt.Errorf("failed to count existing contingent: %w", err)
		}
		if count > 0 {
			if !replaceExisting {
				return nil, apperrors.Conflict(
					ConflictExistingContingent,
					fmt.Sprintf("По договору уже загружено сотрудников: %d. Подтвердите замену списка.", count),
					map[string]interface{}{"existing_count": count},
				)
			}
			if err := s.employees.DeleteForContract(ctx, *contractID); err != nil {
				return nil, fmt.Errorf("failed to replace existing contingent: %w", err)
			}
		}
	}

	report, err := excel.ParseContingent(r)
	if err != nil {
		return nil, apperrors.BadRequest("Не удалось прочитать файл: "+err.Error(), err)
	}

	existing, err := s.List(ctx, actor, contractID, "")
	if err != nil {
		return nil, err
	}
	seenIIN := make(map[string]struct{})
	seenNameBirth := make(map[string]struct{})
	for _, e := range existing {
		if e.IIN != "" {
			seenIIN[e.IIN] = struct{}{}
		}
		seenNameBirth[e.FullName+"|"+e.BirthDate.String()] = struct{}{}
	}

	result := &model.ImportResult{SkippedReasons: report.SkippedReasons}
	result.Skipped = len(report.SkippedReasons)

	var toInsert []*model.ContingentEmployee
	for _, row := range report.Rows {
		nameBirth := row.FullName + "|" + row.BirthDate.String()
		if row.IIN != "" {
			if _, dup := seenIIN[row.IIN]; dup {
				result.Skipped++
				result.SkippedReasons = append(result.SkippedReasons,
					fmt.Sprintf("строка %d: дубликат по ИИН %s", row.RowNumber, row.IIN))
				continue
			}
		} else if _, dup := seenNameBirth[nameBirth]; dup {
			result.Skipped++
			result.SkippedReasons = append(result.SkippedReasons,
				fmt.Sprintf("строка %d: дубликат %s", row.RowNumber, row.FullName))
			continue
		}
		if row.IIN != "" {
			seenIIN[row.IIN] = struct{}{}
		}
		seenNameBirth[nameBirth] = struct{}{}

		toInsert = append(toInsert, &model.ContingentEmployee{
			Base:                model.NewBase(),
			OwnerID:             actor.ID,
			ContractID:          contractID,
			FullName:            row.FullName,
			BirthDate:           row.BirthDate,
			Gender:              row.Gender,
			Department:          row.Department,
			Position:            row.Position,
			TotalExperience:     row.TotalExperience,
			PositionExperience:  row.PositionExperience,
			LastExamDate:        row.LastExamDate,
			HarmfulFactors:      row.HarmfulFactors,
			IIN:                 row.IIN,
			Phone:               row.Phone,
			Notes:               row.Notes,
			RequiresExamination: true,
		})
	}

	if err := s.employees.BulkCreate(ctx, toInsert); err != nil {
		return nil, fmt.Errorf("failed to import contingent: %w", err)
	}
	result.Created = len(toInsert)
	return result, nil
}

// Template returns the blank import workbook
func (s *Service) Template() ([]byte, error) {
	return excel.BuildContingentTemplate()
}

// QRCode renders the employee's identification QR as PNG
func (s *Service) QRCode(ctx context.Context, actor model.Actor, id uuid.UUID) ([]byte, error) {
	employee, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return qr.EncodePNG(model.QRPayload{
		EmployeeID: employee.ID.String(),
		IIN:        employee.IIN,
		FullName:   employee.FullName,
	})
}

// FindByQR resolves a scanned payload back to an employee
func (s *Service) FindByQR(ctx context.Context, payload string) (*model.ContingentEmployee, error) {
	var decoded model.QRPayload
	if err := qr.DecodePayload(payload, &decoded); err != nil {
		return nil, apperrors.BadRequest("Неверный QR-код", err)
	}
	if decoded.EmployeeID != "" {
		if id, err := uuid.Parse(decoded.EmployeeID); err == nil {
			if employee, err := s.employees.Get(ctx, id); err == nil {
				return employee, nil
			}
		}
	}
	if decoded.IIN != "" {
		if employee, err := s.employees.FindByIIN(ctx, decoded.IIN); err == nil {
			return employee, nil
		}
	}
	return nil, apperrors.NotFound("contingent employee", nil)
}

// HarmfulFactors returns the controlled vocabulary. Callers get a copy
// so the source list cannot be mutated.
func (s *Service) HarmfulFactors() []string {
	factors := make([]string, len(harmfulFactorVocabulary))
	copy(factors, harmfulFactorVocabulary)
	return factors
}

// requireUsableContract allows contingent changes only under a
// contract the employer has accepted.
func (s *Service) requireUsableContract(ctx context.Context, contractID uuid.UUID) error {
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return apperrors.NotFound("contract", err)
	}
	switch contract.Status {
	case model.ContractStatusApproved, model.ContractStatusSent, model.ContractStatusExecuted:
		return nil
	default:
		return apperrors.BadRequest("Контингент можно загружать только по согласованному договору", nil)
	}
}

func (s *Service) requireOwned(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.ContingentEmployee, error) {
	employee, err := s.employees.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("contingent employee", err)
	}
	if employee.OwnerID != actor.ID && !actor.IsClinic() {
		return nil, apperrors.Forbidden("Нет доступа к этой записи", nil)
	}
	return employee, nil
}
