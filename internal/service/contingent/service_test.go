package contingent

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

type fakeContingentRepo struct {
	employees map[uuid.UUID]*model.ContingentEmployee
}

func newFakeContingentRepo() *fakeContingentRepo {
	return &fakeContingentRepo{employees: make(map[uuid.UUID]*model.ContingentEmployee)}
}

func (r *fakeContingentRepo) Create(_ context.Context, e *model.ContingentEmployee) error {
	clone := *e
	r.employees[e.ID] = &clone
	return nil
}

func (r *fakeContingentRepo) BulkCreate(ctx context.Context, employees []*model.ContingentEmployee) error {
	for _, e := range employees {
		if err := r.Create(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeContingentRepo) Get(_ context.Context, id uuid.UUID) (*model.ContingentEmployee, error) {
	e, ok := r.employees[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	clone := *e
	return &clone, nil
}

func (r *fakeContingentRepo) Update(_ context.Context, e *model.ContingentEmployee) error {
	if _, ok := r.employees[e.ID]; !ok {
		return errors.New("no rows")
	}
	clone := *e
	r.employees[e.ID] = &clone
	return nil
}

func (r *fakeContingentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.employees, id)
	return nil
}

func (r *fakeContingentRepo) DeleteAllForOwner(_ context.Context, ownerID uuid.UUID) error {
	for id, e := range r.employees {
		if e.OwnerID == ownerID {
			delete(r.employees, id)
		}
	}
	return nil
}

func (r *fakeContingentRepo) DeleteForContract(_ context.Context, contractID uuid.UUID) error {
	for id, e := range r.employees {
		if e.ContractID != nil && *e.ContractID == contractID {
			delete(r.employees, id)
		}
	}
	return nil
}

func (r *fakeContingentRepo) List(_ context.Context, filter repository.ContingentFilter) ([]*model.ContingentEmployee, error) {
	var out []*model.ContingentEmployee
	for _, e := range r.employees {
		if filter.OwnerID != nil && e.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.ContractID != nil && (e.ContractID == nil || *e.ContractID != *filter.ContractID) {
			continue
		}
		if filter.Department != "" && e.Department != filter.Department {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeContingentRepo) CountForContract(_ context.Context, contractID uuid.UUID) (int, error) {
	count := 0
	for _, e := range r.employees {
		if e.ContractID != nil && *e.ContractID == contractID {
			count++
		}
	}
	return count, nil
}

func (r *fakeContingentRepo) FindByIIN(_ context.Context, iin string) (*model.ContingentEmployee, error) {
	for _, e := range r.employees {
		if e.IIN == iin {
			clone := *e
			return &clone, nil
		}
	}
	return nil, errors.New("no rows")
}

func (r *fakeContingentRepo) FindByPhone(_ context.Context, phone string) (*model.ContingentEmployee, error) {
	for _, e := range r.employees {
		if e.Phone == phone {
			clone := *e
			return &clone, nil
		}
	}
	return nil, errors.New("no rows")
}

func (r *fakeContingentRepo) SearchByName(_ context.Context, name string) ([]*model.ContingentEmployee, error) {
	var out []*model.ContingentEmployee
	for _, e := range r.employees {
		if strings.Contains(strings.ToLower(e.FullName), strings.ToLower(name)) {
			clone := *e
			out = append(out, &clone)
		}
	}
	return out, nil
}

type stubContractRepo struct {
	contracts map[uuid.UUID]*model.Contract
}

func newStubContractRepo() *stubContractRepo {
	return &stubContractRepo{contracts: make(map[uuid.UUID]*model.Contract)}
}

func (r *stubContractRepo) Create(_ context.Context, c *model.Contract) error {
	r.contracts[c.ID] = c
	return nil
}

func (r *stubContractRepo) Get(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	c, ok := r.contracts[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return c, nil
}

func (r *stubContractRepo) Update(_ context.Context, c *model.Contract) error {
	r.contracts[c.ID] = c
	return nil
}

func (r *stubContractRepo) List(_ context.Context, _ repository.ContractFilter) ([]*model.Contract, error) {
	return nil, nil
}

func (r *stubContractRepo) AddHistory(_ context.Context, _ *model.ContractHistoryEntry) error {
	return nil
}

func (r *stubContractRepo) ListHistory(_ context.Context, _ uuid.UUID) ([]*model.ContractHistoryEntry, error) {
	return nil, nil
}

func approvedContract(t *testing.T, contracts *stubContractRepo, clinicID uuid.UUID) *model.Contract {
	t.Helper()
	contract := &model.Contract{
		Base:     model.NewBase(),
		ClinicID: clinicID,
		Number:   "7-2026",
		Status:   model.ContractStatusApproved,
	}
	require.NoError(t, contracts.Create(context.Background(), contract))
	return contract
}

// buildWorkbook assembles an upload the way employers actually send
// them: a title row above the header, then one row per worker.
func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Список контингента ТОО Пример"}))
	header := []interface{}{
		"№ п/п", "ФИО", "Дата рождения", "Пол", "Цех/участок", "Должность",
		"Общий стаж", "Стаж по должности", "Дата последнего медосмотра",
		"Вредные факторы", "ИИН", "Телефон", "Примечание",
	}
	require.NoError(t, f.SetSheetRow(sheet, "A2", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return bytes.NewReader(buf.Bytes())
}

func workerRow(n int, name, birth, department, position, factors, iin string) []interface{} {
	return []interface{}{n, name, birth, "М", department, position, "10", "5", "", factors, iin, "", ""}
}

func TestImportCreatesEmployees(t *testing.T) {
	employees := newFakeContingentRepo()
	contracts := newStubContractRepo()
	svc := NewService(employees, contracts)
	clinic := model.Actor{ID: uuid.New(), Role: model.RoleClinic}
	contract := approvedContract(t, contracts, clinic.ID)

	upload := buildWorkbook(t, [][]interface{}{
		workerRow(1, "Иванов Иван Иванович", "15.03.1985", "Цех А", "Сварщик", "шум, вибрация", "850315300123"),
		workerRow(2, "Петрова Анна Сергеевна", "02.07.1990", "Бухгалтерия", "Бухгалтер", "", "900702400456"),
	})

	result, err := svc.Import(context.Background(), clinic, &contract.ID, upload, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)

	stored, err := employees.FindByIIN(context.Background(), "850315300123")
	require.NoError(t, err)
	assert.Equal(t, "Иванов Иван Иванович", stored.FullName)
	assert.Equal(t, model.NewDate(1985, 3, 15), stored.BirthDate)
	assert.Equal(t, []string{"шум", "вибрация"}, []string(stored.HarmfulFactors))
	assert.True(t, stored.RequiresExamination)
	require.NotNil(t, stored.ContractID)
	assert.Equal(t, contract.ID, *stored.ContractID)
}

func TestImportConflictsWithExistingContingent(t *testing.T) {
	employees := newFakeContingentRepo()
	contracts := newStubContractRepo()
	svc := NewService(employees, contracts)
	clinic := model.Actor{ID: uuid.New(), Role: model.RoleClinic}
	contract := approvedContract(t, contracts, clinic.ID)

	first := buildWorkbook(t, [][]interface{}{
		workerRow(1, "Иванов Иван Иванович", "15.03.1985", "Цех А", "Сварщик", "шум", "850315300123"),
	})
	_, err := svc.Import(context.Background(), clinic, &contract.ID, first, false)
	require.NoError(t, err)

	second := buildWorkbook(t, [][]interface{}{
		workerRow(1, "Сидоров Пётр Олегович", "20.11.1978", "Цех Б", "Водитель", "", "781120300789"),
	})
	_, err = svc.Import(context.Background(), clinic, &contract.ID, second, false)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
	assert.Equal(t, ConflictExistingContingent, appErr.Kind)
	assert.Equal(t, 1, appErr.Details["existing_count"])
}

func TestImportReplaceExisting(t *testing.T) {
	employees := newFakeContingentRepo()
	contracts := newStubContractRepo()
	svc := NewService(employees, contracts)
	clinic := model.Actor{ID: uuid.New(), Role: model.RoleClinic}
	contract := approvedContract(t, contracts, clinic.ID)

	first := buildWorkbook(t, [][]interface{}{
		workerRow(1, "Иванов Иван Иванович", "15.03.1985", "Цех А", "Сварщик", "шум", "850315300123"),
	})
	_, err := svc.Import(context.Background(), clinic, &contract.ID, first, false)
	require.NoError(t, err)

	second := buildWorkbook(t, [][]interface{}{
		workerRow(1, "Сидоров Пётр Олегович", "20.11.1978", "Цех Б", "Водитель", "", "781120300789"),
	})
	result, err := svc.Import(context.Background(), clinic, &contract.ID, second, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	count, err := employees.CountForContract(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	_, err = employees.FindByIIN(context.Background(), "850315300123")
	assert.Error(t, err)
}

func TestImportSkipsDuplicatesAndBadRows(t *testing.T) {
	employees := newFakeContingentRepo()
	contracts := newStubContractRepo()
	svc := NewService(employees, contracts)
	clinic := model.Actor{ID: uuid.New(), Role: model.RoleClinic}
	contract := approvedContract(t, contracts, clinic.ID)

	upload := buildWorkbook(t, [][]interface{}{
		workerRow(1, "Иванов Иван Иванович", "15.03.1985", "Цех А", "Сварщик", "шум", "850315300123"),
		// same IIN again
		workerRow(2, "Иванов И. И.", "15.03.1985", "Цех А", "Сварщик", "шум", "850315300123"),
		// no IIN, duplicate by name and birth date
		workerRow(3, "Петрова Анна Сергеевна", "02.07.1990", "Бухгалтерия", "Бухгалтер", "", ""),
		workerRow(4, "Петрова Анна Сергеевна", "02.07.1990", "Бухгалтерия", "Бухгалтер", "", ""),
		// IIN of the wrong length
		workerRow(5, "Ким Алексей Вячеславович", "09.01.1982", "Цех Б", "Водитель", "", "12345"),
		// missing name
		{6, "", "01.01.1980", "М", "Цех Б", "Слесарь", "", "", "", "", "", "", ""},
	})

	result, err := svc.Import(context.Background(), clinic, &contract.ID, upload, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 4, result.Skipped)
	require.Len(t, result.SkippedReasons, 4)
	assert.Contains(t, result.SkippedReasons[0], "ИИН должен содержать 12 цифр")
	assert.Contains(t, result.SkippedReasons[1], "не указано ФИО")
	assert.Contains(t, result.SkippedReasons[2], "дубликат по ИИН")
	assert.Contains(t, result.SkippedReasons[3], "дубликат")
}

func TestImportRequiresUsableContract(t *testing.T) {
	employees := newFakeContingentRepo()
	contracts := newStubContractRepo()
	svc := NewService(employees, contracts)
	clinic := model.Actor{ID: uuid.New(), Role: model.RoleClinic}

	draft := &model.Contract{
		Base:     model.NewBase(),
		ClinicID: clinic.ID,
		Number:   "8-2026",
		Status:   model.ContractStatusDraft,
	}
	require.NoError(t, contracts.Create(context.Background(), draft))

	upload := buildWorkbook(t, [][]interface{}{
		workerRow(1, "Иванов Иван Иванович", "15.03.1985", "Цех А", "Сварщик", "шум", "850315300123"),
	})
	_, err := svc.Import(context.Background(), clinic, &draft.ID, upload, false)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreateRequiresUsableContract(t *testing.T) {
	employees := newFakeContingentRepo()
	contracts := newStubContractRepo()
	svc := NewService(employees, contracts)
	clinic := model.Actor{ID: uuid.New(), Role: model.RoleClinic}

	pending := &model.Contract{
		Base:     model.NewBase(),
		ClinicID: clinic.ID,
		Number:   "9-2026",
		Status:   model.ContractStatusPendingApproval,
	}
	require.NoError(t, contracts.Create(context.Background(), pending))

	_, err := svc.Create(context.Background(), clinic, &model.CreateContingentRequest{
		ContractID: &pending.ID,
		FullName:   "Иванов Иван Иванович",
		BirthDate:  model.NewDate(1985, 3, 15),
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestFindByQRRoundTrip(t *testing.T) {
	employees := newFakeContingentRepo()
	contracts := newStubContractRepo()
	svc := NewService(employees, contracts)
	clinic := model.Actor{ID: uuid.New(), Role: model.RoleClinic}

	created, err := svc.Create(context.Background(), clinic, &model.CreateContingentRequest{
		FullName:  "Иванов Иван Иванович",
		BirthDate: model.NewDate(1985, 3, 15),
		IIN:       "850315300123",
	})
	require.NoError(t, err)

	payload := `{"employee_id":"` + created.ID.String() + `","iin":"850315300123","full_name":"Иванов Иван Иванович"}`
	found, err := svc.FindByQR(context.Background(), payload)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// a payload carrying only the IIN still resolves
	found, err = svc.FindByQR(context.Background(), `{"iin":"850315300123"}`)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = svc.FindByQR(context.Background(), "not-json")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestHarmfulFactorsVocabulary(t *testing.T) {
	svc := NewService(newFakeContingentRepo(), newStubContractRepo())

	factors := svc.HarmfulFactors()
	require.NotEmpty(t, factors)
	assert.Contains(t, factors, "Шум")

	// callers get a copy, mutating it must not poison the vocabulary
	factors[0] = "changed"
	assert.NotEqual(t, "changed", svc.HarmfulFactors()[0])
}
