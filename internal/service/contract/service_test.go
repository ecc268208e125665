package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profmed/crm-api/internal/model"
	"github.com/profmed/crm-api/internal/repository"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

type fakeContractRepo struct {
	contracts map[uuid.UUID]*model.Contract
	history   []*model.ContractHistoryEntry
}

func newFakeContractRepo() *fakeContractRepo {
	return &fakeContractRepo{contracts: make(map[uuid.UUID]*model.Contract)}
}

func (r *fakeContractRepo) Create(_ context.Context, c *model.Contract) error {
	clone := *c
	r.contracts[c.ID] = &clone
	return nil
}

func (r *fakeContractRepo) Get(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	c, ok := r.contracts[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	clone := *c
	return &clone, nil
}

func (r *fakeContractRepo) Update(_ context.Context, c *model.Contract) error {
	if _, ok := r.contracts[c.ID]; !ok {
		return errors.New("no rows")
	}
	clone := *c
	r.contracts[c.ID] = &clone
	return nil
}

func (r *fakeContractRepo) List(_ context.Context, filter repository.ContractFilter) ([]*model.Contract, error) {
	var out []*model.Contract
	for _, c := range r.contracts {
		if filter.ClinicID != nil && c.ClinicID != *filter.ClinicID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeContractRepo) AddHistory(_ context.Context, e *model.ContractHistoryEntry) error {
	r.history = append(r.history, e)
	return nil
}

func (r *fakeContractRepo) ListHistory(_ context.Context, contractID uuid.UUID) ([]*model.ContractHistoryEntry, error) {
	var out []*model.ContractHistoryEntry
	for _, e := range r.history {
		if e.ContractID == contractID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("no rows")
	}
	return u, nil
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	for _, u := range r.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return nil, errors.New("no rows")
}

func (r *fakeUserRepo) GetEmployerByBIN(_ context.Context, bin string) (*model.User, error) {
	for _, u := range r.users {
		if u.Role == model.RoleEmployer && u.BIN == bin {
			return u, nil
		}
	}
	return nil, errors.New("no rows")
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return errors.New("no rows")
	}
	u.PasswordHash = hash
	return nil
}

// recordingNotifier captures outgoing notifications for assertions
type recordingNotifier struct {
	created  []uuid.UUID
	statuses []model.ContractStatus
	emails   []string
}

func (n *recordingNotifier) NotifyContractCreated(_ context.Context, c *model.Contract) {
	n.created = append(n.created, c.ID)
}

func (n *recordingNotifier) NotifyContractStatus(_ context.Context, c *model.Contract, _ string) {
	n.statuses = append(n.statuses, c.Status)
}

func (n *recordingNotifier) EmailContract(address string, _ *model.Contract) {
	n.emails = append(n.emails, address)
}

func newTestService() (*Service, *fakeContractRepo, *fakeUserRepo, *recordingNotifier) {
	contracts := newFakeContractRepo()
	users := newFakeUserRepo()
	notifier := &recordingNotifier{}
	return NewService(contracts, users, notifier), contracts, users, notifier
}

func clinicActor() model.Actor {
	return model.Actor{ID: uuid.New(), Name: "Профмед", Role: model.RoleClinic, ClinicRole: model.ClinicRoleManager}
}

func employerActor() model.Actor {
	return model.Actor{ID: uuid.New(), Name: "ТОО Пример", Role: model.RoleEmployer}
}

func registerEmployer(t *testing.T, users *fakeUserRepo, employer model.Actor) {
	t.Helper()
	require.NoError(t, users.Create(context.Background(), &model.User{
		Base: model.Base{ID: employer.ID},
		Role: model.RoleEmployer,
		BIN:  "123456789012",
	}))
}

func createDraft(t *testing.T, svc *Service, clinic model.Actor) *model.Contract {
	t.Helper()
	created, err := svc.Create(context.Background(), clinic, &model.CreateContractRequest{
		Number:       "42-2026",
		ContractDate: model.NewDate(2026, 1, 15),
		EmployerName: "ТОО Пример",
		EmployerBIN:  "123456789012",
		Amount:       1500000,
		PeopleCount:  50,
	})
	require.NoError(t, err)
	return created
}

func TestCreateContract(t *testing.T) {
	svc, repo, users, notifier := newTestService()
	clinic := clinicActor()
	employer := employerActor()
	registerEmployer(t, users, employer)

	created := createDraft(t, svc, clinic)

	// no phone on the request, the contract stays a draft
	assert.Equal(t, model.ContractStatusDraft, created.Status)
	assert.Nil(t, created.SentAt)
	assert.Equal(t, clinic.ID, created.ClinicID)
	require.NotNil(t, created.EmployerID)
	assert.Equal(t, employer.ID, *created.EmployerID)
	assert.Empty(t, notifier.created)

	history, err := repo.ListHistory(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.ContractActionCreated, history[0].Action)
}

func TestCreateContractWithPhoneSentImmediately(t *testing.T) {
	svc, repo, users, notifier := newTestService()
	clinic := clinicActor()
	employer := employerActor()
	registerEmployer(t, users, employer)

	created, err := svc.Create(context.Background(), clinic, &model.CreateContractRequest{
		Number:        "42-2026",
		ContractDate:  model.NewDate(2026, 1, 15),
		EmployerName:  "ТОО Пример",
		EmployerBIN:   "123456789012",
		EmployerPhone: "+7 701 234 56 78",
		Amount:        1500000,
		PeopleCount:   50,
	})
	require.NoError(t, err)

	assert.Equal(t, model.ContractStatusSent, created.Status)
	require.NotNil(t, created.SentAt)
	require.Len(t, notifier.created, 1)
	assert.Equal(t, created.ID, notifier.created[0])

	history, err := repo.ListHistory(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.ContractStatusSent, history[0].NewStatus)

	// the employer can decide straight away on a sent contract
	approved, err := svc.Approve(context.Background(), employer, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusApproved, approved.Status)
}

func TestCreateContractRequiresBIN(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), clinicActor(), &model.CreateContractRequest{
		Number:       "42-2026",
		ContractDate: model.NewDate(2026, 1, 15),
		EmployerName: "ТОО Пример",
		EmployerBIN:  "   ",
		Amount:       1500000,
		PeopleCount:  50,
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	assert.Equal(t, "Заполните все обязательные поля", appErr.Message)
}

func TestCreateContractForbiddenForEmployer(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), employerActor(), &model.CreateContractRequest{
		Number:       "1",
		ContractDate: model.Today(),
		EmployerName: "x",
		EmployerBIN:  "123456789012",
		Amount:       1,
		PeopleCount:  1,
	})

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestApprovalFlow(t *testing.T) {
	svc, repo, users, _ := newTestService()
	clinic := clinicActor()
	employer := employerActor()
	registerEmployer(t, users, employer)

	contract := createDraft(t, svc, clinic)

	sent, err := svc.SendForApproval(context.Background(), clinic, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusPendingApproval, sent.Status)

	approved, err := svc.Approve(context.Background(), employer, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusApproved, approved.Status)
	assert.NotNil(t, approved.EmployerApprovedAt)

	// a second approval must not go through
	_, err = svc.Approve(context.Background(), employer, contract.ID)
	require.Error(t, err)

	history, err := repo.ListHistory(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestStatusChangeEmailsLinkedEmployer(t *testing.T) {
	svc, _, users, notifier := newTestService()
	clinic := clinicActor()
	employer := employerActor()
	require.NoError(t, users.Create(context.Background(), &model.User{
		Base:             model.Base{ID: employer.ID},
		Role:             model.RoleEmployer,
		BIN:              "123456789012",
		RegistrationData: model.JSONMap{"email": "director@example.kz"},
	}))

	contract := createDraft(t, svc, clinic)

	_, err := svc.SendForApproval(context.Background(), clinic, contract.ID)
	require.NoError(t, err)

	require.Len(t, notifier.emails, 1)
	assert.Equal(t, "director@example.kz", notifier.emails[0])
	assert.Equal(t, []model.ContractStatus{model.ContractStatusPendingApproval}, notifier.statuses)
}

func TestStatusChangeWithoutEmailSkipsEmail(t *testing.T) {
	svc, _, users, notifier := newTestService()
	clinic := clinicActor()
	registerEmployer(t, users, employerActor())

	contract := createDraft(t, svc, clinic)

	_, err := svc.SendForApproval(context.Background(), clinic, contract.ID)
	require.NoError(t, err)

	assert.Empty(t, notifier.emails)
	assert.Len(t, notifier.statuses, 1)
}

func TestApproveFromDraftRejected(t *testing.T) {
	svc, _, users, _ := newTestService()
	clinic := clinicActor()
	employer := employerActor()
	registerEmployer(t, users, employer)

	contract := createDraft(t, svc, clinic)

	_, err := svc.Approve(context.Background(), employer, contract.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, repo, users, _ := newTestService()
	clinic := clinicActor()
	employer := employerActor()
	registerEmployer(t, users, employer)

	contract := createDraft(t, svc, clinic)
	_, err := svc.SendForApproval(context.Background(), clinic, contract.ID)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), employer, contract.ID, "   ")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)

	// the failed rejection must leave no trace
	stored, err := repo.Get(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusPendingApproval, stored.Status)
	assert.Empty(t, stored.RejectionReason)
	history, err := repo.ListHistory(context.Background(), contract.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestRejectAndResend(t *testing.T) {
	svc, _, users, _ := newTestService()
	clinic := clinicActor()
	employer := employerActor()
	registerEmployer(t, users, employer)

	contract := createDraft(t, svc, clinic)
	_, err := svc.SendForApproval(context.Background(), clinic, contract.ID)
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), employer, contract.ID, "Неверная сумма")
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusRejected, rejected.Status)
	assert.Equal(t, "Неверная сумма", rejected.RejectionReason)

	resent, err := svc.ResendForApproval(context.Background(), clinic, contract.ID, "Сумма исправлена")
	require.NoError(t, err)
	assert.Equal(t, model.ContractStatusPendingApproval, resent.Status)
	assert.Empty(t, resent.RejectionReason)
}

func TestUpdateOnlyWhileEditable(t *testing.T) {
	svc, _, users, _ := newTestService()
	clinic := clinicActor()
	registerEmployer(t, users, employerActor())

	contract := createDraft(t, svc, clinic)

	newNumber := "42-2026/1"
	updated, err := svc.Update(context.Background(), clinic, contract.ID, &model.UpdateContractRequest{Number: &newNumber})
	require.NoError(t, err)
	assert.Equal(t, "42-2026/1", updated.Number)

	_, err = svc.SendForApproval(context.Background(), clinic, contract.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), clinic, contract.ID, &model.UpdateContractRequest{Number: &newNumber})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestContractAccessControl(t *testing.T) {
	svc, _, _, _ := newTestService()
	clinic := clinicActor()
	contract := createDraft(t, svc, clinic)

	otherClinic := clinicActor()
	_, err := svc.Get(context.Background(), otherClinic, contract.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)

	// employer with matching BIN sees the contract even without a link
	svc2, _, users2, _ := newTestService()
	contract2 := createDraft(t, svc2, clinic)
	employer := employerActor()
	registerEmployer(t, users2, employer)
	_, err = svc2.Get(context.Background(), employer, contract2.ID)
	assert.NoError(t, err)
}
