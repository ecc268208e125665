package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profmed/crm-api/internal/model"
)

func TestCanToggleService(t *testing.T) {
	svc := model.RouteSheetService{
		Name:           "Осмотр ЛОР",
		Specialization: "ЛОР",
	}

	t.Run("matching specialization allowed", func(t *testing.T) {
		actor := model.Actor{Role: model.RoleClinic, ClinicRole: model.ClinicRoleDoctor}
		assert.NoError(t, CanToggleService(actor, "ЛОР", svc))
	})

	t.Run("specialization matching service name allowed", func(t *testing.T) {
		actor := model.Actor{Role: model.RoleClinic, ClinicRole: model.ClinicRoleDoctor}
		assert.NoError(t, CanToggleService(actor, "Осмотр ЛОР", svc))
	})

	t.Run("different specialization forbidden", func(t *testing.T) {
		actor := model.Actor{Role: model.RoleClinic, ClinicRole: model.ClinicRoleDoctor}
		err := CanToggleService(actor, "Терапевт", svc)
		require.Error(t, err)
		var mismatch *SpecializationMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "Терапевт", mismatch.DoctorSpecialization)
		assert.Equal(t, "ЛОР", mismatch.ServiceSpecialization)
	})

	t.Run("manager forbidden", func(t *testing.T) {
		actor := model.Actor{Role: model.RoleClinic, ClinicRole: model.ClinicRoleManager}
		assert.ErrorIs(t, CanToggleService(actor, "ЛОР", svc), ErrNotDoctor)
	})

	t.Run("receptionist forbidden", func(t *testing.T) {
		actor := model.Actor{Role: model.RoleClinic, ClinicRole: model.ClinicRoleReceptionist}
		assert.ErrorIs(t, CanToggleService(actor, "ЛОР", svc), ErrNotDoctor)
	})

	t.Run("employer forbidden", func(t *testing.T) {
		actor := model.Actor{Role: model.RoleEmployer}
		assert.ErrorIs(t, CanToggleService(actor, "ЛОР", svc), ErrNotDoctor)
	})
}

func TestNextQueueStatus(t *testing.T) {
	assert.NoError(t, NextQueueStatus(model.QueueStatusWaiting, model.QueueStatusCalled))
	assert.NoError(t, NextQueueStatus(model.QueueStatusCalled, model.QueueStatusInProgress))
	assert.NoError(t, NextQueueStatus(model.QueueStatusInProgress, model.QueueStatusCompleted))
	assert.NoError(t, NextQueueStatus(model.QueueStatusCalled, model.QueueStatusWaiting))
	assert.Error(t, NextQueueStatus(model.QueueStatusWaiting, model.QueueStatusCompleted))
	assert.Error(t, NextQueueStatus(model.QueueStatusCompleted, model.QueueStatusWaiting))
	assert.Error(t, NextQueueStatus(model.QueueStatusSkipped, model.QueueStatusCalled))
}

func TestNextReferralStatus(t *testing.T) {
	assert.NoError(t, NextReferralStatus(model.ReferralStatusCreated, model.ReferralStatusSent))
	assert.NoError(t, NextReferralStatus(model.ReferralStatusSent, model.ReferralStatusAccepted))
	assert.NoError(t, NextReferralStatus(model.ReferralStatusAccepted, model.ReferralStatusInProgress))
	assert.NoError(t, NextReferralStatus(model.ReferralStatusInProgress, model.ReferralStatusCompleted))
	assert.NoError(t, NextReferralStatus(model.ReferralStatusCreated, model.ReferralStatusCancelled))
	assert.Error(t, NextReferralStatus(model.ReferralStatusCreated, model.ReferralStatusCompleted))
	assert.Error(t, NextReferralStatus(model.ReferralStatusCompleted, model.ReferralStatusCreated))
	assert.Error(t, NextReferralStatus(model.ReferralStatusCancelled, model.ReferralStatusSent))
}

func TestHealthGroupForVerdict(t *testing.T) {
	assert.Equal(t, 1, HealthGroupForVerdict(model.VerdictFit, false))
	assert.Equal(t, 3, HealthGroupForVerdict(model.VerdictTemporaryUnfit, false))
	assert.Equal(t, 4, HealthGroupForVerdict(model.VerdictPermanentUnfit, false))
	assert.Equal(t, 5, HealthGroupForVerdict(model.VerdictPermanentUnfit, true))
}

func TestNeedsReferral(t *testing.T) {
	assert.False(t, NeedsReferral(1))
	assert.False(t, NeedsReferral(3))
	assert.True(t, NeedsReferral(4))
	assert.True(t, NeedsReferral(5))
	assert.True(t, NeedsReferral(6))
	assert.False(t, NeedsReferral(7))
}
