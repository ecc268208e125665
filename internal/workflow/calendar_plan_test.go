package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profmed/crm-api/internal/model"
)

func TestNextPlanStatus(t *testing.T) {
	tests := []struct {
		name    string
		action  PlanAction
		from    model.CalendarPlanStatus
		want    model.CalendarPlanStatus
		wantErr bool
	}{
		{"submit from draft", PlanActionSubmit, model.CalendarPlanStatusDraft, model.CalendarPlanStatusPendingClinic, false},
		{"submit from rejected", PlanActionSubmit, model.CalendarPlanStatusRejected, model.CalendarPlanStatusPendingClinic, false},
		{"submit from approved", PlanActionSubmit, model.CalendarPlanStatusApproved, "", true},
		{"clinic approve from draft", PlanActionClinicApprove, model.CalendarPlanStatusDraft, model.CalendarPlanStatusPendingEmployer, false},
		{"clinic approve from pending clinic", PlanActionClinicApprove, model.CalendarPlanStatusPendingClinic, model.CalendarPlanStatusPendingEmployer, false},
		{"clinic approve from pending employer", PlanActionClinicApprove, model.CalendarPlanStatusPendingEmployer, "", true},
		{"employer approve from pending employer", PlanActionEmployerApprove, model.CalendarPlanStatusPendingEmployer, model.CalendarPlanStatusApproved, false},
		{"employer approve from draft", PlanActionEmployerApprove, model.CalendarPlanStatusDraft, "", true},
		{"reject from pending employer", PlanActionReject, model.CalendarPlanStatusPendingEmployer, model.CalendarPlanStatusRejected, false},
		{"reject from approved", PlanActionReject, model.CalendarPlanStatusApproved, "", true},
		{"send to ses from approved", PlanActionSendToSES, model.CalendarPlanStatusApproved, model.CalendarPlanStatusSentToSES, false},
		{"send to ses from pending employer", PlanActionSendToSES, model.CalendarPlanStatusPendingEmployer, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextPlanStatus(tt.action, tt.from)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregateDates(t *testing.T) {
	t.Run("window spans min start and max end", func(t *testing.T) {
		departments := []model.DepartmentPlan{
			{
				Department: "Цех А",
				StartDate:  model.NewDate(2025, time.January, 10),
				EndDate:    model.NewDate(2025, time.January, 15),
			},
			{
				Department: "Цех Б",
				StartDate:  model.NewDate(2025, time.January, 5),
				EndDate:    model.NewDate(2025, time.January, 20),
			},
		}

		start, end := AggregateDates(departments)
		assert.Equal(t, model.NewDate(2025, time.January, 5), start)
		assert.Equal(t, model.NewDate(2025, time.January, 20), end)
	})

	t.Run("single department", func(t *testing.T) {
		departments := []model.DepartmentPlan{
			{
				StartDate: model.NewDate(2025, time.March, 1),
				EndDate:   model.NewDate(2025, time.March, 10),
			},
		}

		start, end := AggregateDates(departments)
		assert.Equal(t, model.NewDate(2025, time.March, 1), start)
		assert.Equal(t, model.NewDate(2025, time.March, 10), end)
	})

	t.Run("empty input yields zero window", func(t *testing.T) {
		start, end := AggregateDates(nil)
		assert.True(t, start.IsZero())
		assert.True(t, end.IsZero())
	})
}

func TestAggregateEmployees(t *testing.T) {
	departments := []model.DepartmentPlan{
		{EmployeeIDs: []string{"a", "b"}},
		{EmployeeIDs: []string{"b", "c"}},
		{EmployeeIDs: []string{"a"}},
	}

	assert.Equal(t, model.StringList{"a", "b", "c"}, AggregateEmployees(departments))
}

func TestPlanCoversVisit(t *testing.T) {
	plan := &model.CalendarPlan{
		Status:      model.CalendarPlanStatusApproved,
		StartDate:   model.NewDate(2025, time.February, 1),
		EndDate:     model.NewDate(2025, time.February, 28),
		EmployeeIDs: model.StringList{"emp-1", "emp-2"},
	}

	t.Run("covered", func(t *testing.T) {
		assert.True(t, PlanCoversVisit(plan, "emp-1", model.NewDate(2025, time.February, 10)))
	})

	t.Run("boundary dates are inclusive", func(t *testing.T) {
		assert.True(t, PlanCoversVisit(plan, "emp-1", model.NewDate(2025, time.February, 1)))
		assert.True(t, PlanCoversVisit(plan, "emp-1", model.NewDate(2025, time.February, 28)))
	})

	t.Run("employee not in plan", func(t *testing.T) {
		assert.False(t, PlanCoversVisit(plan, "emp-9", model.NewDate(2025, time.February, 10)))
	})

	t.Run("visit outside window", func(t *testing.T) {
		assert.False(t, PlanCoversVisit(plan, "emp-1", model.NewDate(2025, time.March, 1)))
	})

	t.Run("inactive plan never covers", func(t *testing.T) {
		for _, status := range []model.CalendarPlanStatus{
			model.CalendarPlanStatusDraft,
			model.CalendarPlanStatusPendingClinic,
			model.CalendarPlanStatusPendingEmployer,
			model.CalendarPlanStatusRejected,
		} {
			inactive := *plan
			inactive.Status = status
			assert.False(t, PlanCoversVisit(&inactive, "emp-1", model.NewDate(2025, time.February, 10)), "status %s", status)
		}
	})

	t.Run("sent_to_ses still covers", func(t *testing.T) {
		active := *plan
		active.Status = model.CalendarPlanStatusSentToSES
		assert.True(t, PlanCoversVisit(&active, "emp-1", model.NewDate(2025, time.February, 10)))
	})
}
