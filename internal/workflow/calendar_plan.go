package workflow

import "github.com/profmed/crm-api/internal/model"

// PlanAction names a calendar-plan lifecycle action
type PlanAction string

const (
	PlanActionSubmit          PlanAction = "submit"
	PlanActionClinicApprove   PlanAction = "clinic_approve"
	PlanActionEmployerApprove PlanAction = "employer_approve"
	PlanActionReject          PlanAction = "reject"
	PlanActionSendToSES       PlanAction = "send_to_ses"
)

var planTransitions = map[PlanAction]map[model.CalendarPlanStatus]model.CalendarPlanStatus{
	PlanActionSubmit: {
		model.CalendarPlanStatusDraft:    model.CalendarPlanStatusPendingClinic,
		model.CalendarPlanStatusRejected: model.CalendarPlanStatusPendingClinic,
	},
	PlanActionClinicApprove: {
		model.CalendarPlanStatusDraft:         model.CalendarPlanStatusPendingEmployer,
		model.CalendarPlanStatusPendingClinic: model.CalendarPlanStatusPendingEmployer,
	},
	PlanActionEmployerApprove: {
		model.CalendarPlanStatusPendingEmployer: model.CalendarPlanStatusApproved,
	},
	PlanActionReject: {
		model.CalendarPlanStatusPendingEmployer: model.CalendarPlanStatusRejected,
	},
	PlanActionSendToSES: {
		model.CalendarPlanStatusApproved: model.CalendarPlanStatusSentToSES,
	},
}

// NextPlanStatus resolves the status an action moves a plan to
func NextPlanStatus(action PlanAction, from model.CalendarPlanStatus) (model.CalendarPlanStatus, error) {
	targets, ok := planTransitions[action]
	if !ok {
		return "", &TransitionError{Entity: "calendar plan", Action: string(action), From: string(from)}
	}
	next, ok := targets[from]
	if !ok {
		return "", &TransitionError{Entity: "calendar plan", Action: string(action), From: string(from)}
	}
	return next, nil
}

// PlanEditable reports whether plan contents may still be changed
func PlanEditable(status model.CalendarPlanStatus) bool {
	return status == model.CalendarPlanStatusDraft || status == model.CalendarPlanStatusRejected
}

// PlanActive reports whether the plan authorizes examinations
func PlanActive(status model.CalendarPlanStatus) bool {
	return status == model.CalendarPlanStatusApproved || status == model.CalendarPlanStatusSentToSES
}

// AggregateDates derives the plan window from its department entries:
// the earliest department start and the latest department end. The
// aggregate is always recomputed server-side.
func AggregateDates(departments []model.DepartmentPlan) (start, end model.Date) {
	for _, d := range departments {
		if d.StartDate.IsZero() {
			continue
		}
		if start.IsZero() || d.StartDate.Before(start.Time) {
			start = d.StartDate
		}
		if end.IsZero() || d.EndDate.After(end.Time) {
			end = d.EndDate
		}
	}
	return start, end
}

// AggregateEmployees collects the deduplicated union of employee IDs
// across all department entries, preserving first-seen order.
func AggregateEmployees(departments []model.DepartmentPlan) model.StringList {
	seen := make(map[string]struct{})
	var all model.StringList
	for _, d := range departments {
		for _, id := range d.EmployeeIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
		}
	}
	return all
}

// PlanCoversVisit reports whether an active plan includes the employee
// and its window contains the visit date.
func PlanCoversVisit(plan *model.CalendarPlan, employeeID string, visit model.Date) bool {
	if !PlanActive(plan.Status) {
		return false
	}
	if !plan.EmployeeIDs.Contains(employeeID) {
		return false
	}
	if visit.Before(plan.StartDate.Time) || visit.After(plan.EndDate.Time) {
		return false
	}
	return true
}
