package workflow

import (
	"errors"
	"fmt"

	"github.com/profmed/crm-api/internal/model"
)

// ErrNotDoctor is returned when a non-doctor tries to mark a service
var ErrNotDoctor = errors.New("менеджеры и регистраторы не могут отмечать услуги")

// SpecializationMismatchError is returned when a doctor marks a
// service outside their specialization.
type SpecializationMismatchError struct {
	DoctorSpecialization  string
	ServiceSpecialization string
}

func (e *SpecializationMismatchError) Error() string {
	return fmt.Sprintf(
		"Вы можете отмечать только услуги по вашей специализации (%s). Данная услуга: %s",
		e.DoctorSpecialization, e.ServiceSpecialization,
	)
}

// CanToggleService enforces who may change a route-sheet service
// status: only a clinic doctor whose specialization matches the
// service's specialization or its name.
func CanToggleService(actor model.Actor, doctorSpecialization string, svc model.RouteSheetService) error {
	if !actor.IsDoctor() {
		return ErrNotDoctor
	}
	if doctorSpecialization == svc.Specialization || doctorSpecialization == svc.Name {
		return nil
	}
	target := svc.Specialization
	if target == "" {
		target = svc.Name
	}
	return &SpecializationMismatchError{
		DoctorSpecialization:  doctorSpecialization,
		ServiceSpecialization: target,
	}
}

var queueTransitions = map[model.QueueStatus][]model.QueueStatus{
	model.QueueStatusWaiting:    {model.QueueStatusCalled, model.QueueStatusSkipped},
	model.QueueStatusCalled:     {model.QueueStatusInProgress, model.QueueStatusSkipped, model.QueueStatusWaiting},
	model.QueueStatusInProgress: {model.QueueStatusCompleted},
}

// NextQueueStatus validates a queue entry status change
func NextQueueStatus(from, to model.QueueStatus) error {
	for _, allowed := range queueTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{Entity: "queue entry", Action: string(to), From: string(from)}
}

var referralTransitions = map[model.ReferralStatus][]model.ReferralStatus{
	model.ReferralStatusCreated:    {model.ReferralStatusSent, model.ReferralStatusCancelled},
	model.ReferralStatusSent:       {model.ReferralStatusAccepted, model.ReferralStatusCancelled},
	model.ReferralStatusAccepted:   {model.ReferralStatusInProgress, model.ReferralStatusCancelled},
	model.ReferralStatusInProgress: {model.ReferralStatusCompleted, model.ReferralStatusCancelled},
}

// NextReferralStatus validates a referral status change
func NextReferralStatus(from, to model.ReferralStatus) error {
	for _, allowed := range referralTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{Entity: "referral", Action: string(to), From: string(from)}
}

// HealthGroupForVerdict derives the ministry health group from the
// commission verdict when the expert does not set one explicitly.
func HealthGroupForVerdict(verdict model.ExpertiseVerdict, occupationalDisease bool) int {
	switch {
	case occupationalDisease:
		return 5
	case verdict == model.VerdictPermanentUnfit:
		return 4
	case verdict == model.VerdictTemporaryUnfit:
		return 3
	default:
		return 1
	}
}

// NeedsReferral reports whether a health group triggers an automatic
// referral to a specialized institution.
func NeedsReferral(healthGroup int) bool {
	return healthGroup >= 4 && healthGroup <= 6
}
