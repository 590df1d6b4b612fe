package scheduling

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

var transitions = map[string][]string{
	models.AttorneyStatusPending:     {models.AttorneyStatusCancelled},
	models.AttorneyStatusWarRoom:     {models.AttorneyStatusJoinTrial, models.AttorneyStatusCancelled},
	models.AttorneyStatusJoinTrial:   {models.AttorneyStatusViewDetails, models.AttorneyStatusCompleted},
	models.AttorneyStatusViewDetails: {models.AttorneyStatusCompleted},
	models.AttorneyStatusCancelled:   {},
	models.AttorneyStatusCompleted:   {},
}

// TransitionResult explains whether an attorney status change is allowed
type TransitionResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// IsAttorneyStatus reports whether s is a known attorney status
func IsAttorneyStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether the table allows from -> to
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks a case moving to newStatus given its approved juror count
func ValidateTransition(c models.Case, newStatus string, approvedJurors int) TransitionResult {
	if !IsAttorneyStatus(newStatus) {
		return TransitionResult{Message: fmt.Sprintf("unknown status %q", newStatus)}
	}
	if !CanTransition(c.AttorneyStatus, newStatus) {
		return TransitionResult{Message: fmt.Sprintf("cannot transition from %s to %s", c.AttorneyStatus, newStatus)}
	}
	if newStatus == models.AttorneyStatusJoinTrial {
		if c.AdminApprovalStatus != models.ApprovalStatusApproved {
			return TransitionResult{Message: "case must be approved by an admin before the trial can start"}
		}
		if approvedJurors < c.RequiredJurors {
			return TransitionResult{Message: fmt.Sprintf("case needs %d approved jurors, has %d", c.RequiredJurors, approvedJurors)}
		}
	}
	return TransitionResult{Valid: true, Message: "transition allowed"}
}

// Admin decisions on a case
const (
	DecisionApprove    = "approve"
	DecisionReject     = "reject"
	DecisionReschedule = "reschedule"
)

// CaseState is the pair of status fields a case carries
type CaseState struct {
	Approval           string
	Attorney           string
	RescheduleRequired bool
}

// ErrDecisionNotAllowed is returned when an admin decision does not apply to the current state
var ErrDecisionNotAllowed = errors.New("decision not allowed in current state")

// ApplyAdminDecision computes the state after an admin acts on a case.
// Approving moves the attorney view to the war room. Rejecting leaves the attorney status alone.
// A reschedule request keeps the case pending and flags it until the attorney confirms a slot.
func ApplyAdminDecision(s CaseState, decision string) (CaseState, error) {
	if s.Attorney == models.AttorneyStatusCancelled || s.Attorney == models.AttorneyStatusCompleted {
		return s, errors.Wrapf(ErrDecisionNotAllowed, "case is %s", s.Attorney)
	}
	switch decision {
	case DecisionApprove:
		if s.Approval == models.ApprovalStatusApproved {
			return s, errors.Wrap(ErrDecisionNotAllowed, "case already approved")
		}
		return CaseState{Approval: models.ApprovalStatusApproved, Attorney: models.AttorneyStatusWarRoom}, nil
	case DecisionReject:
		if s.Approval == models.ApprovalStatusRejected {
			return s, errors.Wrap(ErrDecisionNotAllowed, "case already rejected")
		}
		return CaseState{Approval: models.ApprovalStatusRejected, Attorney: s.Attorney}, nil
	case DecisionReschedule:
		if s.Attorney != models.AttorneyStatusPending {
			return s, errors.Wrap(ErrDecisionNotAllowed, "only pending cases can be sent back for rescheduling")
		}
		return CaseState{Approval: models.ApprovalStatusPending, Attorney: s.Attorney, RescheduleRequired: true}, nil
	}
	return s, errors.Wrapf(ErrDecisionNotAllowed, "unknown decision %q", decision)
}

// ApplyRescheduleConfirmation is the attorney accepting a new slot after a reschedule request
func ApplyRescheduleConfirmation(s CaseState) (CaseState, error) {
	if !s.RescheduleRequired {
		return s, errors.Wrap(ErrDecisionNotAllowed, "case has no pending reschedule")
	}
	return CaseState{Approval: models.ApprovalStatusApproved, Attorney: models.AttorneyStatusWarRoom}, nil
}
