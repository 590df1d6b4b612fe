package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

var allStatuses = []string{
	models.AttorneyStatusPending,
	models.AttorneyStatusWarRoom,
	models.AttorneyStatusJoinTrial,
	models.AttorneyStatusViewDetails,
	models.AttorneyStatusCompleted,
	models.AttorneyStatusCancelled,
}

func TestCanTransitionOnlyListedPairs(t *testing.T) {
	allowed := map[[2]string]bool{
		{models.AttorneyStatusPending, models.AttorneyStatusCancelled}:     true,
		{models.AttorneyStatusWarRoom, models.AttorneyStatusJoinTrial}:     true,
		{models.AttorneyStatusWarRoom, models.AttorneyStatusCancelled}:     true,
		{models.AttorneyStatusJoinTrial, models.AttorneyStatusViewDetails}: true,
		{models.AttorneyStatusJoinTrial, models.AttorneyStatusCompleted}:   true,
		{models.AttorneyStatusViewDetails, models.AttorneyStatusCompleted}: true,
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.Equal(t, allowed[[2]string{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestValidateTransition(t *testing.T) {
	approved := models.Case{AttorneyStatus: models.AttorneyStatusWarRoom, AdminApprovalStatus: models.ApprovalStatusApproved, RequiredJurors: 6}

	res := ValidateTransition(models.Case{AttorneyStatus: models.AttorneyStatusPending}, models.AttorneyStatusJoinTrial, 12)
	assert.False(t, res.Valid)
	assert.Equal(t, "cannot transition from pending to join_trial", res.Message)

	res = ValidateTransition(approved, models.AttorneyStatusJoinTrial, 5)
	assert.False(t, res.Valid)
	assert.Equal(t, "case needs 6 approved jurors, has 5", res.Message)

	res = ValidateTransition(approved, models.AttorneyStatusJoinTrial, 6)
	assert.True(t, res.Valid)

	notApproved := approved
	notApproved.AdminApprovalStatus = models.ApprovalStatusPending
	res = ValidateTransition(notApproved, models.AttorneyStatusJoinTrial, 7)
	assert.False(t, res.Valid)

	res = ValidateTransition(approved, "archived", 7)
	assert.False(t, res.Valid)
	assert.Equal(t, `unknown status "archived"`, res.Message)

	res = ValidateTransition(models.Case{AttorneyStatus: models.AttorneyStatusCompleted}, models.AttorneyStatusCancelled, 0)
	assert.False(t, res.Valid)
}

func TestApplyAdminDecision(t *testing.T) {
	pending := CaseState{Approval: models.ApprovalStatusPending, Attorney: models.AttorneyStatusPending}

	got, err := ApplyAdminDecision(pending, DecisionApprove)
	assert.NoError(t, err)
	assert.Equal(t, CaseState{Approval: models.ApprovalStatusApproved, Attorney: models.AttorneyStatusWarRoom}, got)

	got, err = ApplyAdminDecision(pending, DecisionReject)
	assert.NoError(t, err)
	assert.Equal(t, CaseState{Approval: models.ApprovalStatusRejected, Attorney: models.AttorneyStatusPending}, got)

	got, err = ApplyAdminDecision(pending, DecisionReschedule)
	assert.NoError(t, err)
	assert.True(t, got.RescheduleRequired)
	assert.Equal(t, models.ApprovalStatusPending, got.Approval)

	_, err = ApplyAdminDecision(got, DecisionApprove)
	assert.NoError(t, err)

	_, err = ApplyAdminDecision(CaseState{Approval: models.ApprovalStatusApproved, Attorney: models.AttorneyStatusWarRoom}, DecisionApprove)
	assert.ErrorIs(t, err, ErrDecisionNotAllowed)

	_, err = ApplyAdminDecision(CaseState{Approval: models.ApprovalStatusApproved, Attorney: models.AttorneyStatusCancelled}, DecisionReject)
	assert.ErrorIs(t, err, ErrDecisionNotAllowed)

	_, err = ApplyAdminDecision(pending, "escalate")
	assert.ErrorIs(t, err, ErrDecisionNotAllowed)
}

func TestApplyRescheduleConfirmation(t *testing.T) {
	_, err := ApplyRescheduleConfirmation(CaseState{Approval: models.ApprovalStatusPending, Attorney: models.AttorneyStatusPending})
	assert.ErrorIs(t, err, ErrDecisionNotAllowed)

	got, err := ApplyRescheduleConfirmation(CaseState{Approval: models.ApprovalStatusPending, Attorney: models.AttorneyStatusPending, RescheduleRequired: true})
	assert.NoError(t, err)
	assert.Equal(t, CaseState{Approval: models.ApprovalStatusApproved, Attorney: models.AttorneyStatusWarRoom}, got)
}
