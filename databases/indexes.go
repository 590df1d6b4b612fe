package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Index names whose violations surface as domain conflicts
const (
	CaseSlotIndex          = "uniq_case_slot"
	ApplicationIndex       = "uniq_juror_case"
	VerdictIndex           = "uniq_verdict_case_juror"
	ActiveMeetingIndex     = "uniq_active_meeting"
	PendingRescheduleIndex = "uniq_pending_attorney_reschedule"
	RefundIndex            = "uniq_refund_original"
)

// EnsureIndexes creates the indexes that enforce the "at most one" invariants.
// Slot uniqueness only counts cases that hold their slot (slotHeld), which is
// kept in sync with isDeleted and adminApprovalStatus on every write.
func EnsureIndexes(ctx context.Context, db DatabaseHelper) error {
	specs := map[string][]mongo.IndexModel{
		caseName: {
			{
				Keys: bson.D{{Key: "scheduledDate", Value: 1}, {Key: "scheduledTime", Value: 1}},
				Options: options.Index().
					SetName(CaseSlotIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"slotHeld": true}),
			},
			{Keys: bson.D{{Key: "attorneyId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "state", Value: 1}, {Key: "county", Value: 1}}},
		},
		applicationName: {
			{
				Keys:    bson.D{{Key: "jurorId", Value: 1}, {Key: "caseId", Value: 1}},
				Options: options.Index().SetName(ApplicationIndex).SetUnique(true),
			},
			{Keys: bson.D{{Key: "caseId", Value: 1}, {Key: "status", Value: 1}}},
		},
		verdictName: {
			{
				Keys:    bson.D{{Key: "caseId", Value: 1}, {Key: "jurorId", Value: 1}},
				Options: options.Index().SetName(VerdictIndex).SetUnique(true),
			},
		},
		meetingName: {
			{
				Keys: bson.D{{Key: "caseId", Value: 1}},
				Options: options.Index().
					SetName(ActiveMeetingIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": "active"}),
			},
		},
		participantName: {
			{Keys: bson.D{{Key: "meetingId", Value: 1}, {Key: "leftAt", Value: 1}}},
		},
		attorneyRescheduleName: {
			{
				Keys: bson.D{{Key: "caseId", Value: 1}},
				Options: options.Index().
					SetName(PendingRescheduleIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"status": "pending"}),
			},
		},
		attorneyName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		jurorName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		adminName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		paymentName: {
			{Keys: bson.D{{Key: "caseId", Value: 1}, {Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{
				Keys: bson.D{{Key: "originalPaymentId", Value: 1}},
				Options: options.Index().
					SetName(RefundIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"type": "refund"}),
			},
		},
		calendarName: {
			{Keys: bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "isActive", Value: 1}}},
		},
		notificationName: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		eventName: {
			{Keys: bson.D{{Key: "caseId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		loginAttemptName: {
			{Keys: bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		passwordResetName: {
			{Keys: bson.D{{Key: "tokenHash", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}

	for name, models := range specs {
		if err := db.Collection(name).CreateIndexes(ctx, models); err != nil {
			zap.S().Errorw("failed to create indexes", "collection", name, "error", err)
			return err
		}
		zap.S().Infow("indexes ensured", "collection", name, "count", len(models))
	}
	return nil
}
