package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attorney-facing lifecycle of a case
const (
	AttorneyStatusPending     = "pending"
	AttorneyStatusWarRoom     = "war_room"
	AttorneyStatusJoinTrial   = "join_trial"
	AttorneyStatusViewDetails = "view_details"
	AttorneyStatusCompleted   = "completed"
	AttorneyStatusCancelled   = "cancelled"
)

// Admin approval workflow of a case
const (
	ApprovalStatusPending  = "pending"
	ApprovalStatusApproved = "approved"
	ApprovalStatusRejected = "rejected"
)

// Jury charge release states
const (
	JuryChargePending   = "pending"
	JuryChargeCompleted = "completed"
)

// Jury charge question types
const (
	QuestionMultipleChoice = "Multiple Choice"
	QuestionYesNo          = "Yes/No"
	QuestionNumeric        = "Numeric Response"
	QuestionText           = "Text Response"
)

// MaxApprovedJurors is the number of approved jurors at which a case is fully staffed
const MaxApprovedJurors = 7

// Case holds the structure for the cases collection in mongo
type Case struct {
	ID         primitive.ObjectID `json:"id" bson:"_id"`
	AttorneyID primitive.ObjectID `json:"attorneyId" bson:"attorneyId"`

	CaseType     string `json:"caseType" bson:"caseType"`
	Jurisdiction string `json:"jurisdiction" bson:"jurisdiction"`
	Tier         string `json:"caseTier" bson:"caseTier"`
	State        string `json:"state" bson:"state"`
	County       string `json:"county" bson:"county"`
	Title        string `json:"caseTitle" bson:"caseTitle"`
	Description  string `json:"caseDescription" bson:"caseDescription"`

	// Scheduling, always stored in UTC
	ScheduledDate  string `json:"scheduledDate" bson:"scheduledDate"` // YYYY-MM-DD
	ScheduledTime  string `json:"scheduledTime" bson:"scheduledTime"` // HH:MM:SS
	TimeZone       string `json:"timeZone,omitempty" bson:"timeZone,omitempty"`
	TimezoneOffset int    `json:"timezoneOffset" bson:"timezoneOffset"` // minutes east of UTC reported by the client

	PaymentAmount      float64 `json:"paymentAmount" bson:"paymentAmount"`
	PaymentMethod      string  `json:"paymentMethod" bson:"paymentMethod"`
	RequiredJurors     int     `json:"requiredJurors" bson:"requiredJurors"`
	ApprovedJurorCount int     `json:"approvedJurorCount" bson:"approvedJurorCount"`

	PlaintiffGroups      []PartyGroup         `json:"plaintiffGroups" bson:"plaintiffGroups"`
	DefendantGroups      []PartyGroup         `json:"defendantGroups" bson:"defendantGroups"`
	VoirDire1Questions   []string             `json:"voirDire1Questions" bson:"voirDire1Questions"`
	VoirDire2Questions   []string             `json:"voirDire2Questions" bson:"voirDire2Questions"`
	JuryChargeQuestions  []JuryChargeQuestion `json:"juryChargeQuestions" bson:"juryChargeQuestions"`
	JuryChargeStatus     string               `json:"juryChargeStatus" bson:"juryChargeStatus"`
	JuryChargeReleasedAt *time.Time           `json:"juryChargeReleasedAt,omitempty" bson:"juryChargeReleasedAt,omitempty"`

	AttorneyStatus      string `json:"attorneyStatus" bson:"attorneyStatus"`
	AdminApprovalStatus string `json:"adminApprovalStatus" bson:"adminApprovalStatus"`
	// SlotHeld is true while the case occupies its (date, time) slot; backs the unique slot index
	SlotHeld bool `json:"-" bson:"slotHeld"`

	ApprovedAt      *time.Time          `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	ApprovedBy      *primitive.ObjectID `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	RejectedAt      *time.Time          `json:"rejectedAt,omitempty" bson:"rejectedAt,omitempty"`
	RejectedBy      *primitive.ObjectID `json:"rejectedBy,omitempty" bson:"rejectedBy,omitempty"`
	RejectionReason string              `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	AdminComments   string              `json:"adminComments,omitempty" bson:"adminComments,omitempty"`

	// Reschedule bookkeeping
	RescheduleRequired    bool                `json:"rescheduleRequired" bson:"rescheduleRequired"`
	AlternateSlots        []TimeSlot          `json:"alternateSlots,omitempty" bson:"alternateSlots,omitempty"`
	OriginalScheduledDate string              `json:"originalScheduledDate,omitempty" bson:"originalScheduledDate,omitempty"`
	OriginalScheduledTime string              `json:"originalScheduledTime,omitempty" bson:"originalScheduledTime,omitempty"`
	RescheduleRequestedBy *primitive.ObjectID `json:"rescheduleRequestedBy,omitempty" bson:"rescheduleRequestedBy,omitempty"`
	RescheduleRequestedAt *time.Time          `json:"rescheduleRequestedAt,omitempty" bson:"rescheduleRequestedAt,omitempty"`

	ReminderSentAt *time.Time `json:"-" bson:"reminderSentAt,omitempty"`

	IsDeleted bool       `json:"isDeleted" bson:"isDeleted"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" bson:"deletedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TimeSlot is a (date, time) pair at which a trial can be scheduled
type TimeSlot struct {
	Date string `json:"date" bson:"date"`
	Time string `json:"time" bson:"time"`
}

// PartyGroup is one plaintiff or defendant grouping on a case
type PartyGroup struct {
	Name      string   `json:"name" bson:"name"`
	Members   []string `json:"members,omitempty" bson:"members,omitempty"`
	Counsel   string   `json:"counsel,omitempty" bson:"counsel,omitempty"`
	Narrative string   `json:"narrative,omitempty" bson:"narrative,omitempty"`
}

// JuryChargeQuestion is one verdict question released to jurors
type JuryChargeQuestion struct {
	ID       string   `json:"id" bson:"id"`
	Text     string   `json:"text" bson:"text"`
	Type     string   `json:"type" bson:"type"`
	Options  []string `json:"options,omitempty" bson:"options,omitempty"`
	Order    int      `json:"order" bson:"order"`
	Required bool     `json:"required" bson:"required"`
}

// HoldsSlot reports whether a case with these fields occupies its slot
func HoldsSlot(isDeleted bool, approvalStatus string) bool {
	if isDeleted {
		return false
	}
	return approvalStatus == ApprovalStatusPending || approvalStatus == ApprovalStatusApproved
}
