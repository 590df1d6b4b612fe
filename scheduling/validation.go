package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

// CaseInput is what an attorney submits to create a case; date and time are attorney-local
type CaseInput struct {
	CaseType       string  `json:"caseType" validate:"required,oneof=Civil Criminal"`
	Jurisdiction   string  `json:"jurisdiction" validate:"required,oneof=State Federal"`
	Tier           string  `json:"caseTier" validate:"required,oneof='Tier 1' 'Tier 2' 'Tier 3'"`
	State          string  `json:"state" validate:"required"`
	County         string  `json:"county" validate:"required"`
	Title          string  `json:"caseTitle" validate:"required,min=5"`
	Description    string  `json:"caseDescription" validate:"required"`
	ScheduledDate  string  `json:"scheduledDate" validate:"required,datetime=2006-01-02"`
	ScheduledTime  string  `json:"scheduledTime" validate:"required"`
	TimezoneOffset int     `json:"timezoneOffset" validate:"gte=-840,lte=840"`
	TimeZone       string  `json:"timezoneName"`
	PaymentAmount  float64 `json:"paymentAmount" validate:"gte=0"`
	PaymentMethod  string  `json:"paymentMethod" validate:"omitempty,oneof=PayPal Stripe 'Bank Transfer' Check"`
	RequiredJurors int     `json:"requiredJurors" validate:"gte=6,lte=12"`

	PlaintiffGroups     []models.PartyGroup         `json:"plaintiffGroups"`
	DefendantGroups     []models.PartyGroup         `json:"defendantGroups"`
	VoirDire1Questions  []string                    `json:"voirDire1Questions"`
	VoirDire2Questions  []string                    `json:"voirDire2Questions"`
	JuryChargeQuestions []models.JuryChargeQuestion `json:"juryChargeQuestions"`
}

var validate = validator.New()

var fieldMessages = map[string]string{
	"CaseType":       "case type must be Civil or Criminal",
	"Jurisdiction":   "jurisdiction must be State or Federal",
	"Tier":           "case tier must be Tier 1, Tier 2 or Tier 3",
	"State":          "state is required",
	"County":         "county is required",
	"Title":          "case title must be at least 5 characters",
	"Description":    "case description is required",
	"ScheduledDate":  "scheduled date must be YYYY-MM-DD",
	"ScheduledTime":  "scheduled time is required",
	"TimezoneOffset": "timezone offset is out of range",
	"PaymentAmount":  "payment amount cannot be negative",
	"PaymentMethod":  "payment method must be PayPal, Stripe, Bank Transfer or Check",
	"RequiredJurors": "required jurors must be between 6 and 12",
}

// ValidateCaseInput returns every problem with the input; an empty slice means it is valid.
// The scheduled slot must lie in the future, allowing the grace window.
func ValidateCaseInput(in CaseInput, now time.Time) []string {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.State = strings.TrimSpace(in.State)
	in.County = strings.TrimSpace(in.County)

	var msgs []string
	failed := map[string]bool{}
	if err := validate.Struct(in); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				failed[fe.StructField()] = true
				if m, ok := fieldMessages[fe.StructField()]; ok {
					msgs = append(msgs, m)
					continue
				}
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
	}

	if !failed["ScheduledDate"] && !failed["ScheduledTime"] {
		date, clock, err := ToUTC(in.ScheduledDate, in.ScheduledTime, in.TimezoneOffset)
		if err != nil {
			msgs = append(msgs, "scheduled date and time are invalid")
		} else if !IsFuture(date, clock, now) {
			msgs = append(msgs, "scheduled date and time must be in the future")
		}
	}
	return msgs
}

// ValidateQuestions checks jury charge question definitions
func ValidateQuestions(qs []models.JuryChargeQuestion) []string {
	var msgs []string
	seen := map[string]bool{}
	for i, q := range qs {
		label := fmt.Sprintf("question %d", i+1)
		if strings.TrimSpace(q.ID) == "" {
			msgs = append(msgs, label+" is missing an id")
		} else if seen[q.ID] {
			msgs = append(msgs, label+" reuses id "+q.ID)
		}
		seen[q.ID] = true
		if strings.TrimSpace(q.Text) == "" {
			msgs = append(msgs, label+" is missing its text")
		}
		switch q.Type {
		case models.QuestionMultipleChoice:
			if len(q.Options) < 2 {
				msgs = append(msgs, label+" needs at least two options")
			}
		case models.QuestionYesNo, models.QuestionNumeric, models.QuestionText:
		default:
			msgs = append(msgs, fmt.Sprintf("%s has unknown type %q", label, q.Type))
		}
	}
	return msgs
}
