package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

func validInput() CaseInput {
	return CaseInput{
		CaseType:       "Civil",
		Jurisdiction:   "State",
		Tier:           "Tier 2",
		State:          "Texas",
		County:         "Travis",
		Title:          "Smith v. Jones",
		Description:    "Breach of contract over a delivery of lumber",
		ScheduledDate:  "2025-03-01",
		ScheduledTime:  "10:00",
		TimezoneOffset: -360,
		PaymentAmount:  350,
		PaymentMethod:  "Bank Transfer",
		RequiredJurors: 7,
	}
}

var validationNow = time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

func TestValidateCaseInputValid(t *testing.T) {
	assert.Empty(t, ValidateCaseInput(validInput(), validationNow))
}

func TestValidateCaseInputEnumerates(t *testing.T) {
	in := validInput()
	in.CaseType = "Probate"
	in.Tier = "Tier 4"
	in.Title = " abc "
	in.RequiredJurors = 13
	in.PaymentAmount = -1

	msgs := ValidateCaseInput(in, validationNow)
	assert.ElementsMatch(t, []string{
		"case type must be Civil or Criminal",
		"case tier must be Tier 1, Tier 2 or Tier 3",
		"case title must be at least 5 characters",
		"required jurors must be between 6 and 12",
		"payment amount cannot be negative",
	}, msgs)
}

func TestValidateCaseInputPastSlot(t *testing.T) {
	in := validInput()
	in.ScheduledDate = "2025-01-31"
	msgs := ValidateCaseInput(in, validationNow)
	assert.Equal(t, []string{"scheduled date and time must be in the future"}, msgs)
}

func TestValidateCaseInputGraceWindow(t *testing.T) {
	in := validInput()
	in.ScheduledDate = "2025-01-31"
	in.ScheduledTime = "23:57"
	in.TimezoneOffset = 0
	assert.Empty(t, ValidateCaseInput(in, validationNow))
}

func TestValidateCaseInputBadTime(t *testing.T) {
	in := validInput()
	in.ScheduledTime = "25:00"
	assert.Equal(t, []string{"scheduled date and time are invalid"}, ValidateCaseInput(in, validationNow))

	in = validInput()
	in.ScheduledDate = "03/01/2025"
	assert.Equal(t, []string{"scheduled date must be YYYY-MM-DD"}, ValidateCaseInput(in, validationNow))
}

func TestValidateQuestions(t *testing.T) {
	msgs := ValidateQuestions([]models.JuryChargeQuestion{
		{ID: "q1", Text: "Is the defendant liable?", Type: models.QuestionYesNo},
		{ID: "q1", Text: "Damages?", Type: models.QuestionNumeric},
		{ID: "q3", Text: "Which party?", Type: models.QuestionMultipleChoice, Options: []string{"Plaintiff"}},
		{ID: "", Text: "", Type: "Essay"},
	})
	assert.Equal(t, []string{
		"question 2 reuses id q1",
		"question 3 needs at least two options",
		"question 4 is missing an id",
		"question 4 is missing its text",
		`question 4 has unknown type "Essay"`,
	}, msgs)
}
