package verdicts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

func submitted(answers ...string) []models.Verdict {
	var out []models.Verdict
	for i, a := range answers {
		out = append(out, models.Verdict{
			JurorID:     primitive.NewObjectID(),
			JurorName:   "Juror " + string(rune('A'+i)),
			Responses:   map[string]string{"q": a},
			IsSubmitted: true,
		})
	}
	return out
}

func TestAggregateYesNo(t *testing.T) {
	q := models.JuryChargeQuestion{ID: "q", Text: "Liable?", Type: models.QuestionYesNo}
	res := Aggregate([]models.JuryChargeQuestion{q}, submitted("Yes", "Yes", "Yes", "No"))

	assert.Len(t, res, 1)
	r := res[0]
	assert.Equal(t, 4, r.TotalResponses)
	assert.Equal(t, []OptionCount{
		{Option: "Yes", Count: 3, Percentage: 75},
		{Option: "No", Count: 1, Percentage: 25},
	}, r.Options)
	assert.Equal(t, StrongConsensus, r.Consensus)
	assert.Equal(t, "Yes", r.ConsensusOption)
}

func TestAggregateMultipleChoice(t *testing.T) {
	q := models.JuryChargeQuestion{ID: "q", Type: models.QuestionMultipleChoice, Options: []string{"Plaintiff", "Defendant", "Neither"}}

	r := Aggregate([]models.JuryChargeQuestion{q}, submitted("Plaintiff", "Plaintiff", "Defendant"))[0]
	assert.Equal(t, Majority, r.Consensus)
	assert.Equal(t, "Plaintiff", r.ConsensusOption)
	assert.Equal(t, OptionCount{Option: "Plaintiff", Count: 2, Percentage: 66.67}, r.Options[0])
	assert.Equal(t, OptionCount{Option: "Neither", Count: 0, Percentage: 0}, r.Options[2])

	r = Aggregate([]models.JuryChargeQuestion{q}, submitted("Plaintiff", "Defendant"))[0]
	assert.Equal(t, NoConsensus, r.Consensus)
	assert.Equal(t, "Plaintiff", r.ConsensusOption)
}

func TestAggregateIgnoresDrafts(t *testing.T) {
	q := models.JuryChargeQuestion{ID: "q", Type: models.QuestionYesNo}
	vs := submitted("Yes", "No")
	vs[1].IsSubmitted = false

	r := Aggregate([]models.JuryChargeQuestion{q}, vs)[0]
	assert.Equal(t, 1, r.TotalResponses)
	assert.Equal(t, StrongConsensus, r.Consensus)
}

func TestAggregateNoResponses(t *testing.T) {
	q := models.JuryChargeQuestion{ID: "q", Type: models.QuestionYesNo}
	r := Aggregate([]models.JuryChargeQuestion{q}, nil)[0]
	assert.Equal(t, 0, r.TotalResponses)
	assert.Equal(t, NoConsensus, r.Consensus)
	assert.Empty(t, r.ConsensusOption)
	assert.Len(t, r.Options, 2)
}

func TestAggregateNumeric(t *testing.T) {
	q := models.JuryChargeQuestion{ID: "q", Type: models.QuestionNumeric}
	r := Aggregate([]models.JuryChargeQuestion{q}, submitted("10", "20", "20", "30", "lots"))[0]

	assert.Equal(t, 4, r.TotalResponses)
	assert.Equal(t, &NumericSummary{
		Count:  4,
		Mean:   20,
		Median: 20,
		Mode:   20,
		Min:    10,
		Max:    30,
		Range:  20,
		StdDev: 7.07,
	}, r.Numeric)
}

func TestAggregateNumericModeTie(t *testing.T) {
	q := models.JuryChargeQuestion{ID: "q", Type: models.QuestionNumeric}
	r := Aggregate([]models.JuryChargeQuestion{q}, submitted("50", "10", "10", "50"))[0]
	assert.Equal(t, float64(50), r.Numeric.Mode)
}

func TestAggregateText(t *testing.T) {
	q := models.JuryChargeQuestion{ID: "q", Type: models.QuestionText}
	vs := submitted("The contract was clear", "")
	r := Aggregate([]models.JuryChargeQuestion{q}, vs)[0]

	assert.Equal(t, 1, r.TotalResponses)
	assert.Equal(t, []TextAnswer{{JurorID: vs[0].JurorID.Hex(), JurorName: "Juror A", Answer: "The contract was clear"}}, r.TextResponses)
}
