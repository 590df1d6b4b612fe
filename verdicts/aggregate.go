// Package verdicts turns raw juror answers into per-question results
package verdicts

import (
	"math"
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

// Consensus levels for choice questions
const (
	StrongConsensus = "STRONG_CONSENSUS"
	Majority        = "MAJORITY"
	NoConsensus     = "NO_CONSENSUS"
)

// OptionCount is the tally of one answer option
type OptionCount struct {
	Option     string  `json:"option"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// NumericSummary describes the numeric answers to one question
type NumericSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Mode   float64 `json:"mode"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Range  float64 `json:"range"`
	StdDev float64 `json:"stdDev"`
}

// TextAnswer is one juror's free text answer
type TextAnswer struct {
	JurorID   string `json:"jurorId"`
	JurorName string `json:"jurorName"`
	Answer    string `json:"answer"`
}

// QuestionResult is the aggregate for one jury charge question
type QuestionResult struct {
	QuestionID      string          `json:"questionId"`
	QuestionText    string          `json:"questionText"`
	QuestionType    string          `json:"questionType"`
	TotalResponses  int             `json:"totalResponses"`
	Options         []OptionCount   `json:"options,omitempty"`
	Consensus       string          `json:"consensus,omitempty"`
	ConsensusOption string          `json:"consensusOption,omitempty"`
	Numeric         *NumericSummary `json:"numeric,omitempty"`
	TextResponses   []TextAnswer    `json:"textResponses,omitempty"`
}

// Aggregate computes one result per question over the submitted verdicts.
// Drafts are ignored.
func Aggregate(questions []models.JuryChargeQuestion, verdicts []models.Verdict) []QuestionResult {
	submitted := make([]models.Verdict, 0, len(verdicts))
	for _, v := range verdicts {
		if v.IsSubmitted {
			submitted = append(submitted, v)
		}
	}

	results := make([]QuestionResult, 0, len(questions))
	for _, q := range questions {
		res := QuestionResult{QuestionID: q.ID, QuestionText: q.Text, QuestionType: q.Type}
		switch q.Type {
		case models.QuestionMultipleChoice, models.QuestionYesNo:
			aggregateChoice(&res, q, submitted)
		case models.QuestionNumeric:
			aggregateNumeric(&res, q, submitted)
		default:
			aggregateText(&res, q, submitted)
		}
		results = append(results, res)
	}
	return results
}

func aggregateChoice(res *QuestionResult, q models.JuryChargeQuestion, verdicts []models.Verdict) {
	declared := q.Options
	if q.Type == models.QuestionYesNo && len(declared) == 0 {
		declared = []string{"Yes", "No"}
	}

	counts := map[string]int{}
	var order []string
	for _, opt := range declared {
		if _, ok := counts[opt]; !ok {
			counts[opt] = 0
			order = append(order, opt)
		}
	}
	for _, v := range verdicts {
		ans, ok := v.Responses[q.ID]
		ans = strings.TrimSpace(ans)
		if !ok || ans == "" {
			continue
		}
		if _, seen := counts[ans]; !seen {
			order = append(order, ans)
		}
		counts[ans]++
		res.TotalResponses++
	}

	best, bestCount := "", 0
	for _, opt := range order {
		c := counts[opt]
		pct := 0.0
		if res.TotalResponses > 0 {
			pct = round2(float64(c) * 100 / float64(res.TotalResponses))
		}
		res.Options = append(res.Options, OptionCount{Option: opt, Count: c, Percentage: pct})
		if c > bestCount {
			best, bestCount = opt, c
		}
	}
	if res.Options == nil {
		res.Options = []OptionCount{}
	}

	if res.TotalResponses == 0 {
		res.Consensus = NoConsensus
		return
	}
	res.ConsensusOption = best
	res.Consensus = classify(float64(bestCount) * 100 / float64(res.TotalResponses))
}

func classify(pct float64) string {
	switch {
	case pct >= 75:
		return StrongConsensus
	case pct >= 51:
		return Majority
	}
	return NoConsensus
}

func aggregateNumeric(res *QuestionResult, q models.JuryChargeQuestion, verdicts []models.Verdict) {
	var values stats.Float64Data
	for _, v := range verdicts {
		ans, ok := v.Responses[q.ID]
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(ans), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		values = append(values, f)
	}
	res.TotalResponses = len(values)
	if len(values) == 0 {
		return
	}

	mean, _ := values.Mean()
	median, _ := values.Median()
	min, _ := values.Min()
	max, _ := values.Max()
	std, _ := values.StandardDeviationPopulation()

	res.Numeric = &NumericSummary{
		Count:  len(values),
		Mean:   round2(mean),
		Median: round2(median),
		Mode:   firstMode(values),
		Min:    min,
		Max:    max,
		Range:  max - min,
		StdDev: round2(std),
	}
}

// firstMode returns the most frequent value, preferring the one seen first on ties
func firstMode(values []float64) float64 {
	counts := map[float64]int{}
	best := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > best {
			best = counts[v]
		}
	}
	for _, v := range values {
		if counts[v] == best {
			return v
		}
	}
	return values[0]
}

func aggregateText(res *QuestionResult, q models.JuryChargeQuestion, verdicts []models.Verdict) {
	res.TextResponses = []TextAnswer{}
	for _, v := range verdicts {
		ans, ok := v.Responses[q.ID]
		if !ok || strings.TrimSpace(ans) == "" {
			continue
		}
		res.TextResponses = append(res.TextResponses, TextAnswer{JurorID: v.JurorID.Hex(), JurorName: v.JurorName, Answer: ans})
	}
	res.TotalResponses = len(res.TextResponses)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
