package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/models"
	"github.com/RupeshSangoju/quickverdicts-sub001/verdicts"
)

// VerdictService collects juror verdicts and aggregates them per question
type VerdictService struct {
	DB           databases.VerdictDatabase
	Cases        databases.CaseDatabase
	Applications databases.ApplicationDatabase
	Jurors       databases.JurorDatabase
	Events       *EventService
	Notifier     *NotificationService
}

// AggregatedResults is the verdict summary of a case
type AggregatedResults struct {
	CaseID         string                    `json:"caseId"`
	CaseTitle      string                    `json:"caseTitle"`
	TotalVerdicts  int                       `json:"totalVerdicts"`
	ApprovedJurors int                       `json:"approvedJurors"`
	Questions      []verdicts.QuestionResult `json:"questions"`
}

// jurorOnCase loads the case and checks that the juror holds an approved seat on it
func (s *VerdictService) jurorOnCase(ctx context.Context, caseID, jurorID primitive.ObjectID) (*models.Case, error) {
	c, err := s.Cases.FindOne(ctx, bson.M{"_id": caseID, "isDeleted": false})
	if err != nil {
		return nil, lookup(err, "case")
	}
	n, err := s.Applications.CountDocuments(ctx, bson.M{"caseId": caseID, "jurorId": jurorID, "status": models.ApplicationApproved})
	if err != nil {
		return nil, errors.Wrap(err, "failed to check juror seat")
	}
	if n == 0 {
		return nil, forbidden("juror is not on this case's jury")
	}
	if c.JuryChargeStatus != models.JuryChargeCompleted {
		return nil, conflict(CodeJuryChargeNotReleased, "the jury charge has not been released")
	}
	return c, nil
}

func (s *VerdictService) jurorName(ctx context.Context, jurorID primitive.ObjectID) string {
	if s.Jurors == nil {
		return ""
	}
	j, err := s.Jurors.FindOne(ctx, bson.M{"_id": jurorID})
	if err != nil {
		return ""
	}
	return j.Name
}

// SaveDraft stores answers without submitting them. A submitted verdict cannot go back to draft.
func (s *VerdictService) SaveDraft(ctx context.Context, caseID, jurorID primitive.ObjectID, responses map[string]string) (*models.Verdict, error) {
	if _, err := s.jurorOnCase(ctx, caseID, jurorID); err != nil {
		return nil, err
	}
	return s.upsert(ctx, caseID, jurorID, responses, false)
}

// SubmitVerdict records the juror's final answers once the jury charge is released
func (s *VerdictService) SubmitVerdict(ctx context.Context, caseID, jurorID primitive.ObjectID, responses map[string]string) (*models.Verdict, error) {
	c, err := s.jurorOnCase(ctx, caseID, jurorID)
	if err != nil {
		return nil, err
	}

	existing, err := s.DB.FindOne(ctx, bson.M{"caseId": caseID, "jurorId": jurorID})
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.Wrap(err, "failed to load verdict")
	}
	if existing != nil && existing.IsSubmitted {
		return nil, conflict(CodeVerdictAlreadySubmitted, "verdict already submitted for this case")
	}
	if msgs := validateAnswers(c.JuryChargeQuestions, responses); len(msgs) > 0 {
		return nil, invalid(msgs...)
	}

	v, err := s.upsert(ctx, caseID, jurorID, responses, true)
	if err != nil {
		return nil, err
	}
	s.Events.Record(ctx, caseID, models.EventVerdictSubmitted, "verdict submitted",
		&Actor{ID: jurorID, Role: models.UserTypeJuror}, nil)
	s.Notifier.notifyQuietly(ctx, NotifyInput{
		UserID:   c.AttorneyID,
		UserType: models.UserTypeAttorney,
		CaseID:   ptrID(caseID),
		Type:     models.NotificationVerdictSubmitted,
		Title:    "Verdict submitted",
		Message:  fmt.Sprintf("A juror submitted a verdict for %q", c.Title),
	})
	return v, nil
}

// upsert writes the verdict only while it is still a draft. If a submitted verdict exists the
// filter misses and the upsert collides with the (caseId, jurorId) unique index.
func (s *VerdictService) upsert(ctx context.Context, caseID, jurorID primitive.ObjectID, responses map[string]string, submit bool) (*models.Verdict, error) {
	if responses == nil {
		responses = map[string]string{}
	}
	t := now()
	v := models.Verdict{
		CaseID:      caseID,
		JurorID:     jurorID,
		JurorName:   s.jurorName(ctx, jurorID),
		Responses:   responses,
		IsSubmitted: submit,
		UpdatedAt:   t,
	}
	set := bson.M{"responses": responses, "jurorName": v.JurorName, "isSubmitted": submit, "updatedAt": t}
	if submit {
		set["submittedAt"] = t
		v.SubmittedAt = ptrTime(t)
	}
	res, err := s.DB.UpdateOne(ctx,
		bson.M{"caseId": caseID, "jurorId": jurorID, "isSubmitted": false},
		bson.M{"$set": set, "$setOnInsert": bson.M{"createdAt": t}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, conflict(CodeVerdictAlreadySubmitted, "verdict already submitted for this case")
		}
		return nil, errors.Wrap(err, "failed to save verdict")
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		v.ID = id
		v.CreatedAt = t
	}
	return &v, nil
}

// validateAnswers checks required questions are answered and answers fit their question type
func validateAnswers(qs []models.JuryChargeQuestion, responses map[string]string) []string {
	var msgs []string
	for _, q := range qs {
		ans := strings.TrimSpace(responses[q.ID])
		if ans == "" {
			if q.Required {
				msgs = append(msgs, fmt.Sprintf("question %q requires an answer", q.Text))
			}
			continue
		}
		switch q.Type {
		case models.QuestionYesNo:
			if ans != "Yes" && ans != "No" {
				msgs = append(msgs, fmt.Sprintf("question %q must be answered Yes or No", q.Text))
			}
		case models.QuestionMultipleChoice:
			ok := false
			for _, o := range q.Options {
				if o == ans {
					ok = true
					break
				}
			}
			if !ok {
				msgs = append(msgs, fmt.Sprintf("question %q has no option %q", q.Text, ans))
			}
		case models.QuestionNumeric:
			if _, err := strconv.ParseFloat(ans, 64); err != nil {
				msgs = append(msgs, fmt.Sprintf("question %q needs a number", q.Text))
			}
		}
	}
	return msgs
}

// GetMyVerdict returns the juror's verdict for a case, draft or submitted
func (s *VerdictService) GetMyVerdict(ctx context.Context, caseID, jurorID primitive.ObjectID) (*models.Verdict, error) {
	v, err := s.DB.FindOne(ctx, bson.M{"caseId": caseID, "jurorId": jurorID})
	if err != nil {
		return nil, lookup(err, "verdict")
	}
	return v, nil
}

func (s *VerdictService) reviewableCase(ctx context.Context, caseID primitive.ObjectID, actor Actor) (*models.Case, error) {
	c, err := s.Cases.FindOne(ctx, bson.M{"_id": caseID})
	if err != nil {
		return nil, lookup(err, "case")
	}
	if !actor.IsAdmin() && !(actor.Role == models.UserTypeAttorney && c.AttorneyID == actor.ID) {
		return nil, forbidden("only admins or the case attorney see verdicts")
	}
	if c.IsDeleted && !actor.IsAdmin() {
		return nil, notFound("case")
	}
	return c, nil
}

// GetVerdictsForCase lists submitted verdicts
func (s *VerdictService) GetVerdictsForCase(ctx context.Context, caseID primitive.ObjectID, actor Actor) ([]models.Verdict, error) {
	if _, err := s.reviewableCase(ctx, caseID, actor); err != nil {
		return nil, err
	}
	vs, err := s.DB.Find(ctx, bson.M{"caseId": caseID, "isSubmitted": true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list verdicts")
	}
	return nonNil(vs), nil
}

// GetAggregatedResults aggregates the submitted verdicts against the case's jury charge
func (s *VerdictService) GetAggregatedResults(ctx context.Context, caseID primitive.ObjectID, actor Actor) (*AggregatedResults, error) {
	c, err := s.reviewableCase(ctx, caseID, actor)
	if err != nil {
		return nil, err
	}
	vs, err := s.DB.Find(ctx, bson.M{"caseId": caseID, "isSubmitted": true})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list verdicts")
	}
	return &AggregatedResults{
		CaseID:         c.ID.Hex(),
		CaseTitle:      c.Title,
		TotalVerdicts:  len(vs),
		ApprovedJurors: c.ApprovedJurorCount,
		Questions:      verdicts.Aggregate(c.JuryChargeQuestions, vs),
	}, nil
}
