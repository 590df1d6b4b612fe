package databases

// go generate: mockery --name MeetingDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const meetingName = "trial_meetings"

// MeetingDatabase contains the methods to use with the trial meeting database
type MeetingDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.TrialMeeting, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TrialMeeting, error)
	InsertOne(ctx context.Context, doc models.TrialMeeting, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type meetingDatabase struct {
	collection[models.TrialMeeting]
}

// NewMeetingDatabase initializes a new instance of trial meeting database with the provided db connection
func NewMeetingDatabase(db DatabaseHelper) MeetingDatabase {
	return &meetingDatabase{collection[models.TrialMeeting]{db: db, name: meetingName}}
}
