package databases

// go generate: mockery --name RecordingDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const recordingName = "trial_recordings"

// RecordingDatabase contains the methods to use with the trial recording database
type RecordingDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.TrialRecording, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TrialRecording, error)
	InsertOne(ctx context.Context, doc models.TrialRecording, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type recordingDatabase struct {
	collection[models.TrialRecording]
}

// NewRecordingDatabase initializes a new instance of trial recording database with the provided db connection
func NewRecordingDatabase(db DatabaseHelper) RecordingDatabase {
	return &recordingDatabase{collection[models.TrialRecording]{db: db, name: recordingName}}
}
