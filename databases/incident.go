package databases

// go generate: mockery --name IncidentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const incidentName = "trial_incidents"

// IncidentDatabase contains the methods to use with the trial incident database
type IncidentDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.TrialIncident, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.TrialIncident, error)
	InsertOne(ctx context.Context, doc models.TrialIncident, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type incidentDatabase struct {
	collection[models.TrialIncident]
}

// NewIncidentDatabase initializes a new instance of trial incident database with the provided db connection
func NewIncidentDatabase(db DatabaseHelper) IncidentDatabase {
	return &incidentDatabase{collection[models.TrialIncident]{db: db, name: incidentName}}
}
