package databases

// go generate: mockery --name AttorneyRescheduleDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const attorneyRescheduleName = "attorney_reschedule_requests"

// AttorneyRescheduleDatabase contains the methods to use with the attorney reschedule request database
type AttorneyRescheduleDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AttorneyRescheduleRequest, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.AttorneyRescheduleRequest, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, doc models.AttorneyRescheduleRequest, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type attorneyRescheduleDatabase struct {
	collection[models.AttorneyRescheduleRequest]
}

// NewAttorneyRescheduleDatabase initializes a new instance of attorney reschedule request database with the provided db connection
func NewAttorneyRescheduleDatabase(db DatabaseHelper) AttorneyRescheduleDatabase {
	return &attorneyRescheduleDatabase{collection[models.AttorneyRescheduleRequest]{db: db, name: attorneyRescheduleName}}
}
