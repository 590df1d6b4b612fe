package databases

// go generate: mockery --name CaseRescheduleDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const caseRescheduleName = "case_reschedule_requests"

// CaseRescheduleDatabase contains the methods to use with the case reschedule request database
type CaseRescheduleDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseRescheduleRequest, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseRescheduleRequest, error)
	InsertOne(ctx context.Context, doc models.CaseRescheduleRequest, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type caseRescheduleDatabase struct {
	collection[models.CaseRescheduleRequest]
}

// NewCaseRescheduleDatabase initializes a new instance of case reschedule request database with the provided db connection
func NewCaseRescheduleDatabase(db DatabaseHelper) CaseRescheduleDatabase {
	return &caseRescheduleDatabase{collection[models.CaseRescheduleRequest]{db: db, name: caseRescheduleName}}
}
