package databases

// go generate: mockery --name AttorneyDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const attorneyName = "attorneys"

// AttorneyDatabase contains the methods to use with the attorney database
type AttorneyDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Attorney, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Attorney, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, doc models.Attorney, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type attorneyDatabase struct {
	collection[models.Attorney]
}

// NewAttorneyDatabase initializes a new instance of attorney database with the provided db connection
func NewAttorneyDatabase(db DatabaseHelper) AttorneyDatabase {
	return &attorneyDatabase{collection[models.Attorney]{db: db, name: attorneyName}}
}
