package databases

// go generate: mockery --name ApplicationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const applicationName = "juror_applications"

// ApplicationDatabase contains the methods to use with the juror application database
type ApplicationDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.JurorApplication, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.JurorApplication, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, doc models.JurorApplication, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type applicationDatabase struct {
	collection[models.JurorApplication]
}

// NewApplicationDatabase initializes a new instance of juror application database with the provided db connection
func NewApplicationDatabase(db DatabaseHelper) ApplicationDatabase {
	return &applicationDatabase{collection[models.JurorApplication]{db: db, name: applicationName}}
}
