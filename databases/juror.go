package databases

// go generate: mockery --name JurorDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const jurorName = "jurors"

// JurorDatabase contains the methods to use with the juror database
type JurorDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Juror, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Juror, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, doc models.Juror, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type jurorDatabase struct {
	collection[models.Juror]
}

// NewJurorDatabase initializes a new instance of juror database with the provided db connection
func NewJurorDatabase(db DatabaseHelper) JurorDatabase {
	return &jurorDatabase{collection[models.Juror]{db: db, name: jurorName}}
}
