package databases

// go generate: mockery --name VerdictDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const verdictName = "verdicts"

// VerdictDatabase contains the methods to use with the verdict database
type VerdictDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Verdict, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Verdict, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, doc models.Verdict, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type verdictDatabase struct {
	collection[models.Verdict]
}

// NewVerdictDatabase initializes a new instance of verdict database with the provided db connection
func NewVerdictDatabase(db DatabaseHelper) VerdictDatabase {
	return &verdictDatabase{collection[models.Verdict]{db: db, name: verdictName}}
}
