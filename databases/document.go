package databases

// go generate: mockery --name DocumentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const documentName = "case_documents"

// DocumentDatabase contains the methods to use with the case document database
type DocumentDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.CaseDocument, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.CaseDocument, error)
	InsertOne(ctx context.Context, doc models.CaseDocument, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type documentDatabase struct {
	collection[models.CaseDocument]
}

// NewDocumentDatabase initializes a new instance of case document database with the provided db connection
func NewDocumentDatabase(db DatabaseHelper) DocumentDatabase {
	return &documentDatabase{collection[models.CaseDocument]{db: db, name: documentName}}
}
