package databases

// go generate: mockery --name LoginAttemptDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const loginAttemptName = "login_attempts"

// LoginAttemptDatabase contains the methods to use with the login attempt database
type LoginAttemptDatabase interface {
	InsertOne(ctx context.Context, doc models.LoginAttempt, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type loginAttemptDatabase struct {
	collection[models.LoginAttempt]
}

// NewLoginAttemptDatabase initializes a new instance of login attempt database with the provided db connection
func NewLoginAttemptDatabase(db DatabaseHelper) LoginAttemptDatabase {
	return &loginAttemptDatabase{collection[models.LoginAttempt]{db: db, name: loginAttemptName}}
}
