package databases

// go generate: mockery --name PasswordResetDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const passwordResetName = "password_resets"

// PasswordResetDatabase contains the methods to use with the password reset database
type PasswordResetDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.PasswordReset, error)
	InsertOne(ctx context.Context, doc models.PasswordReset, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error)
}

type passwordResetDatabase struct {
	collection[models.PasswordReset]
}

// NewPasswordResetDatabase initializes a new instance of password reset database with the provided db connection
func NewPasswordResetDatabase(db DatabaseHelper) PasswordResetDatabase {
	return &passwordResetDatabase{collection[models.PasswordReset]{db: db, name: passwordResetName}}
}
