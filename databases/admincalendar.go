package databases

// go generate: mockery --name CalendarDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/RupeshSangoju/quickverdicts-sub001/models"
)

const calendarName = "admin_calendar"

// CalendarDatabase contains the methods to use with the admin calendar database
type CalendarDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.BlockedSlot, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.BlockedSlot, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, doc models.BlockedSlot, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type calendarDatabase struct {
	collection[models.BlockedSlot]
}

// NewCalendarDatabase initializes a new instance of admin calendar database with the provided db connection
func NewCalendarDatabase(db DatabaseHelper) CalendarDatabase {
	return &calendarDatabase{collection[models.BlockedSlot]{db: db, name: calendarName}}
}
