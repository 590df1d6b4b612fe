package testhelpers

import (
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases/mocks"
)

// Collections are the names every service reads or writes
var Collections = []string{
	"cases", "juror_applications", "attorneys", "jurors", "admins", "admin_calendar",
	"case_reschedule_requests", "attorney_reschedule_requests", "events", "notifications",
	"verdicts", "trial_meetings", "trial_participants", "trial_incidents", "trial_recordings",
	"payments", "case_documents", "login_attempts", "password_resets",
	"notifications_archive", "events_archive", "scheduler_locks",
}

// MockDB is a DatabaseHelper mock with one CollectionHelper mock per collection
type MockDB struct {
	*mocks.DatabaseHelper
	colls map[string]*mocks.CollectionHelper
}

// NewMockDB returns a database whose collections accept nothing until stubbed, apart from
// audit event inserts which are allowed by default
func NewMockDB() *MockDB {
	db := &MockDB{DatabaseHelper: &mocks.DatabaseHelper{}, colls: map[string]*mocks.CollectionHelper{}}
	for _, name := range Collections {
		c := &mocks.CollectionHelper{}
		db.colls[name] = c
		db.DatabaseHelper.On("Collection", name).Return(c)
	}
	db.C("events").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	return db
}

// C returns the mock behind a collection
func (db *MockDB) C(name string) *mocks.CollectionHelper {
	return db.colls[name]
}

// Found is a FindOne result decoding v
func Found[T any](v T) *mocks.SingleResultHelper {
	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		p := args.Get(0).(**T)
		**p = v
	}).Return(nil)
	return sr
}

// Missing is a FindOne result with no document
func Missing() *mocks.SingleResultHelper {
	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	return sr
}

// CursorOf is a Find result holding items
func CursorOf[T any](items []T) *mocks.CursorHelper {
	cur := &mocks.CursorHelper{}
	cur.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		if out, ok := args.Get(1).(*[]T); ok {
			*out = items
		}
	}).Return(nil)
	cur.On("Close", mock.Anything).Return(nil)
	return cur
}
