package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/RupeshSangoju/quickverdicts-sub001/databases"
	"github.com/RupeshSangoju/quickverdicts-sub001/databases/mocks"
)

var collectionNames = []string{
	"cases", "juror_applications", "attorneys", "jurors", "admins", "admin_calendar",
	"case_reschedule_requests", "attorney_reschedule_requests", "events", "notifications",
	"verdicts", "trial_meetings", "trial_participants", "trial_incidents", "trial_recordings",
	"payments", "case_documents", "login_attempts", "password_resets",
	"notifications_archive", "events_archive",
}

// harness wires every service over mocked collections
type harness struct {
	svc   *Services
	colls map[string]*mocks.CollectionHelper
}

func newHarness(t *testing.T, deps Deps) *harness {
	t.Helper()
	db := &mocks.DatabaseHelper{}
	h := &harness{colls: map[string]*mocks.CollectionHelper{}}
	for _, name := range collectionNames {
		c := &mocks.CollectionHelper{}
		h.colls[name] = c
		db.On("Collection", name).Return(c)
	}
	// audit rows and notifications are side effects most tests do not assert on
	h.c("events").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	h.c("notifications").On("InsertOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()
	h.c("admins").On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cursorOf[struct{}](nil), nil).Maybe()

	h.svc = New(db, deps)
	return h
}

func (h *harness) c(name string) *mocks.CollectionHelper {
	return h.colls[name]
}

func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

// found is a FindOne result decoding v
func found[T any](v T) *mocks.SingleResultHelper {
	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Run(func(args mock.Arguments) {
		p := args.Get(0).(**T)
		**p = v
	}).Return(nil)
	return sr
}

// missing is a FindOne result with no document
func missing() *mocks.SingleResultHelper {
	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)
	return sr
}

// cursorOf is a Find result holding items
func cursorOf[T any](items []T) *mocks.CursorHelper {
	cur := &mocks.CursorHelper{}
	cur.On("All", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		if out, ok := args.Get(1).(*[]T); ok {
			*out = items
		}
	}).Return(nil)
	cur.On("Close", mock.Anything).Return(nil)
	return cur
}

func updated(matched int64) *mongo.UpdateResult {
	return &mongo.UpdateResult{MatchedCount: matched, ModifiedCount: matched}
}

func duplicateKey() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}}}
}

// filterWith matches a bson.M filter for which check holds
func filterWith(check func(bson.M) bool) interface{} {
	return mock.MatchedBy(check)
}

func firstPage() databases.Paginate {
	return databases.NewPaginate(20, 1)
}

var ctx = context.Background()
