package databases

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	notificationArchiveName = "notifications_archive"
	eventArchiveName        = "events_archive"
)

// ArchiveDatabase writes rows copied out of a live collection into its shadow collection.
// Inserts are unordered so one row already present does not stop the rest of the batch.
type ArchiveDatabase interface {
	InsertMany(ctx context.Context, docs []interface{}) (int, error)
}

type archiveDatabase struct {
	db   DatabaseHelper
	name string
}

// NewNotificationArchiveDatabase returns the shadow collection for notifications
func NewNotificationArchiveDatabase(db DatabaseHelper) ArchiveDatabase {
	return &archiveDatabase{db: db, name: notificationArchiveName}
}

// NewEventArchiveDatabase returns the shadow collection for case events
func NewEventArchiveDatabase(db DatabaseHelper) ArchiveDatabase {
	return &archiveDatabase{db: db, name: eventArchiveName}
}

func (a *archiveDatabase) InsertMany(ctx context.Context, docs []interface{}) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	return a.db.Collection(a.name).InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
}
