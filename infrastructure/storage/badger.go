package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	maxConflictRetries = 5
	conflictBackoff    = 2 * time.Millisecond
)

// OpenBadger opens the on-disk database. Debug level enables Badger's own debug logs.
func OpenBadger(path string, debug bool) (*badger.DB, error) {
	options := badger.DefaultOptions(path)
	if debug {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.WARNING)
	}
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("badger open %s: %w", path, err)
	}
	return db, nil
}

// OpenInMemory opens a throwaway database, used by tests and by the server when no path is configured.
func OpenInMemory() (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

// update runs fn in a read-write transaction and replays it when Badger reports a
// conflict with a concurrent transaction. The replay re-reads state, so a caller
// losing a race against a delete observes the deletion.
func update(db *badger.DB, log *slog.Logger, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		log.Debug("Transaction conflict, retrying", "attempt", attempt+1)
		time.Sleep(conflictBackoff * time.Duration(attempt+1))
	}
	return err
}

// timestampKey pads nanoseconds to 19 digits so lexicographical order is chronological.
func timestampKey(t time.Time) string {
	return fmt.Sprintf("%019d", t.UnixNano())
}
