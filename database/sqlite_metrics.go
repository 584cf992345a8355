package database

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// SQLite contention seen by any statement since start-up.
var sqliteErrors struct {
	busy   atomic.Uint64
	locked atomic.Uint64
}

// classifySQLiteError tells SQLITE_BUSY (another connection holds the
// write lock) from SQLITE_LOCKED (conflict inside the same connection).
// Cancellations are neither.
func classifySQLiteError(err error) (busy, locked bool) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false, false
	}

	msg := strings.ToLower(err.Error())
	busy = strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "busy timeout")
	locked = strings.Contains(msg, "sqlite_locked") ||
		strings.Contains(msg, "database table is locked")
	return busy, locked
}

func recordSQLiteError(err error) {
	busy, locked := classifySQLiteError(err)
	if busy {
		sqliteErrors.busy.Add(1)
	}
	if locked {
		sqliteErrors.locked.Add(1)
	}
}

// SQLiteBusyErrorsTotal returns the number of SQLITE_BUSY errors seen.
func SQLiteBusyErrorsTotal() uint64 {
	return sqliteErrors.busy.Load()
}

// SQLiteLockedErrorsTotal returns the number of SQLITE_LOCKED errors seen.
func SQLiteLockedErrorsTotal() uint64 {
	return sqliteErrors.locked.Load()
}

// Ping reports whether the database answers. Without a deadline on ctx it
// waits at most 200ms.
func Ping(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}

	sqlDB, err := db.DB()
	if err != nil {
		return false
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()
	}

	return sqlDB.PingContext(ctx) == nil
}
