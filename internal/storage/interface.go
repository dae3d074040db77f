package storage

import (
	"context"

	"github.com/yourname/sleepcycle/internal"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *internal.User) error
	GetUserByUsername(ctx context.Context, username string) (*internal.User, error)
	GetUserByID(ctx context.Context, id string) (*internal.User, error)
	// UpdateUserAge refreshes the derived age after a login where the stored
	// value went stale.
	UpdateUserAge(ctx context.Context, id string, age int) error
}

// SleepLogRepository is the per-user log store. Every by-id operation is
// scoped to the owning user: an id that exists but belongs to someone else
// behaves exactly like a missing id.
type SleepLogRepository interface {
	ListSleepLogs(ctx context.Context, userID string) ([]internal.SleepLogEntry, error)
	CreateSleepLog(ctx context.Context, entry *internal.SleepLogEntry) error
	UpdateSleepLogHours(ctx context.Context, userID, id string, hours float64) (*internal.SleepLogEntry, error)
	DeleteSleepLog(ctx context.Context, userID, id string) error
	DeleteAllSleepLogs(ctx context.Context, userID string) (int64, error)
}
