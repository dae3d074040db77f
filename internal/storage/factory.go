package storage

import "github.com/yourname/sleepcycle/internal"

// Store is what a backend must provide to serve the whole application.
type Store interface {
	UserRepository
	SleepLogRepository
	Close() error
}

func NewFileStore(usersFile, sleepFile string, logger internal.Logger) (Store, error) {
	return NewFileStorage(usersFile, sleepFile, logger)
}

func NewPostgresStore(dsn, migrationsDir string, logger internal.Logger) (Store, error) {
	return NewPostgresStorage(dsn, migrationsDir, logger)
}
