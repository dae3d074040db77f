package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/yourname/sleepcycle/internal"
)

// FileStorage keeps everything in memory behind a RW mutex and flushes to
// JSON files through debounced background workers. Writes land in a temp
// file first and are renamed into place, so a crash mid-flush never leaves a
// half-written store.
type FileStorage struct {
	users          map[string]*internal.User          // id -> User
	usersByName    map[string]*internal.User          // username -> User
	sleepLogs      map[string]*internal.SleepLogEntry // id -> entry
	userSleepIndex map[string][]string                // userID -> entry ids in insertion order
	mu             sync.RWMutex
	usersFile      string
	sleepFile      string
	saveUsersChan  chan struct{}
	saveLogsChan   chan struct{}
	shutdownChan   chan struct{}
	saveDelay      time.Duration
	logger         internal.Logger
}

func NewFileStorage(usersFile, sleepFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		users:          make(map[string]*internal.User),
		usersByName:    make(map[string]*internal.User),
		sleepLogs:      make(map[string]*internal.SleepLogEntry),
		userSleepIndex: make(map[string][]string),
		usersFile:      usersFile,
		sleepFile:      sleepFile,
		saveUsersChan:  make(chan struct{}, 1),
		saveLogsChan:   make(chan struct{}, 1),
		shutdownChan:   make(chan struct{}),
		saveDelay:      500 * time.Millisecond,
		logger:         logger,
	}

	if err := s.loadUsers(); err != nil {
		logger.Errorf("storage: failed to load users: %v", err)
		return nil, err
	}
	if err := s.loadSleepLogs(); err != nil {
		logger.Errorf("storage: failed to load sleep logs: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveUsersChan, s.saveUsers, "users")
	go s.saveWorker(s.saveLogsChan, s.saveSleepLogs, "sleep logs")

	return s, nil
}

type fileUser struct {
	internal.User
	PasswordHash string `json:"password_hash"`
}

func (s *FileStorage) loadUsers() error {
	file, err := os.Open(s.usersFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var users []*fileUser
	if err := json.NewDecoder(file).Decode(&users); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fu := range users {
		u := fu.User
		u.PasswordHash = fu.PasswordHash
		s.users[u.ID] = &u
		s.usersByName[u.Username] = &u
	}
	return nil
}

func (s *FileStorage) loadSleepLogs() error {
	file, err := os.Open(s.sleepFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	var entries []*internal.SleepLogEntry
	if err := json.NewDecoder(file).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.sleepLogs[e.ID] = e
		s.userSleepIndex[e.UserID] = append(s.userSleepIndex[e.UserID], e.ID)
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveUsers() error {
	s.mu.RLock()
	users := make([]*fileUser, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, &fileUser{User: *u, PasswordHash: u.PasswordHash})
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.usersFile, users)
}

func (s *FileStorage) saveSleepLogs() error {
	s.mu.RLock()
	entries := make([]*internal.SleepLogEntry, 0, len(s.sleepLogs))
	for _, index := range s.userSleepIndex {
		for _, id := range index {
			entries = append(entries, s.sleepLogs[id])
		}
	}
	s.mu.RUnlock()

	return atomicWriteFileJSON(s.sleepFile, entries)
}

// saveWorker batches saves so a burst of writes hits the disk once.
func (s *FileStorage) saveWorker(signal chan struct{}, save func() error, what string) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", what, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func signalSave(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// --- UserRepository ---

func (s *FileStorage) CreateUser(_ context.Context, user *internal.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.usersByName[user.Username]; exists {
		return fmt.Errorf("%w: username %q is taken", internal.ErrInvalidInput, user.Username)
	}
	u := *user
	s.users[u.ID] = &u
	s.usersByName[u.Username] = &u
	signalSave(s.saveUsersChan)
	return nil
}

func (s *FileStorage) GetUserByUsername(_ context.Context, username string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByName[username]
	if !ok {
		return nil, fmt.Errorf("%w: user %q", internal.ErrNotFound, username)
	}
	copied := *u
	return &copied, nil
}

func (s *FileStorage) GetUserByID(_ context.Context, id string) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user id %q", internal.ErrNotFound, id)
	}
	copied := *u
	return &copied, nil
}

func (s *FileStorage) UpdateUserAge(_ context.Context, id string, age int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: user id %q", internal.ErrNotFound, id)
	}
	u.Age = age
	signalSave(s.saveUsersChan)
	return nil
}

// --- SleepLogRepository ---

func (s *FileStorage) ListSleepLogs(_ context.Context, userID string) ([]internal.SleepLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := s.userSleepIndex[userID]
	entries := make([]internal.SleepLogEntry, 0, len(index))
	for _, id := range index {
		entries = append(entries, *s.sleepLogs[id])
	}
	return entries, nil
}

func (s *FileStorage) CreateSleepLog(_ context.Context, entry *internal.SleepLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := *entry
	s.sleepLogs[e.ID] = &e
	s.userSleepIndex[e.UserID] = append(s.userSleepIndex[e.UserID], e.ID)
	signalSave(s.saveLogsChan)
	return nil
}

func (s *FileStorage) UpdateSleepLogHours(_ context.Context, userID, id string, hours float64) (*internal.SleepLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sleepLogs[id]
	if !ok || e.UserID != userID {
		return nil, fmt.Errorf("%w: sleep log %q", internal.ErrNotFound, id)
	}
	e.Hours = hours
	signalSave(s.saveLogsChan)
	copied := *e
	return &copied, nil
}

func (s *FileStorage) DeleteSleepLog(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sleepLogs[id]
	if !ok || e.UserID != userID {
		return fmt.Errorf("%w: sleep log %q", internal.ErrNotFound, id)
	}
	delete(s.sleepLogs, id)

	index := s.userSleepIndex[userID]
	for i, entryID := range index {
		if entryID == id {
			s.userSleepIndex[userID] = append(index[:i], index[i+1:]...)
			break
		}
	}
	signalSave(s.saveLogsChan)
	return nil
}

func (s *FileStorage) DeleteAllSleepLogs(_ context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.userSleepIndex[userID]
	for _, id := range index {
		delete(s.sleepLogs, id)
	}
	delete(s.userSleepIndex, userID)
	signalSave(s.saveLogsChan)
	return int64(len(index)), nil
}

// Close stops the workers and flushes pending data synchronously.
func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	if err := s.saveUsers(); err != nil {
		return err
	}
	return s.saveSleepLogs()
}

var _ UserRepository = (*FileStorage)(nil)
var _ SleepLogRepository = (*FileStorage)(nil)
