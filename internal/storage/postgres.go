package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yourname/sleepcycle/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

// NewPostgresStorage connects a pgx pool and applies pending migrations from
// migrationsDir (empty skips migration, for tests against a prepared schema).
func NewPostgresStorage(dsn, migrationsDir string, logger internal.Logger) (*PostgresStorage, error) {
	if migrationsDir != "" {
		m, err := migrate.New("file://"+migrationsDir, dsn)
		if err != nil {
			logger.Errorf("failed to init migrations: %v", err)
			return nil, err
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Errorf("failed to apply migrations: %v", err)
			return nil, err
		}
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- UserRepository ---

func (p *PostgresStorage) CreateUser(ctx context.Context, user *internal.User) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, username, password_hash, dob, age, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Username, user.PasswordHash, user.DOB, user.Age, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: username %q is taken", internal.ErrInvalidInput, user.Username)
		}
		p.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetUserByUsername(ctx context.Context, username string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, dob, age, created_at FROM users WHERE username = $1`, username)
	return scanUser(row, username)
}

func (p *PostgresStorage) GetUserByID(ctx context.Context, id string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, dob, age, created_at FROM users WHERE id = $1`, id)
	return scanUser(row, id)
}

func scanUser(row pgx.Row, key string) (*internal.User, error) {
	var u internal.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.DOB, &u.Age, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %q", internal.ErrNotFound, key)
		}
		return nil, err
	}
	return &u, nil
}

func (p *PostgresStorage) UpdateUserAge(ctx context.Context, id string, age int) error {
	tag, err := p.pool.Exec(ctx, `UPDATE users SET age = $1 WHERE id = $2`, age, id)
	if err != nil {
		p.logger.Errorf("failed to update user age: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: user id %q", internal.ErrNotFound, id)
	}
	return nil
}

// --- SleepLogRepository ---

func (p *PostgresStorage) ListSleepLogs(ctx context.Context, userID string) ([]internal.SleepLogEntry, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, date, hours, selected_time, mode, created_at FROM sleep_logs WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		p.logger.Errorf("failed to query sleep logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	entries := []internal.SleepLogEntry{}
	for rows.Next() {
		var e internal.SleepLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Hours, &e.SelectedTime, &e.Mode, &e.CreatedAt); err != nil {
			p.logger.Errorf("failed to scan sleep log: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *PostgresStorage) CreateSleepLog(ctx context.Context, entry *internal.SleepLogEntry) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO sleep_logs (id, user_id, date, hours, selected_time, mode, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.UserID, entry.Date, entry.Hours, entry.SelectedTime, entry.Mode, entry.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert sleep log: %v", err)
		return err
	}
	return nil
}

// Ownership rides in the WHERE clause: an id owned by someone else updates
// zero rows and reports NotFound.
func (p *PostgresStorage) UpdateSleepLogHours(ctx context.Context, userID, id string, hours float64) (*internal.SleepLogEntry, error) {
	row := p.pool.QueryRow(ctx,
		`UPDATE sleep_logs SET hours = $1 WHERE id = $2 AND user_id = $3
		 RETURNING id, user_id, date, hours, selected_time, mode, created_at`,
		hours, id, userID)
	var e internal.SleepLogEntry
	if err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Hours, &e.SelectedTime, &e.Mode, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: sleep log %q", internal.ErrNotFound, id)
		}
		p.logger.Errorf("failed to update sleep log: %v", err)
		return nil, err
	}
	return &e, nil
}

func (p *PostgresStorage) DeleteSleepLog(ctx context.Context, userID, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sleep_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		p.logger.Errorf("failed to delete sleep log: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: sleep log %q", internal.ErrNotFound, id)
	}
	return nil
}

func (p *PostgresStorage) DeleteAllSleepLogs(ctx context.Context, userID string) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM sleep_logs WHERE user_id = $1`, userID)
	if err != nil {
		p.logger.Errorf("failed to clear sleep logs: %v", err)
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

// --- Compile-time assertions ---
var _ UserRepository = (*PostgresStorage)(nil)
var _ SleepLogRepository = (*PostgresStorage)(nil)
