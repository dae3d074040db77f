package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourname/sleepcycle/internal"
	"github.com/yourname/sleepcycle/internal/storage"
)

// CreateLogRequest is the direct log-entry form: the client supplies the
// slept hours it already computed. The confirm flow is the stricter path
// that recomputes them server-side.
type CreateLogRequest struct {
	Date         string  `json:"date" validate:"required"`
	Hours        float64 `json:"hours" validate:"required,gt=0"`
	SelectedTime string  `json:"selectedTime" validate:"required"`
	Mode         string  `json:"mode" validate:"required,oneof=bedtime alarm"`
}

type UpdateLogRequest struct {
	Hours float64 `json:"hours" validate:"required,gt=0"`
}

func ValidateCreateLogRequest(req *CreateLogRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrInvalidInput, err)
	}
	return nil
}

func ValidateUpdateLogRequest(req *UpdateLogRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", internal.ErrInvalidInput, err)
	}
	return nil
}

func CreateSleepLog(ctx context.Context, repo storage.SleepLogRepository, session *internal.SessionClaims, req *CreateLogRequest) (*internal.SleepLogEntry, error) {
	if err := ValidateCreateLogRequest(req); err != nil {
		return nil, err
	}
	entry := &internal.SleepLogEntry{
		ID:           uuid.NewString(),
		UserID:       session.UserID,
		Date:         req.Date,
		Hours:        req.Hours,
		SelectedTime: req.SelectedTime,
		Mode:         internal.Mode(req.Mode),
		CreatedAt:    time.Now(),
	}
	if err := repo.CreateSleepLog(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}
