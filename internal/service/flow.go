package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourname/sleepcycle/internal"
	"github.com/yourname/sleepcycle/internal/sleep"
	"github.com/yourname/sleepcycle/internal/storage"
)

type FlowState string

const (
	StateIdle      FlowState = "idle"
	StateComputed  FlowState = "computed"
	StateConfirmed FlowState = "confirmed"
)

// Flow is the recommendation lifecycle: compute candidates, pick one, confirm
// it into a persisted log entry. It replaces a pile of independent UI flags
// with one explicit state machine; every failure on the way to Confirmed
// reports an error and leaves the flow in Computed so the user can retry.
type Flow struct {
	state      FlowState
	mode       internal.Mode
	anchor     string
	fallMin    int
	toddlerMin float64
	candidates []string
	selection  string
	now        func() time.Time
}

func NewFlow(mode internal.Mode, toddlerMin float64) *Flow {
	return &Flow{state: StateIdle, mode: mode, toddlerMin: toddlerMin, now: time.Now}
}

func (f *Flow) State() FlowState     { return f.state }
func (f *Flow) Candidates() []string { return f.candidates }

// SetMode switches bedtime <-> alarm. Any change of mode invalidates the
// computed candidates and resets the flow to Idle.
func (f *Flow) SetMode(mode internal.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", internal.ErrInvalidInput, mode)
	}
	if mode != f.mode {
		f.mode = mode
		f.state = StateIdle
		f.candidates = nil
		f.selection = ""
	}
	return nil
}

// Compute runs the sleep math and moves the flow to Computed, clearing any
// prior selection. Invalid input leaves the flow untouched.
func (f *Flow) Compute(anchor string, fallAsleepMin, age int) (*Recommendation, error) {
	rec, err := ComputeRecommendations(&RecommendRequest{
		Mode:              string(f.mode),
		AnchorTime:        anchor,
		FallAsleepMinutes: fallAsleepMin,
		Age:               age,
	}, f.toddlerMin)
	if err != nil {
		return nil, err
	}
	f.anchor = anchor
	f.fallMin = fallAsleepMin
	f.candidates = rec.Times
	f.selection = ""
	f.state = StateComputed
	return rec, nil
}

// Select records the user's pick. It must be one of the computed candidates.
func (f *Flow) Select(t string) error {
	if f.state != StateComputed {
		return fmt.Errorf("%w: nothing has been computed yet", internal.ErrInvalidInput)
	}
	for _, c := range f.candidates {
		if c == t {
			f.selection = t
			return nil
		}
	}
	return fmt.Errorf("%w: %q is not one of the recommended times", internal.ErrInvalidInput, t)
}

// Confirm turns the selection into a persisted log entry. It requires an
// authenticated session and a selection; the actual slept hours are
// recomputed here rather than trusted from the client. On any failure the
// flow stays in Computed and nothing is written.
func (f *Flow) Confirm(ctx context.Context, repo storage.SleepLogRepository, session *internal.SessionClaims) (*internal.SleepLogEntry, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: confirmation requires an authenticated session", internal.ErrUnauthorized)
	}
	if f.state != StateComputed {
		return nil, fmt.Errorf("%w: nothing to confirm", internal.ErrInvalidInput)
	}
	if f.selection == "" {
		return nil, fmt.Errorf("%w: select a time before confirming", internal.ErrInvalidInput)
	}

	hours, err := sleep.DurationHours(f.mode, f.anchor, f.fallMin, f.selection)
	if err != nil {
		return nil, err
	}

	now := f.now()
	entry := &internal.SleepLogEntry{
		ID:           uuid.NewString(),
		UserID:       session.UserID,
		Date:         now.Format("01/02/2006"),
		Hours:        hours,
		SelectedTime: f.selection,
		Mode:         f.mode,
		CreatedAt:    now,
	}
	if err := repo.CreateSleepLog(ctx, entry); err != nil {
		return nil, err
	}
	f.state = StateConfirmed
	return entry, nil
}
