package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/yourname/sleepcycle/internal"
)

// bcrypt truncates beyond 72 bytes, so longer passwords are rejected outright.
const maxPasswordLength = 72

var digitRE = regexp.MustCompile(`[0-9]`)

var defaultDenyList = []string{
	"password",
	"password1",
	"password123",
	"12345678",
	"123456789",
	"1234567890",
	"qwerty123",
	"letmein123",
	"iloveyou1",
	"sunshine1",
}

// StrengthPolicy validates new passwords: shape rules first, then the
// deny-list, then the external breach corpus. A breach-service failure is
// fail-open by default so registration never hinges on a third party being
// up; FailClosed flips that tradeoff.
type StrengthPolicy struct {
	denyList   map[string]struct{}
	breach     BreachChecker
	failClosed bool
	logger     internal.Logger
}

func NewStrengthPolicy(denyList []string, breach BreachChecker, failClosed bool, logger internal.Logger) *StrengthPolicy {
	if len(denyList) == 0 {
		denyList = defaultDenyList
	}
	deny := make(map[string]struct{}, len(denyList))
	for _, p := range denyList {
		deny[strings.ToLower(p)] = struct{}{}
	}
	return &StrengthPolicy{denyList: deny, breach: breach, failClosed: failClosed, logger: logger}
}

func (p *StrengthPolicy) ValidateStrength(ctx context.Context, password string) error {
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d characters", internal.ErrInvalidInput, maxPasswordLength)
	}
	if len(password) < 8 || !digitRE.MatchString(password) {
		return fmt.Errorf("%w: password must be at least 8 characters and contain a digit", internal.ErrInvalidInput)
	}
	if _, denied := p.denyList[strings.ToLower(password)]; denied {
		return fmt.Errorf("%w: password is too common", internal.ErrInvalidInput)
	}
	if p.breach == nil {
		return nil
	}

	breached, err := p.breach.IsBreached(ctx, password)
	if err != nil {
		if p.failClosed {
			p.logger.Warnf("breach lookup failed, rejecting password (fail-closed): %v", err)
			return fmt.Errorf("%w: password could not be verified against known breaches", internal.ErrInvalidInput)
		}
		p.logger.Warnf("breach lookup failed, accepting password (fail-open): %v", err)
		return nil
	}
	if breached {
		return fmt.Errorf("%w: password appears in known data breaches", internal.ErrInvalidInput)
	}
	return nil
}
