package auth

import (
	"bufio"
	"context"
	"crypto/sha1"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yourname/sleepcycle/internal"
)

const (
	pwnedRangeURL       = "https://api.pwnedpasswords.com/range/%s"
	breachRequestBudget = 5 * time.Second
)

// BreachChecker answers whether a password appears in a known breach corpus.
type BreachChecker interface {
	IsBreached(ctx context.Context, password string) (bool, error)
}

// PwnedClient queries the Pwned Passwords range API with k-anonymity: only
// the first 5 hex characters of the password's SHA-1 digest leave the
// process; the returned suffix list is matched locally.
type PwnedClient struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     internal.Logger
}

func NewPwnedClient(userAgent string, logger internal.Logger) *PwnedClient {
	return &PwnedClient{
		httpClient: &http.Client{Timeout: breachRequestBudget},
		baseURL:    pwnedRangeURL,
		userAgent:  userAgent,
		logger:     logger,
	}
}

func (c *PwnedClient) IsBreached(ctx context.Context, password string) (bool, error) {
	if password == "" {
		return false, fmt.Errorf("password cannot be empty")
	}

	sum := sha1.Sum([]byte(password))
	digest := fmt.Sprintf("%X", sum)
	prefix, suffix := digest[:5], digest[5:]

	ctx, cancel := context.WithTimeout(ctx, breachRequestBudget)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(c.baseURL, prefix), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create breach lookup request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("breach lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("breach lookup returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			c.logger.Warnf("unexpected line from breach range API: %q", line)
			continue
		}
		if strings.EqualFold(parts[0], suffix) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("error reading breach lookup response: %w", err)
	}
	return false, nil
}

var _ BreachChecker = (*PwnedClient)(nil)
