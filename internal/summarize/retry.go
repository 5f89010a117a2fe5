package summarize

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Retry budget for one summarization: 3 attempts total, exponential backoff
// clamped to [0.5s, 4s]. Only server/transport failures are retried;
// authentication and quota failures are terminal on first sight.
const (
	maxAttempts    = 3
	backoffBase    = 600 * time.Millisecond
	backoffMin     = 500 * time.Millisecond
	backoffMax     = 4 * time.Second
)

func completeWithRetry(ctx context.Context, b backend, system, user string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoffDelay(attempt - 1)):
			}
		}

		text, err := b.complete(ctx, system, user)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable(err) {
			return "", err
		}
	}
	return "", lastErr
}

func backoffDelay(n int) time.Duration {
	d := backoffBase << uint(n)
	if d < backoffMin {
		d = backoffMin
	}
	if d > backoffMax {
		d = backoffMax
	}
	return d
}

// retryable classifies an attempt failure. HTTP statuses below 500 carry a
// definitive answer from the service; everything else is treated as a
// transient server/transport fault.
func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500
	}
	msg := err.Error()
	if strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "429") || strings.Contains(msg, "insufficient_quota") {
		return false
	}
	return true
}
