package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/resumatch-api/internal/model"
)

const DefaultDailyLimit = 3

// Counter counts a user's analyses created at or after a point in time.
type Counter interface {
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
}

// QuotaTracker answers whether a user may run another analysis today.
// Days are UTC calendar days.
type QuotaTracker struct {
	counter Counter
	limit   int
}

func NewQuotaTracker(counter Counter, limit int) *QuotaTracker {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &QuotaTracker{counter: counter, limit: limit}
}

func (q *QuotaTracker) Limit() int { return q.limit }

// DayStart returns midnight UTC of the day containing t.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Check is read-only. If the count cannot be read the status is not allowed
// and the error is returned.
func (q *QuotaTracker) Check(ctx context.Context, userID string, asOf time.Time) (model.QuotaStatus, error) {
	start := DayStart(asOf)
	status := model.QuotaStatus{
		Limit:    q.limit,
		ResetsAt: start.Add(24 * time.Hour),
	}

	used, err := q.counter.CountSince(ctx, userID, start)
	if err != nil {
		return status, fmt.Errorf("counting analyses: %w", err)
	}

	status.Used = used
	status.Allowed = used < q.limit
	return status, nil
}
