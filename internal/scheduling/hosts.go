package scheduling

import (
	"context"
	"time"

	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/pkg/errors"
)

// conflictWindow is the ± interval around a proposed start inside which a
// host counts as busy. Wider than the 60-minute session on purpose, to
// absorb scheduling skew and back-to-back bookings.
const conflictWindow = 45 * time.Minute

func newHostAllocator(hosts []string, interviews models.InterviewsRepo) *hostAllocator {
	pool := make([]string, len(hosts))
	copy(pool, hosts)

	return &hostAllocator{
		pool:       pool,
		interviews: interviews,
	}
}

// hostAllocator picks the first host with no commitment around the
// requested time. The pool is an injected immutable list; order is the
// allocation order, there is no load balancing.
type hostAllocator struct {
	pool       []string
	interviews models.InterviewsRepo
}

// Select returns a free host or ErrNoHostAvailable. The check is not atomic
// against concurrent selections: two near-simultaneous calls can pick the
// same host. The wide window shrinks that race, it does not close it.
func (a *hostAllocator) Select(ctx context.Context, start time.Time) (string, error) {
	from := start.Add(-conflictWindow).UnixMilli()
	to := start.Add(conflictWindow).UnixMilli()

	for _, host := range a.pool {
		busy, err := a.interviews.FindByHost(ctx, host, from, to)
		if err != nil {
			return "", errors.WrapFail(err, "query host commitments")
		}

		if len(busy) == 0 {
			return host, nil
		}
	}

	return "", ErrNoHostAvailable
}
