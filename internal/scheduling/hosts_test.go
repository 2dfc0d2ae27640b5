package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mockline/scheduler/internal/repo/models"
)

func Test_hostAllocator_Select(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	type commitment struct {
		host   string
		offset time.Duration
		done   bool
	}

	type testcase struct {
		name        string
		pool        []string
		commitments []commitment

		wantHost string
		wantErr  error
	}

	tests := [...]testcase{
		{
			name:    "empty pool",
			pool:    nil,
			wantErr: ErrNoHostAvailable,
		},
		{
			name:     "all free picks first",
			pool:     []string{"h1", "h2"},
			wantHost: "h1",
		},
		{
			name: "first busy picks second",
			pool: []string{"h1", "h2"},
			commitments: []commitment{
				{host: "h1", offset: 0},
			},
			wantHost: "h2",
		},
		{
			name: "conflict at window edge",
			pool: []string{"h1"},
			commitments: []commitment{
				{host: "h1", offset: 45 * time.Minute},
			},
			wantErr: ErrNoHostAvailable,
		},
		{
			name: "commitment just outside window",
			pool: []string{"h1"},
			commitments: []commitment{
				{host: "h1", offset: 46 * time.Minute},
				{host: "h1", offset: -46 * time.Minute},
			},
			wantHost: "h1",
		},
		{
			name: "completed interviews do not block",
			pool: []string{"h1"},
			commitments: []commitment{
				{host: "h1", offset: 0, done: true},
			},
			wantHost: "h1",
		},
		{
			name: "all busy",
			pool: []string{"h1", "h2"},
			commitments: []commitment{
				{host: "h1", offset: -30 * time.Minute},
				{host: "h2", offset: 30 * time.Minute},
			},
			wantErr: ErrNoHostAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeStorage()

			for _, c := range tt.commitments {
				at := start.Add(c.offset).UnixMilli()
				host := c.host
				f.addInterview(models.Interview{
					StudentID:   "S",
					TutorID:     strPtr("T"),
					ScheduledAt: &at,
					MeetingID:   strPtr("m-" + host),
					MeetingHost: &host,
					Completed:   c.done,
				})
			}

			a := newHostAllocator(tt.pool, f.Interviews())

			host, err := a.Select(context.Background(), start)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantHost, host)
		})
	}
}
