package notify

import (
	"context"
	"time"
)

// Dispatcher delivers scheduling notices to the student and tutor sides.
// Dispatch errors are reported back as values so callers can log them; a
// failed notice never unwinds the scheduling operation that produced it.
type Dispatcher interface {
	NotifyAssigned(ctx context.Context, n Notice) error
	NotifyConfirmed(ctx context.Context, n Notice) error
	NotifyCancelled(ctx context.Context, n Notice) error
}

// Notice carries everything a channel needs to render a message. JoinURL
// is empty when the interview has no meeting resource yet.
type Notice struct {
	InterviewID string

	StudentID   string
	StudentName string
	TutorID     string
	TutorName   string

	StartsAt time.Time
	JoinURL  string
}
