package notify

import (
	"context"

	"github.com/mockline/scheduler/pkg/logger"
)

// NewLogDispatcher writes notices to the log instead of delivering them.
// Used when no notification channel is configured.
func NewLogDispatcher(log logger.Logger) *LogDispatcher {
	return &LogDispatcher{log: log.With("notify")}
}

type LogDispatcher struct {
	log logger.Logger
}

func (d *LogDispatcher) NotifyAssigned(_ context.Context, n Notice) error {
	d.log.Infof("assigned: interview=%s tutor=%s student=%s at=%s", n.InterviewID, n.TutorID, n.StudentID, n.StartsAt)
	return nil
}

func (d *LogDispatcher) NotifyConfirmed(_ context.Context, n Notice) error {
	d.log.Infof("confirmed: interview=%s tutor=%s student=%s join=%s", n.InterviewID, n.TutorID, n.StudentID, n.JoinURL)
	return nil
}

func (d *LogDispatcher) NotifyCancelled(_ context.Context, n Notice) error {
	d.log.Infof("cancelled: interview=%s tutor=%s student=%s", n.InterviewID, n.TutorID, n.StudentID)
	return nil
}
