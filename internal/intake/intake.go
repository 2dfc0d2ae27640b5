package intake

import (
	"context"

	"github.com/google/uuid"

	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/pkg/errors"
	"github.com/mockline/scheduler/pkg/logger"
)

// Service turns confirmed bookings into unassigned interviews. Payment and
// booking validation happen upstream; by the time a booking reaches intake
// it is already paid for.
type Service struct {
	interviews models.InterviewsRepo
	log        logger.Logger
}

func New(interviews models.InterviewsRepo, log logger.Logger) *Service {
	return &Service{
		interviews: interviews,
		log:        log.With("intake"),
	}
}

// CreateFromBooking registers an unassigned interview for the student.
// A missing booking id gets a generated one, for interviews created by an
// operator rather than the payment pipeline.
func (s *Service) CreateFromBooking(ctx context.Context, studentID, bookingID string) (string, error) {
	if studentID == "" {
		return "", errors.Error("student id is required")
	}

	if bookingID == "" {
		bookingID = uuid.NewString()
	}

	id, err := s.interviews.Create(ctx, studentID, bookingID)
	if err != nil {
		return "", errors.WrapFail(err, "create interview")
	}

	s.log.Infof("interview %s created from booking %s", id, bookingID)
	return id, nil
}
