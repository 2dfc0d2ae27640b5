package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/mockline/scheduler/internal/meetings"
	"github.com/mockline/scheduler/internal/notify"
	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/pkg/errors"
	"github.com/mockline/scheduler/pkg/logger"
	"github.com/mockline/scheduler/pkg/txn"
)

// sessionMinutes is the default length of a mock-interview session.
const sessionMinutes = 60

const txnTimeout = 5 * time.Second

// Storage is the slice of the repo client the scheduler needs.
type Storage interface {
	Slots() models.SlotsRepo
	Interviews() models.InterviewsRepo
	NewSession() (txn.Session, error)
}

func New(
	storage Storage,
	provider meetings.Provider,
	dispatcher notify.Dispatcher,
	hosts []string,
	log logger.Logger,
) *Scheduler {
	return &Scheduler{
		storage:    storage,
		provider:   provider,
		dispatcher: dispatcher,
		hosts:      newHostAllocator(hosts, storage.Interviews()),
		log:        log.With("scheduler"),
	}
}

// Scheduler drives the assign/confirm/cancel/delete state machine over the
// interview record, the tutor's calendar and the external meeting resource,
// keeping the three consistent under partial failures.
type Scheduler struct {
	storage    Storage
	provider   meetings.Provider
	dispatcher notify.Dispatcher
	hosts      *hostAllocator
	log        logger.Logger
}

type AssignRequest struct {
	InterviewID string
	TutorID     string
	StartAt     time.Time

	// SlotID links the assignment to an availability slot of the tutor's
	// calendar. Optional: direct assignments skip slot bookkeeping.
	SlotID *string
}

// Assign moves an interview to the assigned state, attaching a meeting
// resource when a host and the provider are available. Failure to obtain a
// meeting degrades the assignment, it does not abort it: a manually created
// meeting can be attached later.
func (s *Scheduler) Assign(ctx context.Context, req AssignRequest) (*models.Interview, error) {
	if req.InterviewID == "" || req.TutorID == "" || req.StartAt.IsZero() {
		return nil, validationErrf("interview id, tutor id and start time are required")
	}

	i, err := s.storage.Interviews().Find(ctx, req.InterviewID)
	if err != nil {
		return nil, errors.WrapFail(err, "find interview")
	}
	if i == nil {
		return nil, validationErrf("interview %q not found", req.InterviewID)
	}
	if i.Completed {
		return nil, validationErrf("interview %q is already completed", req.InterviewID)
	}

	if req.SlotID != nil {
		err = s.checkSlot(ctx, *req.SlotID, req.TutorID)
		if err != nil {
			return nil, err
		}
	}

	assignment := models.Assignment{
		TutorID:     &req.TutorID,
		ScheduledAt: ptr(req.StartAt.UnixMilli()),
	}

	meeting := s.tryCreateMeeting(ctx, req.InterviewID, req.StartAt)
	if meeting != nil {
		assignment.MeetingID = &meeting.ID
		assignment.MeetingJoinURL = &meeting.JoinURL
		assignment.MeetingHost = &meeting.Host
	}

	prev := i.CurrentAssignment()

	err = s.storage.Interviews().SetAssignment(ctx, req.InterviewID, assignment)
	if err != nil {
		// nothing references the meeting yet
		if meeting != nil {
			s.deleteMeetingQuietly(ctx, meeting.ID)
		}
		return nil, errors.WrapFail(err, "persist interview assignment")
	}

	if req.SlotID != nil {
		reserved, err := s.storage.Slots().Reserve(ctx, *req.SlotID, req.InterviewID)
		if err != nil || !reserved {
			// An assigned interview with no matching slot breaks the
			// tutor's calendar view, so the interview write is undone.
			s.compensateAssignment(ctx, req.InterviewID, assignment, prev, meeting)

			if err != nil {
				return nil, errors.WrapFail(err, "reserve slot")
			}
			return nil, validationErrf("slot %q is no longer available", *req.SlotID)
		}
	}

	// on reassignment the previous meeting is no longer referenced anywhere;
	// its host stays booked remotely unless the resource is dropped
	if prev.MeetingID != nil {
		s.deleteMeetingQuietly(ctx, *prev.MeetingID)
	}

	i.TutorID = assignment.TutorID
	i.ScheduledAt = assignment.ScheduledAt
	i.MeetingID = assignment.MeetingID
	i.MeetingJoinURL = assignment.MeetingJoinURL
	i.MeetingHost = assignment.MeetingHost

	err = s.dispatcher.NotifyAssigned(ctx, s.notice(i, "", ""))
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "send assignment notices"))
	}

	return i, nil
}

type ConfirmRequest struct {
	InterviewID string
	TutorName   string
	StudentName string
}

// Confirm finalizes an assigned interview. Unlike Assign there is no
// fallback: a confirmation without a join link is meaningless to the
// student, so any failure to obtain a meeting resource aborts.
func (s *Scheduler) Confirm(ctx context.Context, req ConfirmRequest) (*models.Interview, error) {
	if req.InterviewID == "" {
		return nil, validationErrf("interview id is required")
	}

	i, err := s.storage.Interviews().Find(ctx, req.InterviewID)
	if err != nil {
		return nil, errors.WrapFail(err, "find interview")
	}
	if i == nil {
		return nil, validationErrf("interview %q not found", req.InterviewID)
	}

	switch i.State() {
	case models.StateCompleted:
		return nil, validationErrf("interview %q is already completed", req.InterviewID)
	case models.StateUnassigned:
		return nil, validationErrf("interview %q has no tutor assigned", req.InterviewID)
	}

	startAt := time.UnixMilli(*i.ScheduledAt).UTC()

	if i.MeetingID == nil {
		if !s.provider.Configured() {
			return nil, &meetings.ProviderError{
				Op:  "create meeting",
				Err: errors.Error("provider is not configured"),
			}
		}

		host, err := s.hosts.Select(ctx, startAt)
		if err != nil {
			return nil, err
		}

		m, err := s.provider.Create(ctx, host, meetingTopic(i.ID), startAt, sessionMinutes)
		if err != nil {
			return nil, err
		}

		err = s.storage.Interviews().SetMeeting(ctx, i.ID, m.ID, m.JoinURL, m.Host)
		if err != nil {
			s.deleteMeetingQuietly(ctx, m.ID)
			return nil, errors.WrapFail(err, "persist meeting fields")
		}

		i.MeetingID = &m.ID
		i.MeetingJoinURL = &m.JoinURL
		i.MeetingHost = &m.Host
	}

	err = s.dispatcher.NotifyConfirmed(ctx, s.notice(i, req.TutorName, req.StudentName))
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "send confirmation notices"))
	}

	return i, nil
}

// Cancel returns the interview to the unassigned state: the remote meeting
// is deleted best-effort, linked slots are released, assignment fields are
// cleared. Cancelling an already-unassigned interview is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, interviewID string) (*models.Interview, error) {
	i, err := s.storage.Interviews().Find(ctx, interviewID)
	if err != nil {
		return nil, errors.WrapFail(err, "find interview")
	}
	if i == nil {
		return nil, validationErrf("interview %q not found", interviewID)
	}

	wasAssigned := i.TutorID != nil

	err = s.releaseResources(ctx, i)
	if err != nil {
		return nil, err
	}

	if wasAssigned {
		err = s.dispatcher.NotifyCancelled(ctx, s.notice(i, "", ""))
		if err != nil {
			s.log.Warn(errors.WrapFail(err, "send cancellation notices"))
		}
	}

	i.TutorID = nil
	i.ScheduledAt = nil
	i.MeetingID = nil
	i.MeetingJoinURL = nil
	i.MeetingHost = nil

	return i, nil
}

// Delete permanently removes the interview after the same cleanup Cancel does.
func (s *Scheduler) Delete(ctx context.Context, interviewID string) (bool, error) {
	i, err := s.storage.Interviews().Find(ctx, interviewID)
	if err != nil {
		return false, errors.WrapFail(err, "find interview")
	}
	if i == nil {
		return false, nil
	}

	err = s.releaseResources(ctx, i)
	if err != nil {
		return false, err
	}

	found, err := s.storage.Interviews().Delete(ctx, interviewID)
	return found, errors.WrapFail(err, "delete interview")
}

// Complete marks the interview done and stores feedback notes.
func (s *Scheduler) Complete(ctx context.Context, interviewID string, notes string) error {
	i, err := s.storage.Interviews().Find(ctx, interviewID)
	if err != nil {
		return errors.WrapFail(err, "find interview")
	}
	if i == nil {
		return validationErrf("interview %q not found", interviewID)
	}

	err = s.storage.Interviews().Complete(ctx, interviewID, notes)
	return errors.WrapFail(err, "mark interview completed")
}

// checkSlot validates slot ownership and state before assignment.
func (s *Scheduler) checkSlot(ctx context.Context, slotID, tutorID string) error {
	slot, err := s.storage.Slots().Find(ctx, slotID)
	if err != nil {
		return errors.WrapFail(err, "find slot")
	}

	switch {
	case slot == nil:
		return validationErrf("slot %q not found", slotID)
	case slot.TutorID != tutorID:
		return validationErrf("slot %q does not belong to tutor %q", slotID, tutorID)
	case slot.Kind != models.SlotAvailable:
		return validationErrf("slot %q is not available", slotID)
	case slot.InterviewID != nil:
		return validationErrf("slot %q is already linked to an interview", slotID)
	}

	return nil
}

// tryCreateMeeting picks a host and provisions a meeting, degrading to nil
// on any failure: no free host, unconfigured or broken provider.
func (s *Scheduler) tryCreateMeeting(ctx context.Context, interviewID string, start time.Time) *meetings.Meeting {
	if !s.provider.Configured() {
		s.log.Debugf("meeting provider is not configured, assigning without meeting")
		return nil
	}

	host, err := s.hosts.Select(ctx, start)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "allocate meeting host"))
		return nil
	}

	m, err := s.provider.Create(ctx, host, meetingTopic(interviewID), start, sessionMinutes)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "create meeting"))
		return nil
	}

	return m
}

// compensateAssignment undoes the interview write after a failed slot
// reservation. The revert matches on the assignment being undone, so it is
// idempotent; it is retried once and any remaining failure is only logged.
func (s *Scheduler) compensateAssignment(
	ctx context.Context,
	interviewID string,
	applied models.Assignment,
	prev models.Assignment,
	meeting *meetings.Meeting,
) {
	reverted, err := s.storage.Interviews().RevertAssignment(ctx, interviewID, applied, prev)
	if err != nil || !reverted {
		reverted, err = s.storage.Interviews().RevertAssignment(ctx, interviewID, applied, prev)
	}
	if err != nil {
		s.log.Error(errors.WrapFail(err, "revert interview assignment"))
	} else if !reverted {
		s.log.Warnf("assignment of interview %q was already reverted or changed", interviewID)
	}

	if meeting != nil {
		s.deleteMeetingQuietly(ctx, meeting.ID)
	}
}

// releaseResources is the shared cleanup of Cancel and Delete: best-effort
// remote meeting deletion, then slot release and field clearing, inside a
// storage transaction when sessions are supported.
func (s *Scheduler) releaseResources(ctx context.Context, i *models.Interview) error {
	if i.MeetingID != nil {
		s.deleteMeetingQuietly(ctx, *i.MeetingID)
	}

	return s.inTxn(ctx, func(ctx context.Context) error {
		_, err := s.storage.Slots().Release(ctx, i.ID)
		if err != nil {
			return errors.WrapFail(err, "release slots")
		}

		err = s.storage.Interviews().SetAssignment(ctx, i.ID, models.Assignment{})
		return errors.WrapFail(err, "clear interview assignment")
	})
}

// deleteMeetingQuietly swallows provider failures: a missing or undeletable
// remote meeting never blocks releasing the slot or the interview record.
func (s *Scheduler) deleteMeetingQuietly(ctx context.Context, meetingID string) {
	if !s.provider.Configured() {
		return
	}

	err := s.provider.Delete(ctx, meetingID)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "delete remote meeting"))
	}
}

// inTxn runs do inside a storage transaction when the backend supports
// sessions, falling back to plain execution otherwise.
func (s *Scheduler) inTxn(ctx context.Context, do func(ctx context.Context) error) error {
	manager := txn.NewManager(s.storage)

	txnCtx, cancel, err := manager.NewSessionContext(ctx, txnTimeout)
	if err != nil {
		s.log.Debugf("storage sessions unavailable: %s", err)
		return do(ctx)
	}
	defer cancel()

	tx, err := txn.Start(txnCtx)
	if err != nil {
		s.log.Debug(errors.WrapFail(err, "start txn"))
		return do(ctx)
	}
	defer func() {
		err := tx.Close(txnCtx)
		if err != nil {
			s.log.Warn(errors.WrapFail(err, "close txn"))
		}
	}()

	err = do(txnCtx)
	if err != nil {
		return err
	}

	return errors.WrapFail(tx.Commit(txnCtx), "commit txn")
}

func (s *Scheduler) notice(i *models.Interview, tutorName, studentName string) notify.Notice {
	n := notify.Notice{
		InterviewID: i.ID,
		StudentID:   i.StudentID,
		StudentName: studentName,
		TutorName:   tutorName,
	}

	if i.TutorID != nil {
		n.TutorID = *i.TutorID
	}
	if i.ScheduledAt != nil {
		n.StartsAt = time.UnixMilli(*i.ScheduledAt)
	}
	if i.MeetingJoinURL != nil {
		n.JoinURL = *i.MeetingJoinURL
	}

	return n
}

func meetingTopic(interviewID string) string {
	return fmt.Sprintf("Mock interview %s", interviewID)
}

func ptr[T any](v T) *T {
	return &v
}
