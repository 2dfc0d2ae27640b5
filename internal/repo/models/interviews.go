package models

import "context"

type InterviewsRepo interface {
	// Create registers an unassigned interview produced by booking intake.
	Create(ctx context.Context, studentID string, bookingID string) (id string, err error)

	// Delete completely removes the interview record.
	Delete(ctx context.Context, id string) (found bool, err error)

	// Find checks whether an interview has been created or not.
	Find(ctx context.Context, id string) (*Interview, error)

	// FindByStudent returns all interviews of the student.
	FindByStudent(ctx context.Context, studentID string) ([]Interview, error)

	// FindByTutor returns all interviews assigned to the tutor.
	FindByTutor(ctx context.Context, tutorID string) ([]Interview, error)

	// FindByHost returns non-completed interviews whose meeting host equals
	// host and whose scheduled time falls inside [from, to]. This is the
	// host-commitment query conflict detection is built on; it is always
	// recomputed, never cached.
	FindByHost(ctx context.Context, host string, from, to int64) ([]Interview, error)

	// SetAssignment writes tutor, time and meeting fields in one update.
	// Nil pointers unset the corresponding fields.
	SetAssignment(ctx context.Context, id string, a Assignment) error

	// RevertAssignment undoes a previous SetAssignment, but only while the
	// record still carries the assignment being reverted, so a retry after
	// success is a no-op. Reports whether the record was modified.
	RevertAssignment(ctx context.Context, id string, from, to Assignment) (bool, error)

	// SetMeeting attaches meeting-resource fields to an assigned interview.
	SetMeeting(ctx context.Context, id string, meetingID, joinURL, host string) error

	// Complete sets the completion flag and stores feedback notes.
	Complete(ctx context.Context, id string, notes string) error
}

type Interview struct {
	ID        string `json:"id"         bson:"_id,omitempty"`
	StudentID string `json:"student_id" bson:"student_id"`
	BookingID string `json:"booking_id" bson:"booking_id"`

	TutorID     *string `json:"tutor_id,omitempty"     bson:"tutor_id,omitempty"`
	ScheduledAt *int64  `json:"scheduled_at,omitempty" bson:"scheduled_at,omitempty"`

	MeetingID      *string `json:"meeting_id,omitempty"       bson:"meeting_id,omitempty"`
	MeetingJoinURL *string `json:"meeting_join_url,omitempty" bson:"meeting_join_url,omitempty"`
	MeetingHost    *string `json:"meeting_host,omitempty"     bson:"meeting_host,omitempty"`

	Completed bool   `json:"completed" bson:"completed"`
	Notes     string `json:"notes"     bson:"notes"`
}

// Assignment is the mutable scheduling part of an interview. A nil field
// means "absent" both when writing and when matching.
type Assignment struct {
	TutorID     *string
	ScheduledAt *int64

	MeetingID      *string
	MeetingJoinURL *string
	MeetingHost    *string
}

const (
	InterviewFieldID             = "_id"
	InterviewFieldStudentID      = "student_id"
	InterviewFieldBookingID      = "booking_id"
	InterviewFieldTutorID        = "tutor_id"
	InterviewFieldScheduledAt    = "scheduled_at"
	InterviewFieldMeetingID      = "meeting_id"
	InterviewFieldMeetingJoinURL = "meeting_join_url"
	InterviewFieldMeetingHost    = "meeting_host"
	InterviewFieldCompleted      = "completed"
	InterviewFieldNotes          = "notes"
)

type InterviewState int

const (
	// StateUnassigned is an interview with no tutor and no time.
	StateUnassigned InterviewState = iota

	// StateAssigned has tutor and time; a meeting resource is optional.
	StateAssigned

	// StateConfirmed is assigned with a meeting resource attached.
	StateConfirmed

	// StateCompleted is a finished interview.
	StateCompleted
)

// State derives the tagged scheduling state from the nullable columns.
// Tutor and time are set and cleared together, so either one witnesses
// the assignment.
func (i Interview) State() InterviewState {
	switch {
	case i.Completed:
		return StateCompleted
	case i.TutorID != nil && i.ScheduledAt != nil && i.MeetingID != nil:
		return StateConfirmed
	case i.TutorID != nil && i.ScheduledAt != nil:
		return StateAssigned
	default:
		return StateUnassigned
	}
}

// CurrentAssignment snapshots the assignment fields, e.g. to revert to later.
func (i Interview) CurrentAssignment() Assignment {
	return Assignment{
		TutorID:        i.TutorID,
		ScheduledAt:    i.ScheduledAt,
		MeetingID:      i.MeetingID,
		MeetingJoinURL: i.MeetingJoinURL,
		MeetingHost:    i.MeetingHost,
	}
}

func (s InterviewState) String() string {
	switch s {
	case StateUnassigned:
		return "unassigned"
	case StateAssigned:
		return "assigned"
	case StateConfirmed:
		return "confirmed"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
