package models

import "context"

type SlotsRepo interface {
	// Create registers a single availability slot for a tutor.
	Create(ctx context.Context, slot AvailabilitySlot) (id string, err error)

	// CreateBulk registers many slots at once, e.g. a whole week declared from the calendar UI.
	CreateBulk(ctx context.Context, slots []AvailabilitySlot) (ids []string, err error)

	// Find checks whether a slot exists.
	Find(ctx context.Context, id string) (*AvailabilitySlot, error)

	// FindByTutor returns the tutor's slots, optionally narrowed to one date.
	FindByTutor(ctx context.Context, tutorID string, date *string) ([]AvailabilitySlot, error)

	// FindByInterview returns every slot linked to the interview.
	FindByInterview(ctx context.Context, interviewID string) ([]AvailabilitySlot, error)

	// Reserve flips the slot from available to interview and links it to the
	// interview, but only if the slot is still available. The boolean result
	// is the sole source of truth for who won a concurrent reservation.
	Reserve(ctx context.Context, id string, interviewID string) (reserved bool, err error)

	// Release returns every slot linked to the interview back to available
	// and drops the link. Returns how many slots were released.
	Release(ctx context.Context, interviewID string) (released int, err error)

	// Delete removes the slot if it belongs to the tutor.
	Delete(ctx context.Context, id string, tutorID string) (deleted bool, err error)
}

type AvailabilitySlot struct {
	ID      string `json:"id"       bson:"_id,omitempty"`
	TutorID string `json:"tutor_id" bson:"tutor_id"`

	// Date is a calendar day in "2006-01-02" form; hours are integer
	// boundaries of a half-open [HourStart, HourEnd) interval.
	Date      string `json:"date"       bson:"date"`
	HourStart int    `json:"hour_start" bson:"hour_start"`
	HourEnd   int    `json:"hour_end"   bson:"hour_end"`

	Kind        SlotKind `json:"kind"                   bson:"kind"`
	InterviewID *string  `json:"interview_id,omitempty" bson:"interview_id,omitempty"`
}

type SlotKind string

const (
	SlotAvailable SlotKind = "available"
	SlotInterview SlotKind = "interview"
	SlotBlocked   SlotKind = "blocked"
)

const (
	SlotFieldID          = "_id"
	SlotFieldTutorID     = "tutor_id"
	SlotFieldDate        = "date"
	SlotFieldHourStart   = "hour_start"
	SlotFieldHourEnd     = "hour_end"
	SlotFieldKind        = "kind"
	SlotFieldInterviewID = "interview_id"
)

// Overlaps reports whether two half-open hour ranges on the same date intersect.
func (s AvailabilitySlot) Overlaps(other AvailabilitySlot) bool {
	if s.Date != other.Date || s.TutorID != other.TutorID {
		return false
	}
	return s.HourStart < other.HourEnd && other.HourStart < s.HourEnd
}

func (s AvailabilitySlot) Valid() bool {
	return s.TutorID != "" && s.Date != "" &&
		s.HourStart >= 0 && s.HourEnd <= 24 && s.HourStart < s.HourEnd
}
