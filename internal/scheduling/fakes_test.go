package scheduling

import (
	"context"
	"strconv"
	"sync"

	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/pkg/errors"
	"github.com/mockline/scheduler/pkg/txn"
)

// fakeStorage is an in-memory Storage with the same conditional-update
// semantics as the mongo implementation. It does not support sessions,
// which also exercises the scheduler's plain-execution fallback.
type fakeStorage struct {
	mu sync.Mutex

	slots      map[string]models.AvailabilitySlot
	interviews map[string]models.Interview

	nextID int

	// failure injection
	reserveErr       error
	setAssignmentErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		slots:      map[string]models.AvailabilitySlot{},
		interviews: map[string]models.Interview{},
	}
}

func (f *fakeStorage) Slots() models.SlotsRepo           { return fakeSlots{f} }
func (f *fakeStorage) Interviews() models.InterviewsRepo { return fakeInterviews{f} }
func (f *fakeStorage) NewSession() (txn.Session, error) {
	return nil, errors.Error("sessions are not supported")
}

func (f *fakeStorage) genID() string {
	f.nextID++
	return "id" + strconv.Itoa(f.nextID)
}

func (f *fakeStorage) addSlot(s models.AvailabilitySlot) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s.ID == "" {
		s.ID = f.genID()
	}
	if s.Kind == "" {
		s.Kind = models.SlotAvailable
	}
	f.slots[s.ID] = s
	return s.ID
}

func (f *fakeStorage) addInterview(i models.Interview) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if i.ID == "" {
		i.ID = f.genID()
	}
	f.interviews[i.ID] = i
	return i.ID
}

func (f *fakeStorage) slot(id string) models.AvailabilitySlot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.slots[id]
}

func (f *fakeStorage) interview(id string) models.Interview {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interviews[id]
}

type fakeSlots struct {
	f *fakeStorage
}

func (s fakeSlots) Create(_ context.Context, slot models.AvailabilitySlot) (string, error) {
	return s.f.addSlot(slot), nil
}

func (s fakeSlots) CreateBulk(ctx context.Context, slots []models.AvailabilitySlot) ([]string, error) {
	ids := make([]string, 0, len(slots))
	for _, slot := range slots {
		id, _ := s.Create(ctx, slot)
		ids = append(ids, id)
	}
	return ids, nil
}

func (s fakeSlots) Find(_ context.Context, id string) (*models.AvailabilitySlot, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()

	slot, ok := s.f.slots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (s fakeSlots) FindByTutor(_ context.Context, tutorID string, date *string) ([]models.AvailabilitySlot, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()

	var found []models.AvailabilitySlot
	for _, slot := range s.f.slots {
		if slot.TutorID == tutorID && (date == nil || slot.Date == *date) {
			found = append(found, slot)
		}
	}
	return found, nil
}

func (s fakeSlots) FindByInterview(_ context.Context, interviewID string) ([]models.AvailabilitySlot, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()

	var found []models.AvailabilitySlot
	for _, slot := range s.f.slots {
		if slot.InterviewID != nil && *slot.InterviewID == interviewID {
			found = append(found, slot)
		}
	}
	return found, nil
}

func (s fakeSlots) Reserve(_ context.Context, id string, interviewID string) (bool, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()

	if s.f.reserveErr != nil {
		return false, s.f.reserveErr
	}

	slot, ok := s.f.slots[id]
	if !ok || slot.Kind != models.SlotAvailable {
		return false, nil
	}

	slot.Kind = models.SlotInterview
	slot.InterviewID = &interviewID
	s.f.slots[id] = slot
	return true, nil
}

func (s fakeSlots) Release(_ context.Context, interviewID string) (int, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()

	released := 0
	for id, slot := range s.f.slots {
		if slot.InterviewID != nil && *slot.InterviewID == interviewID {
			slot.Kind = models.SlotAvailable
			slot.InterviewID = nil
			s.f.slots[id] = slot
			released++
		}
	}
	return released, nil
}

func (s fakeSlots) Delete(_ context.Context, id string, tutorID string) (bool, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()

	slot, ok := s.f.slots[id]
	if !ok || slot.TutorID != tutorID {
		return false, nil
	}
	delete(s.f.slots, id)
	return true, nil
}

type fakeInterviews struct {
	f *fakeStorage
}

func (r fakeInterviews) Create(_ context.Context, studentID string, bookingID string) (string, error) {
	return r.f.addInterview(models.Interview{StudentID: studentID, BookingID: bookingID}), nil
}

func (r fakeInterviews) Delete(_ context.Context, id string) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	_, ok := r.f.interviews[id]
	delete(r.f.interviews, id)
	return ok, nil
}

func (r fakeInterviews) Find(_ context.Context, id string) (*models.Interview, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	i, ok := r.f.interviews[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (r fakeInterviews) FindByStudent(_ context.Context, studentID string) ([]models.Interview, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var found []models.Interview
	for _, i := range r.f.interviews {
		if i.StudentID == studentID {
			found = append(found, i)
		}
	}
	return found, nil
}

func (r fakeInterviews) FindByTutor(_ context.Context, tutorID string) ([]models.Interview, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var found []models.Interview
	for _, i := range r.f.interviews {
		if i.TutorID != nil && *i.TutorID == tutorID {
			found = append(found, i)
		}
	}
	return found, nil
}

func (r fakeInterviews) FindByHost(_ context.Context, host string, from, to int64) ([]models.Interview, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	var found []models.Interview
	for _, i := range r.f.interviews {
		if i.Completed || i.MeetingHost == nil || *i.MeetingHost != host || i.ScheduledAt == nil {
			continue
		}
		if *i.ScheduledAt >= from && *i.ScheduledAt <= to {
			found = append(found, i)
		}
	}
	return found, nil
}

func (r fakeInterviews) SetAssignment(_ context.Context, id string, a models.Assignment) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	if r.f.setAssignmentErr != nil {
		return r.f.setAssignmentErr
	}

	i, ok := r.f.interviews[id]
	if !ok {
		return errors.Error("no interviews updated")
	}

	applyAssignment(&i, a)
	r.f.interviews[id] = i
	return nil
}

func (r fakeInterviews) RevertAssignment(_ context.Context, id string, from, to models.Assignment) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	i, ok := r.f.interviews[id]
	if !ok {
		return false, nil
	}

	if !matchesAssignment(i, from) {
		return false, nil
	}

	applyAssignment(&i, to)
	r.f.interviews[id] = i
	return true, nil
}

func (r fakeInterviews) SetMeeting(_ context.Context, id string, meetingID, joinURL, host string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	i, ok := r.f.interviews[id]
	if !ok {
		return errors.Error("no interviews updated")
	}

	i.MeetingID = &meetingID
	i.MeetingJoinURL = &joinURL
	i.MeetingHost = &host
	r.f.interviews[id] = i
	return nil
}

func (r fakeInterviews) Complete(_ context.Context, id string, notes string) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()

	i, ok := r.f.interviews[id]
	if !ok {
		return errors.Error("no interviews updated")
	}

	i.Completed = true
	i.Notes = notes
	r.f.interviews[id] = i
	return nil
}

func applyAssignment(i *models.Interview, a models.Assignment) {
	i.TutorID = a.TutorID
	i.ScheduledAt = a.ScheduledAt
	i.MeetingID = a.MeetingID
	i.MeetingJoinURL = a.MeetingJoinURL
	i.MeetingHost = a.MeetingHost
}

func matchesAssignment(i models.Interview, a models.Assignment) bool {
	return eqPtr(i.TutorID, a.TutorID) &&
		eqPtr(i.ScheduledAt, a.ScheduledAt) &&
		eqPtr(i.MeetingID, a.MeetingID) &&
		eqPtr(i.MeetingJoinURL, a.MeetingJoinURL) &&
		eqPtr(i.MeetingHost, a.MeetingHost)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
