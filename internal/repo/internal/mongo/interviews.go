package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/pkg/errors"
	mng "github.com/mockline/scheduler/pkg/mongotools"
)

type mongoInterviews struct {
	coll *mongo.Collection
}

func (m mongoInterviews) Create(ctx context.Context, studentID string, bookingID string) (string, error) {
	id := newID()

	_, err := m.coll.InsertOne(
		ctx,
		bson.M{
			"_id":                          id,
			models.InterviewFieldStudentID: studentID,
			models.InterviewFieldBookingID: bookingID,
			models.InterviewFieldCompleted: false,
		},
	)
	if err != nil {
		return "", errors.WrapFail(err, "insert interview")
	}

	return id, nil
}

func (m mongoInterviews) Delete(ctx context.Context, id string) (bool, error) {
	r, err := m.coll.DeleteOne(ctx, mng.ID(id))
	if err != nil {
		return false, errors.WrapFail(err, "delete interview")
	}

	return r.DeletedCount == 1, nil
}

func (m mongoInterviews) Find(ctx context.Context, id string) (*models.Interview, error) {
	r := m.coll.FindOne(ctx, mng.ID(id))
	err := r.Err()

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, errors.WrapFail(err, "find interview by id")
	}

	var parsed models.Interview
	err = r.Decode(&parsed)
	if err != nil {
		return nil, errors.WrapFail(err, "decode interview")
	}

	return &parsed, nil
}

func (m mongoInterviews) FindByStudent(ctx context.Context, studentID string) ([]models.Interview, error) {
	c, err := m.coll.Find(ctx, bson.M{models.InterviewFieldStudentID: studentID})
	if err != nil {
		return nil, errors.WrapFail(err, "find interviews by student")
	}

	parsed, err := mng.FilterFunc[models.Interview](ctx, c, nil)
	return parsed, errors.WrapFail(err, "parse interviews")
}

func (m mongoInterviews) FindByTutor(ctx context.Context, tutorID string) ([]models.Interview, error) {
	c, err := m.coll.Find(ctx, bson.M{models.InterviewFieldTutorID: tutorID})
	if err != nil {
		return nil, errors.WrapFail(err, "find interviews by tutor")
	}

	parsed, err := mng.FilterFunc[models.Interview](ctx, c, nil)
	return parsed, errors.WrapFail(err, "parse interviews")
}

func (m mongoInterviews) FindByHost(ctx context.Context, host string, from, to int64) ([]models.Interview, error) {
	c, err := m.coll.Find(ctx, bson.M{
		models.InterviewFieldMeetingHost: host,
		models.InterviewFieldCompleted:   false,
		models.InterviewFieldScheduledAt: bson.M{"$gte": from, "$lte": to},
	})
	if err != nil {
		return nil, errors.WrapFail(err, "find interviews by host and window")
	}

	parsed, err := mng.FilterFunc[models.Interview](ctx, c, nil)
	return parsed, errors.WrapFail(err, "parse interviews")
}

func (m mongoInterviews) SetAssignment(ctx context.Context, id string, a models.Assignment) error {
	_, err := m.coll.UpdateOne(ctx, mng.ID(id), assignmentUpdate(a))
	return errors.WrapFail(err, "update interview assignment")
}

func (m mongoInterviews) RevertAssignment(ctx context.Context, id string, from, to models.Assignment) (bool, error) {
	filter := mng.ID(id)
	for f, v := range assignmentFields(from) {
		filter[f] = v
	}

	r, err := m.coll.UpdateOne(ctx, filter, assignmentUpdate(to))
	if err != nil {
		return false, errors.WrapFail(err, "revert interview assignment")
	}

	return r.ModifiedCount == 1, nil
}

func (m mongoInterviews) SetMeeting(ctx context.Context, id string, meetingID, joinURL, host string) error {
	_, err := m.coll.UpdateOne(
		ctx,
		mng.ID(id),
		mng.SetAll(
			mng.Field(models.InterviewFieldMeetingID, &meetingID),
			mng.Field(models.InterviewFieldMeetingJoinURL, &joinURL),
			mng.Field(models.InterviewFieldMeetingHost, &host),
		),
	)
	return errors.WrapFail(err, "update interview meeting fields")
}

func (m mongoInterviews) Complete(ctx context.Context, id string, notes string) error {
	completed := true
	r, err := m.coll.UpdateOne(
		ctx,
		mng.ID(id),
		mng.SetAll(
			mng.Field(models.InterviewFieldCompleted, &completed),
			mng.Field(models.InterviewFieldNotes, &notes),
		),
	)
	if err != nil {
		return errors.WrapFail(err, "update interview by id")
	}

	if r.MatchedCount == 0 {
		return errors.Error("no interviews updated")
	}

	return nil
}

// assignmentFields maps an Assignment onto document fields; nil pointers
// become nil values, which mongo matches against absent fields in filters.
func assignmentFields(a models.Assignment) map[string]any {
	return map[string]any{
		models.InterviewFieldTutorID:        a.TutorID,
		models.InterviewFieldScheduledAt:    a.ScheduledAt,
		models.InterviewFieldMeetingID:      a.MeetingID,
		models.InterviewFieldMeetingJoinURL: a.MeetingJoinURL,
		models.InterviewFieldMeetingHost:    a.MeetingHost,
	}
}

func assignmentUpdate(a models.Assignment) bson.M {
	set, unset := bson.M{}, bson.M{}
	for f, v := range assignmentFields(a) {
		if v == nil || isNilPtr(v) {
			unset[f] = ""
			continue
		}
		set[f] = v
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func isNilPtr(v any) bool {
	switch p := v.(type) {
	case *string:
		return p == nil
	case *int64:
		return p == nil
	default:
		return false
	}
}
