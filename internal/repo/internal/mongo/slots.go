package repo

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/pkg/errors"
	mng "github.com/mockline/scheduler/pkg/mongotools"
)

type mongoSlots struct {
	coll *mongo.Collection
}

func (m mongoSlots) Create(ctx context.Context, slot models.AvailabilitySlot) (string, error) {
	slot.ID = newID()
	if slot.Kind == "" {
		slot.Kind = models.SlotAvailable
	}

	_, err := m.coll.InsertOne(ctx, slot)
	if err != nil {
		return "", errors.WrapFail(err, "insert slot")
	}

	return slot.ID, nil
}

func (m mongoSlots) CreateBulk(ctx context.Context, slots []models.AvailabilitySlot) ([]string, error) {
	docs := make([]any, 0, len(slots))
	ids := make([]string, 0, len(slots))

	for _, s := range slots {
		s.ID = newID()
		if s.Kind == "" {
			s.Kind = models.SlotAvailable
		}
		docs = append(docs, s)
		ids = append(ids, s.ID)
	}

	_, err := m.coll.InsertMany(ctx, docs)
	if err != nil {
		return nil, errors.WrapFail(err, "insert slots")
	}

	return ids, nil
}

func (m mongoSlots) Find(ctx context.Context, id string) (*models.AvailabilitySlot, error) {
	r := m.coll.FindOne(ctx, mng.ID(id))
	err := r.Err()

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}

	if err != nil {
		return nil, errors.WrapFail(err, "find slot by id")
	}

	var parsed models.AvailabilitySlot
	err = r.Decode(&parsed)
	if err != nil {
		return nil, errors.WrapFail(err, "decode slot")
	}

	return &parsed, nil
}

func (m mongoSlots) FindByTutor(ctx context.Context, tutorID string, date *string) ([]models.AvailabilitySlot, error) {
	filter := bson.M{models.SlotFieldTutorID: tutorID}
	if date != nil {
		filter[models.SlotFieldDate] = *date
	}

	c, err := m.coll.Find(ctx, filter)
	if err != nil {
		return nil, errors.WrapFail(err, "find slots by tutor")
	}

	parsed, err := mng.FilterFunc[models.AvailabilitySlot](ctx, c, nil)
	return parsed, errors.WrapFail(err, "parse slots")
}

func (m mongoSlots) FindByInterview(ctx context.Context, interviewID string) ([]models.AvailabilitySlot, error) {
	c, err := m.coll.Find(ctx, bson.M{models.SlotFieldInterviewID: interviewID})
	if err != nil {
		return nil, errors.WrapFail(err, "find slots by interview")
	}

	parsed, err := mng.FilterFunc[models.AvailabilitySlot](ctx, c, nil)
	return parsed, errors.WrapFail(err, "parse slots")
}

// Reserve relies on the kind filter: the update only matches while the slot
// is still available, so ModifiedCount tells who won a concurrent attempt.
func (m mongoSlots) Reserve(ctx context.Context, id string, interviewID string) (bool, error) {
	r, err := m.coll.UpdateOne(
		ctx,
		bson.M{
			models.SlotFieldID:   id,
			models.SlotFieldKind: models.SlotAvailable,
		},
		bson.M{"$set": bson.M{
			models.SlotFieldKind:        models.SlotInterview,
			models.SlotFieldInterviewID: interviewID,
		}},
	)
	if err != nil {
		return false, errors.WrapFail(err, "reserve slot")
	}

	return r.ModifiedCount == 1, nil
}

// Release matches linked slots by the interview id wherever it appears;
// the slot link is directional, interviews hold no back-reference.
func (m mongoSlots) Release(ctx context.Context, interviewID string) (int, error) {
	r, err := m.coll.UpdateMany(
		ctx,
		bson.M{models.SlotFieldInterviewID: interviewID},
		bson.M{
			"$set":   bson.M{models.SlotFieldKind: models.SlotAvailable},
			"$unset": bson.M{models.SlotFieldInterviewID: ""},
		},
	)
	if err != nil {
		return 0, errors.WrapFail(err, "release slots")
	}

	return int(r.ModifiedCount), nil
}

func (m mongoSlots) Delete(ctx context.Context, id string, tutorID string) (bool, error) {
	r, err := m.coll.DeleteOne(ctx, bson.M{
		models.SlotFieldID:      id,
		models.SlotFieldTutorID: tutorID,
	})
	if err != nil {
		return false, errors.WrapFail(err, "delete slot")
	}

	return r.DeletedCount == 1, nil
}

func newID() string {
	randomSuffix := strconv.Itoa(rand.Intn(90) + 10)
	return strconv.FormatInt(time.Now().UnixMicro(), 16) + randomSuffix
}
