package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/pkg/errors"
)

type Config interface {
	Options() *options.ClientOptions
	Names() (database, slots, interviews string)
}

func NewClient(ctx context.Context, cfg Config) (*mongoClient, error) {
	client, err := mongo.Connect(ctx, cfg.Options())
	if err != nil {
		return nil, errors.WrapFail(err, "connect to mongo db")
	}

	dbName, slotsName, interviewsName := cfg.Names()
	db := client.Database(dbName, &options.DatabaseOptions{})

	c := &mongoClient{
		c:          client,
		slots:      mongoSlots{db.Collection(slotsName)},
		interviews: mongoInterviews{db.Collection(interviewsName)},
	}

	err = c.ensureIndexes(ctx)
	if err != nil {
		return nil, errors.WrapFail(err, "create indexes")
	}

	return c, nil
}

type mongoClient struct {
	c          *mongo.Client
	slots      mongoSlots
	interviews mongoInterviews
}

func (m *mongoClient) Slots() models.SlotsRepo {
	return m.slots
}

func (m *mongoClient) Interviews() models.InterviewsRepo {
	return m.interviews
}

func (m *mongoClient) Close(ctx context.Context) error {
	err := m.c.Disconnect(ctx)
	return errors.WrapFail(err, "close mongo db connection")
}

func (m *mongoClient) ensureIndexes(ctx context.Context) error {
	_, err := m.slots.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: models.SlotFieldTutorID, Value: 1}, {Key: models.SlotFieldDate, Value: 1}},
		Options: options.Index().SetName("tutor_date"),
	})
	if err != nil {
		return errors.WrapFail(err, "index slots by tutor and date")
	}

	_, err = m.interviews.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: models.InterviewFieldMeetingHost, Value: 1}, {Key: models.InterviewFieldScheduledAt, Value: 1}},
		Options: options.Index().SetName("host_time"),
	})
	return errors.WrapFail(err, "index interviews by host and time")
}
