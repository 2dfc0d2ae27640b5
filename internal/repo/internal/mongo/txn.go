package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/mockline/scheduler/pkg/errors"
	"github.com/mockline/scheduler/pkg/txn"
)

func (m *mongoClient) NewSession() (txn.Session, error) {
	s, err := m.c.StartSession(options.Session())
	if err != nil {
		return nil, err
	}

	return &session{s: s}, nil
}

type session struct {
	s mongo.Session
}

func (s *session) BindContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, s.s)
}

func (s *session) Txn() txn.Txn {
	return &mongoTxn{
		model:     txn.CausalConsistency,
		isolation: txn.ReadCommitted,
	}
}

func (s *session) Close(ctx context.Context) {
	s.s.EndSession(ctx)
}

type mongoTxn struct {
	model     txn.ConsistencyModel
	isolation txn.IsolationLevel
}

func (m *mongoTxn) SetModel(model txn.ConsistencyModel) txn.Txn {
	if model > txn.CausalConsistency {
		panic("unsupported consistency model")
	}
	m.model = model
	return m
}

func (m *mongoTxn) SetIsolation(lvl txn.IsolationLevel) txn.Txn {
	if lvl > txn.ReadCommitted {
		panic("unsupported isolation level")
	}
	m.isolation = lvl
	return m
}

func (m *mongoTxn) Start(ctx context.Context) (txn.ActiveTxn, error) {
	r := readconcern.Available()
	if m.isolation == txn.ReadCommitted {
		r = readconcern.Majority()
	}

	err := mongo.SessionFromContext(ctx).
		StartTransaction(
			options.Transaction().
				SetReadConcern(r).
				SetWriteConcern(writeconcern.Majority()),
		)
	if err != nil {
		return nil, errors.WrapFail(err, "start mongo transaction")
	}

	return &activeTxn{}, nil
}

type activeTxn struct {
	finished bool
}

func (t *activeTxn) Abort(ctx context.Context) error {
	err := mongo.SessionFromContext(ctx).AbortTransaction(ctx)
	t.finished = true
	return err
}

func (t *activeTxn) Commit(ctx context.Context) error {
	err := mongo.SessionFromContext(ctx).CommitTransaction(ctx)
	t.finished = true
	return err
}

func (t *activeTxn) Close(ctx context.Context) error {
	if !t.finished {
		return errors.WrapFail(t.Abort(ctx), "abort running txn")
	}
	return nil
}
