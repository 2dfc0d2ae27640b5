package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	mongodb "github.com/mockline/scheduler/internal/repo/internal/mongo"
)

func NewMongoClient(ctx context.Context, cfg Config) (Client, error) {
	return mongodb.NewClient(ctx, mongoConfig{cfg})
}

type mongoConfig struct {
	cfg Config
}

func (m mongoConfig) Options() *options.ClientOptions {
	opts := options.Client().
		ApplyURI(m.cfg.URL).
		SetTimeout(m.cfg.Timeout)

	if m.cfg.Auth.Username != "" {
		opts = opts.SetAuth(options.Credential{
			Username: m.cfg.Auth.Username,
			Password: m.cfg.Auth.Password,
		})
	}

	if m.cfg.Pool.MaxSize > 0 {
		opts = opts.
			SetMinPoolSize(m.cfg.Pool.MinSize).
			SetMaxPoolSize(m.cfg.Pool.MaxSize)
	}

	return opts
}

func (m mongoConfig) Names() (database, slots, interviews string) {
	slots, interviews = m.cfg.CollectionNames()
	return m.cfg.Database, slots, interviews
}
