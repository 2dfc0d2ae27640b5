package repo

import (
	"context"

	"github.com/mockline/scheduler/internal/repo/models"
	"github.com/mockline/scheduler/pkg/txn"
)

// Client bundles access to the two scheduling collections and the
// session primitive multi-document transactions are built on.
type Client interface {
	Slots() models.SlotsRepo
	Interviews() models.InterviewsRepo

	NewSession() (txn.Session, error)

	Close(ctx context.Context) error
}
