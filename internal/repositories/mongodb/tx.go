package mongodb

import (
	"context"

	"github.com/kolekthq/kolekt-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
)

// Compile-time check to ensure TxRunner implements the interface
var _ repositories.TxRunner = (*TxRunner)(nil)

// TxRunner wraps mongo session transactions. Collection operations pick the
// session up from the context, so repositories need no transaction awareness.
type TxRunner struct {
	client *mongo.Client
}

// NewTxRunner creates a new TxRunner
func NewTxRunner(db *mongo.Database) *TxRunner {
	return &TxRunner{client: db.Client()}
}

// WithinTransaction runs fn inside a session transaction. When the context
// already carries a session the call joins the open transaction, so services
// can compose transactional operations without nesting sessions.
func (r *TxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return translateErr(err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
