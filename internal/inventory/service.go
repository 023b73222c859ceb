// Package inventory runs every mutation and query against the movement ledger.
// Each mutation passes the authorization gate, then the validators, then is
// appended inside one transaction while its bucket is locked. Queries are
// scoped by role and recomputed from the ledger on every call.
package inventory

import (
	"context"
	"database/sql"
	"time"

	"github.com/erazemk/arsenal/internal/apperr"
	"github.com/erazemk/arsenal/internal/store"
)

// Observer records the outcome of a service operation.
type Observer interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) Observe(context.Context, string, bool, time.Duration) {}

// Service is the inventory core.
type Service struct {
	db      *sql.DB
	locks   *bucketLocks
	metrics Observer
}

// Option configures a Service.
type Option func(*Service)

// WithObserver sets the metrics recorder.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.metrics = o
		}
	}
}

// New creates a Service on top of db.
func New(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:      db,
		locks:   newBucketLocks(),
		metrics: noopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe reports an operation once it returns. Pass a pointer to the named
// error result.
func (s *Service) observe(ctx context.Context, operation string, start time.Time, err *error) {
	s.metrics.Observe(ctx, operation, *err == nil, time.Since(start))
}

// inTx runs fn in a write transaction. Anything fn returns rolls the
// transaction back; nothing is partially appended.
func (s *Service) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap("starting transaction", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return apperr.Wrap("writing to ledger", err)
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap("committing transaction", err)
	}
	return nil
}

func catalogOf(db store.DBTX) store.Catalog {
	return store.Catalog{DB: db}
}
