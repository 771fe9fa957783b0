package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// EventPublisher pushes event payloads to live listeners. The websocket
// hub implements it; tests pass nil.
type EventPublisher interface {
	PublishEvent(userID int64, eventData []byte)
}

type Store struct {
	pool *pgxpool.Pool
	hub  EventPublisher
	*Queries
}

func NewStore(pool *pgxpool.Pool, hub EventPublisher) *Store {
	return &Store{
		pool:    pool,
		hub:     hub,
		Queries: New(pool),
	}
}

// ExecTx runs fn inside a single transaction. The upload handler uses
// it to commit a whole batch of file rows at once: a mid-batch failure
// rolls back every insert of that batch.
func (s *Store) ExecTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	q := New(tx)
	err = fn(q)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) GetPool() *pgxpool.Pool {
	return s.pool
}
