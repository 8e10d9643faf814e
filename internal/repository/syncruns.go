package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/outboundops/smartlead-sync/internal/model"
)

// SyncRunsRepository keeps the append-only audit trail of sync attempts.
type SyncRunsRepository interface {
	// Open records a run in started state and returns its id.
	Open(ctx context.Context) (int64, error)
	// Close moves the run to its terminal state. rowsUpserted is nil on
	// failure. Closing twice is not guarded; the last write wins.
	Close(ctx context.Context, id int64, ok bool, message string, rowsUpserted *int) error
	Latest(ctx context.Context) (*model.SyncRun, error)
	ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error)
}

type SyncRunsRepositoryImpl struct {
	db *sqlx.DB
}

func NewSyncRunsRepository(db *sqlx.DB) *SyncRunsRepositoryImpl {
	return &SyncRunsRepositoryImpl{db: db}
}

var _ SyncRunsRepository = (*SyncRunsRepositoryImpl)(nil)

func (r *SyncRunsRepositoryImpl) Open(ctx context.Context) (int64, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO sync_runs (ok, message)
		VALUES (NULL, 'started')
		RETURNING id
	`)
	return id, err
}

func (r *SyncRunsRepositoryImpl) Close(ctx context.Context, id int64, ok bool, message string, rowsUpserted *int) error {
	query := r.db.Rebind(`
		UPDATE sync_runs
		   SET finished_at = now(), ok = ?, message = ?, rows_upserted = ?
		 WHERE id = ?
	`)
	_, err := r.db.ExecContext(ctx, query, ok, message, rowsUpserted, id)
	return err
}

func (r *SyncRunsRepositoryImpl) Latest(ctx context.Context) (*model.SyncRun, error) {
	var run model.SyncRun
	err := r.db.GetContext(ctx, &run, `
		SELECT id, started_at, finished_at, ok, message, rows_upserted
		  FROM sync_runs
		 ORDER BY id DESC LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *SyncRunsRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]model.SyncRun, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	query := r.db.Rebind(`
		SELECT id, started_at, finished_at, ok, message, rows_upserted
		  FROM sync_runs
		 ORDER BY id DESC LIMIT ?
	`)

	var runs []model.SyncRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}
