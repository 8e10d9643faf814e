package model

import "time"

// SyncRun is one audit row in sync_runs. A run is opened before the first
// page is fetched and closed exactly once with its outcome; rows are never
// deleted.
type SyncRun struct {
	ID           int64      `db:"id" json:"id"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	FinishedAt   *time.Time `db:"finished_at" json:"finished_at"`
	OK           *bool      `db:"ok" json:"ok"`
	Message      *string    `db:"message" json:"message"`
	RowsUpserted *int       `db:"rows_upserted" json:"rows_upserted"`
}

// Finished reports whether the run reached a terminal state.
func (r SyncRun) Finished() bool {
	return r.OK != nil
}
