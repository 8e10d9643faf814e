package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewSyncID generates a ULID correlating one sync invocation across logs
// and trigger responses (distinct from the DB-assigned sync_runs id).
func NewSyncID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.Reader, 0)

	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
