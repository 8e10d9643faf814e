package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outboundops/smartlead-sync/internal/model"
	"github.com/outboundops/smartlead-sync/internal/smartlead"
)

type fakeFetcher struct {
	rows   []model.AccountRow
	err    error
	bearer string
}

func (f *fakeFetcher) FetchAllAccounts(_ context.Context, bearer string) ([]model.AccountRow, error) {
	f.bearer = bearer
	return f.rows, f.err
}

type fakeAccounts struct {
	upserted []model.AccountRow
	calls    int
	err      error
}

func (f *fakeAccounts) UpsertBatch(_ context.Context, rows []model.AccountRow) (int, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.upserted = rows
	return len(rows), nil
}

func (f *fakeAccounts) Count(context.Context) (int64, error) { return int64(len(f.upserted)), nil }
func (f *fakeAccounts) ListRecent(context.Context, int, int) ([]model.AccountRow, error) {
	return nil, nil
}

type closeCall struct {
	id      int64
	ok      bool
	message string
	rows    *int
}

type fakeRuns struct {
	nextID  int64
	openErr error
	opened  int
	closes  []closeCall
}

func (f *fakeRuns) Open(context.Context) (int64, error) {
	if f.openErr != nil {
		return 0, f.openErr
	}
	f.opened++
	return f.nextID, nil
}

func (f *fakeRuns) Close(_ context.Context, id int64, ok bool, message string, rows *int) error {
	f.closes = append(f.closes, closeCall{id: id, ok: ok, message: message, rows: rows})
	return nil
}

func (f *fakeRuns) Latest(context.Context) (*model.SyncRun, error) { return nil, nil }

func (f *fakeRuns) ListRecent(context.Context, int) ([]model.SyncRun, error) { return nil, nil }

func someRows(n int) []model.AccountRow {
	rows := make([]model.AccountRow, n)
	for i := range rows {
		rows[i] = model.AccountRow{ID: int64(i + 1)}
	}
	return rows
}

func TestRunSuccess(t *testing.T) {
	fetcher := &fakeFetcher{rows: someRows(3)}
	accounts := &fakeAccounts{}
	runs := &fakeRuns{nextID: 11}
	svc := New(fetcher, accounts, runs, nil)

	n, err := svc.Run(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "tok", fetcher.bearer)
	assert.Len(t, accounts.upserted, 3)

	require.Len(t, runs.closes, 1)
	c := runs.closes[0]
	assert.Equal(t, int64(11), c.id)
	assert.True(t, c.ok)
	assert.Equal(t, "ok: upserted 3", c.message)
	require.NotNil(t, c.rows)
	assert.Equal(t, 3, *c.rows)
}

func TestRunEmptyFetchIsSuccessful(t *testing.T) {
	fetcher := &fakeFetcher{}
	accounts := &fakeAccounts{}
	runs := &fakeRuns{nextID: 4}
	svc := New(fetcher, accounts, runs, nil)

	n, err := svc.Run(context.Background(), "tok")
	require.NoError(t, err)
	assert.Zero(t, n)

	require.Len(t, runs.closes, 1)
	assert.True(t, runs.closes[0].ok)
	assert.Equal(t, "ok: upserted 0", runs.closes[0].message)
	require.NotNil(t, runs.closes[0].rows)
	assert.Zero(t, *runs.closes[0].rows)
}

func TestRunFetchFailure(t *testing.T) {
	t.Run("auth failure recorded, nothing written", func(t *testing.T) {
		fetcher := &fakeFetcher{err: smartlead.ErrUnauthorized}
		accounts := &fakeAccounts{}
		runs := &fakeRuns{nextID: 21}
		svc := New(fetcher, accounts, runs, nil)

		_, err := svc.Run(context.Background(), "expired")
		require.Error(t, err)
		assert.ErrorIs(t, err, smartlead.ErrUnauthorized)

		// no partial upsert attempted
		assert.Zero(t, accounts.calls)

		require.Len(t, runs.closes, 1)
		c := runs.closes[0]
		assert.False(t, c.ok)
		assert.Contains(t, c.message, "401")
		assert.Nil(t, c.rows)
	})

	t.Run("generic fetch failure re-surfaced", func(t *testing.T) {
		boom := errors.New("smartlead: fetch offset=0: timeout")
		fetcher := &fakeFetcher{err: boom}
		runs := &fakeRuns{nextID: 22}
		svc := New(fetcher, &fakeAccounts{}, runs, nil)

		_, err := svc.Run(context.Background(), "tok")
		assert.ErrorIs(t, err, boom)
		require.Len(t, runs.closes, 1)
		assert.False(t, runs.closes[0].ok)
		assert.Equal(t, boom.Error(), runs.closes[0].message)
	})
}

func TestRunUpsertFailure(t *testing.T) {
	fetcher := &fakeFetcher{rows: someRows(2)}
	accounts := &fakeAccounts{err: errors.New("write conflict")}
	runs := &fakeRuns{nextID: 31}
	svc := New(fetcher, accounts, runs, nil)

	_, err := svc.Run(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert accounts")

	require.Len(t, runs.closes, 1)
	c := runs.closes[0]
	assert.False(t, c.ok)
	assert.Contains(t, c.message, "write conflict")
	assert.Nil(t, c.rows)
}

func TestRunOpenFailure(t *testing.T) {
	// the run could not even start: nothing is fetched or closed
	fetcher := &fakeFetcher{rows: someRows(1)}
	runs := &fakeRuns{openErr: errors.New("pool exhausted")}
	svc := New(fetcher, &fakeAccounts{}, runs, nil)

	_, err := svc.Run(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open sync run")
	assert.Empty(t, runs.closes)
	assert.Empty(t, fetcher.bearer)
}
