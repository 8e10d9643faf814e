// Package sync orchestrates one synchronization attempt: open an audit run,
// pull every page from Smartlead, upsert the mirror table, close the run.
package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/outboundops/smartlead-sync/internal/metrics"
	"github.com/outboundops/smartlead-sync/internal/model"
	"github.com/outboundops/smartlead-sync/internal/repository"
	"github.com/outboundops/smartlead-sync/internal/util"
)

// Fetcher retrieves and flattens the full remote account set.
type Fetcher interface {
	FetchAllAccounts(ctx context.Context, bearer string) ([]model.AccountRow, error)
}

// Service composes fetcher, writer and run tracker. One Run records exactly
// one terminal sync_runs state; failures are recorded and re-surfaced,
// never swallowed.
type Service struct {
	fetcher  Fetcher
	accounts repository.AccountsRepository
	runs     repository.SyncRunsRepository
	log      *zap.Logger
}

func New(
	fetcher Fetcher,
	accountsRepo repository.AccountsRepository,
	runsRepo repository.SyncRunsRepository,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		fetcher:  fetcher,
		accounts: accountsRepo,
		runs:     runsRepo,
		log:      log,
	}
}

// Run executes one full sync with the already-resolved bearer token and
// returns the number of rows upserted.
func (s *Service) Run(ctx context.Context, bearer string) (int, error) {
	syncID := util.NewSyncID()
	log := s.log.With(zap.String("sync_id", syncID))

	runID, err := s.runs.Open(ctx)
	if err != nil {
		return 0, fmt.Errorf("open sync run: %w", err)
	}
	log = log.With(zap.Int64("run_id", runID))
	log.Info("sync started")

	rows, err := s.fetcher.FetchAllAccounts(ctx, bearer)
	if err != nil {
		s.fail(ctx, log, runID, err)
		return 0, err
	}

	n, err := s.accounts.UpsertBatch(ctx, rows)
	if err != nil {
		err = fmt.Errorf("upsert accounts: %w", err)
		s.fail(ctx, log, runID, err)
		return 0, err
	}

	message := fmt.Sprintf("ok: upserted %d", n)
	if err := s.runs.Close(ctx, runID, true, message, &n); err != nil {
		return n, fmt.Errorf("close sync run: %w", err)
	}

	metrics.SyncRunsTotal.WithLabelValues("ok").Inc()
	metrics.RowsUpserted.Add(float64(n))
	log.Info("sync finished", zap.Int("rows_upserted", n))
	return n, nil
}

// fail records the terminal failure state. No rows count is written and no
// compensating action runs; retrying is an operator decision.
func (s *Service) fail(ctx context.Context, log *zap.Logger, runID int64, cause error) {
	metrics.SyncRunsTotal.WithLabelValues("failed").Inc()
	log.Error("sync failed", zap.Error(cause))
	if err := s.runs.Close(ctx, runID, false, cause.Error(), nil); err != nil {
		log.Error("record sync failure", zap.Error(err))
	}
}
