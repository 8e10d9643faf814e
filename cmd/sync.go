package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outboundops/smartlead-sync/internal/config"
	"github.com/outboundops/smartlead-sync/internal/credential"
	"github.com/outboundops/smartlead-sync/internal/db"
	"github.com/outboundops/smartlead-sync/internal/logger"
	"github.com/outboundops/smartlead-sync/internal/repository"
	syncSvc "github.com/outboundops/smartlead-sync/internal/service/sync"
	"github.com/outboundops/smartlead-sync/internal/smartlead"
)

// syncCmd performs one full sync and exits, for cron / CI invocation.
// Exit status is non-zero on any failure.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one full account sync and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger.Init(cfg.Log.Level)

		pg, err := db.NewPostgresConnection(cfg.Postgres.DSN, db.PostgresOpts{
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Postgres.ConnMaxIdleTime,
			PingTimeout:     cfg.Postgres.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("postgres connect: %w", err)
		}
		defer pg.Close()

		accountsRepo := repository.NewAccountsRepository(pg)
		runsRepo := repository.NewSyncRunsRepository(pg)
		settingsRepo := repository.NewSettingsRepository(pg)

		ctx := cmd.Context()

		chain := credential.Default(settingsRepo, cfg.Smartlead.Bearer)
		bearer, err := chain.Resolve(ctx)
		if err != nil {
			return err
		}

		client := smartlead.NewClient(cfg.Smartlead.Endpoint, cfg.Smartlead.Limit, cfg.Smartlead.Timeout())
		svc := syncSvc.New(client, accountsRepo, runsRepo, logger.Log)

		n, err := svc.Run(ctx, bearer)
		if err != nil {
			return err
		}

		fmt.Printf("upserted %d accounts\n", n)
		return nil
	},
}
