package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/outboundops/smartlead-sync/internal/model"
)

// AccountsRepository persists the all_accounts_realtime mirror table.
type AccountsRepository interface {
	// UpsertBatch writes every row insert-or-update on id, atomically.
	// An empty batch performs no I/O and returns 0.
	UpsertBatch(ctx context.Context, rows []model.AccountRow) (int, error)
	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit, offset int) ([]model.AccountRow, error)
}

type AccountsRepositoryImpl struct {
	db *sqlx.DB
}

func NewAccountsRepository(db *sqlx.DB) *AccountsRepositoryImpl {
	return &AccountsRepositoryImpl{db: db}
}

var _ AccountsRepository = (*AccountsRepositoryImpl)(nil)

// Postgres caps bind parameters at 65535 per statement; 26 columns per row
// keeps chunks of 500 well under that.
const upsertChunkSize = 500

var accountColumns = []string{
	"id", "time_to_wait_in_mins", "from_name", "from_email", "__typename",
	"type", "smtp_host", "is_smtp_success", "is_imap_success",
	"message_per_day", "daily_sent_count", "smart_sender_flag", "client_id",
	"client", `"isSPFVerified"`, `"isDKIMVerified"`, `"isDMARCVerified"`,
	`"lastVerifiedTime"`, "warmup_status", "warmup_reputation",
	"is_warmup_blocked", "tag_id", "tag_name", "tag_color",
	"email_account_tag_mappings_count", "email_campaign_account_mappings_count",
}

func upsertQuery(rowCount int) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO all_accounts_realtime (")
	sb.WriteString(strings.Join(accountColumns, ", "))
	sb.WriteString(") VALUES ")

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(accountColumns)), ", ") + ")"
	for i := 0; i < rowCount; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(rowPlaceholder)
	}

	sb.WriteString(" ON CONFLICT (id) DO UPDATE SET ")
	for i, col := range accountColumns[1:] {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(" = EXCLUDED.")
		sb.WriteString(col)
	}
	return sb.String()
}

func rowArgs(row model.AccountRow) []any {
	return []any{
		row.ID, row.TimeToWaitMins, row.FromName, row.FromEmail, row.Typename,
		row.Type, row.SMTPHost, row.IsSMTPSuccess, row.IsIMAPSuccess,
		row.MessagePerDay, row.DailySentCount, row.SmartSender, row.ClientID,
		row.Client, row.SPFVerified, row.DKIMVerified, row.DMARCVerified,
		row.LastVerifiedTime, row.WarmupStatus, row.WarmupReputation,
		row.IsWarmupBlocked, row.TagID, row.TagName, row.TagColor,
		row.TagMappingsCount, row.CampaignCount,
	}
}

// UpsertBatch applies the whole batch inside one transaction; either every
// row reaches its terminal state or none do.
func (r *AccountsRepositoryImpl) UpsertBatch(ctx context.Context, rows []model.AccountRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(rows); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(accountColumns))
		for _, row := range chunk {
			args = append(args, rowArgs(row)...)
		}

		query := r.db.Rebind(upsertQuery(len(chunk)))
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (r *AccountsRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT count(*) FROM all_accounts_realtime`)
	return n, err
}

// ListRecent returns a newest-id-first preview of the mirror table.
func (r *AccountsRepositoryImpl) ListRecent(ctx context.Context, limit, offset int) ([]model.AccountRow, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	query := r.db.Rebind(`
		SELECT ` + strings.Join(accountColumns, ", ") + `
		  FROM all_accounts_realtime
		 ORDER BY id DESC
		 LIMIT ? OFFSET ?
	`)

	var rows []model.AccountRow
	if err := r.db.SelectContext(ctx, &rows, query, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}
