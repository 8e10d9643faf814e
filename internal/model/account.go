package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RemoteAccount is one email account as returned by the Smartlead
// total-accounts endpoint. Nested objects arrive loosely structured, so they
// are kept raw and decoded defensively during flattening.
type RemoteAccount struct {
	ID             int64   `json:"id"`
	TimeToWaitMins any     `json:"time_to_wait_in_mins"`
	FromName       *string `json:"from_name"`
	FromEmail      *string `json:"from_email"`
	Typename       *string `json:"__typename"`
	Type           *string `json:"type"`
	SMTPHost       *string `json:"smtp_host"`
	IsSMTPSuccess  *bool   `json:"is_smtp_success"`
	IsIMAPSuccess  *bool   `json:"is_imap_success"`
	MessagePerDay  *int64  `json:"message_per_day"`
	DailySentCount any     `json:"daily_sent_count"`
	SmartSender    any     `json:"smart_sender_flag"`
	ClientID       any     `json:"client_id"`
	Client         any     `json:"client"`

	DNSValidation     json.RawMessage `json:"dns_validation_status"`
	WarmupDetails     json.RawMessage `json:"email_warmup_details"`
	TagMappings       []TagMapping    `json:"email_account_tag_mappings"`
	CampaignAggregate json.RawMessage `json:"email_campaign_account_mappings_aggregate"`
}

// TagMapping wraps a single tag attached to an account.
type TagMapping struct {
	Tag json.RawMessage `json:"tag"`
}

// AccountRow is the flat shape persisted in all_accounts_realtime.
// Nullable columns are pointers so absent stays NULL, never "".
type AccountRow struct {
	ID               int64   `db:"id" json:"id"`
	TimeToWaitMins   *string `db:"time_to_wait_in_mins" json:"time_to_wait_in_mins"`
	FromName         *string `db:"from_name" json:"from_name"`
	FromEmail        *string `db:"from_email" json:"from_email"`
	Typename         *string `db:"__typename" json:"__typename"`
	Type             *string `db:"type" json:"type"`
	SMTPHost         *string `db:"smtp_host" json:"smtp_host"`
	IsSMTPSuccess    *bool   `db:"is_smtp_success" json:"is_smtp_success"`
	IsIMAPSuccess    *bool   `db:"is_imap_success" json:"is_imap_success"`
	MessagePerDay    *int64  `db:"message_per_day" json:"message_per_day"`
	DailySentCount   *string `db:"daily_sent_count" json:"daily_sent_count"`
	SmartSender      *string `db:"smart_sender_flag" json:"smart_sender_flag"`
	ClientID         *string `db:"client_id" json:"client_id"`
	Client           *string `db:"client" json:"client"`
	SPFVerified      *string `db:"isSPFVerified" json:"isSPFVerified"`
	DKIMVerified     *string `db:"isDKIMVerified" json:"isDKIMVerified"`
	DMARCVerified    *string `db:"isDMARCVerified" json:"isDMARCVerified"`
	LastVerifiedTime *string `db:"lastVerifiedTime" json:"lastVerifiedTime"`
	WarmupStatus     *string `db:"warmup_status" json:"warmup_status"`
	WarmupReputation *string `db:"warmup_reputation" json:"warmup_reputation"`
	IsWarmupBlocked  *string `db:"is_warmup_blocked" json:"is_warmup_blocked"`
	TagID            *string `db:"tag_id" json:"tag_id"`
	TagName          *string `db:"tag_name" json:"tag_name"`
	TagColor         *string `db:"tag_color" json:"tag_color"`
	TagMappingsCount *string `db:"email_account_tag_mappings_count" json:"email_account_tag_mappings_count"`
	CampaignCount    *string `db:"email_campaign_account_mappings_count" json:"email_campaign_account_mappings_count"`
}

// Flatten collapses the nested account into one mirror row. It never fails:
// missing or malformed nested objects degrade to NULL columns.
func (a RemoteAccount) Flatten() AccountRow {
	row := AccountRow{
		ID:             a.ID,
		TimeToWaitMins: toText(a.TimeToWaitMins),
		FromName:       a.FromName,
		FromEmail:      a.FromEmail,
		Typename:       a.Typename,
		Type:           a.Type,
		SMTPHost:       a.SMTPHost,
		IsSMTPSuccess:  a.IsSMTPSuccess,
		IsIMAPSuccess:  a.IsIMAPSuccess,
		MessagePerDay:  a.MessagePerDay,
		DailySentCount: toText(a.DailySentCount),
		SmartSender:    toText(a.SmartSender),
		ClientID:       toText(a.ClientID),
		Client:         toText(a.Client),
	}

	if dns := decodeObject(a.DNSValidation); dns != nil {
		row.SPFVerified = toText(dns["isSPFVerified"])
		row.DKIMVerified = toText(dns["isDKIMVerified"])
		row.DMARCVerified = toText(dns["isDMARCVerified"])
		row.LastVerifiedTime = toText(dns["lastVerifiedTime"])
	}

	if warmup := decodeObject(a.WarmupDetails); warmup != nil {
		row.WarmupStatus = toText(warmup["status"])
		row.WarmupReputation = toText(warmup["warmup_reputation"])
		row.IsWarmupBlocked = toText(warmup["is_warmup_blocked"])
	}

	row.TagID, row.TagName, row.TagColor = flattenTags(a.TagMappings)
	// count of mappings on the record, not of flattened tag entries
	row.TagMappingsCount = toText(float64(len(a.TagMappings)))

	if agg := decodeObject(a.CampaignAggregate); agg != nil {
		if inner, ok := agg["aggregate"].(map[string]any); ok {
			row.CampaignCount = toText(inner["count"])
		}
	}

	return row
}

// flattenTags joins tag ids, names and colors into comma-separated fields,
// preserving the order the API returned them. A mapping without a well-formed
// tag object is skipped; an empty accumulator yields NULL.
func flattenTags(mappings []TagMapping) (ids, names, colors *string) {
	var idAcc, nameAcc, colorAcc []string
	for _, m := range mappings {
		var tag map[string]any
		if len(m.Tag) == 0 || json.Unmarshal(m.Tag, &tag) != nil || tag == nil {
			continue
		}
		if v, ok := tag["id"]; ok && v != nil {
			idAcc = append(idAcc, text(v))
		}
		if v, ok := tag["name"]; ok && v != nil {
			nameAcc = append(nameAcc, text(v))
		}
		if v, ok := tag["color"]; ok && v != nil {
			colorAcc = append(colorAcc, text(v))
		}
	}
	return joined(idAcc), joined(nameAcc), joined(colorAcc)
}

func joined(acc []string) *string {
	if len(acc) == 0 {
		return nil
	}
	s := strings.Join(acc, ",")
	return &s
}

// decodeObject returns the value as a key-value map, or nil when it is
// absent, null, or not an object.
func decodeObject(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

// toText coerces a decoded JSON value to its text column form,
// keeping nil as nil (NULL, not empty string).
func toText(v any) *string {
	if v == nil {
		return nil
	}
	s := text(v)
	return &s
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; integers render without a fraction
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
