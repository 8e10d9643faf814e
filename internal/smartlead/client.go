package smartlead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/outboundops/smartlead-sync/internal/metrics"
	"github.com/outboundops/smartlead-sync/internal/model"
)

// ErrUnauthorized is returned when the API answers 401: the stored bearer
// token is invalid or expired and must be replaced by the operator.
var ErrUnauthorized = errors.New("smartlead: 401 unauthorized, replace the bearer token")

// StatusError is any non-2xx, non-401 response from the API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("smartlead: unexpected status %d: %s", e.Status, e.Body)
}

// Client pages through the Smartlead total-accounts endpoint.
type Client struct {
	endpoint string
	limit    int
	client   *http.Client
}

// NewClient builds a client with the given page size and per-request timeout.
func NewClient(endpoint string, limit int, timeout time.Duration) *Client {
	if limit <= 0 {
		limit = 10000
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		limit:    limit,
		client:   &http.Client{Timeout: timeout},
	}
}

type pagePayload struct {
	Data struct {
		EmailAccounts json.RawMessage `json:"email_accounts"`
	} `json:"data"`
}

// FetchAllAccounts requests pages of offset/limit until a page comes back
// with fewer than limit records, flattening every account on the way. Each
// page is attempted exactly once; any failure aborts the whole fetch.
//
// A final page holding exactly limit records cannot be told apart from a
// non-final one, so one extra request (returning an empty page) is issued in
// that case. That extra round trip is intentional.
func (c *Client) FetchAllAccounts(ctx context.Context, bearer string) ([]model.AccountRow, error) {
	var rows []model.AccountRow
	for offset := 0; ; offset += c.limit {
		accounts, err := c.fetchPage(ctx, bearer, offset)
		if err != nil {
			return nil, err
		}
		metrics.PagesFetched.Inc()

		for _, a := range accounts {
			rows = append(rows, a.Flatten())
		}
		if len(accounts) < c.limit {
			return rows, nil
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, bearer string, offset int) ([]model.RemoteAccount, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("smartlead: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(c.limit))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(bearer))

	res, err := c.client.Do(req)
	if err != nil {
		// transport failure or per-request timeout
		return nil, fmt.Errorf("smartlead: fetch offset=%d: %w", offset, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("smartlead: read body offset=%d: %w", offset, err)
	}
	if res.StatusCode/100 != 2 {
		return nil, &StatusError{Status: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload pagePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("smartlead: decode page offset=%d: %w", offset, err)
	}

	// data.email_accounts absent or malformed counts as an empty page
	if len(payload.Data.EmailAccounts) == 0 {
		return nil, nil
	}
	var accounts []model.RemoteAccount
	if err := json.Unmarshal(payload.Data.EmailAccounts, &accounts); err != nil {
		return nil, nil
	}
	return accounts, nil
}
