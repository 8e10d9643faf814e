package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outboundops/smartlead-sync/internal/credential"
	"github.com/outboundops/smartlead-sync/internal/model"
	syncSvc "github.com/outboundops/smartlead-sync/internal/service/sync"
	"github.com/outboundops/smartlead-sync/internal/smartlead"
)

type stubAccounts struct {
	count int64
	rows  []model.AccountRow
}

func (s *stubAccounts) UpsertBatch(_ context.Context, rows []model.AccountRow) (int, error) {
	s.rows = rows
	return len(rows), nil
}
func (s *stubAccounts) Count(context.Context) (int64, error) { return s.count, nil }
func (s *stubAccounts) ListRecent(context.Context, int, int) ([]model.AccountRow, error) {
	return s.rows, nil
}

type stubRuns struct {
	latest *model.SyncRun
	runs   []model.SyncRun
}

func (s *stubRuns) Open(context.Context) (int64, error) { return 1, nil }
func (s *stubRuns) Close(context.Context, int64, bool, string, *int) error {
	return nil
}
func (s *stubRuns) Latest(context.Context) (*model.SyncRun, error) { return s.latest, nil }
func (s *stubRuns) ListRecent(context.Context, int) ([]model.SyncRun, error) {
	return s.runs, nil
}

type stubSettings struct {
	token string
}

func (s *stubSettings) GetBearer(context.Context) (string, error) { return s.token, nil }
func (s *stubSettings) SetBearer(_ context.Context, token string) error {
	s.token = token
	return nil
}
func (s *stubSettings) ClearBearer(context.Context) error {
	s.token = ""
	return nil
}

type stubFetcher struct {
	rows []model.AccountRow
	err  error
}

func (s *stubFetcher) FetchAllAccounts(context.Context, string) ([]model.AccountRow, error) {
	return s.rows, s.err
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func TestStatusHandler(t *testing.T) {
	ok := true
	msg := "ok: upserted 3"
	rows := 3
	runs := &stubRuns{latest: &model.SyncRun{ID: 9, OK: &ok, Message: &msg, RowsUpserted: &rows}}

	rec := doRequest(t, statusHandler(&stubAccounts{count: 1234}, runs), http.MethodGet, "/v1/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows    int64          `json:"rows"`
		LastRun *model.SyncRun `json:"last_run"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1234), resp.Rows)
	require.NotNil(t, resp.LastRun)
	assert.Equal(t, int64(9), resp.LastRun.ID)
}

func TestTriggerSyncHandler(t *testing.T) {
	t.Run("successful run returns the count", func(t *testing.T) {
		accounts := &stubAccounts{}
		svc := syncSvc.New(&stubFetcher{rows: []model.AccountRow{{ID: 1}, {ID: 2}}}, accounts, &stubRuns{}, nil)
		chain := credential.Chain{credential.StaticSource("tok")}

		rec := doRequest(t, triggerSyncHandler(svc, chain), http.MethodPost, "/v1/sync", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"rows_upserted":2`)
	})

	t.Run("missing bearer is a client error", func(t *testing.T) {
		svc := syncSvc.New(&stubFetcher{}, &stubAccounts{}, &stubRuns{}, nil)
		chain := credential.Chain{credential.StaticSource("")}

		rec := doRequest(t, triggerSyncHandler(svc, chain), http.MethodPost, "/v1/sync", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("expired token maps to bad gateway with guidance", func(t *testing.T) {
		svc := syncSvc.New(&stubFetcher{err: smartlead.ErrUnauthorized}, &stubAccounts{}, &stubRuns{}, nil)
		chain := credential.Chain{credential.StaticSource("expired")}

		rec := doRequest(t, triggerSyncHandler(svc, chain), http.MethodPost, "/v1/sync", "")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "replace the bearer token")
	})
}

func TestBearerHandlers(t *testing.T) {
	t.Run("set stores the trimmed token", func(t *testing.T) {
		settings := &stubSettings{}
		rec := doRequest(t, setBearerHandler(settings), http.MethodPut, "/v1/bearer", `{"token":"  tok-9 "}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "tok-9", settings.token)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		settings := &stubSettings{token: "keep"}
		rec := doRequest(t, setBearerHandler(settings), http.MethodPut, "/v1/bearer", `{"token":"   "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "keep", settings.token)
	})

	t.Run("clear removes the token", func(t *testing.T) {
		settings := &stubSettings{token: "old"}
		rec := doRequest(t, clearBearerHandler(settings), http.MethodDelete, "/v1/bearer", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Empty(t, settings.token)
	})
}

func TestListRunsHandler(t *testing.T) {
	ok := false
	msg := "smartlead: 401 unauthorized, replace the bearer token"
	runs := &stubRuns{runs: []model.SyncRun{{ID: 2, OK: &ok, Message: &msg}, {ID: 1}}}

	rec := doRequest(t, listRunsHandler(runs), http.MethodGet, "/v1/runs", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.Contains(t, rec.Body.String(), "401 unauthorized")
}
