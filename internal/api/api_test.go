package api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stationscore/internal/api"
	"github.com/mcoot/stationscore/internal/api/apierr"
	"github.com/mcoot/stationscore/internal/api/response"
	"github.com/mcoot/stationscore/internal/factory"
	"github.com/mcoot/stationscore/internal/model"
	"github.com/mcoot/stationscore/internal/services/users"
	"github.com/mcoot/stationscore/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
	admin   string
	staff   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		AuthService:    app.AuthService,
		UserService:    app.UserService,
		RosterService:  app.RosterService,
		StationManager: app.StationManager,
		LedgerEngine:   app.LedgerEngine,
		LedgerQuery:    app.LedgerQuery,
		Hub:            app.Hub,
	})

	ts := &testServer{handler: router, app: app}

	ctx := context.Background()
	_, err := app.UserService.Create(ctx, users.CreateInput{Username: "admin", Password: "adminpw", Rank: model.RankAdmin, Code: "ADMIN1"})
	require.NoError(t, err)
	_, err = app.UserService.Create(ctx, users.CreateInput{Username: "staff", Password: "staffpw", Rank: 1, Code: "STAFF1"})
	require.NoError(t, err)

	ts.admin = ts.login(t, "admin", "adminpw")
	ts.staff = ts.login(t, "staff", "staffpw")
	return ts
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(data)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionToken)
	return resp.SessionToken
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[apierr.ErrorResponse](t, rr).Error.Code
}

// setup creates player 07 and one station, returning their IDs
func (ts *testServer) setup(t *testing.T) (string, string) {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"name": "Red", "number": "07", "class": "A"}, ts.staff)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	player := decode[response.Player](t, rr)

	rr = ts.request(http.MethodPost, "/api/v1/stations", map[string]any{"name": "Archery", "number": "1", "maxPoints": 20}, ts.admin)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	station := decode[response.Station](t, rr)
	return player.ID, station.ID
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"status":"ok","viewers":0}`, rr.Body.String())
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeInvalidCredentials, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/auth/login", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCodeLoginAndMe(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/auth/code-login", map[string]string{"code": "staff1"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	auth := decode[response.AuthResponse](t, rr)
	assert.Equal(t, "staff", auth.User.Username)

	rr = ts.request(http.MethodGet, "/api/v1/auth/me", nil, auth.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[response.User](t, rr)
	assert.Equal(t, "staff", me.Username)
	assert.False(t, me.IsAdmin)
	assert.NotContains(t, rr.Body.String(), "$2a$")
}

func TestLogout(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/auth/logout", nil, ts.staff)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodGet, "/api/v1/auth/me", nil, ts.staff)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/players", "/api/v1/stations", "/api/v1/points", "/api/v1/auth/me"} {
		rr := ts.request(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.Equal(t, apierr.CodeUnauthorized, errorCode(t, rr))
	}
}

func TestAdminOnlyRoutes(t *testing.T) {
	ts := newTestServer(t)
	playerID, stationID := ts.setup(t)

	cases := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/users"},
		{http.MethodPost, "/api/v1/stations"},
		{http.MethodPut, "/api/v1/stations/" + stationID + "/status/on"},
		{http.MethodPatch, "/api/v1/stations/" + stationID + "/delay"},
		{http.MethodDelete, "/api/v1/players/" + playerID},
		{http.MethodDelete, "/api/v1/points/anything"},
		{http.MethodGet, "/api/v1/audit"},
	}
	for _, tc := range cases {
		rr := ts.request(tc.method, tc.path, map[string]any{}, ts.staff)
		assert.Equal(t, http.StatusForbidden, rr.Code, tc.method+" "+tc.path)
	}
}

func TestRegisterPoints(t *testing.T) {
	ts := newTestServer(t)
	playerID, stationID := ts.setup(t)

	rr := ts.request(http.MethodPost, "/api/v1/points", map[string]any{
		"playerNumber": "07",
		"stationId":    stationID,
		"points":       10,
		"description":  "first round",
	}, ts.staff)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	result := decode[response.LedgerResult](t, rr)
	assert.Equal(t, playerID, result.Entry.PlayerID)
	assert.Equal(t, int64(10), result.Entry.Points)
	assert.NotEmpty(t, result.Entry.RecordedBy)
	require.Len(t, result.Players, 1)
	assert.Equal(t, int64(10), result.Players[0].Points)
	assert.Equal(t, stationID, result.Players[0].LastStation)
}

func TestRegisterPointsAliasesAndCoercion(t *testing.T) {
	ts := newTestServer(t)
	_, stationID := ts.setup(t)

	rr := ts.request(http.MethodPost, "/api/v1/points", map[string]any{
		"userNumber": 7,
		"stationId":  stationID,
		"points":     "-3",
	}, ts.staff)
	// Number 7 is not "07"
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePlayerNotFound, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/points", map[string]any{
		"userNumber": "07",
		"stationId":  stationID,
		"points":     "-3",
	}, ts.staff)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, int64(-3), decode[response.LedgerResult](t, rr).Players[0].Points)
}

func TestRegisterPointsValidation(t *testing.T) {
	ts := newTestServer(t)
	_, stationID := ts.setup(t)

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"fractional points", map[string]any{"playerNumber": "07", "stationId": stationID, "points": 1.5}, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"text points", map[string]any{"playerNumber": "07", "stationId": stationID, "points": "ten"}, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"missing points", map[string]any{"playerNumber": "07", "stationId": stationID}, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"missing player", map[string]any{"stationId": stationID, "points": 1}, http.StatusBadRequest, apierr.CodeInvalidRequest},
		{"unknown player", map[string]any{"playerNumber": "99", "stationId": stationID, "points": 1}, http.StatusNotFound, apierr.CodePlayerNotFound},
		{"unknown station", map[string]any{"playerNumber": "07", "stationId": "nope", "points": 1}, http.StatusNotFound, apierr.CodeStationNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/v1/points", tc.body, ts.staff)
			assert.Equal(t, tc.status, rr.Code, rr.Body.String())
			assert.Equal(t, tc.code, errorCode(t, rr))
		})
	}

	rr := ts.request(http.MethodGet, "/api/v1/points", nil, ts.staff)
	assert.Equal(t, "[]\n", rr.Body.String())
}

func TestEditAndRevokePoints(t *testing.T) {
	ts := newTestServer(t)
	playerID, stationID := ts.setup(t)

	rr := ts.request(http.MethodPost, "/api/v1/points", map[string]any{"playerNumber": "07", "stationId": stationID, "points": 10}, ts.staff)
	require.Equal(t, http.StatusCreated, rr.Code)
	entryID := decode[response.LedgerResult](t, rr).Entry.ID

	rr = ts.request(http.MethodPatch, "/api/v1/points/"+entryID, map[string]any{"points": 15}, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	edited := decode[response.LedgerResult](t, rr)
	assert.Equal(t, int64(15), edited.Entry.Points)
	assert.Equal(t, int64(15), edited.Players[0].Points)

	rr = ts.request(http.MethodGet, "/api/v1/points/"+entryID, nil, ts.staff)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(15), decode[response.PointLog](t, rr).Points)

	rr = ts.request(http.MethodGet, "/api/v1/players/"+playerID+"/audit", nil, ts.staff)
	require.Equal(t, http.StatusOK, rr.Code)
	audit := decode[response.PlayerAudit](t, rr)
	assert.True(t, audit.Consistent)
	assert.Equal(t, int64(15), audit.Ledger)

	rr = ts.request(http.MethodDelete, "/api/v1/points/"+entryID, nil, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	revoked := decode[response.LedgerResult](t, rr)
	assert.Equal(t, int64(0), revoked.Players[0].Points)

	rr = ts.request(http.MethodDelete, "/api/v1/points/"+entryID, nil, ts.admin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeLogEntryNotFound, errorCode(t, rr))
}

func TestRevokeOrphanedEntryWarns(t *testing.T) {
	ts := newTestServer(t)
	playerID, stationID := ts.setup(t)

	rr := ts.request(http.MethodPost, "/api/v1/points", map[string]any{"playerNumber": "07", "stationId": stationID, "points": 4}, ts.staff)
	require.Equal(t, http.StatusCreated, rr.Code)
	entryID := decode[response.LedgerResult](t, rr).Entry.ID

	rr = ts.request(http.MethodDelete, "/api/v1/players/"+playerID, nil, ts.admin)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/points/"+entryID, nil, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decode[response.LedgerResult](t, rr)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, string(model.WarningOrphanedReference), result.Warnings[0].Kind)
	assert.Equal(t, "orphaned log revoked without balance correction", result.Warnings[0].Message)
}

func TestQueryPointsFilters(t *testing.T) {
	ts := newTestServer(t)
	playerID, stationID := ts.setup(t)

	for _, points := range []int{1, 2, 3} {
		rr := ts.request(http.MethodPost, "/api/v1/points", map[string]any{"playerNumber": "07", "stationId": stationID, "points": points}, ts.staff)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := ts.request(http.MethodGet, "/api/v1/points?playerId="+playerID+"&stationId="+stationID, nil, ts.staff)
	require.Equal(t, http.StatusOK, rr.Code)
	entries := decode[[]response.PointLog](t, rr)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(3), entries[0].Points)
	assert.Equal(t, int64(1), entries[2].Points)

	rr = ts.request(http.MethodGet, "/api/v1/points?stationId=other", nil, ts.staff)
	assert.Empty(t, decode[[]response.PointLog](t, rr))
}

func TestStationStatusAndDelay(t *testing.T) {
	ts := newTestServer(t)
	_, stationID := ts.setup(t)
	base := "/api/v1/stations/" + stationID

	rr := ts.request(http.MethodPut, base+"/status/on", nil, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[response.Station](t, rr).Status)

	rr = ts.request(http.MethodPatch, base+"/status", map[string]any{"status": "off"}, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[response.Station](t, rr).Status)

	rr = ts.request(http.MethodPatch, base+"/status", map[string]any{"status": true}, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[response.Station](t, rr).Status)

	rr = ts.request(http.MethodPut, base+"/delay/30", nil, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 30, decode[response.Station](t, rr).Delay)

	rr = ts.request(http.MethodPatch, base+"/delay", map[string]any{"delay": 45}, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 45, decode[response.Station](t, rr).Delay)

	rr = ts.request(http.MethodPut, base+"/delay/soon", nil, ts.admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = ts.request(http.MethodPatch, base+"/delay", map[string]any{"delay": -1}, ts.admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = ts.request(http.MethodPatch, base+"/delay", map[string]any{"delay": 2.5}, ts.admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = ts.request(http.MethodPut, base+"/delay/2.5", nil, ts.admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPut, "/api/v1/stations/missing/status/on", nil, ts.admin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeStationNotFound, errorCode(t, rr))
}

func TestPlayerCrud(t *testing.T) {
	ts := newTestServer(t)
	playerID, _ := ts.setup(t)

	rr := ts.request(http.MethodPost, "/api/v1/players", map[string]string{"name": "Dup", "number": "07", "class": "B"}, ts.staff)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNumberTaken, errorCode(t, rr))

	rr = ts.request(http.MethodPut, "/api/v1/players/"+playerID, map[string]any{"name": "Crimson", "points": 500}, ts.staff)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[response.Player](t, rr)
	assert.Equal(t, "Crimson", updated.Name)
	assert.Equal(t, int64(0), updated.Points)

	rr = ts.request(http.MethodGet, "/api/v1/players", nil, ts.staff)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]response.Player](t, rr), 1)
}

func TestUserAdministration(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/users", map[string]any{
		"username": "carol", "password": "pw", "rank": 1, "code": "CAROL1",
	}, ts.admin)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	carol := decode[response.User](t, rr)

	rr = ts.request(http.MethodPut, "/api/v1/users/"+carol.ID, map[string]any{"email": "carol@example.com"}, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "carol@example.com", decode[response.User](t, rr).Email)

	rr = ts.request(http.MethodGet, "/api/v1/users", nil, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]response.User](t, rr), 3)

	rr = ts.request(http.MethodGet, "/api/v1/users/login-logs?limit=1", nil, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]response.LoginLog](t, rr), 1)

	rr = ts.request(http.MethodDelete, "/api/v1/users/"+carol.ID, nil, ts.admin)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	me := decode[response.User](t, ts.request(http.MethodGet, "/api/v1/auth/me", nil, ts.admin))
	rr = ts.request(http.MethodDelete, "/api/v1/users/"+me.ID, nil, ts.admin)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeLastAdmin, errorCode(t, rr))
}

func TestStationEventsStream(t *testing.T) {
	ts := newTestServer(t)
	_, stationID := ts.setup(t)

	server := httptest.NewServer(ts.handler)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/events/stations?token="+ts.staff, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "event: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "event: "))
			}
		}
	}
	require.Equal(t, "connected", readEvent())

	rr := ts.request(http.MethodPut, "/api/v1/stations/"+stationID+"/status/on", nil, ts.admin)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, "stations-changed", readEvent())
}
