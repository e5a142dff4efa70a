package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/gridpath"
	"github.com/pdrpinto/gridpath/internal/ctxlog"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(context.Background(), ctxlog.Discard(), Defaults{Width: 20, Height: 10, Density: 0.5, Clusters: 4, Steps: 50})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return srv, ts
}

func doJSON(t *testing.T, method, url string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createOpenSession(t *testing.T, ts *httptest.Server) SessionResponse {
	t.Helper()
	var created SessionResponse
	code := doJSON(t, http.MethodPost, ts.URL+"/sessions?w=6&h=5&density=0&seed=11", &created)
	require.Equal(t, http.StatusCreated, code)
	return created
}

func manhattan(a, b point) int {
	return int(gridpath.Manhattan(gridpath.Node{X: a[0], Y: a[1]}, gridpath.Node{X: b[0], Y: b[1]}))
}

func TestCreateSession(t *testing.T) {
	_, ts := newTestServer(t)
	created := createOpenSession(t, ts)

	_, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, created.W)
	assert.Equal(t, 5, created.H)
	assert.Len(t, created.Rows, 5)
	assert.NotEqual(t, created.Start, created.Goal)

	var health map[string]any
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/health", &health))
	assert.EqualValues(t, 1, health["sessions"])
}

func TestCreateSession_TooLarge(t *testing.T) {
	_, ts := newTestServer(t)
	code := doJSON(t, http.MethodPost, ts.URL+"/sessions?w=1000&h=5", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestNextRunsToCompletion(t *testing.T) {
	_, ts := newTestServer(t)
	created := createOpenSession(t, ts)

	var snap Snapshot
	for i := 0; i < 6*5+1; i++ {
		require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/sessions/"+created.ID+"/next", &snap))
		if snap.Done {
			break
		}
	}
	require.True(t, snap.Done)
	require.True(t, snap.Found)
	assert.Equal(t, created.Start, snap.Path[0])
	assert.Equal(t, created.Goal, snap.Path[len(snap.Path)-1])
	assert.Len(t, snap.Path, manhattan(created.Start, created.Goal)+1)

	var resp PathResponse
	require.Equal(t, http.StatusOK, doJSON(t, http.MethodGet, ts.URL+"/sessions/"+created.ID+"/path", &resp))
	assert.Equal(t, snap.Path, resp.Path)
	assert.Equal(t, len(snap.Path), resp.Length)
}

func TestPath_Explicit(t *testing.T) {
	_, ts := newTestServer(t)
	created := createOpenSession(t, ts)

	var resp PathResponse
	code := doJSON(t, http.MethodGet, ts.URL+"/sessions/"+created.ID+"/path?from=0,0&to=2,2", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []point{{0, 0}, {0, 1}, {0, 2}, {1, 2}, {2, 2}}, resp.Path)
	assert.Equal(t, 5, resp.Length)
}

func TestPath_Errors(t *testing.T) {
	_, ts := newTestServer(t)
	created := createOpenSession(t, ts)
	base := ts.URL + "/sessions/" + created.ID + "/path"

	tests := map[string]struct {
		url  string
		want int
	}{
		"bad point":       {base + "?from=zero,0", http.StatusBadRequest},
		"missing comma":   {base + "?to=3", http.StatusBadRequest},
		"outside grid":    {base + "?from=-1,0", http.StatusUnprocessableEntity},
		"same endpoints":  {base + "?from=1,1&to=1,1", http.StatusUnprocessableEntity},
		"unknown session": {ts.URL + "/sessions/" + uuid.NewString() + "/path", http.StatusNotFound},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, doJSON(t, http.MethodGet, tc.url, nil))
		})
	}
}

func TestDeleteSession(t *testing.T) {
	_, ts := newTestServer(t)
	created := createOpenSession(t, ts)
	url := ts.URL + "/sessions/" + created.ID

	assert.Equal(t, http.StatusNoContent, doJSON(t, http.MethodDelete, url, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodDelete, url, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, url+"/next", nil))
}

func TestCloseStopsSessions(t *testing.T) {
	srv, ts := newTestServer(t)
	created := createOpenSession(t, ts)

	srv.mu.Lock()
	sess := srv.sessions[created.ID]
	srv.mu.Unlock()
	require.NotNil(t, sess)

	srv.Close()
	_, err := sess.controller.Submit(gridpath.Request{Grid: sess.grid, Start: sess.start, End: sess.goal})
	assert.ErrorIs(t, err, gridpath.ErrShutdown)
	assert.Equal(t, http.StatusNotFound, doJSON(t, http.MethodGet, ts.URL+"/sessions/"+created.ID+"/next", nil))
}
