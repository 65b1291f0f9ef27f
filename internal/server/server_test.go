package server

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/sessionshell/internal/app"
	"github.com/ternarybob/sessionshell/internal/browser"
	"github.com/ternarybob/sessionshell/internal/common"
	"github.com/ternarybob/sessionshell/internal/storage"
)

// startTestServer serves the routes on a random loopback port. The browser host is
// never started, so navigation after a save reports navigated=false.
func startTestServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()

	ts := httptest.NewUnstartedServer(nil)
	t.Cleanup(ts.Close)

	cfg := common.NewDefaultConfig()
	cfg.Storage.Dir = t.TempDir()
	cfg.Server.Port = ts.Listener.Addr().(*net.TCPAddr).Port

	logger := arbor.NewLogger()
	store, err := storage.NewStore(logger, cfg)
	require.NoError(t, err)

	application, err := app.NewWithHost(cfg, logger, store, browser.New(browser.Options{}, logger))
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	ts.Config.Handler = New(application).Handler()
	ts.Start()
	return ts, application
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func TestServer_RootRedirectsToInstructions(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := noRedirectClient().Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, app.InstructionPath, resp.Header.Get("Location"))
}

func TestServer_Pages(t *testing.T) {
	ts, _ := startTestServer(t)

	for _, path := range []string{app.InstructionPath, app.SettingsPath} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_SettingsAPI(t *testing.T) {
	ts, application := startTestServer(t)

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/settings",
		strings.NewReader(`{"url":"https://app.example","username":"u","password":"p"}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var ack map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ack))
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, ack["navigated"], "browser not started")

	stored, err := application.Store.Load(t.Context())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "https://app.example", stored.URL)

	resp, err = http.Get(ts.URL + "/api/url")
	require.NoError(t, err)
	var url map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&url))
	resp.Body.Close()
	assert.Equal(t, "https://app.example", url["url"])

	resp, err = http.Post(ts.URL+"/api/settings", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_RejectsForeignHost(t *testing.T) {
	ts, _ := startTestServer(t)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/settings", nil)
	require.NoError(t, err)
	req.Host = "attacker.example"

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestServer_Health(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
