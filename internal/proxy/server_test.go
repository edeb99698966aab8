package proxy

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rewol/rewol/internal/hosts"
	"github.com/rewol/rewol/internal/models"
	"github.com/rewol/rewol/internal/wol"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Digest of "swordfish", PBKDF2-HMAC-SHA256, 600000 iterations.
const (
	testHash = "TWtuN1AmOpCGZB8Fp12KA2SeDWTLepbNuZcSh3nZO20="
	testSalt = "I8NsnxI3GHQQhPUNEvlAFPJsXtJTac3VhAjGs82bhE4="
)

type mockWOLClient struct {
	wakeFunc func(target string, mac net.HardwareAddr) error
	calls    int
}

func (m *mockWOLClient) Wake(target string, mac net.HardwareAddr) error {
	m.calls++
	if m.wakeFunc != nil {
		return m.wakeFunc(target, mac)
	}
	return nil
}

func testServer(t *testing.T, client wol.Client) (*gin.Engine, *hosts.Table) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mac, err := net.ParseMAC("AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)

	cfg := &models.ProxyConfig{
		Port:          11001,
		CheckInterval: 30 * time.Second,
		Password:      models.PasswordConfig{Hash: testHash, Salt: testSalt},
		Hosts: []models.Host{
			{Name: "alpha", MACAddress: mac, TargetAddr: "192.168.1.10", Broadcast: "255.255.255.255"},
		},
	}

	logger := zerolog.New(io.Discard)
	table := hosts.NewTable(cfg.Hosts)
	dispatcher := wol.NewWithClient(table, logger, client)
	return NewServer(cfg, table, dispatcher, logger).Router(), table
}

func postWOL(router *gin.Engine, host, password string) *httptest.ResponseRecorder {
	form := url.Values{}
	if host != "" {
		form.Set("host", host)
	}
	if password != "" {
		form.Set("password", password)
	}

	req := httptest.NewRequest(http.MethodPost, "/wol", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleWOL_MissingParameters(t *testing.T) {
	router, _ := testServer(t, &mockWOLClient{})

	assert.Equal(t, http.StatusBadRequest, postWOL(router, "alpha", "").Code)
	assert.Equal(t, http.StatusBadRequest, postWOL(router, "", "swordfish").Code)
}

func TestHandleWOL_AuthCheckedBeforeExistence(t *testing.T) {
	client := &mockWOLClient{}
	router, _ := testServer(t, client)

	// Wrong password with a valid host: unauthorized, not found is never
	// revealed.
	w := postWOL(router, "alpha", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Wrong password with an unknown host: still unauthorized.
	w = postWOL(router, "nosuchhost", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Zero(t, client.calls)
}

func TestHandleWOL_UnknownHost(t *testing.T) {
	client := &mockWOLClient{}
	router, _ := testServer(t, client)

	w := postWOL(router, "nosuchhost", "swordfish")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, client.calls)
}

func TestHandleWOL_Accepted(t *testing.T) {
	client := &mockWOLClient{}
	router, table := testServer(t, client)

	w := postWOL(router, "alpha", "swordfish")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, uint64(1), table.Snapshot()[0].WOLCount)
}

func TestHandleWOL_DispatchFailure(t *testing.T) {
	client := &mockWOLClient{
		wakeFunc: func(target string, mac net.HardwareAddr) error {
			return errors.New("network down")
		},
	}
	router, table := testServer(t, client)

	w := postWOL(router, "alpha", "swordfish")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	// The attempt still counts.
	assert.Equal(t, uint64(1), table.Snapshot()[0].WOLCount)
}

func TestHandleStatus(t *testing.T) {
	router, table := testServer(t, &mockWOLClient{})
	table.SetUp("alpha", true)
	table.IncrementWOL("alpha")

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "rewol_service_uptime")
	assert.Contains(t, body, `rewol_host_up{host="alpha"} 1`)
	assert.Contains(t, body, `rewol_host_wol{host="alpha"} 1`)
}
