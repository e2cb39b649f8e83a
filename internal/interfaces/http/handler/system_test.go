package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopfront/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSystemRouter(checks map[string]DependencyCheck) *gin.Engine {
	h := NewSystemHandler("shopfront", "1.2.3", checks)
	return newTestRouter(nil, func(r gin.IRouter) {
		r.GET("/health", h.Health)
		r.GET("/ready", h.Ready)
		r.GET("/system/info", h.GetSystemInfo)
		r.GET("/system/ping", h.Ping)
	})
}

func decodeHealth(t *testing.T, body []byte) HealthResponse {
	t.Helper()
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestSystemHandler_Ready(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	w := testutil.Do(t, newSystemRouter(map[string]DependencyCheck{"database": ok, "redis": ok}), testutil.Request{Path: "/ready"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ready", decodeHealth(t, w.Body.Bytes()).Status)

	w = testutil.Do(t, newSystemRouter(map[string]DependencyCheck{"database": ok, "redis": down}), testutil.Request{Path: "/ready"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decodeHealth(t, w.Body.Bytes())
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, map[string]string{"database": "ok", "redis": "unavailable"}, resp.Checks)
	assert.NotContains(t, w.Body.String(), "refused")
}

func TestSystemHandler_Health(t *testing.T) {
	down := func(context.Context) error { return errors.New("down") }
	w := testutil.Do(t, newSystemRouter(map[string]DependencyCheck{"database": down}), testutil.Request{Path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSystemHandler_Info(t *testing.T) {
	w := testutil.Do(t, newSystemRouter(nil), testutil.Request{Path: "/system/info"})
	info := testutil.DecodeData[SystemInfoResponse](t, w)
	assert.Equal(t, "shopfront", info.Name)
	assert.Equal(t, "1.2.3", info.Version)
	assert.NotEmpty(t, info.GoVersion)

	w = testutil.Do(t, newSystemRouter(nil), testutil.Request{Path: "/system/ping"})
	assert.Equal(t, "pong", testutil.DecodeData[PingResponse](t, w).Message)
}
