// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/forward-convert/internal/convert"
	retry "github.com/pdiddy/forward-convert/internal/httputil"
	"github.com/pdiddy/forward-convert/internal/server"
	"github.com/pdiddy/forward-convert/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
	retry.RetryBaseDelay = time.Millisecond
}

// newRemote starts the real server routes behind httptest.
func newRemote(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(server.New(types.ServerConfig{MaxBodyBytes: 1 << 20}, nil, logger).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_Convert(t *testing.T) {
	ts := newRemote(t)
	c := New(ts.URL+"/", types.ClientConfig{}, ts.Client())

	got, err := c.Convert([]byte(`{"forwards":[{"id":1,"remoteIp":"1.2.3.4","remotePort":8220,"internetPort":22240,"remark":"A"}]}`))
	require.NoError(t, err)
	assert.Equal(t, `{"dest":["1.2.3.4:8220"],"listen_port":22240,"name":"A"}`, got)
}

func TestClient_MatchesLocal(t *testing.T) {
	ts := newRemote(t)
	var remote convert.Converter = New(ts.URL, types.ClientConfig{}, ts.Client())
	var local convert.Converter = convert.RuleConverter{}

	doc := []byte(`{"forwards":[{"id":1,"remoteHost":"h","remotePort":1,"localPort":2},{"id":2,"remoteIp":"i","remotePort":3,"internetPort":4,"remark":"r"}]}`)
	want, err := local.Convert(doc)
	require.NoError(t, err)
	got, err := remote.Convert(doc)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestClient_RemoteError(t *testing.T) {
	ts := newRemote(t)
	c := New(ts.URL, types.ClientConfig{}, ts.Client())

	_, err := c.Convert([]byte(`{"forwards":[{"id":3,"remotePort":100,"internetPort":200}]}`))
	require.Error(t, err)

	var rerr *RemoteError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusBadRequest, rerr.Status)
	assert.Equal(t, "转换失败: 缺少 remoteIp/remoteHost 或 remotePort（id=3）", rerr.Message)
	assert.Equal(t, rerr.Message, err.Error())
}

func TestClient_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL, types.ClientConfig{}, ts.Client()).Convert([]byte("{}"))
	var rerr *RemoteError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, http.StatusBadGateway, rerr.Status)
	assert.Equal(t, "server returned HTTP 502", err.Error())
}

func TestClient_SendsUserAgent(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	cfg := types.ClientConfig{HTTPConfig: types.HTTPConfig{UserAgent: "forward-convert/test"}}
	_, err := New(ts.URL, cfg, ts.Client()).Convert([]byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, "forward-convert/test", gotUA)
}

func TestClient_ContextCancelled(t *testing.T) {
	ts := newRemote(t)
	c := New(ts.URL, types.ClientConfig{}, ts.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ConvertContext(ctx, []byte(`{"forwards":[]}`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_RetriesRateLimitingProxy(t *testing.T) {
	ts := newRemote(t)
	target, err := url.Parse(ts.URL)
	require.NoError(t, err)
	upstream := httputil.NewSingleHostReverseProxy(target)

	var calls int32
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		upstream.ServeHTTP(w, r)
	}))
	defer proxy.Close()

	c := New(proxy.URL, types.ClientConfig{MaxRetries: 2}, proxy.Client())
	got, err := c.Convert([]byte(`{"forwards":[{"id":1,"remoteIp":"h","remotePort":1,"internetPort":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, `{"dest":["h:1"],"listen_port":2,"name":"转发_1"}`, got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
