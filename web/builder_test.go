package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocrud/ioc/di"
	"github.com/gocrud/ioc/discovery"
	"github.com/gocrud/ioc/example"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHost(t *testing.T, opts ...BuilderOption) *Host {
	t.Helper()
	c := di.New(example.Config{}, di.WithDiscoverer(discovery.Default))
	return New(c, opts...)
}

func get(t *testing.T, h http.Handler, path string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w.Code
}

func TestListBeans(t *testing.T) {
	h := newHost(t)

	var raw []map[string]any
	require.Equal(t, http.StatusOK, get(t, h.Handler(), "/beans", &raw))
	require.Len(t, raw, 3)

	assert.Equal(t, "TestServiceA", raw[0]["name"])
	assert.Equal(t, "testServiceA", raw[0]["alias"])
	assert.Equal(t, "singleton", raw[0]["scope"])
	assert.Equal(t, "READY", raw[0]["state"])
	assert.Equal(t, "prototype", raw[1]["scope"])
	assert.Equal(t, "REGISTERED", raw[1]["state"])

	var beans []BeanInfo
	require.Equal(t, http.StatusOK, get(t, h.Handler(), "/beans", &beans))
	assert.Equal(t, di.ScopePrototype, beans[1].Scope)
}

func TestGetBean(t *testing.T) {
	h := newHost(t)

	var info map[string]any
	require.Equal(t, http.StatusOK, get(t, h.Handler(), "/beans/testServiceC", &info))
	assert.Equal(t, "TestServiceC", info["name"])
	assert.Equal(t, "*service.TestServiceC", info["type"])
	assert.Equal(t, []any{"TestServiceA"}, info["dependencies"])

	assert.Equal(t, http.StatusNotFound, get(t, h.Handler(), "/beans/testServiceX", nil))
}

func TestDependencies(t *testing.T) {
	h := newHost(t)

	var deps []string
	require.Equal(t, http.StatusOK, get(t, h.Handler(), "/beans/TestServiceB/dependencies", &deps))
	assert.Equal(t, []string{"TestServiceA"}, deps)

	assert.Equal(t, http.StatusNotFound, get(t, h.Handler(), "/beans/nobody/dependencies", nil))
}

func TestCycles(t *testing.T) {
	h := newHost(t)

	var cycles []di.Cycle
	require.Equal(t, http.StatusOK, get(t, h.Handler(), "/cycles", &cycles))
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"TestServiceA", "TestServiceC", "TestServiceA"}, cycles[0].Path)
	assert.True(t, cycles[0].Breakable)
}

func TestEmptyContainer(t *testing.T) {
	h := New(di.New(nil))

	var beans []BeanInfo
	require.Equal(t, http.StatusOK, get(t, h.Handler(), "/beans", &beans))
	assert.Empty(t, beans)

	var cycles []di.Cycle
	require.Equal(t, http.StatusOK, get(t, h.Handler(), "/cycles", &cycles))
	assert.Empty(t, cycles)
}

type HTTPClient struct {
	di.Component
}

func TestAliasResolvesForAcronymNames(t *testing.T) {
	c := di.New(di.ScanPaths{"web"}, di.WithTypes(HTTPClient{}))

	beans := Describe(c)
	require.Len(t, beans, 1)
	assert.Equal(t, "HTTPClient", beans[0].Name)
	assert.Equal(t, "hTTPClient", beans[0].Alias)

	for _, info := range Describe(di.New(example.Config{}, di.WithDiscoverer(discovery.Default))) {
		assert.Equal(t, di.NormalizeName(info.Alias), info.Name)
	}

	bean, err := c.GetBean(beans[0].Alias)
	require.NoError(t, err)
	assert.IsType(t, &HTTPClient{}, bean)
}

func TestKebabCaseBeanName(t *testing.T) {
	h := newHost(t)

	var info BeanInfo
	require.Equal(t, http.StatusOK, get(t, h.Handler(), "/beans/test-service-c", &info))
	assert.Equal(t, "TestServiceC", info.Name)

	var deps []string
	require.Equal(t, http.StatusOK, get(t, h.Handler(), "/beans/test_service_b/dependencies", &deps))
	assert.Equal(t, []string{"TestServiceA"}, deps)
}

type pingController struct{}

func (pingController) MountRoutes(router gin.IRouter) {
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func TestStartStop(t *testing.T) {
	h := newHost(t, WithPort(0), WithControllers(pingController{}))

	errCh := make(chan error, 1)
	go func() { errCh <- h.Start(context.Background()) }()

	select {
	case <-h.Ready():
	case err := <-errCh:
		t.Fatalf("Start failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("host did not start")
	}

	_, port, err := net.SplitHostPort(h.Address())
	require.NoError(t, err)
	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%s/ping", port))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, h.Stop(ctx))
	assert.NoError(t, <-errCh)
}
