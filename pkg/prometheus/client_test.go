package prometheus

import (
	"io"
	"net/http"
	"testing"

	"github.com/lk2023060901/grandline/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Namespace = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.HTTPServer.Enabled = true
	cfg.HTTPServer.Addr = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestServeMetrics(t *testing.T) {
	c, err := New(&Config{
		Namespace:  "gltest",
		HTTPServer: HTTPServerConfig{Enabled: true, Addr: "127.0.0.1:0"},
	}, logger.NewNoop())
	require.NoError(t, err)

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: c.Namespace(),
		Name:      "requests_total",
		Help:      "requests",
	})
	require.NoError(t, c.Registry().Register(counter))
	counter.Add(3)

	require.NoError(t, c.Start())
	defer c.Stop()

	resp, err := http.Get("http://" + c.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "gltest_requests_total 3")

	require.NoError(t, c.Stop())
	require.NoError(t, c.Stop())
	assert.ErrorIs(t, c.Start(), ErrClientClosed)
}

func TestStartDisabled(t *testing.T) {
	c, err := New(nil, nil)
	require.NoError(t, err)
	require.NoError(t, c.Start())
	assert.Empty(t, c.Addr())
	require.NoError(t, c.Stop())
}
