package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uranium24/Fresh-Price/internal/service/ratelimit"
	"github.com/uranium24/Fresh-Price/pkg/config"
	xhttp "github.com/uranium24/Fresh-Price/pkg/http"
	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestRunContextServesUntilCancelled(t *testing.T) {
	port := freePort(t)
	cfg := &config.Config{}
	cfg.Server.Port = port
	cfg.Source.Type = "csv"

	srv := xhttp.NewServer(applogger.Nop(), nil,
		xhttp.WithHost("127.0.0.1"),
		xhttp.WithPort(port),
		xhttp.WithMetrics("/metrics", prometheus.NewRegistry()),
		xhttp.WithTimeouts(0, 0, time.Second),
	)
	app := New(cfg, applogger.Nop(), srv, nil, ratelimit.New(100, 10))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.RunContext(ctx) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/metrics", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop")
	}
}
