package ec2

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/chainguard-dev/clog"
)

var dialer = &net.Dialer{
	Timeout: 3 * time.Second,
}

// WaitTCP waits for a TCP port on 'host' to become reachable. The caller's
// context bounds the overall wait.
func WaitTCP(ctx context.Context, host string, port uint16) error {
	log := clog.FromContext(ctx).With("host", host, "port", port)
	target := net.JoinHostPort(host, strconv.Itoa(int(port)))

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			conn, err := dialer.DialContext(ctx, "tcp", target)
			if err != nil {
				log.Debug("TCP port not yet reachable")
				continue
			}
			if err := conn.Close(); err != nil {
				log.Warn("encountered error closing TCP connection", "error", err)
			}
			log.Debug("TCP port reachable")
			return nil
		}
	}
}

// WaitHTTP polls 'url' until it answers 200, re-checking every 'interval'.
// Connection refusals are expected while the boot script is still installing
// the web server and are not errors; only context expiry ends the wait early.
func WaitHTTP(ctx context.Context, url string, interval time.Duration) error {
	log := clog.FromContext(ctx).With("url", url)
	if interval <= 0 {
		interval = 5 * time.Second
	}
	client := &http.Client{Timeout: 5 * time.Second}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("building readiness request: %w", err)
			}
			res, err := client.Do(req)
			if err != nil {
				log.Debug("web server not yet answering", "error", err)
				continue
			}
			_ = res.Body.Close()
			if res.StatusCode == http.StatusOK {
				log.Info("web server is up")
				return nil
			}
			log.Debug("web server answered, not ready", "status", res.StatusCode)
		}
	}
}
