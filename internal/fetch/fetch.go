// Package fetch downloads site assets over HTTP to local files, for later
// publishing to a bucket or an instance.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/chainguard-dev/clog"
)

var (
	ErrDownload   = fmt.Errorf("failed to download asset")
	ErrBadStatus  = fmt.Errorf("asset download returned a non-success status")
	ErrLocalWrite = fmt.Errorf("failed to write downloaded asset")
)

const defaultTimeout = 30 * time.Second

// Download fetches 'url' and writes the body to 'localPath', returning the
// number of bytes written. The request is bounded by 'timeout' (or a 30s
// default) rather than inheriting the HTTP client's.
func Download(ctx context.Context, url, localPath string, timeout time.Duration) (int64, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDownload, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: HTTP %d from %s", ErrBadStatus, res.StatusCode, url)
	}

	file, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrLocalWrite, err)
	}
	defer file.Close()

	written, err := io.Copy(file, res.Body)
	if err != nil {
		return written, fmt.Errorf("%w: %w", ErrLocalWrite, err)
	}
	clog.FromContext(ctx).Info("downloaded asset", "url", url, "path", localPath, "bytes", written)
	return written, nil
}
