package decoder

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// sourceTimeout is applied separately to each phase of an HTTP source: the
// connect, the TLS handshake, the wait for response headers after the
// request is written, and each Read of the body. 10 seconds each.
const sourceTimeout = 10 * time.Second

var httpClient = &http.Client{Transport: &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	DialContext:           (&net.Dialer{Timeout: sourceTimeout}).DialContext,
	TLSHandshakeTimeout:   sourceTimeout,
	ResponseHeaderTimeout: sourceTimeout,
}}

// openSource resolves pathOrURL to a readable stream plus a format hint
// (the file extension, lower-cased, without the dot). http(s) URLs are
// fetched with a plain GET; anything else is joined onto musicRoot and
// opened from disk.
func openSource(pathOrURL, musicRoot string) (io.ReadCloser, string, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return openHTTPSource(pathOrURL)
	}
	return openFileSource(pathOrURL, musicRoot)
}

func openHTTPSource(url string) (io.ReadCloser, string, error) {
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	hint := strings.ToLower(strings.TrimPrefix(filepath.Ext(url), "."))
	return &cancelOnCloseBody{ReadCloser: resp.Body, cancel: cancel}, hint, nil
}

// cancelOnCloseBody releases the request context when the body is closed,
// so a track that finishes or is stopped doesn't leak the HTTP connection.
type cancelOnCloseBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

// Read cancels the request if a single read of the body takes longer than
// sourceTimeout.
func (b *cancelOnCloseBody) Read(p []byte) (int, error) {
	t := time.AfterFunc(sourceTimeout, b.cancel)
	defer t.Stop()
	return b.ReadCloser.Read(p)
}

func (b *cancelOnCloseBody) Close() error {
	defer b.cancel()
	return b.ReadCloser.Close()
}

func openFileSource(path, musicRoot string) (io.ReadCloser, string, error) {
	full := path
	if musicRoot != "" && !filepath.IsAbs(path) {
		full = filepath.Join(musicRoot, path)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", full, err)
	}
	hint := strings.ToLower(strings.TrimPrefix(filepath.Ext(full), "."))
	return f, hint, nil
}
