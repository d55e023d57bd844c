package market

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/etnz/tradedesk/date"
	"github.com/etnz/tradedesk/retry"
	"go.uber.org/zap"
)

// diskCache is an http.RoundTripper keeping successful responses on disk
// for the current period (a day by default).
type diskCache struct {
	base   http.RoundTripper
	period date.Period
	dir    string // os.TempDir() when empty
	log    *zap.Logger
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	// the period identifier is part of the key, so entries expire with it.
	id := c.period.Range(date.Today()).Identifier()
	key := fmt.Sprintf("tradedesk-%s-%x", c.period, sha1.Sum([]byte(id+" "+req.Method+" "+req.URL.String())))

	if resp, err := c.get(key, req); err == nil {
		return resp, nil
	}
	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug("market request", zap.String("method", req.Method), zap.String("host", req.URL.Host), zap.String("path", req.URL.Path), zap.Int("status", resp.StatusCode))
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.log.Warn("market cache write failed", zap.Error(err))
	}
	return resp, nil
}

func (c *diskCache) file(key string) string {
	dir := c.dir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, key)
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(c.file(key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put dumps the response to disk. DumpResponse leaves resp.Body readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(c.file(key), content, 0o600)
}

// cachingClient returns a client whose responses are kept on disk for the
// current period.
func cachingClient(base *http.Client, period date.Period, dir string, log *zap.Logger) *http.Client {
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &http.Client{Timeout: base.Timeout, Transport: &diskCache{base: transport, period: period, dir: dir, log: log}}
}

// jwget GETs addr and decodes its JSON body into data. Non 200 answers are
// returned as a *retry.StatusError.
func jwget(ctx context.Context, client *http.Client, service, addr string, data any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &retry.StatusError{Service: service, Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	if err := json.Unmarshal(body, data); err != nil {
		return fmt.Errorf("%s: cannot decode %v%v: %w", service, req.URL.Host, req.URL.Path, err)
	}
	return nil
}
