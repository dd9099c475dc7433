// Package responder provides lambda.Responder implementations that serve
// canonical requests from an upstream server or an in-process handler.
package responder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"lambda-http-adapter/internal/retry"
	"lambda-http-adapter/pkg/lambda"
)

var ErrUpstreamNotReady = errors.New("upstream not ready")

// hop-by-hop headers are not forwarded in either direction
var hopHeaders = []string{
	"connection",
	"keep-alive",
	"proxy-connection",
	"transfer-encoding",
	"upgrade",
	"te",
	"trailer",
}

// ProxyConfig configures a Proxy
type ProxyConfig struct {
	UpstreamURL string `validate:"required,url"`
	// ReadinessPath is probed during initialization when set.
	ReadinessPath string
	// NotFoundAsNil reports upstream 404s as no route matched.
	NotFoundAsNil bool
	Timeout       time.Duration
	Retry         *retry.Config
}

// Proxy forwards canonical requests to an upstream HTTP server
type Proxy struct {
	upstream      *url.URL
	client        *http.Client
	notFoundAsNil bool
	logger        *logrus.Entry
}

// NewProxy creates a Proxy. When cfg.ReadinessPath is set the upstream is
// probed with retries before the Proxy is returned.
func NewProxy(ctx context.Context, cfg ProxyConfig) (*Proxy, error) {
	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q: scheme and host are required", cfg.UpstreamURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	p := &Proxy{
		upstream: upstream,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		notFoundAsNil: cfg.NotFoundAsNil,
		logger:        logrus.WithField("upstream", upstream.Host),
	}

	if cfg.ReadinessPath != "" {
		if err := p.waitReady(ctx, cfg.ReadinessPath, cfg.Retry); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func (p *Proxy) waitReady(ctx context.Context, path string, cfg *retry.Config) error {
	target := p.upstream.ResolveReference(&url.URL{Path: path})
	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			p.logger.WithError(err).Debug("Readiness probe failed")
			return fmt.Errorf("%w: %v", ErrUpstreamNotReady, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: status %d", ErrUpstreamNotReady, resp.StatusCode)
		}
		return nil
	}, nil)
}

// Respond forwards req and converts the upstream response.
func (p *Proxy) Respond(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	target, err := p.target(req.URL)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	out, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build upstream request: %w", err)
	}
	out.Header = req.Header.ToHTTP()
	removeHopHeaders(out.Header)
	if host := req.Header.Get("host"); host != "" {
		out.Host = host
	}
	if addr := req.GetClientAddress(); addr != "" && out.Header.Get("X-Forwarded-For") == "" {
		out.Header.Set("X-Forwarded-For", addr)
	}

	resp, err := p.client.Do(out)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && p.notFoundAsNil {
		return nil, nil
	}

	removeHopHeaders(resp.Header)
	return &lambda.Response{
		StatusCode: resp.StatusCode,
		Header:     lambda.HeaderFromHTTP(resp.Header),
		Body:       data,
	}, nil
}

// target keeps the path and query of rawURL and replaces its scheme and host
// with the upstream's.
func (p *Proxy) target(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid request url: %w", err)
	}

	t := *p.upstream
	t.Path = strings.TrimSuffix(p.upstream.Path, "/") + u.Path
	t.RawPath = ""
	t.RawQuery = u.RawQuery
	return t.String(), nil
}

func removeHopHeaders(h http.Header) {
	for _, name := range hopHeaders {
		h.Del(name)
	}
}
