package responder

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lambda-http-adapter/internal/retry"
	"lambda-http-adapter/pkg/lambda"
)

func TestProxyRespond(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
			return
		case "/echo":
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("X-Method", r.Method)
			w.Header().Set("X-Query", r.URL.RawQuery)
			w.Header().Set("X-Host", r.Host)
			w.Header().Set("X-Forwarded", r.Header.Get("X-Forwarded-For"))
			w.Header().Add("Set-Cookie", "a=1")
			w.Header().Add("Set-Cookie", "b=2")
			w.WriteHeader(http.StatusCreated)
			w.Write(body)
		}
	}))
	defer upstream.Close()

	ctx := context.Background()
	proxy, err := NewProxy(ctx, ProxyConfig{UpstreamURL: upstream.URL})
	if err != nil {
		t.Fatalf("NewProxy failed: %v", err)
	}

	t.Run("ForwardsRequest", func(t *testing.T) {
		header := lambda.NewHeader()
		header.Add("host", "app.example.com")
		req := &lambda.Request{
			Method:        "POST",
			URL:           "https://app.example.com/echo?a=1&a=2",
			Header:        header,
			Body:          []byte("payload"),
			ClientAddress: "198.51.100.7",
		}

		resp, err := proxy.Respond(ctx, req)
		if err != nil {
			t.Fatalf("Respond failed: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("status mismatch: got %d", resp.StatusCode)
		}
		if string(resp.Body) != "payload" {
			t.Errorf("body mismatch: got %q", resp.Body)
		}
		if got := resp.Header.Get("x-method"); got != "POST" {
			t.Errorf("method mismatch: got %q", got)
		}
		if got := resp.Header.Get("x-query"); got != "a=1&a=2" {
			t.Errorf("query mismatch: got %q", got)
		}
		if got := resp.Header.Get("x-host"); got != "app.example.com" {
			t.Errorf("host mismatch: got %q", got)
		}
		if got := resp.Header.Get("x-forwarded"); got != "198.51.100.7" {
			t.Errorf("forwarded mismatch: got %q", got)
		}
		if got := resp.Header.Values("set-cookie"); len(got) != 2 {
			t.Errorf("expected two cookies, got %v", got)
		}
	})

	t.Run("RelativeURL", func(t *testing.T) {
		resp, err := proxy.Respond(ctx, &lambda.Request{Method: "GET", URL: "/echo", Header: lambda.NewHeader()})
		if err != nil {
			t.Fatalf("Respond failed: %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("status mismatch: got %d", resp.StatusCode)
		}
	})

	t.Run("NotFoundKeptByDefault", func(t *testing.T) {
		resp, err := proxy.Respond(ctx, &lambda.Request{Method: "GET", URL: "/missing"})
		if err != nil {
			t.Fatalf("Respond failed: %v", err)
		}
		if resp == nil || resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected upstream 404, got %+v", resp)
		}
	})

	t.Run("NotFoundAsNil", func(t *testing.T) {
		p, err := NewProxy(ctx, ProxyConfig{UpstreamURL: upstream.URL, NotFoundAsNil: true})
		if err != nil {
			t.Fatalf("NewProxy failed: %v", err)
		}
		resp, err := p.Respond(ctx, &lambda.Request{Method: "GET", URL: "/missing"})
		if err != nil || resp != nil {
			t.Errorf("expected no route matched, got %+v, %v", resp, err)
		}
	})
}

func TestNewProxy(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidURL", func(t *testing.T) {
		if _, err := NewProxy(ctx, ProxyConfig{UpstreamURL: "localhost"}); err == nil {
			t.Error("expected an error for a url without scheme")
		}
	})

	t.Run("ReadinessProbeRetries", func(t *testing.T) {
		var calls int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer upstream.Close()

		cfg := &retry.Config{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
		if _, err := NewProxy(ctx, ProxyConfig{UpstreamURL: upstream.URL, ReadinessPath: "/healthz", Retry: cfg}); err != nil {
			t.Fatalf("NewProxy failed: %v", err)
		}
		if got := atomic.LoadInt32(&calls); got != 3 {
			t.Errorf("expected 3 probes, got %d", got)
		}
	})

	t.Run("ReadinessProbeGivesUp", func(t *testing.T) {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer upstream.Close()

		cfg := &retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, BackoffFactor: 1}
		_, err := NewProxy(ctx, ProxyConfig{UpstreamURL: upstream.URL, ReadinessPath: "/healthz", Retry: cfg})
		if !errors.Is(err, ErrUpstreamNotReady) {
			t.Errorf("expected ErrUpstreamNotReady, got %v", err)
		}
	})
}
