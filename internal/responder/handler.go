package responder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"lambda-http-adapter/pkg/lambda"
)

// HTTPHandler serves canonical requests with an in-process http.Handler
type HTTPHandler struct {
	handler http.Handler
	// NotFoundAsNil reports 404 responses as no route matched.
	NotFoundAsNil bool
}

// NewHTTPHandler wraps h
func NewHTTPHandler(h http.Handler) *HTTPHandler {
	return &HTTPHandler{handler: h}
}

// Respond runs the handler against a recorder.
func (h *HTTPHandler) Respond(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var body io.Reader = http.NoBody
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	r, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	r.Header = req.Header.ToHTTP()
	if host := req.Header.Get("host"); host != "" {
		r.Host = host
	}
	r.RemoteAddr = req.GetClientAddress()
	r.RequestURI = r.URL.RequestURI()

	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, r)
	result := rec.Result()
	defer result.Body.Close()

	if result.StatusCode == http.StatusNotFound && h.NotFoundAsNil {
		return nil, nil
	}

	return &lambda.Response{
		StatusCode: result.StatusCode,
		Header:     lambda.HeaderFromHTTP(result.Header),
		Body:       rec.Body.Bytes(),
	}, nil
}
