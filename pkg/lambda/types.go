package lambda

import (
	"context"
	"errors"
)

// ErrNoRouteMatched is reported when a Responder produced no response.
var ErrNoRouteMatched = errors.New("no route matched")

// Request is the provider-agnostic HTTP request handed to a Responder
type Request struct {
	Method string `json:"method"`
	// URL is rebuilt from the event: origin, path and query string.
	URL    string  `json:"url"`
	Header *Header `json:"-"`
	// Body is nil when the event carried no body. It is always decoded.
	Body          []byte `json:"body,omitempty"`
	ClientAddress string `json:"client_address,omitempty"`
}

// GetClientAddress returns the address of the client that sent the request.
func (r *Request) GetClientAddress() string {
	return r.ClientAddress
}

// Response is the provider-agnostic HTTP response produced by a Responder
type Response struct {
	StatusCode int     `json:"status_code"`
	Header     *Header `json:"-"`
	Body       []byte  `json:"body"`
}

// Responder serves canonical requests. A nil Response with a nil error means
// that no route matched the request.
type Responder interface {
	Respond(ctx context.Context, req *Request) (*Response, error)
}

// ResponderFunc is a framework-agnostic handler adapter
type ResponderFunc func(ctx context.Context, req *Request) (*Response, error)

// Respond calls f(ctx, req).
func (f ResponderFunc) Respond(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
