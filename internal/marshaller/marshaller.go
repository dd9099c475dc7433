// Package marshaller converts canonical responses into the reply shapes API
// Gateway expects for each invocation version.
package marshaller

import (
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"lambda-http-adapter/pkg/lambda"
)

const (
	// DefaultCacheControl is injected into dynamic responses.
	DefaultCacheControl = "no-cache"
	// ImmutableCacheControl suits deployments that serve fingerprinted assets.
	ImmutableCacheControl = "public, immutable, max-age=31536000"

	NotFoundBody = "Not found."

	setCookieHeader    = "set-cookie"
	cacheControlHeader = "cache-control"
)

// Options configures reply marshaling
type Options struct {
	// CacheControl overrides whatever cache-control the responder set.
	// DefaultCacheControl is used when empty.
	CacheControl string
}

func (o Options) cacheControl() string {
	if o.CacheControl == "" {
		return DefaultCacheControl
	}
	return o.CacheControl
}

// Buckets is a response header split for API Gateway. Single and Multi never
// share a name.
type Buckets struct {
	Single  map[string]string
	Multi   map[string][]string
	Cookies []string
}

// SplitHeaders sorts h into single- and multi-valued buckets.
//
// Set-Cookie values are re-split into individual cookies and collected in
// Cookies. Other names with one value go to Single and names with more than
// one value go to Multi under their original spelling. A non-empty
// cacheControl is set in Single last, replacing any value from h.
func SplitHeaders(h *lambda.Header, cacheControl string) Buckets {
	b := Buckets{
		Single: make(map[string]string),
		Multi:  make(map[string][]string),
	}

	for _, name := range h.Keys() {
		values := h.Values(name)
		switch {
		case strings.EqualFold(name, setCookieHeader):
			for _, v := range values {
				b.Cookies = append(b.Cookies, SplitCookiesString(v)...)
			}
		case cacheControl != "" && strings.EqualFold(name, cacheControlHeader):
			// replaced below
		case len(values) > 1:
			b.Multi[name] = append([]string(nil), values...)
		case len(values) == 1:
			b.Single[name] = values[0]
		}
	}

	if cacheControl != "" {
		b.Single[cacheControlHeader] = cacheControl
	}
	return b
}

// Marshal builds the reply for version. A nil resp means no route matched
// and yields the fixed 404 reply.
func Marshal(resp *lambda.Response, version lambda.InvocationVersion, opts Options) (any, error) {
	switch version {
	case lambda.VersionREST:
		return MarshalREST(resp, opts), nil
	case lambda.VersionHTTP:
		return MarshalHTTP(resp, opts), nil
	default:
		return nil, &lambda.UnsupportedVersionError{Version: string(version)}
	}
}

// MarshalREST builds a version 1.0 reply. Cookies are returned as
// multiValueHeaders["set-cookie"].
func MarshalREST(resp *lambda.Response, opts Options) events.APIGatewayProxyResponse {
	if resp == nil {
		return events.APIGatewayProxyResponse{
			StatusCode: 404,
			Body:       NotFoundBody,
		}
	}

	b := SplitHeaders(resp.Header, opts.cacheControl())
	if len(b.Cookies) > 0 {
		b.Multi[setCookieHeader] = b.Cookies
	}
	return events.APIGatewayProxyResponse{
		StatusCode:        resp.StatusCode,
		Headers:           b.Single,
		MultiValueHeaders: b.Multi,
		Body:              string(resp.Body),
		IsBase64Encoded:   false,
	}
}

// MarshalHTTP builds a version 2.0 reply. Cookies are returned in the
// cookies array. The 2.0 payload format has no multi-valued header map, so
// other repeated headers are comma-joined into headers.
func MarshalHTTP(resp *lambda.Response, opts Options) events.APIGatewayV2HTTPResponse {
	if resp == nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: 404,
			Body:       NotFoundBody,
		}
	}

	b := SplitHeaders(resp.Header, opts.cacheControl())
	cookies := b.Cookies
	if cookies == nil {
		cookies = []string{}
	}
	headers := b.Single
	for name, values := range b.Multi {
		headers[name] = strings.Join(values, ", ")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode:      resp.StatusCode,
		Headers:         headers,
		Body:            string(resp.Body),
		IsBase64Encoded: false,
		Cookies:         cookies,
	}
}

// ErrorReply builds a plain-text reply for failures handled before the
// responder runs.
func ErrorReply(version lambda.InvocationVersion, status int, message string) any {
	headers := map[string]string{"content-type": "text/plain; charset=utf-8"}
	if version == lambda.VersionHTTP {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: status,
			Headers:    headers,
			Body:       message,
			Cookies:    []string{},
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       message,
	}
}
