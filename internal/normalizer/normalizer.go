// Package normalizer turns API Gateway invocation events into canonical
// HTTP requests.
package normalizer

import (
	"strings"

	"lambda-http-adapter/pkg/lambda"
)

// Options configures request normalization
type Options struct {
	// Origin overrides the scheme and host of every request URL, for
	// deployments where the event's domain cannot be trusted.
	Origin string
}

// Normalize builds the canonical request for ev. It has no side effects and
// returns identical requests for identical events.
func Normalize(ev Event, opts Options) (*lambda.Request, error) {
	switch e := ev.(type) {
	case *RESTEvent:
		return normalizeREST(e, opts)
	case *HTTPEvent:
		return normalizeHTTP(e, opts)
	case nil:
		return nil, &lambda.UnsupportedVersionError{}
	default:
		return nil, &lambda.UnsupportedVersionError{Version: string(ev.Version())}
	}
}

func normalizeREST(e *RESTEvent, opts Options) (*lambda.Request, error) {
	header := lambda.HeaderFromMap(e.Headers)

	body, err := decodeBody(e.Body, bodyScheme(e.IsBase64Encoded, header.Get("content-encoding")))
	if err != nil {
		return nil, err
	}

	origin := resolveOrigin(opts.Origin, header.Get("origin"), e.RequestContext.DomainName)
	return &lambda.Request{
		Method:        strings.ToUpper(e.HTTPMethod),
		URL:           origin + requestPath(e.Path) + BuildQueryString(e.Query),
		Header:        header,
		Body:          body,
		ClientAddress: clientAddress(header, e.RequestContext.Identity.SourceIP),
	}, nil
}

func normalizeHTTP(e *HTTPEvent, opts Options) (*lambda.Request, error) {
	header := lambda.HeaderFromMap(e.Headers)
	if len(e.Cookies) > 0 && !header.Has("cookie") {
		header.Add("cookie", strings.Join(e.Cookies, "; "))
	}

	body, err := decodeBody(e.Body, bodyScheme(e.IsBase64Encoded, header.Get("content-encoding")))
	if err != nil {
		return nil, err
	}

	httpCtx := e.RequestContext.HTTP
	origin := resolveOrigin(opts.Origin, header.Get("origin"), e.RequestContext.DomainName)
	return &lambda.Request{
		Method:        strings.ToUpper(httpCtx.Method),
		URL:           origin + requestPath(httpCtx.Path) + rawQuery(e.RawQueryString),
		Header:        header,
		Body:          body,
		ClientAddress: clientAddress(header, httpCtx.SourceIP),
	}, nil
}

// resolveOrigin returns the configured origin, else the request's origin
// header, else one built from the event domain, else "".
func resolveOrigin(override, originHeader, domain string) string {
	if override != "" {
		return strings.TrimSuffix(override, "/")
	}
	// browsers send "null" for opaque origins
	if originHeader != "" && originHeader != "null" {
		return strings.TrimSuffix(originHeader, "/")
	}
	if domain != "" {
		return "https://" + domain
	}
	return ""
}

func requestPath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

// clientAddress prefers the first x-forwarded-for hop over the source IP
// reported by the platform.
func clientAddress(header *lambda.Header, sourceIP string) string {
	if xff := header.Get("x-forwarded-for"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	return sourceIP
}
