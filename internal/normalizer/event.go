package normalizer

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aws/aws-lambda-go/events"

	"lambda-http-adapter/pkg/lambda"
)

// Event is an invocation event of one of the supported versions. The set of
// implementations is closed: *RESTEvent and *HTTPEvent.
type Event interface {
	Version() lambda.InvocationVersion
	event()
}

// QueryParam is one multi-valued query parameter.
type QueryParam struct {
	Key    string
	Values []string
}

// RESTEvent is a version 1.0 event.
type RESTEvent struct {
	events.APIGatewayProxyRequest

	// Query holds multiValueQueryStringParameters in the order the event
	// listed them.
	Query []QueryParam `json:"-"`
	// MalformedQuery lists parameters whose values were dropped because they
	// were not strings.
	MalformedQuery []string `json:"-"`
}

// NewRESTEvent wraps a decoded REST event. Query parameters are ordered by
// key since the source map has no order of its own.
func NewRESTEvent(req events.APIGatewayProxyRequest) *RESTEvent {
	e := &RESTEvent{APIGatewayProxyRequest: req}
	keys := make([]string, 0, len(req.MultiValueQueryStringParameters))
	for k := range req.MultiValueQueryStringParameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		e.Query = append(e.Query, QueryParam{Key: k, Values: req.MultiValueQueryStringParameters[k]})
	}
	return e
}

// restEventWire shadows the query maps so that they can be decoded in order
// and tolerate non-string values.
type restEventWire struct {
	events.APIGatewayProxyRequest
	MultiValueQueryStringParameters json.RawMessage `json:"multiValueQueryStringParameters"`
	QueryStringParameters           json.RawMessage `json:"queryStringParameters"`
}

// UnmarshalJSON decodes a REST event, keeping query parameter order.
func (e *RESTEvent) UnmarshalJSON(data []byte) error {
	var wire restEventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	query, dropped, err := decodeQuery(wire.MultiValueQueryStringParameters)
	if err != nil {
		return fmt.Errorf("multiValueQueryStringParameters: %w", err)
	}
	single, _, err := decodeQuery(wire.QueryStringParameters)
	if err != nil {
		return fmt.Errorf("queryStringParameters: %w", err)
	}

	e.APIGatewayProxyRequest = wire.APIGatewayProxyRequest
	e.Query = query
	e.MalformedQuery = dropped
	if len(query) > 0 {
		e.MultiValueQueryStringParameters = make(map[string][]string, len(query))
		for _, p := range query {
			e.MultiValueQueryStringParameters[p.Key] = p.Values
		}
	}
	if len(single) > 0 {
		e.QueryStringParameters = make(map[string]string, len(single))
		for _, p := range single {
			e.QueryStringParameters[p.Key] = p.Values[len(p.Values)-1]
		}
	}
	return nil
}

func (e *RESTEvent) Version() lambda.InvocationVersion { return lambda.VersionREST }
func (*RESTEvent) event() {}

// HTTPEvent is a version 2.0 event.
type HTTPEvent struct {
	events.APIGatewayV2HTTPRequest
}

// NewHTTPEvent wraps a decoded HTTP event
func NewHTTPEvent(req events.APIGatewayV2HTTPRequest) *HTTPEvent {
	return &HTTPEvent{APIGatewayV2HTTPRequest: req}
}

func (e *HTTPEvent) Version() lambda.InvocationVersion { return lambda.VersionHTTP }
func (*HTTPEvent) event() {}

// Decode parses a raw invocation event. Events without a version field are
// REST events. Unknown versions fail with an *UnsupportedVersionError.
func Decode(raw []byte) (Event, error) {
	var probe struct {
		Version json.RawMessage `json:"version"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	version := lambda.VersionREST
	if len(probe.Version) > 0 && string(probe.Version) != "null" {
		var s string
		if err := json.Unmarshal(probe.Version, &s); err != nil {
			return nil, &lambda.UnsupportedVersionError{Version: string(probe.Version)}
		}
		v, err := lambda.ParseVersion(s)
		if err != nil {
			return nil, err
		}
		version = v
	}

	switch version {
	case lambda.VersionREST:
		ev := &RESTEvent{}
		if err := json.Unmarshal(raw, ev); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return ev, nil
	case lambda.VersionHTTP:
		ev := &HTTPEvent{}
		if err := json.Unmarshal(raw, &ev.APIGatewayV2HTTPRequest); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return ev, nil
	default:
		return nil, &lambda.UnsupportedVersionError{Version: string(version)}
	}
}
