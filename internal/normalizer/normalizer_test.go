package normalizer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"lambda-http-adapter/pkg/lambda"
)

const restEventJSON = `{
	"path": "/blog/post",
	"httpMethod": "get",
	"headers": {"Host": "example.com", "X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
	"multiValueQueryStringParameters": {"z": ["last"], "a": ["1", "2"], "b": ["3"]},
	"requestContext": {"domainName": "abc.execute-api.us-east-1.amazonaws.com"},
	"body": null,
	"isBase64Encoded": false
}`

const httpEventJSON = `{
	"version": "2.0",
	"rawPath": "/ignored",
	"rawQueryString": "q=svelte&page=2",
	"cookies": ["session=abc", "theme=dark"],
	"headers": {"content-type": "application/json"},
	"requestContext": {
		"domainName": "xyz.lambda-url.us-east-1.on.aws",
		"http": {"method": "POST", "path": "/api/items", "sourceIp": "198.51.100.1"}
	},
	"body": "eyJvayI6dHJ1ZX0=",
	"isBase64Encoded": true
}`

func TestDecode(t *testing.T) {
	t.Run("MissingVersionIsREST", func(t *testing.T) {
		ev, err := Decode([]byte(restEventJSON))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if _, ok := ev.(*RESTEvent); !ok {
			t.Fatalf("expected *RESTEvent, got %T", ev)
		}
		if ev.Version() != lambda.VersionREST {
			t.Errorf("Version mismatch: got %q", ev.Version())
		}
	})

	t.Run("ExplicitVersions", func(t *testing.T) {
		ev, err := Decode([]byte(`{"version": "1.0", "httpMethod": "GET", "path": "/"}`))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if ev.Version() != lambda.VersionREST {
			t.Errorf("Version mismatch: got %q", ev.Version())
		}

		ev, err = Decode([]byte(httpEventJSON))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if _, ok := ev.(*HTTPEvent); !ok {
			t.Errorf("expected *HTTPEvent, got %T", ev)
		}
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		for _, raw := range []string{`{"version": "3.0"}`, `{"version": ""}`, `{"version": 2}`} {
			_, err := Decode([]byte(raw))
			var versionErr *lambda.UnsupportedVersionError
			if !errors.As(err, &versionErr) {
				t.Fatalf("%s: expected UnsupportedVersionError, got %v", raw, err)
			}
			if !lambda.IsUnsupportedVersion(err) {
				t.Errorf("%s: IsUnsupportedVersion should be true", raw)
			}
		}

		_, err := Decode([]byte(`{"version": "3.0"}`))
		var versionErr *lambda.UnsupportedVersionError
		errors.As(err, &versionErr)
		if versionErr.Version != "3.0" {
			t.Errorf("error should carry the version, got %q", versionErr.Version)
		}
	})

	t.Run("MalformedEvent", func(t *testing.T) {
		_, err := Decode([]byte(`[1, 2]`))
		if !errors.Is(err, ErrMalformedEvent) {
			t.Errorf("expected ErrMalformedEvent, got %v", err)
		}
	})

	t.Run("NonStringQueryValuesAreDropped", func(t *testing.T) {
		ev, err := Decode([]byte(`{"httpMethod": "GET", "path": "/",
			"multiValueQueryStringParameters": {"a": ["1", 2, null], "b": [{"x": 1}], "c": ["3"]}}`))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		rest := ev.(*RESTEvent)

		want := []QueryParam{{Key: "a", Values: []string{"1"}}, {Key: "c", Values: []string{"3"}}}
		if !reflect.DeepEqual(rest.Query, want) {
			t.Errorf("Query mismatch: got %v, want %v", rest.Query, want)
		}
		if !reflect.DeepEqual(rest.MalformedQuery, []string{"a", "b"}) {
			t.Errorf("MalformedQuery mismatch: got %v", rest.MalformedQuery)
		}
	})
}

func TestNormalizeREST(t *testing.T) {
	ev, err := Decode([]byte(restEventJSON))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	req, err := Normalize(ev, Options{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	t.Run("URLKeepsEventQueryOrder", func(t *testing.T) {
		want := "https://abc.execute-api.us-east-1.amazonaws.com/blog/post?z=last&a=1&a=2&b=3"
		if req.URL != want {
			t.Errorf("URL mismatch: got %q, want %q", req.URL, want)
		}
	})

	t.Run("MethodIsUpperCase", func(t *testing.T) {
		if req.Method != "GET" {
			t.Errorf("Method mismatch: got %q", req.Method)
		}
	})

	t.Run("HeadersAreLowerCased", func(t *testing.T) {
		if !reflect.DeepEqual(req.Header.Keys(), []string{"host", "x-forwarded-for"}) {
			t.Errorf("header keys mismatch: got %v", req.Header.Keys())
		}
		if req.Header.Get("Host") != "example.com" {
			t.Errorf("host mismatch: got %q", req.Header.Get("host"))
		}
	})

	t.Run("ClientAddressFromForwardedFor", func(t *testing.T) {
		if req.GetClientAddress() != "203.0.113.7" {
			t.Errorf("client address mismatch: got %q", req.GetClientAddress())
		}
	})

	t.Run("NullBodyIsAbsent", func(t *testing.T) {
		if req.Body != nil {
			t.Errorf("expected nil body, got %q", req.Body)
		}
	})

	t.Run("OriginOverrideWins", func(t *testing.T) {
		req, err := Normalize(ev, Options{Origin: "https://www.example.com/"})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		want := "https://www.example.com/blog/post?z=last&a=1&a=2&b=3"
		if req.URL != want {
			t.Errorf("URL mismatch: got %q, want %q", req.URL, want)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		again, err := Normalize(ev, Options{})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if !reflect.DeepEqual(req, again) {
			t.Errorf("Normalize is not deterministic: %+v vs %+v", req, again)
		}
	})
}

func TestNormalizeRESTFromGoValue(t *testing.T) {
	ev := NewRESTEvent(events.APIGatewayProxyRequest{
		HTTPMethod: "PUT",
		Path:       "/things",
		MultiValueQueryStringParameters: map[string][]string{
			"b": {"3"},
			"a": {"1", "2"},
		},
		Body: "hello",
	})

	req, err := Normalize(ev, Options{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if req.URL != "/things?a=1&a=2&b=3" {
		t.Errorf("URL mismatch: got %q", req.URL)
	}
	if string(req.Body) != "hello" {
		t.Errorf("Body mismatch: got %q", req.Body)
	}
}

func TestNormalizeHTTP(t *testing.T) {
	ev, err := Decode([]byte(httpEventJSON))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	req, err := Normalize(ev, Options{})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if req.Method != "POST" {
		t.Errorf("Method mismatch: got %q", req.Method)
	}
	if want := "https://xyz.lambda-url.us-east-1.on.aws/api/items?q=svelte&page=2"; req.URL != want {
		t.Errorf("URL mismatch: got %q, want %q", req.URL, want)
	}
	if string(req.Body) != `{"ok":true}` {
		t.Errorf("Body mismatch: got %q", req.Body)
	}
	if got := req.Header.Get("cookie"); got != "session=abc; theme=dark" {
		t.Errorf("cookie header mismatch: got %q", got)
	}
	if req.ClientAddress != "198.51.100.1" {
		t.Errorf("client address mismatch: got %q", req.ClientAddress)
	}

	t.Run("EmptyRawQueryHasNoQuestionMark", func(t *testing.T) {
		ev := NewHTTPEvent(events.APIGatewayV2HTTPRequest{
			RequestContext: events.APIGatewayV2HTTPRequestContext{
				DomainName: "example.com",
				HTTP:       events.APIGatewayV2HTTPRequestContextHTTPDescription{Method: "GET", Path: "/"},
			},
		})
		req, err := Normalize(ev, Options{})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if req.URL != "https://example.com/" {
			t.Errorf("URL mismatch: got %q", req.URL)
		}
	})

	t.Run("ExistingCookieHeaderIsKept", func(t *testing.T) {
		ev := NewHTTPEvent(events.APIGatewayV2HTTPRequest{
			Cookies: []string{"a=1"},
			Headers: map[string]string{"Cookie": "b=2"},
		})
		req, err := Normalize(ev, Options{})
		if err != nil {
			t.Fatalf("Normalize failed: %v", err)
		}
		if got := req.Header.Values("cookie"); !reflect.DeepEqual(got, []string{"b=2"}) {
			t.Errorf("cookie header mismatch: got %v", got)
		}
	})
}

func TestNormalizeNilEvent(t *testing.T) {
	if _, err := Normalize(nil, Options{}); !lambda.IsUnsupportedVersion(err) {
		t.Errorf("expected unsupported version error, got %v", err)
	}
}

func TestNormalizeBodyDecodeFailure(t *testing.T) {
	ev := NewRESTEvent(events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Path:       "/",
		Headers:    map[string]string{"Content-Encoding": "hex"},
		Body:       "not-hex",
	})

	_, err := Normalize(ev, Options{})
	var bodyErr *BodyDecodeError
	if !errors.As(err, &bodyErr) {
		t.Fatalf("expected BodyDecodeError, got %v", err)
	}
	if bodyErr.Scheme != "hex" || !errors.Is(err, ErrBodyDecode) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNormalizeOriginResolution(t *testing.T) {
	newEvent := func(originHeader string) *HTTPEvent {
		req := events.APIGatewayV2HTTPRequest{Version: "2.0", Headers: map[string]string{}}
		if originHeader != "" {
			req.Headers["Origin"] = originHeader
		}
		req.RequestContext.DomainName = "abc.lambda-url.us-east-1.on.aws"
		req.RequestContext.HTTP.Method = "GET"
		req.RequestContext.HTTP.Path = "/page"
		return NewHTTPEvent(req)
	}

	tests := []struct {
		name     string
		override string
		header   string
		want     string
	}{
		{"OverrideWins", "https://app.example.com", "https://other.example.com", "https://app.example.com/page"},
		{"OriginHeaderBeforeDomain", "", "https://www.example.com/", "https://www.example.com/page"},
		{"OpaqueOriginIgnored", "", "null", "https://abc.lambda-url.us-east-1.on.aws/page"},
		{"DomainFallback", "", "", "https://abc.lambda-url.us-east-1.on.aws/page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Normalize(newEvent(tt.header), Options{Origin: tt.override})
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if req.URL != tt.want {
				t.Errorf("URL mismatch: got %q, want %q", req.URL, tt.want)
			}
		})
	}
}
