package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/gin-gonic/gin"

	"lambda-http-adapter/internal/adapters/storage"
	"lambda-http-adapter/internal/edge"
	"lambda-http-adapter/internal/marshaller"
	"lambda-http-adapter/internal/middleware"
)

// maxBodySize matches the API Gateway payload limit.
const maxBodySize = 10 << 20

// NewEngine builds the local emulator. GET requests for static paths are
// served from storage the way the origin router would send them to the
// bucket; everything else is replayed as an HTTP API event.
func NewEngine(c *Container) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.StructuredLogger())
	engine.Use(middleware.ErrorHandler())
	engine.Use(middleware.RateLimiter(c.Config.RateLimit.RequestsPerSecond, c.Config.RateLimit.Burst))
	engine.Use(middleware.RequestSizeLimit(maxBodySize))

	engine.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"timestamp":    time.Now().UTC(),
			"responder":    c.Manager.IsHealthy(),
			"static_paths": c.StaticPaths().Len(),
		})
	})

	engine.NoRoute(func(ctx *gin.Context) {
		if serveStatic(ctx, c) {
			return
		}
		invoke(ctx, c)
	})

	return engine
}

func serveStatic(ctx *gin.Context, c *Container) bool {
	if ctx.Request.Method != http.MethodGet {
		return false
	}

	decision := edge.Route(ctx.Request.URL.Path, c.StaticPaths())
	if !decision.Static {
		return false
	}

	key := strings.TrimPrefix(decision.URI, "/")
	data, err := c.Storage.Retrieve(ctx.Request.Context(), key)
	if err != nil {
		if storage.IsNotFound(err) {
			// removed since the last reload
			return false
		}
		ctx.Error(err)
		return true
	}

	contentType := "application/octet-stream"
	if info, err := c.Storage.Stat(ctx.Request.Context(), key); err == nil && info.ContentType != "" {
		contentType = info.ContentType
	}

	ctx.Set(middleware.OriginKey, "static")
	ctx.Header("Cache-Control", marshaller.ImmutableCacheControl)
	ctx.Data(http.StatusOK, contentType, data)
	return true
}

func invoke(ctx *gin.Context, c *Container) {
	ctx.Set(middleware.OriginKey, "lambda")

	event, err := buildEvent(ctx)
	if err != nil {
		ctx.Error(err)
		return
	}
	raw, err := json.Marshal(event)
	if err != nil {
		ctx.Error(err)
		return
	}

	lc := &lambdacontext.LambdaContext{AwsRequestID: event.RequestContext.RequestID}
	reply, err := c.Handler.Handle(lambdacontext.NewContext(ctx.Request.Context(), lc), raw)
	if err != nil {
		ctx.Error(err).SetType(gin.ErrorTypePublic)
		return
	}

	if err := writeReply(ctx, reply); err != nil {
		ctx.Error(err)
	}
}

// buildEvent converts an incoming request into a version 2.0 event.
func buildEvent(ctx *gin.Context) (*events.APIGatewayV2HTTPRequest, error) {
	r := ctx.Request

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	headers := make(map[string]string, len(r.Header)+1)
	var cookies []string
	for name, values := range r.Header {
		lower := strings.ToLower(name)
		if lower == "cookie" {
			for _, v := range values {
				for _, part := range strings.Split(v, ";") {
					if part = strings.TrimSpace(part); part != "" {
						cookies = append(cookies, part)
					}
				}
			}
			continue
		}
		headers[lower] = strings.Join(values, ",")
	}
	headers["host"] = r.Host

	now := time.Now()
	event := &events.APIGatewayV2HTTPRequest{
		Version:        "2.0",
		RouteKey:       "$default",
		RawPath:        r.URL.Path,
		RawQueryString: r.URL.RawQuery,
		Cookies:        cookies,
		Headers:        headers,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			RouteKey:   "$default",
			Stage:      "$default",
			RequestID:  ctx.GetString(middleware.RequestIDKey),
			DomainName: r.Host,
			Time:       now.UTC().Format("02/Jan/2006:15:04:05 -0700"),
			TimeEpoch:  now.UnixMilli(),
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:    r.Method,
				Path:      r.URL.Path,
				Protocol:  r.Proto,
				SourceIP:  ctx.ClientIP(),
				UserAgent: r.UserAgent(),
			},
		},
	}
	if len(body) > 0 {
		event.Body = base64.StdEncoding.EncodeToString(body)
		event.IsBase64Encoded = true
	}

	return event, nil
}

func writeReply(ctx *gin.Context, reply any) error {
	var (
		status  int
		single  map[string]string
		multi   map[string][]string
		cookies []string
		body    string
		encoded bool
	)

	switch r := reply.(type) {
	case events.APIGatewayV2HTTPResponse:
		// API Gateway drops multiValueHeaders from 2.0 replies
		status, single, cookies, body, encoded = r.StatusCode, r.Headers, r.Cookies, r.Body, r.IsBase64Encoded
	case events.APIGatewayProxyResponse:
		status, single, multi, body, encoded = r.StatusCode, r.Headers, r.MultiValueHeaders, r.Body, r.IsBase64Encoded
	default:
		return fmt.Errorf("unexpected reply type %T", reply)
	}

	data := []byte(body)
	if encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return fmt.Errorf("invalid base64 reply body: %w", err)
		}
		data = decoded
	}

	header := ctx.Writer.Header()
	for name, value := range single {
		header.Set(name, value)
	}
	for name, values := range multi {
		for _, v := range values {
			header.Add(name, v)
		}
	}
	for _, cookie := range cookies {
		header.Add("Set-Cookie", cookie)
	}

	ctx.Status(status)
	_, err := ctx.Writer.Write(data)
	return err
}
