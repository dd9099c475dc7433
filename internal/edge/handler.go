package edge

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
)

// DefaultStaticHostHeader is the origin custom header that carries the
// static bucket's domain.
const DefaultStaticHostHeader = "s3-host"

var ErrNoRecords = errors.New("edge event has no records")

// Options configures the origin rewrite
type Options struct {
	// StaticHostHeader names the custom origin header holding the static
	// storage domain.
	StaticHostHeader string
	// StaticDomain is used when the origin carries no such header.
	StaticDomain string
}

// Router rewrites origin-request events for static paths
type Router struct {
	paths  *StaticPathSet
	opts   Options
	logger *logrus.Entry
}

// NewRouter creates a Router over an immutable static path set
func NewRouter(paths *StaticPathSet, opts Options) *Router {
	if opts.StaticHostHeader == "" {
		opts.StaticHostHeader = DefaultStaticHostHeader
	}
	return &Router{
		paths:  paths,
		opts:   opts,
		logger: logrus.WithField("component", "edge_router"),
	}
}

// Handle processes an origin-request event and returns the request
// CloudFront should forward.
func (r *Router) Handle(ctx context.Context, ev Event) (*Request, error) {
	if len(ev.Records) == 0 {
		return nil, ErrNoRecords
	}
	req := ev.Records[0].CF.Request
	decision := r.Rewrite(&req)

	r.logger.WithFields(logrus.Fields{
		"request_id": ev.Records[0].CF.Config.RequestID,
		"method":     req.Method,
		"uri":        req.URI,
		"static":     decision.Static,
	}).Debug("Origin request routed")

	return &req, nil
}

// Rewrite applies the routing decision to req in place. Only GET requests
// whose normalized URI is a static path are changed.
func (r *Router) Rewrite(req *Request) Decision {
	if req.Method != http.MethodGet {
		return Decision{URI: req.URI}
	}

	decision := Route(req.URI, r.paths)
	if !decision.Static {
		return decision
	}

	if req.Origin != nil && req.Origin.S3 != nil {
		req.URI = decision.URI
		return decision
	}

	domain := r.staticDomain(req)
	if domain == "" {
		r.logger.WithField("uri", req.URI).Warn("Static path matched but no static domain is configured")
		return Decision{URI: req.URI}
	}

	if req.Origin == nil {
		req.Origin = &Origin{}
	}
	if req.Origin.Custom == nil {
		req.Origin.Custom = &CustomOrigin{}
	}
	req.URI = decision.URI
	req.Origin.Custom.DomainName = domain
	req.Origin.Custom.Path = ""
	if req.Headers == nil {
		req.Headers = Headers{}
	}
	req.Headers.Set("host", domain)
	return decision
}

func (r *Router) staticDomain(req *Request) string {
	if req.Origin != nil && req.Origin.Custom != nil {
		if domain := req.Origin.Custom.CustomHeaders.Get(r.opts.StaticHostHeader); domain != "" {
			return domain
		}
	}
	return r.opts.StaticDomain
}
