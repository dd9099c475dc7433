// Package handler runs API Gateway invocations through the normalize,
// respond and marshal pipeline.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/sirupsen/logrus"

	"lambda-http-adapter/internal/marshaller"
	"lambda-http-adapter/internal/normalizer"
	"lambda-http-adapter/pkg/lambda"
)

// Options configures the invocation pipeline
type Options struct {
	Normalizer normalizer.Options
	Marshaller marshaller.Options
}

// Handler serves API Gateway invocations with a lazily initialized responder
type Handler struct {
	manager *lambda.ResponderManager
	opts    Options
	logger  *logrus.Entry
}

// New creates a Handler
func New(manager *lambda.ResponderManager, opts Options) *Handler {
	return &Handler{
		manager: manager,
		opts:    opts,
		logger:  logrus.WithField("component", "handler"),
	}
}

// Handle decodes a raw invocation event and returns the reply for its
// version. Unsupported versions, responder initialization failures and
// responder errors are returned to the runtime.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (any, error) {
	start := time.Now()
	logger := h.logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.WithField("aws_request_id", lc.AwsRequestID)
	}

	ev, err := normalizer.Decode(raw)
	if err != nil {
		logger.WithError(err).Error("Failed to decode invocation event")
		return nil, err
	}
	if rest, ok := ev.(*normalizer.RESTEvent); ok && len(rest.MalformedQuery) > 0 {
		logger.WithFields(logrus.Fields{
			"params": rest.MalformedQuery,
			"error":  normalizer.ErrMalformedQueryEncoding,
		}).Warn("Dropped non-string query values")
	}

	return h.serve(ctx, ev, logger.WithField("version", ev.Version()), start)
}

func (h *Handler) serve(ctx context.Context, ev normalizer.Event, logger *logrus.Entry, start time.Time) (any, error) {
	req, err := normalizer.Normalize(ev, h.opts.Normalizer)
	if err != nil {
		if errors.Is(err, normalizer.ErrBodyDecode) {
			logger.WithError(err).Warn("Rejected request body")
			return marshaller.ErrorReply(ev.Version(), http.StatusBadRequest, http.StatusText(http.StatusBadRequest)), nil
		}
		logger.WithError(err).Error("Failed to normalize invocation event")
		return nil, err
	}

	logger = logger.WithFields(logrus.Fields{
		"method": req.Method,
		"url":    req.URL,
	})

	responder, err := h.manager.Get(ctx)
	if err != nil {
		logger.WithError(err).Error("Responder unavailable")
		return nil, err
	}

	resp, err := responder.Respond(ctx, req)
	if err != nil {
		logger.WithError(err).Error("Responder failed")
		return nil, fmt.Errorf("respond: %w", err)
	}

	reply, err := marshaller.Marshal(resp, ev.Version(), h.opts.Marshaller)
	if err != nil {
		return nil, err
	}

	status := http.StatusNotFound
	if resp != nil {
		status = resp.StatusCode
	}
	entry := logger.WithFields(logrus.Fields{
		"status":   status,
		"duration": time.Since(start).String(),
	})
	if resp == nil {
		entry.WithError(lambda.ErrNoRouteMatched).Info("Request completed")
	} else {
		entry.Info("Request completed")
	}

	return reply, nil
}
