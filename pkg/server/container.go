package server

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"lambda-http-adapter/internal/adapters/storage"
	"lambda-http-adapter/internal/config"
	"lambda-http-adapter/internal/edge"
	"lambda-http-adapter/internal/handler"
	"lambda-http-adapter/internal/marshaller"
	"lambda-http-adapter/internal/normalizer"
	"lambda-http-adapter/internal/responder"
	"lambda-http-adapter/pkg/lambda"
)

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Storage storage.AssetStore
	Manager *lambda.ResponderManager
	Handler *handler.Handler

	staticPaths atomic.Pointer[edge.StaticPathSet]
	logger      *logrus.Entry
}

// ProxyFactory builds the upstream proxy responder described by cfg
func ProxyFactory(cfg *config.Config) lambda.ResponderFactory {
	return func(ctx context.Context) (lambda.Responder, error) {
		return responder.NewProxy(ctx, responder.ProxyConfig{
			UpstreamURL:   cfg.Upstream.URL,
			ReadinessPath: cfg.Upstream.ReadinessPath,
			NotFoundAsNil: cfg.Upstream.NotFoundAsNil,
			Timeout:       cfg.Upstream.Timeout,
			Retry:         &cfg.Retry,
		})
	}
}

// HandlerOptions maps configuration onto pipeline options
func HandlerOptions(cfg *config.Config) handler.Options {
	return handler.Options{
		Normalizer: normalizer.Options{Origin: cfg.Origin},
		Marshaller: marshaller.Options{CacheControl: cfg.CacheControl},
	}
}

// NewContainer creates a container that proxies dynamic requests upstream
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	return NewContainerWithFactory(ctx, cfg, ProxyFactory(cfg))
}

// NewContainerWithFactory creates a container whose responder is built by
// factory on first use.
func NewContainerWithFactory(ctx context.Context, cfg *config.Config, factory lambda.ResponderFactory) (*Container, error) {
	store, err := storage.NewFactory(&cfg.Retry).Create(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create static storage: %w", err)
	}

	manager := lambda.NewResponderManager(factory)
	c := &Container{
		Config:  cfg,
		Storage: store,
		Manager: manager,
		Handler: handler.New(manager, HandlerOptions(cfg)),
		logger:  logrus.WithField("component", "container"),
	}

	if err := c.ReloadStaticPaths(ctx); err != nil {
		store.Close()
		return nil, err
	}

	return c, nil
}

// StaticPaths returns the current static path snapshot
func (c *Container) StaticPaths() *edge.StaticPathSet {
	return c.staticPaths.Load()
}

// ReloadStaticPaths rebuilds the static path set from storage and swaps it
// in. Requests in flight keep the snapshot they already loaded.
func (c *Container) ReloadStaticPaths(ctx context.Context) error {
	paths, err := edge.StaticPathSetFromStorage(ctx, c.Storage)
	if err != nil {
		return fmt.Errorf("failed to load static paths: %w", err)
	}
	c.staticPaths.Store(paths)
	c.logger.WithField("static_paths", paths.Len()).Info("Static paths loaded")
	return nil
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.Manager != nil {
		if err := c.Manager.Cleanup(); err != nil {
			return fmt.Errorf("failed to close responder: %w", err)
		}
	}

	if c.Storage != nil {
		if err := c.Storage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	return nil
}
