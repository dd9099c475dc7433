package main

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"lambda-http-adapter/internal/config"
	"lambda-http-adapter/internal/handler"
	"lambda-http-adapter/pkg/lambda"
	"lambda-http-adapter/pkg/server"
)

var h *handler.Handler

func init() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if err := config.SetupLogging(cfg); err != nil {
		panic("Failed to configure logging: " + err.Error())
	}

	manager := lambda.NewResponderManager(server.ProxyFactory(cfg))

	// Warm up during the init phase. A failure here is retried by the first
	// invocation.
	if _, err := manager.Get(context.Background()); err != nil {
		logrus.WithError(err).Warn("Responder initialization failed, will retry on first invocation")
	}

	h = handler.New(manager, server.HandlerOptions(cfg))

	logrus.WithFields(logrus.Fields{
		"function": config.GetServerlessConfig().FunctionName,
		"upstream": cfg.Upstream.URL,
	}).Info("Handler initialized")
}

func main() {
	awslambda.Start(h.Handle)
}
