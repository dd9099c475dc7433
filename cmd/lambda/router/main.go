package main

import (
	"bytes"
	_ "embed"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"lambda-http-adapter/internal/edge"
)

// static.json is written by cmd/manifest at build time. Lambda@Edge
// functions cannot read environment variables, so the set ships with the
// binary.
//
//go:embed static.json
var manifest []byte

var router *edge.Router

func init() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	paths, err := edge.LoadStaticPathSet(bytes.NewReader(manifest))
	if err != nil {
		panic("Failed to load static path manifest: " + err.Error())
	}

	router = edge.NewRouter(paths, edge.Options{})
	logrus.WithField("static_paths", paths.Len()).Info("Origin router initialized")
}

func main() {
	awslambda.Start(router.Handle)
}
