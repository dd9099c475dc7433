package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"lambda-http-adapter/internal/adapters/storage"
	"lambda-http-adapter/internal/edge"
)

func main() {
	staticDir := flag.String("static", "./build/static", "static build output directory")
	out := flag.String("out", "cmd/lambda/router/static.json", "manifest file to write, - for stdout")
	flag.Parse()

	store, err := storage.CreateFromConfig(&storage.Config{Type: string(storage.StoreTypeLocal), BasePath: *staticDir})
	if err != nil {
		logrus.Fatalf("Failed to open static output: %v", err)
	}
	defer store.Close()

	paths, err := edge.StaticPathSetFromStorage(context.Background(), store)
	if err != nil {
		logrus.Fatalf("Failed to list static output: %v", err)
	}

	data, err := json.MarshalIndent(paths, "", "  ")
	if err != nil {
		logrus.Fatalf("Failed to encode manifest: %v", err)
	}
	data = append(data, '\n')

	if *out == "-" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logrus.Fatalf("Failed to write manifest: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"static_paths": paths.Len(),
		"out":          *out,
	}).Info("Manifest written")
}
