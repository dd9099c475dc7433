package config

import (
	"os"
	"sync"
)

// ServerlessConfig holds serverless-specific configuration
type ServerlessConfig struct {
	IsLambda     bool
	FunctionName string
	Region       string
	Stage        string
}

// Global serverless configuration
var (
	serverlessConfig *ServerlessConfig
	serverlessOnce   sync.Once
)

// GetServerlessConfig returns the serverless configuration
func GetServerlessConfig() *ServerlessConfig {
	serverlessOnce.Do(func() {
		serverlessConfig = &ServerlessConfig{
			IsLambda:     isRunningInLambda(),
			FunctionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"),
			Region:       os.Getenv("AWS_REGION"),
			Stage:        GetEnv("STAGE", "dev"),
		}
	})
	return serverlessConfig
}

// isRunningInLambda detects if the application is running in AWS Lambda
func isRunningInLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// IsServerlessMode returns true if running in serverless mode
func IsServerlessMode() bool {
	return GetServerlessConfig().IsLambda
}

// GetDeploymentMode returns the current deployment mode
func GetDeploymentMode() string {
	if IsServerlessMode() {
		return "serverless"
	}
	return "server"
}

// AdaptConfigForServerless modifies configuration for a Lambda deployment.
// CloudWatch gets JSON logs, and the static output is never read from disk
// since the origin router serves it from the bucket.
func AdaptConfigForServerless(config *Config, serverless bool) *Config {
	if !serverless {
		return config
	}

	config.LogFormat = "json"
	if config.Storage.Type == "local" {
		config.Storage.Type = "memory"
		config.Storage.BasePath = ""
	}

	return config
}

// GetOptimizedConfig returns configuration optimized for the current deployment mode
func GetOptimizedConfig() (*Config, error) {
	config, err := Load()
	if err != nil {
		return nil, err
	}

	return AdaptConfigForServerless(config, IsServerlessMode()), nil
}
