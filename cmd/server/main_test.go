package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/raywall/insurance-sim/pkg/engine"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_LocalBootstrap(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
service:
  name: boot-test
  runtime: local
  port: 9999
  api_prefix: /v1
  reset_queue: https://sqs.local/reset
  logging: {enabled: false}
`)

	var gotPort int
	var handler http.Handler
	originalServer, originalReset := serverStarter, resetStarter
	defer func() { serverStarter, resetStarter = originalServer, originalReset }()

	serverStarter = func(_ context.Context, port int, h http.Handler, _ zerolog.Logger) error {
		gotPort, handler = port, h
		return nil
	}
	resetCalled := false
	resetStarter = func(_ context.Context, svc *engine.ServiceEngine) error {
		resetCalled = true
		assert.Equal(t, "https://sqs.local/reset", svc.Config.Service.ResetQueue)
		return nil
	}

	require.NoError(t, run(context.Background(), path))
	assert.Equal(t, 9999, gotPort)
	assert.True(t, resetCalled)
	require.NotNil(t, handler)
}

func TestRun_Lambda(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
service:
  name: boot-lambda
  runtime: lambda
`)

	original := lambdaStarter
	defer func() { lambdaStarter = original }()

	started := false
	lambdaStarter = func(h interface{}) {
		started = true
		assert.NotNil(t, h)
	}

	require.NoError(t, run(context.Background(), path))
	assert.True(t, started)
}

func TestRun_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
service:
  name: broken
  runtime: ec2
`)
	assert.Error(t, run(context.Background(), path))
}
