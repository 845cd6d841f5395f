package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
version: "1.0"
service:
  name: cli-test
  runtime: local
  port: 8080
  logging: {enabled: false}
client:
  base_url: http://sim.local
  retries: 0
collections:
  payments:
    validations:
      - id: positive-amount
        expr: "!has(input.amount) || input.amount > 0.0"
        on_fail: {code: 422, msg: "amount must be positive"}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), nil, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "validate")
	assert.Contains(t, stdout.String(), "call")

	stderr.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"deploy"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "deploy")

	stderr.Reset()
	assert.Equal(t, 1, run(context.Background(), []string{"validate"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), `"file"`)
}

func TestValidate_HappyPath(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"validate", "--file", writeConfig(t, validConfig)}, &stdout, &stderr)
	assert.Equal(t, 0, code, stdout.String())
	assert.Contains(t, stdout.String(), "Configuração válida.")
}

func TestValidate_BrokenExpression(t *testing.T) {
	broken := `
version: "1.0"
service:
  name: cli-test
  runtime: local
  port: 8080
collections:
  claims:
    validations:
      - id: broken
        expr: "input.amount >"
        on_fail: {code: 422, msg: "x"}
`
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"validate", "--file", writeConfig(t, broken)}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "Erro de carregamento/estrutura")
}

func TestCall_Simulated(t *testing.T) {
	path := writeConfig(t, validConfig)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"call", "--file", path, "--method", "get", "--path", "/api/customers?pageSize=2", "--sim",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	var env envelope.Envelope
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &env))
	assert.True(t, env.Success)
	page := env.Data.(map[string]interface{})
	assert.Len(t, page["items"], 2)

	stdout.Reset()
	code = run(context.Background(), []string{
		"call", "--file", path, "--method", "POST", "--path", "/api/payments", "--data", `{"amount": -5}`, "--sim",
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &env))
	assert.False(t, env.Success)
}

func TestCall_InvalidData(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"call", "--file", writeConfig(t, validConfig), "--method", "POST", "--path", "/api/claims", "--data", "{", "--sim",
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "-data não é JSON válido")
}

func TestSplitQuery(t *testing.T) {
	path, query := splitQuery("/api/claims?status=pending&page=2")
	assert.Equal(t, "/api/claims", path)
	assert.Equal(t, map[string]interface{}{"status": "pending", "page": "2"}, query)

	path, query = splitQuery("/api/health")
	assert.Equal(t, "/api/health", path)
	assert.Nil(t, query)
}
