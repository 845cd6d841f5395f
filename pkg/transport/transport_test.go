package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/gateway"
	"github.com/raywall/insurance-sim/pkg/logger"
	"github.com/raywall/insurance-sim/pkg/router"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway() *gateway.Gateway {
	reg := router.NewRegistry()
	reg.Register("GET", "/api/health", func(ctx context.Context, req *router.Request) envelope.Envelope {
		return envelope.OK(map[string]interface{}{"status": "healthy", "correlation": CorrelationID(ctx)})
	})
	reg.Register("GET", "/api/claims/:id", func(ctx context.Context, req *router.Request) envelope.Envelope {
		return envelope.OK(map[string]interface{}{"id": req.Param("id"), "page": req.QueryInt("page", 1)})
	})
	reg.Register("POST", "/api/claims", func(ctx context.Context, req *router.Request) envelope.Envelope {
		logger.FromContext(ctx).Info().Msg("criando sinistro")
		return envelope.OK(req.Body)
	})
	return gateway.New(reg)
}

func decodeBody(t *testing.T, body string) envelope.Envelope {
	t.Helper()
	var env envelope.Envelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	return env
}

func TestHTTPHandler(t *testing.T) {
	var logs bytes.Buffer
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("gateway_requests_total 1"))
	})
	srv := httptest.NewServer(NewHTTPHandler(testGateway(), "/api", zerolog.New(&logs),
		WithMetricsHandler("/metrics", metricsHandler)))
	t.Cleanup(srv.Close)

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "ok", string(body))
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "gateway_requests_total 1", string(body))
	})

	t.Run("prefix goes to gateway", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/claims/CLM-001?page=3", nil)
		req.Header.Set(HeaderCorrelationID, "corr-1")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "corr-1", resp.Header.Get(HeaderCorrelationID))
		assert.NotEmpty(t, resp.Header.Get(HeaderLatency))
		body, _ := io.ReadAll(resp.Body)
		data := decodeBody(t, string(body)).Data.(map[string]interface{})
		assert.Equal(t, "CLM-001", data["id"])
		assert.Equal(t, float64(3), data["page"])
	})

	t.Run("outside prefix", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/other")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get(HeaderCorrelationID))
	})

	// Close espera as requisições em andamento, inclusive o log final.
	srv.Close()
	assert.Contains(t, logs.String(), `"correlation_id":"corr-1"`)
	assert.Contains(t, logs.String(), "request completed")
}

func TestStartHTTPServer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, StartHTTPServer(ctx, 0, http.NotFoundHandler(), zerolog.Nop()))
}

func TestLambdaHandler(t *testing.T) {
	var logs bytes.Buffer
	h := NewLambdaHandler(testGateway(), zerolog.New(&logs))

	t.Run("get with query", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod:            http.MethodGet,
			Path:                  "/api/claims/CLM-002",
			QueryStringParameters: map[string]string{"page": "2"},
			Headers:               map[string]string{"X-Correlation-Id": "lambda-1"},
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "lambda-1", resp.Headers[HeaderCorrelationID])
		assert.Equal(t, "true", resp.Headers[gateway.HeaderSimulated])

		data := decodeBody(t, resp.Body).Data.(map[string]interface{})
		assert.Equal(t, "CLM-002", data["id"])
		assert.Equal(t, float64(2), data["page"])
	})

	t.Run("base64 body", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod:      http.MethodPost,
			Path:            "/api/claims",
			Headers:         map[string]string{"Content-Type": "application/json"},
			Body:            base64.StdEncoding.EncodeToString([]byte(`{"amount":1500}`)),
			IsBase64Encoded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]interface{}{"amount": float64(1500)}, decodeBody(t, resp.Body).Data)
		assert.NotEmpty(t, resp.Headers[HeaderCorrelationID])
	})

	t.Run("invalid base64", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod:      http.MethodPost,
			Path:            "/api/claims",
			Body:            "%%%",
			IsBase64Encoded: true,
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.False(t, decodeBody(t, resp.Body).Success)
	})

	t.Run("outside prefix", func(t *testing.T) {
		resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod: http.MethodGet,
			Path:       "/static/app.js",
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Route not found: GET /static/app.js", decodeBody(t, resp.Body).Error)
	})

	assert.Contains(t, logs.String(), "lambda request completed")
	assert.Contains(t, logs.String(), "criando sinistro")
}
