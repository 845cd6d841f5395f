package transport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/gateway"
	"github.com/raywall/insurance-sim/pkg/logger"
	"github.com/rs/zerolog"
)

// LambdaHandler adapta eventos do API Gateway para o backend simulado.
type LambdaHandler struct {
	gw     *gateway.Gateway
	logger zerolog.Logger
}

func NewLambdaHandler(gw *gateway.Gateway, log zerolog.Logger) *LambdaHandler {
	return &LambdaHandler{gw: gw, logger: log}
}

// Handle converte o evento em *http.Request e despacha por gateway.Handle.
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	corrID := headerValue(req.Headers, HeaderCorrelationID)
	if corrID == "" {
		corrID = uuid.NewString()
	}
	log := h.logger.With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx, log)
	ctx = context.WithValue(ctx, correlationKey{}, corrID)

	response, err := h.dispatch(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("evento inválido")
		response = failure(envelope.Fail("Invalid request: "+err.Error()).WithStatus(http.StatusBadRequest))
	}
	response.Headers[HeaderCorrelationID] = corrID

	log.Info().
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int("status", response.StatusCode).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("lambda request completed")

	return response, nil
}

func (h *LambdaHandler) dispatch(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if !h.gw.Intercepts(req.Path) {
		return failure(envelope.Fail(fmt.Sprintf("Route not found: %s %s", req.HTTPMethod, req.Path)).
			WithStatus(http.StatusNotFound)), nil
	}

	httpReq, err := toHTTPRequest(ctx, req)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	resp := h.gw.Handle(httpReq)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

func toHTTPRequest(ctx context.Context, req events.APIGatewayProxyRequest) (*http.Request, error) {
	query := url.Values{}
	for k, v := range req.QueryStringParameters {
		query.Set(k, v)
	}
	for k, values := range req.MultiValueQueryStringParameters {
		query[k] = values
	}

	body := req.Body
	if req.IsBase64Encoded && body != "" {
		raw, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("body base64 inválido: %w", err)
		}
		body = string(raw)
	}

	u := &url.URL{Path: req.Path, RawQuery: query.Encode()}
	method := req.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func failure(env envelope.Envelope) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(env)
	return events.APIGatewayProxyResponse{
		StatusCode: env.HTTPStatus(),
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
