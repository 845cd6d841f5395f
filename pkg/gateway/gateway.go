package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/raywall/insurance-sim/pkg/metrics"
	"github.com/raywall/insurance-sim/pkg/router"
	"github.com/rs/zerolog"
)

const (
	// DefaultPrefix é o prefixo das chamadas atendidas pelo backend simulado.
	DefaultPrefix = "/api"

	HeaderRequestID = "X-Request-Id"
	HeaderSimulated = "X-Simulated"

	maxMultipartMemory = 32 << 20
)

// Gateway intercepta chamadas HTTP cujo path começa com o prefixo da API e
// as atende a partir da tabela de rotas em memória. As demais chamadas
// seguem para o transporte original sem modificação.
//
// Gateway implementa http.RoundTripper (uso client-side) e http.Handler
// (uso como servidor).
type Gateway struct {
	registry *router.Registry
	prefix   string
	latency  time.Duration
	next     http.RoundTripper
	logger   zerolog.Logger
	metrics  metrics.Provider
}

// Option customiza o Gateway.
type Option func(*Gateway)

// WithPrefix define o prefixo interceptado (padrão /api).
func WithPrefix(prefix string) Option {
	return func(g *Gateway) {
		if prefix != "" {
			g.prefix = prefix
		}
	}
}

// WithLatency simula o atraso de rede antes de cada despacho.
func WithLatency(d time.Duration) Option {
	return func(g *Gateway) { g.latency = d }
}

// WithNext define o transporte real usado no pass-through.
func WithNext(next http.RoundTripper) Option {
	return func(g *Gateway) {
		if next != nil {
			g.next = next
		}
	}
}

// WithLogger define o logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// WithMetrics define o provider de métricas.
func WithMetrics(p metrics.Provider) Option {
	return func(g *Gateway) {
		if p != nil {
			g.metrics = p
		}
	}
}

// New cria um Gateway sobre a tabela de rotas.
func New(registry *router.Registry, opts ...Option) *Gateway {
	g := &Gateway{
		registry: registry,
		prefix:   DefaultPrefix,
		next:     http.DefaultTransport,
		logger:   zerolog.Nop(),
		metrics:  metrics.Noop{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Prefix devolve o prefixo interceptado.
func (g *Gateway) Prefix() string {
	return g.prefix
}

// Intercepts informa se o path será atendido pelo backend simulado.
func (g *Gateway) Intercepts(path string) bool {
	return strings.HasPrefix(path, g.prefix)
}

// RoundTrip atende chamadas sob o prefixo e repassa as demais ao transporte
// original.
func (g *Gateway) RoundTrip(req *http.Request) (*http.Response, error) {
	if !g.Intercepts(req.URL.Path) {
		return g.next.RoundTrip(req)
	}

	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		select {
		case <-req.Context().Done():
			timer.Stop()
			closeBody(req)
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}

	return g.Handle(req), nil
}

// Handle despacha a requisição pela tabela de rotas e sintetiza a resposta.
// Nunca devolve erro: rota inexistente, body inválido e panic de handler
// viram envelopes de falha.
func (g *Gateway) Handle(req *http.Request) *http.Response {
	start := time.Now()
	requestID := req.Header.Get(HeaderRequestID)

	env, route := g.dispatch(req)
	env = env.WithRequestID(requestID)
	status := env.HTTPStatus()

	body, err := json.Marshal(env)
	if err != nil {
		g.logger.Error().Err(err).Str("path", req.URL.Path).Msg("erro ao serializar envelope")
		env = envelope.Fail("Internal server error").WithStatus(http.StatusInternalServerError).WithRequestID(requestID)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(env)
	}

	latency := time.Since(start)
	tags := []string{"method:" + req.Method, "route:" + route, "status:" + strconv.Itoa(status)}
	_ = g.metrics.Count(metrics.GatewayRequests, 1, tags)
	_ = g.metrics.Histogram(metrics.GatewayLatencyMS, float64(latency.Milliseconds()), tags)

	g.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("route", route).
		Int("status", status).
		Str("request_id", env.RequestID).
		Int64("latency_ms", latency.Milliseconds()).
		Msg("requisição simulada")

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set(HeaderRequestID, env.RequestID)
	header.Set(HeaderSimulated, "true")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// dispatch resolve a rota e executa o handler. route é o padrão casado, ou
// "unmatched".
func (g *Gateway) dispatch(req *http.Request) (env envelope.Envelope, route string) {
	route = "unmatched"

	match := g.registry.Resolve(req.Method, req.URL.Path)
	if match == nil {
		closeBody(req)
		return envelope.Fail(fmt.Sprintf("Route not found: %s %s", req.Method, req.URL.Path)).
			WithStatus(http.StatusNotFound), route
	}
	route = match.Route.Pattern

	body, err := readBody(req)
	if err != nil {
		g.logger.Warn().Err(err).Str("path", req.URL.Path).Msg("body inválido")
		return envelope.Fail("Invalid request body: " + err.Error()).WithStatus(http.StatusBadRequest), route
	}

	in := &router.Request{
		Method:     req.Method,
		Path:       req.URL.Path,
		Route:      match.Route.Pattern,
		PathParams: match.PathParams,
		Query:      router.ParseQuery(req.URL.RawQuery),
		Body:       body,
		Header:     req.Header.Clone(),
	}

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().
				Interface("panic", r).
				Str("route", match.Route.Key()).
				Msg("panic no handler simulado")
			_ = g.metrics.Count(metrics.GatewayPanics, 1, []string{"route:" + route})
			env = envelope.Fail("Internal server error").WithStatus(http.StatusInternalServerError)
		}
	}()

	return match.Route.Handler(req.Context(), in), route
}

// readBody decodifica o corpo: multipart vira mapa de campos (mais o
// descritor do arquivo em "file"); texto passa por router.DecodeLoose.
func readBody(req *http.Request) (interface{}, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()

	mediaType, params, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipart(req.Body, params["boundary"])
	}

	raw, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler body: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return router.DecodeLoose(string(raw)), nil
}

func readMultipart(body io.Reader, boundary string) (interface{}, error) {
	if boundary == "" {
		return nil, fmt.Errorf("multipart sem boundary")
	}
	form, err := multipart.NewReader(body, boundary).ReadForm(maxMultipartMemory)
	if err != nil {
		return nil, fmt.Errorf("multipart inválido: %w", err)
	}
	defer form.RemoveAll()

	out := make(map[string]interface{})
	for key, values := range form.Value {
		if len(values) > 0 {
			out[key] = values[len(values)-1]
		}
	}
	for key, files := range form.File {
		if len(files) == 0 {
			continue
		}
		fh := files[0]
		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		out[key] = router.FileInfo{Name: fh.Filename, Size: fh.Size, Type: contentType}
	}
	return out, nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}

// ServeHTTP expõe o backend simulado como servidor HTTP.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if g.latency > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(g.latency):
		}
	}

	resp := g.Handle(r)
	defer resp.Body.Close()

	for k, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		g.logger.Warn().Err(err).Msg("erro ao escrever resposta")
	}
}

// Install faz client passar pelo gateway. Chamadas repetidas não empilham
// gateways: se o transporte do client já é um Gateway, ele é substituído
// mantendo o transporte original como pass-through.
func Install(client *http.Client, g *Gateway) {
	next := client.Transport
	if existing, ok := next.(*Gateway); ok {
		next = existing.next
	}
	if next == nil {
		next = http.DefaultTransport
	}

	installed := *g
	installed.next = next
	client.Transport = &installed
}

// Installed informa se client já passa por um Gateway.
func Installed(client *http.Client) bool {
	_, ok := client.Transport.(*Gateway)
	return ok
}

var (
	_ http.RoundTripper = (*Gateway)(nil)
	_ http.Handler      = (*Gateway)(nil)
)
