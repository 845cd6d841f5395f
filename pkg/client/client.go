package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/rs/zerolog"
)

// Valores padrão do client.
const (
	DefaultBaseURL    = "http://localhost:8080"
	DefaultTimeout    = 10 * time.Second
	DefaultRetries    = 1
	DefaultRetryDelay = time.Second
	NoRetries         = -1

	HeaderRequestID = "X-Request-Id"
)

// Doer é o transporte usado pelo client. *http.Client satisfaz a interface;
// com gateway.Install o mesmo client atende chamadas simuladas.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config define os padrões aplicados a todas as chamadas.
type Config struct {
	BaseURL string
	// Timeout de cada tentativa.
	Timeout time.Duration
	// Retries é o número de tentativas extras após a primeira. Zero aplica
	// DefaultRetries; NoRetries (ou qualquer negativo) desliga o retry.
	Retries int
	// RetryDelay é a unidade do backoff linear: antes da tentativa n+1
	// espera-se RetryDelay * n.
	RetryDelay time.Duration
	Headers    map[string]string
}

// Client executa chamadas com timeout, retry e interceptors. Toda chamada
// termina em um envelope; nenhum erro escapa dos métodos públicos.
type Client struct {
	cfg    Config
	http   Doer
	logger zerolog.Logger
	sleep  func(ctx context.Context, d time.Duration) error

	Requests  Chain[Request]
	Responses Chain[envelope.Envelope]
	Errors    Chain[error]
}

// Option customiza o Client.
type Option func(*Client)

// WithHTTPClient define o transporte.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithLogger define o logger de diagnóstico.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New cria um Client aplicando os padrões ausentes em cfg.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	switch {
	case cfg.Retries == 0:
		cfg.Retries = DefaultRetries
	case cfg.Retries < 0:
		cfg.Retries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}

	c := &Client{
		cfg:    cfg,
		http:   &http.Client{},
		logger: zerolog.Nop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewDefault cria um Client com todos os padrões e o baseURL informado.
func NewDefault(baseURL string, opts ...Option) *Client {
	return New(Config{BaseURL: baseURL}, opts...)
}

// Get executa um GET.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) envelope.Envelope {
	return c.Do(ctx, build(http.MethodGet, path, nil, opts))
}

// Post executa um POST com body JSON.
func (c *Client) Post(ctx context.Context, path string, body interface{}, opts ...RequestOption) envelope.Envelope {
	return c.Do(ctx, build(http.MethodPost, path, body, opts))
}

// Put executa um PUT com body JSON.
func (c *Client) Put(ctx context.Context, path string, body interface{}, opts ...RequestOption) envelope.Envelope {
	return c.Do(ctx, build(http.MethodPut, path, body, opts))
}

// Patch executa um PATCH com body JSON.
func (c *Client) Patch(ctx context.Context, path string, body interface{}, opts ...RequestOption) envelope.Envelope {
	return c.Do(ctx, build(http.MethodPatch, path, body, opts))
}

// Delete executa um DELETE.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) envelope.Envelope {
	return c.Do(ctx, build(http.MethodDelete, path, nil, opts))
}

// Upload envia file como multipart/form-data no campo "file", junto dos
// campos simples em fields. O Content-Type JSON padrão é omitido: o boundary
// vem do próprio corpo multipart.
func (c *Client) Upload(ctx context.Context, path, filename string, file io.Reader, fields map[string]string, opts ...RequestOption) envelope.Envelope {
	req := build(http.MethodPost, path, nil, opts)

	form, err := encodeMultipart(filename, file, fields)
	if err != nil {
		req = c.prepare(req)
		c.logger.Error().Err(err).Str("request_id", req.RequestID).Msg("falha ao montar multipart")
		return c.fail(req, err)
	}
	req.form = form
	return c.Do(ctx, req)
}

func build(method, path string, body interface{}, opts []RequestOption) Request {
	req := Request{Method: method, Path: path, Body: body}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

// Do executa uma chamada lógica:
// request interceptors → tentativas (com timeout e backoff linear) →
// response interceptors (sucesso) ou error interceptors (falha final).
func (c *Client) Do(ctx context.Context, req Request) envelope.Envelope {
	req = c.prepare(req)
	log := c.logger.With().
		Str("request_id", req.RequestID).
		Str("method", req.Method).
		Str("path", req.Path).
		Logger()

	log.Debug().Int("retries", req.retries).Dur("timeout", req.Timeout).Msg("iniciando requisição")

	if n := c.Requests.Len(); n > 0 {
		req = c.Requests.Apply(req.Clone())
		log.Debug().Int("interceptors", n).Msg("request interceptors aplicados")
	}

	payload, contentType, err := req.encodeBody()
	if err != nil {
		log.Error().Err(err).Msg("falha ao serializar body")
		return c.fail(req, err)
	}

	attempts := req.retries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		env, err := c.attempt(ctx, req, payload, contentType)
		if err == nil {
			log.Debug().Int("attempt", attempt).Int("status", env.Status).
				Dur("duration", time.Since(start)).Msg("tentativa concluída")

			if n := c.Responses.Len(); n > 0 {
				env = c.Responses.Apply(env)
				log.Debug().Int("interceptors", n).Msg("response interceptors aplicados")
			}
			return env
		}

		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Int("of", attempts).
			Dur("duration", time.Since(start)).Msg("tentativa falhou")

		if attempt == attempts || !retryable(ctx, err) {
			break
		}

		wait := c.cfg.RetryDelay * time.Duration(attempt)
		log.Debug().Dur("wait", wait).Int("next_attempt", attempt+1).Msg("aguardando backoff")
		if err := c.sleep(ctx, wait); err != nil {
			lastErr = fmt.Errorf("%w (cancelado durante backoff: %v)", lastErr, err)
			break
		}
	}

	return c.fail(req, lastErr)
}

// prepare aplica os padrões da chamada: método, request id, timeout,
// retries e headers (padrão < Config.Headers < headers da chamada).
func (c *Client) prepare(req Request) Request {
	req = req.Clone()
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	req.Method = strings.ToUpper(req.Method)
	if req.RequestID == "" {
		req.RequestID = envelope.NewRequestID()
	}
	if req.Timeout <= 0 {
		req.Timeout = c.cfg.Timeout
	}
	if !req.retriesSet {
		req.retries = c.cfg.Retries
		req.retriesSet = true
	}

	headers := map[string]string{
		"Accept":       "application/json",
		"Content-Type": "application/json",
	}
	for k, v := range c.cfg.Headers {
		headers[k] = v
	}
	for k, v := range req.Headers {
		headers[k] = v
	}
	headers[HeaderRequestID] = req.RequestID
	req.Headers = headers
	return req
}

// attempt executa uma tentativa física com seu próprio timeout.
func (c *Client) attempt(ctx context.Context, req Request, payload []byte, contentType string) (envelope.Envelope, error) {
	actx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(actx, req.Method, c.url(req), body)
	if err != nil {
		return envelope.Envelope{}, fmt.Errorf("erro ao criar request: %w", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if req.form != nil {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return envelope.Envelope{}, c.classify(ctx, actx, req, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if cerr := c.classify(ctx, actx, req, err); errors.Is(cerr, ErrTimeout) {
			return envelope.Envelope{}, cerr
		}
		return envelope.Envelope{}, fmt.Errorf("%w: %v", ErrBodyDecode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return envelope.Envelope{}, newHTTPError(resp, raw)
	}

	env, err := decodeEnvelope(resp.Header.Get("Content-Type"), raw)
	if err != nil {
		return envelope.Envelope{}, err
	}
	env.Status = resp.StatusCode
	if env.RequestID == "" {
		env.RequestID = req.RequestID
	}
	return env, nil
}

// classify transforma o estouro do timeout da tentativa em ErrTimeout.
func (c *Client) classify(ctx, actx context.Context, req Request, err error) error {
	if ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, req.Timeout)
	}
	return err
}

// fail passa o erro final pela cadeia de error interceptors e devolve um
// envelope de falha. Se o backend respondeu com envelope, ele é preservado.
func (c *Client) fail(req Request, err error) envelope.Envelope {
	final := err
	if n := c.Errors.Len(); n > 0 {
		final = c.Errors.Apply(err)
		c.logger.Debug().Str("request_id", req.RequestID).Int("interceptors", n).Msg("error interceptors aplicados")
		if final == nil {
			final = err
		}
	}

	var httpErr *HTTPError
	if errors.As(final, &httpErr) {
		if httpErr.Envelope != nil {
			env := *httpErr.Envelope
			env.Status = httpErr.StatusCode
			if env.RequestID == "" {
				env.RequestID = req.RequestID
			}
			return env
		}
		return envelope.Fail(final.Error()).WithStatus(httpErr.StatusCode).WithRequestID(req.RequestID)
	}

	c.logger.Error().Err(final).Str("request_id", req.RequestID).Msg("requisição falhou")
	return envelope.Fail(final.Error()).WithRequestID(req.RequestID)
}

func (c *Client) url(req Request) string {
	target := req.Path
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(target, "/")
	}
	if q := req.encodedQuery(); q != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + q
	}
	return target
}

// retryable: timeouts, erros de transporte, 5xx e 429 são retentados; falha
// de decode, 4xx e cancelamento pelo chamador não.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, ErrBodyDecode) || errors.Is(err, ErrEncodeBody) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	return true
}

func newHTTPError(resp *http.Response, raw []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: resp.StatusCode}
	if env, err := decodeEnvelope(resp.Header.Get("Content-Type"), raw); err == nil && isEnvelope(raw) {
		httpErr.Envelope = &env
		return httpErr
	}
	httpErr.Body = strings.TrimSpace(string(raw))
	return httpErr
}

// decodeEnvelope decide entre JSON e texto pelo Content-Type. JSON com a
// chave "success" é tratado como envelope; outro JSON ou texto vira o Data
// de um envelope de sucesso.
func decodeEnvelope(contentType string, raw []byte) (envelope.Envelope, error) {
	if !strings.Contains(strings.ToLower(contentType), "json") {
		return envelope.OK(string(raw)), nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return envelope.OK(nil), nil
	}

	if isEnvelope(raw) {
		var env envelope.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return envelope.Envelope{}, fmt.Errorf("%w: %v", ErrBodyDecode, err)
		}
		return env, nil
	}

	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return envelope.Envelope{}, fmt.Errorf("%w: %v", ErrBodyDecode, err)
	}
	return envelope.OK(data), nil
}

func isEnvelope(raw []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	_, ok := probe["success"]
	return ok
}

func encodeMultipart(filename string, file io.Reader, fields map[string]string) (*formPayload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncodeBody, err)
		}
	}
	if file != nil {
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncodeBody, err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncodeBody, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeBody, err)
	}
	return &formPayload{body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
