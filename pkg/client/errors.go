package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/raywall/insurance-sim/pkg/envelope"
)

var (
	// ErrTimeout indica que a tentativa excedeu o timeout configurado.
	ErrTimeout = errors.New("request timeout")
	// ErrBodyDecode indica falha ao ler ou decodificar o corpo da resposta.
	ErrBodyDecode = errors.New("failed to parse response body")
	// ErrEncodeBody indica falha ao serializar o corpo da requisição.
	ErrEncodeBody = errors.New("failed to encode request body")
)

// HTTPError representa uma resposta não-2xx. Envelope vem preenchido quando
// o backend devolveu um envelope estruturado.
type HTTPError struct {
	StatusCode int
	Envelope   *envelope.Envelope
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Envelope != nil && e.Envelope.Error != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Envelope.Error)
	}
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Temporary informa se vale tentar novamente (5xx e 429).
func (e *HTTPError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}
