package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// Request é a configuração de uma chamada lógica. É o valor que passa pela
// cadeia de request interceptors.
type Request struct {
	Method  string
	Path    string
	Query   map[string]interface{}
	Headers map[string]string
	Body    interface{}

	// Timeout por tentativa (padrão Config.Timeout).
	Timeout time.Duration
	// RequestID identifica a chamada lógica; é o mesmo em todas as tentativas.
	RequestID string

	retries    int
	retriesSet bool
	form       *formPayload
}

type formPayload struct {
	body        []byte
	contentType string
}

// Retries devolve o número de tentativas extras desta chamada.
func (r Request) Retries() int {
	return r.retries
}

// Clone copia os mapas para que interceptors não afetem o chamador.
func (r Request) Clone() Request {
	out := r
	if r.Headers != nil {
		out.Headers = make(map[string]string, len(r.Headers))
		for k, v := range r.Headers {
			out.Headers[k] = v
		}
	}
	if r.Query != nil {
		out.Query = make(map[string]interface{}, len(r.Query))
		for k, v := range r.Query {
			out.Query[k] = v
		}
	}
	return out
}

// RequestOption ajusta uma chamada.
type RequestOption func(*Request)

// WithQuery adiciona query params (valores nil são ignorados).
func WithQuery(query map[string]interface{}) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(map[string]interface{}, len(query))
		}
		for k, v := range query {
			r.Query[k] = v
		}
	}
}

// WithHeader define um header da chamada.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// WithTimeout define o timeout de cada tentativa.
func WithTimeout(d time.Duration) RequestOption {
	return func(r *Request) { r.Timeout = d }
}

// WithRetries define quantas tentativas extras são feitas após a primeira.
func WithRetries(n int) RequestOption {
	return func(r *Request) {
		if n < 0 {
			n = 0
		}
		r.retries = n
		r.retriesSet = true
	}
}

func (r Request) encodedQuery() string {
	values := url.Values{}
	for k, v := range r.Query {
		if v == nil {
			continue
		}
		values.Set(k, fmt.Sprintf("%v", v))
	}
	return values.Encode()
}

// encodeBody serializa o body uma única vez; todas as tentativas reenviam os
// mesmos bytes.
func (r Request) encodeBody() ([]byte, string, error) {
	if r.form != nil {
		return r.form.body, r.form.contentType, nil
	}
	switch b := r.Body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return b, "", nil
	case json.RawMessage:
		return b, "application/json", nil
	}

	raw, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrEncodeBody, err)
	}
	return raw, "application/json", nil
}
