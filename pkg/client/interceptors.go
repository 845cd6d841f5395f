package client

import (
	"github.com/rs/zerolog"
)

// TokenSource fornece o bearer token atual. *auth.Manager satisfaz a interface.
type TokenSource interface {
	Token() (string, error)
}

// BearerToken devolve um request interceptor que injeta
// "Authorization: Bearer <token>". Se o token não estiver disponível a
// requisição segue sem o header.
func BearerToken(src TokenSource) func(Request) Request {
	return func(r Request) Request {
		token, err := src.Token()
		if err != nil || token == "" {
			return r
		}
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers["Authorization"] = "Bearer " + token
		return r
	}
}

// StaticHeaders devolve um request interceptor que acrescenta headers fixos
// sem sobrescrever os já definidos na chamada.
func StaticHeaders(headers map[string]string) func(Request) Request {
	return func(r Request) Request {
		if r.Headers == nil {
			r.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			if _, ok := r.Headers[k]; !ok {
				r.Headers[k] = v
			}
		}
		return r
	}
}

// LogErrors devolve um error interceptor que apenas registra o erro.
func LogErrors(logger zerolog.Logger) func(error) error {
	return func(err error) error {
		logger.Error().Err(err).Msg("chamada ao backend falhou")
		return err
	}
}
