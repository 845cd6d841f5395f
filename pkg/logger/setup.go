package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/raywall/insurance-sim/pkg/config"
	"github.com/rs/zerolog"
)

// Configure inicializa o logger a partir da configuração do YAML e ajusta o
// nível global do zerolog.
func Configure(cfg config.LoggingConf, service string) zerolog.Logger {
	return New(os.Stdout, cfg, service)
}

// New é Configure com o destino explícito.
func New(out io.Writer, cfg config.LoggingConf, service string) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	switch {
	case !cfg.Enabled:
		out = io.Discard
	case cfg.Format == "console":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	ctx := zerolog.New(out).With().Timestamp()
	if service != "" {
		ctx = ctx.Str("service", service)
	}
	return ctx.Logger()
}

// WithContext guarda o logger (normalmente já com o correlation id) no ctx.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// FromContext recupera o logger do ctx, ou um logger desabilitado.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
