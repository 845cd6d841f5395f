package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/raywall/insurance-sim/pkg/logger"
	"github.com/rs/zerolog"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"
)

type correlationKey struct{}

// CorrelationID devolve o id de correlação anexado pelo middleware.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// HandlerOption registra rotas auxiliares no roteador.
type HandlerOption func(*mux.Router)

// WithMetricsHandler expõe h em GET path (ex: promhttp em /metrics).
func WithMetricsHandler(path string, h http.Handler) HandlerOption {
	return func(r *mux.Router) {
		if path != "" && h != nil {
			r.Handle(path, h).Methods(http.MethodGet)
		}
	}
}

// NewHTTPHandler monta o roteador: tudo sob prefix vai para o backend
// simulado e GET /healthz responde "ok" para probes de container.
func NewHTTPHandler(backend http.Handler, prefix string, log zerolog.Logger, opts ...HandlerOption) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	for _, opt := range opts {
		opt(r)
	}
	r.PathPrefix(prefix).Handler(backend)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path), http.StatusNotFound)
	})

	return ObservabilityMiddleware(log)(r)
}

// StartHTTPServer bloqueia servindo handler até ctx ser cancelado.
func StartHTTPServer(ctx context.Context, port int, handler http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("servidor HTTP ouvindo")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info().Msg("encerrando servidor HTTP")
		return srv.Shutdown(shutdownCtx)
	}
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode  int
	startTime   time.Time
	wroteHeader bool
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.statusCode = code
	rw.Header().Set(HeaderLatency, fmt.Sprintf("%d", time.Since(rw.startTime).Milliseconds()))
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// ObservabilityMiddleware propaga (ou cria) o x-correlation-id, coloca um
// logger contextual no ctx e registra cada requisição concluída.
func ObservabilityMiddleware(base zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			corrID := r.Header.Get(HeaderCorrelationID)
			if corrID == "" {
				corrID = uuid.NewString()
			}
			w.Header().Set(HeaderCorrelationID, corrID)

			log := base.With().Str("correlation_id", corrID).Logger()
			ctx := logger.WithContext(r.Context(), log)
			ctx = context.WithValue(ctx, correlationKey{}, corrID)

			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				startTime:      start,
			}
			next.ServeHTTP(wrapper, r.WithContext(ctx))

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Msg("request completed")
		})
	}
}
