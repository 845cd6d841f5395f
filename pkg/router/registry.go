package router

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/raywall/insurance-sim/pkg/envelope"
)

// HandlerFunc executa a lógica de um endpoint simulado.
type HandlerFunc func(ctx context.Context, req *Request) envelope.Envelope

// Route descreve uma entrada da tabela de rotas.
type Route struct {
	Method   string
	Pattern  string
	Handler  HandlerFunc
	segments []string
}

// Key devolve "METHOD pattern".
func (r Route) Key() string {
	return r.Method + " " + r.Pattern
}

// Match é o resultado de Resolve. É criado a cada requisição.
type Match struct {
	Route      Route
	PathParams map[string]string
}

// Registry é a tabela ordenada de rotas. A primeira rota que casa vence.
type Registry struct {
	mu     sync.RWMutex
	routes []Route
	// static aponta "METHOD /path/literal" para o índice da primeira rota que
	// casa com aquele path. Se uma rota com captura registrada antes já cobre o
	// path, o índice é o dela.
	static map[string]int
}

// NewRegistry cria uma tabela vazia.
func NewRegistry() *Registry {
	return &Registry{static: make(map[string]int)}
}

// Register anexa uma rota à tabela.
func (r *Registry) Register(method, pattern string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route := Route{
		Method:   strings.ToUpper(method),
		Pattern:  pattern,
		Handler:  handler,
		segments: strings.Split(pattern, "/"),
	}
	r.routes = append(r.routes, route)
	idx := len(r.routes) - 1

	if isStatic(route.segments) {
		key := route.Key()
		if _, exists := r.static[key]; exists {
			return
		}
		r.static[key] = idx
		for i := 0; i < idx; i++ {
			if r.routes[i].Method == route.Method {
				if _, ok := matchSegments(r.routes[i].segments, route.segments); ok {
					r.static[key] = i
					break
				}
			}
		}
	}
}

// Handle é um atalho para Register.
func (r *Registry) Handle(method, pattern string, handler HandlerFunc) {
	r.Register(method, pattern, handler)
}

// Resolve encontra o handler para (method, path). Devolve nil quando nenhuma
// rota casa. path não deve conter query string.
func (r *Registry) Resolve(method, path string) *Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	method = strings.ToUpper(method)

	if idx, ok := r.static[method+" "+path]; ok {
		route := r.routes[idx]
		params, _ := matchSegments(route.segments, strings.Split(path, "/"))
		return &Match{Route: route, PathParams: params}
	}

	parts := strings.Split(path, "/")
	for _, route := range r.routes {
		if route.Method != method {
			continue
		}
		if params, ok := matchSegments(route.segments, parts); ok {
			return &Match{Route: route, PathParams: params}
		}
	}
	return nil
}

// Routes lista as chaves registradas, em ordem.
func (r *Registry) Routes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, len(r.routes))
	for i, route := range r.routes {
		keys[i] = route.Key()
	}
	return keys
}

// Len devolve o número de rotas registradas.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.routes)
}

// matchSegments exige o mesmo número de segmentos; ":nome" casa com qualquer
// segmento não vazio, o resto precisa ser igual.
func matchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}

	params := make(map[string]string)
	for i, seg := range pattern {
		if strings.HasPrefix(seg, ":") {
			if path[i] == "" {
				return nil, false
			}
			value, err := url.PathUnescape(path[i])
			if err != nil {
				value = path[i]
			}
			params[seg[1:]] = value
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}

func isStatic(segments []string) bool {
	for _, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			return false
		}
	}
	return true
}
