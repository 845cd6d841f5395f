package router

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
)

// Request é a entrada unificada de um handler: path params, query params e
// body já decodificados.
type Request struct {
	Method     string
	Path       string
	Route      string
	PathParams map[string]string
	Query      map[string]interface{}
	// Body é o JSON decodificado, a string original quando não for JSON, ou
	// um mapa de campos quando o corpo for multipart.
	Body   interface{}
	Header http.Header
}

// Param devolve um path param.
func (r *Request) Param(name string) string {
	return r.PathParams[name]
}

// QueryString devolve o query param como string ("" quando ausente).
func (r *Request) QueryString(name string) string {
	v, ok := r.Query[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok {
		// inteiros fora de ±2^53 não cabem exatos em int64 via float
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return strconv.FormatInt(int64(f), 10)
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

// QueryInt devolve o query param como inteiro, ou def quando ausente ou inválido.
func (r *Request) QueryInt(name string, def int) int {
	switch v := r.Query[name].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// BodyMap devolve o body como objeto. ok é false quando o body não é um
// objeto JSON.
func (r *Request) BodyMap() (map[string]interface{}, bool) {
	m, ok := r.Body.(map[string]interface{})
	return m, ok
}

// FileInfo descreve um arquivo recebido em um corpo multipart.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}
