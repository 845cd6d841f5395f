package router

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// DecodeLoose tenta decodificar s como JSON e, se não for JSON válido,
// devolve a string original. A ordem é fixa:
//  1. string vazia → ""
//  2. JSON válido → valor decodificado (números viram float64)
//  3. qualquer outra coisa → s sem alteração
func DecodeLoose(s string) interface{} {
	if s == "" {
		return ""
	}
	raw := []byte(s)
	if !json.Valid(raw) {
		return s
	}
	var v interface{}
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&v); err != nil {
		return s
	}
	return v
}

// ParseQuery extrai todos os pares key=value da query string, decodificando
// cada valor com DecodeLoose. Chaves repetidas: o último valor vence.
func ParseQuery(rawQuery string) map[string]interface{} {
	out := make(map[string]interface{})
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	if rawQuery == "" {
		return out
	}

	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		k, err := url.QueryUnescape(key)
		if err != nil {
			k = key
		}
		v, err := url.QueryUnescape(value)
		if err != nil {
			v = value
		}
		out[k] = DecodeLoose(v)
	}
	return out
}
