package store

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/raywall/insurance-sim/pkg/envelope"
)

// Campos de sistema carimbados pelo store.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// DefaultCollections são as coleções do backend de seguros.
var DefaultCollections = []string{"customers", "policies", "claims", "agents", "payments", "documents"}

// Record é uma linha de uma coleção.
type Record map[string]interface{}

// ID devolve o identificador do registro ("" quando ausente).
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// UnknownCollectionError indica erro de programação: a coleção não foi
// registrada no store. O store entra em panic com este valor.
type UnknownCollectionError struct {
	Name string
}

func (e *UnknownCollectionError) Error() string {
	return fmt.Sprintf("store: coleção desconhecida %q", e.Name)
}

type collection struct {
	mu      sync.Mutex
	records []Record
}

// Store mantém todas as coleções em memória durante a vida do processo.
// Cada coleção tem seu próprio mutex: create/update/delete nunca competem
// pela geração de id nem perdem atualizações.
type Store struct {
	collections map[string]*collection
	now         func() time.Time
}

// Option customiza o Store.
type Option func(*Store)

// WithClock substitui o relógio usado nos timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New cria um store com as coleções informadas (DefaultCollections quando vazio).
func New(names []string, opts ...Option) *Store {
	if len(names) == 0 {
		names = DefaultCollections
	}
	s := &Store{
		collections: make(map[string]*collection, len(names)),
		now:         time.Now,
	}
	for _, name := range names {
		s.collections[name] = &collection{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) get(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		panic(&UnknownCollectionError{Name: name})
	}
	return c
}

// Has informa se a coleção existe.
func (s *Store) Has(name string) bool {
	_, ok := s.collections[name]
	return ok
}

// Collections lista as coleções em ordem alfabética.
func (s *Store) Collections() []string {
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Seed substitui o conteúdo da coleção por cópias dos registros informados.
// Os ids dos fixtures são mantidos.
func (s *Store) Seed(name string, records []Record) {
	c := s.get(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = make([]Record, 0, len(records))
	for _, r := range records {
		c.records = append(c.records, r.clone())
	}
}

// Count devolve o tamanho atual da coleção.
func (s *Store) Count(name string) int {
	c := s.get(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// FindAll devolve uma cópia de toda a coleção, em ordem de inserção.
func (s *Store) FindAll(name string) []Record {
	c := s.get(name)
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneAll(c.records)
}

// FindByID busca linearmente pelo id. Devolve nil quando não existe.
func (s *Store) FindByID(name, id string) Record {
	c := s.get(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(id); i >= 0 {
		return c.records[i].clone()
	}
	return nil
}

// Create atribui um id novo, carimba createdAt/updatedAt, anexa o registro e
// devolve a cópia armazenada.
func (s *Store) Create(name string, data Record) Record {
	c := s.get(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := envelope.FormatTime(s.now())
	rec := data.clone()
	if rec == nil {
		rec = Record{}
	}
	rec[FieldID] = GenerateID(name, len(c.records))
	rec[FieldCreatedAt] = ts
	rec[FieldUpdatedAt] = ts

	c.records = append(c.records, rec)
	return rec.clone()
}

// Update aplica um merge raso de patch sobre o registro e renova updatedAt.
// id e createdAt não são alterados. Devolve nil quando o id não existe.
func (s *Store) Update(name, id string, patch Record) Record {
	c := s.get(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return nil
	}

	merged := c.records[i].clone()
	for k, v := range patch {
		if k == FieldID || k == FieldCreatedAt {
			continue
		}
		merged[k] = cloneValue(v)
	}
	merged[FieldUpdatedAt] = envelope.FormatTime(s.now())

	c.records[i] = merged
	return merged.clone()
}

// Delete remove o registro (swap-remove). Devolve false quando não existe.
func (s *Store) Delete(name, id string) bool {
	c := s.get(name)
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	last := len(c.records) - 1
	c.records[i] = c.records[last]
	c.records[last] = nil
	c.records = c.records[:last]
	return true
}

// Search faz match case-insensitive de substring de query contra o valor
// (convertido para string) de cada campo informado. query vazia devolve tudo.
func (s *Store) Search(name, query string, fields []string) []Record {
	all := s.FindAll(name)
	if query == "" {
		return all
	}
	q := strings.ToLower(query)

	out := make([]Record, 0, len(all))
	for _, r := range all {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(stringify(r[f])), q) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Filter mantém os registros cujo campo é igual a cada valor não nulo do
// mapa. Valores nulos são ignorados (sem restrição).
func (s *Store) Filter(name string, equals map[string]interface{}) []Record {
	return FilterRecords(s.FindAll(name), equals)
}

// FilterRecords aplica a mesma regra de Filter sobre uma lista já carregada.
func FilterRecords(records []Record, equals map[string]interface{}) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if matchesAll(r, equals) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAll(r Record, equals map[string]interface{}) bool {
	for field, want := range equals {
		if want == nil {
			continue
		}
		got, ok := r[field]
		if !ok || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

func (c *collection) indexOf(id string) int {
	for i, r := range c.records {
		if r.ID() == id {
			return i
		}
	}
	return -1
}

// valuesEqual compara com igualdade exata, tratando tipos numéricos como
// equivalentes (int 5 == float64 5).
func valuesEqual(a, b interface{}) bool {
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func (r Record) clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneAll(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r.clone()
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch x := v.(type) {
	case Record:
		return x.clone()
	case map[string]interface{}:
		return map[string]interface{}(Record(x).clone())
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}
