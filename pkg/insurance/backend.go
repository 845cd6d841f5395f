// Package insurance implementa o backend simulado de administração de
// seguros: rotas CRUD sobre o store, dashboard, settings, upload de
// documentos, riders e processamento de pagamentos.
package insurance

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/insurance-sim/pkg/rules"
	"github.com/raywall/insurance-sim/pkg/store"
	"github.com/rs/zerolog"
)

// Backend concentra o estado do simulador. O store é injetado; o Backend
// nunca cria estado global.
type Backend struct {
	store    *store.Store
	rules    *rules.RuleSet
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time

	settingsMu sync.Mutex
	settings   map[string]interface{}
}

// Option customiza o Backend.
type Option func(*Backend)

// WithRules habilita as validações CEL por coleção.
func WithRules(rs *rules.RuleSet) Option {
	return func(b *Backend) { b.rules = rs }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Backend) { b.logger = l }
}

// WithClock substitui o relógio usado no dashboard e nos insights.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.now = now }
}

// NewBackend cria o backend e carrega as fixtures no store.
func NewBackend(s *store.Store, opts ...Option) *Backend {
	v := validator.New()
	// mensagens com o nome do campo JSON
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	b := &Backend{
		store:    s,
		validate: v,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.Reload()
	return b
}

// Store expõe o store do backend.
func (b *Backend) Store() *store.Store {
	return b.store
}

// Reload descarta todas as alterações e volta ao estado das fixtures.
func (b *Backend) Reload() {
	for _, e := range Entities {
		b.store.Seed(e.Collection, e.seed())
	}
	if b.store.Has("documents") {
		b.store.Seed("documents", nil)
	}

	b.settingsMu.Lock()
	b.settings = seedSettings()
	b.settingsMu.Unlock()

	b.logger.Info().Strs("collections", b.store.Collections()).Msg("store recarregado com as fixtures")
}

// validateInput decodifica body na struct de entrada e aplica as tags.
func (b *Backend) validateInput(body map[string]interface{}, target interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("Invalid payload: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("Invalid payload: %v", jsonFieldError(err))
	}

	if err := b.validate.Struct(target); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("Validation failed: %v", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, describe(e))
		}
		return fmt.Errorf("Validation failed: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return e.Field() + " must be a valid email"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	}
	return fmt.Sprintf("%s failed on '%s'", e.Field(), e.Tag())
}

func jsonFieldError(err error) string {
	if te, ok := err.(*json.UnmarshalTypeError); ok {
		return fmt.Sprintf("%s must be %s", te.Field, te.Type.String())
	}
	return err.Error()
}
