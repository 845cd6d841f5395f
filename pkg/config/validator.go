package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/insurance-sim/pkg/store"
)

// ExprChecker compila uma expressão de regra e devolve o erro de compilação.
type ExprChecker func(expr string) error

type ConfigValidator struct {
	validate    *validator.Validate
	collections map[string]bool
	checkExpr   ExprChecker
}

// NewValidator cria uma nova instância do validador. As coleções aceitas em
// `collections` são as de store.DefaultCollections.
func NewValidator() *ConfigValidator {
	known := make(map[string]bool, len(store.DefaultCollections))
	for _, name := range store.DefaultCollections {
		known[name] = true
	}
	return &ConfigValidator{
		validate:    validator.New(),
		collections: known,
	}
}

// WithExprChecker habilita a compilação das expressões durante a validação.
func (cv *ConfigValidator) WithExprChecker(check ExprChecker) *ConfigValidator {
	cv.checkExpr = check
	return cv
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *AppConfig) error {
	if err := cv.validate.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}
	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *AppConfig) error {
	durations := map[string]string{
		"service.latency":    cfg.Service.Latency,
		"client.timeout":     cfg.Client.Timeout,
		"client.retry_delay": cfg.Client.RetryDelay,
	}
	for field, raw := range durations {
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("duração inválida em '%s': %q", field, raw)
		}
		if d < 0 {
			return fmt.Errorf("duração negativa em '%s': %q", field, raw)
		}
	}

	for name, col := range cfg.Collections {
		if !cv.collections[name] {
			return fmt.Errorf("coleção desconhecida: '%s'", name)
		}

		seen := make(map[string]bool, len(col.Validations))
		for _, rule := range col.Validations {
			if seen[rule.ID] {
				return fmt.Errorf("validação duplicada em '%s': '%s'", name, rule.ID)
			}
			seen[rule.ID] = true

			if cv.checkExpr != nil {
				if err := cv.checkExpr(rule.Expr); err != nil {
					return fmt.Errorf("regra '%s.%s': %w", name, rule.ID, err)
				}
			}
		}
	}
	return nil
}
