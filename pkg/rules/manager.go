package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// RuleManager compila e avalia expressões CEL. Programas compilados ficam
// em cache pela expressão.
type RuleManager struct {
	env *cel.Env

	mu    sync.RWMutex
	cache map[string]cel.Program
}

// NewRuleManager inicializa o ambiente CEL com as variáveis disponíveis para
// as regras das coleções.
func NewRuleManager() (*RuleManager, error) {
	env, err := cel.NewEnv(
		cel.CrossTypeNumericComparisons(true),
		cel.Variable("input", cel.DynType),      // body da requisição
		cel.Variable("current", cel.DynType),    // registro atual (update)
		cel.Variable("params", cel.DynType),     // path params
		cel.Variable("query", cel.DynType),      // query params
		cel.Variable("collection", cel.StringType),
		cel.Variable("method", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("erro fatal CEL init: %w", err)
	}
	return &RuleManager{env: env, cache: make(map[string]cel.Program)}, nil
}

// Compile valida a expressão e guarda o programa no cache.
func (rm *RuleManager) Compile(expr string) error {
	_, err := rm.program(expr)
	return err
}

// EvaluateBool processa regras de validação (deve retornar true/false).
func (rm *RuleManager) EvaluateBool(expr string, vars map[string]interface{}) (bool, error) {
	if expr == "" {
		return true, nil
	}
	out, err := rm.EvaluateValue(expr, vars)
	if err != nil {
		return false, err
	}
	val, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("resultado de '%s' não é booleano: %T", expr, out)
	}
	return val, nil
}

// EvaluateValue avalia a expressão e devolve o valor nativo.
func (rm *RuleManager) EvaluateValue(expr string, vars map[string]interface{}) (interface{}, error) {
	if expr == "" {
		return nil, nil
	}
	prg, err := rm.program(expr)
	if err != nil {
		return nil, err
	}
	out, _, err := prg.Eval(withDefaults(vars))
	if err != nil {
		return nil, fmt.Errorf("erro execução CEL: %w", err)
	}
	return out.Value(), nil
}

func (rm *RuleManager) program(expr string) (cel.Program, error) {
	rm.mu.RLock()
	prg, ok := rm.cache[expr]
	rm.mu.RUnlock()
	if ok {
		return prg, nil
	}

	ast, issues := rm.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("erro compilação CEL '%s': %w", expr, issues.Err())
	}
	prg, err := rm.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("erro ao gerar programa CEL: %w", err)
	}

	rm.mu.Lock()
	rm.cache[expr] = prg
	rm.mu.Unlock()
	return prg, nil
}

// todas as variáveis declaradas precisam existir na ativação
func withDefaults(vars map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{
		"input":      map[string]interface{}{},
		"current":    map[string]interface{}{},
		"params":     map[string]string{},
		"query":      map[string]interface{}{},
		"collection": "",
		"method":     "",
	}
	for k, v := range vars {
		if v != nil {
			out[k] = v
		}
	}
	return out
}
