package rules

import (
	"fmt"

	"github.com/raywall/insurance-sim/pkg/config"
)

// Violation é devolvida quando uma regra de coleção não é satisfeita.
type Violation struct {
	RuleID string
	Code   int
	Msg    string
	// Cause é preenchido quando a expressão falhou ao executar (por exemplo,
	// campo ausente no input). Nesse caso a regra conta como não satisfeita.
	Cause error
}

func (v *Violation) Error() string {
	if v.Cause != nil {
		return fmt.Sprintf("%s (regra %s: %v)", v.Msg, v.RuleID, v.Cause)
	}
	return v.Msg
}

func (v *Violation) Unwrap() error { return v.Cause }

// RuleSet guarda as validações de cada coleção, já compiladas.
type RuleSet struct {
	rm    *RuleManager
	rules map[string][]config.ValidationRule
}

// NewRuleSet compila todas as expressões; qualquer erro de compilação
// impede a criação.
func NewRuleSet(rm *RuleManager, rules map[string][]config.ValidationRule) (*RuleSet, error) {
	for collection, list := range rules {
		for _, rule := range list {
			if err := rm.Compile(rule.Expr); err != nil {
				return nil, fmt.Errorf("regra '%s.%s': %w", collection, rule.ID, err)
			}
		}
	}
	return &RuleSet{rm: rm, rules: rules}, nil
}

// Len devolve o total de regras.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	n := 0
	for _, list := range rs.rules {
		n += len(list)
	}
	return n
}

// Check avalia as regras da coleção em ordem e devolve a primeira violação.
// Um RuleSet nil aprova tudo.
func (rs *RuleSet) Check(collection string, vars map[string]interface{}) *Violation {
	if rs == nil {
		return nil
	}
	for _, rule := range rs.rules[collection] {
		ok, err := rs.rm.EvaluateBool(rule.Expr, vars)
		if err != nil {
			return &Violation{RuleID: rule.ID, Code: rule.OnFail.Code, Msg: rule.OnFail.Msg, Cause: err}
		}
		if !ok {
			return &Violation{RuleID: rule.ID, Code: rule.OnFail.Code, Msg: rule.OnFail.Msg}
		}
	}
	return nil
}
