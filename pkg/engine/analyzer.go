package engine

import (
	"fmt"
	"sort"

	"github.com/raywall/insurance-sim/pkg/config"
	"github.com/raywall/insurance-sim/pkg/insurance"
	"github.com/raywall/insurance-sim/pkg/rules"
)

// ValidationReport contém o resultado detalhado da análise.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Analyze complementa a validação estrutural do Loader com checagens que
// dependem do runtime: compilação CEL e coleções sem rota.
func Analyze(cfg *config.AppConfig) (*ValidationReport, error) {
	report := &ValidationReport{Valid: true, Errors: []string{}, Warnings: []string{}}

	rm, err := rules.NewRuleManager()
	if err != nil {
		return nil, fmt.Errorf("falha interna ao iniciar analisador de regras: %w", err)
	}

	routed := make(map[string]bool)
	for _, e := range insurance.Entities {
		routed[e.Collection] = true
	}

	names := make([]string, 0, len(cfg.Collections))
	for name := range cfg.Collections {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		conf := cfg.Collections[name]
		if !routed[name] && len(conf.Validations) > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("collections.%s: coleção sem rotas de escrita, validações nunca serão avaliadas", name))
		}
		for _, rule := range conf.Validations {
			if err := rm.Compile(rule.Expr); err != nil {
				report.Errors = append(report.Errors,
					fmt.Sprintf("collections.%s.validations[%s]: erro CEL: %v", name, rule.ID, err))
			}
		}
	}

	if cfg.Service.Runtime == "lambda" && cfg.Service.ResetQueue != "" {
		report.Warnings = append(report.Warnings, "service.reset_queue é ignorado no runtime lambda")
	}

	report.Valid = len(report.Errors) == 0
	return report, nil
}
