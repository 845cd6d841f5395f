package rules

import (
	"testing"

	"github.com/raywall/insurance-sim/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentRules() map[string][]config.ValidationRule {
	return map[string][]config.ValidationRule{
		"payments": {
			{ID: "positive-amount", Expr: "input.amount > 0", OnFail: config.ErrorResponse{Code: 422, Msg: "amount must be positive"}},
			{ID: "known-method", Expr: "input.method in ['pix', 'card', 'boleto']", OnFail: config.ErrorResponse{Code: 400, Msg: "unsupported method"}},
		},
	}
}

func TestRuleSet_Check(t *testing.T) {
	rm, err := NewRuleManager()
	require.NoError(t, err)

	rs, err := NewRuleSet(rm, paymentRules())
	require.NoError(t, err)
	assert.Equal(t, 2, rs.Len())

	tests := []struct {
		name   string
		input  map[string]interface{}
		ruleID string
		code   int
	}{
		{name: "válido", input: map[string]interface{}{"amount": 10.0, "method": "pix"}},
		{name: "valor zero", input: map[string]interface{}{"amount": 0.0, "method": "pix"}, ruleID: "positive-amount", code: 422},
		{name: "método inválido", input: map[string]interface{}{"amount": 5.0, "method": "cash"}, ruleID: "known-method", code: 400},
		{name: "campo ausente", input: map[string]interface{}{"method": "pix"}, ruleID: "positive-amount", code: 422},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := rs.Check("payments", map[string]interface{}{"input": tt.input})
			if tt.ruleID == "" {
				assert.Nil(t, v)
				return
			}
			require.NotNil(t, v)
			assert.Equal(t, tt.ruleID, v.RuleID)
			assert.Equal(t, tt.code, v.Code)
		})
	}

	assert.Nil(t, rs.Check("claims", nil), "coleção sem regras aprova")
}

func TestRuleSet_Nil(t *testing.T) {
	var rs *RuleSet
	assert.Nil(t, rs.Check("payments", nil))
	assert.Equal(t, 0, rs.Len())
}

func TestNewRuleSet_CompileError(t *testing.T) {
	rm, err := NewRuleManager()
	require.NoError(t, err)

	_, err = NewRuleSet(rm, map[string][]config.ValidationRule{
		"claims": {{ID: "broken", Expr: "input.amount >", OnFail: config.ErrorResponse{Code: 400, Msg: "x"}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claims.broken")
}

func TestViolation_Error(t *testing.T) {
	v := &Violation{RuleID: "r", Msg: "amount must be positive"}
	assert.Equal(t, "amount must be positive", v.Error())
}
