package envelope

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requestIDPattern = regexp.MustCompile(`^req_\d+_[0-9a-z]{9}$`)

func TestOK(t *testing.T) {
	env := OK(map[string]interface{}{"id": "CUST-001"}, "created")

	assert.True(t, env.Success)
	assert.Equal(t, "created", env.Message)
	assert.Empty(t, env.Error)
	assert.Regexp(t, requestIDPattern, env.RequestID)
	assert.Equal(t, 200, env.HTTPStatus())
	assert.Equal(t, 200, env.WithStatus(201).HTTPStatus(), "sucesso nunca usa o status do handler")

	_, err := time.Parse(TimeLayout, env.Timestamp)
	assert.NoError(t, err)
}

func TestFail(t *testing.T) {
	env := Fail("Customer not found")

	assert.False(t, env.Success)
	assert.Nil(t, env.Data)
	assert.Equal(t, "Customer not found", env.Error)
	assert.Equal(t, 400, env.HTTPStatus())
	assert.Equal(t, 404, env.WithStatus(404).HTTPStatus())
}

func TestEnvelope_JSONShape(t *testing.T) {
	env := Fail("boom").WithStatus(500).WithRequestID("req_1_abcdefghi")

	raw, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "boom", decoded["error"])
	assert.Equal(t, "req_1_abcdefghi", decoded["requestId"])
	assert.NotContains(t, decoded, "data")
	assert.NotContains(t, decoded, "Status")
}

func TestWithRequestID_IgnoresEmpty(t *testing.T) {
	env := OK(nil)
	original := env.RequestID
	assert.Equal(t, original, env.WithRequestID("").RequestID)
}

func TestNewRequestID_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewRequestID()
		assert.Regexp(t, requestIDPattern, id)
		assert.False(t, seen[id], "id repetido: %s", id)
		seen[id] = true
	}
}

func TestAs(t *testing.T) {
	type customer struct {
		ID        string `json:"id"`
		FirstName string `json:"firstName"`
	}

	env := OK(map[string]interface{}{"id": "CUST-001", "firstName": "Ann"})
	c, err := As[customer](env)
	require.NoError(t, err)
	assert.Equal(t, customer{ID: "CUST-001", FirstName: "Ann"}, c)

	_, err = As[[]string](env)
	assert.Error(t, err)
}
