package router

import (
	"context"
	"testing"

	"github.com/raywall/insurance-sim/pkg/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(name string) HandlerFunc {
	return func(ctx context.Context, req *Request) envelope.Envelope {
		return envelope.OK(name)
	}
}

func call(t *testing.T, m *Match) string {
	t.Helper()
	require.NotNil(t, m)
	env := m.Route.Handler(context.Background(), &Request{PathParams: m.PathParams})
	return env.Data.(string)
}

func TestResolve_StaticFastPath(t *testing.T) {
	reg := NewRegistry()
	reg.Register("GET", "/api/health", named("health"))
	reg.Register("GET", "/api/customers", named("list"))

	assert.Equal(t, "list", call(t, reg.Resolve("GET", "/api/customers")))
	assert.Equal(t, "health", call(t, reg.Resolve("get", "/api/health")))
}

func TestResolve_Captures(t *testing.T) {
	reg := NewRegistry()
	reg.Register("GET", "/api/customers/:id", named("get"))
	reg.Register("GET", "/api/riders/policy-type/:type", named("riders"))

	m := reg.Resolve("GET", "/api/customers/CUST-001")
	require.NotNil(t, m)
	assert.Equal(t, map[string]string{"id": "CUST-001"}, m.PathParams)
	assert.Equal(t, "/api/customers/:id", m.Route.Pattern)

	m = reg.Resolve("GET", "/api/riders/policy-type/life%20plus")
	require.NotNil(t, m)
	assert.Equal(t, "life plus", m.PathParams["type"])
}

func TestResolve_MethodMustMatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register("GET", "/api/customers/:id", named("get"))

	assert.Nil(t, reg.Resolve("DELETE", "/api/customers/CUST-001"))
}

func TestResolve_SegmentCountMustMatch(t *testing.T) {
	reg := NewRegistry()
	reg.Register("GET", "/api/customers", named("list"))
	reg.Register("GET", "/api/customers/:id", named("get"))

	assert.Nil(t, reg.Resolve("GET", "/api/customers/"), "barra final não casa")
	assert.Nil(t, reg.Resolve("GET", "/api/customers/CUST-001/extra"))
	assert.Nil(t, reg.Resolve("GET", "/api/customers//"))
}

func TestResolve_CaptureRejectsEmptySegment(t *testing.T) {
	reg := NewRegistry()
	reg.Register("GET", "/api/x/:id/detail", named("detail"))

	assert.Nil(t, reg.Resolve("GET", "/api/x//detail"))
}

func TestResolve_FirstMatchWins(t *testing.T) {
	t.Run("capture registered first wins over later literal", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("GET", "/api/x/:id", named("capture"))
		reg.Register("GET", "/api/x/special", named("special"))

		m := reg.Resolve("GET", "/api/x/special")
		assert.Equal(t, "capture", call(t, m))
		assert.Equal(t, "special", m.PathParams["id"])
	})

	t.Run("literal registered first wins", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("GET", "/api/x/special", named("special"))
		reg.Register("GET", "/api/x/:id", named("capture"))

		assert.Equal(t, "special", call(t, reg.Resolve("GET", "/api/x/special")))
		assert.Equal(t, "capture", call(t, reg.Resolve("GET", "/api/x/other")))
	})

	t.Run("duplicate registration keeps the first", func(t *testing.T) {
		reg := NewRegistry()
		reg.Register("GET", "/api/dup", named("first"))
		reg.Register("GET", "/api/dup", named("second"))

		assert.Equal(t, "first", call(t, reg.Resolve("GET", "/api/dup")))
	})
}

func TestResolve_Unmatched(t *testing.T) {
	reg := NewRegistry()
	reg.Register("GET", "/api/customers/:id", named("get"))

	assert.Nil(t, reg.Resolve("DELETE", "/api/unknown/1"))
}

func TestRoutes_Order(t *testing.T) {
	reg := NewRegistry()
	reg.Register("get", "/a", named("a"))
	reg.Register("POST", "/b/:id", named("b"))

	assert.Equal(t, []string{"GET /a", "POST /b/:id"}, reg.Routes())
	assert.Equal(t, 2, reg.Len())
}
