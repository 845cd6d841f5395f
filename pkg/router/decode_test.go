package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeLoose(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want interface{}
	}{
		{"empty", "", ""},
		{"number", "5", float64(5)},
		{"decimal", "12.5", 12.5},
		{"bool", "true", true},
		{"null", "null", nil},
		{"quoted string", `"abc"`, "abc"},
		{"object", `{"a":1}`, map[string]interface{}{"a": float64(1)}},
		{"array", `[1,"x"]`, []interface{}{float64(1), "x"}},
		{"plain word", "active", "active"},
		{"leading zeros stay raw", "007", "007"},
		{"broken json stays raw", `{"a":`, `{"a":`},
		{"two values stay raw", "1 2", "1 2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecodeLoose(tc.in))
		})
	}
}

func TestParseQuery(t *testing.T) {
	q := ParseQuery("?page=2&pageSize=5&search=ann%20lee&status=active&flag=true&page=3&empty=")

	assert.Equal(t, float64(3), q["page"], "último valor vence")
	assert.Equal(t, float64(5), q["pageSize"])
	assert.Equal(t, "ann lee", q["search"])
	assert.Equal(t, "active", q["status"])
	assert.Equal(t, true, q["flag"])
	assert.Equal(t, "", q["empty"])
	assert.Empty(t, ParseQuery(""))
}

func TestRequestHelpers(t *testing.T) {
	req := &Request{
		PathParams: map[string]string{"id": "POL-001"},
		Query:      ParseQuery("page=2&size=abc&code=42&name=x"),
		Body:       map[string]interface{}{"a": 1},
	}

	assert.Equal(t, "POL-001", req.Param("id"))
	assert.Equal(t, 2, req.QueryInt("page", 1))
	assert.Equal(t, 10, req.QueryInt("size", 10))
	assert.Equal(t, 10, req.QueryInt("missing", 10))
	assert.Equal(t, "42", req.QueryString("code"))
	assert.Equal(t, "x", req.QueryString("name"))
	assert.Equal(t, "", req.QueryString("missing"))

	body, ok := req.BodyMap()
	assert.True(t, ok)
	assert.Equal(t, 1, body["a"])

	req.Body = "raw text"
	_, ok = req.BodyMap()
	assert.False(t, ok)
}

func TestQueryString_Floats(t *testing.T) {
	r := &Request{Query: map[string]interface{}{
		"small": float64(42),
		"neg":   float64(-7),
		"frac":  2.5,
		"huge":  float64(12345678901234567890),
	}}

	assert.Equal(t, "42", r.QueryString("small"))
	assert.Equal(t, "-7", r.QueryString("neg"))
	assert.Equal(t, "2.5", r.QueryString("frac"))
	assert.Equal(t, "12345678901234567168", r.QueryString("huge"))
	assert.Equal(t, "", r.QueryString("missing"))
}
