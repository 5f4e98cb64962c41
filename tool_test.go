package gocas_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocas"
)

// call decodes params from JSON text, as a wire client would send them.
func call(t *testing.T, tool, params string) gocas.ToolResponse {
	t.Helper()
	var p map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(params), &p))
	return gocas.HandleToolCall(gocas.ToolRequest{Tool: tool, Params: p})
}

const (
	jsX         = `{"type":"sym","name":"x"}`
	jsXSquared1 = `{"type":"add","terms":[{"type":"pow","base":` + jsX + `,"exp":{"type":"num","value":"2"}},{"type":"num","value":"-1"}]}`
)

// ============================================================
// HandleToolCall tests
// ============================================================

func TestTool_Factor(t *testing.T) {
	resp := call(t, "factor", `{"expr":`+jsXSquared1+`}`)
	require.Empty(t, resp.Error)
	n, err := gocas.FromJSON(resp.Result.(map[string]interface{}))
	require.NoError(t, err)
	assertNode(t, gocas.MulOf(gocas.AddOf(x, gocas.N(1)), gocas.Sub(x, gocas.N(1))), n)
}

func TestTool_Expand(t *testing.T) {
	resp := gocas.HandleToolCall(gocas.ToolRequest{
		Tool:   "expand",
		Params: map[string]interface{}{"expr": gocas.NodeMap(pow(gocas.AddOf(x, gocas.N(1)), 2))},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x^2 + 2*x + 1", resp.String)
}

func TestTool_LongDivision(t *testing.T) {
	resp := call(t, "long_division", `{"dividend":`+jsXSquared1+`,"divisor":{"type":"add","terms":[`+jsX+`,{"type":"num","value":1}]}}`)
	require.Empty(t, resp.Error)
	res := resp.Result.(map[string]interface{})
	q, err := gocas.FromJSON(res["quotient"].(map[string]interface{}))
	require.NoError(t, err)
	assertNode(t, gocas.Sub(x, gocas.N(1)), q)
	r, err := gocas.FromJSON(res["remainder"].(map[string]interface{}))
	require.NoError(t, err)
	assert.True(t, gocas.IsZero(r))
}

func TestTool_GCD(t *testing.T) {
	resp := call(t, "gcd", `{"exprs":[`+jsXSquared1+`,{"type":"add","terms":[`+jsX+`,{"type":"num","value":"-1"}]}]}`)
	require.Empty(t, resp.Error)
	assert.Equal(t, "x - 1", resp.String)
}

func TestTool_Degree(t *testing.T) {
	resp := call(t, "degree", `{"expr":`+jsXSquared1+`}`)
	require.Empty(t, resp.Error)
	assert.Equal(t, 2, resp.Result)
}

func TestTool_Solve(t *testing.T) {
	st := gocas.Eq(gocas.AddOf(gocas.MulOf(gocas.N(5), x), gocas.N(3)), gocas.N(13))
	b, err := json.Marshal(map[string]interface{}{"statement": gocas.StatementMap(st), "unknown": "x"})
	require.NoError(t, err)
	resp := call(t, "solve", string(b))
	require.Empty(t, resp.Error)
	assert.Equal(t, "x = 2", resp.String)
}

func TestTool_SolveSystem(t *testing.T) {
	sys := gocas.NewSystem(
		gocas.Eq(gocas.AddOf(x, y), gocas.N(5)),
		gocas.Eq(gocas.MulOf(gocas.N(3), x), gocas.AddOf(gocas.MulOf(gocas.N(4), y), gocas.N(1))),
	)
	b, err := json.Marshal(map[string]interface{}{"statement": gocas.StatementMap(sys), "unknowns": []string{"x", "y"}})
	require.NoError(t, err)
	resp := call(t, "solve_system", string(b))
	require.Empty(t, resp.Error)

	out, err := gocas.StatementFromJSON(resp.Result.(map[string]interface{}))
	require.NoError(t, err)
	assertNode(t, gocas.N(3), lookup(t, out, "x"))
	assertNode(t, gocas.N(2), lookup(t, out, "y"))
}

func TestTool_Substitute(t *testing.T) {
	resp := call(t, "substitute", `{"expr":`+jsXSquared1+`,"var":"x","value":{"type":"num","value":3}}`)
	require.Empty(t, resp.Error)
	assert.Equal(t, "8", resp.String)
}

func TestTool_FreeSymbols(t *testing.T) {
	resp := gocas.HandleToolCall(gocas.ToolRequest{
		Tool:   "free_symbols",
		Params: map[string]interface{}{"expr": gocas.NodeMap(gocas.MulOf(y, x))},
	})
	require.Empty(t, resp.Error)
	assert.Equal(t, []string{"x", "y"}, resp.Result)
}

func TestTool_Errors(t *testing.T) {
	resp := call(t, "factor", `{}`)
	assert.Contains(t, resp.Error, "missing param")

	resp = call(t, "frobnicate", `{}`)
	assert.Contains(t, resp.Error, "unknown tool")

	resp = call(t, "long_division", `{"dividend":`+jsX+`,"divisor":{"type":"num","value":0}}`)
	assert.Contains(t, resp.Error, "division by zero")
}

func TestToolSpec(t *testing.T) {
	var schema struct {
		Tools []map[string]interface{} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(gocas.ToolSpec()), &schema))
	names := map[string]bool{}
	for _, s := range schema.Tools {
		name, _ := s["name"].(string)
		names[name] = true
		assert.True(t, gocas.IsTool(name), name)
	}
	for _, want := range []string{"simplify", "factor", "solve", "solve_system", "long_division"} {
		assert.True(t, names[want], want)
	}
	assert.False(t, gocas.IsTool("frobnicate"))
}
