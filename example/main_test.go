package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPrintSDL(t *testing.T) {
	out, err := run(t, "print")
	require.NoError(t, err)
	require.Contains(t, out, "type Query {")
	require.Contains(t, out, "type Mutation {")
	require.Contains(t, out, "input CreatePostInput {")
}

func TestPrintJSON(t *testing.T) {
	out, err := run(t, "print", "--format", "json")
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Contains(t, result, "__schema")
}

func TestPrintFormatFromEnv(t *testing.T) {
	t.Setenv("GQLDECORATOR_FORMAT", "json")

	out, err := run(t, "print")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(strings.TrimSpace(out), "{"), out)
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "print", "--format", "yaml")
	require.ErrorContains(t, err, `invalid format "yaml"`)

	_, err = run(t, "print", "--log-level", "loud")
	require.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestQueryCommand(t *testing.T) {
	out, err := run(t, "query", `query ($role: Role) { users(role: $role) { name } }`, "--variables", `{"role": "ADMIN"}`)
	require.NoError(t, err)
	require.JSONEq(t, `{"data": {"users": [{"name": "Alice"}]}}`, out)

	out, err = run(t, "query", "--seed=false", `{ users { name } }`)
	require.NoError(t, err)
	require.JSONEq(t, `{"data": {"users": []}}`, out)

	_, err = run(t, "query", `{ nope }`)
	require.ErrorContains(t, err, "query failed")
}
