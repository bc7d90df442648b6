package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JosueSosa01/Patito-1/internal/config"
)

const arithmeticProgram = `{
	"tag": "program", "name": "demo",
	"vars": {"tag": "vars", "decls": [{"names": ["x"], "type": "entero"}]},
	"funcs": {"tag": "funcs", "functions": []},
	"body": {"tag": "body", "statements": [
		{"tag": "assign", "name": "x", "expr": {"tag": "bin", "op": "+",
			"left": {"tag": "const", "value": 2, "type": "entero"},
			"right": {"tag": "bin", "op": "*",
				"left": {"tag": "const", "value": 3, "type": "entero"},
				"right": {"tag": "const", "value": 4, "type": "entero"}}}},
		{"tag": "print", "items": [{"tag": "id", "name": "x"}]}
	]}
}`

func Test_Run_listingsOnly(t *testing.T) {
	var out bytes.Buffer
	err := Run([]byte(arithmeticProgram), config.Options{}, &out, nil)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "program demo")
	assert.Contains(t, text, "globals:")
	assert.Contains(t, text, "x [entero] -> 1000")
	assert.Contains(t, text, "quadruples:")
	assert.NotContains(t, text, "14\n", "PRINT output must not appear without -run")
}

func Test_Run_withExecution(t *testing.T) {
	var out bytes.Buffer
	err := Run([]byte(arithmeticProgram), config.Options{Run: true}, &out, nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, "14", lines[len(lines)-1], "the program's only PRINT should be the last output line")
}

func Test_Run_constantListingUsesRepr(t *testing.T) {
	src := `{"tag": "program", "name": "c", "vars": null, "funcs": null,
		"body": {"tag": "body", "statements": [
			{"tag": "print", "items": [
				{"tag": "const", "value": "pos", "type": "string"},
				{"tag": "const", "value": 1.5, "type": "flotante"},
				{"tag": "const", "value": 2, "type": "flotante"}
			]}
		]}}`
	var out bytes.Buffer
	require.NoError(t, Run([]byte(src), config.Options{}, &out, nil))

	text := out.String()
	assert.Contains(t, text, "'pos' [string] -> 11000", "string constants are quoted in the listing")
	assert.Contains(t, text, "1.5 [flotante] -> 10000")
	assert.Contains(t, text, "2.0 [flotante] -> 10001", "whole float constants keep their decimal point")
}

func Test_Run_semanticErrorSurfaces(t *testing.T) {
	bad := `{"tag": "program", "name": "bad", "vars": null, "funcs": null,
		"body": {"tag": "body", "statements": [
			{"tag": "print", "items": [{"tag": "id", "name": "undeclared"}]}
		]}}`
	var out bytes.Buffer
	err := Run([]byte(bad), config.Options{}, &out, nil)
	assert.Error(t, err)
}
