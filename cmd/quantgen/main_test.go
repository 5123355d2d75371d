package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katalvlaran/quantgen/blup"
	"github.com/katalvlaran/quantgen/compute"
	"github.com/katalvlaran/quantgen/reml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI with a fallback-only config and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "quantgen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: fallback\nlogging:\n  level: error\n"), 0o600))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--config", cfgPath))
	err := root.Execute()

	return out.String(), err
}

func writeInput(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	return path
}

func TestStatus(t *testing.T) {
	out, err := run(t, "", "status")
	require.NoError(t, err)
	var resp statusResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.NativeAvailable)
	assert.Equal(t, compute.FallbackName, resp.Backend)
	assert.Equal(t, "fallback", resp.Mode)
	assert.Equal(t, 2, resp.GRMPloidy)
}

func TestGRM_WithMissingCall(t *testing.T) {
	in := writeInput(t, `{"genotypes": [[0, 2, 1], [2, 0, null], [1, 1, 1]], "method": "vanraden1"}`)
	out, err := run(t, "", "grm", "--input", in)
	require.NoError(t, err)
	var resp grmResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "vanraden1", resp.Method)
	assert.Equal(t, 3, resp.Individuals)
	assert.Equal(t, 3, resp.Markers)
	require.Len(t, resp.Matrix, 3)
	for i := range resp.Matrix {
		for j := range resp.Matrix {
			assert.InDelta(t, resp.Matrix[i][j], resp.Matrix[j][i], 1e-12)
		}
	}
	require.NotNil(t, resp.Inbreeding)
	assert.Len(t, resp.Inbreeding.Coefficients, 3)
}

func TestGRM_Stdin(t *testing.T) {
	out, err := run(t, `{"genotypes": [[0, 1], [2, 1]], "method": "yang"}`, "grm", "--input", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"method": "yang"`)
}

func TestGRM_Errors(t *testing.T) {
	_, err := run(t, "", "grm")
	assert.Error(t, err, "--input is required")

	in := writeInput(t, `{"genotypes": [[0, 1]], "method": "ibs"}`)
	_, err = run(t, "", "grm", "--input", in)
	assert.Error(t, err)

	in = writeInput(t, `{"genotypes": [[0, 1]], "colour": "red"}`)
	_, err = run(t, "", "grm", "--input", in)
	assert.ErrorContains(t, err, "unknown field")

	in = writeInput(t, `{"genotypes": []}`)
	_, err = run(t, "", "grm", "--input", in)
	assert.ErrorIs(t, err, errMissingField)
}

func TestBLUP(t *testing.T) {
	in := writeInput(t, `{
		"y": [6, 9, 15],
		"x": [[1], [1], [1]],
		"z": [[1, 0, 0], [0, 1, 0], [0, 0, 1]],
		"a_inv": [[1, 0, 0], [0, 1, 0], [0, 0, 1]],
		"var_a": 1, "var_e": 1
	}`)
	out, err := run(t, "", "blup", "--input", in)
	require.NoError(t, err)
	var resp blupResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Converged)
	assert.InDelta(t, 10.0, resp.FixedEffects[0], 1e-9)
	assert.InDeltaSlice(t, []float64{-2, -0.5, 2.5}, resp.BreedingValues, 1e-9)

	bad := writeInput(t, `{"y": [1], "x": [[1]], "z": [[1]], "a_inv": [[1]], "var_a": 0, "var_e": 1}`)
	_, err = run(t, "", "blup", "--input", bad)
	assert.ErrorIs(t, err, blup.ErrInvalidVariance)
}

func TestGBLUP(t *testing.T) {
	in := writeInput(t, `{
		"genotypes": [[0,1,2,1],[1,1,0,2],[2,0,1,1],[1,2,1,0],[0,1,2,2]],
		"phenotypes": [10, 12, 9, 11, 13],
		"heritability": 0.5
	}`)
	out, err := run(t, "", "gblup", "--input", in)
	require.NoError(t, err)
	var resp blupResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Converged)
	assert.InDelta(t, 11.0, resp.FixedEffects[0], 1e-8)
	assert.Len(t, resp.BreedingValues, 5)
}

func TestREML(t *testing.T) {
	in := writeInput(t, `{
		"y": [1, 3, 2, 4, 2, 5],
		"x": [[1],[1],[1],[1],[1],[1]],
		"z": [[1,0,0],[1,0,0],[0,1,0],[0,1,0],[0,0,1],[0,0,1]],
		"a": [[1,0,0],[0,1,0],[0,0,1]],
		"max_iter": 3
	}`)
	out, err := run(t, "", "reml", "--input", in)
	require.NoError(t, err)
	var resp remlResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "em-reml", resp.Method)
	assert.Equal(t, 3, resp.Iterations)
	assert.False(t, resp.Converged)
	require.NotNil(t, resp.LogLikelihood)
	assert.InDelta(t, resp.VarAdditive/(resp.VarAdditive+resp.VarResidual), resp.Heritability, 1e-12)

	bogus := writeInput(t, `{"y": [1], "x": [[1]], "z": [[1]], "a": [[1]], "method": "newton"}`)
	_, err = run(t, "", "reml", "--input", bogus)
	assert.ErrorIs(t, err, reml.ErrUnknownMethod)
}

// TestREML_AIRunsEM: an "ai-reml" request is answered by EM-REML with the
// same estimates as an explicit "em-reml" one.
func TestREML_AIRunsEM(t *testing.T) {
	const body = `"y": [1, 3, 2, 4, 2, 5],
		"x": [[1],[1],[1],[1],[1],[1]],
		"z": [[1,0,0],[1,0,0],[0,1,0],[0,1,0],[0,0,1],[0,0,1]],
		"a": [[1,0,0],[0,1,0],[0,0,1]],
		"max_iter": 3`
	var got [2]remlResponse
	for i, method := range []string{"ai-reml", "em-reml"} {
		in := writeInput(t, `{`+body+`, "method": "`+method+`"}`)
		out, err := run(t, "", "reml", "--input", in)
		require.NoError(t, err, method)
		require.NoError(t, json.Unmarshal([]byte(out), &got[i]))
	}
	assert.Equal(t, "em-reml", got[0].Method)
	assert.Equal(t, got[1], got[0])
}

func TestRemlRequestDefaults(t *testing.T) {
	p, emulated, err := remlRequest{}.params()
	require.NoError(t, err)
	assert.False(t, emulated)
	assert.Equal(t, reml.DefaultParams(), p)

	p, emulated, err = remlRequest{Method: "AI"}.params()
	require.NoError(t, err)
	assert.True(t, emulated)
	assert.Equal(t, reml.MethodEM, p.Method)

	p, emulated, err = remlRequest{Method: "em-reml"}.params()
	require.NoError(t, err)
	assert.False(t, emulated)
	assert.Equal(t, reml.MethodEM, p.Method)
}

func TestBadConfig(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"status", "--log-level", "shout"})
	assert.ErrorIs(t, root.Execute(), compute.ErrInvalidConfig)
}
