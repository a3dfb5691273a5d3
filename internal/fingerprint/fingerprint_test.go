package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIsKeyOrderIndependent(t *testing.T) {
	a := map[string]any{
		"html_content":  "<html></html>",
		"analysis_type": "spending_analysis",
		"options":       map[string]any{"b": 2, "a": 1},
	}
	b := map[string]any{
		"options":       map[string]any{"a": 1, "b": 2},
		"analysis_type": "spending_analysis",
		"html_content":  "<html></html>",
	}

	ha, err := Hash(a)
	require.NoError(t, err)
	hb, err := Hash(b)
	require.NoError(t, err)

	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 64)
}

func TestHashDistinguishesValues(t *testing.T) {
	ha, err := Hash(map[string]any{"k": "v1"})
	require.NoError(t, err)
	hb, err := Hash(map[string]any{"k": "v2"})
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestHashDistinguishesKeys(t *testing.T) {
	ha, err := Hash(map[string]any{"a": "v"})
	require.NoError(t, err)
	hb, err := Hash(map[string]any{"b": "v"})
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestCanonicalSortsNestedKeys(t *testing.T) {
	got, err := Canonical(map[string]any{
		"z": map[string]any{"y": 1, "x": []any{map[string]any{"b": 2, "a": 1}}},
		"a": "s",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"s","z":{"x":[{"a":1,"b":2}],"y":1}}`, string(got))
}

func TestCanonicalPreservesNumberPrecision(t *testing.T) {
	// Round-tripping through float64 would mangle this.
	got, err := Canonical(map[string]any{"n": "x", "big": int64(9007199254740993)})
	require.NoError(t, err)
	assert.Contains(t, string(got), "9007199254740993")
}

func TestCanonicalArrayOrderSignificant(t *testing.T) {
	ha, err := Hash([]any{"a", "b"})
	require.NoError(t, err)
	hb, err := Hash([]any{"b", "a"})
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)
}

func TestHashRejectsUnencodable(t *testing.T) {
	_, err := Hash(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
}

func TestHashStableAcrossCalls(t *testing.T) {
	in := map[string]any{"html_content": "<html>doc</html>", "analysis_type": "full_report"}
	first, err := Hash(in)
	require.NoError(t, err)
	for range 10 {
		again, err := Hash(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
