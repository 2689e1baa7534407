package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical_SortsKeys(t *testing.T) {
	data, err := Canonical(Record{
		"zebra":     true,
		"allocator": "system",
		"cores":     8,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"allocator":"system","cores":8,"zebra":true}`, string(data))
}

func TestCanonical_Stable(t *testing.T) {
	r := Record{
		"allocator":          "high-performance-general",
		"rule_id":            "desktop-throughput",
		"cpu_cores":          8,
		"total_memory_bytes": uint64(32 << 30),
		"probe_degraded":     false,
	}

	first, err := Canonical(r)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Canonical(r)
		require.NoError(t, err)
		assert.Equal(t, first, again, "map iteration order must not leak into output")
	}
}

func TestCanonical_NoHTMLEscaping(t *testing.T) {
	data, err := Canonical(Record{"reason": "8 cores >= threshold 2 & healthy"})
	require.NoError(t, err)
	assert.Equal(t, `{"reason":"8 cores >= threshold 2 & healthy"}`, string(data))
}

func TestCanonical_NFCNormalization(t *testing.T) {
	// Precomposed U+00E9 vs e plus combining acute: same text, one digest.
	composed, err := Sum(Record{"os": "andré"})
	require.NoError(t, err)
	decomposed, err := Sum(Record{"os": "andre\u0301"})
	require.NoError(t, err)

	assert.Equal(t, composed, decomposed)
}

func TestCanonical_RejectsUnsupportedTypes(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"nil value", Record{"x": nil}},
		{"float64", Record{"x": 1.5}},
		{"float32", Record{"x": float32(2.5)}},
		{"nested map", Record{"x": map[string]any{"y": 1}}},
		{"slice", Record{"x": []string{"a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Canonical(tt.rec)
			assert.Error(t, err)
		})
	}
}

func TestSum_HexDigest(t *testing.T) {
	sum, err := Sum(Record{"allocator": "system"})
	require.NoError(t, err)

	assert.Len(t, sum, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", sum)
}

func TestSum_FieldChangeChangesDigest(t *testing.T) {
	base := Record{"allocator": "system", "cpu_cores": 8}
	drifted := Record{"allocator": "system", "cpu_cores": 4}

	a, err := Sum(base)
	require.NoError(t, err)
	b, err := Sum(drifted)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestCanonical_Empty(t *testing.T) {
	data, err := Canonical(Record{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}
